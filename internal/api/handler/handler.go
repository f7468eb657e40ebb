package handler

import "github.com/marcosaureliofarias/convite-aniversario/internal/service"

// Handler aggregates every handler
type Handler struct {
	Guest  *GuestHandler
	Auth   *AuthHandler
	Export *ExportHandler
}

// NewHandler builds the Handler aggregate
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Guest:  NewGuestHandler(svc.Guest),
		Auth:   NewAuthHandler(svc.Auth),
		Export: NewExportHandler(svc.Export),
	}
}
