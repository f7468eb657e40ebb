package service

import (
	"go.uber.org/zap"

	"github.com/marcosaureliofarias/convite-aniversario/config"
	"github.com/marcosaureliofarias/convite-aniversario/internal/repository"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/jwt"
)

// Service aggregates every service
type Service struct {
	Guest  GuestService
	Auth   AuthService
	Export ExportService
}

// NewService builds the Service aggregate; blacklist may be nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Guest:  NewGuestService(repo, logger),
		Auth:   NewAuthService(&cfg.Auth, jwtMgr, blacklist, logger),
		Export: NewExportService(repo, &cfg.Event, logger),
	}
}
