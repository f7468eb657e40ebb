package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcosaureliofarias/convite-aniversario/internal/dto"
	"github.com/marcosaureliofarias/convite-aniversario/internal/service"
	apperrors "github.com/marcosaureliofarias/convite-aniversario/pkg/errors"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/response"
)

// GuestHandler guest list HTTP handlers
type GuestHandler struct {
	guestSvc service.GuestService
}

// NewGuestHandler creates a GuestHandler
func NewGuestHandler(guestSvc service.GuestService) *GuestHandler {
	return &GuestHandler{guestSvc: guestSvc}
}

// List all guests, optionally filtered and ordered
// GET /api/guests?q=&confirmed=&sort=
func (h *GuestHandler) List(c *gin.Context) {
	var req dto.GuestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeBadRequest, "invalid query", err.Error())
		return
	}

	guests, err := h.guestSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleGuestError(c, err)
		return
	}

	response.OK(c, guests)
}

// ListConfirmed public list of confirmed guests
// GET /api/guests/confirmed
func (h *GuestHandler) ListConfirmed(c *gin.Context) {
	guests, err := h.guestSvc.ListConfirmed(c.Request.Context())
	if err != nil {
		handleGuestError(c, err)
		return
	}

	response.OK(c, guests)
}

// Get one guest
// GET /api/guests/:id
func (h *GuestHandler) Get(c *gin.Context) {
	guest, err := h.guestSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleGuestError(c, err)
		return
	}

	response.OK(c, guest)
}

// Create adds a guest; also the public self-registration endpoint
// POST /api/guests
func (h *GuestHandler) Create(c *gin.Context) {
	var req dto.CreateGuestRequest
	if !bindJSON(c, &req) {
		return
	}

	guest, err := h.guestSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleGuestError(c, err)
		return
	}

	response.Created(c, guest)
}

// Update partially updates a guest
// PUT /api/guests/:id
func (h *GuestHandler) Update(c *gin.Context) {
	var req dto.UpdateGuestRequest
	if !bindJSON(c, &req) {
		return
	}

	guest, err := h.guestSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleGuestError(c, err)
		return
	}

	response.OK(c, guest)
}

// Delete removes a guest
// DELETE /api/guests/:id
func (h *GuestHandler) Delete(c *gin.Context) {
	if err := h.guestSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleGuestError(c, err)
		return
	}

	response.NoContent(c)
}

// Confirm marks a guest as confirmed
// POST|PUT /api/guests/:id/confirm
func (h *GuestHandler) Confirm(c *gin.Context) {
	guest, err := h.guestSvc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleGuestError(c, err)
		return
	}

	response.OK(c, guest)
}

// Clear removes every guest
// DELETE /api/guests
func (h *GuestHandler) Clear(c *gin.Context) {
	if err := h.guestSvc.Clear(c.Request.Context()); err != nil {
		handleGuestError(c, err)
		return
	}

	response.Message(c, "all guests removed")
}

// Stats invitation counters
// GET /api/stats
func (h *GuestHandler) Stats(c *gin.Context) {
	stats, err := h.guestSvc.Stats(c.Request.Context())
	if err != nil {
		handleGuestError(c, err)
		return
	}

	response.OK(c, stats)
}

// Import replaces the guest list with a backup
// POST /api/import
func (h *GuestHandler) Import(c *gin.Context) {
	var req dto.ImportRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.guestSvc.Import(c.Request.Context(), &req)
	if err != nil {
		handleGuestError(c, err)
		return
	}

	response.OK(c, result)
}

// handleGuestError maps service errors to HTTP responses
func handleGuestError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, verr.Error(), verr.Field)
	case errors.Is(err, service.ErrGuestNotFound):
		response.NotFound(c, response.CodeGuestNotFound, "guest not found")
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, response.CodeStorageUnavailable, "storage unavailable", err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
