package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/marcosaureliofarias/convite-aniversario/internal/service"
	apperrors "github.com/marcosaureliofarias/convite-aniversario/pkg/errors"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler backup / export HTTP handlers
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// Backup full JSON backup download
// GET /api/export/backup
func (h *ExportHandler) Backup(c *gin.Context) {
	backup, filename, err := h.exportSvc.ExportBackup(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.IndentedJSON(http.StatusOK, backup)
}

// Roster guest roster as Excel
// GET /api/export/roster
func (h *ExportHandler) Roster(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}

// Calendar iCalendar invite for the event
// GET /api/event.ics
func (h *ExportHandler) Calendar(c *gin.Context) {
	data, filename, err := h.exportSvc.ExportCalendar()
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, filename, "text/calendar; charset=utf-8", data)
}

// InviteQRCode PNG QR code of the registration link; personal when
// mounted under a guest id
// GET /api/invite/qrcode.png?size=256
// GET /api/guests/:id/qrcode.png?size=256
func (h *ExportHandler) InviteQRCode(c *gin.Context) {
	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(c, response.CodeBadRequest, "size must be a positive integer")
			return
		}
		size = n
	}

	png, _, err := h.exportSvc.InviteQRCode(c.Request.Context(), c.Param("id"), size)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// InviteLink personal registration link of a guest
// GET /api/guests/:id/invite-link
func (h *ExportHandler) InviteLink(c *gin.Context) {
	link, err := h.exportSvc.InviteLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.OK(c, gin.H{"url": link})
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGuestNotFound):
		response.NotFound(c, response.CodeGuestNotFound, "guest not found")
		return
	case errors.Is(err, service.ErrInviteURLMissing):
		response.NotFound(c, response.CodeNotConfigured, "invite url is not configured")
		return
	}

	_ = c.Error(err)
	switch {
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		response.ErrorWithDetails(c, http.StatusInternalServerError, response.CodeStorageUnavailable, "storage unavailable", err.Error())
	default:
		response.InternalError(c)
	}
}
