package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/marcosaureliofarias/convite-aniversario/config"
	"github.com/marcosaureliofarias/convite-aniversario/internal/api/handler"
	"github.com/marcosaureliofarias/convite-aniversario/internal/api/middleware"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/jwt"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/redis"
)

// Setup builds the Gin engine. rdb may be nil: rate limiting and token
// revocation are then disabled.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	var (
		checker middleware.TokenChecker
		limiter middleware.RateLimiter
	)
	if rdb != nil {
		checker = rdb
		limiter = rdb
	}

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": cfg.Storage.Driver})
	})

	api := r.Group("/api")
	{
		// ── public ──
		create := []gin.HandlerFunc{h.Guest.Create}
		if cfg.Server.RateLimit.Enabled {
			limit := middleware.RateLimit(limiter, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window)
			create = []gin.HandlerFunc{limit, h.Guest.Create}
		}
		api.POST("/guests", create...)
		api.GET("/guests/confirmed", h.Guest.ListConfirmed)
		api.POST("/guests/:id/confirm", h.Guest.Confirm)
		api.PUT("/guests/:id/confirm", h.Guest.Confirm)
		api.GET("/stats", h.Guest.Stats)
		api.GET("/event.ics", h.Export.Calendar)
		api.GET("/invite/qrcode.png", h.Export.InviteQRCode)
		api.POST("/auth/login", h.Auth.Login)

		// ── admin ──
		admin := api.Group("")
		if cfg.Auth.Enabled {
			admin.Use(middleware.JWTAuth(jwtMgr, checker))
		}
		{
			admin.POST("/auth/logout", h.Auth.Logout)

			admin.GET("/guests", h.Guest.List)
			admin.DELETE("/guests", h.Guest.Clear)
			admin.GET("/guests/:id", h.Guest.Get)
			admin.PUT("/guests/:id", h.Guest.Update)
			admin.PATCH("/guests/:id", h.Guest.Update)
			admin.DELETE("/guests/:id", h.Guest.Delete)
			admin.GET("/guests/:id/invite-link", h.Export.InviteLink)
			admin.GET("/guests/:id/qrcode.png", h.Export.InviteQRCode)

			admin.GET("/export/backup", h.Export.Backup)
			admin.GET("/export/roster", h.Export.Roster)
			admin.POST("/import", h.Guest.Import)
		}
	}

	return r
}
