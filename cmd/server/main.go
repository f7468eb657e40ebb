package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/marcosaureliofarias/convite-aniversario/config"
	"github.com/marcosaureliofarias/convite-aniversario/internal/api/handler"
	"github.com/marcosaureliofarias/convite-aniversario/internal/api/router"
	"github.com/marcosaureliofarias/convite-aniversario/internal/repository"
	"github.com/marcosaureliofarias/convite-aniversario/internal/service"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/jwt"
	applogger "github.com/marcosaureliofarias/convite-aniversario/pkg/logger"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/redis"
)

func main() {
	// 1. config
	cfg, err := config.Load(os.Getenv("GUESTS_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting guest list service",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("auth", cfg.Auth.Enabled),
	)

	// 3. redis (optional unless it backs the guest store)
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			if cfg.Storage.Driver == config.DriverRedis {
				logger.Fatal("redis connection failed", zap.Error(err))
			}
			logger.Warn("redis unavailable, rate limiting and token revocation disabled", zap.Error(err))
			rdb = nil
		}
	}

	// 4. guest store
	openCtx, cancelOpen := context.WithTimeout(context.Background(), 30*time.Second)
	repo, err := repository.Open(openCtx, cfg, rdb, logger)
	cancelOpen()
	if err != nil {
		logger.Fatal("open guest store failed", zap.Error(err))
	}

	// 5. JWT manager
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. wiring: Repository → Service → Handler
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, logger)
	h := handler.NewHandler(svc)

	// 7. router
	gin.SetMode(gin.ReleaseMode)
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 8. HTTP server (graceful shutdown)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 9. wait for a signal, then shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	// close the medium after in-flight requests finished
	if err := repo.Close(ctx); err != nil {
		logger.Error("close guest store failed", zap.Error(err))
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
