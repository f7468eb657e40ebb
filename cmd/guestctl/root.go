package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcosaureliofarias/convite-aniversario/config"
	"github.com/marcosaureliofarias/convite-aniversario/internal/repository"
	"github.com/marcosaureliofarias/convite-aniversario/internal/service"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/jwt"
	applogger "github.com/marcosaureliofarias/convite-aniversario/pkg/logger"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/redis"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "guestctl",
		Short:        "Manage the birthday guest list",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./config/config.yaml or ./config.yaml)")

	cmd.AddCommand(
		newHashPasswordCmd(),
		newListCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newQRCodeCmd(opts),
		newClearCmd(opts),
	)
	return cmd
}

// app the services a command works with, plus their teardown
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	svc    *service.Service

	repo *repository.Repository
	rdb  *redis.Client
}

func openApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var rdb *redis.Client
	if cfg.Storage.Driver == config.DriverRedis {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
	}

	repo, err := repository.Open(ctx, cfg, rdb, logger)
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		return nil, err
	}

	svc := service.NewService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, logger)
	return &app{cfg: cfg, logger: logger, svc: svc, repo: repo, rdb: rdb}, nil
}

func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.repo.Close(ctx); err != nil {
		a.logger.Error("close guest store failed", zap.Error(err))
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
	_ = a.logger.Sync()
}

// withApp runs fn against an opened app and always tears it down
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
