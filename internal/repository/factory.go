package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/marcosaureliofarias/convite-aniversario/config"
	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/database"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/mongo"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/redis"
)

// Open connects the medium selected by storage.driver and returns the
// repository aggregate. rdb is only required by the redis driver; its
// lifetime stays with the caller.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (*Repository, error) {
	driver := cfg.Storage.Driver

	switch driver {
	case config.DriverMemory:
		var seed []model.Guest
		if cfg.Storage.SeedFile != "" {
			guests, err := LoadSeedFile(cfg.Storage.SeedFile)
			if err != nil {
				return nil, err
			}
			seed = guests
		}
		logger.Info("guest store ready", zap.String("driver", driver), zap.Int("seeded", len(seed)))
		return NewRepository(NewMemoryGuestRepo(seed...), nil), nil

	case config.DriverFile:
		logger.Info("guest store ready", zap.String("driver", driver), zap.String("path", cfg.Storage.FilePath))
		return NewRepository(NewFileGuestRepo(cfg.Storage.FilePath), nil), nil

	case config.DriverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis driver selected but redis is not connected")
		}
		logger.Info("guest store ready", zap.String("driver", driver), zap.String("key", cfg.Storage.RedisKey))
		return NewRepository(NewRedisGuestRepo(rdb, cfg.Storage.RedisKey), nil), nil

	case config.DriverMongo:
		client, err := mongo.NewClient(ctx, &cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("guest store ready", zap.String("driver", driver))
		return NewRepository(NewMongoGuestRepo(client.Collection(), client.Counters()), client.Close), nil

	case config.DriverPostgres, config.DriverMySQL:
		db, err := database.NewDB(driver, &cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql.DB: %w", err)
		}

		if driver == config.DriverPostgres {
			if err := database.RunMigrations(sqlDB, logger); err != nil {
				sqlDB.Close()
				return nil, err
			}
		} else if err := db.WithContext(ctx).AutoMigrate(&model.Guest{}); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}

		logger.Info("guest store ready", zap.String("driver", driver))
		return NewRepository(NewSQLGuestRepo(db), func(context.Context) error {
			return sqlDB.Close()
		}), nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", driver)
}
