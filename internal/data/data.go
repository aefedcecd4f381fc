package data

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	ambassadormodels "github.com/nfsdasilva237/pipomarket-assistant/internal/ambassador/models"
	catalogmodels "github.com/nfsdasilva237/pipomarket-assistant/internal/catalog/models"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/conf"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"
	profilemodels "github.com/nfsdasilva237/pipomarket-assistant/internal/profile/models"
)

// Data holds the shared database and cache connections
type Data struct {
	DB    *gorm.DB
	Redis *redis.Client
	log   *logger.Logger
}

// NewData opens the Postgres and Redis connections and runs migrations.
// The returned cleanup function closes both connections.
func NewData(cfg *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrate(db); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	d := &Data{DB: db, Redis: rdb, log: log}

	cleanup := func() {
		log.Info("closing data connections")
		if err := rdb.Close(); err != nil {
			log.Warn("failed to close redis", zap.Error(err))
		}
		if err := sqlDB.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}
	return d, cleanup, nil
}

func migrate(db *gorm.DB) error {
	if err := catalogmodels.AutoMigrate(db); err != nil {
		return err
	}
	if err := profilemodels.AutoMigrate(db); err != nil {
		return err
	}
	return ambassadormodels.AutoMigrate(db)
}
