package app

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/icebob/kantab-sub001/internal/config"
	"github.com/icebob/kantab-sub001/internal/db"
	"github.com/icebob/kantab-sub001/internal/logger"
	"github.com/icebob/kantab-sub001/internal/redis"
	"github.com/icebob/kantab-sub001/internal/token"
)

type Infra struct {
	DB         *db.DB
	TokenCache token.Cache
	cleanup    func() error
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.RunAccountsMigration(ctx, sqlDB); err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	infra := &Infra{
		DB:      &db.DB{DB: sqlDB},
		cleanup: sqlDB.Close,
	}

	switch cfg.CacheBackend {
	case "redis":
		redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		infra.TokenCache = token.NewRedisCache(redisClient.Client, cfg.VerifyCacheTTL)
		logger.Info("redis token cache ready", nil)
	default:
		infra.TokenCache = token.NewMemoryCache(cfg.VerifyCacheTTL)
	}

	return infra, nil
}
