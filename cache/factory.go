package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/anoixa/picshare/cache/memory"
	"github.com/anoixa/picshare/cache/redis"
	"github.com/anoixa/picshare/config"
	"go.uber.org/zap"
)

// NewFactory 按 cache_type 创建缓存提供者
func NewFactory(cfg *config.Config, log *zap.Logger) (Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("cache")

	var (
		provider Provider
		err      error
	)
	switch cfg.CacheType {
	case "memory", "":
		provider, err = memory.NewMemory(memory.DefaultConfig(cfg.CacheMaxSizeMB))
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		provider, err = redis.NewRedis(ctx, redis.Config{
			Address:      cfg.CacheRedisAddr,
			Password:     cfg.CacheRedisPassword,
			DB:           cfg.CacheRedisDB,
			PoolSize:     10,
			MinIdleConns: 2,
		})
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache: %w", cfg.CacheType, err)
	}

	log.Info("cache provider initialized", zap.String("provider", provider.Name()))
	return provider, nil
}
