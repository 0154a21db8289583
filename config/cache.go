package config

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/animerec/cache"
	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/store"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenCache 按配置打开推荐结果缓存，并用熔断器包装。
// 返回的 io.Closer 负责释放底层连接；backend 为 none 时返回 nil cache。
func OpenCache(ctx context.Context, cfg CacheConfig, logger zerolog.Logger) (core.RecommendationCache, io.Closer, error) {
	backend := strings.ToLower(cfg.Backend)
	var (
		inner  core.RecommendationCache
		closer io.Closer
	)

	switch backend {
	case "", CacheNone:
		return nil, nopCloser{}, nil

	case CacheMemory:
		kv := cache.NewKVCache(store.NewMemoryStore(), cache.WithTTL(cfg.TTL))
		inner, closer = kv, kv

	case CacheRedis:
		rs, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, core.NewUnavailableError(core.ModuleCache, fmt.Sprintf("cache: connect redis %s: %v", cfg.Redis.Addr, err))
		}
		kv := cache.NewKVCache(rs, cache.WithTTL(cfg.TTL))
		inner, closer = kv, kv

	case CacheBadger:
		bs, err := store.OpenBadgerStore(cfg.Badger.Dir)
		if err != nil {
			return nil, nil, core.NewUnavailableError(core.ModuleCache, fmt.Sprintf("cache: open badger: %v", err))
		}
		kv := cache.NewKVCache(bs, cache.WithTTL(cfg.TTL))
		inner, closer = kv, kv

	case CachePostgres:
		pg, err := store.NewPostgresCache(cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, core.NewUnavailableError(core.ModuleCache, fmt.Sprintf("cache: connect postgres: %v", err))
		}
		if cfg.Postgres.EnsureSchema {
			sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := pg.EnsureSchema(sctx)
			cancel()
			if err != nil {
				_ = pg.Close()
				return nil, nil, err
			}
		}
		inner, closer = pg, pg

	default:
		return nil, nil, core.NewConfigError(core.ModuleConfig, fmt.Sprintf("config: unknown cache backend %q", cfg.Backend))
	}

	logger.Info().Str("backend", backend).Dur("ttl", cfg.TTL).Msg("recommendation cache enabled")
	return cache.NewGuarded(inner, backend, cfg.Breaker.ToCache(), logger), closer, nil
}
