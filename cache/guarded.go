package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/metrics"
)

// BreakerConfig 配置熔断器。
type BreakerConfig struct {
	// FailureThreshold 连续失败多少次后熔断
	FailureThreshold uint32

	// Timeout 熔断后多久进入半开状态
	Timeout time.Duration

	// MaxRequests 半开状态允许的试探请求数
	MaxRequests uint32

	// Interval 关闭状态下计数清零周期，0 表示不清零
	Interval time.Duration
}

// DefaultBreakerConfig 返回默认熔断配置
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
		Interval:         time.Minute,
	}
}

// Guarded 包装一个 RecommendationCache：
//   - 读写失败只记录日志与指标，不向调用方返回错误（读失败视为未命中）
//   - 连续失败达到阈值后熔断，熔断期间直接跳过缓存
//
// 缓存不可用时推荐服务退化为每次重新计算。
type Guarded struct {
	inner   core.RecommendationCache
	backend string
	logger  zerolog.Logger
	cb      *gobreaker.CircuitBreaker[*core.CachedRecommendation]
}

func NewGuarded(inner core.RecommendationCache, backend string, cfg BreakerConfig, logger zerolog.Logger) *Guarded {
	g := &Guarded{
		inner:   inner,
		backend: backend,
		logger:  logger.With().Str("cache", backend).Logger(),
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = DefaultBreakerConfig().FailureThreshold
	}
	g.cb = gobreaker.NewCircuitBreaker[*core.CachedRecommendation](gobreaker.Settings{
		Name:        "cache-" + backend,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 调用方取消不是后端故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cache circuit breaker state changed")
			metrics.CacheBreakerState.WithLabelValues(backend).Set(float64(to))
		},
	})
	return g
}

// State 返回熔断器当前状态
func (g *Guarded) State() gobreaker.State {
	return g.cb.State()
}

// Get 读取缓存；任何失败（含熔断）都返回 (nil, nil)。
func (g *Guarded) Get(ctx context.Context, userID core.UserID) (*core.CachedRecommendation, error) {
	rec, err := g.cb.Execute(func() (*core.CachedRecommendation, error) {
		return g.inner.Get(ctx, userID)
	})
	if err != nil {
		metrics.RecordCacheError(g.backend, "get")
		g.logger.Warn().Err(err).Int64("user_id", int64(userID)).Msg("cache read failed, recomputing")
		return nil, nil
	}
	hit := rec != nil && len(rec.Items) > 0
	metrics.RecordCacheLookup(g.backend, hit)
	if !hit {
		return nil, nil
	}
	return rec, nil
}

// Put 写入缓存；失败只记录日志。
func (g *Guarded) Put(ctx context.Context, userID core.UserID, items []string) error {
	if len(items) == 0 {
		return nil
	}
	_, err := g.cb.Execute(func() (*core.CachedRecommendation, error) {
		return nil, g.inner.Put(ctx, userID, items)
	})
	if err != nil {
		metrics.RecordCacheError(g.backend, "put")
		g.logger.Warn().Err(err).Int64("user_id", int64(userID)).Msg("cache write failed")
	}
	return nil
}

var _ core.RecommendationCache = (*Guarded)(nil)
