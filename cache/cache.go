// Package cache 实现"用户最近一次推荐结果"的缓存。
//
// KVCache 建立在任意 core.Store（memory / redis / badger）之上；
// Guarded 包装任意 core.RecommendationCache，把读写失败降级为未命中。
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/animerec/core"
)

const defaultKeyPrefix = "rec:user:"

// KVCache 把推荐列表以 JSON 存入 KV Store。
type KVCache struct {
	store     core.Store
	keyPrefix string
	ttl       time.Duration
	now       func() time.Time
}

// Option 配置 KVCache
type Option func(*KVCache)

// WithKeyPrefix 设置 key 前缀，默认 "rec:user:"
func WithKeyPrefix(prefix string) Option {
	return func(c *KVCache) { c.keyPrefix = prefix }
}

// WithTTL 设置过期时间，<=0 表示不过期
func WithTTL(ttl time.Duration) Option {
	return func(c *KVCache) { c.ttl = ttl }
}

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(c *KVCache) { c.now = now }
}

func NewKVCache(store core.Store, opts ...Option) *KVCache {
	c := &KVCache{
		store:     store,
		keyPrefix: defaultKeyPrefix,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name 返回底层 Store 名称
func (c *KVCache) Name() string { return c.store.Name() }

func (c *KVCache) key(userID core.UserID) string {
	return c.keyPrefix + userID.String()
}

func (c *KVCache) Get(ctx context.Context, userID core.UserID) (*core.CachedRecommendation, error) {
	data, err := c.store.Get(ctx, c.key(userID))
	if core.IsStoreNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", c.key(userID), err)
	}

	var rec core.CachedRecommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", c.key(userID), err)
	}
	return &rec, nil
}

func (c *KVCache) Put(ctx context.Context, userID core.UserID, items []string) error {
	if len(items) == 0 {
		return nil
	}
	data, err := json.Marshal(core.CachedRecommendation{
		UserID:    userID,
		Items:     items,
		CreatedAt: c.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	var ttl []int
	if c.ttl > 0 {
		// Store 以秒为单位，向上取整，避免亚秒 TTL 变成永不过期
		ttl = append(ttl, int((c.ttl+time.Second-1)/time.Second))
	}
	if err := c.store.Set(ctx, c.key(userID), data, ttl...); err != nil {
		return fmt.Errorf("cache put %s: %w", c.key(userID), err)
	}
	return nil
}

// Close 关闭底层 Store
func (c *KVCache) Close() error {
	return c.store.Close()
}

var _ core.RecommendationCache = (*KVCache)(nil)
