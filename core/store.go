package core

import (
	"context"
	"time"
)

// Store 是 KV 存储的领域接口，定义在 core，由 store 包实现（memory / redis / badger）。
// 推荐结果缓存建立在它之上。
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值，不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value，ttl 单位秒，<=0 表示不过期
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// Close 关闭连接/释放资源
	Close() error
}

// CachedRecommendation 是缓存中保存的推荐列表。
type CachedRecommendation struct {
	UserID    UserID    `json:"user_id"`
	Items     []string  `json:"recommended_animes"`
	CreatedAt time.Time `json:"timestamp"`
}

// RecommendationCache 是"用户最近一次推荐结果"的缓存协作方。
//
// 约定：
//   - Get 未命中返回 (nil, nil)，只有读失败才返回 error
//   - Put 只在非空结果时调用
type RecommendationCache interface {
	Get(ctx context.Context, userID UserID) (*CachedRecommendation, error)
	Put(ctx context.Context, userID UserID, items []string) error
}
