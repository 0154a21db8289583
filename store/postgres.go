package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"

	"github.com/rushteam/animerec/core"
)

const schemaUserRecommendations = `
CREATE TABLE IF NOT EXISTS user_recommendations (
	id                 BIGSERIAL PRIMARY KEY,
	user_id            BIGINT      NOT NULL,
	recommended_animes JSONB       NOT NULL,
	timestamp          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_user_recommendations_user_ts
	ON user_recommendations (user_id, timestamp DESC);`

// PostgresCache 把每次推荐结果追加写入 user_recommendations 表，读取时取最新一行。
// 实现 core.RecommendationCache。
type PostgresCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresCache 打开连接并 Ping。
func NewPostgresCache(dsn string) (*PostgresCache, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPostgresCacheFromDB(db), nil
}

// NewPostgresCacheFromDB 包装已有连接池
func NewPostgresCacheFromDB(db *sql.DB) *PostgresCache {
	return &PostgresCache{db: db, now: time.Now}
}

// EnsureSchema 建表（幂等）
func (p *PostgresCache) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaUserRecommendations); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Get 返回用户最新的一条推荐记录，没有记录返回 (nil, nil)。
func (p *PostgresCache) Get(ctx context.Context, userID core.UserID) (*core.CachedRecommendation, error) {
	query := `SELECT recommended_animes, timestamp
	          FROM user_recommendations
	          WHERE user_id = $1
	          ORDER BY timestamp DESC, id DESC
	          LIMIT 1`

	var (
		raw []byte
		ts  time.Time
	)
	err := p.db.QueryRowContext(ctx, query, int64(userID)).Scan(&raw, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return &core.CachedRecommendation{
		UserID:    userID,
		Items:     items,
		CreatedAt: ts,
	}, nil
}

// Put 追加一行记录。空列表不写。
func (p *PostgresCache) Put(ctx context.Context, userID core.UserID, items []string) error {
	if len(items) == 0 {
		return nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO user_recommendations (user_id, recommended_animes, timestamp) VALUES ($1, $2, $3)`,
		int64(userID), raw, p.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert recommendations: %w", err)
	}
	return nil
}

func (p *PostgresCache) Name() string { return "postgres" }

func (p *PostgresCache) Close() error {
	return p.db.Close()
}

var _ core.RecommendationCache = (*PostgresCache)(nil)
