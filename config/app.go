package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/animerec/cache"
	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/pkg/logging"
	"github.com/rushteam/animerec/service"
)

// 缓存后端
const (
	CacheNone     = "none"
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CacheBadger   = "badger"
	CachePostgres = "postgres"
)

// EnvPrefix 是环境变量覆盖的前缀
const EnvPrefix = "ANIMEREC_"

// AppConfig 是进程级配置（YAML），环境变量可覆盖其中常用项。
//
//	artifacts_dir: artifacts
//	recommend:
//	  top_n: 10
//	cache:
//	  backend: redis
//	  ttl: 1h
//	  redis: {addr: localhost:6379}
//	server:
//	  addr: :5000
//	log:
//	  level: info
//	pipeline:
//	  nodes: [...]
type AppConfig struct {
	ArtifactsDir string           `yaml:"artifacts_dir"`
	Recommend    service.Settings `yaml:"recommend"`
	Coalesce     bool             `yaml:"coalesce"`
	Pipeline     *pipeline.Config `yaml:"pipeline"`
	Cache        CacheConfig      `yaml:"cache"`
	Server       ServerConfig     `yaml:"server"`
	Log          logging.Config   `yaml:"log"`
}

// CacheConfig 是推荐结果缓存配置。
type CacheConfig struct {
	Backend  string        `yaml:"backend"` // none / memory / redis / badger / postgres
	TTL      time.Duration `yaml:"ttl"`
	Redis    RedisConfig   `yaml:"redis"`
	Badger   BadgerConfig  `yaml:"badger"`
	Postgres PGConfig      `yaml:"postgres"`
	Breaker  BreakerConfig `yaml:"breaker"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type BadgerConfig struct {
	Dir string `yaml:"dir"` // 为空时使用内存模式
}

type PGConfig struct {
	DSN          string `yaml:"dsn"`
	EnsureSchema bool   `yaml:"ensure_schema"`
}

// BreakerConfig 是缓存熔断配置
type BreakerConfig struct {
	FailureThreshold uint32        `yaml:"failure_threshold"`
	Timeout          time.Duration `yaml:"timeout"`
}

// ToCache 转为 cache.BreakerConfig，未配置项使用默认值
func (b BreakerConfig) ToCache() cache.BreakerConfig {
	out := cache.DefaultBreakerConfig()
	if b.FailureThreshold > 0 {
		out.FailureThreshold = b.FailureThreshold
	}
	if b.Timeout > 0 {
		out.Timeout = b.Timeout
	}
	return out
}

// ServerConfig 是 HTTP 服务配置。
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultAppConfig 返回默认配置
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		ArtifactsDir: "artifacts",
		Recommend:    service.DefaultSettings(),
		Coalesce:     true,
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     time.Hour,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Server: ServerConfig{
			Addr:            ":5000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: logging.Config{Level: "info", Format: "json"},
	}
}

// Load 加载配置：默认值 ← YAML 文件（path 为空则跳过） ← .env ← ANIMEREC_* 环境变量。
// .env 不存在时静默跳过。
func Load(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, core.NewConfigError(core.ModuleConfig, fmt.Sprintf("config: read %s: %v", path, err))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, core.NewConfigError(core.ModuleConfig, fmt.Sprintf("config: parse %s: %v", path, err))
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, core.NewConfigError(core.ModuleConfig, fmt.Sprintf("config: load .env: %v", err))
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv 用环境变量覆盖配置。lookup 通常为 os.LookupEnv，测试可替换。
func (c *AppConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, set func(string) error) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			}
		}
	}

	str("ARTIFACTS_DIR", &c.ArtifactsDir)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("REDIS_ADDR", &c.Cache.Redis.Addr)
	str("REDIS_PASSWORD", &c.Cache.Redis.Password)
	str("BADGER_DIR", &c.Cache.Badger.Dir)
	str("DATABASE_URL", &c.Cache.Postgres.DSN)
	str("SERVER_ADDR", &c.Server.Addr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	num("REDIS_DB", func(v string) (err error) { c.Cache.Redis.DB, err = strconv.Atoi(v); return })
	num("CACHE_TTL", func(v string) (err error) { c.Cache.TTL, err = time.ParseDuration(v); return })
	num("TOP_N", func(v string) (err error) { c.Recommend.TopN, err = strconv.Atoi(v); return })
	num("USER_WEIGHT", func(v string) (err error) {
		c.Recommend.UserWeight, err = strconv.ParseFloat(v, 64)
		return
	})
	num("CONTENT_WEIGHT", func(v string) (err error) {
		c.Recommend.ContentWeight, err = strconv.ParseFloat(v, 64)
		return
	})

	if len(errs) > 0 {
		return core.NewConfigError(core.ModuleConfig, fmt.Sprintf("config: invalid environment: %v", errors.Join(errs...)))
	}
	return nil
}

// Validate 校验配置，失败返回 CONFIG 错误
func (c *AppConfig) Validate() error {
	var problems []string
	if c.ArtifactsDir == "" {
		problems = append(problems, "artifacts_dir is required")
	}
	r := c.Recommend
	if r.SimilarUsers <= 0 || r.CandidateItems <= 0 || r.ContentNeighbors <= 0 {
		problems = append(problems, "recommend: similar_users, candidate_items and content_neighbors must be positive")
	}
	if r.TopN <= 0 {
		problems = append(problems, "recommend.top_n must be positive")
	}
	if r.UserWeight < 0 || r.ContentWeight < 0 {
		problems = append(problems, "recommend weights must be non-negative")
	}
	if r.Percentile < 0 || r.Percentile > 100 {
		problems = append(problems, "recommend.percentile must be within [0, 100]")
	}

	switch strings.ToLower(c.Cache.Backend) {
	case "", CacheNone, CacheMemory, CacheBadger:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			problems = append(problems, "cache.redis.addr is required")
		}
	case CachePostgres:
		if c.Cache.Postgres.DSN == "" {
			problems = append(problems, "cache.postgres.dsn is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown cache backend %q", c.Cache.Backend))
	}

	if c.Pipeline != nil && len(c.Pipeline.Nodes) > 0 {
		if err := ValidatePipelineConfig(c.Pipeline); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return core.NewConfigError(core.ModuleConfig, "config: "+strings.Join(problems, "; "))
	}
	return nil
}
