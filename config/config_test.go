package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/animerec/cache"
	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/filter"
	"github.com/rushteam/animerec/model/modeltest"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/recall"
	"github.com/rushteam/animerec/service"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "animerec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, service.DefaultSettings(), cfg.Recommend)
	assert.True(t, cfg.Coalesce)
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
artifacts_dir: /data/artifacts
recommend:
  top_n: 5
  user_weight: 0.7
cache:
  backend: redis
  ttl: 30m
  redis:
    addr: redis:6379
server:
  addr: :8080
log:
  level: debug
pipeline:
  name: hybrid
  nodes:
    - type: recall.u2u
    - type: rerank.topn
      config:
        n: 3
`)
	t.Setenv("ANIMEREC_CACHE_TTL", "2h")
	t.Setenv("ANIMEREC_CONTENT_WEIGHT", "0.3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/artifacts", cfg.ArtifactsDir)
	assert.Equal(t, 5, cfg.Recommend.TopN)
	assert.Equal(t, 0.7, cfg.Recommend.UserWeight)
	assert.Equal(t, 0.3, cfg.Recommend.ContentWeight)
	// 未在 YAML 中出现的字段保留默认值
	assert.Equal(t, core.DefaultSimilarUsers, cfg.Recommend.SimilarUsers)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NotNil(t, cfg.Pipeline)
	assert.Len(t, cfg.Pipeline.Nodes, 2)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, core.IsConfig(err))

	_, err = Load(writeConfig(t, "recommend: [1, 2"))
	assert.True(t, core.IsConfig(err))

	_, err = Load(writeConfig(t, `
pipeline:
  nodes:
    - type: recall.ann
`))
	require.Error(t, err)
	assert.True(t, core.IsConfig(err))
	assert.Contains(t, err.Error(), `unsupported node type "recall.ann"`)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ANIMEREC_ARTIFACTS_DIR":  "/srv/artifacts",
		"ANIMEREC_CACHE_BACKEND":  "postgres",
		"ANIMEREC_DATABASE_URL":   "postgres://localhost/animerec",
		"ANIMEREC_REDIS_DB":       "2",
		"ANIMEREC_TOP_N":          "20",
		"ANIMEREC_USER_WEIGHT":    "0.25",
		"ANIMEREC_SERVER_ADDR":    "",
		"ANIMEREC_LOG_FORMAT":     "console",
		"ANIMEREC_REDIS_PASSWORD": "secret",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := DefaultAppConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "/srv/artifacts", cfg.ArtifactsDir)
	assert.Equal(t, CachePostgres, cfg.Cache.Backend)
	assert.Equal(t, "postgres://localhost/animerec", cfg.Cache.Postgres.DSN)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, "secret", cfg.Cache.Redis.Password)
	assert.Equal(t, 20, cfg.Recommend.TopN)
	assert.Equal(t, 0.25, cfg.Recommend.UserWeight)
	assert.Equal(t, ":5000", cfg.Server.Addr, "empty values are ignored")
	assert.Equal(t, "console", cfg.Log.Format)
	require.NoError(t, cfg.Validate())

	env = map[string]string{"ANIMEREC_TOP_N": "ten", "ANIMEREC_CACHE_TTL": "soon"}
	err := DefaultAppConfig().ApplyEnv(lookup)
	require.Error(t, err)
	assert.True(t, core.IsConfig(err))
	assert.Contains(t, err.Error(), "ANIMEREC_TOP_N")
	assert.Contains(t, err.Error(), "ANIMEREC_CACHE_TTL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AppConfig)
		want   string
	}{
		{name: "artifacts dir", mutate: func(c *AppConfig) { c.ArtifactsDir = "" }, want: "artifacts_dir is required"},
		{name: "top n", mutate: func(c *AppConfig) { c.Recommend.TopN = 0 }, want: "top_n must be positive"},
		{name: "weights", mutate: func(c *AppConfig) { c.Recommend.ContentWeight = -1 }, want: "non-negative"},
		{name: "percentile", mutate: func(c *AppConfig) { c.Recommend.Percentile = 101 }, want: "percentile"},
		{name: "backend", mutate: func(c *AppConfig) { c.Cache.Backend = "memcached" }, want: `unknown cache backend "memcached"`},
		{name: "redis addr", mutate: func(c *AppConfig) { c.Cache.Backend = CacheRedis; c.Cache.Redis.Addr = "" }, want: "cache.redis.addr"},
		{name: "postgres dsn", mutate: func(c *AppConfig) { c.Cache.Backend = CachePostgres }, want: "cache.postgres.dsn"},
		{name: "empty node type", mutate: func(c *AppConfig) {
			c.Pipeline = &pipeline.Config{Nodes: []pipeline.NodeConfig{{Type: ""}}}
		}, want: "node type is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAppConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, core.IsConfig(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.NoError(t, DefaultAppConfig().Validate())
}

func TestSupportedTypes(t *testing.T) {
	assert.Equal(t, []string{
		"filter",
		"filter.expr",
		"filter.rated",
		"rank.fusion",
		"recall.content",
		"recall.u2u",
		"rerank.diversity",
		"rerank.topn",
	}, SupportedTypes())
}

func TestBuildPipeline_FromYAML(t *testing.T) {
	cfg, err := pipeline.LoadFromYAML(writeConfig(t, `
pipeline:
  name: hybrid-filtered
  nodes:
    - type: recall.u2u
    - type: recall.content
      config:
        top_k: 1
    - type: rank.fusion
    - type: filter
      config:
        filters:
          - type: blacklist
            names: [Echo]
          - type: rated
          - type: expr
            expr: '"Hentai" in item.genres'
    - type: rerank.topn
      config:
        n: 3
`))
	require.NoError(t, err)

	deps := Deps{Snapshot: modeltest.Hybrid(), Settings: service.DefaultSettings(), Logger: zerolog.Nop()}
	p, err := BuildPipeline(cfg, deps)
	require.NoError(t, err)
	assert.Equal(t, []string{"recall.u2u", "recall.content", "rank.fusion", "filter.node", "rerank.topn"}, p.NodeNames())

	content, ok := p.Nodes[1].(*recall.ContentExpand)
	require.True(t, ok)
	assert.Equal(t, 1, content.TopK)
	fn, ok := p.Nodes[3].(*filter.FilterNode)
	require.True(t, ok)
	assert.Len(t, fn.Filters, 3)

	out, err := p.Run(context.Background(), &core.RecommendContext{UserID: modeltest.UserA}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Delta"}, core.Names(out))
}

func TestBuildPipeline_Default(t *testing.T) {
	deps := Deps{Snapshot: modeltest.Hybrid(), Settings: service.DefaultSettings(), Logger: zerolog.Nop()}
	p, err := BuildPipeline(nil, deps)
	require.NoError(t, err)
	assert.Equal(t, []string{"recall.u2u", "recall.content", "rank.fusion", "rerank.topn"}, p.NodeNames())
}

func TestBuildPipeline_Errors(t *testing.T) {
	deps := Deps{Settings: service.DefaultSettings(), Logger: zerolog.Nop()}

	_, err := BuildPipeline(&pipeline.Config{Nodes: []pipeline.NodeConfig{{Type: "recall.u2u"}}}, deps)
	assert.ErrorContains(t, err, "snapshot is required")

	_, err = BuildPipeline(&pipeline.Config{Nodes: []pipeline.NodeConfig{{Type: "filter.expr"}}}, deps)
	assert.ErrorContains(t, err, "expr is required")

	_, err = BuildPipeline(&pipeline.Config{Nodes: []pipeline.NodeConfig{{
		Type:   "filter",
		Config: map[string]any{"filters": []any{map[string]any{"type": "exposed"}}},
	}}}, deps)
	assert.ErrorContains(t, err, "unknown filter type: exposed")
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()

	c, closer, err := OpenCache(ctx, CacheConfig{Backend: CacheNone}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.NoError(t, closer.Close())

	c, closer, err = OpenCache(ctx, CacheConfig{Backend: CacheMemory, TTL: time.Minute}, zerolog.Nop())
	require.NoError(t, err)
	defer closer.Close()
	_, ok := c.(*cache.Guarded)
	assert.True(t, ok)

	require.NoError(t, c.Put(ctx, 1, []string{"Delta"}))
	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"Delta"}, got.Items)

	bc, bcloser, err := OpenCache(ctx, CacheConfig{Backend: CacheBadger}, zerolog.Nop())
	require.NoError(t, err)
	defer bcloser.Close()
	require.NoError(t, bc.Put(ctx, 2, []string{"Echo"}))
	got, err = bc.Get(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"Echo"}, got.Items)

	_, _, err = OpenCache(ctx, CacheConfig{Backend: "memcached"}, zerolog.Nop())
	assert.True(t, core.IsConfig(err))
}
