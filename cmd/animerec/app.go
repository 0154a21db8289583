package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rushteam/animerec/artifact"
	"github.com/rushteam/animerec/config"
	"github.com/rushteam/animerec/metrics"
	"github.com/rushteam/animerec/pkg/logging"
	"github.com/rushteam/animerec/service"
)

// app 是一次命令运行所需的全部组件
type app struct {
	cfg    *config.AppConfig
	logger zerolog.Logger
	rec    *service.Recommender
	closer io.Closer
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// loadConfig 读取配置并应用命令行覆盖
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("artifacts"); dir != "" {
		cfg.ArtifactsDir = dir
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

// newApp 加载产物、构建链路与缓存。withCache=false 时不连接缓存（离线命令）。
func newApp(ctx context.Context, cmd *cobra.Command, withCache bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Log)
	logger := logging.Component("animerec")

	snap, err := artifact.NewLoader(cfg.ArtifactsDir, logging.Component("artifact")).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}
	metrics.UpdateSnapshot(snap.Users().Len(), snap.Items().Len(), snap.Catalog().Len(), snap.Ratings().Len())

	pipe, err := config.BuildPipeline(cfg.Pipeline, config.Deps{
		Snapshot: snap,
		Settings: cfg.Recommend,
		Logger:   logging.Component("pipeline"),
	})
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	opts := []service.Option{
		service.WithLogger(logging.Component("recommend")),
		service.WithCoalesce(cfg.Coalesce),
	}
	var closer io.Closer
	if withCache {
		c, cl, err := config.OpenCache(ctx, cfg.Cache, logging.Component("cache"))
		if err != nil {
			// 缓存不可用不影响推荐，只是每次重新计算
			logger.Warn().Err(err).Str("backend", cfg.Cache.Backend).Msg("cache unavailable, continuing without cache")
		} else {
			opts = append(opts, service.WithCache(c))
			closer = cl
		}
	}

	logger.Info().
		Str("snapshot", snap.Version()).
		Strs("pipeline", pipe.NodeNames()).
		Msg("recommender ready")

	return &app{
		cfg:    cfg,
		logger: logger,
		rec:    service.NewRecommender(snap, pipe, opts...),
		closer: closer,
	}, nil
}
