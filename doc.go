// Package animerec 是一个混合动画推荐引擎。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（recall.u2u → recall.content → filter → rank.fusion → rerank.topn）
// - Snapshot-first: 训练产物启动时一次性加载为只读快照，请求间无共享可变状态
// - Labels-first: 每个候选携带 recall_source 等标签，融合按来源加权
package animerec

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/animerec/artifact"
	"github.com/rushteam/animerec/model"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/service"
)

// 轻量 facade：便于直接 import "animerec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind
type Snapshot = model.Snapshot
type Recommender = service.Recommender

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)

// Open 从产物目录加载快照，并用默认链路构建推荐服务（无缓存）。
func Open(ctx context.Context, artifactsDir string, logger zerolog.Logger) (*Recommender, error) {
	snap, err := artifact.NewLoader(artifactsDir, logger).Load(ctx)
	if err != nil {
		return nil, err
	}
	pipe := service.DefaultPipeline(snap, service.DefaultSettings(), logger)
	return service.NewRecommender(snap, pipe, service.WithLogger(logger)), nil
}
