package recall

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/metrics"
	"github.com/rushteam/animerec/model"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/pkg/utils"
)

// ContentExpand 是基于物品 embedding 的内容扩展 Node（i2i）。
//
// 输入为协同候选 U，输出为 U 原样 + 每个候选的 TopK 个相似动画（集合 C）。
// C 中每次命中都是一个独立 Item，同一动画被多个候选扩展到时出现多次，融合时逐次累加。
// 单个候选扩展失败（不在编码表中、没有近邻）只记日志并跳过。
type ContentExpand struct {
	Snapshot *model.Snapshot

	// TopK 每个候选扩展的相似动画数，默认 10
	TopK int

	Logger zerolog.Logger
}

func (n *ContentExpand) Name() string        { return "recall.content" }
func (n *ContentExpand) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *ContentExpand) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Snapshot == nil || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items)*(1+n.topK()))
	out = append(out, items...)

	for _, seed := range items {
		if seed == nil || seed.Source() != core.SourceUserCF {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		neighbors, err := FindSimilarItems(n.Snapshot, seed.ID, SearchOptions{N: n.topK()})
		if err != nil {
			n.Logger.Warn().Err(err).
				Int64("anime_id", int64(seed.ID)).
				Str("anime", seed.Name).
				Msg("content expansion skipped")
			metrics.ContentExpansionSkips.Inc()
			continue
		}
		if len(neighbors) == 0 {
			n.Logger.Info().
				Int64("anime_id", int64(seed.ID)).
				Str("anime", seed.Name).
				Msg("no similar anime found")
			continue
		}

		for _, nb := range neighbors {
			it := nb.Anime.Item()
			it.Score = nb.Score
			it.PutLabel(core.LabelRecallSource, utils.Label{Value: core.SourceContent, Source: "recall"})
			it.PutLabel(core.LabelSeed, utils.Label{Value: seed.Name, Source: "recall"})
			out = append(out, it)
		}
	}
	return out, nil
}

func (n *ContentExpand) topK() int {
	if n.TopK <= 0 {
		return core.DefaultContentNeighbor
	}
	return n.TopK
}
