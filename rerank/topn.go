package rerank

import (
	"context"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/pkg/conv"
)

// TopNNode 是一个 Top-N 截断节点，用于在融合排序后截取前 N 个物品。
//
// 请求级参数 top_n 优先于 N，请求给出 <= 0 时返回空；未覆盖且 N <= 0 时不截断。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if rctx != nil {
		if v, ok := conv.ToInt(rctx.Params[core.ParamTopN]); ok {
			if v <= 0 {
				return []*core.Item{}, nil
			}
			limit = v
		}
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
