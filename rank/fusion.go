package rank

import (
	"context"
	"sort"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/pkg/utils"
)

// Fusion 把协同候选与内容候选按展示名合并为一个打分列表。
//
// 打分规则（加权求和）：
//   - recall_source=u2u 的每次出现累加 UserWeight
//   - recall_source=content 的每次出现累加 ContentWeight
//
// 例如某动画在 U 中出现一次、在两次内容扩展中各出现一次，得分为 UserWeight + 2*ContentWeight。
// 首次出现时以 0 初始化；其它来源的 Item 不参与打分。
// 输出按分数降序，同分保持首次出现顺序（stable sort），因此相同输入总是得到相同输出。
//
// 请求级参数 user_weight / content_weight 可覆盖字段值。
type Fusion struct {
	UserWeight    float64
	ContentWeight float64
}

// NewFusion 返回默认权重（0.5 / 0.5）的 Fusion。
func NewFusion() *Fusion {
	return &Fusion{
		UserWeight:    core.DefaultUserWeight,
		ContentWeight: core.DefaultContentWeight,
	}
}

func (n *Fusion) Name() string        { return "rank.fusion" }
func (n *Fusion) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *Fusion) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	userWeight := rctx.Float(core.ParamUserWeight, n.UserWeight)
	contentWeight := rctx.Float(core.ParamContentWeight, n.ContentWeight)

	byName := make(map[string]*core.Item, len(items))
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		var w float64
		switch it.Source() {
		case core.SourceUserCF:
			w = userWeight
		case core.SourceContent:
			w = contentWeight
		default:
			continue
		}

		agg, ok := byName[it.Name]
		if !ok {
			agg = core.NewItem(it.ID, it.Name)
			agg.Genres = it.Genres
			agg.Synopsis = it.Synopsis
			byName[it.Name] = agg
			out = append(out, agg)
		}
		agg.Score += w
		agg.PutLabel(core.LabelRecallSource, utils.Label{Value: it.Source(), Source: "rank"})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	for _, it := range out {
		it.PutLabel("rank_model", utils.Label{Value: "weighted_sum", Source: "rank"})
	}
	return out, nil
}
