package rerank

import (
	"context"
	"strings"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pipeline"
)

// Diversity 是按主类型打散的 ReRank：同一主类型（Genres 的第一个）最多保留 MaxPerGenre 个。
// 没有类型信息的物品总是保留。保持输入顺序。
type Diversity struct {
	// MaxPerGenre 每个主类型最多保留的数量，默认 1
	MaxPerGenre int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	limit := n.MaxPerGenre
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		genre := primaryGenre(it.Genres)
		if genre == "" {
			out = append(out, it)
			continue
		}
		if seen[genre] >= limit {
			continue
		}
		seen[genre]++
		out = append(out, it)
	}
	return out, nil
}

func primaryGenre(genres string) string {
	first, _, _ := strings.Cut(genres, ",")
	return strings.TrimSpace(first)
}
