package config

import (
	"fmt"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/filter"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/pkg/conv"
	"github.com/rushteam/animerec/rank"
	"github.com/rushteam/animerec/recall"
	"github.com/rushteam/animerec/rerank"
)

func init() {
	// Recall
	Register("recall.u2u", buildUserCFNode)
	Register("recall.content", buildContentNode)

	// Filter
	Register("filter", buildFilterNode)
	Register("filter.expr", buildExprFilterNode)
	Register("filter.rated", buildRatedFilterNode)

	// Rank
	Register("rank.fusion", buildFusionNode)

	// ReRank
	Register("rerank.topn", buildTopNNode)
	Register("rerank.diversity", buildDiversityNode)
}

func buildUserCFNode(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	if deps.Snapshot == nil {
		return nil, fmt.Errorf("recall.u2u: snapshot is required")
	}
	return &recall.UserCF{
		Snapshot:     deps.Snapshot,
		SimilarUsers: conv.ConfigGetInt(cfg, "similar_users", deps.Settings.SimilarUsers),
		TopKItems:    conv.ConfigGetInt(cfg, "top_k", deps.Settings.CandidateItems),
		Percentile:   conv.ConfigGetFloat64(cfg, "percentile", deps.Settings.Percentile),
		Logger:       deps.Logger,
	}, nil
}

func buildContentNode(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	if deps.Snapshot == nil {
		return nil, fmt.Errorf("recall.content: snapshot is required")
	}
	return &recall.ContentExpand{
		Snapshot: deps.Snapshot,
		TopK:     conv.ConfigGetInt(cfg, "top_k", deps.Settings.ContentNeighbors),
		Logger:   deps.Logger,
	}, nil
}

func buildFusionNode(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	return &rank.Fusion{
		UserWeight:    conv.ConfigGetFloat64(cfg, "user_weight", deps.Settings.UserWeight),
		ContentWeight: conv.ConfigGetFloat64(cfg, "content_weight", deps.Settings.ContentWeight),
	}, nil
}

func buildTopNNode(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", deps.Settings.TopN)}, nil
}

func buildDiversityNode(_ Deps, cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{MaxPerGenre: conv.ConfigGetInt(cfg, "max_per_genre", 1)}, nil
}

func buildExprFilterNode(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	f, err := newExprFilter(cfg)
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}, Logger: deps.Logger}, nil
}

func buildRatedFilterNode(deps Deps, _ map[string]any) (pipeline.Node, error) {
	if deps.Snapshot == nil {
		return nil, fmt.Errorf("filter.rated: snapshot is required")
	}
	return &filter.FilterNode{
		Filters: []filter.Filter{&filter.RatedFilter{Ratings: deps.Snapshot.Ratings()}},
		Logger:  deps.Logger,
	}, nil
}

// buildFilterNode 组合多个过滤器：
//
//	- type: filter
//	  config:
//	    filters:
//	      - type: expr
//	        expr: '"Hentai" in item.genres'
//	      - type: rated
//	      - type: blacklist
//	        ids: [1, 5]
//	        names: ["Naruto"]
func buildFilterNode(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet[string](filterMap, "type", "")
		switch filterType {
		case "expr":
			f, err := newExprFilter(filterMap)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)

		case "rated":
			if deps.Snapshot == nil {
				return nil, fmt.Errorf("rated filter: snapshot is required")
			}
			filters = append(filters, &filter.RatedFilter{Ratings: deps.Snapshot.Ratings()})

		case "blacklist":
			raw := conv.ToInt64Slice(filterMap["ids"])
			ids := make([]core.ItemID, 0, len(raw))
			for _, id := range raw {
				ids = append(ids, core.ItemID(id))
			}
			filters = append(filters, filter.NewBlacklistFilter(ids, conv.ToStringSlice(filterMap["names"])))

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters, Logger: deps.Logger}, nil
}

func newExprFilter(cfg map[string]any) (*filter.ExprFilter, error) {
	expr := conv.ConfigGet[string](cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr filter: expr is required")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, fmt.Errorf("expr filter: %w", err)
	}
	return f, nil
}
