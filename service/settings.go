package service

import (
	"github.com/rs/zerolog"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/model"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/rank"
	"github.com/rushteam/animerec/recall"
	"github.com/rushteam/animerec/rerank"
)

// Settings 是 Hybrid 推荐的默认参数。
type Settings struct {
	SimilarUsers     int     `yaml:"similar_users"`
	CandidateItems   int     `yaml:"candidate_items"`
	ContentNeighbors int     `yaml:"content_neighbors"`
	TopN             int     `yaml:"top_n"`
	UserWeight       float64 `yaml:"user_weight"`
	ContentWeight    float64 `yaml:"content_weight"`
	Percentile       float64 `yaml:"percentile"`
}

// DefaultSettings 返回默认参数：10 个相似用户、10 个候选、每个候选扩展 10 个、两路权重各 0.5。
func DefaultSettings() Settings {
	return Settings{
		SimilarUsers:     core.DefaultSimilarUsers,
		CandidateItems:   core.DefaultCandidateItems,
		ContentNeighbors: core.DefaultContentNeighbor,
		TopN:             core.DefaultTopN,
		UserWeight:       core.DefaultUserWeight,
		ContentWeight:    core.DefaultContentWeight,
		Percentile:       core.DefaultPercentile,
	}
}

// DefaultPipeline 构建标准的 Hybrid 链路：
//
//	recall.u2u → recall.content → rank.fusion → rerank.topn
func DefaultPipeline(snap *model.Snapshot, s Settings, logger zerolog.Logger) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.UserCF{
				Snapshot:     snap,
				SimilarUsers: s.SimilarUsers,
				TopKItems:    s.CandidateItems,
				Percentile:   s.Percentile,
				Logger:       logger,
			},
			&recall.ContentExpand{
				Snapshot: snap,
				TopK:     s.ContentNeighbors,
				Logger:   logger,
			},
			&rank.Fusion{
				UserWeight:    s.UserWeight,
				ContentWeight: s.ContentWeight,
			},
			&rerank.TopNNode{N: s.TopN},
		},
	}
}
