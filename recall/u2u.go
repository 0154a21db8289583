package recall

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/model"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/pkg/utils"
	"github.com/rushteam/animerec/store"
)

// Candidate 是协同过滤候选：被多少个相似用户同时看好。
type Candidate struct {
	Anime   store.Anime
	Support int
}

// PreferenceFunc 返回某个用户的高分偏好，无评分时返回 NOT_FOUND 错误。
type PreferenceFunc func(userID core.UserID) ([]Preference, error)

// AggregateCandidates 汇总相似用户的高分偏好，得到协同候选。
//
//  1. 跳过目标用户本人
//  2. 取每个相似用户的高分偏好，减去目标用户已有的偏好
//  3. 按"看好该动画的相似用户数"（支持数）计数
//  4. 支持数降序；同支持数按首次出现顺序（相似用户按相似度降序遍历，组内按偏好顺序）
//  5. 截断为 n 个
//
// 没有任何可用偏好时返回空切片。
func AggregateCandidates(
	target core.UserID,
	similar []Neighbor[core.UserID],
	targetPrefs []Preference,
	prefsOf PreferenceFunc,
	n int,
) []Candidate {
	if n <= 0 {
		n = core.DefaultCandidateItems
	}
	known := make(map[core.ItemID]struct{}, len(targetPrefs))
	for _, p := range targetPrefs {
		known[p.ID] = struct{}{}
	}

	index := make(map[core.ItemID]int)
	tally := make([]Candidate, 0)
	for _, u := range similar {
		if u.ID == target {
			continue
		}
		prefs, err := prefsOf(u.ID)
		if err != nil {
			continue
		}
		for _, p := range prefs {
			if _, ok := known[p.ID]; ok {
				continue
			}
			if i, ok := index[p.ID]; ok {
				tally[i].Support++
				continue
			}
			index[p.ID] = len(tally)
			tally = append(tally, Candidate{Anime: p.Anime, Support: 1})
		}
	}

	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].Support > tally[j].Support
	})
	if len(tally) > n {
		tally = tally[:n]
	}
	return tally
}

// UserCF 是基于用户 embedding 的协同召回 Node（u2u → u2i）。
//
// 算法流程：
//  1. 在用户 embedding 上找 SimilarUsers 个相似用户
//  2. 取目标用户的高分偏好，写入 rctx.Preferences
//  3. 汇总相似用户的高分偏好，得到至多 TopKItems 个候选（集合 U）
//
// 用户未知或没有评分时返回 NOT_FOUND 错误，由调用方映射为空结果。
type UserCF struct {
	Snapshot *model.Snapshot

	// SimilarUsers 相似用户数，默认 10
	SimilarUsers int

	// TopKItems 候选上限，默认 10
	TopKItems int

	// Percentile 高分偏好分位数，默认 75
	Percentile float64

	Logger zerolog.Logger
}

func (r *UserCF) Name() string        { return "recall.u2u" }
func (r *UserCF) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *UserCF) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *UserCF) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Snapshot == nil || rctx == nil {
		return nil, nil
	}
	similarUsers := r.SimilarUsers
	if similarUsers <= 0 {
		similarUsers = core.DefaultSimilarUsers
	}

	similar, err := FindSimilarUsers(r.Snapshot, rctx.UserID, SearchOptions{N: similarUsers})
	if err != nil {
		return nil, err
	}

	prefsOf := func(userID core.UserID) ([]Preference, error) {
		return ExtractPreferences(r.Snapshot.Ratings(), r.Snapshot.Catalog(), userID, r.Percentile)
	}
	targetPrefs, err := prefsOf(rctx.UserID)
	if err != nil {
		return nil, err
	}
	rctx.Preferences = make([]*core.Item, 0, len(targetPrefs))
	for _, p := range targetPrefs {
		it := p.Anime.Item()
		it.Score = p.Rating
		rctx.Preferences = append(rctx.Preferences, it)
	}

	candidates := AggregateCandidates(rctx.UserID, similar, targetPrefs, prefsOf, r.TopKItems)
	r.Logger.Debug().
		Int64("user_id", int64(rctx.UserID)).
		Int("similar_users", len(similar)).
		Int("preferences", len(targetPrefs)).
		Int("candidates", len(candidates)).
		Msg("user-based candidates collected")

	out := make([]*core.Item, 0, len(candidates))
	for _, c := range candidates {
		it := c.Anime.Item()
		it.Score = float64(c.Support)
		it.PutLabel(core.LabelRecallSource, utils.Label{Value: core.SourceUserCF, Source: "recall"})
		it.PutLabel(core.LabelSupport, utils.IntLabel(c.Support, "recall"))
		out = append(out, it)
	}
	return out, nil
}
