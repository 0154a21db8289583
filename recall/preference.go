package recall

import (
	"math"
	"sort"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/store"
)

// RatingSource 提供用户评分历史。
type RatingSource interface {
	History(userID core.UserID) []store.Rating
}

// MetadataLookup 提供按 ID 查元数据的能力。
type MetadataLookup interface {
	LookupByID(id core.ItemID) (store.Anime, bool)
}

// Preference 是用户的一条高分偏好。
type Preference struct {
	store.Anime
	Rating float64
}

// Percentile 计算线性插值分位数（与 numpy.percentile 默认行为一致），p 取 [0, 100]。
// 空输入返回 NaN。
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p = math.Max(0, math.Min(100, p))
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// ExtractPreferences 返回用户评分不低于其自身第 percentile 分位的动画。
//
// 阈值是每个用户自己的相对阈值，打分宽松和严格的用户都能取到各自的高分集合。
// 用户没有任何评分时返回 core.ErrNoRatings；元数据缺失的动画被丢弃。
// 结果按评分降序、ID 升序，同一动画只出现一次。
func ExtractPreferences(ratings RatingSource, catalog MetadataLookup, userID core.UserID, percentile float64) ([]Preference, error) {
	history := ratings.History(userID)
	if len(history) == 0 {
		return nil, core.ErrNoRatings
	}
	if percentile <= 0 {
		percentile = core.DefaultPercentile
	}

	values := make([]float64, len(history))
	for i, r := range history {
		values[i] = r.Value
	}
	threshold := Percentile(values, percentile)

	top := make([]store.Rating, 0, len(history))
	for _, r := range history {
		if r.Value >= threshold {
			top = append(top, r)
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Value != top[j].Value {
			return top[i].Value > top[j].Value
		}
		return top[i].Item < top[j].Item
	})

	seen := make(map[core.ItemID]struct{}, len(top))
	out := make([]Preference, 0, len(top))
	for _, r := range top {
		if _, ok := seen[r.Item]; ok {
			continue
		}
		seen[r.Item] = struct{}{}
		anime, ok := catalog.LookupByID(r.Item)
		if !ok {
			continue
		}
		out = append(out, Preference{Anime: anime, Rating: r.Value})
	}
	return out, nil
}
