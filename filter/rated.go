package filter

import (
	"context"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/store"
)

// History 提供用户评分历史。
type History interface {
	History(userID core.UserID) []store.Rating
}

// RatedFilter 过滤目标用户已经评分过的动画。
type RatedFilter struct {
	Ratings History
}

func (f *RatedFilter) Name() string {
	return "filter.rated"
}

func (f *RatedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Ratings == nil || rctx == nil || item == nil {
		return false, nil
	}
	for _, r := range f.Ratings.History(rctx.UserID) {
		if r.Item == item.ID {
			return true, nil
		}
	}
	return false, nil
}
