package filter

import (
	"context"

	"github.com/rushteam/animerec/core"
)

// BlacklistFilter 是黑名单过滤器，按动画 ID 或展示名过滤。
type BlacklistFilter struct {
	ids   map[core.ItemID]struct{}
	names map[string]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(ids []core.ItemID, names []string) *BlacklistFilter {
	f := &BlacklistFilter{
		ids:   make(map[core.ItemID]struct{}, len(ids)),
		names: make(map[string]struct{}, len(names)),
	}
	for _, id := range ids {
		f.ids[id] = struct{}{}
	}
	for _, name := range names {
		f.names[name] = struct{}{}
	}
	return f
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if _, ok := f.ids[item.ID]; ok {
		return true, nil
	}
	_, ok := f.names[item.Name]
	return ok, nil
}
