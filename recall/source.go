package recall

import (
	"context"

	"github.com/rushteam/animerec/core"
)

// Source 表示一个可独立调用的召回源，不依赖上游 items。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

var _ Source = (*UserCF)(nil)
