package filter

import (
	"context"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式过滤，表达式为 true 的物品被移除。
//
//	"Hentai" in item.genres
//	item.name.startsWith("Unknown Anime")
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译表达式，编译失败返回错误。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// Expr 返回原始表达式
func (f *ExprFilter) Expr() string {
	return f.prg.String()
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	return f.prg.Match(item, rctx)
}
