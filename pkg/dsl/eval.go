package dsl

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/animerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译好的 CEL 表达式，编译一次，可并发对多个 Item 求值。
//
// 表达式语法（CEL 标准语法）：
//   - 文本：item.name.startsWith("Naruto")
//   - 类型："Hentai" in item.genres
//   - 数值：item.score >= 1.0
//   - 标签：label.recall_source == "content"
//   - 请求：rctx.user_id == 11880
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。空表达式返回 nil Program，Match 恒为 false。
func Compile(expr string) (*Program, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式
func (p *Program) String() string {
	if p == nil {
		return ""
	}
	return p.expr
}

// Match 对 item 求值，表达式必须返回 bool。
func (p *Program) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p == nil || item == nil {
		return false, nil
	}
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 label 会报错，用 label.key != null 检查存在性
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(it.Labels))
	for k, v := range it.Labels {
		labels[k] = v.Value
	}

	meta := it.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	item := map[string]any{
		"id":       int64(it.ID),
		"name":     it.Name,
		"genres":   SplitGenres(it.Genres),
		"synopsis": it.Synopsis,
		"score":    it.Score,
		"meta":     meta,
	}

	r := map[string]any{"user_id": int64(0), "params": map[string]any{}}
	if rctx != nil {
		r["user_id"] = int64(rctx.UserID)
		if rctx.Params != nil {
			r["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":  item,
		"label": labels,
		"rctx":  r,
	}
}

// SplitGenres 把 "Action, Comedy, Shounen" 拆为 ["Action", "Comedy", "Shounen"]
func SplitGenres(genres string) []string {
	if genres == "" {
		return []string{}
	}
	parts := strings.Split(genres, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
