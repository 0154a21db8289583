package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/animerec/core"
)

// Hook 在每个 Node 执行后被调用，用于打点/日志。
type Hook func(node Node, in, out int, elapsed time.Duration, err error)

// Pipeline 把推荐逻辑拆成可组合的 Node 链，按顺序同步执行。
type Pipeline struct {
	Nodes []Node
	Hooks []Hook
}

// Run 依次执行各 Node；任一 Node 出错即中止，错误附带 Node 名称并保留原始错误链。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		for _, h := range p.Hooks {
			h(node, len(cur), len(next), time.Since(start), err)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// NodeNames 返回各 Node 名称，用于日志与健康检查。
func (p *Pipeline) NodeNames() []string {
	names := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		names = append(names, n.Name())
	}
	return names
}
