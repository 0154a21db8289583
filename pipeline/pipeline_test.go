package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/animerec/core"
)

type appendNode struct {
	name string
	err  error
}

func (n *appendNode) Name() string { return n.name }
func (n *appendNode) Kind() Kind   { return KindRecall }

func (n *appendNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(0, n.name)), nil
}

func TestPipeline_Run(t *testing.T) {
	var calls []string
	p := &Pipeline{
		Nodes: []Node{&appendNode{name: "a"}, &appendNode{name: "b"}},
		Hooks: []Hook{func(node Node, in, out int, _ time.Duration, err error) {
			assert.NoError(t, err)
			assert.Equal(t, in+1, out)
			calls = append(calls, node.Name())
		}},
	}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, core.Names(out))
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Equal(t, []string{"a", "b"}, p.NodeNames())
}

func TestPipeline_RunError(t *testing.T) {
	var hooked error
	p := &Pipeline{
		Nodes: []Node{
			&appendNode{name: "a"},
			&appendNode{name: "broken", err: core.ErrUserNotFound},
			&appendNode{name: "never"},
		},
		Hooks: []Hook{func(node Node, _, _ int, _ time.Duration, err error) {
			if err != nil {
				hooked = err
			}
			assert.NotEqual(t, "never", node.Name())
		}},
	}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	assert.Nil(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken:")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
	assert.True(t, core.IsNotFound(err))
	assert.True(t, errors.Is(hooked, core.ErrUserNotFound))
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  name: hybrid
  nodes:
    - type: recall.u2u
      config:
        similar_users: 5
    - type: rerank.topn
      config:
        n: 3
`), 0o644))

	cfg, err := LoadFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "hybrid", cfg.Name)
	require.Len(t, cfg.Nodes, 2)
	assert.Equal(t, "recall.u2u", cfg.Nodes[0].Type)
	assert.Equal(t, 5, cfg.Nodes[0].Config["similar_users"])

	f := NewNodeFactory()
	f.Register("recall.u2u", func(map[string]any) (Node, error) { return &appendNode{name: "u2u"}, nil })
	_, err = cfg.BuildPipeline(f)
	assert.ErrorContains(t, err, "unknown node type: rerank.topn")

	f.Register("rerank.topn", func(map[string]any) (Node, error) { return &appendNode{name: "topn"}, nil })
	p, err := cfg.BuildPipeline(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2u", "topn"}, p.NodeNames())
}

func TestLoadFromYAML_Errors(t *testing.T) {
	_, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = (&Config{Name: "empty"}).BuildPipeline(NewNodeFactory())
	assert.ErrorContains(t, err, "has no nodes")
}
