package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/animerec/core"
)

func items(names ...string) []*core.Item {
	out := make([]*core.Item, 0, len(names))
	for i, n := range names {
		out = append(out, core.NewItem(core.ItemID(i+1), n))
	}
	return out
}

func TestTopNNode(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		params map[string]any
		want   []string
	}{
		{name: "truncate", n: 2, want: []string{"a", "b"}},
		{name: "shorter than n", n: 10, want: []string{"a", "b", "c"}},
		{name: "zero disables", n: 0, want: []string{"a", "b", "c"}},
		{name: "request override", n: 3, params: map[string]any{core.ParamTopN: 1}, want: []string{"a"}},
		{name: "request zero", n: 0, params: map[string]any{core.ParamTopN: 0}, want: []string{}},
		{name: "request negative", n: 3, params: map[string]any{core.ParamTopN: -1}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &TopNNode{N: tt.n}
			out, err := node.Process(context.Background(), &core.RecommendContext{Params: tt.params}, items("a", "b", "c"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, core.Names(out))
		})
	}
}

func TestDiversity(t *testing.T) {
	in := items("a", "b", "c", "d", "e")
	in[0].Genres = "Action, Comedy"
	in[1].Genres = "Action"
	in[2].Genres = "Drama, Action"
	in[3].Genres = ""
	in[4].Genres = " Drama"

	out, err := (&Diversity{}).Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, core.Names(out))

	out, err = (&Diversity{MaxPerGenre: 2}).Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, core.Names(out))
}
