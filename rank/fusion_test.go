package rank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pkg/utils"
)

func hit(name, source string) *core.Item {
	it := core.NewItem(0, name)
	it.PutLabel(core.LabelRecallSource, utils.Label{Value: source, Source: "recall"})
	return it
}

func scores(items []*core.Item) map[string]float64 {
	out := make(map[string]float64, len(items))
	for _, it := range items {
		out[it.Name] = it.Score
	}
	return out
}

func TestFusion_WeightedSum(t *testing.T) {
	in := []*core.Item{
		hit("X", core.SourceUserCF),
		hit("Y", core.SourceUserCF),
		hit("X", core.SourceContent),
		hit("Z", core.SourceContent),
		hit("X", core.SourceContent),
	}
	out, err := NewFusion().Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)

	assert.Equal(t, []string{"X", "Y", "Z"}, core.Names(out))
	assert.Equal(t, map[string]float64{"X": 1.5, "Y": 0.5, "Z": 0.5}, scores(out))
	assert.Equal(t, "u2u|content|content", out[0].Labels[core.LabelRecallSource].Value)
}

func TestFusion_StableTies(t *testing.T) {
	in := []*core.Item{
		hit("C", core.SourceContent),
		hit("A", core.SourceContent),
		hit("B", core.SourceUserCF),
	}
	for i := 0; i < 5; i++ {
		out, err := NewFusion().Process(context.Background(), &core.RecommendContext{}, in)
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "A", "B"}, core.Names(out))
	}
}

func TestFusion_RequestWeights(t *testing.T) {
	in := []*core.Item{
		hit("U", core.SourceUserCF),
		hit("C", core.SourceContent),
	}
	rctx := &core.RecommendContext{Params: map[string]any{
		core.ParamUserWeight:    0.2,
		core.ParamContentWeight: 0.8,
	}}
	out, err := NewFusion().Process(context.Background(), rctx, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "U"}, core.Names(out))
	assert.InDelta(t, 0.8, out[0].Score, 1e-12)
}

func TestFusion_IgnoresUnlabelled(t *testing.T) {
	in := []*core.Item{core.NewItem(1, "plain"), nil, hit("U", core.SourceUserCF)}
	out, err := (&Fusion{UserWeight: 1}).Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"U"}, core.Names(out))
	assert.Equal(t, 1.0, out[0].Score)
}

func TestFusion_Empty(t *testing.T) {
	out, err := NewFusion().Process(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
