package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/store"
)

func TestNewEmbeddingMatrix(t *testing.T) {
	m, err := NewEmbeddingMatrix([][]float64{{1, 2}, {3, 4}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 2, m.Dim())
	assert.Equal(t, []float64{3, 4}, m.Row(1))
	assert.Nil(t, m.Row(3))

	// 内积，不归一化
	assert.Equal(t, []float64{5, 11, 2}, m.Dot(0))
	assert.InDeltaSlice(t, []float64{2.23606797749979, 5, 1}, m.Norms(), 1e-12)
	assert.Nil(t, m.DotVector([]float64{1}))
}

func TestNewEmbeddingMatrix_Invalid(t *testing.T) {
	for name, rows := range map[string][][]float64{
		"empty":          nil,
		"zero dimension": {{}},
		"ragged":         {{1, 2}, {3}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewEmbeddingMatrix(rows)
			require.Error(t, err)
			assert.True(t, core.IsConfig(err))
		})
	}
}

func TestNewSnapshot_Validates(t *testing.T) {
	users := CodecFromIDs([]core.UserID{1, 2})
	items := CodecFromIDs([]core.ItemID{10})
	userEmb, _ := NewEmbeddingMatrix([][]float64{{1}, {2}})
	itemEmb, _ := NewEmbeddingMatrix([][]float64{{1}, {2}})

	_, err := NewSnapshot(SnapshotParts{
		Users:          users,
		Items:          items,
		UserEmbeddings: userEmb,
		ItemEmbeddings: itemEmb,
		Catalog:        store.NewCatalog(nil),
		Ratings:        store.NewRatings(nil),
	})
	require.Error(t, err)
	assert.True(t, core.IsConfig(err))
	assert.Contains(t, err.Error(), "item codec has 1 ids")

	_, err = NewSnapshot(SnapshotParts{Users: users, Items: items})
	assert.True(t, core.IsConfig(err))

	snap, err := NewSnapshot(SnapshotParts{
		Users:          users,
		Items:          CodecFromIDs([]core.ItemID{10, 11}),
		UserEmbeddings: userEmb,
		ItemEmbeddings: itemEmb,
		Catalog:        store.NewCatalog(nil),
		Ratings:        store.NewRatings(nil),
		Version:        "v1",
	})
	require.NoError(t, err)
	assert.Equal(t, "v1", snap.Version())
	assert.False(t, snap.LoadedAt().IsZero())
}
