package recall

import (
	"sort"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/model"
	"github.com/rushteam/animerec/store"
)

// Neighbor 是一次相似度检索的单个结果。
type Neighbor[K comparable] struct {
	ID    K
	Index int     // 稠密下标
	Score float64 // 与查询行的内积
	Rank  int     // 从 1 开始
}

// ItemNeighbor 是带元数据的物品近邻。
type ItemNeighbor struct {
	Neighbor[core.ItemID]
	Anime store.Anime
}

// SearchOptions 控制近邻检索。
type SearchOptions struct {
	// N 返回的近邻数（不含查询自身），<=0 时取默认值 10
	N int

	// Neg 为 true 时返回最不相似的 N 个
	Neg bool
}

func (o SearchOptions) n() int {
	if o.N <= 0 {
		return core.DefaultContentNeighbor
	}
	return o.N
}

// search 在同一矩阵内做暴力内积检索。
//
// 相似度是原始内积，不做归一化：模长大的行会占优。训练产物在导出时已按行归一化，
// 此处不再重复处理，否则会改变排序。
// 查询行自身总是被排除；结果按分数降序，同分按下标升序。
func search[K comparable](m *model.EmbeddingMatrix, c *model.Codec[K], id K, opts SearchOptions, notFound error) ([]Neighbor[K], error) {
	q, ok := c.Encode(id)
	if !ok || q >= m.Rows() {
		return nil, notFound
	}
	scores := m.Dot(q)

	idx := make([]int, 0, len(scores))
	for i := range scores {
		if i != q {
			idx = append(idx, i)
		}
	}
	if opts.Neg {
		sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })
	} else {
		sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	}
	if n := opts.n(); len(idx) > n {
		idx = idx[:n]
	}
	// 无论正反模式，输出都按相似度降序
	sort.SliceStable(idx, func(a, b int) bool {
		if scores[idx[a]] != scores[idx[b]] {
			return scores[idx[a]] > scores[idx[b]]
		}
		return idx[a] < idx[b]
	})

	out := make([]Neighbor[K], 0, len(idx))
	for _, i := range idx {
		raw, ok := c.Decode(i)
		if !ok {
			continue
		}
		out = append(out, Neighbor[K]{ID: raw, Index: i, Score: scores[i], Rank: len(out) + 1})
	}
	return out, nil
}

// FindSimilarUsers 在用户 embedding 上检索相似用户。
// 未知用户返回 core.ErrUserNotFound，且不返回任何部分结果。
func FindSimilarUsers(snap *model.Snapshot, userID core.UserID, opts SearchOptions) ([]Neighbor[core.UserID], error) {
	return search(snap.UserEmbeddings(), snap.Users(), userID, opts, core.ErrUserNotFound)
}

// FindSimilarItems 在物品 embedding 上检索相似动画，并补全元数据。
//
// 先取 N 个近邻，再剔除元数据缺失的动画，因此结果可能少于 N，甚至为空（不是错误）。
// 未知物品返回 core.ErrItemNotFound。
func FindSimilarItems(snap *model.Snapshot, itemID core.ItemID, opts SearchOptions) ([]ItemNeighbor, error) {
	neighbors, err := search(snap.ItemEmbeddings(), snap.Items(), itemID, opts, core.ErrItemNotFound)
	if err != nil {
		return nil, err
	}
	catalog := snap.Catalog()
	out := make([]ItemNeighbor, 0, len(neighbors))
	for _, nb := range neighbors {
		anime, ok := catalog.LookupByID(nb.ID)
		if !ok {
			continue
		}
		nb.Rank = len(out) + 1
		out = append(out, ItemNeighbor{Neighbor: nb, Anime: anime})
	}
	return out, nil
}

// FindSimilarItemsByName 先按展示名查元数据，再检索相似动画。
func FindSimilarItemsByName(snap *model.Snapshot, name string, opts SearchOptions) ([]ItemNeighbor, error) {
	anime, ok := snap.Catalog().LookupByName(name)
	if !ok {
		return nil, core.ErrMetadataNotFound
	}
	return FindSimilarItems(snap, anime.ID, opts)
}

// UserDistances 返回目标用户与所有用户的内积，下标为稠密下标。
func UserDistances(snap *model.Snapshot, userID core.UserID) ([]float64, error) {
	q, ok := snap.Users().Encode(userID)
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return snap.UserEmbeddings().Dot(q), nil
}

// ItemDistances 返回目标动画与所有动画的内积，下标为稠密下标。
func ItemDistances(snap *model.Snapshot, itemID core.ItemID) ([]float64, error) {
	q, ok := snap.Items().Encode(itemID)
	if !ok {
		return nil, core.ErrItemNotFound
	}
	return snap.ItemEmbeddings().Dot(q), nil
}
