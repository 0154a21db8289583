// Package modeltest 提供用于测试的合成 Snapshot。
package modeltest

import (
	"fmt"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/model"
	"github.com/rushteam/animerec/store"
)

// Parts 描述一个合成快照：编码顺序即 ID 切片顺序。
type Parts struct {
	Users          []core.UserID
	UserEmbeddings [][]float64
	Items          []core.ItemID
	ItemEmbeddings [][]float64
	Animes         []store.Anime
	Ratings        []store.Rating
}

// Build 构建 Snapshot，参数不合法时 panic（仅用于测试）。
func Build(p Parts) *model.Snapshot {
	userEmb, err := model.NewEmbeddingMatrix(p.UserEmbeddings)
	if err != nil {
		panic(fmt.Sprintf("modeltest: user embeddings: %v", err))
	}
	itemEmb, err := model.NewEmbeddingMatrix(p.ItemEmbeddings)
	if err != nil {
		panic(fmt.Sprintf("modeltest: item embeddings: %v", err))
	}
	snap, err := model.NewSnapshot(model.SnapshotParts{
		Users:          model.CodecFromIDs(p.Users),
		Items:          model.CodecFromIDs(p.Items),
		UserEmbeddings: userEmb,
		ItemEmbeddings: itemEmb,
		Catalog:        store.NewCatalog(p.Animes),
		Ratings:        store.NewRatings(p.Ratings),
		Version:        "test",
	})
	if err != nil {
		panic(fmt.Sprintf("modeltest: %v", err))
	}
	return snap
}

// 五用户五动画场景中的 ID
const (
	UserA core.UserID = 1
	UserB core.UserID = 2
	UserC core.UserID = 3
	UserD core.UserID = 4
	UserE core.UserID = 5

	// UnknownUser 不在编码表与评分表中
	UnknownUser core.UserID = 999

	Alpha   core.ItemID = 101
	Bravo   core.ItemID = 102
	Charlie core.ItemID = 103
	Delta   core.ItemID = 104
	Echo    core.ItemID = 105
)

// HybridParts 返回五用户五动画的场景：
//
//   - A 与 B 的高分集合都包含 Alpha、Bravo；B 另外高分 Delta、Echo
//   - C、D、E 的高分只落在 Alpha / Bravo 上，与 A 的偏好完全重合
//   - 物品 embedding 上 Delta 与 Echo 互为最近邻
//
// 因此对 A 推荐、内容扩展取 1 个近邻时，结果恰好是 B 独有的 Delta、Echo。
func HybridParts() Parts {
	return Parts{
		Users: []core.UserID{UserA, UserB, UserC, UserD, UserE},
		UserEmbeddings: [][]float64{
			{1, 0},
			{0.9, 0.1},
			{0, 1},
			{0.1, 0.9},
			{-1, 0},
		},
		Items: []core.ItemID{Alpha, Bravo, Charlie, Delta, Echo},
		ItemEmbeddings: [][]float64{
			{1, 0},
			{0.9, 0.1},
			{0.5, 0.5},
			{0, 1},
			{0, 0.9},
		},
		Animes: []store.Anime{
			{ID: Alpha, Name: "Alpha", Genres: "Action, Adventure", Score: 8.1},
			{ID: Bravo, Name: "Bravo", Genres: "Action, Comedy", Score: 7.9},
			{ID: Charlie, Name: "Charlie", Genres: "Drama", Score: 6.5},
			{ID: Delta, Name: "Delta", Genres: "Sci-Fi, Mecha", Score: 8.4, Synopsis: "Pilots defend the colony."},
			{ID: Echo, Name: "Echo", Genres: "Sci-Fi, Space", Score: 8.0},
		},
		Ratings: []store.Rating{
			{User: UserA, Item: Alpha, Value: 10},
			{User: UserA, Item: Bravo, Value: 10},
			{User: UserA, Item: Charlie, Value: 2},

			{User: UserB, Item: Alpha, Value: 10},
			{User: UserB, Item: Bravo, Value: 10},
			{User: UserB, Item: Delta, Value: 10},
			{User: UserB, Item: Echo, Value: 10},
			{User: UserB, Item: Charlie, Value: 1},

			{User: UserC, Item: Alpha, Value: 3},
			{User: UserD, Item: Bravo, Value: 4},
			{User: UserE, Item: Alpha, Value: 5},
			{User: UserE, Item: Bravo, Value: 5},
		},
	}
}

// Hybrid 返回 HybridParts 构建的 Snapshot。
func Hybrid() *model.Snapshot {
	return Build(HybridParts())
}
