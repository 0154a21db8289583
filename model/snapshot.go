package model

import (
	"fmt"
	"time"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/store"
)

// Snapshot 是一次训练产出的只读模型快照：两张编码表、两个 embedding 矩阵、元数据与评分历史。
//
// 进程启动时构建一次，以指针传给所有组件；之后不再修改，因此无需加锁。
// 测试可以直接用合成数据构建 Snapshot。
type Snapshot struct {
	users          *Codec[core.UserID]
	items          *Codec[core.ItemID]
	userEmbeddings *EmbeddingMatrix
	itemEmbeddings *EmbeddingMatrix
	catalog        *store.Catalog
	ratings        *store.Ratings

	version  string
	loadedAt time.Time
}

// SnapshotParts 是构建 Snapshot 所需的各部分。
type SnapshotParts struct {
	Users          *Codec[core.UserID]
	Items          *Codec[core.ItemID]
	UserEmbeddings *EmbeddingMatrix
	ItemEmbeddings *EmbeddingMatrix
	Catalog        *store.Catalog
	Ratings        *store.Ratings
	Version        string
}

// NewSnapshot 校验各部分齐全、编码表大小与矩阵行数一致。
func NewSnapshot(p SnapshotParts) (*Snapshot, error) {
	switch {
	case p.Users == nil || p.Items == nil:
		return nil, core.NewConfigError(core.ModuleArtifact, "snapshot: missing codec")
	case p.UserEmbeddings == nil || p.ItemEmbeddings == nil:
		return nil, core.NewConfigError(core.ModuleArtifact, "snapshot: missing embeddings")
	case p.Catalog == nil:
		return nil, core.NewConfigError(core.ModuleArtifact, "snapshot: missing catalog")
	case p.Ratings == nil:
		return nil, core.NewConfigError(core.ModuleArtifact, "snapshot: missing ratings")
	}
	if p.Users.Len() != p.UserEmbeddings.Rows() {
		return nil, core.NewConfigError(core.ModuleArtifact,
			fmt.Sprintf("snapshot: user codec has %d ids, user embeddings have %d rows", p.Users.Len(), p.UserEmbeddings.Rows()))
	}
	if p.Items.Len() != p.ItemEmbeddings.Rows() {
		return nil, core.NewConfigError(core.ModuleArtifact,
			fmt.Sprintf("snapshot: item codec has %d ids, item embeddings have %d rows", p.Items.Len(), p.ItemEmbeddings.Rows()))
	}
	return &Snapshot{
		users:          p.Users,
		items:          p.Items,
		userEmbeddings: p.UserEmbeddings,
		itemEmbeddings: p.ItemEmbeddings,
		catalog:        p.Catalog,
		ratings:        p.Ratings,
		version:        p.Version,
		loadedAt:       time.Now(),
	}, nil
}

func (s *Snapshot) Users() *Codec[core.UserID]       { return s.users }
func (s *Snapshot) Items() *Codec[core.ItemID]       { return s.items }
func (s *Snapshot) UserEmbeddings() *EmbeddingMatrix { return s.userEmbeddings }
func (s *Snapshot) ItemEmbeddings() *EmbeddingMatrix { return s.itemEmbeddings }
func (s *Snapshot) Catalog() *store.Catalog          { return s.catalog }
func (s *Snapshot) Ratings() *store.Ratings          { return s.ratings }
func (s *Snapshot) Version() string                  { return s.version }
func (s *Snapshot) LoadedAt() time.Time              { return s.loadedAt }
