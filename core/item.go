package core

import (
	"strconv"

	"github.com/rushteam/animerec/pkg/utils"
)

// UserID 是原始用户 ID（非连续）。
type UserID int64

// ItemID 是原始动画 ID（MAL_ID / anime_id，非连续）。
type ItemID int64

func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id ItemID) String() string { return strconv.FormatInt(int64(id), 10) }

// Item 是推荐链路中的统一承载结构：元信息、分数、标签。
// 同一部动画可能以多个 Item 出现在链路中（每次召回命中一个），由 rank.Fusion 按名称合并。
type Item struct {
	ID       ItemID
	Name     string // 展示名（eng_version），融合时的主键
	Genres   string
	Synopsis string

	// Score 是当前阶段的分数：召回阶段为相似度/支持数，融合后为加权累计分
	Score float64

	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewItem(id ItemID, name string) *Item {
	return &Item{
		ID:     id,
		Name:   name,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Source 返回 recall_source 标签值（u2u / content），未打标时返回空串。
func (it *Item) Source() string {
	if it == nil || it.Labels == nil {
		return ""
	}
	return it.Labels[LabelRecallSource].Value
}

// Clone 复制 Item，Meta 与 Labels 为独立的 map。
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	c := *it
	c.Meta = make(map[string]any, len(it.Meta))
	for k, v := range it.Meta {
		c.Meta[k] = v
	}
	c.Labels = make(map[string]utils.Label, len(it.Labels))
	for k, v := range it.Labels {
		c.Labels[k] = v
	}
	return &c
}

// Names 抽取展示名列表，保持顺序。
func Names(items []*Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, it.Name)
	}
	return out
}

// 标签 key 与取值
const (
	LabelRecallSource = "recall_source"
	LabelSupport      = "support"
	LabelSeed         = "content_seed"

	SourceUserCF  = "u2u"
	SourceContent = "content"
)
