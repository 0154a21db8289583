package store

import (
	"fmt"

	"github.com/rushteam/animerec/core"
)

// Anime 是一条动画元数据（anime_df.csv 的一行，合并 synopsis_df.csv 的简介）。
type Anime struct {
	ID        core.ItemID
	Name      string // eng_version，无英文名时为原名
	Genres    string // 逗号分隔，例如 "Action, Adventure, Shounen"
	Synopsis  string
	Score     float64
	Type      string
	Episodes  string
	Members   int64
	Premiered string
}

// UnknownName 是缺少展示名时的占位名。
func UnknownName(id core.ItemID) string {
	return fmt.Sprintf("Unknown Anime (ID: %d)", id)
}

// Catalog 是只读的动画元数据表，支持按 ID 与按展示名两种查找。
//
// 展示名假定在表内唯一（外部约定，不强制）；重名时按名查找返回第一次出现的行。
// 构建后不可变，可被任意数量的请求并发读取。
type Catalog struct {
	byID   map[core.ItemID]*Anime
	byName map[string]*Anime
	order  []core.ItemID
}

// NewCatalog 按给定顺序建表；重复 ID 以第一次出现为准。
func NewCatalog(animes []Anime) *Catalog {
	c := &Catalog{
		byID:   make(map[core.ItemID]*Anime, len(animes)),
		byName: make(map[string]*Anime, len(animes)),
		order:  make([]core.ItemID, 0, len(animes)),
	}
	for i := range animes {
		a := animes[i]
		if a.Name == "" {
			a.Name = UnknownName(a.ID)
		}
		if _, ok := c.byID[a.ID]; ok {
			continue
		}
		c.byID[a.ID] = &a
		c.order = append(c.order, a.ID)
		if _, ok := c.byName[a.Name]; !ok {
			c.byName[a.Name] = &a
		}
	}
	return c
}

func (c *Catalog) Name() string { return "catalog" }

// LookupByID 按原始 ID 查找。
func (c *Catalog) LookupByID(id core.ItemID) (Anime, bool) {
	if c == nil {
		return Anime{}, false
	}
	a, ok := c.byID[id]
	if !ok {
		return Anime{}, false
	}
	return *a, true
}

// LookupByName 按展示名查找。
func (c *Catalog) LookupByName(name string) (Anime, bool) {
	if c == nil {
		return Anime{}, false
	}
	a, ok := c.byName[name]
	if !ok {
		return Anime{}, false
	}
	return *a, true
}

// Synopsis 返回简介；没有元数据或简介为空时 ok=false。
func (c *Catalog) Synopsis(id core.ItemID) (string, bool) {
	a, ok := c.LookupByID(id)
	if !ok || a.Synopsis == "" {
		return "", false
	}
	return a.Synopsis, true
}

// Len 返回动画数量
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// IDs 按建表顺序返回所有 ID
func (c *Catalog) IDs() []core.ItemID {
	out := make([]core.ItemID, len(c.order))
	copy(out, c.order)
	return out
}

// Item 把元数据转为链路中的 Item（不带分数）。
func (a Anime) Item() *core.Item {
	it := core.NewItem(a.ID, a.Name)
	it.Genres = a.Genres
	it.Synopsis = a.Synopsis
	return it
}
