package model

import (
	"fmt"

	"github.com/rushteam/animerec/core"
)

// Codec 是原始 ID 与稠密下标（embedding 行号）之间的双向映射。
//
// K 取 core.UserID 或 core.ItemID，用户编码表与物品编码表因此是不同的类型，不会被混用。
// 构建后只读，Encode/Decode 只在训练期的 ID 全集上有定义，集合外返回 ok=false，绝不返回默认下标。
type Codec[K comparable] struct {
	encoded map[K]int
	decoded []K
}

// NewCodec 用离线产出的 encoded / decoded 两张表构建 Codec，并校验：
//   - 两表大小一致
//   - decoded 的下标恰好覆盖 [0, n)
//   - 两表互逆
//
// 任一不满足返回 CONFIG 错误。
func NewCodec[K comparable](encoded map[K]int, decoded map[int]K) (*Codec[K], error) {
	if len(encoded) != len(decoded) {
		return nil, core.NewConfigError(core.ModuleCodec,
			fmt.Sprintf("codec: encoded has %d entries, decoded has %d", len(encoded), len(decoded)))
	}
	n := len(decoded)
	c := &Codec[K]{
		encoded: make(map[K]int, n),
		decoded: make([]K, n),
	}
	for idx, id := range decoded {
		if idx < 0 || idx >= n {
			return nil, core.NewConfigError(core.ModuleCodec,
				fmt.Sprintf("codec: index %d out of range [0, %d)", idx, n))
		}
		back, ok := encoded[id]
		if !ok || back != idx {
			return nil, core.NewConfigError(core.ModuleCodec,
				fmt.Sprintf("codec: maps are not inverse at index %d (id %v)", idx, id))
		}
		c.decoded[idx] = id
		c.encoded[id] = idx
	}
	return c, nil
}

// CodecFromIDs 按首次出现顺序给 ID 分配下标，重复 ID 忽略（离线预处理的编码方式）。
func CodecFromIDs[K comparable](ids []K) *Codec[K] {
	c := &Codec[K]{
		encoded: make(map[K]int, len(ids)),
		decoded: make([]K, 0, len(ids)),
	}
	for _, id := range ids {
		if _, ok := c.encoded[id]; ok {
			continue
		}
		c.encoded[id] = len(c.decoded)
		c.decoded = append(c.decoded, id)
	}
	return c
}

// Encode 原始 ID → 稠密下标
func (c *Codec[K]) Encode(id K) (int, bool) {
	if c == nil {
		return 0, false
	}
	idx, ok := c.encoded[id]
	return idx, ok
}

// Decode 稠密下标 → 原始 ID
func (c *Codec[K]) Decode(idx int) (K, bool) {
	var zero K
	if c == nil || idx < 0 || idx >= len(c.decoded) {
		return zero, false
	}
	return c.decoded[idx], true
}

// Len 返回 ID 数量（= embedding 行数）
func (c *Codec[K]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.decoded)
}

// IDs 按下标顺序返回所有原始 ID（副本）
func (c *Codec[K]) IDs() []K {
	out := make([]K, len(c.decoded))
	copy(out, c.decoded)
	return out
}

// Maps 导出 encoded / decoded 两张表，供产物落盘与测试使用。
func (c *Codec[K]) Maps() (map[K]int, map[int]K) {
	encoded := make(map[K]int, len(c.decoded))
	decoded := make(map[int]K, len(c.decoded))
	for idx, id := range c.decoded {
		encoded[id] = idx
		decoded[idx] = id
	}
	return encoded, decoded
}
