package model

import (
	"fmt"
	"math"

	"github.com/rushteam/animerec/core"
)

// EmbeddingMatrix 是训练产出的稠密 embedding 矩阵，行号即 Codec 的稠密下标。
// 行主序连续存储；加载后不可变，可无锁并发读取。
type EmbeddingMatrix struct {
	rows int
	dim  int
	data []float64
}

// NewEmbeddingMatrix 从二维数组构建矩阵，要求至少一行且各行维度一致。
func NewEmbeddingMatrix(rows [][]float64) (*EmbeddingMatrix, error) {
	if len(rows) == 0 {
		return nil, core.NewConfigError(core.ModuleArtifact, "embedding: matrix has no rows")
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, core.NewConfigError(core.ModuleArtifact, "embedding: zero dimension")
	}
	m := &EmbeddingMatrix{rows: len(rows), dim: dim, data: make([]float64, 0, len(rows)*dim)}
	for i, r := range rows {
		if len(r) != dim {
			return nil, core.NewConfigError(core.ModuleArtifact,
				fmt.Sprintf("embedding: row %d has dimension %d, want %d", i, len(r), dim))
		}
		m.data = append(m.data, r...)
	}
	return m, nil
}

// Rows 返回行数
func (m *EmbeddingMatrix) Rows() int { return m.rows }

// Dim 返回维度
func (m *EmbeddingMatrix) Dim() int { return m.dim }

// Row 返回第 i 行的只读视图；越界返回 nil。
func (m *EmbeddingMatrix) Row(i int) []float64 {
	if i < 0 || i >= m.rows {
		return nil
	}
	return m.data[i*m.dim : (i+1)*m.dim : (i+1)*m.dim]
}

// Dot 计算每一行与第 q 行的内积（不做归一化）。
func (m *EmbeddingMatrix) Dot(q int) []float64 {
	return m.DotVector(m.Row(q))
}

// DotVector 计算每一行与向量 v 的内积；维度不符返回 nil。
func (m *EmbeddingMatrix) DotVector(v []float64) []float64 {
	if len(v) != m.dim {
		return nil
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		row := m.data[i*m.dim : (i+1)*m.dim]
		var s float64
		for j, x := range row {
			s += x * v[j]
		}
		out[i] = s
	}
	return out
}

// Norms 返回每行的 L2 范数，用于诊断未归一化的产物。
func (m *EmbeddingMatrix) Norms() []float64 {
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		var s float64
		for _, x := range m.data[i*m.dim : (i+1)*m.dim] {
			s += x * x
		}
		out[i] = math.Sqrt(s)
	}
	return out
}
