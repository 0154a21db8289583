package artifact

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/model"
)

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return missing(path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return core.NewConfigError(core.ModuleArtifact, fmt.Sprintf("artifact: decode %s: %v", path, err))
	}
	return nil
}

func loadMatrix(path string) (*model.EmbeddingMatrix, error) {
	var rows [][]float64
	if err := readJSON(path, &rows); err != nil {
		return nil, err
	}
	m, err := model.NewEmbeddingMatrix(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// loadCodec 读取 encoded（原始 ID → 下标）与 decoded（下标 → 原始 ID）两张 JSON 表。
// JSON 对象的 key 都是字符串，这里统一转为整数。
func loadCodec[K ~int64](encodedPath, decodedPath string) (*model.Codec[K], error) {
	var rawEnc map[string]int
	if err := readJSON(encodedPath, &rawEnc); err != nil {
		return nil, err
	}
	var rawDec map[string]int64
	if err := readJSON(decodedPath, &rawDec); err != nil {
		return nil, err
	}

	enc := make(map[K]int, len(rawEnc))
	for k, idx := range rawEnc {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, core.NewConfigError(core.ModuleArtifact, fmt.Sprintf("artifact: %s: bad id %q", encodedPath, k))
		}
		enc[K(id)] = idx
	}
	dec := make(map[int]K, len(rawDec))
	for k, id := range rawDec {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, core.NewConfigError(core.ModuleArtifact, fmt.Sprintf("artifact: %s: bad index %q", decodedPath, k))
		}
		dec[idx] = K(id)
	}
	return model.NewCodec(enc, dec)
}
