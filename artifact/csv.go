package artifact

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/store"
)

// table 是带表头的 CSV 读取器，按列名取值。
type table struct {
	path   string
	r      *csv.Reader
	index  map[string]int
	record []string
	line   int
}

func openTable(path string, required ...string) (*table, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, missing(path, err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		_ = f.Close()
		return nil, nil, core.NewConfigError(core.ModuleArtifact, fmt.Sprintf("artifact: %s: read header: %v", path, err))
	}
	t := &table{path: path, r: r, index: make(map[string]int, len(header)), line: 1}
	for i, h := range header {
		t.index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := t.index[col]; !ok {
			_ = f.Close()
			return nil, nil, core.NewConfigError(core.ModuleArtifact, fmt.Sprintf("artifact: %s: missing column %q", path, col))
		}
	}
	return t, f.Close, nil
}

// next 读取下一行，文件结束返回 false。
func (t *table) next() (bool, error) {
	rec, err := t.r.Read()
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	t.line++
	if err != nil {
		return false, core.NewConfigError(core.ModuleArtifact, fmt.Sprintf("artifact: %s: line %d: %v", t.path, t.line, err))
	}
	t.record = rec
	return true, nil
}

func (t *table) str(col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(t.record) {
		return ""
	}
	return strings.TrimSpace(t.record[i])
}

func (t *table) int64(col string) (int64, error) {
	s := t.str(col)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// pandas 会把整数列写成 "123.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, core.NewConfigError(core.ModuleArtifact,
				fmt.Sprintf("artifact: %s: line %d: column %s: invalid integer %q", t.path, t.line, col, s))
		}
		return int64(f), nil
	}
	return v, nil
}

// float 解析浮点列，空值或 "Unknown" 视为 0。
func (t *table) float(col string) float64 {
	v, err := strconv.ParseFloat(t.str(col), 64)
	if err != nil {
		return 0
	}
	return v
}

func loadSynopsis(path string) (map[core.ItemID]string, error) {
	out := make(map[core.ItemID]string)
	t, closeFn, err := openTable(path, "MAL_ID", "sypnopsis")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		id, err := t.int64("MAL_ID")
		if err != nil {
			return nil, err
		}
		if _, dup := out[core.ItemID(id)]; !dup {
			out[core.ItemID(id)] = t.str("sypnopsis")
		}
	}
}

func loadCatalog(path string, synopsis map[core.ItemID]string) (*store.Catalog, error) {
	t, closeFn, err := openTable(path, "anime_id", "eng_version")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var animes []store.Anime
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		id, err := t.int64("anime_id")
		if err != nil {
			return nil, err
		}
		members, _ := strconv.ParseInt(t.str("Members"), 10, 64)
		animes = append(animes, store.Anime{
			ID:        core.ItemID(id),
			Name:      t.str("eng_version"),
			Genres:    t.str("Genres"),
			Synopsis:  synopsis[core.ItemID(id)],
			Score:     t.float("Score"),
			Type:      t.str("Type"),
			Episodes:  t.str("Episodes"),
			Members:   members,
			Premiered: t.str("Premiered"),
		})
	}
	return store.NewCatalog(animes), nil
}

func loadRatings(path string) (*store.Ratings, error) {
	t, closeFn, err := openTable(path, "user_id", "anime_id", "rating")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var records []store.Rating
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		user, err := t.int64("user_id")
		if err != nil {
			return nil, err
		}
		item, err := t.int64("anime_id")
		if err != nil {
			return nil, err
		}
		value, err := strconv.ParseFloat(t.str("rating"), 64)
		if err != nil {
			return nil, core.NewConfigError(core.ModuleArtifact,
				fmt.Sprintf("artifact: %s: line %d: invalid rating %q", t.path, t.line, t.str("rating")))
		}
		records = append(records, store.Rating{User: core.UserID(user), Item: core.ItemID(item), Value: value})
	}
	return store.NewRatings(records), nil
}
