package modeltest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"
)

// WriteArtifacts 把 Parts 按离线流水线的文件布局写到 dir，用于加载与命令行的端到端测试。
func WriteArtifacts(dir string, p Parts) error {
	userEnc, userDec := make(map[string]int), make(map[string]int64)
	for i, id := range p.Users {
		userEnc[strconv.FormatInt(int64(id), 10)] = i
		userDec[strconv.Itoa(i)] = int64(id)
	}
	itemEnc, itemDec := make(map[string]int), make(map[string]int64)
	for i, id := range p.Items {
		itemEnc[strconv.FormatInt(int64(id), 10)] = i
		itemDec[strconv.Itoa(i)] = int64(id)
	}

	jsonFiles := map[string]any{
		"user_weights.json":        p.UserEmbeddings,
		"anime_weights.json":       p.ItemEmbeddings,
		"user2user_encoded.json":   userEnc,
		"user2user_decoded.json":   userDec,
		"anime2anime_encoded.json": itemEnc,
		"anime2anime_decoded.json": itemDec,
	}
	for name, v := range jsonFiles {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return err
		}
	}

	animes := [][]string{{"anime_id", "eng_version", "Score", "Genres", "Episodes", "Type", "Members", "Premiered"}}
	synopsis := [][]string{{"MAL_ID", "Name", "sypnopsis"}}
	for _, a := range p.Animes {
		id := strconv.FormatInt(int64(a.ID), 10)
		animes = append(animes, []string{
			id, a.Name, strconv.FormatFloat(a.Score, 'f', -1, 64), a.Genres,
			a.Episodes, a.Type, strconv.FormatInt(a.Members, 10), a.Premiered,
		})
		if a.Synopsis != "" {
			synopsis = append(synopsis, []string{id, a.Name, a.Synopsis})
		}
	}
	ratings := [][]string{{"user_id", "anime_id", "rating"}}
	for _, r := range p.Ratings {
		ratings = append(ratings, []string{
			strconv.FormatInt(int64(r.User), 10),
			strconv.FormatInt(int64(r.Item), 10),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
		})
	}

	csvFiles := map[string][][]string{
		"anime_df.csv":    animes,
		"synopsis_df.csv": synopsis,
		"rating_df.csv":   ratings,
	}
	for name, rows := range csvFiles {
		if err := writeCSV(filepath.Join(dir, name), rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
