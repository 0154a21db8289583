// Package artifact 把离线训练流水线产出的文件一次性加载为 model.Snapshot。
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/model"
	"github.com/rushteam/animerec/store"
)

// Loader 从磁盘加载产物。五组相互独立的文件并发读取，全部成功才返回 Snapshot。
type Loader struct {
	Paths  Paths
	Logger zerolog.Logger

	// Version 写入 Snapshot，为空时使用加载时间
	Version string
}

// NewLoader 使用 dir 下的默认文件布局。
func NewLoader(dir string, logger zerolog.Logger) *Loader {
	return &Loader{Paths: DefaultPaths(dir), Logger: logger}
}

// Load 读取全部产物并构建 Snapshot。任一必需文件缺失或损坏返回 CONFIG 错误。
func (l *Loader) Load(ctx context.Context) (*model.Snapshot, error) {
	start := time.Now()
	var (
		userEmb, itemEmb *model.EmbeddingMatrix
		users            *model.Codec[core.UserID]
		items            *model.Codec[core.ItemID]
		catalog          *store.Catalog
		ratings          *store.Ratings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userEmb, err = loadMatrix(l.Paths.UserWeights)
		return err
	})
	g.Go(func() error {
		var err error
		itemEmb, err = loadMatrix(l.Paths.AnimeWeights)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = loadCodec[core.UserID](l.Paths.UserEncoded, l.Paths.UserDecoded)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = loadCodec[core.ItemID](l.Paths.AnimeEncoded, l.Paths.AnimeDecoded)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = l.loadMetadata(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ratings, err = loadRatings(l.Paths.Ratings)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	version := l.Version
	if version == "" {
		version = start.UTC().Format(time.RFC3339)
	}
	snap, err := model.NewSnapshot(model.SnapshotParts{
		Users:          users,
		Items:          items,
		UserEmbeddings: userEmb,
		ItemEmbeddings: itemEmb,
		Catalog:        catalog,
		Ratings:        ratings,
		Version:        version,
	})
	if err != nil {
		return nil, err
	}

	l.Logger.Info().
		Int("users", users.Len()).
		Int("animes", items.Len()).
		Int("dim", itemEmb.Dim()).
		Int("catalog", catalog.Len()).
		Int("ratings", ratings.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("artifacts loaded")
	return snap, nil
}

// loadMetadata 读取元数据表，并合并可选的简介表。
func (l *Loader) loadMetadata(ctx context.Context) (*store.Catalog, error) {
	synopsis := map[core.ItemID]string{}
	if l.Paths.Synopsis != "" {
		s, err := loadSynopsis(l.Paths.Synopsis)
		switch {
		case err == nil:
			synopsis = s
		case errors.Is(err, fs.ErrNotExist):
			l.Logger.Warn().Str("path", l.Paths.Synopsis).Msg("synopsis file not found, continuing without synopsis")
		default:
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return loadCatalog(l.Paths.Metadata, synopsis)
}

// missingError 是文件缺失/不可读的 CONFIG 错误，同时保留底层 fs 错误以便 errors.Is(err, fs.ErrNotExist)。
type missingError struct {
	*core.DomainError
	cause error
}

func (e *missingError) Unwrap() []error { return []error{e.DomainError, e.cause} }

func missing(path string, err error) error {
	msg := fmt.Sprintf("artifact: cannot read %s: %v", path, err)
	if errors.Is(err, os.ErrNotExist) {
		msg = fmt.Sprintf("artifact: required file missing: %s", path)
	}
	return &missingError{
		DomainError: core.NewConfigError(core.ModuleArtifact, msg),
		cause:       err,
	}
}
