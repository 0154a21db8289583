// Package service 是 Hybrid 推荐的入口：缓存 → 链路计算 → 回写缓存。
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/metrics"
	"github.com/rushteam/animerec/model"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/recall"
)

// Recommender 是 Hybrid 推荐服务。
//
// Snapshot 只读、Pipeline 的各 Node 无状态，因此 Recommender 可被任意数量的 goroutine 并发调用。
type Recommender struct {
	snap     *model.Snapshot
	pipeline *pipeline.Pipeline
	cache    core.RecommendationCache
	logger   zerolog.Logger
	coalesce bool
	group    singleflight.Group
}

// Option 配置 Recommender
type Option func(*Recommender)

// WithCache 设置结果缓存；nil 表示不缓存
func WithCache(c core.RecommendationCache) Option {
	return func(r *Recommender) { r.cache = c }
}

// WithLogger 设置 logger
func WithLogger(l zerolog.Logger) Option {
	return func(r *Recommender) { r.logger = l }
}

// WithCoalesce 是否合并同一用户的并发请求，默认开启
func WithCoalesce(on bool) Option {
	return func(r *Recommender) { r.coalesce = on }
}

// NewRecommender 创建推荐服务。pipe 为 nil 时使用 DefaultPipeline(snap, DefaultSettings())。
func NewRecommender(snap *model.Snapshot, pipe *pipeline.Pipeline, opts ...Option) *Recommender {
	r := &Recommender{
		snap:     snap,
		logger:   zerolog.Nop(),
		coalesce: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if pipe == nil {
		pipe = DefaultPipeline(snap, DefaultSettings(), r.logger)
	}
	r.pipeline = &pipeline.Pipeline{
		Nodes: pipe.Nodes,
		Hooks: append(append([]pipeline.Hook(nil), pipe.Hooks...), r.instrument),
	}
	return r
}

func (r *Recommender) instrument(node pipeline.Node, in, out int, elapsed time.Duration, err error) {
	metrics.RecordNode(node.Name(), elapsed, err)
	r.logger.Debug().
		Str("node", node.Name()).
		Str("kind", string(node.Kind())).
		Int("in", in).
		Int("out", out).
		Dur("elapsed", elapsed).
		Msg("node done")
}

// Snapshot 返回当前模型快照
func (r *Recommender) Snapshot() *model.Snapshot { return r.snap }

// Pipeline 返回链路（含内置打点 Hook）
func (r *Recommender) Pipeline() *pipeline.Pipeline { return r.pipeline }

// Recommend 返回推荐的动画展示名，按融合分降序。
// 用户未知、无评分或无候选时返回空切片与 nil error。
func (r *Recommender) Recommend(ctx context.Context, userID core.UserID, opts ...RequestOption) ([]string, error) {
	res, err := r.RecommendScored(ctx, userID, opts...)
	if err != nil {
		return nil, err
	}
	names := res.Names()
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// RecommendScored 返回带分数与状态的推荐结果。
// 命中缓存时 Status=StatusCached，Items 只有展示名（分数为 0）。
func (r *Recommender) RecommendScored(ctx context.Context, userID core.UserID, opts ...RequestOption) (*core.Result, error) {
	start := time.Now()
	req := newRequest(opts)

	res, err := r.recommend(ctx, userID, req)

	status := "error"
	items := 0
	if err == nil {
		status = res.Status.String()
		items = len(res.Items)
	}
	metrics.RecordRecommend(status, items, time.Since(start))

	log := r.logger.With().Int64("user_id", int64(userID)).Logger()
	switch {
	case err != nil:
		log.Error().Err(err).Msg("recommendation failed")
	case res.Status == core.StatusNotFound:
		log.Info().Str("reason", res.Reason).Msg("no recommendations")
	default:
		log.Info().Str("status", status).Int("items", items).Dur("elapsed", time.Since(start)).Msg("recommendation complete")
	}
	return res, err
}

func (r *Recommender) recommend(ctx context.Context, userID core.UserID, req request) (*core.Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	// 带请求级参数覆盖的结果与默认结果不同，不读写缓存、不合并
	shared := req.isDefault()

	if shared && r.cache != nil {
		rec, err := r.cache.Get(ctx, userID)
		if err != nil {
			r.logger.Warn().Err(err).Int64("user_id", int64(userID)).Msg("cache read failed")
		} else if rec != nil && len(rec.Items) > 0 {
			return r.cachedResult(userID, rec), nil
		}
	}

	if !shared || !r.coalesce {
		return r.compute(ctx, userID, req, shared)
	}

	// 共享计算不随任何一个调用方取消；各调用方只按自己的 ctx 放弃等待
	ch := r.group.DoChan(userID.String(), func() (any, error) {
		return r.compute(context.WithoutCancel(ctx), userID, req, shared)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			return nil, out.Err
		}
		return out.Val.(*core.Result).Clone(), nil
	}
}

// compute 跑一次链路；结果非空且可共享时回写缓存。
func (r *Recommender) compute(ctx context.Context, userID core.UserID, req request, writeCache bool) (*core.Result, error) {
	rctx := &core.RecommendContext{
		UserID: userID,
		Params: req.params(),
	}
	items, err := r.pipeline.Run(ctx, rctx, nil)
	if err != nil {
		if core.IsNotFound(err) {
			return &core.Result{UserID: userID, Status: core.StatusNotFound, Items: []*core.Item{}, Reason: reason(err)}, nil
		}
		return nil, err
	}
	if len(items) == 0 {
		return &core.Result{UserID: userID, Status: core.StatusNotFound, Items: []*core.Item{}, Reason: "no candidates"}, nil
	}

	res := &core.Result{UserID: userID, Status: core.StatusOK, Items: items}
	if writeCache && r.cache != nil {
		if err := r.cache.Put(ctx, userID, res.Names()); err != nil {
			r.logger.Warn().Err(err).Int64("user_id", int64(userID)).Msg("cache write failed")
		}
	}
	return res, nil
}

// SimilarAnime 返回与 animeID 最相似（neg=true 时最不相似）的 n 部动画。
func (r *Recommender) SimilarAnime(animeID core.ItemID, n int, neg bool) ([]recall.ItemNeighbor, error) {
	return recall.FindSimilarItems(r.snap, animeID, recall.SearchOptions{N: n, Neg: neg})
}

// SimilarAnimeByName 按展示名查找相似动画。
func (r *Recommender) SimilarAnimeByName(name string, n int, neg bool) ([]recall.ItemNeighbor, error) {
	return recall.FindSimilarItemsByName(r.snap, name, recall.SearchOptions{N: n, Neg: neg})
}

// SimilarUsers 返回与 userID 最相似的 n 个用户。
func (r *Recommender) SimilarUsers(userID core.UserID, n int, neg bool) ([]recall.Neighbor[core.UserID], error) {
	return recall.FindSimilarUsers(r.snap, userID, recall.SearchOptions{N: n, Neg: neg})
}

// cachedResult 把缓存中的展示名还原为 Item，能在元数据中找到的回填 ID 与类型。
func (r *Recommender) cachedResult(userID core.UserID, rec *core.CachedRecommendation) *core.Result {
	items := make([]*core.Item, 0, len(rec.Items))
	for _, name := range rec.Items {
		if a, ok := r.snap.Catalog().LookupByName(name); ok {
			items = append(items, a.Item())
			continue
		}
		items = append(items, core.NewItem(0, name))
	}
	return &core.Result{UserID: userID, Status: core.StatusCached, Items: items}
}

func reason(err error) string {
	if de := core.GetDomainError(err); de != nil {
		return de.Message
	}
	return err.Error()
}
