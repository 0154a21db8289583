package service

import "github.com/rushteam/animerec/core"

// RequestOption 是请求级参数覆盖
type RequestOption func(*request)

type request struct {
	userWeight    *float64
	contentWeight *float64
	topN          *int
}

// WithUserWeight 覆盖协同候选权重
func WithUserWeight(w float64) RequestOption {
	return func(r *request) { r.userWeight = &w }
}

// WithContentWeight 覆盖内容候选权重
func WithContentWeight(w float64) RequestOption {
	return func(r *request) { r.contentWeight = &w }
}

// WithTopN 覆盖返回数量，n <= 0 时请求返回 ErrInvalidTopN
func WithTopN(n int) RequestOption {
	return func(r *request) { r.topN = &n }
}

func newRequest(opts []RequestOption) request {
	var r request
	for _, opt := range opts {
		if opt != nil {
			opt(&r)
		}
	}
	return r
}

func (r request) validate() error {
	if r.topN != nil && *r.topN <= 0 {
		return core.ErrInvalidTopN
	}
	return nil
}

func (r request) isDefault() bool {
	return r.userWeight == nil && r.contentWeight == nil && r.topN == nil
}

func (r request) params() map[string]any {
	params := make(map[string]any, 3)
	if r.userWeight != nil {
		params[core.ParamUserWeight] = *r.userWeight
	}
	if r.contentWeight != nil {
		params[core.ParamContentWeight] = *r.contentWeight
	}
	if r.topN != nil {
		params[core.ParamTopN] = *r.topN
	}
	return params
}
