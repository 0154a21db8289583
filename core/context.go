package core

import (
	"github.com/rushteam/animerec/pkg/conv"
	"github.com/rushteam/animerec/pkg/utils"
)

// RecommendContext 承载单次请求的用户与参数，贯穿整个 Pipeline 透传。
// 请求级、不跨请求共享；Snapshot 等只读资源不放在这里。
type RecommendContext struct {
	UserID UserID

	// Preferences 是目标用户的高分物品集合（recall.u2u 写入，后续 Node 读取）
	Preferences []*Item

	// Labels 是请求级标签，用于 explain / 观测
	Labels map[string]utils.Label

	// Params 请求级参数覆盖：user_weight / content_weight / top_n
	Params map[string]any
}

// 请求参数 key
const (
	ParamUserWeight    = "user_weight"
	ParamContentWeight = "content_weight"
	ParamTopN          = "top_n"
)

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// Float 读取浮点参数，缺失或类型不符时返回 defaultVal。
func (rctx *RecommendContext) Float(key string, defaultVal float64) float64 {
	if rctx == nil || rctx.Params == nil {
		return defaultVal
	}
	if f, ok := conv.ToFloat64(rctx.Params[key]); ok {
		return f
	}
	return defaultVal
}

// Int 读取整数参数，缺失或类型不符时返回 defaultVal。
func (rctx *RecommendContext) Int(key string, defaultVal int) int {
	if rctx == nil || rctx.Params == nil {
		return defaultVal
	}
	if n, ok := conv.ToInt(rctx.Params[key]); ok {
		return n
	}
	return defaultVal
}
