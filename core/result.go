package core

// Status 是一次推荐计算的结果状态。
// "没有推荐"是业务常态，不走 error 通道；error 只留给真正的故障。
type Status int

const (
	StatusOK       Status = iota // 有结果
	StatusNotFound               // 用户未知 / 无评分 / 无候选
	StatusCached                 // 命中缓存
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusCached:
		return "cached"
	default:
		return "unknown"
	}
}

// Result 是 Hybrid 推荐的结果。Items 已按融合分降序，长度 <= top_n。
type Result struct {
	UserID UserID
	Status Status
	Items  []*Item

	// Reason 记录 NotFound 的原因（用于日志/展示），OK 时为空
	Reason string
}

// Names 返回展示名列表
func (r *Result) Names() []string {
	if r == nil {
		return nil
	}
	return Names(r.Items)
}

// Clone 深拷贝结果，调用方可自由修改返回的 Items
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Items = make([]*Item, len(r.Items))
	for i, it := range r.Items {
		c.Items[i] = it.Clone()
	}
	return &c
}

// Empty 表示没有可返回的推荐
func (r *Result) Empty() bool {
	return r == nil || len(r.Items) == 0
}
