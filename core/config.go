package core

// 推荐默认值，与离线训练时的评测口径一致。
const (
	DefaultSimilarUsers    = 10   // 相似用户数
	DefaultCandidateItems  = 10   // 协同候选上限（集合 U）
	DefaultContentNeighbor = 10   // 每个候选的内容相似扩展数
	DefaultUserWeight      = 0.5  // 协同信号权重
	DefaultContentWeight   = 0.5  // 内容信号权重
	DefaultTopN            = 10   // 最终返回条数
	DefaultPercentile      = 75.0 // 高分偏好分位数
)
