package store

import (
	"slices"

	"github.com/rushteam/animerec/core"
)

// Rating 是一条历史评分（rating_df.csv 的一行）。
type Rating struct {
	User  core.UserID
	Item  core.ItemID
	Value float64
}

// Ratings 是按用户分组的只读评分历史。
type Ratings struct {
	byUser map[core.UserID][]Rating
	total  int
}

// NewRatings 按用户分组，组内保持输入顺序。
func NewRatings(records []Rating) *Ratings {
	r := &Ratings{byUser: make(map[core.UserID][]Rating)}
	for _, rec := range records {
		r.byUser[rec.User] = append(r.byUser[rec.User], rec)
	}
	r.total = len(records)
	return r
}

func (r *Ratings) Name() string { return "ratings" }

// History 返回用户的全部评分记录（副本）。没有记录时返回空切片。
func (r *Ratings) History(userID core.UserID) []Rating {
	if r == nil {
		return nil
	}
	return slices.Clone(r.byUser[userID])
}

// Has 判断用户是否有评分记录
func (r *Ratings) Has(userID core.UserID) bool {
	if r == nil {
		return false
	}
	return len(r.byUser[userID]) > 0
}

// Users 返回有评分记录的用户数
func (r *Ratings) Users() int {
	if r == nil {
		return 0
	}
	return len(r.byUser)
}

// Len 返回评分记录总数
func (r *Ratings) Len() int {
	if r == nil {
		return 0
	}
	return r.total
}
