package dto

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// PageQuery 通用分页参数
type PageQuery struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}

// Normalize page 最小为 1，per_page 限制在 [1, 100]，缺省 20
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	switch {
	case q.PerPage <= 0:
		q.PerPage = DefaultPerPage
	case q.PerPage > MaxPerPage:
		q.PerPage = MaxPerPage
	}
}
