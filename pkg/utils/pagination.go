package utils

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination 分页请求参数，绑定自 query
type Pagination struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// PageResult 分页响应结果
type PageResult struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
	HasMore    bool        `json:"hasMore"`
}

// GetPageOffset 修正非法参数后返回 offset 和 limit
func (p *Pagination) GetPageOffset() (int, int) {
	if p.Page <= 0 {
		p.Page = 1
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageSize
	case p.Limit > MaxPageSize:
		p.Limit = MaxPageSize
	}
	return (p.Page - 1) * p.Limit, p.Limit
}

// NewPageResult p 需已经过 GetPageOffset
func NewPageResult(list interface{}, total int64, p Pagination) PageResult {
	result := PageResult{List: list, Total: total, Page: p.Page, Limit: p.Limit}
	if p.Limit > 0 {
		result.TotalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
		result.HasMore = int64(p.Page)*int64(p.Limit) < total
	}
	return result
}
