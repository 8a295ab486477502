package domain

import "math"

const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

// Pagination carries paging params and totals.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination clamps page and size to sane bounds.
func NewPagination(page, size int) Pagination {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Pagination{Page: page, PageSize: size}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// WithTotal fills Total and TotalPages.
func (p Pagination) WithTotal(total int) Pagination {
	p.Total = total
	if p.PageSize > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.PageSize)))
	}
	return p
}

// Page is a paginated list response.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}
