package domain

// PerPage is the fixed page size of every list.
const PerPage = 20

// PageRequest is a 1-based page number.
type PageRequest struct {
	Page int
}

// Normalize clamps the page to at least 1.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

func (p PageRequest) Limit() int  { return PerPage }
func (p PageRequest) Offset() int { return (p.Normalize().Page - 1) * PerPage }

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPage wraps one page of items with the totals for req.
func NewPage[T any](items []T, total int, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Page:       req.Normalize().Page,
		PerPage:    PerPage,
		Total:      total,
		TotalPages: (total + PerPage - 1) / PerPage,
	}
}
