package model

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// PageRequest is an offset/limit request expressed as a 1-based page number.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize fills in defaults for missing or non-positive values, caps Limit
// at MaxLimit and caps Page so that Offset fits in an int.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	if maxPage := math.MaxInt/r.Limit + 1; r.Page > maxPage {
		r.Page = maxPage
	}
	return r
}

// Offset is the number of items skipped before this page.
func (r PageRequest) Offset() int {
	r = r.Normalize()
	return (r.Page - 1) * r.Limit
}

// Pagination describes a returned page relative to the full result set.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination builds the pagination block for total items under r.
func NewPagination(r PageRequest, total int) Pagination {
	r = r.Normalize()
	return Pagination{
		Page:  r.Page,
		Limit: r.Limit,
		Total: total,
		Pages: pageCount(total, r.Limit),
	}
}

func pageCount(total, limit int) int {
	if total <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}

// Paginate returns the slice of items that falls on page r.
func Paginate[T any](items []T, r PageRequest) []T {
	r = r.Normalize()
	start := r.Offset()
	if start >= len(items) {
		return []T{}
	}
	return items[start : start+min(r.Limit, len(items)-start)]
}
