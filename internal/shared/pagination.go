// Package shared holds request-scoped helpers used across domains.
package shared

import "math"

// Meta contains metadata for paginated listings. NextPage and PrevPage are
// pointers so they serialize as null at the boundaries.
type Meta struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	NextPage    *int `json:"nextPage"`
	PrevPage    *int `json:"prevPage"`
}

// NewMeta computes pagination metadata for a listing.
func NewMeta(total, page, limit int) Meta {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	meta := Meta{
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
	if meta.HasNextPage {
		next := page + 1
		meta.NextPage = &next
	}
	if meta.HasPrevPage {
		prev := page - 1
		meta.PrevPage = &prev
	}
	return meta
}

// Offset converts a page/limit pair into a row offset.
func Offset(page, limit int) int {
	if page <= 0 {
		page = 1
	}
	return (page - 1) * limit
}
