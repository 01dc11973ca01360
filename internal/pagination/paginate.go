// Package pagination slices already-fetched list responses into pages.
package pagination

import (
	"encoding/json"
	"sort"
	"strconv"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 20

// Meta describes the page that was returned.
type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// PageResult is one page of a list response plus its metadata.
type PageResult struct {
	Data       []any `json:"data"`
	Pagination Meta  `json:"pagination"`
}

// Paginate returns the requested 1-based page of items.
//
// Values that are not lists (nil, objects, scalars) are returned unchanged.
// A page past the end yields empty data with consistent metadata.
func Paginate(items any, page, pageSize int) any {
	list, ok := items.([]any)
	if !ok {
		return items
	}
	return PaginateList(list, page, pageSize)
}

// PaginateList slices list without modifying it.
func PaginateList(list []any, page, pageSize int) PageResult {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	// page and pageSize may be near MaxInt; only multiply once start is known to be in range.
	total := len(list)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	start := total
	if page-1 < totalPages {
		start = (page - 1) * pageSize
	}
	end := start + min(pageSize, total-start)

	data := make([]any, end-start)
	copy(data, list[start:end])

	return PageResult{
		Data: data,
		Pagination: Meta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}
}

// SortByNumericField returns a copy of items stably sorted by field in
// descending order. Non-list values are returned unchanged. Entries that are
// not objects, or whose field is missing or not numeric, sort as zero.
func SortByNumericField(items any, field string) any {
	list, ok := items.([]any)
	if !ok {
		return items
	}

	sorted := make([]any, len(list))
	copy(sorted, list)

	sort.SliceStable(sorted, func(i, j int) bool {
		return numericField(sorted[i], field) > numericField(sorted[j], field)
	})
	return sorted
}

func numericField(item any, field string) float64 {
	obj, ok := item.(map[string]any)
	if !ok {
		return 0
	}
	switch v := obj[field].(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
