package listview

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// Paginate clamps page into range and returns the window of records.
func Paginate[T any](records []T, page, perPage int) ([]T, Pagination) {
	if perPage <= 0 {
		perPage = 20
	}
	total := len(records)
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}
	if page <= 0 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	return records[start:end], Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}
