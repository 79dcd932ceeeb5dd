// Package pagination pages through a locally held collection.
package pagination

import (
	"net/http"
	"strconv"
)

// Limits for the per_page query parameter.
const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

// Params is the requested window.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// FromRequest reads page and per_page from the query string. Invalid or
// out-of-range values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	p := Params{Page: 1, PerPage: DefaultPerPage}
	q := r.URL.Query()

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 && v <= MaxPerPage {
		p.PerPage = v
	}
	return p
}

// Result is one page of a collection.
type Result[T any] struct {
	Items      []T  `json:"items"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Slice returns the page of items selected by p. A page past the end is
// empty, never nil.
func Slice[T any](items []T, p Params) Result[T] {
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.Page <= 0 {
		p.Page = 1
	}

	total := len(items)
	pages := (total + p.PerPage - 1) / p.PerPage

	start := min((p.Page-1)*p.PerPage, total)
	end := min(start+p.PerPage, total)

	return Result[T]{
		Items:      append(make([]T, 0, end-start), items[start:end]...),
		TotalCount: total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: pages,
		HasNext:    p.Page < pages,
		HasPrev:    p.Page > 1,
	}
}
