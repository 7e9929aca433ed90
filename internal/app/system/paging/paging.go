// Package paging parses page/limit query parameters for list endpoints and
// applies them to Mongo find options.
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size when ?limit= is absent.
const DefaultLimit = 20

// MaxLimit caps ?limit=.
const MaxLimit = 100

// Params is a parsed page request. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Meta describes the returned page.
type Meta struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
}

// Parse reads ?page= and ?limit=. Missing or invalid values fall back to
// page 1 and DefaultLimit; limit is clamped to MaxLimit.
func Parse(r *http.Request) Params {
	p := Params{Page: 1, Limit: DefaultLimit}
	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}

// Skip is the number of documents before this page.
func (p Params) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// Apply sets skip and limit on find.
func (p Params) Apply(find *options.FindOptions) *options.FindOptions {
	return find.SetSkip(p.Skip()).SetLimit(int64(p.Limit))
}

// MetaFor builds the response metadata given the total match count.
func (p Params) MetaFor(total int64) Meta {
	return Meta{
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   total,
		HasNext: p.Skip()+int64(p.Limit) < total,
	}
}
