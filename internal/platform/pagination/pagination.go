// Package pagination implements page-number pagination for list endpoints:
// query parsing, bounds checking against the total count, and the
// {next, prev, count, results} envelope with absolute links.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"

	"blog_backend/internal/platform/apperr"
)

const (
	// PageParam selects the 1-based page. "last" selects the final page.
	PageParam = "page"
	// SizeParam overrides the page size.
	SizeParam = "per_page"
)

// ErrInvalidPage is returned for a page that is not a positive integer or lies past the last page.
var ErrInvalidPage = apperr.WithDetail(apperr.ErrNotFound, "Invalid page.")

// Request is a parsed pagination query.
type Request struct {
	Page    int
	Last    bool
	PerPage int
}

// ParseRequest reads page and per_page from q. An invalid per_page falls back
// to defaultSize and a large one is clamped to maxSize.
func ParseRequest(q url.Values, defaultSize, maxSize int) (Request, error) {
	req := Request{Page: 1, PerPage: defaultSize}

	if raw := q.Get(SizeParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			req.PerPage = n
		}
	}
	if maxSize > 0 && req.PerPage > maxSize {
		req.PerPage = maxSize
	}

	switch raw := q.Get(PageParam); raw {
	case "":
	case "last":
		req.Last = true
	default:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Request{}, ErrInvalidPage
		}
		req.Page = n
	}
	return req, nil
}

// Resolve returns the concrete page number for count items.
// Page 1 is always valid, even when there are no items.
func (r Request) Resolve(count int64) (int, error) {
	pages := NumPages(count, r.PerPage)
	if r.Last {
		return pages, nil
	}
	if r.Page > pages {
		return 0, ErrInvalidPage
	}
	return r.Page, nil
}

// NumPages returns the number of pages, at least 1.
func NumPages(count int64, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 1
	}
	return int((count + int64(perPage) - 1) / int64(perPage))
}

// Offset returns the row offset of page.
func Offset(page, perPage int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * perPage
}

// Envelope is the paginated list response.
type Envelope[T any] struct {
	Next    *string `json:"next"`
	Prev    *string `json:"prev"`
	Count   int64   `json:"count"`
	Results []T     `json:"results"`
}

// NewEnvelope builds the response for page of a list requested at base.
// Links keep every other query parameter of base.
func NewEnvelope[T any](base *url.URL, page, perPage int, count int64, results []T) Envelope[T] {
	if results == nil {
		results = []T{}
	}
	env := Envelope[T]{Count: count, Results: results}

	if page < NumPages(count, perPage) {
		next := withPage(base, page+1)
		env.Next = &next
	}
	if page > 1 {
		prev := withPage(base, page-1)
		env.Prev = &prev
	}
	return env
}

// withPage returns base with the page parameter set. Page 1 drops the parameter.
func withPage(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	if page <= 1 {
		q.Del(PageParam)
	} else {
		q.Set(PageParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// AbsoluteURL reconstructs the absolute URL of r, honoring X-Forwarded-Proto.
func AbsoluteURL(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
}
