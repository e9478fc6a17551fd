package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPerPage = 5
	MaxPerPage     = 100
)

type Meta struct {
	Page    int `json:"current_page"`
	PerPage int `json:"items_per_page"`
}

// Links holds relative URLs. Next and Prev are empty when there is no such
// page.
type Links struct {
	Current string `json:"current_page"`
	Next    string `json:"next_page,omitempty"`
	Prev    string `json:"prev_page,omitempty"`
}

type Paginated[T any] struct {
	Data  []T   `json:"data"`
	Meta  Meta  `json:"meta"`
	Links Links `json:"links"`
}

func (p Paginated[T]) HasNext() bool { return p.Links.Next != "" }
func (p Paginated[T]) HasPrev() bool { return p.Links.Prev != "" }

// Window returns SKIP and LIMIT for a 0-indexed page. The limit asks for one
// extra row so Paginate can tell whether a next page exists.
func Window(page, perPage int) (skip, limit int) {
	return page * perPage, perPage + 1
}

// ClampPerPage applies the default and the upper bound to a requested page
// size.
func ClampPerPage(n int) int {
	if n <= 0 {
		return DefaultPerPage
	}
	if n > MaxPerPage {
		return MaxPerPage
	}
	return n
}

// ClampPage treats negative pages as the first page.
func ClampPage(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Paginate wraps rows fetched with Window. items may hold perPage+1 rows;
// the extra row only signals that a next page exists and is dropped.
// params are carried into every link (search terms, concept name).
func Paginate[T any](endpoint string, items []T, page, perPage int, params url.Values) Paginated[T] {
	hasNext := len(items) > perPage
	if hasNext {
		items = items[:perPage]
	}
	if items == nil {
		items = []T{}
	}

	p := Paginated[T]{
		Data: items,
		Meta: Meta{Page: page, PerPage: perPage},
		Links: Links{
			Current: link(endpoint, page, perPage, params),
		},
	}
	if hasNext {
		p.Links.Next = link(endpoint, page+1, perPage, params)
	}
	if page != 0 {
		p.Links.Prev = link(endpoint, page-1, perPage, params)
	}
	return p
}

func link(endpoint string, page, perPage int, params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return endpoint + "?" + q.Encode()
}
