// ABOUTME: Shareable list view state carried in the URL as search and page parameters
// ABOUTME: Applies the page-reset rule when the search text changes

package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names.
const (
	ParamSearch = "search"
	ParamPage   = "page"
)

// Query is the URL-representable list state. Unrelated parameters are preserved.
type Query struct {
	values url.Values
}

// ParseQuery reads list state from URL values. The input is copied.
func ParseQuery(values url.Values) Query {
	q := Query{values: url.Values{}}
	for k, v := range values {
		q.values[k] = append([]string(nil), v...)
	}
	return q
}

// ParseRawQuery reads list state from an encoded query string. Malformed input
// yields the default state.
func ParseRawQuery(raw string) Query {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return Query{values: url.Values{}}
	}
	return Query{values: values}
}

// Search returns the search text, or "" when absent.
func (q Query) Search() string {
	return q.values.Get(ParamSearch)
}

// Page returns the requested page. Missing or non-positive values decode to 1.
func (q Query) Page() int {
	return ParsePage(q.values.Get(ParamPage))
}

// ParsePage decodes a page parameter, falling back to 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// WithSearch returns the state after the search text changes to s.
// A non-empty search sets page to 1. An empty search removes the parameter
// and leaves page as it was.
func (q Query) WithSearch(s string) Query {
	next := q.clone()
	if s == "" {
		next.values.Del(ParamSearch)
		return next
	}
	next.values.Set(ParamSearch, s)
	next.values.Set(ParamPage, "1")
	return next
}

// WithPage returns the state showing page n. The search text is untouched.
func (q Query) WithPage(n int) Query {
	if n < 1 {
		n = 1
	}
	next := q.clone()
	next.values.Set(ParamPage, strconv.Itoa(n))
	return next
}

// Values returns a copy of the underlying parameters.
func (q Query) Values() url.Values {
	return q.clone().values
}

// Encode returns the query string without a leading "?".
func (q Query) Encode() string {
	return q.values.Encode()
}

// URL returns path with the query appended.
func (q Query) URL(path string) string {
	enc := q.Encode()
	if enc == "" {
		return path
	}
	return path + "?" + enc
}

func (q Query) clone() Query {
	return ParseQuery(q.values)
}
