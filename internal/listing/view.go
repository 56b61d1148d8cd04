// ABOUTME: Pure filter and paginate engine over an already-fetched book list
// ABOUTME: Produces the visible window plus the totals the list footer and pager need

package listing

import (
	"fmt"
	"strings"

	"github.com/2389/bookdesk/internal/catalog"
)

// PageSize is the fixed number of rows on one page.
const PageSize = 5

// View is the derived state of one rendered list page.
type View struct {
	Visible       []catalog.Book
	TotalFiltered int
	TotalPages    int
	RangeStart    int // index of the first visible row in the filtered list
	RangeEnd      int // exclusive
	TotalAll      int
	Page          int
	Search        string
}

// ComputeView filters all by search and returns the window for page.
// The returned Visible slice aliases all (or the filtered copy) and must not be modified.
func ComputeView(all []catalog.Book, search string, page int) View {
	if page < 1 {
		page = 1
	}

	filtered := Filter(all, search)
	total := len(filtered)

	// Bound page before multiplying so huge page numbers cannot overflow.
	start := total
	if page-1 < (total+PageSize-1)/PageSize {
		start = (page - 1) * PageSize
	}
	end := min(start+PageSize, total)

	return View{
		Visible:       filtered[start:end:end],
		TotalFiltered: total,
		TotalPages:    (total + PageSize - 1) / PageSize,
		RangeStart:    start,
		RangeEnd:      end,
		TotalAll:      len(all),
		Page:          page,
		Search:        search,
	}
}

// Filter returns the books matching search. An empty search returns all itself.
func Filter(all []catalog.Book, search string) []catalog.Book {
	if search == "" {
		return all
	}

	needle := strings.ToLower(search)
	out := make([]catalog.Book, 0, len(all))
	for _, b := range all {
		if Matches(b, needle) {
			out = append(out, b)
		}
	}
	return out
}

// Matches reports whether a lowercased needle occurs in the book's title, genre
// or author name. A book without an author is matched on title and genre only.
func Matches(b catalog.Book, needle string) bool {
	if strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(b.Genre), needle) {
		return true
	}
	return b.Author != nil && strings.Contains(strings.ToLower(b.Author.Name), needle)
}

// Empty reports whether the filtered set has no rows.
func (v View) Empty() bool {
	return v.TotalFiltered == 0
}

// Summary renders the list footer, e.g. "Displaying 1-5 of 12 books".
// An empty window, including a page past the end, reads "0-0".
func (v View) Summary() string {
	first, last := v.RangeStart+1, v.RangeEnd
	if last == v.RangeStart {
		first, last = 0, 0
	}

	noun := "books"
	if v.TotalFiltered == 1 {
		noun = "book"
	}

	s := fmt.Sprintf("Displaying %d-%d of %d %s", first, last, v.TotalFiltered, noun)
	if v.Search != "" {
		s += fmt.Sprintf(" · Filtered from %d total", v.TotalAll)
	}
	return s
}
