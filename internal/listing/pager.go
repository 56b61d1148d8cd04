// ABOUTME: Builds the pagination strip shown under the book list
// ABOUTME: Keeps first, last and neighbouring pages and marks ellipses two pages out

package listing

// PageLink is one entry of the pagination strip.
type PageLink struct {
	Number   int
	Ellipsis bool
	Current  bool
}

// PageLinks lists the entries of the strip for current out of total pages.
// A page is shown when it is the first, the last or within one of current.
// Exactly current-2 and current+2 render as an ellipsis when not shown; every
// other page is dropped.
func PageLinks(current, total int) []PageLink {
	links := make([]PageLink, 0, 7)
	for n := 1; n <= total; n++ {
		switch {
		case n == 1 || n == total || (n >= current-1 && n <= current+1):
			links = append(links, PageLink{Number: n, Current: n == current})
		case n == current-2 || n == current+2:
			links = append(links, PageLink{Number: n, Ellipsis: true})
		}
	}
	return links
}

// Pager is the rendered pagination strip with navigation targets.
type Pager struct {
	Visible bool // false when there is at most one page
	Prev    Nav
	Next    Nav
	Links   []PageNav
}

// Nav is a previous/next control.
type Nav struct {
	Disabled bool
	Href     string
}

// PageNav is a page link with its target URL.
type PageNav struct {
	PageLink
	Href string
}

// NewPager builds the strip for v, producing hrefs from q rooted at path.
func NewPager(v View, q Query, path string) Pager {
	current, total := v.Page, v.TotalPages
	p := Pager{Visible: total > 1}
	if !p.Visible {
		return p
	}

	p.Prev = Nav{Disabled: current <= 1}
	if !p.Prev.Disabled {
		p.Prev.Href = q.WithPage(min(current-1, total)).URL(path)
	}
	p.Next = Nav{Disabled: current >= total}
	if !p.Next.Disabled {
		p.Next.Href = q.WithPage(current + 1).URL(path)
	}

	for _, link := range PageLinks(current, total) {
		nav := PageNav{PageLink: link}
		if !link.Ellipsis {
			nav.Href = q.WithPage(link.Number).URL(path)
		}
		p.Links = append(p.Links, nav)
	}
	return p
}
