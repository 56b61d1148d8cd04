// Package listing derives the visible book list from a fetched catalog.
//
// ComputeView filters a raw list by a free-text query and cuts the result into
// fixed-size pages. It never mutates its input and never fails: an
// out-of-range page simply yields an empty window.
//
// Query holds the shareable view state (search text and page number) as URL
// query parameters, applying the page-reset rules when the search changes.
// PageLinks and NewPager turn a view into the rendered pagination strip.
package listing
