// Package fetchcache provides a TTL-based, size-limited cache for the results
// of catalog queries.
//
// # Overview
//
// A Cache stores one value per query key. Get serves a fresh cached value
// without calling the fetch function; otherwise it fetches, deduplicating
// concurrent fetches of the same key so only one request reaches the
// catalog service.
//
// # Invalidation
//
// Invalidate drops a key and bumps its generation. A fetch that started before
// the invalidation may still return its result to its own callers, but that
// result is never stored, and callers arriving after the invalidation never
// join it. This gives invalidate-then-refetch ordering after a mutation.
//
// Failed fetches are never cached, so a manual retry always reaches the
// service.
//
// # Usage
//
//	books := fetchcache.New[[]catalog.Book]("books", 10*time.Second, 256)
//	defer books.Close()
//
//	list, err := books.Get(ctx, "books", client.ListBooks)
//	...
//	books.Invalidate("books") // after a successful delete
package fetchcache
