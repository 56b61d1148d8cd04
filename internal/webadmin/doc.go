// Package webadmin provides the browser console for the book catalog.
//
// # Overview
//
// The console is a server-rendered interface for:
//
//   - Authentication: login and registration against the catalog service
//   - Book list: search, pagination and per-row action menus
//   - Delete confirmation: a modal that stays open until the delete settles
//   - Create and edit forms with cover image and PDF uploads
//   - Dashboard: rendered help text and recent catalog activity
//
// # Sessions
//
// A successful login stores a console session in SQLite and sets the
// bookdesk_session cookie. Each session owns the catalog bearer token, a
// delete flow and a cached copy of the book list. Sessions expire at the
// earlier of the configured TTL and the token's own exp claim, and a janitor
// sweeps expired rows.
//
// # List state
//
// Search text and page number live only in the URL query string:
//
//	/console/books?search=dune&page=2
//
// Every form on the list page posts the encoded query back in a hidden "q"
// field, so each state change redirects to the same view it came from. A new
// non-empty search resets the page to 1; clearing the search keeps the page.
//
// # CSRF Protection
//
// All form submissions require CSRF tokens:
//
//	<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
//
// The token is compared against the bookdesk_csrf cookie. Scripts may send it
// in the X-CSRF-Token header instead.
//
// # Usage
//
//	console, err := webadmin.New(store, client, cfg)
//	mux := http.NewServeMux()
//	console.RegisterRoutes(mux)
//	srv := &http.Server{Handler: webadmin.Instrument(mux)}
package webadmin
