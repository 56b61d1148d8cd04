// Package catalog is the HTTP client for the remote book-catalog service.
//
// # Overview
//
// The catalog service owns book records. This package only consumes its REST
// contract:
//
//	GET    /api/books          list books
//	GET    /api/books/{id}     fetch one book
//	POST   /api/books          create (multipart: title, genre, coverImage, file)
//	PATCH  /api/books/{id}     update (multipart, files optional)
//	DELETE /api/books/{id}     delete
//	POST   /api/users/login    exchange email/password for an access token
//	POST   /api/users/register create an account and receive an access token
//
// # Authentication
//
// A Client reads the bearer credential from its TokenSource on every request.
// When the source returns an empty token the Authorization header is omitted
// entirely:
//
//	sess := session.New(token)
//	c, err := catalog.New(catalog.Options{BaseURL: "https://books.example.com"}, sess)
//
// The web console binds one Client per browser session with WithSession.
//
// # Errors
//
// Every failure is an *Error carrying one of three kinds:
//
//   - KindTransport: the request never produced a response
//   - KindService: the service answered with a non-2xx status
//   - KindValidation: the call was rejected locally and never sent
//
// UserMessage turns any error into the text shown to the operator. Requests are
// never retried automatically.
package catalog
