// Package session holds the bearer credential used to authorize catalog requests.
//
// A Context is created when the program starts, updated on login and logout,
// and read by every outgoing request. It is passed explicitly to the catalog
// client instead of living in a package-level variable.
//
// The CLI persists the token in a file (FileStore); the web console keeps one
// Context per browser session and persists tokens in SQLite (see internal/store).
//
// Inspect reads the subject and expiry from a JWT access token without
// verifying its signature. The console uses it to log users out once the
// token has expired.
package session
