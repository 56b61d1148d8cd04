// Package store provides persistent storage for the bookdesk console using SQLite.
//
// # Architecture
//
// The store keeps only what belongs to the console itself. Books live in the
// remote catalog service and are never stored here.
//
//   - SessionStore: browser sessions mapping a cookie id to a catalog bearer token
//   - AuditStore: an append-only log of book mutations made through the console
//
// SQLiteStore implements both interfaces in a single struct.
//
// # Timestamps
//
// Times are stored as RFC3339 strings in UTC. Expiry comparisons are done in
// SQL on those strings, which sort lexically.
//
// # Usage
//
//	s, err := store.NewSQLiteStore(cfg.Database.Path)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	err = s.CreateConsoleSession(ctx, &store.ConsoleSession{...})
package store
