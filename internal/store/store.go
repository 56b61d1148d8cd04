// ABOUTME: Store interfaces and data types for bookdesk console persistence
// ABOUTME: Defines console sessions and audit entries plus the interfaces the console consumes

package store

import (
	"context"
	"errors"
	"time"
)

// ErrConsoleSessionNotFound is returned when a session doesn't exist or is expired.
var ErrConsoleSessionNotFound = errors.New("console session not found")

// ConsoleSession is a signed-in browser session.
type ConsoleSession struct {
	ID        string
	Email     string
	Token     string // catalog bearer token
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuditAction represents an auditable book mutation.
type AuditAction string

const (
	AuditCreateBook AuditAction = "create_book"
	AuditUpdateBook AuditAction = "update_book"
	AuditDeleteBook AuditAction = "delete_book"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID        string // UUID v4
	Actor     string // email of the console user
	Action    AuditAction
	BookID    string
	Title     string // title at the time of the action
	Timestamp time.Time
	Detail    map[string]any // additional context
}

// AuditFilter specifies filtering options for listing audit entries.
type AuditFilter struct {
	Actor  *string
	Action *AuditAction
	BookID *string
	Limit  int // max results (default 50, max 500)
}

// SessionStore persists console sessions.
type SessionStore interface {
	CreateConsoleSession(ctx context.Context, session *ConsoleSession) error
	GetConsoleSession(ctx context.Context, id string) (*ConsoleSession, error)
	DeleteConsoleSession(ctx context.Context, id string) error
	// DeleteExpiredConsoleSessions removes expired sessions and returns their ids.
	DeleteExpiredConsoleSessions(ctx context.Context) ([]string, error)
}

// AuditStore records book mutations.
type AuditStore interface {
	AppendAuditLog(ctx context.Context, e *AuditEntry) error
	ListAuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error)
}
