// ABOUTME: Console session persistence: cookie id to catalog bearer token with expiry
// ABOUTME: Expired rows are invisible to reads and removed by DeleteExpiredConsoleSessions

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateConsoleSession creates a new console session.
func (s *SQLiteStore) CreateConsoleSession(ctx context.Context, session *ConsoleSession) error {
	query := `
		INSERT INTO console_sessions (id, email, token, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.Email,
		session.Token,
		session.CreatedAt.UTC().Format(time.RFC3339),
		session.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting console session: %w", err)
	}

	s.logger.Debug("created console session", "id", session.ID, "email", session.Email)
	return nil
}

// GetConsoleSession retrieves a valid (non-expired) console session.
func (s *SQLiteStore) GetConsoleSession(ctx context.Context, id string) (*ConsoleSession, error) {
	query := `
		SELECT id, email, token, created_at, expires_at
		FROM console_sessions
		WHERE id = ? AND expires_at > ?
	`

	var session ConsoleSession
	var createdAtStr, expiresAtStr string
	now := time.Now().UTC().Format(time.RFC3339)

	err := s.db.QueryRowContext(ctx, query, id, now).Scan(
		&session.ID,
		&session.Email,
		&session.Token,
		&createdAtStr,
		&expiresAtStr,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConsoleSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying console session: %w", err)
	}

	session.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	session.ExpiresAt, err = time.Parse(time.RFC3339, expiresAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing expires_at: %w", err)
	}

	return &session, nil
}

// DeleteConsoleSession deletes a console session. Deleting a missing session is not an error.
func (s *SQLiteStore) DeleteConsoleSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM console_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting console session: %w", err)
	}
	return nil
}

// DeleteExpiredConsoleSessions removes all expired sessions and returns their ids.
func (s *SQLiteStore) DeleteExpiredConsoleSessions(ctx context.Context) ([]string, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	rows, err := s.db.QueryContext(ctx,
		"DELETE FROM console_sessions WHERE expires_at <= ? RETURNING id", now)
	if err != nil {
		return nil, fmt.Errorf("deleting expired sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning expired session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expired sessions: %w", err)
	}

	if len(ids) > 0 {
		s.logger.Debug("deleted expired console sessions", "count", len(ids))
	}
	return ids, nil
}
