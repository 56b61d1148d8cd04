// ABOUTME: Delete-confirmation state machine guarding book deletion behind an explicit confirm
// ABOUTME: Serializes transitions with a mutex that is never held across the remote delete call

// Package deleteflow tracks one delete-confirmation dialog and the per-row action
// menu that opens it.
package deleteflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/2389/bookdesk/internal/metrics"
)

// State is the dialog lifecycle stage.
type State int

const (
	Idle State = iota
	AwaitingConfirmation
	Mutating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Mutating:
		return "mutating"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrBusy is returned when a delete call is in flight.
	ErrBusy = errors.New("a delete is already in progress")

	// ErrNoPendingDelete is returned by Confirm when no dialog is open.
	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
)

// Deleter issues the remote delete call.
type Deleter interface {
	DeleteBook(ctx context.Context, id string) error
}

// Invalidator marks the cached book list stale.
type Invalidator func()

// Snapshot is a consistent view of a Flow for rendering.
type Snapshot struct {
	State   State
	BookID  string
	Title   string
	MenuFor string // row whose action menu is open, "" when closed
	Err     error  // last delete failure, cleared on the next transition
}

// Open reports whether the confirmation dialog is showing.
func (s Snapshot) Open() bool {
	return s.State != Idle
}

// Pending reports whether the delete call is in flight.
func (s Snapshot) Pending() bool {
	return s.State == Mutating
}

// Message is the confirmation text shown in the dialog.
func (s Snapshot) Message() string {
	return ConfirmationMessage(s.Title)
}

// ConfirmationMessage renders the dialog body for a book title.
func ConfirmationMessage(title string) string {
	return fmt.Sprintf("This action cannot be undone. This will permanently delete the book with title %q.", title)
}

// Flow is one console session's delete dialog. It is safe for concurrent use.
type Flow struct {
	mu      sync.Mutex
	state   State
	id      string
	title   string
	menuFor string
	lastErr error

	deleter    Deleter
	invalidate Invalidator
	logger     *slog.Logger
}

// New creates an idle Flow. invalidate may be nil.
func New(deleter Deleter, invalidate Invalidator) *Flow {
	return &Flow{
		deleter:    deleter,
		invalidate: invalidate,
		logger:     slog.Default().With("component", "deleteflow"),
	}
}

// Snapshot returns the current state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		State:   f.state,
		BookID:  f.id,
		Title:   f.title,
		MenuFor: f.menuFor,
		Err:     f.lastErr,
	}
	if s.Open() {
		s.MenuFor = ""
	}
	return s
}

// ToggleMenu opens the action menu for id, or closes it if it is already open.
// Opening one row's menu closes any other.
func (f *Flow) ToggleMenu(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.menuFor == id {
		f.menuFor = ""
		return
	}
	f.menuFor = id
}

// OpenMenu returns the row whose menu is open, or "" while a dialog is showing.
func (f *Flow) OpenMenu() string {
	return f.Snapshot().MenuFor
}

// Request opens the confirmation dialog for a book, replacing any dialog that
// is awaiting confirmation. The row menu is closed.
func (f *Flow) Request(id, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Mutating {
		return ErrBusy
	}
	f.state = AwaitingConfirmation
	f.id = id
	f.title = title
	f.menuFor = ""
	f.lastErr = nil
	return nil
}

// Cancel closes the dialog without calling the service.
// It is ignored while the delete call is in flight.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Mutating {
		return ErrBusy
	}
	f.reset()
	return nil
}

// Target identifies the book a confirmed delete acted on.
type Target struct {
	BookID string
	Title  string
}

// Confirm issues the delete for the pending book exactly once and returns the
// book it deleted, as captured when the call began.
// On success the cached list is invalidated before the dialog closes.
// On failure the dialog stays open awaiting confirmation with the error recorded.
func (f *Flow) Confirm(ctx context.Context) (Target, error) {
	f.mu.Lock()
	switch f.state {
	case Mutating:
		f.mu.Unlock()
		return Target{}, ErrBusy
	case Idle:
		f.mu.Unlock()
		return Target{}, ErrNoPendingDelete
	}
	f.state = Mutating
	f.lastErr = nil
	target := Target{BookID: f.id, Title: f.title}
	id := target.BookID
	f.mu.Unlock()

	err := f.deleter.DeleteBook(ctx, id)

	if err != nil {
		metrics.DeletesTotal.WithLabelValues("failure").Inc()
		f.logger.Warn("delete failed", "book_id", id, "error", err)

		f.mu.Lock()
		f.state = AwaitingConfirmation
		f.lastErr = err
		f.mu.Unlock()
		return target, fmt.Errorf("deleting book %s: %w", id, err)
	}

	metrics.DeletesTotal.WithLabelValues("success").Inc()
	f.logger.Info("book deleted", "book_id", id)

	if f.invalidate != nil {
		f.invalidate()
	}

	f.mu.Lock()
	f.reset()
	f.mu.Unlock()
	return target, nil
}

// reset returns to Idle. Must be called with mu held.
func (f *Flow) reset() {
	f.state = Idle
	f.id = ""
	f.title = ""
	f.lastErr = nil
}
