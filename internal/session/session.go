// ABOUTME: Explicit, injectable holder for the signed-in user's bearer token
// ABOUTME: Optionally persists the token through a Persister on every change

package session

import (
	"fmt"
	"sync"
)

// Persister stores the token outside the process.
type Persister interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Context is the session for one console user. It is safe for concurrent use.
// A nil *Context behaves as signed out.
type Context struct {
	mu      sync.RWMutex
	token   string
	persist Persister
}

// New creates an in-memory session seeded with token (may be empty).
func New(token string) *Context {
	return &Context{token: token}
}

// Open creates a session backed by p and loads the stored token.
func Open(p Persister) (*Context, error) {
	token, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session token: %w", err)
	}
	return &Context{token: token, persist: p}, nil
}

// Token returns the current bearer token, or "" when signed out.
func (c *Context) Token() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SignedIn reports whether a token is present.
func (c *Context) SignedIn() bool {
	return c.Token() != ""
}

// SetToken replaces the token after a successful login.
func (c *Context) SetToken(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.persist != nil {
		if err := c.persist.Save(token); err != nil {
			return fmt.Errorf("saving session token: %w", err)
		}
	}
	c.token = token
	return nil
}

// Clear signs the user out.
func (c *Context) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	if c.persist != nil {
		if err := c.persist.Clear(); err != nil {
			return fmt.Errorf("clearing session token: %w", err)
		}
	}
	return nil
}
