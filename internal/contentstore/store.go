// Package contentstore reads and writes the versioned text file that holds
// the booth configuration. Every write is conditional on the version token
// returned by the previous read.
package contentstore

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrConflict means the file changed since the token was issued. The
	// caller reloads and resubmits; nothing was written.
	ErrConflict = errors.New("content store: file changed since it was loaded")
	ErrNotFound = errors.New("content store: file not found")
)

// TransportError wraps a failure to reach the store or an unexpected
// response from it. StatusCode is zero when no response arrived.
type TransportError struct {
	Op         string
	Path       string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("content store: %s %s: HTTP %d: %v", e.Op, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("content store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Store is a text file store with optimistic concurrency.
//
// Load returns the file contents and an opaque version token. Save writes
// text only if the file is still at token and returns the new token. An
// empty token on Save creates a file that must not exist yet.
type Store interface {
	Load(ctx context.Context, path string) (text, token string, err error)
	Save(ctx context.Context, path, text, token string) (newToken string, err error)
}
