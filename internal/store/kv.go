package store

import (
	"context"
	"errors"
	"fmt"
)

// KV is the persistent key-value capability the draft is stored in.
// Implementations may fail at any time; callers keep their in-memory state.
type KV interface {
	// Get returns ok=false when key is absent.
	Get(ctx context.Context, key string) (val string, ok bool, err error)
	Set(ctx context.Context, key, val string) error
	// Remove is a no-op for absent keys.
	Remove(ctx context.Context, key string) error
	// Location describes where values live (a path, or "" for in-memory).
	Location() string
}

// ErrMalformedDraft marks a stored blob that exists but cannot be decoded.
var ErrMalformedDraft = errors.New("malformed draft")

// PersistenceError wraps a storage failure with the operation and key.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
