// Package storage defines the narrow key→blob interface the quiz persists
// through, with in-memory, file-backed, and SQLite implementations. The
// engine never sees more than Load/Save/Remove, so tests can swap the medium
// freely.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when a key has never been saved. Callers
// treat it as an empty value, never as a fault.
var ErrNotFound = errors.New("key not found")

type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}
