// Package repository stores entry references and serves them newest first.
package repository

import (
	"context"
	"time"

	"github.com/okian/forest/internal/domain/model"
)

// Store provides read/write access to entry references.
type Store interface {
	// Put records e. It returns false without error when the id is already
	// stored; the first write wins.
	Put(ctx context.Context, e model.Entry) (bool, error)

	// Get returns the entry with id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Entry, error)

	// Recent returns entries created at or after since, newest first with
	// ties broken by id. limit <= 0 means no limit.
	Recent(ctx context.Context, since time.Time, limit int) ([]model.Entry, error)

	// Rank returns the zero-based position of id in newest-first order over
	// the whole store, or ErrNotFound.
	Rank(ctx context.Context, id string) (int, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) int

	// Close releases resources held by the store. Put fails with ErrClosed
	// afterwards. Closing twice is a no-op.
	Close() error
}

var (
	_ Store = (*TreapStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
