package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/forest/internal/domain/model"
	"github.com/okian/forest/internal/domain/seedrng"
	"github.com/okian/forest/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: created_at DESC, then id ASC. In-order traversal yields the
// newest-first list the layout consumes. Node priorities come from the
// seeded hash of the id, so the tree shape is a pure function of the stored
// set.

type node struct {
	entry model.Entry
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority spreads the 32-bit id hash over 64 bits with two mulberry draws.
func priority(id string) uint64 {
	r := seedrng.FromSeed(id)
	return uint64(r.Uint32())<<32 | uint64(r.Uint32())
}

func insert(n *node, e model.Entry, prio uint64) *node {
	if n == nil {
		return &node{entry: e, prio: prio, size: 1}
	}
	if model.Less(e, n.entry) {
		n.left = insert(n.left, e, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, e, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// collectSince appends entries newer than or equal to since in order,
// stopping at limit. It returns false once no further entries can qualify.
func collectSince(n *node, since time.Time, limit int, out *[]model.Entry) bool {
	if n == nil {
		return true
	}
	if !collectSince(n.left, since, limit, out) {
		return false
	}
	if n.entry.CreatedAt.Before(since) {
		return false
	}
	if limit > 0 && len(*out) >= limit {
		return false
	}
	*out = append(*out, n.entry)
	return collectSince(n.right, since, limit, out)
}

// rankOf counts the nodes ordered before e.
func rankOf(n *node, e model.Entry) int {
	rank := 0
	for n != nil {
		switch {
		case model.Less(e, n.entry):
			n = n.left
		case e.ID == n.entry.ID:
			return rank + nsize(n.left)
		default:
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return rank
}

// TreapStore keeps entry references in memory. It is safe for concurrent use.
type TreapStore struct {
	mu     sync.RWMutex
	root   *node
	byID   map[string]model.Entry
	closed bool
}

// NewTreapStore returns an empty store.
func NewTreapStore() *TreapStore {
	return &TreapStore{byID: make(map[string]model.Entry)}
}

// Close makes later writes fail with ErrClosed. Reads keep working.
func (s *TreapStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Put implements Store.Put in O(log n) expected time.
func (s *TreapStore) Put(_ context.Context, e model.Entry) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency("put", float64(time.Since(start).Microseconds())/1000)
	}()

	if err := e.Validate(); err != nil {
		return false, ErrInvalidEntry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	if _, ok := s.byID[e.ID]; ok {
		return false, nil
	}
	s.byID[e.ID] = e
	s.root = insert(s.root, e, priority(e.ID))
	return true, nil
}

// Get implements Store.Get.
func (s *TreapStore) Get(_ context.Context, id string) (model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return model.Entry{}, ErrNotFound
	}
	return e, nil
}

// Recent implements Store.Recent.
func (s *TreapStore) Recent(_ context.Context, since time.Time, limit int) ([]model.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency("recent", float64(time.Since(start).Microseconds())/1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Entry, 0, min(max(limit, 0), len(s.byID)))
	collectSince(s.root, since, limit, &out)
	return out, nil
}

// Rank implements Store.Rank in O(log n) expected time.
func (s *TreapStore) Rank(_ context.Context, id string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return 0, ErrNotFound
	}
	return rankOf(s.root, e), nil
}

// Count implements Store.Count.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
