package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/okian/forest/internal/domain/model"
	"github.com/okian/forest/pkg/metrics"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Bounds of the int64 nanosecond range.
var (
	minNanoTime = time.Unix(0, math.MinInt64)
	maxNanoTime = time.Unix(0, math.MaxInt64)
)

// nanos converts t to Unix nanoseconds, saturating outside the int64 range.
func nanos(t time.Time) int64 {
	switch {
	case t.Before(minNanoTime):
		return math.MinInt64
	case t.After(maxNanoTime):
		return math.MaxInt64
	}
	return t.UnixNano()
}

// SQLiteStore keeps entry references in a SQLite database. created_at is
// stored as Unix nanoseconds so index order matches time order.
type SQLiteStore struct {
	db     *sql.DB
	Path   string
	closed atomic.Bool
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	return openSQLite(ctx, dsn, path)
}

// OpenSQLiteMemory opens a private in-memory database, mainly for tests.
func OpenSQLiteMemory(ctx context.Context) (*SQLiteStore, error) {
	return openSQLite(ctx, memoryPath, memoryPath)
}

func openSQLite(ctx context.Context, dsn, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps :memory: a single database and serializes writers.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, Path: path}, nil
}

// SchemaVersion returns the current schema version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&v)
	return v, err
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// Put implements Store.Put.
func (s *SQLiteStore) Put(ctx context.Context, e model.Entry) (bool, error) {
	defer observe("put", time.Now())
	if err := e.Validate(); err != nil {
		return false, ErrInvalidEntry
	}
	if s.closed.Load() {
		return false, ErrClosed
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO entries (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING",
		e.ID, nanos(e.CreatedAt))
	if err != nil {
		return false, fmt.Errorf("insert entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert entry: %w", err)
	}
	return n == 1, nil
}

// Get implements Store.Get.
func (s *SQLiteStore) Get(ctx context.Context, id string) (model.Entry, error) {
	defer observe("get", time.Now())
	var ns int64
	err := s.db.QueryRowContext(ctx, "SELECT created_at FROM entries WHERE id = ?", id).Scan(&ns)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entry{}, ErrNotFound
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return model.Entry{ID: id, CreatedAt: time.Unix(0, ns).UTC()}, nil
}

// Recent implements Store.Recent.
func (s *SQLiteStore) Recent(ctx context.Context, since time.Time, limit int) ([]model.Entry, error) {
	defer observe("recent", time.Now())
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, created_at FROM entries WHERE created_at >= ? ORDER BY created_at DESC, id ASC LIMIT ?",
		nanos(since), limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	out := []model.Entry{}
	for rows.Next() {
		var (
			id string
			ns int64
		)
		if err := rows.Scan(&id, &ns); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, model.Entry{ID: id, CreatedAt: time.Unix(0, ns).UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent: %w", err)
	}
	return out, nil
}

// Rank implements Store.Rank.
func (s *SQLiteStore) Rank(ctx context.Context, id string) (int, error) {
	defer observe("rank", time.Now())
	e, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	ns := nanos(e.CreatedAt)
	var rank int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM entries WHERE created_at > ? OR (created_at = ? AND id < ?)",
		ns, ns, id).Scan(&rank)
	if err != nil {
		return 0, fmt.Errorf("rank entry: %w", err)
	}
	return rank, nil
}

// Count implements Store.Count. Read failures count as zero.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		metrics.RecordErrorByComponent("repository", "count")
		return 0
	}
	return n
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
