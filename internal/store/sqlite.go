// Package store persists enrichment results in SQLite so repeated site
// comparisons do not spend service credits twice.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sitecompare/internal/enrich"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS enrich_cache (
	cache_key  TEXT PRIMARY KEY,
	result     TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`

// Store is a TTL-bounded enrichment cache backed by SQLite.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (creating if needed) the cache database at path. A ttl <= 0
// keeps entries forever.
func Open(path string, ttl time.Duration) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	clean := filepath.Clean(path)
	if dir := filepath.Dir(clean); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", clean+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get implements enrich.Cache. Expired entries are reported as misses.
func (s *Store) Get(ctx context.Context, key string) (enrich.Result, bool, error) {
	var (
		raw     string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT result, created_at FROM enrich_cache WHERE cache_key = ?`, key,
	).Scan(&raw, &created)
	if err == sql.ErrNoRows {
		return enrich.Result{}, false, nil
	}
	if err != nil {
		return enrich.Result{}, false, fmt.Errorf("get cache entry: %w", err)
	}
	if s.expired(created) {
		return enrich.Result{}, false, nil
	}
	var res enrich.Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return enrich.Result{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return res, true, nil
}

// Put implements enrich.Cache.
func (s *Store) Put(ctx context.Context, key string, r enrich.Result) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO enrich_cache (cache_key, result, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET result = excluded.result, created_at = excluded.created_at`,
		key, string(b), s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// Purge deletes expired entries and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.ttl).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM enrich_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return res.RowsAffected()
}

// Len returns the number of stored entries, expired or not.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrich_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}

func (s *Store) expired(createdMillis int64) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(time.UnixMilli(createdMillis)) > s.ttl
}
