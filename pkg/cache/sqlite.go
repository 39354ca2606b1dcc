package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteFileName is the database file created inside the data directory.
const SQLiteFileName = "krishi-cache.db"

const sqliteSchema = `CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at DATETIME NOT NULL
)`

// SQLiteStore keeps entries in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the cache database in dataDir.
// Pass ":memory:" for an in-memory database (used by tests).
func OpenSQLiteStore(ctx context.Context, dataDir string) (*SQLiteStore, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if dataDir == "" {
			dataDir = "."
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.Join(dataDir, SQLiteFileName))
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection keeps ":memory:" a single database and avoids
	// "database is locked" on concurrent writes.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key Key) (*Entry, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM cache_entries WHERE key = ?", key.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			CacheMisses.WithLabelValues(string(BackendSQLite)).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(string(BackendSQLite), "get").Inc()
		return nil, fmt.Errorf("sqlite get: %w", err)
	}

	entry, err := decodeEntry(data)
	if err != nil {
		CacheErrors.WithLabelValues(string(BackendSQLite), "get").Inc()
		return nil, err
	}

	CacheHits.WithLabelValues(string(BackendSQLite)).Inc()
	return entry, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, key Key, entry *Entry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		CacheErrors.WithLabelValues(string(BackendSQLite), "put").Inc()
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO cache_entries (key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key.String(), data, time.Now().UTC())
	if err != nil {
		CacheErrors.WithLabelValues(string(BackendSQLite), "put").Inc()
		return fmt.Errorf("sqlite put: %w", err)
	}

	CacheSize.WithLabelValues(string(BackendSQLite)).Set(float64(len(data)))
	return nil
}

// Ping implements Store.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		CacheErrors.WithLabelValues(string(BackendSQLite), "ping").Inc()
		return fmt.Errorf("sqlite ping: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
