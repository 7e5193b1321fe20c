package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"carddex/internal/config"
)

// ErrLocked indicates another carddex process holds the library database.
var ErrLocked = errors.New("library database is locked by another process")

// DB wraps the shared SQLite handle used by all library-backed stores.
type DB struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the library database and applies migrations.
// The returned DB holds an exclusive lock file until Close is called.
func Open(cfg *config.Config) (*DB, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	lock := flock.New(lockPath(dbPath))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire library lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &DB{db: db, path: dbPath, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection and releases the lock file.
func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	var closeErr error
	if d.db != nil {
		closeErr = d.db.Close()
	}
	if d.lock != nil {
		if err := d.lock.Unlock(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

// Handle exposes the underlying sql.DB for domain stores.
func (d *DB) Handle() *sql.DB {
	return d.db
}

// Path returns the database file location.
func (d *DB) Path() string {
	return d.path
}

func lockPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "carddex.lock")
}
