package library_test

import (
	"errors"
	"testing"

	"carddex/internal/library"
	"carddex/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenLibrary(t, cfg)

	for _, table := range []string{"sets", "cards", "collection_entries", "credit_accounts", "preferences"} {
		var name string
		err := db.Handle().QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s: %v", table, err)
		}
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	db, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = library.Open(cfg)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.Handle().QueryRow("SELECT COUNT(1) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count == 0 {
		t.Fatal("expected recorded migrations")
	}
}

func TestOpenRejectsSecondHolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenLibrary(t, cfg)
	_ = first

	_, err := library.Open(cfg)
	if !errors.Is(err, library.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}
