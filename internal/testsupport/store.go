package testsupport

import (
	"context"
	"testing"

	"carddex/internal/catalog"
	"carddex/internal/config"
	"carddex/internal/library"
)

// MustOpenLibrary opens the library database for tests and registers cleanup.
func MustOpenLibrary(t testing.TB, cfg *config.Config) *library.DB {
	t.Helper()

	db, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// SeedCatalog inserts the provided sets and cards into a catalog store.
func SeedCatalog(t testing.TB, store *catalog.Store, sets []catalog.Set, cards []catalog.Card) {
	t.Helper()

	ctx := context.Background()
	for _, set := range sets {
		if err := store.UpsertSet(ctx, set); err != nil {
			t.Fatalf("store.UpsertSet(%s): %v", set.ID, err)
		}
	}
	for _, card := range cards {
		if err := store.UpsertCard(ctx, card); err != nil {
			t.Fatalf("store.UpsertCard(%s): %v", card.ID, err)
		}
	}
}
