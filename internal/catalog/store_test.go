package catalog_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"carddex/internal/catalog"
	"carddex/internal/testsupport"
)

func seedStellarCrown(t *testing.T) *catalog.Store {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenLibrary(t, cfg)
	store := catalog.NewStore(db)
	testsupport.SeedCatalog(t, store,
		[]catalog.Set{
			{ID: "sv07", Name: "Stellar Crown", Series: "Scarlet & Violet", ReleaseDate: "2024-09-13"},
			{ID: "swsh1", Name: "Sword & Shield", Series: "Sword & Shield", ReleaseDate: "2020-02-07"},
		},
		[]catalog.Card{
			{ID: "sv07-181", Name: "Pikachu ex", SetID: "sv07", LocalID: "181", Rarity: "Double Rare", MarketplaceProductID: "562031"},
			{ID: "sv07-028", Name: "Salazzle", SetID: "sv07", LocalID: "028"},
			{ID: "swsh1-028", Name: "Salazzle", SetID: "swsh1", LocalID: "028"},
		},
	)
	return store
}

func TestSearchByMarketplaceProductID(t *testing.T) {
	store := seedStellarCrown(t)

	cards, err := store.Search(context.Background(), catalog.Query{MarketplaceProductID: "562031", Limit: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != "sv07-181" {
		t.Fatalf("unexpected result: %+v", cards)
	}
	if cards[0].SetName != "Stellar Crown" {
		t.Fatalf("expected joined set name, got %q", cards[0].SetName)
	}
}

func TestSearchCombinesFiltersCaseInsensitively(t *testing.T) {
	store := seedStellarCrown(t)

	cards, err := store.Search(context.Background(), catalog.Query{
		NameContains:    "salazzle",
		SetNameContains: "sword",
		Limit:           5,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != "swsh1-028" {
		t.Fatalf("unexpected result: %+v", cards)
	}
}

func TestSearchBySetIDSubstring(t *testing.T) {
	store := seedStellarCrown(t)

	cards, err := store.Search(context.Background(), catalog.Query{
		LocalID:       "028",
		SetIDContains: "SWSH",
		Limit:         1,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != "swsh1-028" {
		t.Fatalf("unexpected result: %+v", cards)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	store := seedStellarCrown(t)
	if _, err := store.Search(context.Background(), catalog.Query{Limit: 1}); err == nil {
		t.Fatal("expected error for filterless query")
	}
}

func TestUpdatePrices(t *testing.T) {
	store := seedStellarCrown(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	err := store.UpdatePrices(ctx, "sv07-181", catalog.PriceData{Low: 4.2, Market: 6.8, High: 12, UpdatedAt: &now})
	if err != nil {
		t.Fatalf("UpdatePrices: %v", err)
	}

	card, err := store.GetByID(ctx, "sv07-181")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if card == nil {
		t.Fatal("expected card")
	}
	if card.Price.Market != 6.8 {
		t.Fatalf("expected market price 6.8, got %v", card.Price.Market)
	}
	if card.Price.UpdatedAt == nil || !card.Price.UpdatedAt.Equal(now) {
		t.Fatalf("expected price timestamp %v, got %v", now, card.Price.UpdatedAt)
	}

	if err := store.UpdatePrices(ctx, "missing", catalog.PriceData{Market: 1}); err == nil {
		t.Fatal("expected error for unknown card")
	}
}

func TestImportFileIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenLibrary(t, cfg)
	store := catalog.NewStore(db)

	dump := map[string]any{
		"sets": []map[string]any{
			{
				"id":           "sv07",
				"name":         "Stellar Crown",
				"series":       "Scarlet & Violet",
				"release_date": "2024-09-13",
				"cards": []map[string]any{
					{
						"id":       "sv07-181",
						"local_id": "181",
						"name":     "Pikachu ex",
						"rarity":   "Double Rare",
						"prices":   map[string]any{"low": 1.5, "market": 3.0, "high": 9.0},
					},
					{
						// malformed: no id, skipped
						"local_id": "182",
						"name":     "Missing ID",
					},
				},
			},
		},
	}
	data, err := json.Marshal(dump)
	if err != nil {
		t.Fatalf("marshal dump: %v", err)
	}
	path := filepath.Join(t.TempDir(), "dump.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		stats, err := store.ImportFile(ctx, path, nil)
		if err != nil {
			t.Fatalf("ImportFile (run %d): %v", i+1, err)
		}
		if stats.Sets != 1 || stats.Cards != 1 {
			t.Fatalf("unexpected stats: %+v", stats)
		}
	}

	count, err := store.CountCards(ctx)
	if err != nil {
		t.Fatalf("CountCards: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 card after re-import, got %d", count)
	}
}
