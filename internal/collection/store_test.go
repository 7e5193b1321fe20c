package collection_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"carddex/internal/catalog"
	"carddex/internal/collection"
	"carddex/internal/grading"
	"carddex/internal/services"
	"carddex/internal/testsupport"
)

func seededStore(t *testing.T) *collection.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenLibrary(t, cfg)

	cat := catalog.NewStore(db)
	testsupport.SeedCatalog(t, cat,
		[]catalog.Set{
			{ID: "sv07", Name: "Stellar Crown", Series: "Scarlet & Violet", CardCount: 175},
		},
		[]catalog.Card{
			{ID: "sv07-181", SetID: "sv07", Name: "Pikachu ex", LocalID: "181", Rarity: "Special Illustration Rare", Price: catalog.PriceData{Market: 120.50}},
			{ID: "sv07-105", SetID: "sv07", Name: "Eevee", LocalID: "105", Price: catalog.PriceData{Market: 0.25}},
		},
	)
	return collection.NewStore(db)
}

func TestAddAndList(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	id, err := store.Add(ctx, "sv07-181", 1, "near mint")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := store.Add(ctx, "sv07-105", 4, ""); err != nil {
		t.Fatalf("Add: %v", err)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	entry, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.CardName != "Pikachu ex" || entry.SetName != "Stellar Crown" {
		t.Fatalf("catalog join missing: %+v", entry)
	}
	if entry.Condition != "near mint" || entry.Quantity != 1 {
		t.Fatalf("entry fields wrong: %+v", entry)
	}
	if entry.Grade != nil {
		t.Fatal("new entry must not carry a grade")
	}
}

func TestAttachCaptureRecordsGradeAndImages(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	id, err := store.Add(ctx, "sv07-105", 1, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	grade := &grading.Result{Overall: 8.5, Centering: 9, Corners: 8, Edges: 8.5, Surface: 8.5}
	err = store.AttachCapture(ctx, id, "sv07-181",
		"https://img.test/front.jpg", "https://img.test/back.jpg", grade)
	if err != nil {
		t.Fatalf("AttachCapture: %v", err)
	}

	entry, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.CardID != "sv07-181" {
		t.Fatalf("capture did not rebind card: %s", entry.CardID)
	}
	if entry.FrontImageURL == "" || entry.BackImageURL == "" {
		t.Fatalf("image urls missing: %+v", entry)
	}
	if entry.Grade == nil || entry.Grade.Overall != 8.5 || entry.Grade.Centering != 9 {
		t.Fatalf("grade not persisted: %+v", entry.Grade)
	}
}

func TestAttachCaptureWithoutGradeLeavesGradeEmpty(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	id, err := store.Add(ctx, "sv07-105", 1, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.AttachCapture(ctx, id, "sv07-105", "https://img.test/front.jpg", "", nil); err != nil {
		t.Fatalf("AttachCapture: %v", err)
	}

	entry, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Grade != nil {
		t.Fatalf("expected no grade, got %+v", entry.Grade)
	}
}

func TestRemove(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	id, err := store.Add(ctx, "sv07-181", 1, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Remove(ctx, id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Remove(ctx, id); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double remove, got %v", err)
	}
}

func TestTotalValue(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	total, err := store.TotalValue(ctx)
	if err != nil {
		t.Fatalf("TotalValue: %v", err)
	}
	if total != 0 {
		t.Fatalf("empty collection should be worth 0, got %f", total)
	}

	if _, err := store.Add(ctx, "sv07-181", 1, ""); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := store.Add(ctx, "sv07-105", 4, ""); err != nil {
		t.Fatalf("Add: %v", err)
	}

	total, err = store.TotalValue(ctx)
	if err != nil {
		t.Fatalf("TotalValue: %v", err)
	}
	want := 120.50 + 4*0.25
	if math.Abs(total-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, total)
	}
}

func TestAddRejectsEmptyCardID(t *testing.T) {
	store := seededStore(t)
	if _, err := store.Add(context.Background(), "  ", 1, ""); err == nil {
		t.Fatal("expected error for empty card id")
	}
}
