package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carddex/internal/library"
)

// Store provides catalog access backed by the library database.
type Store struct {
	db *sql.DB
}

var _ Querier = (*Store)(nil)

// NewStore builds a catalog store over an opened library database.
func NewStore(db *library.DB) *Store {
	return &Store{db: db.Handle()}
}

const cardColumns = `c.id, c.name, c.set_id, s.name, c.local_id, c.rarity, c.image_ref,
    c.marketplace_product_id, c.price_low, c.price_market, c.price_high, c.price_updated_at`

// Search executes a catalog query. Results are ordered by card id for
// deterministic tie-breaking.
func (s *Store) Search(ctx context.Context, query Query) ([]Card, error) {
	if query.IsZero() {
		return nil, errors.New("catalog query requires at least one filter")
	}

	clauses := make([]string, 0, 5)
	args := make([]any, 0, 5)
	if query.MarketplaceProductID != "" {
		clauses = append(clauses, "c.marketplace_product_id = ?")
		args = append(args, query.MarketplaceProductID)
	}
	if query.LocalID != "" {
		clauses = append(clauses, "c.local_id = ?")
		args = append(args, query.LocalID)
	}
	if query.NameContains != "" {
		clauses = append(clauses, "instr(lower(c.name), lower(?)) > 0")
		args = append(args, query.NameContains)
	}
	if query.SetNameContains != "" {
		clauses = append(clauses, "instr(lower(s.name), lower(?)) > 0")
		args = append(args, query.SetNameContains)
	}
	if query.SetIDContains != "" {
		clauses = append(clauses, "instr(lower(c.set_id), lower(?)) > 0")
		args = append(args, query.SetIDContains)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 25
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+cardColumns+`
         FROM cards c JOIN sets s ON s.id = c.set_id
         WHERE `+strings.Join(clauses, " AND ")+`
         ORDER BY c.id LIMIT ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}
	return cards, nil
}

// GetByID fetches a single card by catalog identifier.
func (s *Store) GetByID(ctx context.Context, id string) (*Card, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+cardColumns+` FROM cards c JOIN sets s ON s.id = c.set_id WHERE c.id = ?`,
		id,
	)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

// ListSets returns all catalog sets ordered by release date then id.
func (s *Store) ListSets(ctx context.Context) ([]Set, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, series, release_date, card_count
         FROM sets ORDER BY release_date, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	var sets []Set
	for rows.Next() {
		var (
			set     Set
			series  sql.NullString
			release sql.NullString
		)
		if err := rows.Scan(&set.ID, &set.Name, &series, &release, &set.CardCount); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		set.Series = series.String
		set.ReleaseDate = release.String
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate set rows: %w", err)
	}
	return sets, nil
}

// UpsertSet inserts or replaces a set record.
func (s *Store) UpsertSet(ctx context.Context, set Set) error {
	if strings.TrimSpace(set.ID) == "" {
		return errors.New("set id must not be empty")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sets (id, name, series, release_date, card_count)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             name = excluded.name,
             series = excluded.series,
             release_date = excluded.release_date,
             card_count = excluded.card_count`,
		set.ID,
		set.Name,
		nullableString(set.Series),
		nullableString(set.ReleaseDate),
		set.CardCount,
	)
	if err != nil {
		return fmt.Errorf("upsert set %s: %w", set.ID, err)
	}
	return nil
}

// UpsertCard inserts or replaces a card record.
func (s *Store) UpsertCard(ctx context.Context, card Card) error {
	if strings.TrimSpace(card.ID) == "" {
		return errors.New("card id must not be empty")
	}
	if strings.TrimSpace(card.SetID) == "" {
		return errors.New("card set id must not be empty")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO cards (
             id, set_id, name, local_id, rarity, image_ref, marketplace_product_id,
             price_low, price_market, price_high, price_updated_at
         ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             set_id = excluded.set_id,
             name = excluded.name,
             local_id = excluded.local_id,
             rarity = excluded.rarity,
             image_ref = excluded.image_ref,
             marketplace_product_id = excluded.marketplace_product_id,
             price_low = excluded.price_low,
             price_market = excluded.price_market,
             price_high = excluded.price_high,
             price_updated_at = excluded.price_updated_at`,
		card.ID,
		card.SetID,
		card.Name,
		card.LocalID,
		nullableString(card.Rarity),
		nullableString(card.ImageRef),
		nullableString(card.MarketplaceProductID),
		nullableFloat(card.Price.Low),
		nullableFloat(card.Price.Market),
		nullableFloat(card.Price.High),
		nullableTime(card.Price.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert card %s: %w", card.ID, err)
	}
	return nil
}

// UpdatePrices refreshes price data for a card without touching identity fields.
func (s *Store) UpdatePrices(ctx context.Context, cardID string, price PriceData) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE cards SET price_low = ?, price_market = ?, price_high = ?, price_updated_at = ?
         WHERE id = ?`,
		nullableFloat(price.Low),
		nullableFloat(price.Market),
		nullableFloat(price.High),
		nullableTime(price.UpdatedAt),
		cardID,
	)
	if err != nil {
		return fmt.Errorf("update prices for %s: %w", cardID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("card %s not found", cardID)
	}
	return nil
}

// CountCards returns the number of catalog cards.
func (s *Store) CountCards(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM cards").Scan(&count); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return count, nil
}

func scanCard(scanner interface{ Scan(dest ...any) error }) (*Card, error) {
	var (
		card        Card
		rarity      sql.NullString
		imageRef    sql.NullString
		marketplace sql.NullString
		priceLow    sql.NullFloat64
		priceMarket sql.NullFloat64
		priceHigh   sql.NullFloat64
		priceRaw    sql.NullString
	)
	if err := scanner.Scan(
		&card.ID,
		&card.Name,
		&card.SetID,
		&card.SetName,
		&card.LocalID,
		&rarity,
		&imageRef,
		&marketplace,
		&priceLow,
		&priceMarket,
		&priceHigh,
		&priceRaw,
	); err != nil {
		return nil, err
	}
	card.Rarity = rarity.String
	card.ImageRef = imageRef.String
	card.MarketplaceProductID = marketplace.String
	card.Price.Low = priceLow.Float64
	card.Price.Market = priceMarket.Float64
	card.Price.High = priceHigh.Float64
	if priceRaw.Valid && priceRaw.String != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, priceRaw.String); err == nil {
			card.Price.UpdatedAt = &parsed
		}
	}
	return &card, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableFloat(value float64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}
