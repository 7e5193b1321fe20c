package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carddex/internal/grading"
	"carddex/internal/library"
	"carddex/internal/services"
)

// Store persists collection entries in the library database.
type Store struct {
	db *sql.DB
}

// NewStore builds a collection store over an opened library database.
func NewStore(db *library.DB) *Store {
	return &Store{db: db.Handle()}
}

const entryColumns = `e.id, e.card_id, c.name, s.name, c.local_id, c.rarity,
    e.quantity, e.condition,
    e.grade_overall, e.grade_centering, e.grade_corners, e.grade_edges, e.grade_surface,
    e.front_image_url, e.back_image_url, c.price_market,
    e.acquired_at, e.created_at, e.updated_at`

const entryJoin = `FROM collection_entries e
    JOIN cards c ON c.id = e.card_id
    JOIN sets s ON s.id = c.set_id`

// Add inserts a new entry for a catalog card and returns its identifier.
func (s *Store) Add(ctx context.Context, cardID string, quantity int, condition string) (int64, error) {
	if strings.TrimSpace(cardID) == "" {
		return 0, errors.New("card id must not be empty")
	}
	if quantity < 1 {
		quantity = 1
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO collection_entries (card_id, quantity, condition, acquired_at, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		cardID,
		quantity,
		nullable(condition),
		now,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("add collection entry for %s: %w", cardID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("collection entry id: %w", err)
	}
	return id, nil
}

// Get fetches one entry with its catalog fields.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` `+entryJoin+` WHERE e.id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "collection", "get",
			fmt.Sprintf("entry %d not found", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get collection entry %d: %w", id, err)
	}
	return entry, nil
}

// List returns all entries ordered by recency.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` `+entryJoin+` ORDER BY e.created_at DESC, e.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collection entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection rows: %w", err)
	}
	return entries, nil
}

// Remove deletes an entry.
func (s *Store) Remove(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM collection_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("remove collection entry %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "collection", "remove",
			fmt.Sprintf("entry %d not found", id), nil)
	}
	return nil
}

// AttachCapture records the images and optional grade produced by a completed
// capture, and rebinds the entry to the card the capture matched.
func (s *Store) AttachCapture(ctx context.Context, id int64, cardID, frontURL, backURL string, grade *grading.Result) error {
	var (
		overall, centering, corners, edges, surface any
	)
	if grade != nil {
		overall = grade.Overall
		centering = grade.Centering
		corners = grade.Corners
		edges = grade.Edges
		surface = grade.Surface
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE collection_entries SET
             card_id = ?,
             front_image_url = ?,
             back_image_url = ?,
             grade_overall = ?,
             grade_centering = ?,
             grade_corners = ?,
             grade_edges = ?,
             grade_surface = ?,
             updated_at = ?
         WHERE id = ?`,
		cardID,
		nullable(frontURL),
		nullable(backURL),
		overall,
		centering,
		corners,
		edges,
		surface,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("attach capture to entry %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "collection", "attach capture",
			fmt.Sprintf("entry %d not found", id), nil)
	}
	return nil
}

// TotalValue sums market price times quantity across the collection. Entries
// whose card has no market price contribute zero.
func (s *Store) TotalValue(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COALESCE(SUM(COALESCE(c.price_market, 0) * e.quantity), 0)
         FROM collection_entries e JOIN cards c ON c.id = e.card_id`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total collection value: %w", err)
	}
	return total, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry     Entry
		rarity    sql.NullString
		condition sql.NullString
		overall   sql.NullFloat64
		centering sql.NullFloat64
		corners   sql.NullFloat64
		edges     sql.NullFloat64
		surface   sql.NullFloat64
		frontURL  sql.NullString
		backURL   sql.NullString
		price     sql.NullFloat64
		acquired  sql.NullString
		created   string
		updated   string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.CardID,
		&entry.CardName,
		&entry.SetName,
		&entry.LocalID,
		&rarity,
		&entry.Quantity,
		&condition,
		&overall,
		&centering,
		&corners,
		&edges,
		&surface,
		&frontURL,
		&backURL,
		&price,
		&acquired,
		&created,
		&updated,
	); err != nil {
		return nil, err
	}
	entry.Rarity = rarity.String
	entry.Condition = condition.String
	entry.FrontImageURL = frontURL.String
	entry.BackImageURL = backURL.String
	entry.MarketPrice = price.Float64
	if overall.Valid {
		entry.Grade = &grading.Result{
			Overall:   overall.Float64,
			Centering: centering.Float64,
			Corners:   corners.Float64,
			Edges:     edges.Float64,
			Surface:   surface.Float64,
		}
	}
	if acquired.Valid && acquired.String != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, acquired.String); err == nil {
			entry.AcquiredAt = &parsed
		}
	}
	if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
		entry.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		entry.UpdatedAt = parsed
	}
	return &entry, nil
}

func nullable(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
