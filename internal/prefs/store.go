package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"carddex/internal/library"
	"carddex/internal/logging"
)

// KeyTutorialSeen records that the user completed the capture tutorial and
// opted out of seeing it again.
const KeyTutorialSeen = "capture.tutorial_seen"

// Setter is the write capability handed to workflow components.
type Setter interface {
	SetAsync(user, key, value string)
}

// Store is a preference store backed by the library database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Setter = (*Store)(nil)

// NewStore builds a preference store over an opened library database.
func NewStore(db *library.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db.Handle(),
		logger: logging.NewComponentLogger(logger, "prefs"),
	}
}

// Get returns a preference value, or the empty string when unset.
func (s *Store) Get(ctx context.Context, user, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(
		ctx,
		"SELECT value FROM preferences WHERE user = ? AND key = ?",
		user, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read preference %s: %w", key, err)
	}
	return value, nil
}

// Set writes a preference value.
func (s *Store) Set(ctx context.Context, user, key, value string) error {
	user = strings.TrimSpace(user)
	key = strings.TrimSpace(key)
	if user == "" || key == "" {
		return errors.New("user and key must not be empty")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO preferences (user, key, value, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(user, key) DO UPDATE SET
             value = excluded.value,
             updated_at = excluded.updated_at`,
		user,
		key,
		value,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write preference %s: %w", key, err)
	}
	return nil
}

// SetAsync writes a preference in a detached goroutine. Failures are logged
// and dropped; callers must not depend on the write landing.
func (s *Store) SetAsync(user, key, value string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Set(ctx, user, key, value); err != nil {
			s.logger.Warn("preference write failed",
				logging.String("key", key),
				logging.Error(err),
			)
		}
	}()
}
