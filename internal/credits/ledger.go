package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carddex/internal/library"
	"carddex/internal/services"
)

// DefaultUser is the account used by the single-user CLI.
const DefaultUser = "local"

// Ledger defines the credit operations used by the submission flow.
type Ledger interface {
	Balance(ctx context.Context, user string) (int, error)
	DeductOne(ctx context.Context, user string) error
}

// Store is a credit ledger backed by the library database.
type Store struct {
	db *sql.DB
}

var _ Ledger = (*Store)(nil)

// NewStore builds a credit ledger over an opened library database.
func NewStore(db *library.DB) *Store {
	return &Store{db: db.Handle()}
}

// Balance returns the current credit balance for a user. Unknown users have a
// zero balance.
func (s *Store) Balance(ctx context.Context, user string) (int, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return 0, errors.New("user must not be empty")
	}
	var balance int
	err := s.db.QueryRowContext(ctx, "SELECT balance FROM credit_accounts WHERE user = ?", user).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

// DeductOne atomically removes one credit. The conditional update is the whole
// correctness story: it only fires when at least one credit remains, so a
// duplicate call can never double-charge past zero.
func (s *Store) DeductOne(ctx context.Context, user string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return errors.New("user must not be empty")
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE credit_accounts SET balance = balance - 1, updated_at = ?
         WHERE user = ? AND balance >= 1`,
		time.Now().UTC().Format(time.RFC3339Nano),
		user,
	)
	if err != nil {
		return fmt.Errorf("deduct credit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrInsufficientCredits, "credits", "deduct", "balance is empty", nil)
	}
	return nil
}

// Grant adds credits to a user, creating the account if needed.
func (s *Store) Grant(ctx context.Context, user string, amount int) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return errors.New("user must not be empty")
	}
	if amount <= 0 {
		return errors.New("amount must be positive")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO credit_accounts (user, balance, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(user) DO UPDATE SET
             balance = balance + excluded.balance,
             updated_at = excluded.updated_at`,
		user,
		amount,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("grant credits: %w", err)
	}
	return nil
}
