package collection

import (
	"time"

	"carddex/internal/grading"
)

// Entry is one owned card in the collection, joined with its catalog record
// for display. Grade and image fields are filled in by a completed capture.
type Entry struct {
	ID            int64
	CardID        string
	CardName      string
	SetName       string
	LocalID       string
	Rarity        string
	Quantity      int
	Condition     string
	Grade         *grading.Result
	FrontImageURL string
	BackImageURL  string
	MarketPrice   float64
	AcquiredAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Value returns the entry's contribution to the collection total.
func (e Entry) Value() float64 {
	return e.MarketPrice * float64(e.Quantity)
}
