package catalog

import "time"

// Set is a card set within the catalog.
type Set struct {
	ID          string
	Name        string
	Series      string
	ReleaseDate string
	CardCount   int
}

// PriceData carries the latest known marketplace prices for a card.
type PriceData struct {
	Low       float64
	Market    float64
	High      float64
	UpdatedAt *time.Time
}

// Card is a canonical catalog entry. LocalID is the card's printed number
// within its set; (SetID, LocalID) is not guaranteed globally unique across
// historical sets reusing printed numbers, which is why matching combines the
// number with set identity.
type Card struct {
	ID                   string
	Name                 string
	SetID                string
	SetName              string
	LocalID              string
	Rarity               string
	ImageRef             string
	MarketplaceProductID string
	Price                PriceData
}

// Query describes a catalog search. Zero-value fields are ignored; non-zero
// fields combine with AND. Contains filters are case-insensitive substring
// matches.
type Query struct {
	MarketplaceProductID string
	LocalID              string
	NameContains         string
	SetNameContains      string
	SetIDContains        string
	Limit                int
}

// IsZero reports whether the query carries no filters.
func (q Query) IsZero() bool {
	return q.MarketplaceProductID == "" &&
		q.LocalID == "" &&
		q.NameContains == "" &&
		q.SetNameContains == "" &&
		q.SetIDContains == ""
}
