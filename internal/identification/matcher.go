package identification

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"carddex/internal/catalog"
	"carddex/internal/identification/vision"
	"carddex/internal/logging"
	"carddex/internal/textnorm"
)

// Resolver converts one recognition candidate into a single catalog card.
type Resolver struct {
	catalog catalog.Querier
	logger  *slog.Logger
}

// NewResolver builds a resolver over a catalog query capability.
func NewResolver(querier catalog.Querier, logger *slog.Logger) *Resolver {
	return &Resolver{
		catalog: querier,
		logger:  logging.NewComponentLogger(logger, "matcher"),
	}
}

// Resolve runs the strategy chain for a candidate and returns the best catalog
// card, or nil when no strategy produced a row. Candidates carrying neither a
// card number nor a usable name are rejected before any catalog query.
func (r *Resolver) Resolve(ctx context.Context, candidate vision.Candidate) (*catalog.Card, error) {
	number := strings.TrimSpace(candidate.CardNumber)
	fullName := strings.TrimSpace(candidate.FullName)
	if number == "" && fullName == "" {
		r.logger.Debug("candidate has neither number nor name, skipping resolution")
		return nil, nil
	}

	normalized := textnorm.CardName(fullName)
	setName := strings.TrimSpace(candidate.SetName)
	setCode := strings.TrimSpace(candidate.SetCode)

	strategies := []struct {
		name string
		run  func(context.Context) (*catalog.Card, error)
	}{
		{"marketplace_id", func(ctx context.Context) (*catalog.Card, error) {
			return r.byMarketplaceID(ctx, candidate.ExternalLinks)
		}},
		{"number_set_code", func(ctx context.Context) (*catalog.Card, error) {
			return r.byNumberAndSetCode(ctx, number, setCode)
		}},
		{"name_set_name", func(ctx context.Context) (*catalog.Card, error) {
			return r.byNameAndSetName(ctx, normalized, setName, number)
		}},
		{"name_only", func(ctx context.Context) (*catalog.Card, error) {
			return r.byNameOnly(ctx, normalized)
		}},
		{"number_name", func(ctx context.Context) (*catalog.Card, error) {
			return r.byNumberAndName(ctx, number, normalized)
		}},
		{"number_partial_set", func(ctx context.Context) (*catalog.Card, error) {
			return r.byNumberAndPartialSet(ctx, number, setName)
		}},
	}

	for _, strategy := range strategies {
		card, err := strategy.run(ctx)
		if err != nil {
			return nil, err
		}
		if card != nil {
			r.logger.Info("candidate resolved",
				logging.String(logging.FieldStrategy, strategy.name),
				logging.String(logging.FieldCardID, card.ID),
				logging.String("card_name", card.Name),
			)
			return card, nil
		}
	}

	r.logger.Info("no catalog match for candidate",
		logging.String("full_name", fullName),
		logging.String("card_number", number),
	)
	return nil, nil
}

// byMarketplaceID matches on an exact marketplace product id. A marketplace id
// is effectively unique, so a hit here outranks everything else.
func (r *Resolver) byMarketplaceID(ctx context.Context, links map[string]string) (*catalog.Card, error) {
	productID := MarketplaceProductID(links)
	if productID == "" {
		return nil, nil
	}
	cards, err := r.catalog.Search(ctx, catalog.Query{MarketplaceProductID: productID, Limit: 1})
	if err != nil {
		return nil, err
	}
	return first(cards), nil
}

// byNumberAndSetCode matches the printed number within a set whose identifier
// contains the recognized set code.
func (r *Resolver) byNumberAndSetCode(ctx context.Context, number, setCode string) (*catalog.Card, error) {
	if number == "" || setCode == "" {
		return nil, nil
	}
	cards, err := r.catalog.Search(ctx, catalog.Query{LocalID: number, SetIDContains: setCode, Limit: 1})
	if err != nil {
		return nil, err
	}
	return first(cards), nil
}

// byNameAndSetName matches the normalized name within a matching set name.
// When a card number is also available, a candidate with that exact printed
// number is preferred over the first row.
func (r *Resolver) byNameAndSetName(ctx context.Context, normalized, setName, number string) (*catalog.Card, error) {
	if normalized == "" || setName == "" {
		return nil, nil
	}
	cards, err := r.catalog.Search(ctx, catalog.Query{
		NameContains:    normalized,
		SetNameContains: setName,
		Limit:           5,
	})
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, nil
	}
	if number != "" {
		for i := range cards {
			if cards[i].LocalID == number {
				return &cards[i], nil
			}
		}
	}
	return &cards[0], nil
}

func (r *Resolver) byNameOnly(ctx context.Context, normalized string) (*catalog.Card, error) {
	if normalized == "" {
		return nil, nil
	}
	cards, err := r.catalog.Search(ctx, catalog.Query{NameContains: normalized, Limit: 1})
	if err != nil {
		return nil, err
	}
	return first(cards), nil
}

// byNumberAndName handles recognition output whose set name disagrees with the
// catalog but whose number and subject name still pin down the card.
func (r *Resolver) byNumberAndName(ctx context.Context, number, normalized string) (*catalog.Card, error) {
	if number == "" || normalized == "" {
		return nil, nil
	}
	cards, err := r.catalog.Search(ctx, catalog.Query{LocalID: number, NameContains: normalized, Limit: 1})
	if err != nil {
		return nil, err
	}
	return first(cards), nil
}

// byNumberAndPartialSet queries on the first significant set-name word, then
// scores candidates by how many of the recognized set words appear in their
// set name. A candidate scoring at least two words is preferred over the
// default first-row choice.
func (r *Resolver) byNumberAndPartialSet(ctx context.Context, number, setName string) (*catalog.Card, error) {
	if number == "" || setName == "" {
		return nil, nil
	}
	words := textnorm.SignificantWords(setName)
	if len(words) == 0 {
		return nil, nil
	}
	cards, err := r.catalog.Search(ctx, catalog.Query{
		LocalID:         number,
		SetNameContains: words[0],
		Limit:           5,
	})
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, nil
	}
	if len(cards) > 1 && len(words) > 1 {
		if scored := bestWordMatch(cards, words); scored != nil {
			return scored, nil
		}
	}
	return &cards[0], nil
}

// bestWordMatch returns the candidate whose set name contains the most of the
// recognized words, provided the best score is at least two. Ties keep the
// earlier row.
func bestWordMatch(cards []catalog.Card, words []string) *catalog.Card {
	folder := cases.Fold()
	bestIdx := -1
	bestScore := 0
	for i := range cards {
		haystack := folder.String(cards[i].SetName)
		score := 0
		for _, word := range words {
			if strings.Contains(haystack, folder.String(word)) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestScore >= 2 {
		return &cards[bestIdx]
	}
	return nil
}

func first(cards []catalog.Card) *catalog.Card {
	if len(cards) == 0 {
		return nil
	}
	return &cards[0]
}
