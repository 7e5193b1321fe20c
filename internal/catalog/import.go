package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"carddex/internal/logging"
)

// dumpFile models the card-data dump produced by the catalog sync tooling.
type dumpFile struct {
	Sets []dumpSet `json:"sets"`
}

type dumpSet struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Series      string     `json:"series"`
	ReleaseDate string     `json:"release_date"`
	Cards       []dumpCard `json:"cards"`
}

type dumpCard struct {
	ID                   string     `json:"id"`
	LocalID              string     `json:"local_id"`
	Name                 string     `json:"name"`
	Rarity               string     `json:"rarity"`
	Image                string     `json:"image"`
	MarketplaceProductID string     `json:"marketplace_product_id"`
	Prices               *dumpPrice `json:"prices"`
}

type dumpPrice struct {
	Low    float64 `json:"low"`
	Market float64 `json:"market"`
	High   float64 `json:"high"`
}

// ImportStats summarizes a catalog import run.
type ImportStats struct {
	Sets    int
	Cards   int
	Skipped int
}

// ImportFile ingests a JSON card-data dump into the catalog store. Existing
// sets and cards are updated in place, so re-running an import is safe.
func (s *Store) ImportFile(ctx context.Context, path string, logger *slog.Logger) (ImportStats, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ImportStats{}, fmt.Errorf("read dump: %w", err)
	}

	var dump dumpFile
	if err := json.Unmarshal(data, &dump); err != nil {
		return ImportStats{}, fmt.Errorf("parse dump: %w", err)
	}

	now := time.Now().UTC()
	var stats ImportStats
	for _, set := range dump.Sets {
		if strings.TrimSpace(set.ID) == "" {
			logger.Warn("skipping set without id", logging.String("set_name", set.Name))
			stats.Skipped += len(set.Cards)
			continue
		}
		if err := s.UpsertSet(ctx, Set{
			ID:          set.ID,
			Name:        set.Name,
			Series:      set.Series,
			ReleaseDate: set.ReleaseDate,
			CardCount:   len(set.Cards),
		}); err != nil {
			return stats, err
		}
		stats.Sets++

		for _, card := range set.Cards {
			if strings.TrimSpace(card.ID) == "" || strings.TrimSpace(card.Name) == "" {
				logger.Warn("skipping malformed card",
					logging.String("set_id", set.ID),
					logging.String(logging.FieldCardID, card.ID),
				)
				stats.Skipped++
				continue
			}
			record := Card{
				ID:                   card.ID,
				Name:                 card.Name,
				SetID:                set.ID,
				SetName:              set.Name,
				LocalID:              card.LocalID,
				Rarity:               card.Rarity,
				ImageRef:             card.Image,
				MarketplaceProductID: card.MarketplaceProductID,
			}
			if card.Prices != nil {
				record.Price = PriceData{
					Low:       card.Prices.Low,
					Market:    card.Prices.Market,
					High:      card.Prices.High,
					UpdatedAt: &now,
				}
			}
			if err := s.UpsertCard(ctx, record); err != nil {
				return stats, err
			}
			stats.Cards++
		}
	}

	logger.Info("catalog import complete",
		logging.Int("sets", stats.Sets),
		logging.Int("cards", stats.Cards),
		logging.Int("skipped", stats.Skipped),
	)
	return stats, nil
}
