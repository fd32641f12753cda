package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quote is one priced asset at one point in time.
type Quote struct {
	ID                string          `json:"id"`                // Stable identifier, unique within a snapshot
	Name              string          `json:"name"`              // Display name (e.g., "Bitcoin")
	Symbol            string          `json:"symbol"`            // Display ticker (e.g., "BTC")
	PriceUSD          decimal.Decimal `json:"priceUsd"`          // Price in USD, >= 0
	ChangePercent24Hr decimal.Decimal `json:"changePercent24Hr"` // Signed 24h change in percent
}

// ValidateSnapshot checks the snapshot invariants: every quote has an id and a
// symbol, prices are non-negative, and ids are unique.
func ValidateSnapshot(quotes []Quote) error {
	seen := make(map[string]int, len(quotes))
	for i, q := range quotes {
		if q.ID == "" {
			return fmt.Errorf("quote %d: missing id", i)
		}
		if q.Symbol == "" {
			return fmt.Errorf("quote %d (%s): missing symbol", i, q.ID)
		}
		if q.PriceUSD.IsNegative() {
			return fmt.Errorf("quote %d (%s): negative price %s", i, q.ID, q.PriceUSD)
		}
		if prev, dup := seen[q.ID]; dup {
			return fmt.Errorf("quote %d: duplicate id %q (first at %d)", i, q.ID, prev)
		}
		seen[q.ID] = i
	}
	return nil
}

// CloneQuotes returns a copy of quotes so callers cannot alias a stored snapshot.
// A nil input yields nil; an empty input yields an empty, non-nil slice.
func CloneQuotes(quotes []Quote) []Quote {
	if quotes == nil {
		return nil
	}
	out := make([]Quote, len(quotes))
	copy(out, quotes)
	return out
}
