package api

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecodePrices(t *testing.T) {
	t.Run("numbers and strings", func(t *testing.T) {
		body := `{"data": [
			{"id": "bitcoin", "name": "Bitcoin", "symbol": "BTC", "priceUsd": 67250.1234, "changePercent24Hr": -1.25},
			{"id": "ethereum", "name": "Ethereum", "symbol": "ETH", "priceUsd": "3120.5", "changePercent24Hr": "2.5", "rank": "2"}
		]}`

		quotes, err := DecodePrices([]byte(body))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(quotes) != 2 {
			t.Fatalf("len = %d, want 2", len(quotes))
		}
		if quotes[0].ID != "bitcoin" || quotes[1].ID != "ethereum" {
			t.Errorf("order = [%s %s], want [bitcoin ethereum]", quotes[0].ID, quotes[1].ID)
		}
		if !quotes[0].PriceUSD.Equal(decimal.RequireFromString("67250.1234")) {
			t.Errorf("PriceUSD = %s", quotes[0].PriceUSD)
		}
		if !quotes[1].ChangePercent24Hr.Equal(decimal.RequireFromString("2.5")) {
			t.Errorf("ChangePercent24Hr = %s", quotes[1].ChangePercent24Hr)
		}
	})

	t.Run("empty list is valid", func(t *testing.T) {
		quotes, err := DecodePrices([]byte(`{"data": []}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if quotes == nil || len(quotes) != 0 {
			t.Errorf("quotes = %v, want empty non-nil", quotes)
		}
	})

	malformed := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing data", `{"prices": []}`},
		{"null data", `{"data": null}`},
		{"data not array", `{"data": {"id": "bitcoin"}}`},
		{"missing price", `{"data": [{"id": "bitcoin", "symbol": "BTC", "changePercent24Hr": 1}]}`},
		{"missing change", `{"data": [{"id": "bitcoin", "symbol": "BTC", "priceUsd": 1}]}`},
		{"bad price", `{"data": [{"id": "bitcoin", "symbol": "BTC", "priceUsd": "abc", "changePercent24Hr": 1}]}`},
		{"negative price", `{"data": [{"id": "bitcoin", "symbol": "BTC", "priceUsd": -1, "changePercent24Hr": 1}]}`},
		{"missing id", `{"data": [{"symbol": "BTC", "priceUsd": 1, "changePercent24Hr": 1}]}`},
		{"duplicate id", `{"data": [
			{"id": "bitcoin", "symbol": "BTC", "priceUsd": 1, "changePercent24Hr": 1},
			{"id": "bitcoin", "symbol": "BTC", "priceUsd": 2, "changePercent24Hr": 1}
		]}`},
	}

	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePrices([]byte(tt.body))
			var payloadErr *PayloadError
			if !errors.As(err, &payloadErr) {
				t.Fatalf("expected *PayloadError, got %T: %v", err, err)
			}
			if payloadErr.Reason == "" {
				t.Error("Reason should not be empty")
			}
		})
	}
}
