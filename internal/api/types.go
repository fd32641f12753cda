package api

import "github.com/shopspring/decimal"

// PricesResponse from GET /prices
type PricesResponse struct {
	// Data is nil when the field is missing or null.
	Data *[]RawQuote `json:"data"`
}

// RawQuote represents a quote as sent by the backend. Numbers may arrive as
// JSON numbers or as quoted strings.
type RawQuote struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Symbol            string              `json:"symbol"`
	PriceUSD          decimal.NullDecimal `json:"priceUsd"`
	ChangePercent24Hr decimal.NullDecimal `json:"changePercent24Hr"`
}
