package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rickgao/pricewatch/internal/model"
)

// ToQuote converts a raw quote to the model type.
func (r RawQuote) ToQuote() (model.Quote, error) {
	if !r.PriceUSD.Valid {
		return model.Quote{}, errors.New("missing priceUsd")
	}
	if !r.ChangePercent24Hr.Valid {
		return model.Quote{}, errors.New("missing changePercent24Hr")
	}
	return model.Quote{
		ID:                r.ID,
		Name:              r.Name,
		Symbol:            r.Symbol,
		PriceUSD:          r.PriceUSD.Decimal,
		ChangePercent24Hr: r.ChangePercent24Hr.Decimal,
	}, nil
}

// DecodePrices parses a 2xx body into a validated snapshot, preserving rank order.
// Any shape problem is returned as a *PayloadError.
func DecodePrices(body []byte) ([]model.Quote, error) {
	var resp PricesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &PayloadError{Reason: fmt.Sprintf("decode body: %v", err)}
	}
	if resp.Data == nil {
		return nil, &PayloadError{Reason: "missing data array"}
	}

	raw := *resp.Data
	quotes := make([]model.Quote, 0, len(raw))
	for i, r := range raw {
		q, err := r.ToQuote()
		if err != nil {
			return nil, &PayloadError{Reason: fmt.Sprintf("quote %d: %v", i, err)}
		}
		quotes = append(quotes, q)
	}

	if err := model.ValidateSnapshot(quotes); err != nil {
		return nil, &PayloadError{Reason: err.Error()}
	}

	return quotes, nil
}
