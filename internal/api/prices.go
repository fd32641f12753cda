package api

import (
	"context"
	"net/http"

	"github.com/rickgao/pricewatch/internal/model"
)

// PricesPath is the quotes endpoint relative to the base URL.
const PricesPath = "/prices"

// FetchQuotes fetches the ranked quote list.
func (c *Client) FetchQuotes(ctx context.Context) ([]model.Quote, error) {
	body, err := c.doWithRetry(ctx, http.MethodGet, PricesPath, nil)
	if err != nil {
		return nil, err
	}

	quotes, err := DecodePrices(body)
	if err != nil {
		c.logger.Debug("rejected prices payload", "err", err, "bytes", len(body))
		return nil, err
	}

	return quotes, nil
}
