package lifecycle

import (
	"context"
	"errors"

	"github.com/rickgao/pricewatch/internal/api"
	"github.com/rickgao/pricewatch/internal/model"
)

// Classify maps a fetch error onto the failure taxonomy. It is the fetch
// boundary: every error becomes a Failure and nothing propagates further.
func Classify(err error) model.Failure {
	var (
		apiErr     *api.APIError
		payloadErr *api.PayloadError
		setupErr   *api.SetupError
		noResp     *api.NoResponseError
	)

	switch {
	case errors.As(err, &apiErr):
		return model.HTTPStatusFailure(apiErr.StatusCode, apiErr.Detail, apiErr.Status)
	case errors.As(err, &payloadErr):
		return model.MalformedPayloadFailure(payloadErr.Reason)
	case errors.As(err, &setupErr):
		return model.RequestSetupFailure(setupErr.Error())
	case errors.As(err, &noResp),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return model.NoResponseFailure()
	case err == nil:
		return model.RequestSetupFailure("fetch failed without an error")
	default:
		return model.RequestSetupFailure(err.Error())
	}
}
