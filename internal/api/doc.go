// Package api provides the REST client for the prices backend.
//
// Endpoint:
//   - GET {baseUrl}/prices with "Authorization: Bearer {token}"
//
// Success body: {"data": [{"id", "name", "symbol", "priceUsd", "changePercent24Hr"}, ...]}
// Failure body (non-2xx): optionally {"detail": "..."}
//
// Every failure is returned as one of the typed faults in errors.go so callers
// can classify it without string matching.
package api
