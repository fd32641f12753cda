// Package stream follows a remote pricewatch server.
//
// The client:
//   - Reads presentation views from the server's /ws endpoint
//   - Reconnects with exponential backoff
//   - Reports a lost connection as a network error view that keeps the last snapshot
//   - Sends manual refreshes to /api/refresh
package stream
