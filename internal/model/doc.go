// Package model defines the data types shared by the polling client.
//
// Conventions:
//   - Prices and percentages: shopspring decimal, never float64
//   - A snapshot is the ranked list of quotes from one successful fetch; order is rank order
//   - Failures carry the user-facing message composed at classification time
package model
