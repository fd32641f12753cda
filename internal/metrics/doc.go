// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Poll attempts by trigger and outcome
//   - Fetch latency
//   - Current status and snapshot size
//   - Event loop mailbox depth
package metrics
