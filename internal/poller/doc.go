// Package poller implements the poll scheduler.
//
// The scheduler:
//   - Fires one attempt immediately on Start, then one every Interval (default 30s)
//   - Does not wait for an attempt's outcome, so attempts may overlap
//   - Guarantees no attempt fires after Stop returns
package poller
