// Package lifecycle converts poll attempts into one coherent UI state.
//
// States: Idle -> Loading -> Ready | Failed, repeating on every attempt.
//
// All transitions run as tasks on an eventloop.Loop, so each one is atomic
// without locks. Loading is an overlay: the last good snapshot stays
// available while a fetch is outstanding. Overlapping attempts are resolved by
// completion order (last write wins); no sequence numbers are used.
//
// After Close, late completions are dropped before they touch state.
package lifecycle
