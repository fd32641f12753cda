package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/pricewatch/internal/model"
)

// Status is the UI status derived from poll attempts.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText renders the status as its lowercase name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for _, c := range []Status{StatusIdle, StatusLoading, StatusReady, StatusFailed} {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// State is an immutable view of the lifecycle at one point in time.
type State struct {
	Status Status

	// Quotes is the current snapshot; set only when Status is StatusReady.
	Quotes []model.Quote

	// LastKnownGood is the snapshot of the most recent successful attempt, kept
	// through Loading and Failed. Nil until the first success.
	LastKnownGood []model.Quote

	// Err is set only when Status is StatusFailed.
	Err *model.Failure

	// AttemptID identifies the attempt whose issue or completion produced this state.
	AttemptID uuid.UUID

	// InFlight counts attempts issued but not yet resolved.
	InFlight int

	UpdatedAt time.Time
}

// HasSnapshot reports whether a successful snapshot has ever been received.
func (s State) HasSnapshot() bool {
	return s.LastKnownGood != nil
}

// clone copies the slices so the caller cannot alias stored snapshots.
func (s State) clone() State {
	s.Quotes = model.CloneQuotes(s.Quotes)
	s.LastKnownGood = model.CloneQuotes(s.LastKnownGood)
	if s.Err != nil {
		f := *s.Err
		s.Err = &f
	}
	return s
}
