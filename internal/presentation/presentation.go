// Package presentation derives the output contract consumed by renderers from
// lifecycle state.
package presentation

import (
	"time"

	"github.com/rickgao/pricewatch/internal/lifecycle"
	"github.com/rickgao/pricewatch/internal/viewmodel"
)

// Display texts.
const (
	LoadingMessage = "Loading crypto prices..."
	EmptyMessage   = "No data available."
)

// Mode is what a renderer shows. Exactly one mode applies to any state.
type Mode string

const (
	ModeLoading Mode = "loading"
	ModeError   Mode = "error"
	ModeEmpty   Mode = "empty"
	ModeData    Mode = "data"
)

// Display selects the renderer mode and its message, if any.
type Display struct {
	Mode    Mode   `json:"mode"`
	Message string `json:"message,omitempty"`
}

// View is the presentation output contract.
type View struct {
	Status    lifecycle.Status     `json:"status"`
	LastError string               `json:"lastError,omitempty"`
	ErrorKind string               `json:"errorKind,omitempty"`
	ViewModel *viewmodel.ViewModel `json:"viewModel,omitempty"`

	// LastKnownGood is the previous snapshot, set while Loading or Failed so a
	// renderer can keep showing stale data.
	LastKnownGood *viewmodel.ViewModel `json:"lastKnownGood,omitempty"`

	Display   Display   `json:"display"`
	AttemptID string    `json:"attemptId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// From builds the View for s.
func From(s lifecycle.State) View {
	v := View{
		Status:    s.Status,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Status != lifecycle.StatusIdle {
		v.AttemptID = s.AttemptID.String()
	}

	switch s.Status {
	case lifecycle.StatusReady:
		vm := viewmodel.Build(s.Quotes)
		v.ViewModel = &vm
		if len(s.Quotes) == 0 {
			v.Display = Display{Mode: ModeEmpty, Message: EmptyMessage}
		} else {
			v.Display = Display{Mode: ModeData}
		}
		return v

	case lifecycle.StatusFailed:
		if s.Err != nil {
			v.LastError = s.Err.Message
			v.ErrorKind = s.Err.Kind.String()
		}
		v.Display = Display{Mode: ModeError, Message: v.LastError}

	default:
		v.Display = Display{Mode: ModeLoading, Message: LoadingMessage}
	}

	if s.HasSnapshot() {
		lkg := viewmodel.Build(s.LastKnownGood)
		v.LastKnownGood = &lkg
	}
	return v
}
