package presentation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/pricewatch/internal/lifecycle"
	"github.com/rickgao/pricewatch/internal/model"
)

var btc = model.Quote{
	ID:                "bitcoin",
	Name:              "Bitcoin",
	Symbol:            "BTC",
	PriceUSD:          decimal.RequireFromString("64000.12"),
	ChangePercent24Hr: decimal.RequireFromString("1.5"),
}

func TestFrom(t *testing.T) {
	network := model.NoResponseFailure()
	status := model.HTTPStatusFailure(500, "db down", "Internal Server Error")

	tests := []struct {
		name     string
		state    lifecycle.State
		wantMode Mode
		wantMsg  string
		wantVM   bool
		wantLKG  bool
	}{
		{
			name:     "idle shows loading",
			state:    lifecycle.State{Status: lifecycle.StatusIdle},
			wantMode: ModeLoading,
			wantMsg:  LoadingMessage,
		},
		{
			name:     "loading without snapshot",
			state:    lifecycle.State{Status: lifecycle.StatusLoading},
			wantMode: ModeLoading,
			wantMsg:  LoadingMessage,
		},
		{
			name:     "loading keeps last known good",
			state:    lifecycle.State{Status: lifecycle.StatusLoading, LastKnownGood: []model.Quote{btc}},
			wantMode: ModeLoading,
			wantMsg:  LoadingMessage,
			wantLKG:  true,
		},
		{
			name:     "ready with data",
			state:    lifecycle.State{Status: lifecycle.StatusReady, Quotes: []model.Quote{btc}, LastKnownGood: []model.Quote{btc}},
			wantMode: ModeData,
			wantVM:   true,
		},
		{
			name:     "ready but empty",
			state:    lifecycle.State{Status: lifecycle.StatusReady, Quotes: []model.Quote{}, LastKnownGood: []model.Quote{}},
			wantMode: ModeEmpty,
			wantMsg:  EmptyMessage,
			wantVM:   true,
		},
		{
			name:     "failed without snapshot",
			state:    lifecycle.State{Status: lifecycle.StatusFailed, Err: &network},
			wantMode: ModeError,
			wantMsg:  model.NetworkErrorMessage,
		},
		{
			name:     "failed keeps last known good",
			state:    lifecycle.State{Status: lifecycle.StatusFailed, Err: &status, LastKnownGood: []model.Quote{btc}},
			wantMode: ModeError,
			wantMsg:  "Error: 500 - db down",
			wantLKG:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := From(tt.state)

			assert.Equal(t, tt.state.Status, v.Status)
			assert.Equal(t, tt.wantMode, v.Display.Mode)
			assert.Equal(t, tt.wantMsg, v.Display.Message)
			assert.Equal(t, tt.wantVM, v.ViewModel != nil)
			assert.Equal(t, tt.wantLKG, v.LastKnownGood != nil)
			if tt.wantMode == ModeError {
				assert.Equal(t, tt.wantMsg, v.LastError)
			} else {
				assert.Empty(t, v.LastError)
			}
		})
	}
}

func TestFrom_ReadyBuildsViewModel(t *testing.T) {
	v := From(lifecycle.State{Status: lifecycle.StatusReady, Quotes: []model.Quote{btc}})

	require.NotNil(t, v.ViewModel)
	require.Len(t, v.ViewModel.Table, 1)
	assert.Equal(t, "$64000.1200", v.ViewModel.Table[0].PriceText)
	assert.Equal(t, "hsl(0, 70%, 50%)", v.ViewModel.Series[0].Color.CSS)
}

func TestView_JSON(t *testing.T) {
	f := model.NoResponseFailure()
	id := uuid.New()
	v := From(lifecycle.State{
		Status:    lifecycle.StatusFailed,
		Err:       &f,
		AttemptID: id,
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	b, err := json.Marshal(v)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "failed", got["status"])
	assert.Equal(t, model.NetworkErrorMessage, got["lastError"])
	assert.Equal(t, "no_response", got["errorKind"])
	assert.Equal(t, id.String(), got["attemptId"])
	assert.NotContains(t, got, "viewModel")
	assert.NotContains(t, got, "lastKnownGood")
	assert.Equal(t, map[string]any{"mode": "error", "message": model.NetworkErrorMessage}, got["display"])
}
