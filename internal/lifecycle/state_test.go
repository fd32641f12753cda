package lifecycle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Text(t *testing.T) {
	for _, s := range []Status{StatusIdle, StatusLoading, StatusReady, StatusFailed} {
		b, err := json.Marshal(s)
		require.NoError(t, err)

		var got Status
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, s, got)
	}

	var s Status
	assert.Error(t, s.UnmarshalText([]byte("paused")))
	assert.Equal(t, "status(9)", Status(9).String())
}
