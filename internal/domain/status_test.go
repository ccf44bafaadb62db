package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []PipelineStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed} {
		parsed, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStatus("queued")
	assert.Error(t, err)
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from PipelineStatus
		to   PipelineStatus
		want bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusPending, StatusCompleted, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusFailed, StatusProcessing, false},
		// Re-ingest resets anything back to pending.
		{StatusCompleted, StatusPending, true},
		{StatusFailed, StatusPending, true},
		{StatusProcessing, StatusPending, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
