package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdjustInterval(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		current    int
		urgency    int
		hadContent bool
		want       int
	}{
		{name: "breaking news pins to five minutes", current: 3600, urgency: 9, hadContent: true, want: 300},
		{name: "urgency eight is breaking too", current: 86400, urgency: 8, hadContent: true, want: 300},
		{name: "elevated pins to thirty minutes", current: 3600, urgency: 6, hadContent: true, want: 1800},
		{name: "urgency five is elevated", current: 300, urgency: 5, hadContent: true, want: 1800},
		{name: "low urgency decays toward the floor", current: 4000, urgency: 2, hadContent: true, want: 3800},
		{name: "decay never drops below one hour", current: 3600, urgency: 1, hadContent: true, want: 3600},
		{name: "no content backs off by half again", current: 3600, urgency: 0, hadContent: false, want: 5400},
		{name: "backoff caps at one day", current: 80000, urgency: 0, hadContent: false, want: 86400},
		{name: "result never exceeds the hard maximum", current: 200000, urgency: 1, hadContent: true, want: 172800},
		{name: "tiny interval decays up to the floor", current: 10, urgency: 1, hadContent: true, want: 3600},
		{name: "tiny interval with no content still clamps up", current: 10, urgency: 0, hadContent: false, want: 60},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := AdjustInterval(tc.current, tc.urgency, tc.hadContent)
			assert.Equal(t, tc.want, got)

			// Pure function: replaying the same inputs yields the same result.
			assert.Equal(t, got, AdjustInterval(tc.current, tc.urgency, tc.hadContent))
		})
	}
}

func TestAdjustIntervalStaysInBounds(t *testing.T) {
	t.Parallel()

	for _, current := range []int{1, 60, 299, 3600, 86400, 172800, 500000} {
		for urgency := 0; urgency <= 10; urgency++ {
			for _, hadContent := range []bool{true, false} {
				got := AdjustInterval(current, urgency, hadContent)
				assert.GreaterOrEqual(t, got, MinIntervalSeconds,
					"current=%d urgency=%d hadContent=%v", current, urgency, hadContent)
				assert.LessOrEqual(t, got, MaxIntervalSeconds,
					"current=%d urgency=%d hadContent=%v", current, urgency, hadContent)
			}
		}
	}
}
