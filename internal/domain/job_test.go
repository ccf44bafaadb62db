package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	stamp := func(d time.Duration) *time.Time {
		at := now.Add(-d)
		return &at
	}

	cases := []struct {
		name string
		job  ScheduledJob
		want bool
	}{
		{name: "never triggered is always due", job: ScheduledJob{IntervalSeconds: 3600}, want: true},
		{name: "exactly at the interval is due", job: ScheduledJob{IntervalSeconds: 3600, LastTriggeredAt: stamp(3600 * time.Second)}, want: true},
		{name: "one second early is not due", job: ScheduledJob{IntervalSeconds: 3600, LastTriggeredAt: stamp(3599 * time.Second)}, want: false},
		{name: "one second late is due", job: ScheduledJob{IntervalSeconds: 3600, LastTriggeredAt: stamp(3601 * time.Second)}, want: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.job.Due(now))
		})
	}
}

func TestDueComparesInUTC(t *testing.T) {
	t.Parallel()

	zone := time.FixedZone("UTC+5", 5*3600)
	triggered := time.Date(2026, 2, 10, 16, 0, 0, 0, zone)
	job := ScheduledJob{IntervalSeconds: 3600, LastTriggeredAt: &triggered}

	// 16:00 UTC+5 is 11:00 UTC, so one hour later in UTC the job is due.
	assert.True(t, job.Due(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)))
	assert.False(t, job.Due(time.Date(2026, 2, 10, 11, 30, 0, 0, time.UTC)))
}
