package domain

import "math"

// Cadences used by the urgency feedback loop, in seconds.
const (
	breakingInterval  = 300
	elevatedInterval  = 1800
	evergreenFloor    = 3600
	backoffCeiling    = 86400
	evergreenDecay    = 0.95
	backoffMultiplier = 1.5
)

// AdjustInterval maps an enrichment outcome onto the job's next interval.
// It is a pure function of its inputs: replaying the same inputs yields the
// same result, and the result always lands in [MinIntervalSeconds,
// MaxIntervalSeconds].
//
// hadContent=false covers the blocked/failed paths where no fresh content
// signal exists; the interval backs off exponentially toward one day.
func AdjustInterval(current int, urgency int, hadContent bool) int {
	var next int
	switch {
	case !hadContent:
		next = int(math.Round(float64(current) * backoffMultiplier))
		if next > backoffCeiling {
			next = backoffCeiling
		}
	case urgency >= 8:
		next = breakingInterval
	case urgency >= 5:
		next = elevatedInterval
	default:
		next = int(math.Round(float64(current) * evergreenDecay))
		if next < evergreenFloor {
			next = evergreenFloor
		}
	}

	if next < MinIntervalSeconds {
		next = MinIntervalSeconds
	}
	if next > MaxIntervalSeconds {
		next = MaxIntervalSeconds
	}
	return next
}
