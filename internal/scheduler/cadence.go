// Package scheduler provides the refresh-cycle timing authority for
// GridPulse: cadence alignment math and a cancellable recurring runner that
// triggers aggregation cycles on wall-clock boundaries.
package scheduler

import "time"

// NextDelay computes the delay from now until the next wall-clock instant
// that is a whole multiple of period (for a 5-minute period: :00, :05, :10,
// and so on).
//
// Boundary policy: an invocation exactly on a boundary waits a full period.
// The boundary that is "now" is treated as already fired, so the returned
// delay is always in the half-open range (0, period].
func NextDelay(now time.Time, period time.Duration) time.Duration {
	if period <= 0 {
		return 0
	}
	elapsed := now.Sub(now.Truncate(period))
	return period - elapsed
}
