// timing.go — Two-time-base reconciliation (spec.md §4.1 "Time base reconciliation").
//
// The debug source supplies wall-clock time only on RequestSent (seconds
// since epoch) and a monotonic time on every event (seconds since an
// arbitrary origin). The offset is computed once, from the very first
// RequestSent ever observed, and used to project every later monotonic
// timestamp into wall-clock milliseconds. Must be called with ing.mu held.
package ingest

func (ing *Ingester) learnOffsetLocked(wallTime, monotonicTime float64) {
	if ing.offsetKnown {
		return
	}
	ing.offsetSecs = wallTime - monotonicTime
	ing.offsetKnown = true
}

// projectLocked converts a monotonic timestamp to wall-clock milliseconds.
// Must not be called before the offset is known; callers guard on
// offsetKnown because a raw monotonic timestamp must never be projected
// with an unknown offset (spec.md §4.1).
func (ing *Ingester) projectLocked(monotonicTime float64) float64 {
	return (monotonicTime + ing.offsetSecs) * 1000
}
