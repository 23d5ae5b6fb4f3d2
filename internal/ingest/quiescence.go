// quiescence.go — "Wait for network quiescence" (spec.md §4.7, §5 suspension
// point ii). Grounded on internal/capture/queries.go's WaitForResultWithClient
// poll loop, adapted from a condition-variable wakeup (there's a natural
// wakeup event: a result arriving) to a plain ticker, since "in-flight count
// reached zero" has no corresponding signal to broadcast on.
package ingest

import "time"

// WaitForQuiescence blocks until the in-flight (pending) count has been
// continuously zero for quietPeriod, or until timeout elapses. Returns true
// if quiescence was observed, false on timeout.
func (ing *Ingester) WaitForQuiescence(quietPeriod, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	var zeroSince time.Time
	for {
		now := time.Now()
		if ing.pendingCount() == 0 {
			if zeroSince.IsZero() {
				zeroSince = now
			}
			if now.Sub(zeroSince) >= quietPeriod {
				return true
			}
		} else {
			zeroSince = time.Time{}
		}
		if now.After(deadline) {
			return false
		}
		<-ticker.C
	}
}

func (ing *Ingester) pendingCount() int {
	ing.mu.RLock()
	defer ing.mu.RUnlock()
	return len(ing.pending)
}
