// query.go — Query Layer (spec.md §4.5). Reads the finalized store only;
// pending records are never visible here. Grounded on
// internal/capture/network_bodies.go's NetworkBodyFilter / filtering style,
// generalized from the teacher's single URL-substring check to the full
// regex-with-fallback + method + status-range + kind + time-floor filter
// spec.md §4.5 requires.
package ingest

import (
	"sort"
	"strings"

	"github.com/netwatch-labs/causalnet/internal/types"
)

// Filter selects a subset of the finalized store. A zero-value field means
// "don't filter on this dimension" except where noted.
type Filter struct {
	URLPattern    string // regex; invalid regex degrades to case-insensitive substring (spec.md §7)
	Method        string // exact match, case-insensitive
	StatusMin     int    // inclusive; 0 means unset unless StatusMax is also set
	StatusMax     int    // inclusive; 0 means unset unless StatusMin is also set
	HasStatusRange bool
	Kind          types.ResourceKind
	MinStartTime  float64 // wall-clock ms
	Limit         int     // 0 means unlimited; applied after sort
}

// GetRequests returns finalized records matching every set filter
// dimension, sorted by insertion order (spec.md §4.5).
func (ing *Ingester) GetRequests(f Filter) []types.RequestRecord {
	ing.mu.RLock()
	defer ing.mu.RUnlock()

	var urlMatch *urlMatcher
	if f.URLPattern != "" {
		m := compileMatcher(f.URLPattern)
		urlMatch = &m
	}

	out := make([]types.RequestRecord, 0, len(ing.store))
	for _, rec := range ing.store {
		if !matchesFilter(rec, f, urlMatch) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func matchesFilter(rec *types.RequestRecord, f Filter, urlMatch *urlMatcher) bool {
	if urlMatch != nil && !urlMatch.match(rec.URL) {
		return false
	}
	if f.Method != "" && !strings.EqualFold(f.Method, rec.Method) {
		return false
	}
	if f.HasStatusRange && (rec.Status < f.StatusMin || rec.Status > f.StatusMax) {
		return false
	}
	if f.Kind != "" && rec.Kind != f.Kind {
		return false
	}
	if f.MinStartTime > 0 && rec.Timing.StartTime < f.MinStartTime {
		return false
	}
	return true
}

// GetRequest returns a single finalized record by ID.
func (ing *Ingester) GetRequest(id string) (types.RequestRecord, bool) {
	ing.mu.RLock()
	defer ing.mu.RUnlock()
	rec, ok := ing.store[id]
	if !ok {
		return types.RequestRecord{}, false
	}
	return *rec, true
}

// GetRequestsSince returns finalized records with StartTime strictly after
// timestamp, sorted by insertion order.
func (ing *Ingester) GetRequestsSince(timestamp float64) []types.RequestRecord {
	ing.mu.RLock()
	defer ing.mu.RUnlock()
	out := make([]types.RequestRecord, 0, len(ing.store))
	for _, rec := range ing.store {
		if rec.Timing.StartTime > timestamp {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// snapshotAll returns every finalized record, unsorted, for internal use by
// the correlator and chain detector (which impose their own ordering).
func (ing *Ingester) snapshotAll() []types.RequestRecord {
	ing.mu.RLock()
	defer ing.mu.RUnlock()
	out := make([]types.RequestRecord, 0, len(ing.store))
	for _, rec := range ing.store {
		out = append(out, *rec)
	}
	return out
}
