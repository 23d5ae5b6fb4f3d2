// attributor.go — the narrow handle the Correlator and Chain Detector use to
// mutate Attribution fields in place on stored records (spec.md §3
// "Correlator outputs mutate request records in-place with attribution
// metadata"; §9 design note resolving the in-place-mutation question raised
// by the Query Layer's copy-returning methods).
//
// The Query Layer (query.go) returns value copies deliberately, so that
// ordinary readers can never see a record mid-mutation or retain a pointer
// into the store. WithRecordsForAttribution is the one doorway that hands
// out live pointers, and it does so under the store's write lock so no
// ingestion event can interleave with a correlation pass.
package ingest

import (
	"sort"

	"github.com/netwatch-labs/causalnet/internal/types"
)

// WithRecordsForAttribution runs fn with every finalized record's live
// pointer, sorted by insertion order, while holding the store lock. fn may
// read and mutate Attribution (and only Attribution) on any record; it must
// not retain the slice or pointers beyond the call.
func (ing *Ingester) WithRecordsForAttribution(fn func(records []*types.RequestRecord)) {
	ing.mu.Lock()
	defer ing.mu.Unlock()

	recs := make([]*types.RequestRecord, 0, len(ing.store))
	for _, rec := range ing.store {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Index < recs[j].Index })
	fn(recs)
}
