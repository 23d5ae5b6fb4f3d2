package correlate

import (
	"sort"

	"github.com/netwatch-labs/causalnet/internal/types"
)

const temporalChainGapMS = 100.0

// layer4TemporalChain attributes a request to the action behind the most
// recently finished, already-correlated request that ended no more than
// 100ms before this one started (spec.md §4.3 Layer 4).
func layer4TemporalChain(rec *types.RequestRecord, allRequests []*types.RequestRecord) *types.Attribution {
	candidates := make([]*types.RequestRecord, 0, len(allRequests))
	for _, other := range allRequests {
		if other.ID == rec.ID || other.Attribution == nil || other.Timing.EndTime == 0 {
			continue
		}
		candidates = append(candidates, other)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Timing.EndTime > candidates[j].Timing.EndTime })

	for _, parent := range candidates {
		gap := rec.Timing.StartTime - parent.Timing.EndTime
		if gap >= 0 && gap <= temporalChainGapMS {
			return &types.Attribution{
				ActionID:   parent.Attribution.ActionID,
				Confidence: 0.5,
				Method:     types.MethodChain,
			}
		}
	}
	return nil
}
