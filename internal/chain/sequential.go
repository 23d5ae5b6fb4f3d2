package chain

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/netwatch-labs/causalnet/internal/types"
)

const sequentialGapMinMS = 0.0
const sequentialGapMaxMS = 50.0

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw
	}
	return u.Path
}

// detectSequentialChains groups maximal runs of requests whose consecutive
// end-to-start gaps (next.start - prev.end) fall in [0,50]ms into one chain
// each (spec.md §4.4 "sequential chains").
func detectSequentialChains(requests []types.RequestRecord) []types.Chain {
	sorted := make([]types.RequestRecord, len(requests))
	copy(sorted, requests)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timing.StartTime < sorted[j].Timing.StartTime })

	var chains []types.Chain
	var run []types.RequestRecord

	flush := func() {
		if len(run) < 2 {
			run = nil
			return
		}
		ids := make([]string, len(run))
		for i, r := range run {
			ids[i] = r.ID
		}
		chains = append(chains, types.Chain{
			Kind:        types.ChainSequential,
			RequestIDs:  ids,
			Description: fmt.Sprintf("%d requests in quick succession starting at %s", len(run), urlPath(run[0].URL)),
		})
		run = nil
	}

	for i, rec := range sorted {
		if i == 0 {
			run = append(run, rec)
			continue
		}
		gap := rec.Timing.StartTime - sorted[i-1].Timing.EndTime
		if gap >= sequentialGapMinMS && gap <= sequentialGapMaxMS {
			run = append(run, rec)
			continue
		}
		flush()
		run = append(run, rec)
	}
	flush()
	return chains
}
