package chain

import (
	"fmt"

	"github.com/netwatch-labs/causalnet/internal/types"
)

// detectPreflightChains pairs a CORS preflight (OPTIONS) request with the
// actual request it cleared the way for (spec.md §4.4 "preflight chains").
// Triggered from the actual request's side to avoid emitting the pair twice.
func detectPreflightChains(requests []types.RequestRecord) []types.Chain {
	byID := make(map[string]types.RequestRecord, len(requests))
	for _, r := range requests {
		byID[r.ID] = r
	}

	var chains []types.Chain
	for _, rec := range requests {
		if rec.Initiator.Kind == types.InitiatorPreflight {
			continue // only trigger from the actual request's side
		}
		if rec.PreflightRequestID == "" {
			continue
		}
		preflight, ok := byID[rec.PreflightRequestID]
		if !ok {
			continue
		}
		chains = append(chains, types.Chain{
			Kind:        types.ChainPreflight,
			RequestIDs:  []string{preflight.ID, rec.ID},
			Description: fmt.Sprintf("CORS preflight %s %s cleared %s %s", preflight.Method, preflight.URL, rec.Method, rec.URL),
		})
	}
	return chains
}
