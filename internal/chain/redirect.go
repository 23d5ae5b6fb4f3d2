package chain

import (
	"fmt"
	"strings"

	"github.com/netwatch-labs/causalnet/internal/types"
)

// detectRedirectChains emits one chain per record that coalesced at least
// one redirect hop (spec.md §4.4 "redirect chains"). Redirect hops are
// coalesced into the final record rather than kept as separate request IDs
// (spec.md §4.1 "Redirect coalescing"), so each chain names a single record.
func detectRedirectChains(requests []types.RequestRecord) []types.Chain {
	var chains []types.Chain
	for _, rec := range requests {
		if len(rec.RedirectChain) == 0 {
			continue
		}
		urls := make([]string, 0, len(rec.RedirectChain)+1)
		for _, hop := range rec.RedirectChain {
			urls = append(urls, fmt.Sprintf("%s (%d)", hop.URL, hop.Status))
		}
		urls = append(urls, rec.URL)
		chains = append(chains, types.Chain{
			Kind:        types.ChainRedirect,
			RequestIDs:  []string{rec.ID},
			Description: fmt.Sprintf("%d-hop redirect: %s", len(rec.RedirectChain), strings.Join(urls, " -> ")),
		})
	}
	return chains
}
