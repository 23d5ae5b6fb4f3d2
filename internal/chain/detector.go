// detector.go — Chain Detector (spec.md §4.4): finds causal relationships
// among requests beyond single action attribution. Operates on read-only
// snapshots from the Query Layer; unlike the Correlator it never mutates a
// request record, so it needs no access to the store's write lock.
package chain

import (
	"github.com/sirupsen/logrus"

	"github.com/netwatch-labs/causalnet/internal/types"
)

// Detector finds redirect, preflight, auth-flow, and sequential chains.
type Detector struct {
	log *logrus.Entry
}

// New constructs a Detector.
func New(log *logrus.Entry) *Detector {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Detector{log: log}
}

// Detect runs every chain-detection strategy over requests and returns the
// union of what they find. requests need not be pre-filtered to one action;
// each strategy does its own matching.
func (d *Detector) Detect(requests []types.RequestRecord) []types.Chain {
	var chains []types.Chain
	chains = append(chains, detectRedirectChains(requests)...)
	chains = append(chains, detectPreflightChains(requests)...)
	chains = append(chains, detectAuthFlowChains(requests)...)
	chains = append(chains, detectSequentialChains(requests)...)
	d.log.WithField("count", len(chains)).WithField("requests", len(requests)).Debug("detected chains")
	return chains
}

// Describe returns a one-line human-readable summary of a chain, e.g. for
// logging or a demo harness (spec.md SUPPLEMENTED FEATURES).
func Describe(c types.Chain) string {
	if c.Description != "" {
		return c.Description
	}
	return string(c.Kind) + " chain"
}
