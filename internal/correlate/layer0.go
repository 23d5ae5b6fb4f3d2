package correlate

import "github.com/netwatch-labs/causalnet/internal/types"

// layer0ChainInheritance attributes a preflight request to whatever action
// its target request was already attributed to (spec.md §4.3 Layer 0).
func layer0ChainInheritance(rec *types.RequestRecord, byID map[string]*types.RequestRecord) *types.Attribution {
	if rec.Initiator.Kind != types.InitiatorPreflight {
		return nil
	}
	targetID := rec.PreflightFor
	if targetID == "" {
		targetID = rec.Initiator.PreflightTargetID
	}
	if targetID == "" {
		return nil
	}
	target, ok := byID[targetID]
	if !ok || target.Attribution == nil {
		return nil
	}
	return &types.Attribution{
		ActionID:   target.Attribution.ActionID,
		Confidence: 0.85,
		Method:     types.MethodChain,
	}
}
