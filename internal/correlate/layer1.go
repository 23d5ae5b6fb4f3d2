package correlate

import (
	"math"
	"time"

	"github.com/netwatch-labs/causalnet/internal/types"
)

const maxAsyncWalkDepth = 50

// tieToleranceMS is how close two |Δms| values must be to count as a tie.
// Wall-clock milliseconds since the epoch carry float64 rounding error of a
// few ten-thousandths of a millisecond, so exact equality never holds.
const tieToleranceMS = 1e-3

// walkStackForEvent walks the synchronous root frame group and then the
// async-parent chain, up to maxAsyncWalkDepth hops, returning the first
// frame group whose Description names a user event (spec.md §4.3 Layer 1,
// "walk the synchronous frames and then follow the async-parent chain").
func walkStackForEvent(stack *types.StackTrace) (eventName string, asyncDepth int, found bool) {
	node := stack
	depth := 0
	for node != nil && depth <= maxAsyncWalkDepth {
		if isUserEventName(node.Description) {
			return node.Description, depth, true
		}
		node = node.Parent
		depth++
	}
	return "", 0, false
}

// eventCompatibleWithAction is the fixed event-to-action compatibility table
// (spec.md §4.3 Layer 1).
func eventCompatibleWithAction(eventName string, kind types.ActionKind) bool {
	switch eventName {
	case "click", "dblclick", "mousedown", "mouseup", "pointerdown", "pointerup", "touchstart", "touchend":
		return kind == types.ActionClick
	case "submit":
		return kind == types.ActionSubmit || kind == types.ActionNavigate
	case "input", "change", "keydown", "keyup", "keypress", "focus", "blur":
		return kind == types.ActionType
	default:
		return false
	}
}

func actionTimestampMS(a types.ActionRecord) float64 {
	return float64(a.Timestamp.UnixNano()) / 1e6
}

// layer1StackTrace attributes a request via its initiator's stack trace
// (spec.md §4.3 Layer 1): the closest-in-time compatible action within the
// window wins; ties break toward the earlier-created action.
func layer1StackTrace(rec *types.RequestRecord, actions []types.ActionRecord, window time.Duration) *types.Attribution {
	if rec.Initiator.Stack == nil {
		return nil
	}
	eventName, asyncDepth, found := walkStackForEvent(rec.Initiator.Stack)
	if !found {
		return nil
	}

	windowMS := float64(window / time.Millisecond)
	var best *types.ActionRecord
	var bestDelta float64

	for i := range actions {
		a := &actions[i]
		if !eventCompatibleWithAction(eventName, a.Kind) {
			continue
		}
		delta := rec.Timing.StartTime - actionTimestampMS(*a)
		if delta < -10 || delta > windowMS {
			continue
		}
		absDelta := math.Abs(delta)
		tie := math.Abs(absDelta-bestDelta) <= tieToleranceMS
		if best == nil || (!tie && absDelta < bestDelta) || (tie && a.Index < best.Index) {
			best = a
			bestDelta = absDelta
		}
	}
	if best == nil {
		return nil
	}

	confidence := math.Max(0.85, 0.95-0.02*float64(asyncDepth))
	return &types.Attribution{
		ActionID:   best.ID,
		Confidence: confidence,
		Method:     types.MethodStackTrace,
	}
}
