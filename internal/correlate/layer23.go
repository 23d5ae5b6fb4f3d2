package correlate

import (
	"math"
	"strings"
	"time"

	"github.com/netwatch-labs/causalnet/internal/types"
)

const proximityWeight = 0.35
const proximityDecayMS = 150.0
const backgroundPenalty = 0.20

// proximityScore is spec.md §4.3's timing term: 0.35 * exp(-delta/150), with
// delta clamped to zero for the negative (request-before-action, within
// tolerance) case so it yields the maximum bonus rather than exceeding it.
func proximityScore(deltaMS float64) float64 {
	if deltaMS < 0 {
		deltaMS = 0
	}
	return proximityWeight * math.Exp(-deltaMS/proximityDecayMS)
}

// actionTypeBonus is the fixed action-kind/resource-kind/method combination
// table (spec.md §4.3 Layers 2-3, "action-type bonus").
func actionTypeBonus(a types.ActionRecord, rec *types.RequestRecord) float64 {
	switch {
	case a.Kind == types.ActionNavigate && rec.Kind == types.KindDocument:
		return 0.35
	case a.Kind == types.ActionSubmit && strings.EqualFold(rec.Method, "POST"):
		return 0.25
	case a.Kind == types.ActionClick && (rec.Kind == types.KindXHR || rec.Kind == types.KindFetch):
		return 0.15
	default:
		return 0
	}
}

// semanticPatternBonus returns the first matching pattern-table row's bonus,
// or 0 if none match (spec.md §4.3 "at most one pattern bonus").
func semanticPatternBonus(a types.ActionRecord, rec *types.RequestRecord) float64 {
	actionText := a.TargetDescription + " " + a.TargetSelector
	for _, row := range patternTable {
		if !containsAny(actionText, row.actionWords) {
			continue
		}
		if !containsAny(rec.URL, row.urlWords) {
			continue
		}
		if row.method != "" && !strings.EqualFold(row.method, rec.Method) {
			continue
		}
		return row.bonus
	}
	return 0
}

// layer23TimingSemantic scores every action in the window by timing
// proximity plus semantic fit, minus a background-noise penalty, and
// returns the best candidate clamped to [0,1] and above cfg.MinConfidence
// (spec.md §4.3 Layers 2-3).
func layer23TimingSemantic(rec *types.RequestRecord, actions []types.ActionRecord, window time.Duration, minConfidence float64) *types.Attribution {
	windowMS := float64(window / time.Millisecond)
	penalty := 0.0
	if isBackgroundURL(rec.URL) {
		penalty = backgroundPenalty
	}

	var best *types.ActionRecord
	var bestScore float64

	for i := range actions {
		a := &actions[i]
		delta := rec.Timing.StartTime - actionTimestampMS(*a)
		if delta < -10 || delta > windowMS {
			continue
		}
		score := proximityScore(delta) + actionTypeBonus(*a, rec) + semanticPatternBonus(*a, rec) - penalty
		score = math.Max(0, math.Min(1, score))
		if best == nil || score > bestScore || (score == bestScore && a.Index < best.Index) {
			best = a
			bestScore = score
		}
	}
	if best == nil || bestScore < minConfidence {
		return nil
	}

	method := types.MethodTimingOnly
	if bestScore >= 0.5 {
		method = types.MethodTimingSemantic
	}
	return &types.Attribution{
		ActionID:   best.ID,
		Confidence: bestScore,
		Method:     method,
	}
}
