// correlator.go — the four-layer Correlator (spec.md §4.3): attributes
// finalized requests to the user/agent action that most plausibly caused
// them, mutating each record's Attribution field at most once.
//
// Grounded on internal/analysis/api_contract_analysis.go's ordered-rule
// evaluator (try rule 1, fall through to rule 2, ...) generalized from a
// single rule table to four ordered layers, each a distinct scoring
// strategy over the same candidate action list.
package correlate

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/netwatch-labs/causalnet/internal/config"
	"github.com/netwatch-labs/causalnet/internal/types"
)

// Correlator scores the causal link between requests and actions. It is
// stateless: every call receives the full candidate set it needs, so the
// caller (internal/pipeline) owns the Ingester and Action Log this operates
// against.
type Correlator struct {
	cfg config.Config
	log *logrus.Entry
}

// New constructs a Correlator bound to cfg's MaxCorrelationWindow and
// MinConfidence.
func New(cfg config.Config, log *logrus.Entry) *Correlator {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Correlator{cfg: cfg, log: log}
}

func byRequestID(requests []*types.RequestRecord) map[string]*types.RequestRecord {
	m := make(map[string]*types.RequestRecord, len(requests))
	for _, r := range requests {
		m[r.ID] = r
	}
	return m
}

// attribute runs the four layers in order against a single request and
// returns the first one that produces an attribution, or nil.
func (c *Correlator) attribute(rec *types.RequestRecord, actions []types.ActionRecord, byID map[string]*types.RequestRecord, allRequests []*types.RequestRecord) *types.Attribution {
	if attr := layer0ChainInheritance(rec, byID); attr != nil {
		return attr
	}
	if attr := layer1StackTrace(rec, actions, c.cfg.MaxCorrelationWindow); attr != nil {
		return attr
	}
	if attr := layer23TimingSemantic(rec, actions, c.cfg.MaxCorrelationWindow, c.cfg.MinConfidence); attr != nil {
		return attr
	}
	if attr := layer4TemporalChain(rec, allRequests); attr != nil {
		return attr
	}
	return nil
}

// CorrelateAll attributes every not-yet-attributed request in allRequests,
// mutating Attribution in place, then groups the attributed requests by
// winning action and returns one CorrelationResult per action that gained
// at least one request (spec.md §4.3 "bulk correlation"). allRequests must
// be live pointers into the store (internal/ingest.WithRecordsForAttribution);
// actions is the full, current action list.
func (c *Correlator) CorrelateAll(allRequests []*types.RequestRecord, actions []types.ActionRecord) []types.CorrelationResult {
	sorted := make([]*types.RequestRecord, len(allRequests))
	copy(sorted, allRequests)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	byID := byRequestID(allRequests)
	for _, rec := range sorted {
		if rec.Attribution != nil {
			continue
		}
		attr := c.attribute(rec, actions, byID, allRequests)
		if attr == nil {
			continue
		}
		rec.Attribution = attr
		c.log.WithField("request_id", rec.ID).WithField("action_id", attr.ActionID).
			WithField("method", attr.Method).WithField("confidence", attr.Confidence).
			Debug("attributed request")
	}

	actionByID := make(map[string]types.ActionRecord, len(actions))
	for _, a := range actions {
		actionByID[a.ID] = a
	}

	grouped := make(map[string][]types.RequestRecord)
	for _, rec := range sorted {
		if rec.Attribution == nil {
			continue
		}
		grouped[rec.Attribution.ActionID] = append(grouped[rec.Attribution.ActionID], *rec)
	}

	results := make([]types.CorrelationResult, 0, len(grouped))
	for actionID, reqs := range grouped {
		action, ok := actionByID[actionID]
		if !ok {
			continue
		}
		results = append(results, buildResult(action, reqs))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Action.Index < results[j].Action.Index })
	return results
}

// CorrelateAction runs the same attribution pass but returns only the
// result for the named action, or nil if that action gained no requests
// (spec.md §6 correlateAction). allRequests must be live pointers.
func (c *Correlator) CorrelateAction(actionID string, allRequests []*types.RequestRecord, actions []types.ActionRecord) *types.CorrelationResult {
	results := c.CorrelateAll(allRequests, actions)
	for i := range results {
		if results[i].Action.ID == actionID {
			return &results[i]
		}
	}
	return nil
}

func buildResult(action types.ActionRecord, reqs []types.RequestRecord) types.CorrelationResult {
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Timing.StartTime < reqs[j].Timing.StartTime })
	var sum float64
	for _, r := range reqs {
		sum += r.Attribution.Confidence
	}
	agg := 0.0
	if len(reqs) > 0 {
		agg = sum / float64(len(reqs))
	}
	return types.CorrelationResult{
		Action:              action,
		Requests:             reqs,
		AggregateConfidence: agg,
	}
}
