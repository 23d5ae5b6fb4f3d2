// pipeline.go — the outer facade a tool layer drives (spec.md §6 "External
// Interfaces"): one object exposing event ingestion, action recording,
// queries, and correlation, composed from the four independent components.
//
// Grounded on cmd/dev-console/tools_core.go's ToolHandler, which composes
// the teacher's capture, checkpoints, sessionStore, and other subsystems
// behind a single caller-facing surface the same way this composes
// ingest/actionlog/correlate/chain; there is no standalone "Client" type in
// the teacher repo, so this is the actual composition root being imitated.
package pipeline

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/netwatch-labs/causalnet/internal/actionlog"
	"github.com/netwatch-labs/causalnet/internal/chain"
	"github.com/netwatch-labs/causalnet/internal/config"
	"github.com/netwatch-labs/causalnet/internal/correlate"
	"github.com/netwatch-labs/causalnet/internal/ingest"
	"github.com/netwatch-labs/causalnet/internal/types"
)

// Pipeline composes the Event Ingester, Action Log, Correlator, and Chain
// Detector into the single surface spec.md §6 describes.
type Pipeline struct {
	Ingester   *ingest.Ingester
	Actions    *actionlog.Log
	correlator *correlate.Correlator
	detector   *chain.Detector
	log        *logrus.Entry
}

// New constructs a Pipeline. fetchBody may be nil if the caller never wants
// response bodies captured.
func New(cfg config.Config, fetchBody ingest.FetchBody, log *logrus.Entry) *Pipeline {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Pipeline{
		Ingester:   ingest.New(cfg, fetchBody, log.WithField("component", "ingest")),
		Actions:    actionlog.New(log.WithField("component", "actionlog")),
		correlator: correlate.New(cfg, log.WithField("component", "correlate")),
		detector:   chain.New(log.WithField("component", "chain")),
		log:        log,
	}
}

// RecordAction appends an action to the Action Log.
func (p *Pipeline) RecordAction(kind types.ActionKind, targetSelector, targetDescription, pageURL string, at time.Time) types.ActionRecord {
	return p.Actions.Record(kind, targetSelector, targetDescription, pageURL, at)
}

// Clear resets both the request store and the action log (spec.md §3
// "cleared together").
func (p *Pipeline) Clear() {
	p.Ingester.Clear()
	p.Actions.Clear()
}

// CorrelateAction attributes every unattributed finalized request, then
// returns the result for actionID, with its chains filled in by the Chain
// Detector, or nil if that action matched no requests.
func (p *Pipeline) CorrelateAction(actionID string) *types.CorrelationResult {
	results := p.correlateAllLocked()
	for i := range results {
		if results[i].Action.ID == actionID {
			return &results[i]
		}
	}
	return nil
}

// CorrelateAll attributes every unattributed finalized request and returns
// one CorrelationResult per action that matched at least one request, each
// with its chains filled in by the Chain Detector.
func (p *Pipeline) CorrelateAll() []types.CorrelationResult {
	return p.correlateAllLocked()
}

func (p *Pipeline) correlateAllLocked() []types.CorrelationResult {
	actions := p.Actions.GetAll()
	var results []types.CorrelationResult
	p.Ingester.WithRecordsForAttribution(func(records []*types.RequestRecord) {
		results = p.correlator.CorrelateAll(records, actions)
	})
	for i := range results {
		reqIDs := make([]string, len(results[i].Requests))
		for j, r := range results[i].Requests {
			reqIDs[j] = r.ID
		}
		p.Actions.SetResultingRequestIDs(results[i].Action.ID, reqIDs)
		results[i].Chains = p.detector.Detect(results[i].Requests)
	}
	return results
}

// GetStats exposes the ingester's store statistics, plus the action log's
// count (spec.md §6 getStats → totalRequests, pendingRequests, totalActions).
func (p *Pipeline) GetStats() ingest.Stats {
	stats := p.Ingester.GetStats()
	stats.TotalActions = p.Actions.Count()
	return stats
}
