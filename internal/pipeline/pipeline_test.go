package pipeline

import (
	"testing"
	"time"

	"github.com/netwatch-labs/causalnet/internal/config"
	"github.com/netwatch-labs/causalnet/internal/types"
)

func TestPipeline_ClickToXHREndToEnd(t *testing.T) {
	p := New(config.Default(), nil, nil)
	base := time.Now()

	action := p.RecordAction(types.ActionClick, "#go", "Go", "https://app.example.com", base)

	p.Ingester.IngestRequestSent(types.RequestSentEvent{
		ID: "r1", URL: "https://api.example.com/data", Method: "GET",
		WallTime: float64(base.UnixNano()) / 1e9, HasWallTime: true, MonotonicTime: 0,
		ResourceType: "xhr",
		Initiator: types.Initiator{
			Kind:  types.InitiatorScript,
			Stack: &types.StackTrace{Description: "click"},
		},
	})
	p.Ingester.IngestLoadingFinished(types.LoadingFinishedEvent{ID: "r1", MonotonicTime: 0.01})
	p.Ingester.WaitForPendingFetches()

	results := p.CorrelateAll()
	if len(results) != 1 {
		t.Fatalf("CorrelateAll() returned %d results, want 1", len(results))
	}
	if results[0].Action.ID != action.ID {
		t.Fatalf("Action.ID = %q, want %q", results[0].Action.ID, action.ID)
	}
	if len(results[0].Requests) != 1 || results[0].Requests[0].ID != "r1" {
		t.Fatalf("Requests = %+v, want [r1]", results[0].Requests)
	}

	got, ok := p.Actions.GetByID(action.ID)
	if !ok {
		t.Fatalf("action %q missing after correlation", action.ID)
	}
	if len(got.ResultingRequestIDs) != 1 || got.ResultingRequestIDs[0] != "r1" {
		t.Errorf("ResultingRequestIDs = %v, want [r1]", got.ResultingRequestIDs)
	}
}

func TestPipeline_ClearResetsBothStores(t *testing.T) {
	p := New(config.Default(), nil, nil)
	p.RecordAction(types.ActionClick, "", "", "", time.Now())
	p.Ingester.IngestRequestSent(types.RequestSentEvent{
		ID: "r1", URL: "https://example.com", Method: "GET",
		WallTime: float64(time.Now().UnixNano()) / 1e9, HasWallTime: true,
	})

	p.Clear()

	if p.GetStats().TotalRequests != 0 {
		t.Errorf("TotalRequests after Clear() = %d, want 0", p.GetStats().TotalRequests)
	}
	if p.Actions.Count() != 0 {
		t.Errorf("Actions.Count() after Clear() = %d, want 0", p.Actions.Count())
	}
}

func TestPipeline_GetStatsIncludesTotalActions(t *testing.T) {
	p := New(config.Default(), nil, nil)
	p.RecordAction(types.ActionClick, "", "", "", time.Now())
	p.RecordAction(types.ActionClick, "", "", "", time.Now())

	if got := p.GetStats().TotalActions; got != 2 {
		t.Errorf("TotalActions = %d, want 2", got)
	}
}

func TestPipeline_CorrelateActionUnknownReturnsNil(t *testing.T) {
	p := New(config.Default(), nil, nil)
	if got := p.CorrelateAction("does-not-exist"); got != nil {
		t.Fatalf("CorrelateAction() = %+v, want nil", got)
	}
}
