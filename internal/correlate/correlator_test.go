package correlate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netwatch-labs/causalnet/internal/config"
	"github.com/netwatch-labs/causalnet/internal/types"
)

func msTime(base time.Time, offsetMS float64) float64 {
	return float64(base.UnixNano())/1e6 + offsetMS
}

func TestLayer1_StackTraceAttributesClickToXHR(t *testing.T) {
	base := time.Now()
	action := types.ActionRecord{ID: "a1", Index: 1, Kind: types.ActionClick, Timestamp: base}
	rec := &types.RequestRecord{
		ID: "r1", Index: 1, Method: "GET", Kind: types.KindXHR,
		Timing: types.Timing{StartTime: msTime(base, 5)},
		Initiator: types.Initiator{
			Kind: types.InitiatorScript,
			Stack: &types.StackTrace{
				CallFrames: []types.CallFrame{{FunctionName: "onClick"}},
				Parent:     &types.StackTrace{Description: "click"},
			},
		},
	}

	c := New(config.Default(), nil)
	results := c.CorrelateAll([]*types.RequestRecord{rec}, []types.ActionRecord{action})

	require.Len(t, results, 1)
	require.NotNil(t, rec.Attribution)
	assert.Equal(t, "a1", rec.Attribution.ActionID)
	assert.Equal(t, types.MethodStackTrace, rec.Attribution.Method)
	assert.GreaterOrEqual(t, rec.Attribution.Confidence, 0.85)
}

func TestLayer1_TieBreaksTowardEarlierCreatedAction(t *testing.T) {
	base := time.Now()
	early := types.ActionRecord{ID: "early", Index: 1, Kind: types.ActionClick, Timestamp: base.Add(-5 * time.Millisecond)}
	late := types.ActionRecord{ID: "late", Index: 2, Kind: types.ActionClick, Timestamp: base.Add(5 * time.Millisecond)}
	rec := &types.RequestRecord{
		ID: "r1", Index: 1,
		Timing: types.Timing{StartTime: msTime(base, 0)},
		Initiator: types.Initiator{
			Stack: &types.StackTrace{Description: "click"},
		},
	}

	c := New(config.Default(), nil)
	c.CorrelateAll([]*types.RequestRecord{rec}, []types.ActionRecord{late, early})

	require.NotNil(t, rec.Attribution)
	assert.Equal(t, "early", rec.Attribution.ActionID, "equal-distance tie should favor the earlier-created action")
}

func TestLayer0_PreflightInheritsTargetsAction(t *testing.T) {
	base := time.Now()
	actual := &types.RequestRecord{
		ID: "actual", Index: 1, Method: "POST",
		Timing:      types.Timing{StartTime: msTime(base, 0)},
		Attribution: &types.Attribution{ActionID: "a1", Confidence: 0.9, Method: types.MethodStackTrace},
	}
	preflight := &types.RequestRecord{
		ID: "preflight", Index: 2, Method: "OPTIONS",
		Timing:     types.Timing{StartTime: msTime(base, -1)},
		PreflightFor: "actual",
		Initiator:  types.Initiator{Kind: types.InitiatorPreflight, PreflightTargetID: "actual"},
	}
	action := types.ActionRecord{ID: "a1", Index: 1, Kind: types.ActionClick, Timestamp: base}

	c := New(config.Default(), nil)
	c.CorrelateAll([]*types.RequestRecord{actual, preflight}, []types.ActionRecord{action})

	require.NotNil(t, preflight.Attribution)
	assert.Equal(t, "a1", preflight.Attribution.ActionID)
	assert.Equal(t, types.MethodChain, preflight.Attribution.Method)
	assert.Equal(t, 0.85, preflight.Attribution.Confidence)
}

func TestLayer23_TimingSemanticScoresLoginSubmit(t *testing.T) {
	base := time.Now()
	action := types.ActionRecord{
		ID: "a1", Index: 1, Kind: types.ActionSubmit,
		TargetDescription: "Log in", TargetSelector: "#login-form",
		Timestamp: base,
	}
	rec := &types.RequestRecord{
		ID: "r1", Index: 1, Method: "POST", URL: "https://api.example.com/auth/login",
		Timing: types.Timing{StartTime: msTime(base, 20)},
	}

	c := New(config.Default(), nil)
	c.CorrelateAll([]*types.RequestRecord{rec}, []types.ActionRecord{action})

	require.NotNil(t, rec.Attribution)
	assert.Equal(t, "a1", rec.Attribution.ActionID)
	assert.Equal(t, types.MethodTimingSemantic, rec.Attribution.Method)
	assert.GreaterOrEqual(t, rec.Attribution.Confidence, 0.5)
}

func TestLayer23_BackgroundURLIsPenalized(t *testing.T) {
	base := time.Now()
	action := types.ActionRecord{ID: "a1", Index: 1, Kind: types.ActionClick, Timestamp: base}
	rec := &types.RequestRecord{
		ID: "r1", Index: 1, Method: "POST", URL: "https://www.google-analytics.com/collect",
		Timing: types.Timing{StartTime: msTime(base, 100)},
	}

	// Proximity alone is 0.35*exp(-100/150) ≈ 0.18, above the 0.05 floor; the
	// 0.20 background penalty is what pushes it below.
	c := New(config.Apply(config.WithMinConfidence(0.05)), nil)
	c.CorrelateAll([]*types.RequestRecord{rec}, []types.ActionRecord{action})

	assert.Nil(t, rec.Attribution, "an analytics-flavored request should be penalized below the confidence floor")
}

func TestLayer4_TemporalChainInheritsFromRecentParent(t *testing.T) {
	base := time.Now()
	parent := &types.RequestRecord{
		ID: "parent", Index: 1,
		Timing:      types.Timing{StartTime: msTime(base, 0), EndTime: msTime(base, 10)},
		Attribution: &types.Attribution{ActionID: "a1", Confidence: 0.9, Method: types.MethodStackTrace},
	}
	child := &types.RequestRecord{
		ID: "child", Index: 2, URL: "https://api.example.com/unrelated",
		Timing: types.Timing{StartTime: msTime(base, 50)},
	}
	// No action list entry qualifies this request via layers 1-3.
	action := types.ActionRecord{ID: "a1", Index: 1, Kind: types.ActionAgentAction, Timestamp: base.Add(-time.Hour)}

	c := New(config.Default(), nil)
	c.CorrelateAll([]*types.RequestRecord{parent, child}, []types.ActionRecord{action})

	require.NotNil(t, child.Attribution)
	assert.Equal(t, "a1", child.Attribution.ActionID)
	assert.Equal(t, types.MethodChain, child.Attribution.Method)
	assert.Equal(t, 0.5, child.Attribution.Confidence)
}

func TestCorrelateAll_GroupsByActionAndAggregatesConfidence(t *testing.T) {
	base := time.Now()
	action := types.ActionRecord{ID: "a1", Index: 1, Kind: types.ActionClick, Timestamp: base}
	rec1 := &types.RequestRecord{
		ID: "r1", Index: 1,
		Timing:    types.Timing{StartTime: msTime(base, 2)},
		Initiator: types.Initiator{Stack: &types.StackTrace{Description: "click"}},
	}
	rec2 := &types.RequestRecord{
		ID: "r2", Index: 2,
		Timing:    types.Timing{StartTime: msTime(base, 4)},
		Initiator: types.Initiator{Stack: &types.StackTrace{Description: "click"}},
	}

	c := New(config.Default(), nil)
	results := c.CorrelateAll([]*types.RequestRecord{rec1, rec2}, []types.ActionRecord{action})

	require.Len(t, results, 1)
	assert.Equal(t, "a1", results[0].Action.ID)
	assert.Len(t, results[0].Requests, 2)
	assert.Greater(t, results[0].AggregateConfidence, 0.0)
}

func TestCorrelateAction_ReturnsNilWhenActionUnmatched(t *testing.T) {
	base := time.Now()
	action := types.ActionRecord{ID: "a1", Index: 1, Kind: types.ActionClick, Timestamp: base}
	rec := &types.RequestRecord{ID: "r1", Index: 1, Timing: types.Timing{StartTime: msTime(base, 5000)}}

	c := New(config.Default(), nil)
	got := c.CorrelateAction("a1", []*types.RequestRecord{rec}, []types.ActionRecord{action})

	assert.Nil(t, got)
}
