// record.go — Request Record and its nested value types.
// Zero dependencies — foundational types shared by ingest, correlate, chain, and query.
package types

import (
	"strings"
	"time"
)

// ResourceKind classifies a request by what it was for.
type ResourceKind string

const (
	KindDocument   ResourceKind = "document"
	KindStylesheet ResourceKind = "stylesheet"
	KindScript     ResourceKind = "script"
	KindImage      ResourceKind = "image"
	KindFont       ResourceKind = "font"
	KindXHR        ResourceKind = "xhr"
	KindFetch      ResourceKind = "fetch"
	KindWebSocket  ResourceKind = "websocket"
	KindOther      ResourceKind = "other"
)

// InitiatorKind discriminates what triggered a request at the protocol level.
type InitiatorKind string

const (
	InitiatorParser    InitiatorKind = "parser"
	InitiatorScript    InitiatorKind = "script"
	InitiatorPreload   InitiatorKind = "preload"
	InitiatorPreflight InitiatorKind = "preflight"
	InitiatorOther     InitiatorKind = "other"
)

// AttributionMethod records which correlator layer produced an attribution.
type AttributionMethod string

const (
	MethodStackTrace    AttributionMethod = "stack_trace"
	MethodTimingSemantic AttributionMethod = "timing_semantic"
	MethodTimingOnly    AttributionMethod = "timing_only"
	MethodChain         AttributionMethod = "chain"
)

// CallFrame is one synchronous stack trace frame.
type CallFrame struct {
	FunctionName string
	URL          string
	LineNumber   int
	ColumnNumber int
}

// StackTrace is a synchronous frame list plus an optional async parent,
// mirroring how V8/CDP represent "async stack traces": a linked list of
// frame groups, each optionally carrying a human name like "click" when the
// group boundary is a user-event dispatch.
type StackTrace struct {
	Description string // e.g. "click" when this group was entered from a user-event dispatch
	CallFrames  []CallFrame
	Parent      *StackTrace
}

// RedirectHop is one prior hop coalesced into a request's redirect chain.
type RedirectHop struct {
	URL     string
	Status  int
	Headers map[string][]string
}

// Timing holds the wall-clock milestones for a request's lifecycle.
type Timing struct {
	StartTime    float64 // wall-clock ms
	ResponseTime float64 // wall-clock ms, 0 if never received
	EndTime      float64 // wall-clock ms
	DurationMS   float64
}

// Attribution records the correlator's verdict for a request, set at most once.
type Attribution struct {
	ActionID   string
	Confidence float64
	Method     AttributionMethod
}

// Initiator describes the origin of a request as reported by the debug source.
type Initiator struct {
	Kind                InitiatorKind
	Stack               *StackTrace
	SourceURL           string
	SourceLine          int
	SourceColumn         int
	PreflightTargetID   string // set when Kind == InitiatorPreflight
}

// RequestRecord is a single network exchange through its full lifecycle.
// Mutated in place by the correlator (Attribution fields only) after the
// ingester has finalized it; see ingest.Ingester for the pending/finalized
// transition this type does not enforce itself.
type RequestRecord struct {
	ID    string
	Index int64 // monotonic insertion-order index, assigned once on creation

	URL            string
	Method         string
	RequestHeaders map[string][]string
	RequestBody    string

	Status          int
	StatusText      string
	ResponseHeaders map[string][]string
	MediaType       string
	ResponseBody    string
	ResponseIsBase64 bool
	ResponseSize    int64

	Kind ResourceKind

	Initiator Initiator

	Timing Timing

	RedirectChain []RedirectHop

	PreflightFor       string // this record is a preflight for the named request ID
	PreflightRequestID string // the named request ID is this record's preflight

	Attribution *Attribution

	Failed    bool
	ErrorText string
}

// Duration returns EndTime - StartTime, matching Timing.DurationMS once finalized.
func (r *RequestRecord) Duration() time.Duration {
	return time.Duration(r.Timing.DurationMS * float64(time.Millisecond))
}

// HeaderValue returns the first value of a case-insensitive header lookup,
// matching HTTP's "first wins" convention used by the chain detector's
// Authorization-prefix search.
func HeaderValue(headers map[string][]string, name string) (string, bool) {
	for k, vs := range headers {
		if len(vs) == 0 {
			continue
		}
		if strings.EqualFold(k, name) {
			return vs[0], true
		}
	}
	return "", false
}
