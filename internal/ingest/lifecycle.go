// lifecycle.go — The four debug-event handlers (spec.md §4.1): redirect
// coalescing, preflight pairing under out-of-order delivery, and the
// pending -> finalized transition.
package ingest

import (
	"strconv"
	"strings"

	"github.com/netwatch-labs/causalnet/internal/types"
)

func copyHeaders(h map[string][]string) map[string][]string {
	if h == nil {
		return map[string][]string{}
	}
	out := make(map[string][]string, len(h))
	for k, vs := range h {
		cp := make([]string, len(vs))
		copy(cp, vs)
		out[k] = cp
	}
	return out
}

func mapResourceKind(raw string) types.ResourceKind {
	switch strings.ToLower(raw) {
	case "document":
		return types.KindDocument
	case "stylesheet", "css":
		return types.KindStylesheet
	case "script":
		return types.KindScript
	case "image":
		return types.KindImage
	case "font":
		return types.KindFont
	case "xhr":
		return types.KindXHR
	case "fetch":
		return types.KindFetch
	case "websocket":
		return types.KindWebSocket
	default:
		return types.KindOther
	}
}

func mapInitiator(in types.Initiator) types.Initiator {
	if in.Kind == "" {
		in.Kind = types.InitiatorOther
	}
	return in
}

// IngestRequestSent applies a RequestSent event (spec.md §4.1 item 1).
func (ing *Ingester) IngestRequestSent(ev types.RequestSentEvent) {
	if ev.ID == "" || ev.URL == "" {
		ing.log.WithField("event", "request_sent").Debug("dropping malformed event: missing id or url")
		return
	}
	if matchesAny(ing.excludeMatchers, ev.URL) {
		ing.log.WithField("url", ev.URL).Debug("dropping excluded request-sent event")
		return
	}

	ing.mu.Lock()
	defer ing.mu.Unlock()

	if !ing.offsetKnown {
		if !ev.HasWallTime {
			ing.log.Warn("dropping first request-sent event: missing wall time, cannot establish time base")
			return
		}
		ing.learnOffsetLocked(ev.WallTime, ev.MonotonicTime)
	}
	start := ing.projectLocked(ev.MonotonicTime)

	if existing, ok := ing.pending[ev.ID]; ok {
		if ev.Redirect == nil {
			ing.log.WithField("request_id", ev.ID).Debug("dropping duplicate request-sent without redirect marker")
			return
		}
		// Redirect coalescing (spec.md §4.1 "Redirect coalescing"): no new slot.
		existing.RedirectChain = append(existing.RedirectChain, types.RedirectHop{
			URL:     existing.URL,
			Status:  ev.Redirect.Status,
			Headers: copyHeaders(ev.Redirect.Headers),
		})
		existing.URL = ev.URL
		existing.Method = ev.Method
		existing.RequestHeaders = copyHeaders(ev.Headers)
		if ev.HasPostData {
			existing.RequestBody = ev.PostData
		}
		existing.Timing.StartTime = start
		return
	}

	rec := &types.RequestRecord{
		ID:             ev.ID,
		Index:          ing.nextIndex,
		URL:            ev.URL,
		Method:         ev.Method,
		RequestHeaders: copyHeaders(ev.Headers),
		Kind:           mapResourceKind(ev.ResourceType),
		Initiator:      mapInitiator(ev.Initiator),
		Timing:         types.Timing{StartTime: start},
	}
	ing.nextIndex++
	if ev.HasPostData {
		rec.RequestBody = ev.PostData
	}
	ing.pending[ev.ID] = rec

	// Preflight pairing (spec.md §4.1 "Preflight pairing"), both directions.
	if rec.Initiator.Kind == types.InitiatorPreflight && rec.Initiator.PreflightTargetID != "" {
		rec.PreflightFor = rec.Initiator.PreflightTargetID
		if target, ok := ing.pending[rec.PreflightFor]; ok {
			target.PreflightRequestID = rec.ID
		} else if target, ok := ing.store[rec.PreflightFor]; ok {
			target.PreflightRequestID = rec.ID
		}
	} else {
		for _, p := range ing.pending {
			if p.PreflightFor == rec.ID {
				rec.PreflightRequestID = p.ID
				break
			}
		}
		if rec.PreflightRequestID == "" {
			for _, f := range ing.store {
				if f.PreflightFor == rec.ID {
					rec.PreflightRequestID = f.ID
					break
				}
			}
		}
	}
}

// IngestResponseReceived applies a ResponseReceived event (spec.md §4.1 item 2).
func (ing *Ingester) IngestResponseReceived(ev types.ResponseReceivedEvent) {
	if ev.ID == "" {
		return
	}
	ing.mu.Lock()
	defer ing.mu.Unlock()

	rec, ok := ing.pending[ev.ID]
	if !ok {
		ing.log.WithField("request_id", ev.ID).Debug("dropping response-received for unknown request id")
		return
	}
	rec.Status = ev.Status
	rec.StatusText = ev.StatusText
	rec.ResponseHeaders = copyHeaders(ev.Headers)
	rec.MediaType = ev.MimeType
	if ev.ResourceType != "" {
		rec.Kind = mapResourceKind(ev.ResourceType)
	}
	if ing.offsetKnown {
		rec.Timing.ResponseTime = ing.projectLocked(ev.MonotonicTime)
	}
}

// textLikeExclusions lists the media-type prefixes/substrings that skip the
// body fetch callback entirely (spec.md §4.1 "Finalization").
var textLikeExclusions = []string{"image/", "video/", "audio/", "font", "wasm"}

func isBinaryMediaType(mediaType string) bool {
	mt := strings.ToLower(mediaType)
	for _, excl := range textLikeExclusions {
		if strings.Contains(mt, excl) {
			return true
		}
	}
	return false
}

// IngestLoadingFinished applies a LoadingFinished event (spec.md §4.1 "Finalization").
func (ing *Ingester) IngestLoadingFinished(ev types.LoadingFinishedEvent) {
	if ev.ID == "" {
		return
	}
	ing.mu.Lock()

	rec, ok := ing.pending[ev.ID]
	if !ok {
		ing.mu.Unlock()
		ing.log.WithField("request_id", ev.ID).Debug("dropping loading-finished for unknown request id")
		return
	}
	if ing.offsetKnown {
		end := ing.projectLocked(ev.MonotonicTime)
		rec.Timing.EndTime = end
		rec.Timing.DurationMS = end - rec.Timing.StartTime
	}
	rec.ResponseSize = ev.EncodedDataLength

	shouldFetch := ing.fetchBody != nil && !isBinaryMediaType(rec.MediaType)
	if !shouldFetch {
		ing.commitLocked(rec)
		ing.mu.Unlock()
		return
	}

	gen := ing.generation
	id := rec.ID
	ing.fetchWG.Add(1)
	ing.mu.Unlock()

	go ing.resolveBodyFetch(id, gen)
}

// resolveBodyFetch runs the caller's fetchBody callback outside the lock and
// commits the record afterward, guarding against a Clear() that happened in
// the meantime (spec.md §4.1 "Race with clear").
func (ing *Ingester) resolveBodyFetch(id string, gen int) {
	defer ing.fetchWG.Done()

	ing.fetchSem <- struct{}{}
	result, err := ing.fetchBody(id)
	<-ing.fetchSem

	ing.mu.Lock()
	defer ing.mu.Unlock()

	if gen != ing.generation {
		return // stale: a Clear() happened while the fetch was in flight
	}
	rec, ok := ing.pending[id]
	if !ok {
		return
	}
	if err == nil && result != nil {
		applyBody(rec, result, ing.cfg.MaxResponseBodySize)
	} else if err != nil {
		ing.log.WithField("request_id", id).WithError(err).Debug("body fetch failed, committing without body")
	}
	ing.commitLocked(rec)
}

const truncationMarker = "... [truncated]"

func applyBody(rec *types.RequestRecord, result *types.BodyFetchResult, maxSize int) {
	if result.Base64Encoded {
		rec.ResponseBody = base64Placeholder(len(result.Body))
		rec.ResponseIsBase64 = true
		return
	}
	body := result.Body
	if maxSize > 0 && len(body) > maxSize {
		body = body[:maxSize] + truncationMarker
	}
	rec.ResponseBody = body
}

func base64Placeholder(n int) string {
	return "[base64 encoded, " + strconv.Itoa(n) + " chars]"
}

// IngestLoadingFailed applies a LoadingFailed event (spec.md §4.1 "On LoadingFailed").
func (ing *Ingester) IngestLoadingFailed(ev types.LoadingFailedEvent) {
	if ev.ID == "" {
		return
	}
	ing.mu.Lock()
	defer ing.mu.Unlock()

	rec, ok := ing.pending[ev.ID]
	if !ok {
		ing.log.WithField("request_id", ev.ID).Debug("dropping loading-failed for unknown request id")
		return
	}
	rec.Failed = true
	rec.ErrorText = ev.ErrorText
	if rec.Status == 0 {
		rec.StatusText = ev.ErrorText
	}
	if ing.offsetKnown {
		end := ing.projectLocked(ev.MonotonicTime)
		rec.Timing.EndTime = end
		rec.Timing.DurationMS = end - rec.Timing.StartTime
	}
	ing.commitLocked(rec)
}

// commitLocked moves a record from pending to the finalized store, evicting
// the oldest entry by insertion order if the store is now over capacity
// (spec.md §3 "the store contains at most MaxRequests records"). Must be
// called with ing.mu held.
func (ing *Ingester) commitLocked(rec *types.RequestRecord) {
	delete(ing.pending, rec.ID)
	ing.store[rec.ID] = rec
	ing.storeOrder = append(ing.storeOrder, rec.ID)
	if ing.cfg.MaxRequests > 0 && len(ing.storeOrder) > ing.cfg.MaxRequests {
		oldest := ing.storeOrder[0]
		ing.storeOrder = ing.storeOrder[1:]
		delete(ing.store, oldest)
	}
}

// WaitForPendingFetches blocks until every in-flight body fetch goroutine
// has committed or dropped its record. Used by the tests and the demo
// harness to make ingestion synchronous before reading the store.
func (ing *Ingester) WaitForPendingFetches() {
	ing.fetchWG.Wait()
}
