// ingester.go — Event Ingester: reconstructs request lifecycles from a
// stream of low-level debug events and maintains a bounded finalized store.
//
// Grounded on internal/capture/types.go's Capture struct (mutex-protected
// ring buffers, sub-struct composition, defaulted constructor) and
// internal/capture/network_bodies.go's FIFO-by-count eviction, generalized
// from byte-count/entry-count ring buffers to the lifecycle state machine
// spec.md §3-§4.1 describes: a pending (in-flight) set that feeds a
// finalized store once a request completes.
package ingest

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/netwatch-labs/causalnet/internal/config"
	"github.com/netwatch-labs/causalnet/internal/types"
)

// FetchBody is the caller-supplied response-body fetcher (spec.md §6). It is
// invoked only for text-like media types and only after loading-finished;
// returning a non-nil error or (nil, nil) is non-fatal — the record commits
// with no body either way.
type FetchBody func(requestID string) (*types.BodyFetchResult, error)

// Ingester consumes the four debug event kinds and exposes the finalized
// request store. All fields are protected by mu unless noted otherwise.
// Lock hierarchy: a single mutex guards pending, store, storeOrder, nextIndex,
// offsetKnown/offsetSecs, and generation together — there is no sub-lock, because unlike
// the teacher's Capture (which composes many independently-lockable
// subsystems) everything here participates in one lifecycle state machine
// and must move atomically with respect to Ingest/Query calls (spec.md §5).
type Ingester struct {
	mu  sync.RWMutex
	cfg config.Config
	log *logrus.Entry

	excludeMatchers []urlMatcher

	pending map[string]*types.RequestRecord

	store      map[string]*types.RequestRecord
	storeOrder []string // insertion order, front = oldest; doubles as FIFO eviction queue

	nextIndex int64

	offsetKnown bool
	offsetSecs  float64 // wallTime - monotonicTime, computed once from the first RequestSent

	generation int // bumped by Clear; stale body fetches compare against this

	fetchBody FetchBody
	fetchSem  chan struct{} // bounds concurrent body-fetch goroutines, mirrors capture-struct.go's observeSem
	fetchWG   sync.WaitGroup
}

const maxConcurrentBodyFetches = 4

// New constructs an Ingester. fetchBody may be nil, meaning no record ever
// waits on a body fetch (every finalization commits immediately).
func New(cfg config.Config, fetchBody FetchBody, log *logrus.Entry) *Ingester {
	if log == nil {
		log = discardLogger()
	}
	ing := &Ingester{
		cfg:             cfg,
		log:             log,
		excludeMatchers: compileMatchers(cfg.ExcludePatterns),
		pending:         make(map[string]*types.RequestRecord),
		store:           make(map[string]*types.RequestRecord),
		storeOrder:      make([]string, 0, cfg.MaxRequests),
		fetchBody:       fetchBody,
		fetchSem:        make(chan struct{}, maxConcurrentBodyFetches),
	}
	return ing
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(nopWriter{})
	return logrus.NewEntry(l)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// Clear discards the pending and finalized sets and bumps the generation
// counter so outstanding body fetches started before this call cannot
// commit afterward (spec.md §4.1 "Race with clear", §5 "Cancellation").
// Idempotent: clear(); clear() has the same effect as one clear().
func (ing *Ingester) Clear() {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	ing.pending = make(map[string]*types.RequestRecord)
	ing.store = make(map[string]*types.RequestRecord)
	ing.storeOrder = ing.storeOrder[:0]
	ing.generation++
}

// Stats summarizes the ingester's current state (spec.md §6 getStats, plus
// the byKind breakdown listed under SPEC_FULL.md SUPPLEMENTED FEATURES). TotalActions is filled in by
// Pipeline.GetStats, which has access to the Action Log; the ingester itself
// has no notion of actions.
type Stats struct {
	TotalRequests   int
	PendingRequests int
	TotalActions    int
	ByKind          map[types.ResourceKind]int
}

// GetStats returns a snapshot of store/pending sizes.
func (ing *Ingester) GetStats() Stats {
	ing.mu.RLock()
	defer ing.mu.RUnlock()
	byKind := make(map[types.ResourceKind]int, 8)
	for _, r := range ing.store {
		byKind[r.Kind]++
	}
	return Stats{
		TotalRequests:   len(ing.store),
		PendingRequests: len(ing.pending),
		ByKind:          byKind,
	}
}
