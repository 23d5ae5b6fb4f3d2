// actionlog.go — Action Log (spec.md §4.2): an append-only record of
// user/agent actions with monotonic IDs, readable by ID or by time window.
//
// Grounded on internal/capture/enhanced_actions.go's append-then-tag ring
// buffer, generalized from a bounded ring buffer to an unbounded append-only
// log — the spec calls the Action Log append-only within a session with no
// capacity bound, unlike the teacher's MaxEnhancedActions=50 ring buffer.
package actionlog

import (
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/netwatch-labs/causalnet/internal/types"
)

// Log is a thread-safe, append-only action log.
type Log struct {
	mu      sync.RWMutex
	log     *logrus.Entry
	actions []types.ActionRecord
	nextID  int64
}

// New constructs an empty Log.
func New(log *logrus.Entry) *Log {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Log{log: log}
}

// Record appends a new action, assigning it a monotonic ID and index. The
// caller-supplied Timestamp and PageURL are preserved; ID/Index/
// ResultingRequestIDs are owned by the log.
func (l *Log) Record(kind types.ActionKind, targetSelector, targetDescription string, pageURL string, at time.Time) types.ActionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	rec := types.ActionRecord{
		ID:                strconv.FormatInt(l.nextID, 10),
		Index:             l.nextID,
		Kind:              kind,
		TargetSelector:    targetSelector,
		TargetDescription: targetDescription,
		Timestamp:         at,
		PageURL:           pageURL,
	}
	l.actions = append(l.actions, rec)
	return rec
}

// GetAll returns every recorded action, in recording order.
func (l *Log) GetAll() []types.ActionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.ActionRecord, len(l.actions))
	copy(out, l.actions)
	return out
}

// GetByID returns the action with the given ID, if present.
func (l *Log) GetByID(id string) (types.ActionRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, a := range l.actions {
		if a.ID == id {
			return a, true
		}
	}
	return types.ActionRecord{}, false
}

// GetByWindow returns actions with Timestamp in [from, to].
func (l *Log) GetByWindow(from, to time.Time) []types.ActionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.ActionRecord, 0)
	for _, a := range l.actions {
		if (a.Timestamp.Equal(from) || a.Timestamp.After(from)) && (a.Timestamp.Equal(to) || a.Timestamp.Before(to)) {
			out = append(out, a)
		}
	}
	return out
}

// SetResultingRequestIDs writes the correlator's attribution result back
// onto an action (spec.md §4.2 "the correlator reads the list and writes
// resultingRequestIds back onto an action when attribution completes").
func (l *Log) SetResultingRequestIDs(actionID string, requestIDs []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.actions {
		if l.actions[i].ID == actionID {
			l.actions[i].ResultingRequestIDs = requestIDs
			l.log.WithField("action_id", actionID).WithField("count", len(requestIDs)).Debug("recorded resulting request ids")
			return
		}
	}
}

// Clear discards every recorded action (spec.md §3 "cleared together with the request store").
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = nil
}

// Count returns the number of recorded actions.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.actions)
}
