package actionlog

import (
	"testing"
	"time"

	"github.com/netwatch-labs/causalnet/internal/types"
)

func TestRecord_AssignsMonotonicIDsAndIndex(t *testing.T) {
	l := New(nil)

	a1 := l.Record(types.ActionClick, "#btn", "Click", "https://example.com", time.Now())
	a2 := l.Record(types.ActionNavigate, "", "Navigate", "https://example.com/next", time.Now())

	if a1.ID == a2.ID {
		t.Fatalf("expected distinct IDs, got %q twice", a1.ID)
	}
	if a2.Index <= a1.Index {
		t.Fatalf("Index = %d, want > %d", a2.Index, a1.Index)
	}
	if l.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", l.Count())
	}
}

func TestGetByID_UnknownReturnsFalse(t *testing.T) {
	l := New(nil)
	l.Record(types.ActionClick, "#btn", "Click", "https://example.com", time.Now())

	if _, ok := l.GetByID("does-not-exist"); ok {
		t.Fatalf("GetByID() ok = true, want false")
	}
}

func TestGetByWindow_InclusiveBounds(t *testing.T) {
	l := New(nil)
	base := time.Now()

	a1 := l.Record(types.ActionClick, "", "", "", base)
	a2 := l.Record(types.ActionClick, "", "", "", base.Add(time.Second))
	l.Record(types.ActionClick, "", "", "", base.Add(10*time.Second))

	got := l.GetByWindow(base, base.Add(time.Second))
	if len(got) != 2 {
		t.Fatalf("len(GetByWindow()) = %d, want 2", len(got))
	}
	if got[0].ID != a1.ID || got[1].ID != a2.ID {
		t.Fatalf("GetByWindow() returned wrong actions: %+v", got)
	}
}

func TestSetResultingRequestIDs_WritesBack(t *testing.T) {
	l := New(nil)
	a := l.Record(types.ActionClick, "", "", "", time.Now())

	l.SetResultingRequestIDs(a.ID, []string{"req-1", "req-2"})

	got, ok := l.GetByID(a.ID)
	if !ok {
		t.Fatalf("GetByID() ok = false after SetResultingRequestIDs")
	}
	if len(got.ResultingRequestIDs) != 2 {
		t.Fatalf("ResultingRequestIDs = %v, want 2 entries", got.ResultingRequestIDs)
	}
}

func TestClear_RemovesAllActions(t *testing.T) {
	l := New(nil)
	l.Record(types.ActionClick, "", "", "", time.Now())
	l.Record(types.ActionClick, "", "", "", time.Now())

	l.Clear()

	if l.Count() != 0 {
		t.Fatalf("Count() after Clear() = %d, want 0", l.Count())
	}
	if got := l.GetAll(); len(got) != 0 {
		t.Fatalf("GetAll() after Clear() = %v, want empty", got)
	}
}
