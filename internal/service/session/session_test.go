package session_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/telefiles/filestore-bot/internal/service/session"
)

func newManager() *session.Manager {
	return session.NewManager(time.Hour)
}

func TestFileStore_ConsumedOnce(t *testing.T) {
	sm := newManager()

	if sm.ConsumeFileStore(1) {
		t.Fatal("ConsumeFileStore on idle user returned true")
	}

	sm.ArmFileStore(1)
	if got := sm.Mode(1); got != session.ModeAwaitFile {
		t.Fatalf("Mode = %q, want %q", got, session.ModeAwaitFile)
	}

	if !sm.ConsumeFileStore(1) {
		t.Fatal("ConsumeFileStore on armed user returned false")
	}
	if sm.ConsumeFileStore(1) {
		t.Fatal("second ConsumeFileStore returned true")
	}
	if got := sm.Mode(1); got != session.ModeIdle {
		t.Fatalf("Mode after consume = %q, want %q", got, session.ModeIdle)
	}
}

func TestBatch_OrderPreserved(t *testing.T) {
	sm := newManager()

	if sm.AppendBatchItem(7, 100) {
		t.Fatal("AppendBatchItem without active batch returned true")
	}

	sm.StartBatch(7)
	for _, id := range []int{10, 20, 30} {
		if !sm.AppendBatchItem(7, id) {
			t.Fatalf("AppendBatchItem(%d) returned false", id)
		}
	}

	items, ok := sm.FinishBatch(7)
	if !ok {
		t.Fatal("FinishBatch returned ok=false")
	}
	if diff := cmp.Diff([]int{10, 20, 30}, items); diff != "" {
		t.Fatalf("batch items mismatch (-want +got):\n%s", diff)
	}

	if _, ok := sm.FinishBatch(7); ok {
		t.Fatal("second FinishBatch returned ok=true")
	}
}

func TestBatch_EmptyIsStillABatch(t *testing.T) {
	sm := newManager()

	sm.StartBatch(3)
	items, ok := sm.FinishBatch(3)
	if !ok {
		t.Fatal("FinishBatch returned ok=false for empty batch")
	}
	if len(items) != 0 {
		t.Fatalf("expected empty items, got %v", items)
	}
}

func TestArmFileStore_ReplacesBatch(t *testing.T) {
	sm := newManager()

	sm.StartBatch(5)
	sm.AppendBatchItem(5, 1)
	sm.ArmFileStore(5)

	if _, ok := sm.FinishBatch(5); ok {
		t.Fatal("FinishBatch returned ok=true after ArmFileStore replaced the batch")
	}
	if !sm.ConsumeFileStore(5) {
		t.Fatal("ConsumeFileStore returned false")
	}
}

func TestClear(t *testing.T) {
	sm := newManager()

	sm.StartBatch(9)
	sm.Clear(9)
	if got := sm.Mode(9); got != session.ModeIdle {
		t.Fatalf("Mode after Clear = %q, want %q", got, session.ModeIdle)
	}
}
