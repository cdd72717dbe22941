package toast

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestQueueDrainOnce(t *testing.T) {
	q := NewQueue(0)
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return stamp }

	q.Success("Saved", "Properties updated")
	q.Push(Toast{Title: "Plain"})

	want := []Toast{
		{Level: LevelSuccess, Title: "Saved", Description: "Properties updated", CreatedAt: stamp},
		{Level: LevelInfo, Title: "Plain", CreatedAt: stamp},
	}
	if diff := cmp.Diff(want, q.Drain()); diff != "" {
		t.Fatalf("drain mismatch (-want +got):\n%s", diff)
	}
	if got := q.Drain(); len(got) != 0 {
		t.Fatalf("toasts must be delivered once, got %v", got)
	}
}

func TestQueueDropsOldest(t *testing.T) {
	q := NewQueue(2)
	q.Info("one", "")
	q.Info("two", "")
	q.Error("three", "")

	got := q.Drain()
	if len(got) != 2 || got[0].Title != "two" || got[1].Title != "three" {
		t.Fatalf("unexpected queue contents: %+v", got)
	}
}

func TestNilQueue(t *testing.T) {
	var q *Queue
	q.Info("ignored", "")
	if q.Len() != 0 || q.Drain() != nil {
		t.Fatalf("nil queue should be inert")
	}
}
