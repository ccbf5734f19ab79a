package memory_test

import (
	"context"
	"testing"
	"time"

	"quiz-battle/internal/infra/memory"
)

func TestProgressStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore(time.Hour)

	if err := store.MarkAnswered(ctx, "p1", []string{"q1", "q2"}); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	recent, err := store.Recent(ctx, "p1")
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(recent) != 2 || !recent["q1"] || !recent["q2"] {
		t.Fatalf("unexpected recent set: %v", recent)
	}

	// Another player's cooldown is independent.
	other, err := store.Recent(ctx, "p2")
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("cooldown leaked across players: %v", other)
	}
}

func TestProgressStoreExpiresEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewProgressStoreWithClock(time.Hour, func() time.Time { return now })

	if err := store.MarkAnswered(ctx, "p1", []string{"q1"}); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	now = now.Add(30 * time.Minute)
	if recent, _ := store.Recent(ctx, "p1"); !recent["q1"] {
		t.Fatalf("entry expired too early")
	}

	now = now.Add(31 * time.Minute)
	if recent, _ := store.Recent(ctx, "p1"); len(recent) != 0 {
		t.Fatalf("entry survived its TTL: %v", recent)
	}
}

func TestProgressStoreEmptyMarkIsNoop(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore(time.Hour)

	if err := store.MarkAnswered(ctx, "p1", nil); err != nil {
		t.Fatalf("empty mark failed: %v", err)
	}
	if recent, _ := store.Recent(ctx, "p1"); len(recent) != 0 {
		t.Fatalf("empty mark created entries: %v", recent)
	}
}
