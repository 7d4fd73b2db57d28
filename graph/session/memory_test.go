package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testState struct {
	Name     string   `json:"name"`
	Score    float64  `json:"score"`
	Warnings []string `json:"warnings"`
}

func TestMemStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore[testState]()

	want := testState{Name: "alice", Score: 72.5, Warnings: []string{"w1"}}
	if err := store.Save(ctx, "sess-1", want, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Name != want.Name || got.Score != want.Score || len(got.Warnings) != 1 {
		t.Errorf("loaded state mismatch: %+v", got)
	}
}

func TestMemStoreNotFound(t *testing.T) {
	store := NewMemStore[testState]()
	_, err := store.Load(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore[testState]()
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Save(ctx, "sess-1", testState{Name: "bob"}, 30*time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	t.Run("before expiry", func(t *testing.T) {
		now = now.Add(29 * time.Minute)
		if _, err := store.Load(ctx, "sess-1"); err != nil {
			t.Fatalf("load before expiry: %v", err)
		}
	})

	t.Run("after expiry", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		_, err := store.Load(ctx, "sess-1")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after TTL, got %v", err)
		}
		if store.Len() != 0 {
			t.Errorf("expired entry not dropped on load")
		}
	})
}

func TestMemStoreNoExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore[testState]()
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Save(ctx, "sess-1", testState{}, 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	now = now.Add(1000 * time.Hour)
	if _, err := store.Load(ctx, "sess-1"); err != nil {
		t.Fatalf("zero ttl must not expire: %v", err)
	}
}

func TestMemStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore[testState]()

	if err := store.Save(ctx, "sess-1", testState{}, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// Deleting again is not an error.
	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("double delete: %v", err)
	}
}

func TestMemStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore[testState]()
	now := time.Now()
	store.now = func() time.Time { return now }

	_ = store.Save(ctx, "old", testState{}, time.Minute)
	_ = store.Save(ctx, "fresh", testState{}, time.Hour)
	now = now.Add(10 * time.Minute)

	if dropped := store.Sweep(); dropped != 1 {
		t.Fatalf("expected 1 swept session, got %d", dropped)
	}
	if _, err := store.Load(ctx, "fresh"); err != nil {
		t.Errorf("fresh session swept by mistake: %v", err)
	}
}

func TestMemStoreLoadIsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore[testState]()

	_ = store.Save(ctx, "sess-1", testState{Warnings: []string{"w"}}, time.Minute)
	first, _ := store.Load(ctx, "sess-1")
	first.Warnings[0] = "mutated"

	second, _ := store.Load(ctx, "sess-1")
	if second.Warnings[0] != "w" {
		t.Errorf("stored state aliased by loaded copy")
	}
}
