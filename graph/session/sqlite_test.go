package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore[testState] {
	t.Helper()
	store, err := NewSQLiteStore[testState](filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	want := testState{Name: "carol", Score: 45, Warnings: []string{"a", "b"}}
	if err := store.Save(ctx, "sess-1", want, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Name != want.Name || got.Score != want.Score || len(got.Warnings) != 2 {
		t.Errorf("loaded state mismatch: %+v", got)
	}
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	_ = store.Save(ctx, "sess-1", testState{Name: "v1"}, time.Minute)
	if err := store.Save(ctx, "sess-1", testState{Name: "v2"}, time.Minute); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Name != "v2" {
		t.Errorf("overwrite not applied: %+v", got)
	}
}

func TestSQLiteStoreNotFound(t *testing.T) {
	store := newTestSQLiteStore(t)
	_, err := store.Load(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Save(ctx, "sess-1", testState{}, 30*time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	now = now.Add(31 * time.Minute)

	_, err := store.Load(ctx, "sess-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestSQLiteStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	_ = store.Save(ctx, "sess-1", testState{}, time.Minute)
	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	now := time.Now()
	store.now = func() time.Time { return now }

	_ = store.Save(ctx, "old", testState{}, time.Minute)
	_ = store.Save(ctx, "fresh", testState{}, time.Hour)
	_ = store.Save(ctx, "forever", testState{}, 0)
	now = now.Add(10 * time.Minute)

	dropped, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if dropped != 1 {
		t.Fatalf("expected 1 swept session, got %d", dropped)
	}
	if _, err := store.Load(ctx, "forever"); err != nil {
		t.Errorf("no-expiry session swept by mistake: %v", err)
	}
}

func TestSQLiteStoreClosed(t *testing.T) {
	store := newTestSQLiteStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Double close is a no-op.
	if err := store.Close(); err != nil {
		t.Fatalf("double close: %v", err)
	}
	if err := store.Save(context.Background(), "x", testState{}, 0); err == nil {
		t.Fatalf("expected error on save after close")
	}
}
