package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewCachedCatalogRequiresSource(t *testing.T) {
	if _, err := NewCachedCatalog(CachedCatalogDeps{}); err == nil {
		t.Fatal("expected error when source missing")
	}
}

func TestCachedCatalogServesWithinTTL(t *testing.T) {
	source := &stubCatalogProvider{snapshot: testSnapshot()}
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	cache, err := NewCachedCatalog(CachedCatalogDeps{
		Source: source,
		TTL:    time.Minute,
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cache.Snapshot(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := source.callCount(); got != 1 {
		t.Fatalf("expected a single source load, got %d", got)
	}

	now = now.Add(time.Minute)
	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := source.callCount(); got != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", got)
	}

	cache.Invalidate()
	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := source.callCount(); got != 3 {
		t.Fatalf("expected reload after invalidate, got %d calls", got)
	}
}

func TestCachedCatalogZeroTTLAlwaysLoads(t *testing.T) {
	source := &stubCatalogProvider{snapshot: testSnapshot()}
	cache, err := NewCachedCatalog(CachedCatalogDeps{Source: source})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := cache.Snapshot(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := source.callCount(); got != 2 {
		t.Fatalf("expected every call to hit the source, got %d", got)
	}
}

func TestCachedCatalogServesStaleSnapshotOnRefreshFailure(t *testing.T) {
	source := &stubCatalogProvider{snapshot: testSnapshot()}
	logger := &recordingLogger{}
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	cache, err := NewCachedCatalog(CachedCatalogDeps{
		Source: source,
		TTL:    time.Second,
		Now:    func() time.Time { return now },
		Logger: logger.log,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if err := cache.Ready(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	source.setErr(errors.New("unavailable"))
	now = now.Add(time.Hour)
	snap, err := cache.Snapshot(ctx)
	if err != nil {
		t.Fatalf("expected stale snapshot, got error %v", err)
	}
	if _, ok := snap.Package("wedding", "w-classic"); !ok {
		t.Fatal("expected stale snapshot contents")
	}
	entry, ok := logger.find("catalog.refresh_failed")
	if !ok || entry.fields["servingStale"] != true {
		t.Fatalf("expected refresh failure log, got %+v", entry)
	}

	cache.Invalidate()
	if err := cache.Ready(ctx); err == nil {
		t.Fatal("expected readiness error once nothing is cached")
	}
}

func TestCachedCatalogConcurrentSnapshots(t *testing.T) {
	source := &stubCatalogProvider{snapshot: testSnapshot()}
	cache, err := NewCachedCatalog(CachedCatalogDeps{Source: source, TTL: time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Snapshot(context.Background()); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if source.callCount() == 0 {
		t.Fatal("expected at least one source load")
	}
}
