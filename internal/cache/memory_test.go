package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
)

func entryWith(ids ...string) Entry {
	e := Entry{CreatedAt: time.Now(), TotalCount: len(ids)}
	for _, id := range ids {
		e.Results = append(e.Results, domain.ScoredItem{
			CatalogItem: domain.CatalogItem{ID: id, Title: id, Catalog: catalog.Film},
		})
	}
	return e
}

func TestKey_CatalogOrderIrrelevant(t *testing.T) {
	a := Key("dune", []catalog.Tag{catalog.Film, catalog.Book}, 20)
	b := Key("dune", []catalog.Tag{catalog.Book, catalog.Film}, 20)
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
	c := Key("dune", []catalog.Tag{catalog.Book, catalog.Film}, 10)
	if a == c {
		t.Error("different limit should change the key")
	}
}

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory(time.Minute, 10, time.Minute)
	defer m.Close()
	ctx := context.Background()

	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("empty cache should miss")
	}

	_ = m.Set(ctx, "k", entryWith("a", "b"))
	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.TotalCount != 2 || len(got.Results) != 2 {
		t.Errorf("unexpected entry: %+v", got)
	}
}

func TestMemory_ExpiredGetBehavesAsMiss(t *testing.T) {
	m := NewMemory(10*time.Millisecond, 10, time.Hour)
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "k", entryWith("a"))
	time.Sleep(20 * time.Millisecond)

	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("expired entry must behave as a miss")
	}
	if m.Len() != 0 {
		t.Errorf("expired entry should be removed on Get, len=%d", m.Len())
	}
}

func TestMemory_LRUEviction(t *testing.T) {
	m := NewMemory(time.Minute, 2, time.Hour)
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "a", entryWith("a"))
	_ = m.Set(ctx, "b", entryWith("b"))

	// Touch "a" so "b" holds the oldest last-access.
	if _, ok, _ := m.Get(ctx, "a"); !ok {
		t.Fatal("expected hit on a")
	}

	_ = m.Set(ctx, "c", entryWith("c"))

	if _, ok, _ := m.Get(ctx, "b"); ok {
		t.Error("b should have been evicted as least recently used")
	}
	if _, ok, _ := m.Get(ctx, "a"); !ok {
		t.Error("a should survive eviction")
	}
	if _, ok, _ := m.Get(ctx, "c"); !ok {
		t.Error("c should be present")
	}
}

func TestMemory_SweepRemovesExpired(t *testing.T) {
	m := NewMemory(5*time.Millisecond, 10, time.Hour)
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "k", entryWith("a"))
	time.Sleep(10 * time.Millisecond)
	m.sweep()

	if m.Len() != 0 {
		t.Errorf("sweep should remove expired entries, len=%d", m.Len())
	}
}

func TestMemory_Clear(t *testing.T) {
	m := NewMemory(time.Minute, 10, time.Hour)
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "a", entryWith("a"))
	_ = m.Set(ctx, "b", entryWith("b"))
	_ = m.Clear(ctx)

	if m.Len() != 0 {
		t.Errorf("clear should empty the cache, len=%d", m.Len())
	}
}

func TestMemory_SetRefreshesExisting(t *testing.T) {
	m := NewMemory(time.Minute, 10, time.Hour)
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "k", entryWith("a"))
	_ = m.Set(ctx, "k", entryWith("a", "b", "c"))

	got, ok, _ := m.Get(ctx, "k")
	if !ok || got.TotalCount != 3 {
		t.Errorf("expected refreshed entry with 3 results, got %+v ok=%v", got, ok)
	}
	if m.Len() != 1 {
		t.Errorf("re-set should not duplicate, len=%d", m.Len())
	}
}
