package sdk

import (
	"context"
	"testing"

	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
)

type fixedAdapter struct {
	tag   catalog.Tag
	items []domain.CatalogItem
}

func (a *fixedAdapter) Tag() catalog.Tag { return a.tag }

func (a *fixedAdapter) Search(context.Context, string, int) ([]domain.CatalogItem, error) {
	return a.items, nil
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(
		WithAdapter(&fixedAdapter{tag: catalog.Film, items: []domain.CatalogItem{
			{ID: "f1", Title: "Dune", Catalog: catalog.Film, Year: 2021, Rating: 8.0},
		}}),
		WithAdapter(&fixedAdapter{tag: catalog.Book, items: []domain.CatalogItem{
			{ID: "b1", Title: "Dune", Catalog: catalog.Book, Year: 1965, Rating: 9.0},
		}}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestNew_NoCatalogs(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error when no catalog is configured")
	}
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.Search(context.Background(), "dune")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.TotalCount != 2 {
		t.Fatalf("TotalCount = %d, want 2", resp.TotalCount)
	}
	for _, item := range resp.Results {
		if item.Score <= 0 {
			t.Errorf("%s %q: Score = %v, want > 0", item.Catalog, item.Title, item.Score)
		}
	}
}

func TestClient_SearchCategories(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.Search(context.Background(), "dune", Categories(CatalogBook))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.TotalCount != 1 {
		t.Fatalf("TotalCount = %d, want 1", resp.TotalCount)
	}
	if resp.Results[0].Catalog != CatalogBook {
		t.Errorf("catalog = %s, want book", resp.Results[0].Catalog)
	}
}

func TestClient_SearchCachesRepeats(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	first, err := client.Search(ctx, "dune")
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	if first.FromCache {
		t.Error("first search should not come from cache")
	}

	second, err := client.Search(ctx, "dune")
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if !second.FromCache {
		t.Error("repeat search should come from cache")
	}

	stats := client.Stats()
	if stats.SearchCount != 2 {
		t.Errorf("SearchCount = %d, want 2", stats.SearchCount)
	}
	if stats.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", stats.CacheHits)
	}
}

func TestClient_ClearCache(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if _, err := client.Search(ctx, "dune"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if err := client.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}

	resp, err := client.Search(ctx, "dune")
	if err != nil {
		t.Fatalf("search after clear: %v", err)
	}
	if resp.FromCache {
		t.Error("search after ClearCache should not come from cache")
	}
}
