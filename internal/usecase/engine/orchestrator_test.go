package engine

import (
	"testing"
	"time"

	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
)

func TestDedupe(t *testing.T) {
	in := []domain.CatalogItem{
		item(catalog.Film, "1", "Dune", 2021, 8.0),
		item(catalog.Film, "1", "Dune (duplicate page)", 2021, 8.0),
		item(catalog.Book, "1", "Dune", 1965, 9.0), // same id, different catalog
		item(catalog.Film, "2", "Dune: Part Two", 2024, 8.5),
	}
	out := dedupe(in)
	if len(out) != 3 {
		t.Fatalf("got %d items, want 3: %+v", len(out), out)
	}
	if out[0].Title != "Dune" {
		t.Errorf("first occurrence should win, got %q", out[0].Title)
	}
}

func TestDeadlineFor_Fallback(t *testing.T) {
	svc, _ := newTestService(t)
	svc.WithDeadlines(map[catalog.Tag]time.Duration{catalog.Film: time.Second})

	if d := svc.deadlineFor(catalog.Film); d != time.Second {
		t.Errorf("film deadline = %v, want 1s", d)
	}
	if d := svc.deadlineFor(catalog.Music); d != fallbackDeadline {
		t.Errorf("music deadline = %v, want fallback %v", d, fallbackDeadline)
	}
}
