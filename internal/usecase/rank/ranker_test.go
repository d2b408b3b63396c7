package rank

import (
	"testing"

	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
)

func scored(id string, tag catalog.Tag, year int, score float64) domain.ScoredItem {
	return domain.ScoredItem{
		CatalogItem: domain.CatalogItem{ID: id, Title: id, Catalog: tag, Year: year},
		FinalScore:  score,
	}
}

func TestSort_YearBeforeScore(t *testing.T) {
	items := []domain.ScoredItem{
		scored("old-high", catalog.Film, 2010, 25),
		scored("new-low", catalog.Film, 2026, 5),
		scored("new-high", catalog.Film, 2026, 20),
	}
	Sort(items)

	want := []string{"new-high", "new-low", "old-high"}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("position %d = %q, want %q", i, items[i].ID, id)
		}
	}
}

func TestSort_TitleTieBreakIsStable(t *testing.T) {
	items := []domain.ScoredItem{
		scored("b", catalog.Book, 2024, 10),
		scored("a", catalog.Film, 2024, 10),
	}
	Sort(items)
	if items[0].ID != "a" || items[1].ID != "b" {
		t.Errorf("expected title tie-break a before b, got %q, %q", items[0].ID, items[1].ID)
	}
}

func TestRank_DiversityQuotaInPrefix(t *testing.T) {
	// Ten films dominate the sorted order; the other catalogs trail on score.
	var items []domain.ScoredItem
	for i := 0; i < 10; i++ {
		items = append(items, scored("film", catalog.Film, 2026, 20))
	}
	for i := 0; i < 5; i++ {
		items = append(items, scored("book", catalog.Book, 2026, 10))
	}
	for i := 0; i < 5; i++ {
		items = append(items, scored("game", catalog.Game, 2026, 8))
	}
	for i := 0; i < 5; i++ {
		items = append(items, scored("music", catalog.Music, 2026, 6))
	}

	out := NewRanker().Rank(items)

	counts := map[catalog.Tag]int{}
	for _, it := range out[:DefaultPrefixSize] {
		counts[it.Catalog]++
	}
	for tag, n := range counts {
		if n > DefaultQuota {
			t.Errorf("catalog %q has %d entries in prefix, quota is %d", tag, n, DefaultQuota)
		}
	}
	// Skipped films reappear in the tail.
	if len(out) != 25 {
		t.Fatalf("expected all 25 items, got %d", len(out))
	}
	tailFilms := 0
	for _, it := range out[DefaultPrefixSize:] {
		if it.Catalog == catalog.Film {
			tailFilms++
		}
	}
	if tailFilms != 7 {
		t.Errorf("expected 7 films in tail, got %d", tailFilms)
	}
}

func TestRank_FewCatalogsFillPrefix(t *testing.T) {
	// Only one catalog contributed: the prefix cannot be diverse, quota still
	// applies, tail absorbs the rest.
	var items []domain.ScoredItem
	for i := 0; i < 6; i++ {
		items = append(items, scored("m", catalog.Music, 2026, 10))
	}

	out := NewRanker().Rank(items)
	if len(out) != 6 {
		t.Fatalf("expected 6 items, got %d", len(out))
	}
}

func TestRank_TotalCap(t *testing.T) {
	var items []domain.ScoredItem
	for i := 0; i < 80; i++ {
		items = append(items, scored("x", catalog.Film, 2026, 10))
	}
	out := NewRanker().Rank(items)
	if len(out) != DefaultTotalCap {
		t.Errorf("expected total cap %d, got %d", DefaultTotalCap, len(out))
	}
}

func TestRank_CustomWindow(t *testing.T) {
	var items []domain.ScoredItem
	for i := 0; i < 10; i++ {
		items = append(items, scored("f", catalog.Film, 2026, 10))
	}
	for i := 0; i < 10; i++ {
		items = append(items, scored("b", catalog.Book, 2025, 10))
	}

	out := NewRanker().WithWindow(4, 2, 8).Rank(items)
	if len(out) != 8 {
		t.Fatalf("expected cap 8, got %d", len(out))
	}
	films := 0
	for _, it := range out[:4] {
		if it.Catalog == catalog.Film {
			films++
		}
	}
	if films != 2 {
		t.Errorf("expected 2 films in prefix of 4, got %d", films)
	}
}
