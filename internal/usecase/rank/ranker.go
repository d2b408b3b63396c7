// Package rank orders scored candidates and enforces catalog diversity in the
// visible top window.
package rank

import (
	"sort"

	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
)

// Defaults for the diversity window.
const (
	DefaultPrefixSize = 12
	DefaultQuota      = 3
	DefaultTotalCap   = 50
)

// Ranker produces the final ordering: a diverse prefix where no catalog
// exceeds its quota, then the remaining items in sorted order up to a total
// cap.
type Ranker struct {
	prefixSize int
	quota      int
	totalCap   int
}

// NewRanker creates a ranker with the default window sizes.
func NewRanker() *Ranker {
	return &Ranker{
		prefixSize: DefaultPrefixSize,
		quota:      DefaultQuota,
		totalCap:   DefaultTotalCap,
	}
}

// WithWindow overrides the prefix size, per-catalog quota, and total cap.
// Non-positive values keep the defaults.
func (r *Ranker) WithWindow(prefixSize, quota, totalCap int) *Ranker {
	if prefixSize > 0 {
		r.prefixSize = prefixSize
	}
	if quota > 0 {
		r.quota = quota
	}
	if totalCap > 0 {
		r.totalCap = totalCap
	}
	return r
}

// Sort orders items in place: release year descending, then final score
// descending, with a stable title tie-break. Recency is authoritative over
// score at the top level.
func Sort(items []domain.ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		return a.Title < b.Title
	})
}

// Rank sorts items and applies the diversity window. The prefix admits an
// item only while its catalog is under quota; everything skipped joins the
// tail in original sorted order.
func (r *Ranker) Rank(items []domain.ScoredItem) []domain.ScoredItem {
	Sort(items)

	limit := r.totalCap
	if len(items) < limit {
		limit = len(items)
	}

	out := make([]domain.ScoredItem, 0, limit)
	placed := make([]bool, len(items))
	perCatalog := make(map[catalog.Tag]int, 4)

	for i, it := range items {
		if len(out) >= r.prefixSize {
			break
		}
		if perCatalog[it.Catalog] >= r.quota {
			continue
		}
		perCatalog[it.Catalog]++
		placed[i] = true
		out = append(out, it)
	}

	for i, it := range items {
		if len(out) >= limit {
			break
		}
		if placed[i] {
			continue
		}
		out = append(out, it)
	}

	return out
}
