// Package quality flags low-quality or suspicious candidates independent of
// the query text.
package quality

import (
	"strings"

	"github.com/mediadex/mediadex/internal/domain"
)

const (
	// RejectionThreshold is the penalty at which an item is dropped outright.
	RejectionThreshold = 15.0

	suspectPenalty   = 8.0
	lowRatingPenalty = 2.0
	lowRatingFloor   = 4.0
)

// rejectKeywords signal content that never belongs in results.
var rejectKeywords = []string{
	"bootleg",
	"fan made",
	"fan-made",
	"fanmade",
	"pirated",
	"camrip",
	"cam rip",
	"xxx",
	"behind the scenes",
}

// suspectKeywords signal promotional or partial material that ranks poorly
// but is not outright rejected on its own.
var suspectKeywords = []string{
	"trailer",
	"teaser",
	"clip",
	"pilot",
	"deleted scene",
	"promo",
	"sneak peek",
}

// Filter computes a query-independent quality penalty for a candidate.
type Filter struct {
	reject  []string
	suspect []string
}

// NewFilter creates a filter with the standard keyword lists.
func NewFilter() *Filter {
	return &Filter{reject: rejectKeywords, suspect: suspectKeywords}
}

// Penalty returns the quality penalty for item, in [0, 15]. A reject-list hit
// returns RejectionThreshold immediately; suspect hits accumulate and a low
// rating on an already-suspect item adds a further small penalty.
func (f *Filter) Penalty(item domain.CatalogItem) float64 {
	title := domain.Normalize(item.Title)
	if title == "" {
		return 0
	}

	for _, kw := range f.reject {
		if strings.Contains(title, kw) {
			return RejectionThreshold
		}
	}

	penalty := 0.0
	for _, kw := range f.suspect {
		if strings.Contains(title, kw) {
			penalty += suspectPenalty
		}
	}
	if penalty > RejectionThreshold {
		penalty = RejectionThreshold
	}

	if penalty > 0 && item.Rating > 0 && item.Rating < lowRatingFloor {
		penalty += lowRatingPenalty
		if penalty > RejectionThreshold {
			penalty = RejectionThreshold
		}
	}

	return penalty
}

// Rejected reports whether the penalty excludes the item from ranking.
func Rejected(penalty float64) bool {
	return penalty >= RejectionThreshold
}
