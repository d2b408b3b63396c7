// Package compose combines relevance, popularity, recency, and the quality
// penalty into one bounded final score.
package compose

import (
	"strings"
	"time"

	"github.com/mediadex/mediadex/internal/domain"
)

// MaxScore is the final score ceiling.
const MaxScore = 25.0

// Weights of the base composite. The flat prefix bonus sits outside the
// weighting on purpose: obvious prefix matches always float to the top.
// All constants here are tunable, not load-bearing.
const (
	relevanceWeight  = 0.6
	popularityWeight = 0.2
	recencyWeight    = 0.2

	// baseScale maps the 0-10 weighted composite onto 0-20 so the maximum
	// with the prefix bonus lands exactly on MaxScore.
	baseScale = 2.0

	prefixBonus = 5.0

	neutralPopularity = 5.0

	fullRecencyBonus = 10.0
	halfRecencyBonus = 5.0
	fullRecencyYears = 2
	halfRecencyYears = 5
)

// Composer derives final scores. The clock is injectable for tests.
type Composer struct {
	now func() time.Time
}

// NewComposer creates a composer using the wall clock.
func NewComposer() *Composer {
	return &Composer{now: time.Now}
}

// WithClock overrides the clock.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	c.now = now
	return c
}

// Compose promotes item to a ScoredItem. Items at or above the rejection
// threshold must be dropped before this stage; Compose does not re-check.
func (c *Composer) Compose(
	item domain.CatalogItem, query string, relevance, penalty float64,
) domain.ScoredItem {
	pop := item.Rating
	if pop == 0 {
		pop = neutralPopularity
	}

	recency := c.recencyBonus(item.Year)

	base := (relevanceWeight*relevance + popularityWeight*pop + recencyWeight*recency) * baseScale

	if q := domain.Normalize(query); q != "" && strings.HasPrefix(domain.Normalize(item.Title), q) {
		base += prefixBonus
	}

	final := clamp(base-penalty, 0, MaxScore)

	return domain.ScoredItem{
		CatalogItem:    item,
		TextRelevance:  relevance,
		QualityPenalty: penalty,
		PopularityNorm: pop,
		RecencyBonus:   recency,
		FinalScore:     final,
	}
}

// recencyBonus grants the full bonus for items at most two years old, half up
// to five years, nothing beyond that or when the year is unknown.
func (c *Composer) recencyBonus(year int) float64 {
	if year <= 0 {
		return 0
	}
	age := c.now().Year() - year
	switch {
	case age <= fullRecencyYears:
		return fullRecencyBonus
	case age <= halfRecencyYears:
		return halfRecencyBonus
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
