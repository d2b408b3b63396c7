package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mediadex/mediadex/internal/domain/catalog"
)

// MinQueryLength is the shortest normalized query that triggers a fan-out.
// Anything shorter short-circuits to an empty result set.
const MinQueryLength = 2

// Query is one user search input.
type Query struct {
	Raw        string
	Normalized string
	Catalogs   []catalog.Tag
	IssuedAt   time.Time
}

// NewQuery normalizes raw input and stamps issuance time. An empty catalogs
// slice selects every known catalog.
func NewQuery(raw string, catalogs []catalog.Tag) Query {
	if len(catalogs) == 0 {
		catalogs = catalog.All()
	}
	return Query{
		Raw:        raw,
		Normalized: Normalize(raw),
		Catalogs:   catalogs,
		IssuedAt:   time.Now(),
	}
}

// TooShort reports whether the normalized query is below MinQueryLength.
// Length is counted in runes so multi-byte scripts are not over-counted.
func (q Query) TooShort() bool {
	return utf8.RuneCountInString(q.Normalized) < MinQueryLength
}

// Normalize trims, lower-cases, and collapses internal whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
