// Package relevance scores a candidate title against the query text.
//
// The heuristic is a declarative ordered list of additive rules: a title can
// collect several bonuses at once, then the sum is clamped to [0, 10]. Only an
// exact normalized match short-circuits.
package relevance

import (
	"strings"

	"github.com/mediadex/mediadex/internal/domain"
)

// MaxScore is the relevance ceiling.
const MaxScore = 10.0

const (
	prefixBonus        = 9.0
	tokenPrefixBonus   = 2.0
	tokenPrefixCap     = 6.0
	containsBonus      = 4.0
	exactTokenBonus    = 1.5
	exactTokenCap      = 3.0
	fuzzyThreshold     = 0.8
	fuzzyWeight        = 1.5
	partialTokenCap    = 2.0
	minTokenLen        = 2
	minPartialTokenLen = 3
)

// RuleScore is one rule's contribution to a title's relevance.
type RuleScore struct {
	Rule   string
	Points float64
}

// matchState carries the normalized inputs and cross-rule bookkeeping.
// Rules run in order; the exact-token rule records which query tokens it
// consumed so the partial-containment rule does not count them again.
type matchState struct {
	query       string
	title       string
	queryTokens []string
	titleTokens []string
	exactTokens map[string]bool
}

type rule struct {
	name  string
	apply func(*matchState) float64
}

// Scorer evaluates the relevance rule list.
type Scorer struct {
	rules []rule
}

// NewScorer creates a scorer with the standard rule list.
func NewScorer() *Scorer {
	return &Scorer{rules: []rule{
		{"title_prefix", scorePrefix},
		{"token_prefix", scoreTokenPrefix},
		{"substring", scoreSubstring},
		{"exact_tokens", scoreExactTokens},
		{"fuzzy", scoreFuzzy},
		{"partial_tokens", scorePartialTokens},
	}}
}

// Score returns the relevance of title for query, in [0, 10].
func (s *Scorer) Score(query, title string) float64 {
	total := 0.0
	for _, rs := range s.Explain(query, title) {
		total += rs.Points
	}
	return clamp(total, 0, MaxScore)
}

// Explain returns every rule's contribution, unclamped. An exact match is
// reported as a single synthetic "exact" rule worth the maximum.
func (s *Scorer) Explain(query, title string) []RuleScore {
	q := domain.Normalize(query)
	t := domain.Normalize(title)
	if q == "" || t == "" {
		return nil
	}
	if q == t {
		return []RuleScore{{Rule: "exact", Points: MaxScore}}
	}

	m := &matchState{
		query:       q,
		title:       t,
		queryTokens: Tokenize(q),
		titleTokens: Tokenize(t),
		exactTokens: make(map[string]bool),
	}

	out := make([]RuleScore, 0, len(s.rules))
	for _, r := range s.rules {
		if pts := r.apply(m); pts > 0 {
			out = append(out, RuleScore{Rule: r.name, Points: pts})
		}
	}
	return out
}

func scorePrefix(m *matchState) float64 {
	if strings.HasPrefix(m.title, m.query) {
		return prefixBonus
	}
	return 0
}

// scoreTokenPrefix awards each (query token, title token) prefix pair.
func scoreTokenPrefix(m *matchState) float64 {
	pts := 0.0
	for _, qt := range m.queryTokens {
		if len(qt) < minTokenLen {
			continue
		}
		for _, tt := range m.titleTokens {
			if len(tt) < minTokenLen {
				continue
			}
			if strings.HasPrefix(tt, qt) {
				pts += tokenPrefixBonus
			}
		}
	}
	return min(pts, tokenPrefixCap)
}

func scoreSubstring(m *matchState) float64 {
	if strings.Contains(m.title, m.query) {
		return containsBonus
	}
	return 0
}

func scoreExactTokens(m *matchState) float64 {
	titleSet := make(map[string]bool, len(m.titleTokens))
	for _, tt := range m.titleTokens {
		if len(tt) >= minTokenLen {
			titleSet[tt] = true
		}
	}
	pts := 0.0
	for _, qt := range m.queryTokens {
		if len(qt) >= minTokenLen && titleSet[qt] {
			m.exactTokens[qt] = true
			pts += exactTokenBonus
		}
	}
	return min(pts, exactTokenCap)
}

func scoreFuzzy(m *matchState) float64 {
	sim := Similarity(m.query, m.title)
	if sim > fuzzyThreshold {
		return sim * fuzzyWeight
	}
	return 0
}

// scorePartialTokens credits query tokens contained inside longer title
// tokens, skipping tokens the exact-token rule already consumed. The bonus
// scales with the fraction of eligible tokens that matched.
func scorePartialTokens(m *matchState) float64 {
	eligible, matched := 0, 0
	for _, qt := range m.queryTokens {
		if len(qt) < minPartialTokenLen || m.exactTokens[qt] {
			continue
		}
		eligible++
		for _, tt := range m.titleTokens {
			if len(tt) > len(qt) && strings.Contains(tt, qt) {
				matched++
				break
			}
		}
	}
	if eligible == 0 || matched == 0 {
		return 0
	}
	return partialTokenCap * float64(matched) / float64(eligible)
}

// Tokenize splits on whitespace, hyphens, colons, and underscores.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '-', ':', '_':
			return true
		}
		return false
	})
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
