package relevance

import (
	"math"
	"testing"
)

func ruleMap(t *testing.T, s *Scorer, query, title string) map[string]float64 {
	t.Helper()
	out := make(map[string]float64)
	for _, rs := range s.Explain(query, title) {
		out[rs.Rule] = rs.Points
	}
	return out
}

func TestScore_ExactMatch_ShortCircuits(t *testing.T) {
	s := NewScorer()
	if got := s.Score("dune", "Dune"); got != MaxScore {
		t.Fatalf("exact match = %f, want %f", got, MaxScore)
	}
	rules := s.Explain("  DUNE ", "dune")
	if len(rules) != 1 || rules[0].Rule != "exact" {
		t.Fatalf("expected single exact rule, got %v", rules)
	}
}

func TestScore_PrefixAccumulatesAndClamps(t *testing.T) {
	s := NewScorer()
	got := s.Score("bat", "Batman Begins")
	if got != MaxScore {
		t.Fatalf("prefix match accumulates past 10 then clamps, got %f", got)
	}
}

func TestExplain_MultiTokenQuery(t *testing.T) {
	s := NewScorer()
	rules := ruleMap(t, s, "dark knight", "The Dark Knight Rises")

	if rules["title_prefix"] != 0 {
		t.Errorf("no title prefix expected, got %f", rules["title_prefix"])
	}
	if rules["token_prefix"] != 4 {
		t.Errorf("token_prefix = %f, want 4 (two pairs)", rules["token_prefix"])
	}
	if rules["substring"] != 4 {
		t.Errorf("substring = %f, want 4", rules["substring"])
	}
	if rules["exact_tokens"] != 3 {
		t.Errorf("exact_tokens = %f, want 3 (two matches, capped)", rules["exact_tokens"])
	}
	if rules["partial_tokens"] != 0 {
		t.Errorf("partial_tokens should skip exact-matched tokens, got %f", rules["partial_tokens"])
	}
}

func TestExplain_TokenPrefixCap(t *testing.T) {
	s := NewScorer()
	// Four title tokens start with "co": 4 pairs x2 = 8, capped at 6.
	rules := ruleMap(t, s, "co", "xa code core cool corn")
	if rules["token_prefix"] != 6 {
		t.Errorf("token_prefix = %f, want cap 6", rules["token_prefix"])
	}
}

func TestExplain_FuzzyOnly(t *testing.T) {
	s := NewScorer()
	rules := ruleMap(t, s, "matrlx", "matrix")
	want := Similarity("matrlx", "matrix") * 1.5
	if math.Abs(rules["fuzzy"]-want) > 1e-9 {
		t.Errorf("fuzzy = %f, want %f", rules["fuzzy"], want)
	}
	if len(rules) != 1 {
		t.Errorf("expected fuzzy to be the only contribution, got %v", rules)
	}
}

func TestExplain_PartialContainment(t *testing.T) {
	s := NewScorer()
	rules := ruleMap(t, s, "bat", "Combat Zone")
	if rules["substring"] != 4 {
		t.Errorf("substring = %f, want 4", rules["substring"])
	}
	if rules["partial_tokens"] != 2 {
		t.Errorf("partial_tokens = %f, want 2 (full match ratio)", rules["partial_tokens"])
	}
}

func TestScore_EmptyInputs(t *testing.T) {
	s := NewScorer()
	if got := s.Score("", "Dune"); got != 0 {
		t.Errorf("empty query = %f, want 0", got)
	}
	if got := s.Score("dune", ""); got != 0 {
		t.Errorf("empty title = %f, want 0", got)
	}
}

func TestScore_ExactOutranksNonExact(t *testing.T) {
	s := NewScorer()
	exact := s.Score("dune", "Dune")
	near := s.Score("dune", "Dune: Part Two")
	if exact < near {
		t.Errorf("exact (%f) should rank at or above near match (%f)", exact, near)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("spider-man: far_from home")
	want := []string{"spider", "man", "far", "from", "home"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
