package domain

import (
	"testing"

	"github.com/mediadex/mediadex/internal/domain/catalog"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  The Matrix  ", "the matrix"},
		{"DUNE", "dune"},
		{"star\t wars ", "star wars"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewQuery_DefaultsToAllCatalogs(t *testing.T) {
	q := NewQuery("dune", nil)
	if len(q.Catalogs) != len(catalog.All()) {
		t.Errorf("expected all catalogs, got %v", q.Catalogs)
	}
	if q.IssuedAt.IsZero() {
		t.Error("IssuedAt should be stamped")
	}
}

func TestQuery_TooShort(t *testing.T) {
	if !NewQuery("a", nil).TooShort() {
		t.Error("single rune should be too short")
	}
	if !NewQuery("   ", nil).TooShort() {
		t.Error("whitespace-only should be too short")
	}
	if NewQuery("ab", nil).TooShort() {
		t.Error("two runes should be long enough")
	}
	// Multi-byte scripts count in runes, not bytes.
	if !NewQuery("龍", nil).TooShort() {
		t.Error("single CJK rune should be too short despite its byte width")
	}
	if NewQuery("龍馬", nil).TooShort() {
		t.Error("two CJK runes should be long enough")
	}
}
