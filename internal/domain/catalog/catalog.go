// Package catalog defines the closed set of content catalogs the engine
// searches across.
package catalog

import "fmt"

// Tag identifies one content catalog.
type Tag string

// The full set of catalogs known to the engine.
const (
	Film  Tag = "film"
	Book  Tag = "book"
	Game  Tag = "game"
	Music Tag = "music"
)

// All returns every known catalog tag in stable order.
func All() []Tag {
	return []Tag{Film, Book, Game, Music}
}

// Parse converts a string into a Tag.
func Parse(s string) (Tag, error) {
	switch Tag(s) {
	case Film, Book, Game, Music:
		return Tag(s), nil
	default:
		return "", fmt.Errorf("unknown catalog %q", s)
	}
}

// Valid reports whether t is a member of the closed set.
func (t Tag) Valid() bool {
	switch t {
	case Film, Book, Game, Music:
		return true
	}
	return false
}

func (t Tag) String() string { return string(t) }
