package domain

import (
	"encoding/json"

	"github.com/mediadex/mediadex/internal/domain/catalog"
)

// CatalogItem is a catalog-neutral candidate returned by an adapter.
// Adapters map their native payloads into this shape; the engine never
// inspects Raw.
type CatalogItem struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Catalog  catalog.Tag     `json:"catalog"`
	Year     int             `json:"year,omitempty"`   // 0 = unknown
	Rating   float64         `json:"rating,omitempty"` // normalized to 0-10, 0 = absent
	ImageURL string          `json:"image_url,omitempty"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

// ScoredItem is a CatalogItem plus the four scoring components and the
// derived final score. FinalScore is clamped to [0, 25].
type ScoredItem struct {
	CatalogItem

	TextRelevance  float64 `json:"text_relevance"`
	QualityPenalty float64 `json:"quality_penalty"`
	PopularityNorm float64 `json:"popularity_norm"`
	RecencyBonus   float64 `json:"recency_bonus"`
	FinalScore     float64 `json:"final_score"`
}
