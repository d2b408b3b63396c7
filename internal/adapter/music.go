package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
)

// Music searches an iTunes-compatible music API. The API carries no rating;
// items keep the zero value and the composer substitutes a neutral
// popularity.
type Music struct {
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewMusic creates the music adapter.
func NewMusic(cfg Config) *Music {
	return &Music{
		baseURL: cfg.BaseURL,
		hc:      newHTTPClient(cfg.Timeout),
		limiter: cfg.limiter(),
		logger:  cfg.logger(),
	}
}

func (m *Music) Tag() catalog.Tag { return catalog.Music }

type musicResult struct {
	TrackID     int64  `json:"trackId"`
	TrackName   string `json:"trackName"`
	ReleaseDate string `json:"releaseDate"`
	ArtworkURL  string `json:"artworkUrl100"`
}

// Search implements Adapter.
func (m *Music) Search(ctx context.Context, query string, maxResults int) ([]domain.CatalogItem, error) {
	u := fmt.Sprintf("%s/search?term=%s&media=music&limit=%d",
		m.baseURL, url.QueryEscape(query), maxResults)

	var body struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := getJSON(ctx, m.hc, m.limiter, u, &body); err != nil {
		return nil, fmt.Errorf("music search: %w", err)
	}

	items := make([]domain.CatalogItem, 0, len(body.Results))
	for _, raw := range body.Results {
		var r musicResult
		if err := json.Unmarshal(raw, &r); err != nil {
			m.logger.Warn("skipping malformed music result", zap.Error(err))
			continue
		}
		if r.TrackName == "" {
			continue
		}
		items = append(items, domain.CatalogItem{
			ID:       strconv.FormatInt(r.TrackID, 10),
			Title:    r.TrackName,
			Catalog:  catalog.Music,
			Year:     yearOf(r.ReleaseDate),
			ImageURL: r.ArtworkURL,
			Raw:      raw,
		})
	}
	return truncate(items, maxResults), nil
}
