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

// Game searches a RAWG-compatible games API. Ratings arrive on a 0-5 scale
// and are rescaled to 0-10.
type Game struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGame creates the games adapter.
func NewGame(cfg Config) *Game {
	return &Game{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		hc:      newHTTPClient(cfg.Timeout),
		limiter: cfg.limiter(),
		logger:  cfg.logger(),
	}
}

func (g *Game) Tag() catalog.Tag { return catalog.Game }

type gameResult struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Released        string  `json:"released"`
	Rating          float64 `json:"rating"`
	BackgroundImage string  `json:"background_image"`
}

// Search implements Adapter.
func (g *Game) Search(ctx context.Context, query string, maxResults int) ([]domain.CatalogItem, error) {
	u := fmt.Sprintf("%s/api/games?key=%s&search=%s&page_size=%d",
		g.baseURL, url.QueryEscape(g.apiKey), url.QueryEscape(query), maxResults)

	var body struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := getJSON(ctx, g.hc, g.limiter, u, &body); err != nil {
		return nil, fmt.Errorf("game search: %w", err)
	}

	items := make([]domain.CatalogItem, 0, len(body.Results))
	for _, raw := range body.Results {
		var r gameResult
		if err := json.Unmarshal(raw, &r); err != nil {
			g.logger.Warn("skipping malformed game result", zap.Error(err))
			continue
		}
		if r.Name == "" {
			continue
		}
		items = append(items, domain.CatalogItem{
			ID:       strconv.FormatInt(r.ID, 10),
			Title:    r.Name,
			Catalog:  catalog.Game,
			Year:     yearOf(r.Released),
			Rating:   r.Rating * 2,
			ImageURL: r.BackgroundImage,
			Raw:      raw,
		})
	}
	return truncate(items, maxResults), nil
}
