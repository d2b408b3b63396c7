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

// Film searches a TMDB-compatible movie/TV API. Ratings arrive on the 0-10
// scale already.
type Film struct {
	baseURL  string
	imageURL string
	apiKey   string
	hc       *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewFilm creates the film/TV adapter. imageBaseURL may be empty; poster
// references are then omitted.
func NewFilm(cfg Config, imageBaseURL string) *Film {
	return &Film{
		baseURL:  cfg.BaseURL,
		imageURL: imageBaseURL,
		apiKey:   cfg.APIKey,
		hc:       newHTTPClient(cfg.Timeout),
		limiter:  cfg.limiter(),
		logger:   cfg.logger(),
	}
}

func (f *Film) Tag() catalog.Tag { return catalog.Film }

type filmResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path"`
}

// Search implements Adapter.
func (f *Film) Search(ctx context.Context, query string, maxResults int) ([]domain.CatalogItem, error) {
	u := fmt.Sprintf("%s/search/movie?api_key=%s&query=%s",
		f.baseURL, url.QueryEscape(f.apiKey), url.QueryEscape(query))

	var body struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := getJSON(ctx, f.hc, f.limiter, u, &body); err != nil {
		return nil, fmt.Errorf("film search: %w", err)
	}

	items := make([]domain.CatalogItem, 0, len(body.Results))
	for _, raw := range body.Results {
		var r filmResult
		if err := json.Unmarshal(raw, &r); err != nil {
			f.logger.Warn("skipping malformed film result", zap.Error(err))
			continue
		}
		if r.Title == "" {
			continue
		}
		item := domain.CatalogItem{
			ID:      strconv.FormatInt(r.ID, 10),
			Title:   r.Title,
			Catalog: catalog.Film,
			Year:    yearOf(r.ReleaseDate),
			Rating:  r.VoteAverage,
			Raw:     raw,
		}
		if f.imageURL != "" && r.PosterPath != "" {
			item.ImageURL = f.imageURL + r.PosterPath
		}
		items = append(items, item)
	}
	return truncate(items, maxResults), nil
}
