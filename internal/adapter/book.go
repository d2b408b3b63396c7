package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
)

// Book searches an Open Library-compatible API. Ratings arrive on a 0-5
// scale and are rescaled to 0-10.
type Book struct {
	baseURL  string
	coverURL string
	hc       *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewBook creates the book adapter. coverBaseURL may be empty.
func NewBook(cfg Config, coverBaseURL string) *Book {
	return &Book{
		baseURL:  cfg.BaseURL,
		coverURL: coverBaseURL,
		hc:       newHTTPClient(cfg.Timeout),
		limiter:  cfg.limiter(),
		logger:   cfg.logger(),
	}
}

func (b *Book) Tag() catalog.Tag { return catalog.Book }

type bookResult struct {
	Key              string  `json:"key"`
	Title            string  `json:"title"`
	FirstPublishYear int     `json:"first_publish_year"`
	RatingsAverage   float64 `json:"ratings_average"`
	CoverID          int64   `json:"cover_i"`
}

// Search implements Adapter.
func (b *Book) Search(ctx context.Context, query string, maxResults int) ([]domain.CatalogItem, error) {
	u := fmt.Sprintf("%s/search.json?q=%s&limit=%d", b.baseURL, url.QueryEscape(query), maxResults)

	var body struct {
		Docs []json.RawMessage `json:"docs"`
	}
	if err := getJSON(ctx, b.hc, b.limiter, u, &body); err != nil {
		return nil, fmt.Errorf("book search: %w", err)
	}

	items := make([]domain.CatalogItem, 0, len(body.Docs))
	for _, raw := range body.Docs {
		var r bookResult
		if err := json.Unmarshal(raw, &r); err != nil {
			b.logger.Warn("skipping malformed book result", zap.Error(err))
			continue
		}
		if r.Title == "" {
			continue
		}
		item := domain.CatalogItem{
			ID:      strings.TrimPrefix(r.Key, "/works/"),
			Title:   r.Title,
			Catalog: catalog.Book,
			Year:    r.FirstPublishYear,
			Rating:  r.RatingsAverage * 2,
			Raw:     raw,
		}
		if b.coverURL != "" && r.CoverID > 0 {
			item.ImageURL = fmt.Sprintf("%s/b/id/%d-M.jpg", b.coverURL, r.CoverID)
		}
		items = append(items, item)
	}
	return truncate(items, maxResults), nil
}
