package sdk

import (
	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
	"github.com/mediadex/mediadex/internal/metrics"
)

// Catalog identifies one content catalog.
type Catalog string

// The full set of searchable catalogs.
const (
	CatalogFilm  Catalog = Catalog(catalog.Film)
	CatalogBook  Catalog = Catalog(catalog.Book)
	CatalogGame  Catalog = Catalog(catalog.Game)
	CatalogMusic Catalog = Catalog(catalog.Music)
)

// Item is one ranked search result.
type Item struct {
	ID       string
	Title    string
	Catalog  Catalog
	Year     int
	Rating   float64
	ImageURL string
	Score    float64
}

// Response is the answer to one search.
type Response struct {
	Results        []Item
	TotalCount     int
	ResponseTimeMs int64
	FromCache      bool
}

// QueryCount is one row of the popular-query table.
type QueryCount struct {
	Query string
	Count int64
}

// Stats is a point-in-time copy of the client's search counters.
type Stats struct {
	SearchCount     int64
	AvgLatencyMs    float64
	CacheHits       int64
	CacheMisses     int64
	AdapterFailures map[Catalog]int64
	PopularQueries  []QueryCount
}

func responseFromDomain(r domain.Response) Response {
	items := make([]Item, len(r.Results))
	for i, s := range r.Results {
		items[i] = Item{
			ID:       s.ID,
			Title:    s.Title,
			Catalog:  Catalog(s.Catalog),
			Year:     s.Year,
			Rating:   s.Rating,
			ImageURL: s.ImageURL,
			Score:    s.FinalScore,
		}
	}
	return Response{
		Results:        items,
		TotalCount:     r.TotalCount,
		ResponseTimeMs: r.ResponseTimeMs,
		FromCache:      r.FromCache,
	}
}

func statsFromSnapshot(s metrics.Snapshot) Stats {
	failures := make(map[Catalog]int64, len(s.AdapterFailures))
	for tag, n := range s.AdapterFailures {
		failures[Catalog(tag)] = n
	}
	queries := make([]QueryCount, len(s.PopularQueries))
	for i, q := range s.PopularQueries {
		queries[i] = QueryCount{Query: q.Query, Count: q.Count}
	}
	return Stats{
		SearchCount:     s.SearchCount,
		AvgLatencyMs:    s.AvgLatencyMs,
		CacheHits:       s.CacheHits,
		CacheMisses:     s.CacheMisses,
		AdapterFailures: failures,
		PopularQueries:  queries,
	}
}
