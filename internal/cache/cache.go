// Package cache holds short-lived ranked result lists keyed by normalized
// query and options. Two backends: an in-process TTL+LRU store and a shared
// Redis store.
package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
)

// Defaults for the in-process backend.
const (
	DefaultTTL           = 10 * time.Minute
	DefaultCapacity      = 1000
	DefaultSweepInterval = 5 * time.Minute
)

// Entry is one cached aggregation result. Entries are shared read-only once
// published; only the cache mutates its own bookkeeping.
type Entry struct {
	Results    []domain.ScoredItem `json:"results"`
	TotalCount int                 `json:"total_count"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Store is the cache contract the engine consumes. A backend failure on Get
// surfaces as (zero, false, err) and the engine treats it as a miss.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Clear(ctx context.Context) error
	Close()
}

// Key derives the cache key from a normalized query and options. Catalog
// order does not matter: tags are sorted before joining.
func Key(normalizedQuery string, catalogs []catalog.Tag, limit int) string {
	tags := make([]string, len(catalogs))
	for i, t := range catalogs {
		tags[i] = string(t)
	}
	sort.Strings(tags)

	var b strings.Builder
	b.WriteString("q=")
	b.WriteString(normalizedQuery)
	b.WriteString("|c=")
	b.WriteString(strings.Join(tags, ","))
	b.WriteString("|l=")
	b.WriteString(strconv.Itoa(limit))
	return b.String()
}
