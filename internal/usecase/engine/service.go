// Package engine is the unified cross-catalog search core: it fans a query
// out to the selected adapters, tolerates partial failure, scores and
// deduplicates candidates, enforces catalog diversity, and caches results.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mediadex/mediadex/internal/adapter"
	"github.com/mediadex/mediadex/internal/cache"
	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
	"github.com/mediadex/mediadex/internal/usecase/compose"
	"github.com/mediadex/mediadex/internal/usecase/quality"
	"github.com/mediadex/mediadex/internal/usecase/rank"
	"github.com/mediadex/mediadex/internal/usecase/relevance"
)

// Result list bounds.
const (
	DefaultLimit         = 20
	MaxLimit             = rank.DefaultTotalCap
	DefaultMaxPerCatalog = 25
)

// Options selects catalogs and bounds the result list for one search.
// DebounceKey identifies the input source (e.g. a search box); when set,
// the search waits out the keystroke debounce window first and yields to any
// newer query issued under the same key.
type Options struct {
	Catalogs    []catalog.Tag // empty = all
	Limit       int           // 0 = the default limit, capped at the maximum
	DebounceKey string
}

// Service is the search engine. Construct once and share: the cache and
// metrics collector are safe under concurrent searches.
type Service struct {
	adapters map[catalog.Tag]adapter.Adapter
	cache    Cache
	metrics  Observer
	debounce Debouncer
	logger   *zap.Logger

	scorer   *relevance.Scorer
	filter   *quality.Filter
	composer *compose.Composer
	ranker   *rank.Ranker

	deadlines     map[catalog.Tag]time.Duration
	maxPerCatalog int
	defaultLimit  int
	maxLimit      int

	group singleflight.Group

	// seq tracks per-key issuance order so a stale, slow-resolving search
	// never overwrites a newer one's cache entry.
	seqMu sync.Mutex
	seq   map[string]uint64
}

// New creates the engine over the given adapters.
func New(adapters []adapter.Adapter, c Cache, m Observer, logger *zap.Logger) *Service {
	byTag := make(map[catalog.Tag]adapter.Adapter, len(adapters))
	for _, a := range adapters {
		byTag[a.Tag()] = a
	}
	return &Service{
		adapters:      byTag,
		cache:         c,
		metrics:       m,
		logger:        logger,
		scorer:        relevance.NewScorer(),
		filter:        quality.NewFilter(),
		composer:      compose.NewComposer(),
		ranker:        rank.NewRanker(),
		deadlines:     defaultDeadlines,
		maxPerCatalog: DefaultMaxPerCatalog,
		defaultLimit:  DefaultLimit,
		maxLimit:      MaxLimit,
		seq:           make(map[string]uint64),
	}
}

// WithDebouncer installs a debounce scheduler for Options.DebounceKey callers.
func (s *Service) WithDebouncer(d Debouncer) *Service {
	s.debounce = d
	return s
}

// WithDeadlines overrides per-catalog fan-out deadlines.
func (s *Service) WithDeadlines(deadlines map[catalog.Tag]time.Duration) *Service {
	if len(deadlines) > 0 {
		s.deadlines = deadlines
	}
	return s
}

// WithRanker overrides the diversity ranker.
func (s *Service) WithRanker(r *rank.Ranker) *Service {
	s.ranker = r
	return s
}

// WithComposer overrides the score composer (tests inject a fixed clock).
func (s *Service) WithComposer(c *compose.Composer) *Service {
	s.composer = c
	return s
}

// WithLimits overrides the default and maximum result list bounds applied to
// Options.Limit. Non-positive values keep the defaults; the maximum is never
// allowed below the default.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	if s.maxLimit < s.defaultLimit {
		s.maxLimit = s.defaultLimit
	}
	return s
}

// WithMaxPerCatalog bounds how many candidates each adapter is asked for.
func (s *Service) WithMaxPerCatalog(n int) *Service {
	if n > 0 {
		s.maxPerCatalog = n
	}
	return s
}

// Search resolves one query. It never returns an error for ordinary
// operating conditions: adapter failures are converted into zero-result
// contributions and recorded in metrics. The only error is an invalid
// catalog selection.
func (s *Service) Search(ctx context.Context, raw string, opts Options) (domain.Response, error) {
	start := time.Now()

	for _, tag := range opts.Catalogs {
		if !tag.Valid() {
			return domain.Response{}, domain.ErrUnknownCatalog
		}
	}

	q := domain.NewQuery(raw, opts.Catalogs)
	limit := s.normalizeLimit(opts.Limit)

	// Queries below the minimum length short-circuit before any fan-out.
	if q.TooShort() {
		return emptyResponse(start), nil
	}

	if opts.DebounceKey != "" && s.debounce != nil {
		if !s.debounce.Wait(ctx, opts.DebounceKey, q.Normalized) {
			// Superseded by a newer keystroke; the fan-out never happens.
			return emptyResponse(start), nil
		}
	}

	key := cache.Key(q.Normalized, q.Catalogs, limit)

	if entry, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		latency := time.Since(start)
		s.metrics.RecordSearch(q.Normalized, latency, true)
		return domain.Response{
			Results:        entry.Results,
			TotalCount:     entry.TotalCount,
			ResponseTimeMs: latency.Milliseconds(),
			FromCache:      true,
		}, nil
	}

	v, _, _ := s.group.Do(key, func() (any, error) {
		// Only the flight leader takes a sequence number. Followers sharing
		// this flight must not advance it, or they would invalidate the
		// leader's own write.
		mySeq := s.nextSeq(key)

		items := s.fanOut(ctx, q)
		ranked := s.score(q, items)
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}

		entry := cache.Entry{
			Results:    ranked,
			TotalCount: len(ranked),
			CreatedAt:  time.Now(),
		}
		if s.isLatest(key, mySeq) {
			if err := s.cache.Set(ctx, key, entry); err != nil {
				s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
			}
		}
		return entry, nil
	})
	entry := v.(cache.Entry)

	latency := time.Since(start)
	s.metrics.RecordSearch(q.Normalized, latency, false)

	return domain.Response{
		Results:        entry.Results,
		TotalCount:     entry.TotalCount,
		ResponseTimeMs: latency.Milliseconds(),
		FromCache:      false,
	}, nil
}

// ClearCache drops every cached result. Operator action, outside the normal
// request path.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// score runs every candidate through the quality filter, relevance scorer,
// and composer, then applies the recency-first sort and diversity window.
func (s *Service) score(q domain.Query, items []domain.CatalogItem) []domain.ScoredItem {
	scored := make([]domain.ScoredItem, 0, len(items))
	for _, it := range items {
		penalty := s.filter.Penalty(it)
		if quality.Rejected(penalty) {
			continue
		}
		rel := s.scorer.Score(q.Normalized, it.Title)
		scored = append(scored, s.composer.Compose(it, q.Normalized, rel, penalty))
	}
	return s.ranker.Rank(scored)
}

func (s *Service) nextSeq(key string) uint64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	s.seq[key]++
	return s.seq[key]
}

func (s *Service) isLatest(key string, seq uint64) bool {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	return s.seq[key] == seq
}

func (s *Service) normalizeLimit(n int) int {
	switch {
	case n <= 0:
		return s.defaultLimit
	case n > s.maxLimit:
		return s.maxLimit
	default:
		return n
	}
}

func emptyResponse(start time.Time) domain.Response {
	return domain.Response{
		Results:        []domain.ScoredItem{},
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
}
