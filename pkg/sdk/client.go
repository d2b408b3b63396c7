package sdk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mediadex/mediadex/internal/adapter"
	"github.com/mediadex/mediadex/internal/cache"
	"github.com/mediadex/mediadex/internal/domain/catalog"
	"github.com/mediadex/mediadex/internal/metrics"
	"github.com/mediadex/mediadex/internal/usecase/debounce"
	"github.com/mediadex/mediadex/internal/usecase/engine"
	"github.com/mediadex/mediadex/internal/usecase/rank"
)

const (
	defaultCacheTTL      = 10 * time.Minute
	defaultCacheCapacity = 1000
	defaultSweepInterval = 5 * time.Minute
)

// closer is implemented by both cache backends.
type closer interface {
	Close()
}

// Client is the mediadex SDK entry point. Construct once and share.
type Client struct {
	engine *engine.Service
	cache  closer
	stats  *metrics.Collector
}

// New creates a Client. At least one catalog must be configured via
// WithCatalog or WithAdapter.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		upstreams: make(map[Catalog]CatalogUpstream),
		deadlines: make(map[Catalog]time.Duration),
	}
	for _, o := range opts {
		o(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	adapters, err := buildAdapters(cfg, logger)
	if err != nil {
		return nil, err
	}
	if len(adapters) == 0 {
		return nil, errors.New("sdk: at least one catalog required (use WithCatalog or WithAdapter)")
	}

	store, c, err := buildCache(cfg)
	if err != nil {
		return nil, err
	}

	stats := metrics.NewCollector()

	svc := engine.New(adapters, store, stats, logger).
		WithDebouncer(buildDebouncer(cfg))
	if len(cfg.deadlines) > 0 {
		deadlines := make(map[catalog.Tag]time.Duration, len(cfg.deadlines))
		for tag, d := range cfg.deadlines {
			deadlines[catalog.Tag(tag)] = d
		}
		svc.WithDeadlines(deadlines)
	}
	if cfg.maxPerCatalog > 0 {
		svc.WithMaxPerCatalog(cfg.maxPerCatalog)
	}
	if cfg.prefixSize > 0 || cfg.catalogQuota > 0 || cfg.totalCap > 0 {
		svc.WithRanker(rank.NewRanker().WithWindow(cfg.prefixSize, cfg.catalogQuota, cfg.totalCap))
	}

	return &Client{engine: svc, cache: c, stats: stats}, nil
}

// Search resolves one query across the configured catalogs.
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) (Response, error) {
	var sc searchConfig
	for _, o := range opts {
		o(&sc)
	}

	tags := make([]catalog.Tag, len(sc.catalogs))
	for i, t := range sc.catalogs {
		tags[i] = catalog.Tag(t)
	}

	resp, err := c.engine.Search(ctx, query, engine.Options{
		Catalogs:    tags,
		Limit:       sc.limit,
		DebounceKey: sc.debounceKey,
	})
	if err != nil {
		return Response{}, fmt.Errorf("sdk: search: %w", err)
	}
	return responseFromDomain(resp), nil
}

// Stats returns a snapshot of the client's search counters.
func (c *Client) Stats() Stats {
	return statsFromSnapshot(c.stats.Snapshot())
}

// ClearCache drops every cached result.
func (c *Client) ClearCache(ctx context.Context) error {
	if err := c.engine.ClearCache(ctx); err != nil {
		return fmt.Errorf("sdk: clear cache: %w", err)
	}
	return nil
}

// Close releases the cache backend.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

func buildAdapters(cfg *clientConfig, logger *zap.Logger) ([]adapter.Adapter, error) {
	custom := make(map[catalog.Tag]bool, len(cfg.adapters))
	adapters := make([]adapter.Adapter, 0, len(cfg.adapters)+len(cfg.upstreams))
	for _, a := range cfg.adapters {
		custom[a.Tag()] = true
		adapters = append(adapters, a)
	}

	for _, tag := range catalog.All() {
		up, ok := cfg.upstreams[Catalog(tag)]
		if !ok || custom[tag] {
			continue
		}
		base := adapter.Config{
			BaseURL:      up.BaseURL,
			APIKey:       up.APIKey,
			Timeout:      up.Timeout,
			RateLimitRPS: up.RateLimitRPS,
			Logger:       logger,
		}
		switch tag {
		case catalog.Film:
			adapters = append(adapters, adapter.NewFilm(base, up.ImageBaseURL))
		case catalog.Book:
			adapters = append(adapters, adapter.NewBook(base, up.ImageBaseURL))
		case catalog.Game:
			adapters = append(adapters, adapter.NewGame(base))
		case catalog.Music:
			adapters = append(adapters, adapter.NewMusic(base))
		}
	}

	for tag := range cfg.upstreams {
		if !catalog.Tag(tag).Valid() {
			return nil, fmt.Errorf("sdk: unknown catalog %q", tag)
		}
	}
	return adapters, nil
}

func buildCache(cfg *clientConfig) (engine.Cache, closer, error) {
	ttl := cfg.cacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	if len(cfg.redisAddrs) > 0 {
		rds, err := cache.NewRedis(cache.RedisConfig{
			Addrs:     cfg.redisAddrs,
			Password:  cfg.redisPassword,
			KeyPrefix: cfg.redisKeyPrefix,
			TTL:       ttl,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("sdk: create redis cache: %w", err)
		}
		return rds, rds, nil
	}

	capacity := cfg.cacheCapacity
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	mem := cache.NewMemory(ttl, capacity, defaultSweepInterval)
	return mem, mem, nil
}

func buildDebouncer(cfg *clientConfig) *debounce.Scheduler {
	return debounce.NewScheduler().
		WithDelays(cfg.debounceShort, cfg.debounceMedium, cfg.debounceLong)
}
