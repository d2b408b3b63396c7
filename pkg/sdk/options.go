package sdk

import (
	"time"

	"go.uber.org/zap"

	"github.com/mediadex/mediadex/internal/adapter"
)

// CatalogUpstream configures one catalog's upstream API.
type CatalogUpstream struct {
	BaseURL      string
	APIKey       string
	ImageBaseURL string
	Timeout      time.Duration
	RateLimitRPS float64
}

// Option configures the client.
type Option func(*clientConfig)

type clientConfig struct {
	logger    *zap.Logger
	upstreams map[Catalog]CatalogUpstream
	adapters  []adapter.Adapter

	cacheTTL       time.Duration
	cacheCapacity  int
	redisAddrs     []string
	redisPassword  string
	redisKeyPrefix string

	deadlines     map[Catalog]time.Duration
	maxPerCatalog int
	prefixSize    int
	catalogQuota  int
	totalCap      int

	debounceShort  time.Duration
	debounceMedium time.Duration
	debounceLong   time.Duration
}

// WithLogger sets the client's logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithCatalog enables a catalog against the given upstream API.
func WithCatalog(tag Catalog, up CatalogUpstream) Option {
	return func(c *clientConfig) { c.upstreams[tag] = up }
}

// WithAdapter installs a custom catalog adapter, replacing any upstream
// configured for the same tag.
func WithAdapter(a adapter.Adapter) Option {
	return func(c *clientConfig) { c.adapters = append(c.adapters, a) }
}

// WithCacheTTL sets how long cached results stay fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *clientConfig) { c.cacheTTL = ttl }
}

// WithCacheCapacity bounds the in-memory cache entry count.
func WithCacheCapacity(n int) Option {
	return func(c *clientConfig) { c.cacheCapacity = n }
}

// WithRedisCache swaps the in-memory result cache for a shared Redis one.
func WithRedisCache(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.redisAddrs = addrs
		c.redisPassword = password
	}
}

// WithRedisKeyPrefix overrides the Redis cache key prefix.
func WithRedisKeyPrefix(prefix string) Option {
	return func(c *clientConfig) { c.redisKeyPrefix = prefix }
}

// WithDeadline overrides one catalog's fan-out deadline.
func WithDeadline(tag Catalog, d time.Duration) Option {
	return func(c *clientConfig) { c.deadlines[tag] = d }
}

// WithMaxPerCatalog bounds how many candidates each upstream is asked for.
func WithMaxPerCatalog(n int) Option {
	return func(c *clientConfig) { c.maxPerCatalog = n }
}

// WithResultWindow tunes the diversity window: the prefix size, the per-catalog
// quota inside it, and the overall result cap.
func WithResultWindow(prefixSize, quota, totalCap int) Option {
	return func(c *clientConfig) {
		c.prefixSize = prefixSize
		c.catalogQuota = quota
		c.totalCap = totalCap
	}
}

// WithDebounce sets the keystroke debounce delay tiers for Debounced searches.
func WithDebounce(short, medium, long time.Duration) Option {
	return func(c *clientConfig) {
		c.debounceShort = short
		c.debounceMedium = medium
		c.debounceLong = long
	}
}

// SearchOption configures one search call.
type SearchOption func(*searchConfig)

type searchConfig struct {
	catalogs    []Catalog
	limit       int
	debounceKey string
}

// Limit bounds the result list for this search.
func Limit(n int) SearchOption {
	return func(c *searchConfig) { c.limit = n }
}

// Categories restricts the search to the given catalogs.
func Categories(tags ...Catalog) SearchOption {
	return func(c *searchConfig) { c.catalogs = tags }
}

// Debounced waits out the keystroke debounce window before fanning out. The
// key identifies the input source; a newer search under the same key
// supersedes this one.
func Debounced(key string) SearchOption {
	return func(c *searchConfig) { c.debounceKey = key }
}
