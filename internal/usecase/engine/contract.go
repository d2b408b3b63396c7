package engine

import (
	"context"
	"time"

	"github.com/mediadex/mediadex/internal/cache"
	"github.com/mediadex/mediadex/internal/domain/catalog"
)

// Cache is the result cache contract the engine consumes.
type Cache interface {
	Get(ctx context.Context, key string) (cache.Entry, bool, error)
	Set(ctx context.Context, key string, entry cache.Entry) error
	Clear(ctx context.Context) error
}

// Observer receives search telemetry. Implementations must never block.
type Observer interface {
	RecordSearch(query string, latency time.Duration, cacheHit bool)
	RecordAdapterFailure(tag catalog.Tag)
}

// Debouncer coalesces rapid repeated queries per key. Wait reports false when
// a newer call superseded this one; the delay adapts to the query length.
type Debouncer interface {
	Wait(ctx context.Context, key, query string) bool
}
