package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/mediadex/mediadex/internal/domain"
)

// RedisConfig holds connection parameters for the shared cache backend.
type RedisConfig struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// Redis is a shared cache backed by Redis. TTL is enforced server-side via
// SET EX; capacity is left to the server's eviction policy.
type Redis struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*Redis)(nil)

// NewRedis connects to Redis and returns a cache store.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "mediadex:search:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	return &Redis{client: client, prefix: cfg.KeyPrefix, ttl: cfg.TTL}, nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	cmd := r.client.B().Ping().Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Get retrieves and decodes an entry. Expiry is server-side, so a present key
// is always fresh.
func (r *Redis) Get(ctx context.Context, key string) (Entry, bool, error) {
	cmd := r.client.B().Get().Key(r.prefix + key).Build()
	data, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt entry behaves as a miss.
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// Set stores an entry with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	cmd := r.client.B().Set().Key(r.prefix + key).Value(string(data)).Ex(r.ttl).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Clear removes every entry under the key prefix via SCAN.
func (r *Redis) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		cmd := r.client.B().Scan().Cursor(cursor).Match(r.prefix + "*").Count(100).Build()
		scan, err := r.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
		}

		if len(scan.Elements) > 0 {
			del := r.client.B().Del().Key(scan.Elements...).Build()
			if err := r.client.Do(ctx, del).Error(); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
			}
		}

		cursor = scan.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

// Close shuts down the client.
func (r *Redis) Close() {
	r.client.Close()
}
