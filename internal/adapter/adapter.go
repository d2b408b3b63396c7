// Package adapter translates per-catalog search APIs into the common
// CatalogItem shape. Every adapter fails fast with a distinguishable error
// instead of hanging; deadlines are enforced by the caller's context.
package adapter

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
)

// Adapter fetches raw candidates for a query from one catalog.
type Adapter interface {
	Tag() catalog.Tag
	Search(ctx context.Context, query string, maxResults int) ([]domain.CatalogItem, error)
}

// Config holds the settings shared by the HTTP adapters.
type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration // client-level cap, independent of the orchestrator deadline
	RateLimitRPS float64       // 0 = unlimited
	Logger       *zap.Logger
}

func (c Config) limiter() *rate.Limiter {
	if c.RateLimitRPS <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.RateLimitRPS), 1)
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
