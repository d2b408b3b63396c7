package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mediadex/mediadex/internal/adapter"
	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
)

// Per-catalog deadlines, tuned to each upstream's latency profile.
var defaultDeadlines = map[catalog.Tag]time.Duration{
	catalog.Film:  2 * time.Second,
	catalog.Book:  2500 * time.Millisecond,
	catalog.Game:  2 * time.Second,
	catalog.Music: 1500 * time.Millisecond,
}

const fallbackDeadline = 2 * time.Second

// fanOut issues one concurrent call per selected catalog and merges whatever
// subset succeeded. A branch that errors or times out contributes zero
// results plus a failure record; it never fails the search.
func (s *Service) fanOut(ctx context.Context, q domain.Query) []domain.CatalogItem {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var all []domain.CatalogItem

	for _, tag := range q.Catalogs {
		tag := tag
		a, ok := s.adapters[tag]
		if !ok {
			s.metrics.RecordAdapterFailure(tag)
			continue
		}
		g.Go(func() error {
			items, err := s.fetchBranch(gctx, a, q.Normalized)
			if err != nil {
				s.metrics.RecordAdapterFailure(tag)
				s.logger.Warn("catalog branch failed",
					zap.String("catalog", string(tag)),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return dedupe(all)
}

// fetchBranch races one adapter call against its catalog deadline. The race
// guarantees the orchestrator never waits on a hung call: a branch that
// ignores its context is abandoned at the deadline.
func (s *Service) fetchBranch(
	ctx context.Context, a adapter.Adapter, query string,
) ([]domain.CatalogItem, error) {
	bctx, cancel := context.WithTimeout(ctx, s.deadlineFor(a.Tag()))
	defer cancel()

	type result struct {
		items []domain.CatalogItem
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		items, err := a.Search(bctx, query, s.maxPerCatalog)
		ch <- result{items, err}
	}()

	select {
	case r := <-ch:
		return r.items, r.err
	case <-bctx.Done():
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrAdapterTimeout, a.Tag(), bctx.Err())
	}
}

func (s *Service) deadlineFor(tag catalog.Tag) time.Duration {
	if d, ok := s.deadlines[tag]; ok && d > 0 {
		return d
	}
	return fallbackDeadline
}

// dedupe drops repeated (catalog, id) pairs, keeping the first occurrence.
func dedupe(items []domain.CatalogItem) []domain.CatalogItem {
	type itemKey struct {
		tag catalog.Tag
		id  string
	}
	seen := make(map[itemKey]bool, len(items))
	out := items[:0]
	for _, it := range items {
		k := itemKey{it.Catalog, it.ID}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}
