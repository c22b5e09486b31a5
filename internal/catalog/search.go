package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// resultReuseWindow is how long a committed result may answer the same query again
const resultReuseWindow = time.Minute

// ProductSearcher is the part of the catalog client a Searcher needs
type ProductSearcher interface {
	Search(ctx context.Context, query string) ([]domain.ProductSummary, error)
}

// Searcher keeps the result of the latest search for one session.
// When searches overlap the last one issued wins: an older response that
// completes afterwards is dropped instead of overwriting newer results.
type Searcher struct {
	client ProductSearcher
	logger *zap.Logger

	mu           sync.Mutex
	generation   uint64
	committedGen uint64
	query        string
	products     []domain.ProductSummary
	failed       bool
	committedAt  time.Time
	now          func() time.Time
}

func NewSearcher(client ProductSearcher, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{client: client, logger: logger, now: time.Now}
}

// Search fetches products for query and commits them as the current result.
// A failed fetch commits an empty result and returns the error alongside it.
// A response for a query that has since been superseded returns *errors.ErrSuperseded
// and leaves the current result untouched.
func (s *Searcher) Search(ctx context.Context, query string) ([]domain.ProductSummary, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	products, err := s.client.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("Discarding stale search response", zap.String("query", query))
		return nil, &errors.ErrSuperseded{Query: query}
	}
	if err != nil {
		s.logger.Error("Product search failed", zap.String("query", query), zap.Error(err))
		products = []domain.ProductSummary{}
	}
	s.committedGen = gen
	s.query = query
	s.products = products
	s.failed = err != nil
	s.committedAt = s.now()
	return append([]domain.ProductSummary(nil), products...), err
}

// Current returns the committed products for query so a filter or sort change does not refetch.
// It reports false when the committed result answers another query, came from a failed fetch,
// is older than resultReuseWindow, or a newer search is still in flight.
func (s *Searcher) Current(query string) ([]domain.ProductSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.committedGen == 0 || s.committedGen != s.generation || s.failed || s.query != query {
		return nil, false
	}
	if s.now().Sub(s.committedAt) >= resultReuseWindow {
		return nil, false
	}
	return append([]domain.ProductSummary(nil), s.products...), true
}
