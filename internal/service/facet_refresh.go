package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultRefreshInterval = 10 * time.Minute

var facetRefreshMu sync.Mutex

// FacetRefresher reloads the cached categories and brands
type FacetRefresher interface {
	RefreshFacets(ctx context.Context) error
}

// RunFacetRefreshOnce reloads facets once. Failures are logged; the previous cache entries stay until they expire.
func RunFacetRefreshOnce(ctx context.Context, refresher FacetRefresher, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	facetRefreshMu.Lock()
	defer facetRefreshMu.Unlock()

	start := time.Now()
	if err := refresher.RefreshFacets(ctx); err != nil {
		logger.Warn("Facet refresh failed", zap.Error(err))
		return
	}
	logger.Debug("Facet refresh completed", zap.Duration("took", time.Since(start)))
}

// RunFacetRefreshLoop refreshes once, then every interval until ctx is done. Call from a goroutine.
func RunFacetRefreshLoop(ctx context.Context, refresher FacetRefresher, interval time.Duration, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultRefreshInterval
	}

	RunFacetRefreshOnce(ctx, refresher, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			RunFacetRefreshOnce(ctx, refresher, logger)
		}
	}
}
