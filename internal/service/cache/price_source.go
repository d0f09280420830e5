package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrendLens/internal/domain/models"
	"TrendLens/internal/domain/repository"
	pkgcache "TrendLens/pkg/cache"
	applogger "TrendLens/pkg/logger"
	"TrendLens/pkg/util"
)

// CachedPriceSource serves bar history from a cache, falling back to the
// wrapped source on a miss.
type CachedPriceSource struct {
	source  repository.PriceSource
	cache   pkgcache.Service
	ttl     time.Duration
	logger  *applogger.Logger
	metrics repository.Metrics
}

// NewCachedPriceSource decorates source. A nil cache disables caching.
func NewCachedPriceSource(source repository.PriceSource, c pkgcache.Service, ttl time.Duration, l *applogger.Logger, m repository.Metrics) *CachedPriceSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedPriceSource{source: source, cache: c, ttl: ttl, logger: l, metrics: m}
}

// Key builds the cache key for a query.
func Key(ticker string, q models.BarQuery) string {
	interval := q.Interval
	if interval == "" {
		interval = "1d"
	}
	return fmt.Sprintf("bars:%s:%s:%s:%s", ticker, interval, util.FormatDate(q.Start), util.FormatDate(q.End))
}

func (s *CachedPriceSource) Bars(ctx context.Context, ticker string, q models.BarQuery) ([]models.Bar, error) {
	if s.cache == nil {
		return s.source.Bars(ctx, ticker, q)
	}

	key := Key(ticker, q)
	bars, err := pkgcache.GetTyped[[]models.Bar](ctx, s.cache, key)
	switch {
	case err == nil:
		s.lookup(true)
		return bars, nil
	case !errors.Is(err, pkgcache.ErrCacheMiss):
		s.logger.Warn("price cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	s.lookup(false)

	bars, err = s.source.Bars(ctx, ticker, q)
	if err != nil {
		return nil, err
	}
	// empty histories are not cached so a later listing can show up
	if len(bars) > 0 {
		if err := s.cache.Set(ctx, key, bars, s.ttl); err != nil {
			s.logger.Warn("price cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return bars, nil
}

func (s *CachedPriceSource) lookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}
