package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sales-dashboard-api/internal/engine"
	"sales-dashboard-api/internal/facet"
	"sales-dashboard-api/internal/models"
	"sales-dashboard-api/pkg/cache"
)

// SalesService answers sales queries over an in-memory dataset. It models an
// asynchronous backend: every GetSales waits out a fixed artificial latency
// before running the query engine, and results are cached in Redis keyed on
// the full request tuple. The dataset is read-only for the service's
// lifetime, so queries need no locking.
type SalesService struct {
	data   []models.Sale
	cache  *cache.RedisCache
	delay  time.Duration
	logger *zap.Logger
}

func NewSalesService(data []models.Sale, redisCache *cache.RedisCache, delay time.Duration, logger *zap.Logger) *SalesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesService{
		data:   data,
		cache:  redisCache,
		delay:  delay,
		logger: logger,
	}
}

// GetSales runs one query through search, filters, sort and pagination. It
// always resolves for a valid page size; filters that exclude everything or
// a page past the end produce an empty, well-formed result.
func (s *SalesService) GetSales(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	startTime := time.Now()

	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	// Try cache first
	cacheKey := ""
	if s.cache.IsAvailable() {
		cacheKey = cache.QueryKey(req)
		if cached, err := s.cache.GetQueryResult(cacheKey); err == nil && cached != nil {
			cached.Duration = fmt.Sprintf("%s (cached)", time.Since(startTime).String())
			s.logger.Debug("cache hit", zap.String("key", cacheKey))
			return cached, nil
		}
		s.logger.Debug("cache miss", zap.String("key", cacheKey))
	}

	// Simulated backend latency. The engine itself runs to completion
	// without suspension once started.
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	result, err := engine.Execute(s.data, req)
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(startTime).String()

	if s.cache.IsAvailable() && cacheKey != "" {
		if err := s.cache.SetQueryResult(cacheKey, result); err != nil {
			s.logger.Warn("failed to cache result", zap.Error(err))
		}
	}

	return result, nil
}

// GetUniqueValues returns the facet for field over the full dataset,
// independent of any filter selection. No artificial latency.
func (s *SalesService) GetUniqueValues(field string) ([]string, error) {
	return facet.UniqueValues(s.data, field)
}

// DatasetSize reports how many records back the service.
func (s *SalesService) DatasetSize() int {
	return len(s.data)
}

// validateRequest applies defaults and rejects malformed sort parameters.
// A non-positive page size is left for the engine to reject, so the
// invalid-argument contract lives in one place.
func (s *SalesService) validateRequest(req *models.QueryRequest) error {
	if req.Page <= 0 {
		req.Page = 1
	}

	if req.Sort.Field == "" {
		req.Sort = models.DefaultSortConfig()
	}
	if !req.Sort.Field.Valid() {
		return fmt.Errorf("invalid sort field: %s", req.Sort.Field)
	}
	if req.Sort.Direction == "" {
		req.Sort.Direction = models.SortAsc
	}
	if !req.Sort.Direction.Valid() {
		return fmt.Errorf("invalid sort direction: %s", req.Sort.Direction)
	}

	return nil
}
