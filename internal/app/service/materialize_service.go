package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"guide-validator/internal/domain"
)

// MaterializeService rebuilds the listing projection from the upstream
// directory feeds. Fetched profiles arrive as raw listings; this service
// folds their search text and upserts them keyed by (type, source id).
type MaterializeService struct {
	repo    domain.ListingRepository
	sources []domain.Source
	cache   domain.Cache
	logger  *zap.Logger
}

// NewMaterializeService creates a new MaterializeService. cache may be nil.
func NewMaterializeService(
	repo domain.ListingRepository,
	sources []domain.Source,
	cache domain.Cache,
	logger *zap.Logger,
) *MaterializeService {
	return &MaterializeService{
		repo:    repo,
		sources: sources,
		cache:   cache,
		logger:  logger,
	}
}

// RefreshResult holds the outcome of materializing one source.
type RefreshResult struct {
	Source   string
	Count    int
	Duration time.Duration
	Error    error
}

// RefreshAll materializes every source concurrently. Partial failures are
// allowed; each source reports its own outcome. After any successful source
// run the response cache is cleared, since any refresh can change any page.
func (s *MaterializeService) RefreshAll(ctx context.Context) []RefreshResult {
	results := make([]RefreshResult, len(s.sources))
	var wg sync.WaitGroup

	s.logger.Info("starting refresh from all sources",
		zap.Int("source_count", len(s.sources)),
	)

	for i, src := range s.sources {
		wg.Add(1)
		go func(idx int, src domain.Source) {
			defer wg.Done()
			results[idx] = s.refreshSource(ctx, src)
		}(i, src)
	}

	wg.Wait()

	totalRefreshed := 0
	totalErrors := 0
	for _, r := range results {
		if r.Error != nil {
			totalErrors++
		} else {
			totalRefreshed += r.Count
		}
	}

	if totalRefreshed > 0 {
		s.clearCache(ctx)
	}

	s.logger.Info("refresh completed",
		zap.Int("total_refreshed", totalRefreshed),
		zap.Int("sources_failed", totalErrors),
	)

	return results
}

// RefreshSource materializes one source by name. Returns nil when no source
// carries that name.
func (s *MaterializeService) RefreshSource(ctx context.Context, name string) (*RefreshResult, error) {
	for _, src := range s.sources {
		if src.Name() == name {
			result := s.refreshSource(ctx, src)
			if result.Error == nil && result.Count > 0 {
				s.clearCache(ctx)
			}

			return &result, result.Error
		}
	}

	return nil, nil
}

// SourceNames returns the names of all registered sources.
func (s *MaterializeService) SourceNames() []string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}

	return names
}

// CheckSources runs each source's health check, keyed by source name.
func (s *MaterializeService) CheckSources(ctx context.Context) map[string]error {
	health := make(map[string]error, len(s.sources))
	for _, src := range s.sources {
		health[src.Name()] = src.HealthCheck(ctx)
	}

	return health
}

func (s *MaterializeService) refreshSource(ctx context.Context, src domain.Source) RefreshResult {
	start := time.Now()
	result := RefreshResult{
		Source: src.Name(),
	}

	listings, err := src.Fetch(ctx)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		s.logger.Warn("source fetch failed",
			zap.String("source", src.Name()),
			zap.Error(err),
		)

		return result
	}

	// The stored side of matching is canonicalized exactly once, here:
	// filterable attributes to their canonical case, search text folded.
	for _, l := range listings {
		l.NormalizeAttributes()
		l.SearchText = l.FoldedSearchText()
	}

	if len(listings) > 0 {
		if err := s.repo.BulkUpsert(ctx, listings); err != nil {
			result.Error = err
			result.Duration = time.Since(start)
			s.logger.Error("bulk upsert failed",
				zap.String("source", src.Name()),
				zap.Error(err),
			)

			return result
		}
	}

	result.Count = len(listings)
	result.Duration = time.Since(start)

	s.logger.Info("source refresh completed",
		zap.String("source", src.Name()),
		zap.Int("count", result.Count),
		zap.Duration("duration", result.Duration),
	)

	return result
}

func (s *MaterializeService) clearCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn("clearing search cache failed", zap.Error(err))
	}
}
