// Package service provides application use cases.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"guide-validator/internal/domain"
)

// SearchService orchestrates one search request: input normalization, cursor
// validation, the page query, facet aggregation and cursor minting.
type SearchService struct {
	repo     domain.ListingRepository
	cache    domain.Cache
	defaults domain.SearchDefaults
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSearchService creates a new SearchService. cache may be nil, in which
// case every request hits the repository.
func NewSearchService(
	repo domain.ListingRepository,
	cache domain.Cache,
	defaults domain.SearchDefaults,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *SearchService {
	return &SearchService{
		repo:     repo,
		cache:    cache,
		defaults: defaults,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Search runs one faceted search page.
//
// Cursor failures are not request failures: a malformed token, a token minted
// for a different filter set, or a token carrying a non-identifier seek all
// degrade to the first page of the current filter set.
func (s *SearchService) Search(ctx context.Context, params domain.SearchParams) (*domain.SearchResult, error) {
	params.Normalize(s.defaults)

	seek := s.decodeSeek(params)

	cacheKey := searchCacheKey(params, seek)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	// One extra row decides has-more without a second count query.
	listings, err := s.repo.Search(ctx, params, seek, params.Limit+1)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		return nil, err
	}

	var nextCursor string
	if len(listings) > params.Limit {
		listings = listings[:params.Limit]
		last := listings[len(listings)-1]
		nextCursor, err = domain.EncodeCursor(params, domain.KeyFor(last, params.Sort))
		if err != nil {
			return nil, err
		}
	}

	facets, err := s.repo.Facets(ctx, params)
	if err != nil {
		s.logger.Error("facet aggregation failed", zap.Error(err))
		return nil, err
	}

	result := &domain.SearchResult{
		Listings:   listings,
		Facets:     facets,
		NextCursor: nextCursor,
	}

	s.cacheSet(ctx, cacheKey, result)

	s.logger.Debug("search completed",
		zap.String("type", string(params.Type)),
		zap.String("country", params.Country),
		zap.Int64("total", facets.Total),
		zap.Int("count", len(listings)),
		zap.Bool("has_more", nextCursor != ""),
	)

	return result, nil
}

// decodeSeek turns the request cursor into a seek key, applying the
// first-page fallback on any decode problem.
func (s *SearchService) decodeSeek(params domain.SearchParams) *domain.RankKey {
	seek, err := domain.DecodeCursor(params, params.Cursor)
	if err != nil {
		s.logger.Debug("cursor rejected, restarting from first page", zap.Error(err))
		return nil
	}

	// The seek id is interpolated into a keyset comparison against a uuid
	// column; anything unparseable would fail there, so reject it here.
	if seek != nil {
		if _, err := uuid.Parse(seek.ID); err != nil {
			s.logger.Debug("cursor seek id rejected, restarting from first page",
				zap.String("seek_id", seek.ID),
			)
			return nil
		}
	}

	return seek
}

// GetByID retrieves a single listing. Returns nil when not found.
func (s *SearchService) GetByID(ctx context.Context, t domain.ListingType, id string) (*domain.Listing, error) {
	listing, err := s.repo.GetByID(ctx, t, id)
	if err != nil {
		s.logger.Error("get by id failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return listing, nil
}

// Stats returns aggregate listing counts.
func (s *SearchService) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx)
}

// searchCacheKey identifies one page. The fingerprint already covers type,
// country and every filter plus the sort mode, so the seek position and page
// size are the only remaining coordinates.
func searchCacheKey(params domain.SearchParams, seek *domain.RankKey) string {
	seekID := ""
	if seek != nil {
		seekID = seek.ID
	}

	return fmt.Sprintf("search:%s:%s:%d", params.Fingerprint(), seekID, params.Limit)
}

func (s *SearchService) cacheGet(ctx context.Context, key string) *domain.SearchResult {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil
	}

	var result domain.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn("dropping undecodable cache entry", zap.String("key", key))
		_ = s.cache.Delete(ctx, key)
		return nil
	}

	return &result
}

func (s *SearchService) cacheSet(ctx context.Context, key string, result *domain.SearchResult) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}

	// Cache errors never fail the request.
	_ = s.cache.Set(ctx, key, data, s.cacheTTL)
}
