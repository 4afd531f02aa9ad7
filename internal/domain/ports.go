package domain

import (
	"context"
	"time"
)

// ListingRepository defines persistence operations over the listings store.
// Implementation: internal/infra/postgres/repository.go
type ListingRepository interface {
	// Search returns up to limit listings matching params in the strict
	// (tier, sort field, id) order, starting strictly after seek when a
	// seek key is given. The caller fetches limit+1 to detect a next page.
	Search(ctx context.Context, params SearchParams, seek *RankKey, limit int) ([]*Listing, error)

	// Facets computes per-dimension value counts and the total over the
	// filtered, unpaginated set.
	Facets(ctx context.Context, params SearchParams) (Facets, error)

	// GetByID retrieves one listing. Returns nil when not found.
	GetByID(ctx context.Context, t ListingType, id string) (*Listing, error)

	// BulkUpsert writes materialized listings, keyed by (type, source id).
	BulkUpsert(ctx context.Context, listings []*Listing) error

	// Stats returns listing counts per type and tier for the dashboard.
	Stats(ctx context.Context) (Stats, error)
}

// Stats holds aggregate listing counts.
type Stats struct {
	Total  int64
	ByType map[ListingType]int64
	ByTier map[int]int64
}

// Source is an upstream directory feed a listing projection is materialized
// from. Implementation: internal/infra/source/directory
type Source interface {
	// Name returns the unique identifier for this source.
	Name() string

	// ListingType returns the entity type this source feeds.
	ListingType() ListingType

	// Fetch retrieves the current provider profiles as listings.
	Fetch(ctx context.Context) ([]*Listing, error)

	// HealthCheck verifies the source is reachable.
	HealthCheck(ctx context.Context) error
}

// Cache defines the byte cache used for search responses.
// Implementation: internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}
