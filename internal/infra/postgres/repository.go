package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"guide-validator/internal/domain"
)

// Sentinels substituted for NULL sort fields so missing values land at the
// end of their tier. They mirror the sentinels in domain.KeyFor; the two
// sides must stay aligned or keyset seeks skip or repeat rows.
const (
	ratingNullSQL = float64(-1)
	priceNullSQL  = int64(math.MaxInt64)
)

// Repository implements domain.ListingRepository using PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Search returns up to limit listings matching params in the strict
// (tier, sort field, id) order, starting after seek when given.
func (r *Repository) Search(ctx context.Context, params domain.SearchParams, seek *domain.RankKey, limit int) ([]*domain.Listing, error) {
	query := r.buildFilterQuery(params).WithContext(ctx)

	if seek != nil {
		query = applySeek(query, params.Sort, *seek)
	}

	query = applyOrdering(query, params.Sort).Limit(limit)

	var models []ListingModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("searching listings: %w", err)
	}

	listings := make([]*domain.Listing, len(models))
	for i, m := range models {
		listings[i] = m.ToDomain()
	}

	return listings, nil
}

// Facets computes the total and per-dimension value counts over the
// filtered, unpaginated set. Each dimension is counted with its own filter
// excluded so selecting a value never collapses its sibling counts.
func (r *Repository) Facets(ctx context.Context, params domain.SearchParams) (domain.Facets, error) {
	facets := domain.Facets{Dimensions: make(map[domain.FacetDimension][]domain.FacetValue)}

	if err := r.buildFilterQuery(params).WithContext(ctx).Count(&facets.Total).Error; err != nil {
		return domain.Facets{}, fmt.Errorf("counting listings: %w", err)
	}

	for _, dim := range domain.FacetDimensionsFor(params.Type) {
		counts, err := r.countDimension(ctx, params.WithoutDimension(dim), dim)
		if err != nil {
			return domain.Facets{}, err
		}
		facets.Dimensions[dim] = domain.SortFacetValues(counts)
	}

	return facets, nil
}

type facetRow struct {
	Value string
	Count int64
}

// countDimension groups the filtered set by one facet dimension.
func (r *Repository) countDimension(ctx context.Context, params domain.SearchParams, dim domain.FacetDimension) (map[string]int64, error) {
	query := r.buildFilterQuery(params).WithContext(ctx)

	switch dim {
	case domain.FacetLanguages:
		query = query.Select("unnest(languages) AS value, count(*) AS count").Group("value")
	case domain.FacetSpecialties:
		query = query.Select("unnest(specialties) AS value, count(*) AS count").Group("value")
	case domain.FacetServices:
		query = query.Select("unnest(services) AS value, count(*) AS count").Group("value")
	case domain.FacetGenders:
		query = query.Select("lower(gender) AS value, count(*) AS count").
			Where("gender <> ''").
			Group("lower(gender)")
	default:
		return nil, fmt.Errorf("unknown facet dimension %q", dim)
	}

	var rows []facetRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("aggregating %s facet: %w", dim, err)
	}

	// Case folding happens here rather than in SQL because set-returning
	// unnest cannot be wrapped in lower() inside a select list.
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[strings.ToLower(row.Value)] += row.Count
	}

	return counts, nil
}

// GetByID retrieves a single listing. Returns nil when not found or when id
// is not a well-formed identifier.
func (r *Repository) GetByID(ctx context.Context, t domain.ListingType, id string) (*domain.Listing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	var model ListingModel
	err := r.db.WithContext(ctx).
		Where("type = ? AND id = ?", string(t), id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("getting listing by id: %w", err)
	}

	return model.ToDomain(), nil
}

// BulkUpsert writes materialized listings in batches, keyed by the stable
// (type, source_id) identity.
func (r *Repository) BulkUpsert(ctx context.Context, listings []*domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := FromDomainSlice(listings)
	for _, m := range models {
		m.UpdatedAt = now
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "type"}, {Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "english_name", "headline",
			"country_code", "region_id", "city_id",
			"languages", "specialties", "services", "gender",
			"license_number", "verified", "licensed", "featured", "activated", "approved",
			"tier", "rating", "review_count",
			"price_amount", "price_currency",
			"search_text", "updated_at",
		}),
	}).CreateInBatches(models, 100).Error

	if err != nil {
		return fmt.Errorf("bulk upserting listings: %w", err)
	}

	for i, m := range models {
		listings[i].ID = m.ID
		listings[i].CreatedAt = m.CreatedAt
		listings[i].UpdatedAt = m.UpdatedAt
	}

	return nil
}

// Stats returns listing counts per type and tier for the dashboard.
func (r *Repository) Stats(ctx context.Context) (domain.Stats, error) {
	stats := domain.Stats{
		ByType: make(map[domain.ListingType]int64),
		ByTier: make(map[int]int64),
	}

	if err := r.db.WithContext(ctx).Model(&ListingModel{}).Count(&stats.Total).Error; err != nil {
		return domain.Stats{}, fmt.Errorf("counting listings: %w", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byType []bucket
	err := r.db.WithContext(ctx).Model(&ListingModel{}).
		Select("type AS key, count(*) AS count").
		Group("type").
		Scan(&byType).Error
	if err != nil {
		return domain.Stats{}, fmt.Errorf("counting listings by type: %w", err)
	}
	for _, b := range byType {
		stats.ByType[domain.ListingType(b.Key)] = b.Count
	}

	type tierBucket struct {
		Tier  int
		Count int64
	}

	var byTier []tierBucket
	err = r.db.WithContext(ctx).Model(&ListingModel{}).
		Select("tier, count(*) AS count").
		Group("tier").
		Scan(&byTier).Error
	if err != nil {
		return domain.Stats{}, fmt.Errorf("counting listings by tier: %w", err)
	}
	for _, b := range byTier {
		stats.ByTier[b.Tier] = b.Count
	}

	return stats, nil
}

// buildFilterQuery compiles SearchParams into a parameterized WHERE clause.
// It must accept exactly the rows domain.SearchParams.Matches accepts; the
// repository integration tests cross-check the two.
func (r *Repository) buildFilterQuery(params domain.SearchParams) *gorm.DB {
	query := r.db.Model(&ListingModel{}).
		Where("type = ?", string(params.Type)).
		Where("country_code = ?", params.Country)

	if !params.IncludeUnapproved {
		query = query.Where("approved = TRUE")
	}

	if params.RegionID != "" {
		query = query.Where("region_id = ?", params.RegionID)
	}
	if params.CityID != "" {
		query = query.Where("city_id = ?", params.CityID)
	}

	// Set filters: any requested value present in the listing's array.
	if len(params.Languages) > 0 {
		query = query.Where("languages && ?", pq.Array(params.Languages))
	}
	if len(params.Specialties) > 0 {
		query = query.Where("specialties && ?", pq.Array(params.Specialties))
	}
	if len(params.Services) > 0 {
		query = query.Where("services && ?", pq.Array(params.Services))
	}
	if len(params.Genders) > 0 {
		query = query.Where("lower(gender) = ANY(?)", pq.Array(params.Genders))
	}

	if params.VerifiedOnly {
		query = query.Where("verified = TRUE")
	}
	if params.LicensedOnly {
		query = query.Where("licensed = TRUE")
	}

	if params.PriceMin != nil {
		query = query.Where("price_amount >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		query = query.Where("price_amount <= ?", *params.PriceMax)
	}
	if params.MinRating != nil {
		query = query.Where("rating >= ?", *params.MinRating)
	}

	// Both sides of the text match are folded: search_text at
	// materialization time, the query here.
	if params.Query != "" {
		query = query.Where("search_text LIKE ?", "%"+likeEscape(domain.Fold(params.Query))+"%")
	}

	return query
}

// applyOrdering adds the (tier, sort field, id) ORDER BY. NULL sort fields
// are coalesced to sentinels so they land at the end of their tier.
func applyOrdering(query *gorm.DB, mode domain.SortMode) *gorm.DB {
	switch mode {
	case domain.SortRating:
		return query.Order("tier ASC").
			Order("COALESCE(rating, -1) DESC").
			Order("id ASC")
	case domain.SortPrice:
		return query.Order("tier ASC").
			Order(fmt.Sprintf("COALESCE(price_amount, %d) ASC", priceNullSQL)).
			Order("id ASC")
	default:
		return query.Order("tier ASC").
			Order("created_at DESC").
			Order("id ASC")
	}
}

// applySeek adds the keyset condition: rows strictly after the cursor key in
// the total order of applyOrdering. No OFFSET is ever used, so deep pages
// cost the same as the first and stay stable under concurrent inserts.
func applySeek(query *gorm.DB, mode domain.SortMode, key domain.RankKey) *gorm.DB {
	switch mode {
	case domain.SortRating:
		return query.Where(
			"(tier > ?) OR (tier = ? AND COALESCE(rating, ?) < ?) OR (tier = ? AND COALESCE(rating, ?) = ? AND id > ?)",
			key.Tier,
			key.Tier, ratingNullSQL, key.Rating,
			key.Tier, ratingNullSQL, key.Rating, key.ID,
		)
	case domain.SortPrice:
		return query.Where(
			"(tier > ?) OR (tier = ? AND COALESCE(price_amount, ?) > ?) OR (tier = ? AND COALESCE(price_amount, ?) = ? AND id > ?)",
			key.Tier,
			key.Tier, priceNullSQL, key.Price,
			key.Tier, priceNullSQL, key.Price, key.ID,
		)
	default:
		createdAt := time.UnixMicro(key.CreatedAt).UTC()
		return query.Where(
			"(tier > ?) OR (tier = ? AND created_at < ?) OR (tier = ? AND created_at = ? AND id > ?)",
			key.Tier,
			key.Tier, createdAt,
			key.Tier, createdAt, key.ID,
		)
	}
}

// likeEscape escapes LIKE metacharacters in user query text.
func likeEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
