package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"guide-validator/internal/domain"
	"guide-validator/internal/infra/postgres/migrations"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connected GORM DB.
//
// Prerequisites:
//   - Docker must be running
//   - OR skip integration tests with: go test -short
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container (is Docker running? use -short to skip): %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, migrations.Run(db), "Failed to run migrations")

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

// seedGuide builds a materialized guide listing ready for BulkUpsert,
// canonicalized the same way the materializer persists it.
func seedGuide(sourceID string, mutate ...func(*domain.Listing)) *domain.Listing {
	l := domain.NewListing(domain.ListingTypeGuide, "Guide "+sourceID)
	l.SourceID = sourceID
	l.CountryCode = "VN"
	l.Languages = []string{"en", "vi"}
	l.Specialties = []string{"culture"}
	l.Gender = "female"
	for _, m := range mutate {
		m(l)
	}
	l.NormalizeAttributes()
	l.SearchText = l.FoldedSearchText()

	return l
}

func guideParams(mutate ...func(*domain.SearchParams)) domain.SearchParams {
	p := domain.SearchParams{Type: domain.ListingTypeGuide, Country: "VN", Sort: domain.SortFeatured}
	for _, m := range mutate {
		m(&p)
	}

	return p
}

func TestBulkUpsert_InsertAndUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first := seedGuide("src-1")
	require.NoError(t, repo.BulkUpsert(ctx, []*domain.Listing{first}))
	originalID := first.ID
	require.NotEmpty(t, originalID)

	// Re-materializing the same upstream profile must update in place.
	updated := seedGuide("src-1", func(l *domain.Listing) {
		l.Name = "Nguyễn Văn Kiên"
		l.Verified = true
	})
	second := seedGuide("src-2")
	require.NoError(t, repo.BulkUpsert(ctx, []*domain.Listing{updated, second}))

	var count int64
	require.NoError(t, db.Model(&ListingModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count, "upsert on (type, source_id) must not duplicate")

	var model ListingModel
	require.NoError(t, db.Where("type = ? AND source_id = ?", "guide", "src-1").First(&model).Error)
	assert.Equal(t, originalID, model.ID, "ID must survive re-materialization")
	assert.Equal(t, "Nguyễn Văn Kiên", model.Name)
	assert.True(t, model.Verified)
	assert.Contains(t, model.SearchText, "nguyen van kien", "search_text must be re-folded on update")
}

// TestSearch_TierOrderAndPagination seeds 3 featured, 10 activated and 50
// standard guides and walks every page, checking tier blocks, completeness
// and the absence of duplicates across page boundaries.
func TestSearch_TierOrderAndPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	var listings []*domain.Listing
	for i := 0; i < 3; i++ {
		listings = append(listings, seedGuide(fmt.Sprintf("feat-%02d", i), func(l *domain.Listing) {
			l.Featured = true
		}))
	}
	for i := 0; i < 10; i++ {
		listings = append(listings, seedGuide(fmt.Sprintf("act-%02d", i), func(l *domain.Listing) {
			l.Activated = true
		}))
	}
	for i := 0; i < 50; i++ {
		listings = append(listings, seedGuide(fmt.Sprintf("std-%02d", i)))
	}
	require.NoError(t, repo.BulkUpsert(ctx, listings))

	params := guideParams()
	const pageSize = 24

	var (
		seek *domain.RankKey
		all  []*domain.Listing
		page int
	)
	for {
		got, err := repo.Search(ctx, params, seek, pageSize+1)
		require.NoError(t, err)

		hasMore := len(got) > pageSize
		if hasMore {
			got = got[:pageSize]
		}

		if page == 0 {
			require.GreaterOrEqual(t, len(got), 13)
			for i := 0; i < 3; i++ {
				assert.True(t, got[i].Featured, "featured listings must lead page 1")
			}
			for i := 3; i < 13; i++ {
				assert.True(t, got[i].Activated && !got[i].Featured, "activated follow featured")
			}
		}

		all = append(all, got...)
		page++

		if !hasMore {
			break
		}
		key := domain.KeyFor(got[len(got)-1], params.Sort)
		seek = &key
	}

	require.Equal(t, 63, len(all), "pagination must be complete")
	assert.Equal(t, 3, page, "63 rows at 24 per page is 3 pages")

	seen := make(map[string]bool, len(all))
	for i, l := range all {
		assert.False(t, seen[l.ID], "duplicate listing %s at position %d", l.ID, i)
		seen[l.ID] = true
	}

	// The concatenation of pages must be sorted by the domain order.
	for i := 1; i < len(all); i++ {
		prev := domain.KeyFor(all[i-1], params.Sort)
		curr := domain.KeyFor(all[i], params.Sort)
		assert.True(t, prev.Less(curr, params.Sort), "order violated at position %d", i)
	}
}

func TestSearch_SinglePageWhenLimitCoversAll(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	var listings []*domain.Listing
	for i := 0; i < 63; i++ {
		listings = append(listings, seedGuide(fmt.Sprintf("g-%02d", i)))
	}
	require.NoError(t, repo.BulkUpsert(ctx, listings))

	got, err := repo.Search(ctx, guideParams(), nil, 101)
	require.NoError(t, err)
	assert.Equal(t, 63, len(got), "fetching limit+1 with limit 100 must return all 63 and no extra row")
}

func TestSearch_RatingSortNullsLast(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	r := func(v float64) *float64 { return &v }
	listings := []*domain.Listing{
		seedGuide("no-rating"),
		seedGuide("mid", func(l *domain.Listing) { l.Rating = r(3.5) }),
		seedGuide("top", func(l *domain.Listing) { l.Rating = r(4.9) }),
	}
	require.NoError(t, repo.BulkUpsert(ctx, listings))

	params := guideParams(func(p *domain.SearchParams) { p.Sort = domain.SortRating })
	got, err := repo.Search(ctx, params, nil, 10)
	require.NoError(t, err)
	require.Equal(t, 3, len(got))

	assert.Equal(t, "top", got[0].SourceID)
	assert.Equal(t, "mid", got[1].SourceID)
	assert.Equal(t, "no-rating", got[2].SourceID, "unrated listings sort after rated ones")
}

func TestSearch_PriceSortNullsLast(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	p := func(v int64) *int64 { return &v }
	listings := []*domain.Listing{
		seedGuide("no-price"),
		seedGuide("cheap", func(l *domain.Listing) { l.PriceAmount = p(250_000) }),
		seedGuide("pricey", func(l *domain.Listing) { l.PriceAmount = p(1_200_000) }),
	}
	require.NoError(t, repo.BulkUpsert(ctx, listings))

	params := guideParams(func(sp *domain.SearchParams) { sp.Sort = domain.SortPrice })
	got, err := repo.Search(ctx, params, nil, 10)
	require.NoError(t, err)
	require.Equal(t, 3, len(got))

	assert.Equal(t, "cheap", got[0].SourceID)
	assert.Equal(t, "pricey", got[1].SourceID)
	assert.Equal(t, "no-price", got[2].SourceID, "unpriced listings sort after priced ones")
}

func TestSearch_DiacriticInsensitiveQuery(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	listings := []*domain.Listing{
		seedGuide("kien", func(l *domain.Listing) {
			l.Name = "Nguyễn Văn Kiên"
			l.EnglishName = "Kien Nguyen"
		}),
		seedGuide("danang", func(l *domain.Listing) {
			l.Name = "Đà Nẵng Tours"
		}),
		seedGuide("other", func(l *domain.Listing) {
			l.Name = "Hanoi Walking"
		}),
	}
	require.NoError(t, repo.BulkUpsert(ctx, listings))

	tests := []struct {
		query string
		want  string
	}{
		{"kiên", "kien"},
		{"kien", "kien"},
		{"KIEN", "kien"},
		{"đà nẵng", "danang"},
		{"da nang", "danang"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			params := guideParams(func(p *domain.SearchParams) { p.Query = tt.query })
			got, err := repo.Search(ctx, params, nil, 10)
			require.NoError(t, err)
			require.Equal(t, 1, len(got), "query %q", tt.query)
			assert.Equal(t, tt.want, got[0].SourceID)
		})
	}
}

func TestSearch_FilterSemantics(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	listings := []*domain.Listing{
		seedGuide("a", func(l *domain.Listing) {
			l.Languages = []string{"en", "vi"}
			l.Specialties = []string{"trekking"}
			l.Verified = true
		}),
		seedGuide("b", func(l *domain.Listing) {
			l.Languages = []string{"fr"}
			l.Specialties = []string{"trekking", "food"}
		}),
		seedGuide("c", func(l *domain.Listing) {
			l.Languages = []string{"en"}
			l.Specialties = []string{"culture"}
		}),
		// Upstream case noise; canonicalized at materialization.
		seedGuide("mixed", func(l *domain.Listing) {
			l.CountryCode = "vn"
			l.Languages = []string{"FR"}
			l.Specialties = []string{"Trekking"}
		}),
		seedGuide("hidden", func(l *domain.Listing) {
			l.Approved = false
		}),
	}
	require.NoError(t, repo.BulkUpsert(ctx, listings))

	// Unapproved listings are invisible by default.
	got, err := repo.Search(ctx, guideParams(), nil, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, len(got))

	// Within a dimension values are OR'd, across dimensions AND'd.
	params := guideParams(func(p *domain.SearchParams) {
		p.Languages = []string{"en", "fr"}
		p.Specialties = []string{"trekking"}
	})
	got, err = repo.Search(ctx, params, nil, 10)
	require.NoError(t, err)
	require.Equal(t, 3, len(got))
	ids := []string{got[0].SourceID, got[1].SourceID, got[2].SourceID}
	assert.ElementsMatch(t, []string{"a", "b", "mixed"}, ids)

	params = guideParams(func(p *domain.SearchParams) { p.VerifiedOnly = true })
	got, err = repo.Search(ctx, params, nil, 10)
	require.NoError(t, err)
	require.Equal(t, 1, len(got))
	assert.Equal(t, "a", got[0].SourceID)
}

// TestFacets_MatchesDomainAggregation cross-checks the SQL facet aggregation
// against the in-memory reference implementation over the same rows.
func TestFacets_MatchesDomainAggregation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	var listings []*domain.Listing
	add := func(n int, langs, specs []string, gender string) {
		for i := 0; i < n; i++ {
			src := fmt.Sprintf("%s-%s-%d", langs[0], gender, i)
			listings = append(listings, seedGuide(src, func(l *domain.Listing) {
				l.Languages = langs
				l.Specialties = specs
				l.Gender = gender
			}))
		}
	}
	add(5, []string{"en", "vi"}, []string{"trekking"}, "female")
	add(3, []string{"vi"}, []string{"culture"}, "male")
	add(2, []string{"fr", "vi"}, []string{"trekking", "food"}, "male")
	// Case noise from upstream; both aggregation paths must fold it into
	// the same canonical buckets.
	add(2, []string{"FR"}, []string{"Food"}, "Female")
	require.NoError(t, repo.BulkUpsert(ctx, listings))

	// Filtered by language so the self-exclusion rule is exercised too.
	params := guideParams(func(p *domain.SearchParams) {
		p.Languages = []string{"fr"}
	})

	fromSQL, err := repo.Facets(ctx, params)
	require.NoError(t, err)
	fromDomain := domain.AggregateFacets(listings, params)

	assert.Equal(t, fromDomain.Total, fromSQL.Total)
	for _, dim := range domain.FacetDimensionsFor(params.Type) {
		assert.Equal(t, fromDomain.Dimensions[dim], fromSQL.Dimensions[dim], "dimension %s", dim)
	}
}

func TestGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	l := seedGuide("src-1")
	require.NoError(t, repo.BulkUpsert(ctx, []*domain.Listing{l}))

	got, err := repo.GetByID(ctx, domain.ListingTypeGuide, l.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, l.SourceID, got.SourceID)

	// Wrong type scopes the lookup away.
	got, err = repo.GetByID(ctx, domain.ListingTypeAgency, l.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Malformed identifiers are a miss, not an error.
	got, err = repo.GetByID(ctx, domain.ListingTypeGuide, "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, got)
}
