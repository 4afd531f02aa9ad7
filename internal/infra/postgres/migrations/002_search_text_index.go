package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// addSearchTextIndex backs the substring text search with a trigram index.
// The pg_trgm extension may be unavailable on managed instances, in which
// case queries fall back to a sequential scan on search_text and the
// migration still succeeds.
func addSearchTextIndex() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_search_text_index",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`).Error; err != nil {
				return nil
			}

			return tx.Exec(`CREATE INDEX idx_listings_search_text
				ON listings USING gin (search_text gin_trgm_ops)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`DROP INDEX IF EXISTS idx_listings_search_text`).Error
		},
	}
}
