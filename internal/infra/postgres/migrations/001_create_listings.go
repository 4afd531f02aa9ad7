package migrations

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// listing001 freezes the listings schema as of this migration. Later schema
// changes get their own migration rather than editing this struct.
type listing001 struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type     string `gorm:"type:varchar(20);not null;index:idx_type_source,unique"`
	SourceID string `gorm:"type:varchar(100);not null;index:idx_type_source,unique"`

	Name        string `gorm:"type:varchar(300);not null"`
	EnglishName string `gorm:"type:varchar(300)"`
	Headline    string `gorm:"type:varchar(500)"`

	CountryCode string `gorm:"type:varchar(2);not null"`
	RegionID    string `gorm:"type:varchar(64)"`
	CityID      string `gorm:"type:varchar(64)"`

	Languages   pq.StringArray `gorm:"type:text[]"`
	Specialties pq.StringArray `gorm:"type:text[]"`
	Services    pq.StringArray `gorm:"type:text[]"`
	Gender      string         `gorm:"type:varchar(20)"`

	LicenseNumber string `gorm:"type:varchar(100)"`
	Verified      bool   `gorm:"default:false"`
	Licensed      bool   `gorm:"default:false"`
	Featured      bool   `gorm:"default:false"`
	Activated     bool   `gorm:"default:false"`
	Approved      bool   `gorm:"default:false"`

	Tier int16 `gorm:"not null;default:2"`

	Rating      *float64 `gorm:"type:decimal(3,2)"`
	ReviewCount int      `gorm:"default:0"`

	PriceAmount   *int64 `gorm:"type:bigint"`
	PriceCurrency string `gorm:"type:varchar(3)"`

	SearchText string `gorm:"type:text;not null;default:''"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (listing001) TableName() string {
	return "listings"
}

func createListingsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_listings",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Migrator().CreateTable(&listing001{}); err != nil {
				return err
			}

			// Composite indexes matching the three keyset orderings. Every
			// search filters on (type, country_code) and orders by tier
			// first, so those lead each index.
			indexes := []string{
				`CREATE INDEX idx_listings_featured_order
					ON listings (type, country_code, tier, created_at DESC, id)`,
				`CREATE INDEX idx_listings_rating_order
					ON listings (type, country_code, tier, COALESCE(rating, -1) DESC, id)`,
				`CREATE INDEX idx_listings_price_order
					ON listings (type, country_code, tier, COALESCE(price_amount, 9223372036854775807), id)`,
				`CREATE INDEX idx_listings_languages ON listings USING gin (languages)`,
				`CREATE INDEX idx_listings_specialties ON listings USING gin (specialties)`,
				`CREATE INDEX idx_listings_services ON listings USING gin (services)`,
			}

			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable("listings")
		},
	}
}
