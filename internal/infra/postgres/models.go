package postgres

import (
	"time"

	"guide-validator/internal/domain"

	"github.com/lib/pq"
)

// ListingModel is the GORM model for the listings table.
type ListingModel struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type     string `gorm:"type:varchar(20);not null;index:idx_type_source,unique"`
	SourceID string `gorm:"type:varchar(100);not null;index:idx_type_source,unique"`

	Name        string `gorm:"type:varchar(300);not null"`
	EnglishName string `gorm:"type:varchar(300)"`
	Headline    string `gorm:"type:varchar(500)"`

	CountryCode string `gorm:"type:varchar(2);not null;index"`
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

	// Tier is denormalized from featured/activated by the materializer so
	// ordering and keyset seeks stay on plain indexed columns.
	Tier int16 `gorm:"not null;default:2"`

	Rating      *float64 `gorm:"type:decimal(3,2)"`
	ReviewCount int      `gorm:"default:0"`

	PriceAmount   *int64 `gorm:"type:bigint"`
	PriceCurrency string `gorm:"type:varchar(3)"`

	// SearchText is the pre-folded text blob queries substring-match on.
	SearchText string `gorm:"type:text;not null;default:''"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for ListingModel.
func (ListingModel) TableName() string {
	return "listings"
}

// ToDomain converts ListingModel to domain.Listing.
func (m *ListingModel) ToDomain() *domain.Listing {
	return &domain.Listing{
		ID:            m.ID,
		Type:          domain.ListingType(m.Type),
		SourceID:      m.SourceID,
		Name:          m.Name,
		EnglishName:   m.EnglishName,
		Headline:      m.Headline,
		CountryCode:   m.CountryCode,
		RegionID:      m.RegionID,
		CityID:        m.CityID,
		Languages:     m.Languages,
		Specialties:   m.Specialties,
		Services:      m.Services,
		Gender:        m.Gender,
		LicenseNumber: m.LicenseNumber,
		Verified:      m.Verified,
		Licensed:      m.Licensed,
		Featured:      m.Featured,
		Activated:     m.Activated,
		Approved:      m.Approved,
		Rating:        m.Rating,
		ReviewCount:   m.ReviewCount,
		PriceAmount:   m.PriceAmount,
		PriceCurrency: m.PriceCurrency,
		SearchText:    m.SearchText,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain creates a ListingModel from domain.Listing.
func FromDomain(l *domain.Listing) *ListingModel {
	return &ListingModel{
		ID:            l.ID,
		Type:          string(l.Type),
		SourceID:      l.SourceID,
		Name:          l.Name,
		EnglishName:   l.EnglishName,
		Headline:      l.Headline,
		CountryCode:   l.CountryCode,
		RegionID:      l.RegionID,
		CityID:        l.CityID,
		Languages:     l.Languages,
		Specialties:   l.Specialties,
		Services:      l.Services,
		Gender:        l.Gender,
		LicenseNumber: l.LicenseNumber,
		Verified:      l.Verified,
		Licensed:      l.Licensed,
		Featured:      l.Featured,
		Activated:     l.Activated,
		Approved:      l.Approved,
		Tier:          int16(l.Tier()),
		Rating:        l.Rating,
		ReviewCount:   l.ReviewCount,
		PriceAmount:   l.PriceAmount,
		PriceCurrency: l.PriceCurrency,
		SearchText:    l.SearchText,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// FromDomainSlice converts a slice of domain.Listing to ListingModels.
func FromDomainSlice(listings []*domain.Listing) []*ListingModel {
	models := make([]*ListingModel, len(listings))
	for i, l := range listings {
		models[i] = FromDomain(l)
	}

	return models
}
