package directory

import (
	"time"

	"guide-validator/internal/domain"
)

// Response represents one page of the directory profile feed.
type Response struct {
	Profiles   []ProfileRecord `json:"profiles"`
	Pagination Pagination      `json:"pagination"`
}

// ProfileRecord is a provider profile as the upstream directory exposes it.
type ProfileRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EnglishName string `json:"english_name"`
	Headline    string `json:"headline"`

	CountryCode string `json:"country_code"`
	RegionID    string `json:"region_id"`
	CityID      string `json:"city_id"`

	Languages   []string `json:"languages"`
	Specialties []string `json:"specialties"`
	Services    []string `json:"services"`
	Gender      string   `json:"gender"`

	LicenseNumber string `json:"license_number"`
	Verified      bool   `json:"verified"`
	Licensed      bool   `json:"licensed"`
	Featured      bool   `json:"featured"`
	Activated     bool   `json:"activated"`
	Approved      bool   `json:"approved"`

	Rating      *float64 `json:"rating"`
	ReviewCount int      `json:"review_count"`

	Price *Price `json:"price"`

	CreatedAt string `json:"created_at"`
}

// Price is an optional per-day price in minor currency units.
type Price struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Pagination holds feed paging info.
type Pagination struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// ToDomain converts a ProfileRecord to a listing projection. SearchText is
// left empty here; the materializer folds it just before persisting.
func (p *ProfileRecord) ToDomain(t domain.ListingType) *domain.Listing {
	createdAt, _ := time.Parse(time.RFC3339, p.CreatedAt)

	l := &domain.Listing{
		Type:          t,
		SourceID:      p.ID,
		Name:          p.Name,
		EnglishName:   p.EnglishName,
		Headline:      p.Headline,
		CountryCode:   p.CountryCode,
		RegionID:      p.RegionID,
		CityID:        p.CityID,
		Languages:     p.Languages,
		Specialties:   p.Specialties,
		Services:      p.Services,
		Gender:        p.Gender,
		LicenseNumber: p.LicenseNumber,
		Verified:      p.Verified,
		Licensed:      p.Licensed,
		Featured:      p.Featured,
		Activated:     p.Activated,
		Approved:      p.Approved,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		CreatedAt:     createdAt,
	}

	if p.Price != nil {
		amount := p.Price.Amount
		l.PriceAmount = &amount
		l.PriceCurrency = p.Price.Currency
	}

	return l
}
