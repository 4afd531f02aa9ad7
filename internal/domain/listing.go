// Package domain contains the core search logic and entities.
// This package has no infrastructure dependencies.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ListingType identifies which provider directory a listing belongs to.
type ListingType string

const (
	ListingTypeGuide     ListingType = "guide"
	ListingTypeAgency    ListingType = "agency"
	ListingTypeDMC       ListingType = "dmc"
	ListingTypeTransport ListingType = "transport"
)

// ListingTypes returns all searchable listing types.
func ListingTypes() []ListingType {
	return []ListingType{ListingTypeGuide, ListingTypeAgency, ListingTypeDMC, ListingTypeTransport}
}

// ValidListingType reports whether t is a known listing type.
func ValidListingType(t ListingType) bool {
	switch t {
	case ListingTypeGuide, ListingTypeAgency, ListingTypeDMC, ListingTypeTransport:
		return true
	}
	return false
}

// ParseListingType maps a route path segment to a listing type. Accepts both
// the canonical singular form and the plural used in public route paths.
func ParseListingType(s string) (ListingType, bool) {
	switch s {
	case "guides":
		return ListingTypeGuide, true
	case "agencies":
		return ListingTypeAgency, true
	case "dmcs":
		return ListingTypeDMC, true
	case "transports":
		return ListingTypeTransport, true
	}

	if t := ListingType(s); ValidListingType(t) {
		return t, true
	}
	return "", false
}

// Listing is the read-facing, denormalized projection of a provider profile.
// Listings are materialized from upstream directory records and treated as
// read-only inputs by the search path.
type Listing struct {
	ID   string      `json:"id"`
	Type ListingType `json:"type"`

	// SourceID is the provider profile's identifier in the upstream
	// directory; (Type, SourceID) is the stable materialization key.
	SourceID string `json:"source_id"`

	// Display names. EnglishName holds the transliterated/English variant
	// when the primary name uses a non-Latin or diacritic-heavy script.
	Name        string `json:"name"`
	EnglishName string `json:"english_name,omitempty"`
	Headline    string `json:"headline,omitempty"`

	// Location
	CountryCode string `json:"country_code"` // ISO-3166 alpha-2
	RegionID    string `json:"region_id,omitempty"`
	CityID      string `json:"city_id,omitempty"`

	// Filterable attribute sets
	Languages   []string `json:"languages,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	Services    []string `json:"services,omitempty"`
	Gender      string   `json:"gender,omitempty"` // guides only

	// Verification and visibility state
	LicenseNumber string `json:"license_number,omitempty"`
	Verified      bool   `json:"verified"`
	Licensed      bool   `json:"licensed"`
	Featured      bool   `json:"featured"`
	Activated     bool   `json:"activated"`
	Approved      bool   `json:"approved"`

	// Reputation
	Rating      *float64 `json:"rating,omitempty"` // 0-5, nil until reviews exist
	ReviewCount int      `json:"review_count"`

	// Optional price, minor currency units
	PriceAmount   *int64 `json:"price_amount,omitempty"`
	PriceCurrency string `json:"price_currency,omitempty"`

	// Pre-folded searchable text, maintained by the materializer so the
	// stored side of text matching uses exactly the same folding as queries.
	SearchText string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewListing creates a listing with a fresh identifier and timestamps.
func NewListing(t ListingType, name string) *Listing {
	now := time.Now().UTC()
	return &Listing{
		ID:        uuid.NewString(),
		Type:      t,
		Name:      name,
		Approved:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasPrice reports whether the listing carries a price.
func (l *Listing) HasPrice() bool {
	return l.PriceAmount != nil
}

// HasRating reports whether the listing has accumulated any reviews.
func (l *Listing) HasRating() bool {
	return l.Rating != nil
}
