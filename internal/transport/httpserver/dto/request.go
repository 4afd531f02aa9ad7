// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"strconv"
	"strings"

	"guide-validator/internal/domain"
)

// SearchRequest represents the query parameters of a listing search.
//
// Validation is deliberately thin: the input policy is to degrade invalid
// values to defaults rather than reject them, so only abusive sizes fail
// validation. Semantic cleanup (country fallback, limit clamping, sort
// checks) happens in domain normalization.
type SearchRequest struct {
	Country string `query:"country" validate:"max=10"`
	Region  string `query:"region" validate:"max=64"`
	City    string `query:"city" validate:"max=64"`

	// Comma-separated value sets.
	Languages       string `query:"lang" validate:"max=200"`
	Specialties     string `query:"spec" validate:"max=200"`
	Specializations string `query:"specializations" validate:"max=200"` // legacy alias of spec
	Services        string `query:"services" validate:"max=200"`
	Gender          string `query:"gender" validate:"max=100"`

	Query string `query:"q" validate:"max=200"`

	PriceMin  string `query:"min" validate:"max=20"`
	PriceMax  string `query:"max" validate:"max=20"`
	MinRating string `query:"minRating" validate:"max=10"`

	Verified    bool `query:"verified"`
	License     bool `query:"license"` // legacy alias of licenseOnly
	LicenseOnly bool `query:"licenseOnly"`

	Sort   string `query:"sort" validate:"max=20"`
	Cursor string `query:"cursor" validate:"max=512"`
	Limit  int    `query:"limit"`
}

// ToParams converts the request into domain search parameters for the given
// listing type. Unparseable numeric filters are dropped, matching the
// degrade-gracefully policy.
func (r *SearchRequest) ToParams(t domain.ListingType) domain.SearchParams {
	specs := r.Specialties
	if specs == "" {
		specs = r.Specializations
	}

	return domain.SearchParams{
		Type:         t,
		Country:      r.Country,
		RegionID:     strings.TrimSpace(r.Region),
		CityID:       strings.TrimSpace(r.City),
		Languages:    splitCSV(r.Languages),
		Specialties:  splitCSV(specs),
		Services:     splitCSV(r.Services),
		Genders:      splitCSV(r.Gender),
		Query:        r.Query,
		PriceMin:     parseInt64(r.PriceMin),
		PriceMax:     parseInt64(r.PriceMax),
		MinRating:    parseFloat64(r.MinRating),
		VerifiedOnly: r.Verified,
		LicensedOnly: r.LicenseOnly || r.License,
		Sort:         domain.SortMode(r.Sort),
		Cursor:       r.Cursor,
		Limit:        r.Limit,
	}
}

// splitCSV splits a comma-separated filter into values. Empty segments are
// dropped here; lowercasing and de-duplication happen in normalization.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func parseInt64(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func parseFloat64(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}
