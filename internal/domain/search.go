package domain

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// SortMode selects the secondary sort applied within a priority tier.
type SortMode string

const (
	SortFeatured SortMode = "featured" // newest first
	SortRating   SortMode = "rating"   // rating desc, nulls last
	SortPrice    SortMode = "price"    // price asc, nulls last (guides only)
)

// SearchDefaults holds the ambient search policy. It is injected into the
// orchestrator at construction time rather than living as package state, so
// tests can run with different defaults.
type SearchDefaults struct {
	FallbackCountry string
	PageSize        int
	MaxPageSize     int
}

// SearchParams is the structured filter request for one listing type.
// All filters compose with logical AND; set-valued filters match when any
// requested value appears in the listing's corresponding set.
type SearchParams struct {
	Type ListingType

	Country  string
	RegionID string
	CityID   string

	Languages   []string
	Specialties []string
	Services    []string
	Genders     []string

	Query string

	PriceMin  *int64
	PriceMax  *int64
	MinRating *float64

	VerifiedOnly bool
	LicensedOnly bool

	// IncludeUnapproved widens visibility to not-yet-approved listings.
	// Only the admin surface sets this.
	IncludeUnapproved bool

	Sort   SortMode
	Cursor string
	Limit  int
}

// Normalize applies the degrade-gracefully input policy: unknown values are
// replaced with defaults, bounds are clamped, and nothing here ever fails.
// A missing or non-two-letter country code falls back to the configured
// country rather than failing closed.
func (p *SearchParams) Normalize(d SearchDefaults) {
	p.Country = strings.ToUpper(strings.TrimSpace(p.Country))
	if len(p.Country) != 2 || !isAlpha(p.Country) {
		p.Country = d.FallbackCountry
	}

	p.Query = strings.TrimSpace(p.Query)

	switch p.Sort {
	case SortFeatured, SortRating:
	case SortPrice:
		// Price ordering only exists for guides.
		if p.Type != ListingTypeGuide {
			p.Sort = SortFeatured
		}
	default:
		p.Sort = SortFeatured
	}

	if p.Limit <= 0 {
		p.Limit = d.PageSize
	}
	if p.Limit > d.MaxPageSize {
		p.Limit = d.MaxPageSize
	}

	if p.MinRating != nil {
		r := *p.MinRating
		if r < 0 {
			r = 0
		}
		if r > 5 {
			r = 5
		}
		p.MinRating = &r
	}

	p.Languages = cleanSet(p.Languages)
	p.Specialties = cleanSet(p.Specialties)
	p.Services = cleanSet(p.Services)
	p.Genders = cleanSet(p.Genders)
}

// Fingerprint returns a stable hash of the (filter, sort) combination.
// Cursors embed it so a token minted for one result set is never applied to
// a different one.
func (p SearchParams) Fingerprint() string {
	h := fnv.New64a()

	write := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}

	write(string(p.Type))
	write(p.Country)
	write(p.RegionID)
	write(p.CityID)
	write(strings.Join(sortedCopy(p.Languages), ","))
	write(strings.Join(sortedCopy(p.Specialties), ","))
	write(strings.Join(sortedCopy(p.Services), ","))
	write(strings.Join(sortedCopy(p.Genders), ","))
	write(Fold(p.Query))
	write(fmtInt64Ptr(p.PriceMin))
	write(fmtInt64Ptr(p.PriceMax))
	if p.MinRating != nil {
		write(fmt.Sprintf("%.2f", *p.MinRating))
	} else {
		write("")
	}
	write(fmt.Sprintf("%t|%t|%t", p.VerifiedOnly, p.LicensedOnly, p.IncludeUnapproved))
	write(string(p.Sort))

	return fmt.Sprintf("%016x", h.Sum64())
}

// FacetValue is one (value, count) pair within a facet dimension.
type FacetValue struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// Facets holds per-dimension value counts over the filtered (pre-pagination)
// set, plus the total cardinality of that set.
type Facets struct {
	Dimensions map[FacetDimension][]FacetValue
	Total      int64
}

// SearchResult is one page of listings plus facets and the continuation
// cursor. An empty NextCursor signals the last page.
type SearchResult struct {
	Listings   []*Listing
	Facets     Facets
	NextCursor string
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// cleanSet trims, lowercases and de-duplicates filter values, dropping empties.
func cleanSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

func fmtInt64Ptr(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
