package domain

import (
	"sort"
	"strings"
)

// FacetDimension is a filterable dimension whose per-value result counts are
// returned alongside search results.
type FacetDimension string

const (
	FacetLanguages   FacetDimension = "languages"
	FacetSpecialties FacetDimension = "specialties"
	FacetServices    FacetDimension = "services"
	FacetGenders     FacetDimension = "genders"
)

// FacetDimensionsFor returns the fixed facet set of a listing type.
func FacetDimensionsFor(t ListingType) []FacetDimension {
	switch t {
	case ListingTypeGuide:
		return []FacetDimension{FacetLanguages, FacetSpecialties, FacetGenders}
	case ListingTypeAgency:
		return []FacetDimension{FacetLanguages, FacetSpecialties}
	case ListingTypeDMC:
		return []FacetDimension{FacetLanguages, FacetServices}
	case ListingTypeTransport:
		return []FacetDimension{FacetServices, FacetLanguages}
	default:
		return nil
	}
}

// Values extracts a listing's values for this dimension.
func (d FacetDimension) Values(l *Listing) []string {
	switch d {
	case FacetLanguages:
		return l.Languages
	case FacetSpecialties:
		return l.Specialties
	case FacetServices:
		return l.Services
	case FacetGenders:
		if l.Gender == "" {
			return nil
		}
		return []string{l.Gender}
	default:
		return nil
	}
}

// WithoutDimension returns a copy of the params with the given dimension's
// own filter cleared. Facet counts for a dimension ignore that dimension's
// active filter so selecting a value never collapses its sibling counts.
func (p SearchParams) WithoutDimension(d FacetDimension) SearchParams {
	out := p
	switch d {
	case FacetLanguages:
		out.Languages = nil
	case FacetSpecialties:
		out.Specialties = nil
	case FacetServices:
		out.Services = nil
	case FacetGenders:
		out.Genders = nil
	}
	return out
}

// AggregateFacets computes facet counts over an unpaginated candidate set.
// It is the reference implementation of the SQL aggregation in the postgres
// repository; both must agree. Total reflects the fully-filtered set, while
// each dimension is counted with its own filter excluded.
func AggregateFacets(listings []*Listing, p SearchParams) Facets {
	facets := Facets{Dimensions: make(map[FacetDimension][]FacetValue)}

	for _, l := range listings {
		if p.Matches(l) {
			facets.Total++
		}
	}

	for _, dim := range FacetDimensionsFor(p.Type) {
		scoped := p.WithoutDimension(dim)
		counts := make(map[string]int64)

		for _, l := range listings {
			if !scoped.Matches(l) {
				continue
			}
			for _, v := range dim.Values(l) {
				v = strings.ToLower(v)
				if v != "" {
					counts[v]++
				}
			}
		}

		facets.Dimensions[dim] = SortFacetValues(counts)
	}

	return facets
}

// SortFacetValues turns a value-count map into the response ordering:
// count descending, then value ascending. Zero counts are omitted.
func SortFacetValues(counts map[string]int64) []FacetValue {
	values := make([]FacetValue, 0, len(counts))
	for v, c := range counts {
		if c > 0 {
			values = append(values, FacetValue{Value: v, Count: c})
		}
	}

	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})

	return values
}
