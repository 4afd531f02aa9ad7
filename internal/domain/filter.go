package domain

import "strings"

// Matches is the compiled predicate of a SearchParams over a single listing.
// It is the reference semantics for the SQL filter the repository builds:
// both must accept exactly the same rows.
func (p SearchParams) Matches(l *Listing) bool {
	if l.Type != p.Type {
		return false
	}
	if !p.IncludeUnapproved && !l.Approved {
		return false
	}
	if l.CountryCode != p.Country {
		return false
	}
	if p.RegionID != "" && l.RegionID != p.RegionID {
		return false
	}
	if p.CityID != "" && l.CityID != p.CityID {
		return false
	}

	if !anyOverlap(p.Languages, l.Languages) {
		return false
	}
	if !anyOverlap(p.Specialties, l.Specialties) {
		return false
	}
	if !anyOverlap(p.Services, l.Services) {
		return false
	}
	if len(p.Genders) > 0 && !contains(p.Genders, strings.ToLower(l.Gender)) {
		return false
	}

	if p.VerifiedOnly && !l.Verified {
		return false
	}
	if p.LicensedOnly && !l.Licensed {
		return false
	}

	if p.PriceMin != nil && (l.PriceAmount == nil || *l.PriceAmount < *p.PriceMin) {
		return false
	}
	if p.PriceMax != nil && (l.PriceAmount == nil || *l.PriceAmount > *p.PriceMax) {
		return false
	}
	if p.MinRating != nil && (l.Rating == nil || *l.Rating < *p.MinRating) {
		return false
	}

	if p.Query != "" {
		text := l.SearchText
		if text == "" {
			text = l.FoldedSearchText()
		}
		if !strings.Contains(text, Fold(p.Query)) {
			return false
		}
	}

	return true
}

// anyOverlap implements set-filter semantics: an empty request set imposes
// no constraint, otherwise any requested value present in the listing's set
// is a match (OR across requested values).
func anyOverlap(requested, have []string) bool {
	if len(requested) == 0 {
		return true
	}
	for _, h := range have {
		if contains(requested, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
