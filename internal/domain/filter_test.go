package domain

import "testing"

func matchParams(mutate ...func(*SearchParams)) SearchParams {
	p := SearchParams{Type: ListingTypeGuide, Country: "VN"}
	for _, m := range mutate {
		m(&p)
	}
	return p
}

func TestMatches_CountryAndType(t *testing.T) {
	l := testListing("a")

	if !matchParams().Matches(l) {
		t.Error("listing in requested country must match")
	}
	if matchParams(func(p *SearchParams) { p.Country = "TH" }).Matches(l) {
		t.Error("listing outside requested country must not match")
	}
	if matchParams(func(p *SearchParams) { p.Type = ListingTypeAgency }).Matches(l) {
		t.Error("listing of another type must not match")
	}
}

func TestMatches_ApprovalVisibility(t *testing.T) {
	pending := testListing("a", func(l *Listing) { l.Approved = false })

	if matchParams().Matches(pending) {
		t.Error("unapproved listing must be invisible to public search")
	}
	if !matchParams(func(p *SearchParams) { p.IncludeUnapproved = true }).Matches(pending) {
		t.Error("admin search must see unapproved listings")
	}
}

func TestMatches_SetFiltersAreAnyOf(t *testing.T) {
	l := testListing("a", func(l *Listing) {
		l.Languages = []string{"vi", "en"}
		l.Specialties = []string{"trekking"}
	})

	tests := []struct {
		name     string
		params   SearchParams
		expected bool
	}{
		{
			"one of several requested languages present",
			matchParams(func(p *SearchParams) { p.Languages = []string{"fr", "en"} }),
			true,
		},
		{
			"no requested language present",
			matchParams(func(p *SearchParams) { p.Languages = []string{"fr", "de"} }),
			false,
		},
		{
			"language and specialty filters AND together",
			matchParams(func(p *SearchParams) {
				p.Languages = []string{"en"}
				p.Specialties = []string{"diving"}
			}),
			false,
		},
		{
			"empty set imposes no constraint",
			matchParams(),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Matches(l); got != tt.expected {
				t.Errorf("Matches() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMatches_GenderFilter(t *testing.T) {
	l := testListing("a", func(l *Listing) { l.Gender = "female" })

	if !matchParams(func(p *SearchParams) { p.Genders = []string{"female", "male"} }).Matches(l) {
		t.Error("requested gender present must match")
	}
	if matchParams(func(p *SearchParams) { p.Genders = []string{"male"} }).Matches(l) {
		t.Error("gender outside requested set must not match")
	}
}

func TestMatches_NumericBounds(t *testing.T) {
	priced := testListing("a", func(l *Listing) {
		l.PriceAmount = i64(50000)
		l.Rating = f64(4.2)
	})
	bare := testListing("b")

	tests := []struct {
		name     string
		params   SearchParams
		listing  *Listing
		expected bool
	}{
		{"price within inclusive bounds", matchParams(func(p *SearchParams) {
			p.PriceMin = i64(50000)
			p.PriceMax = i64(50000)
		}), priced, true},
		{"price below min", matchParams(func(p *SearchParams) { p.PriceMin = i64(60000) }), priced, false},
		{"price above max", matchParams(func(p *SearchParams) { p.PriceMax = i64(40000) }), priced, false},
		{"unpriced excluded by price bound", matchParams(func(p *SearchParams) { p.PriceMin = i64(1) }), bare, false},
		{"rating at min boundary", matchParams(func(p *SearchParams) { p.MinRating = f64(4.2) }), priced, true},
		{"rating below min", matchParams(func(p *SearchParams) { p.MinRating = f64(4.5) }), priced, false},
		{"unrated excluded by min rating", matchParams(func(p *SearchParams) { p.MinRating = f64(1) }), bare, false},
		{"no bounds, no constraint", matchParams(), bare, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Matches(tt.listing); got != tt.expected {
				t.Errorf("Matches() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMatches_BooleanFlags(t *testing.T) {
	unverified := testListing("a")
	verified := testListing("b", func(l *Listing) { l.Verified = true; l.Licensed = true })

	if matchParams(func(p *SearchParams) { p.VerifiedOnly = true }).Matches(unverified) {
		t.Error("verified-only search must exclude unverified listings")
	}
	if !matchParams(func(p *SearchParams) { p.VerifiedOnly = true; p.LicensedOnly = true }).Matches(verified) {
		t.Error("verified and licensed listing must pass both flags")
	}
	// False flags never exclude anything.
	if !matchParams().Matches(unverified) {
		t.Error("absent flags must not constrain")
	}
}

func TestMatches_QueryDiacriticInsensitive(t *testing.T) {
	l := testListing("a", func(l *Listing) {
		l.Name = "Nguyễn Văn Kiên"
		l.SearchText = l.FoldedSearchText()
	})

	for _, q := range []string{"nguyen", "NGUYEN", "Nguyễn", "văn kiên", "van kien"} {
		p := matchParams(func(p *SearchParams) { p.Query = q })
		if !p.Matches(l) {
			t.Errorf("query %q must match listing named %q", q, l.Name)
		}
	}

	miss := matchParams(func(p *SearchParams) { p.Query = "pham" })
	if miss.Matches(l) {
		t.Error("non-matching query must not match")
	}
}

func TestMatches_QueryAgainstLicenseNumber(t *testing.T) {
	l := testListing("a", func(l *Listing) {
		l.LicenseNumber = "101100116"
		l.SearchText = l.FoldedSearchText()
	})

	p := matchParams(func(p *SearchParams) { p.Query = "101100116" })
	if !p.Matches(l) {
		t.Error("license number query must match the holder")
	}
}

func TestMatches_QueryFallsBackToFoldingRawFields(t *testing.T) {
	// Listings without precomputed SearchText still match; folding happens
	// on the fly from the raw fields.
	l := testListing("a", func(l *Listing) { l.Name = "Đà Lạt Trails" })

	p := matchParams(func(p *SearchParams) { p.Query = "da lat" })
	if !p.Matches(l) {
		t.Error("query must match via on-the-fly folding when SearchText is empty")
	}
}
