package domain

import "testing"

var testDefaults = SearchDefaults{
	FallbackCountry: "VN",
	PageSize:        24,
	MaxPageSize:     100,
}

func TestNormalize_CountryFallback(t *testing.T) {
	tests := []struct {
		name     string
		country  string
		expected string
	}{
		{"valid lowercase", "vn", "VN"},
		{"valid with whitespace", " TH ", "TH"},
		{"missing", "", "VN"},
		{"too long", "VNM", "VN"},
		{"digits", "1N", "VN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SearchParams{Type: ListingTypeGuide, Country: tt.country}
			p.Normalize(testDefaults)
			if p.Country != tt.expected {
				t.Errorf("Country = %q, want %q", p.Country, tt.expected)
			}
		})
	}
}

func TestNormalize_LimitClamping(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"zero uses default", 0, 24},
		{"negative uses default", -5, 24},
		{"within bounds kept", 50, 50},
		{"above max clamped", 500, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SearchParams{Type: ListingTypeGuide, Country: "VN", Limit: tt.limit}
			p.Normalize(testDefaults)
			if p.Limit != tt.expected {
				t.Errorf("Limit = %d, want %d", p.Limit, tt.expected)
			}
		})
	}
}

func TestNormalize_SortMode(t *testing.T) {
	tests := []struct {
		name     string
		typ      ListingType
		sort     SortMode
		expected SortMode
	}{
		{"unknown defaults to featured", ListingTypeGuide, "bogus", SortFeatured},
		{"empty defaults to featured", ListingTypeGuide, "", SortFeatured},
		{"rating kept", ListingTypeAgency, SortRating, SortRating},
		{"price kept for guides", ListingTypeGuide, SortPrice, SortPrice},
		{"price rejected for agencies", ListingTypeAgency, SortPrice, SortFeatured},
		{"price rejected for transport", ListingTypeTransport, SortPrice, SortFeatured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SearchParams{Type: tt.typ, Country: "VN", Sort: tt.sort}
			p.Normalize(testDefaults)
			if p.Sort != tt.expected {
				t.Errorf("Sort = %q, want %q", p.Sort, tt.expected)
			}
		})
	}
}

func TestNormalize_MinRatingClamped(t *testing.T) {
	p := SearchParams{Type: ListingTypeGuide, Country: "VN", MinRating: f64(7)}
	p.Normalize(testDefaults)
	if *p.MinRating != 5 {
		t.Errorf("MinRating = %v, want clamped to 5", *p.MinRating)
	}

	p = SearchParams{Type: ListingTypeGuide, Country: "VN", MinRating: f64(-1)}
	p.Normalize(testDefaults)
	if *p.MinRating != 0 {
		t.Errorf("MinRating = %v, want clamped to 0", *p.MinRating)
	}
}

func TestNormalize_SetCleanup(t *testing.T) {
	p := SearchParams{
		Type:      ListingTypeGuide,
		Country:   "VN",
		Languages: []string{" EN ", "vi", "en", "", "  "},
	}
	p.Normalize(testDefaults)

	want := []string{"en", "vi"}
	if len(p.Languages) != len(want) {
		t.Fatalf("Languages = %v, want %v", p.Languages, want)
	}
	for i := range want {
		if p.Languages[i] != want[i] {
			t.Errorf("Languages[%d] = %q, want %q", i, p.Languages[i], want[i])
		}
	}
}

func TestNormalize_BlankQueryDropped(t *testing.T) {
	p := SearchParams{Type: ListingTypeGuide, Country: "VN", Query: "   "}
	p.Normalize(testDefaults)
	if p.Query != "" {
		t.Errorf("Query = %q, want empty after trimming", p.Query)
	}
}
