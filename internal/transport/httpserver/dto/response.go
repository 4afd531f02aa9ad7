package dto

import (
	"time"

	"guide-validator/internal/app/service"
	"guide-validator/internal/domain"
)

// ListingResponse represents a single listing in the response.
type ListingResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	EnglishName string `json:"english_name,omitempty"`
	Headline    string `json:"headline,omitempty"`

	CountryCode string `json:"country_code"`
	RegionID    string `json:"region_id,omitempty"`
	CityID      string `json:"city_id,omitempty"`

	Languages   []string `json:"languages,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	Services    []string `json:"services,omitempty"`
	Gender      string   `json:"gender,omitempty"`

	Verified bool `json:"verified"`
	Licensed bool `json:"licensed"`
	Featured bool `json:"featured"`

	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count"`

	PriceAmount   *int64 `json:"price_amount,omitempty"`
	PriceCurrency string `json:"price_currency,omitempty"`

	CreatedAt string `json:"created_at"`
}

// FromDomainListing converts domain.Listing to ListingResponse.
func FromDomainListing(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:            l.ID,
		Type:          string(l.Type),
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
		Verified:      l.Verified,
		Licensed:      l.Licensed,
		Featured:      l.Featured,
		Rating:        l.Rating,
		ReviewCount:   l.ReviewCount,
		PriceAmount:   l.PriceAmount,
		PriceCurrency: l.PriceCurrency,
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
	}
}

// FacetValueResponse is one (value, count) pair within a facet dimension.
type FacetValueResponse struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// SearchResponse represents one search result page. Facets is keyed by
// dimension name, with "total" carrying the cardinality of the whole
// filtered set.
type SearchResponse struct {
	Results    []ListingResponse      `json:"results"`
	Facets     map[string]interface{} `json:"facets"`
	NextCursor string                 `json:"nextCursor,omitempty"`
}

// FromSearchResult converts domain.SearchResult to SearchResponse.
func FromSearchResult(result *domain.SearchResult) SearchResponse {
	listings := make([]ListingResponse, len(result.Listings))
	for i, l := range result.Listings {
		listings[i] = FromDomainListing(l)
	}

	facets := make(map[string]interface{}, len(result.Facets.Dimensions)+1)
	for dim, values := range result.Facets.Dimensions {
		out := make([]FacetValueResponse, len(values))
		for i, v := range values {
			out[i] = FacetValueResponse{Value: v.Value, Count: v.Count}
		}
		facets[string(dim)] = out
	}
	facets["total"] = result.Facets.Total

	return SearchResponse{
		Results:    listings,
		Facets:     facets,
		NextCursor: result.NextCursor,
	}
}

// RefreshResultResponse represents the outcome of refreshing one source.
type RefreshResultResponse struct {
	Source   string `json:"source"`
	Count    int    `json:"count"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// RefreshResponse represents the response of a refresh-all operation.
type RefreshResponse struct {
	Results []RefreshResultResponse `json:"results"`
	Summary RefreshSummary          `json:"summary"`
}

// RefreshSummary summarizes a refresh run.
type RefreshSummary struct {
	TotalRefreshed int `json:"total_refreshed"`
	SourcesOK      int `json:"sources_ok"`
	SourcesFail    int `json:"sources_fail"`
}

// FromRefreshResults converts service.RefreshResult slice to RefreshResponse.
func FromRefreshResults(results []service.RefreshResult) RefreshResponse {
	resp := RefreshResponse{
		Results: make([]RefreshResultResponse, len(results)),
	}

	for i, r := range results {
		errMsg := ""
		if r.Error != nil {
			errMsg = r.Error.Error()
			resp.Summary.SourcesFail++
		} else {
			resp.Summary.TotalRefreshed += r.Count
			resp.Summary.SourcesOK++
		}

		resp.Results[i] = RefreshResultResponse{
			Source:   r.Source,
			Count:    r.Count,
			Duration: r.Duration.String(),
			Error:    errMsg,
		}
	}

	return resp
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// StatsResponse represents dashboard stats.
type StatsResponse struct {
	TotalListings int64            `json:"total_listings"`
	ByType        map[string]int64 `json:"by_type"`
	ByTier        map[string]int64 `json:"by_tier"`
}
