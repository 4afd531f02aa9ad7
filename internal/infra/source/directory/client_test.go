package directory

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"guide-validator/internal/domain"
	"guide-validator/internal/infra/source"
)

const testEndpoint = "https://directory.example.com/api/v1/directory/guides"

func newTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := source.ClientConfig{
		BaseURL: "https://directory.example.com",
		Timeout: 5 * time.Second,
		Retry: source.RetryConfig{
			MaxAttempts: 3,
			WaitTime:    100 * time.Millisecond,
			MaxWaitTime: 500 * time.Millisecond,
		},
		CB: source.CBConfig{
			MaxRequests:  5,
			Interval:     60 * time.Second,
			Timeout:      15 * time.Second,
			FailureRatio: 0.6,
		},
	}

	client, err := New(domain.ListingTypeGuide, cfg, zap.NewNop())
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.client.GetClient())

	return client
}

func mockPage(total, page int, profiles ...ProfileRecord) Response {
	return Response{
		Profiles:   profiles,
		Pagination: Pagination{Total: total, Page: page, PerPage: 2},
	}
}

func mockProfile(id string) ProfileRecord {
	rating := 4.5
	return ProfileRecord{
		ID:          id,
		Name:        "Nguyễn Văn " + id,
		EnglishName: "Guide " + id,
		CountryCode: "VN",
		Languages:   []string{"en", "vi"},
		Specialties: []string{"trekking"},
		Gender:      "female",
		Verified:    true,
		Approved:    true,
		Rating:      &rating,
		ReviewCount: 12,
		Price:       &Price{Amount: 500_000, Currency: "VND"},
		CreatedAt:   "2024-01-15T10:00:00Z",
	}
}

func TestDirectory_Fetch_Success(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewJsonResponderOrPanic(200, mockPage(2, 1, mockProfile("a"), mockProfile("b"))))

	client := newTestClient(t)
	listings, err := client.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, listings, 2)

	l := listings[0]
	assert.Equal(t, domain.ListingTypeGuide, l.Type)
	assert.Equal(t, "a", l.SourceID)
	assert.Equal(t, "Nguyễn Văn a", l.Name)
	assert.Equal(t, "Guide a", l.EnglishName)
	assert.Equal(t, "VN", l.CountryCode)
	assert.Equal(t, []string{"en", "vi"}, l.Languages)
	assert.True(t, l.Verified)
	require.NotNil(t, l.Rating)
	assert.Equal(t, 4.5, *l.Rating)
	require.NotNil(t, l.PriceAmount)
	assert.Equal(t, int64(500_000), *l.PriceAmount)
	assert.Equal(t, "VND", l.PriceCurrency)
	assert.Empty(t, l.SearchText, "folding happens in the materializer, not the client")

	expectedTime, _ := time.Parse(time.RFC3339, "2024-01-15T10:00:00Z")
	assert.Equal(t, expectedTime, l.CreatedAt)
}

func TestDirectory_Fetch_WalksAllPages(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	pages := map[string]Response{
		"1": mockPage(3, 1, mockProfile("a"), mockProfile("b")),
		"2": mockPage(3, 2, mockProfile("c")),
	}
	httpmock.RegisterResponder("GET", testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			page := req.URL.Query().Get("page")
			resp, ok := pages[page]
			if !ok {
				return httpmock.NewStringResponse(400, "bad page"), nil
			}

			return httpmock.NewJsonResponse(200, resp)
		})

	client := newTestClient(t)
	listings, err := client.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, listings, 3)
	assert.Equal(t, "c", listings[2].SourceID)
}

func TestDirectory_Fetch_EmptyFeed(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewJsonResponderOrPanic(200, mockPage(0, 1)))

	client := newTestClient(t)
	listings, err := client.Fetch(context.Background())

	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestDirectory_Fetch_HTTPError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name       string
		statusCode int
	}{
		{"404 Not Found", 404},
		{"500 Internal Server Error", 500},
		{"503 Service Unavailable", 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder("GET", testEndpoint,
				httpmock.NewStringResponder(tt.statusCode, "Error"))

			client := newTestClient(t)
			listings, err := client.Fetch(context.Background())

			require.Error(t, err)
			assert.Nil(t, listings)
			assert.Contains(t, err.Error(), fmt.Sprintf("status %d", tt.statusCode))
		})
	}
}

func TestDirectory_CircuitBreaker_Opens(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewStringResponder(500, "Internal Server Error"))

	client := newTestClient(t)

	for i := 0; i < 5; i++ {
		_, err := client.Fetch(context.Background())
		require.Error(t, err)
	}

	start := time.Now()
	_, err := client.Fetch(context.Background())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Less(t, elapsed.Milliseconds(), int64(100), "open breaker must fail fast")
}

func TestDirectory_Retry_SucceedsAfterTransientErrors(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	callCount := 0
	httpmock.RegisterResponder("GET", testEndpoint,
		func(_ *http.Request) (*http.Response, error) {
			callCount++
			if callCount < 3 {
				return httpmock.NewStringResponse(500, "Server Error"), nil
			}

			return httpmock.NewJsonResponse(200, mockPage(1, 1, mockProfile("a")))
		})

	client := newTestClient(t)
	listings, err := client.Fetch(context.Background())

	require.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Equal(t, 3, callCount, "should retry twice and succeed on 3rd attempt")
}

func TestDirectory_UnknownListingType(t *testing.T) {
	_, err := New("bogus", source.ClientConfig{}, zap.NewNop())
	require.Error(t, err)
}

func TestDirectory_NameAndType(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient(t)
	assert.Equal(t, "directory_guide", client.Name())
	assert.Equal(t, domain.ListingTypeGuide, client.ListingType())
}
