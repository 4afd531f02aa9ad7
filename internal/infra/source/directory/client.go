// Package directory implements the upstream directory API client. One client
// instance serves one listing type; the registry builds one per type against
// the same directory host.
package directory

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"guide-validator/internal/domain"
	"guide-validator/internal/infra/source"
)

// endpoints maps a listing type to its directory feed path.
var endpoints = map[domain.ListingType]string{
	domain.ListingTypeGuide:     "/api/v1/directory/guides",
	domain.ListingTypeAgency:    "/api/v1/directory/agencies",
	domain.ListingTypeDMC:       "/api/v1/directory/dmcs",
	domain.ListingTypeTransport: "/api/v1/directory/transports",
}

// Client implements domain.Source for one listing type of the directory API.
type Client struct {
	listingType domain.ListingType
	endpoint    string
	client      *resty.Client
	cb          *gobreaker.CircuitBreaker[*resty.Response]
	logger      *zap.Logger
}

// New creates a directory client for the given listing type.
func New(t domain.ListingType, cfg source.ClientConfig, logger *zap.Logger) (*Client, error) {
	endpoint, ok := endpoints[t]
	if !ok {
		return nil, fmt.Errorf("no directory endpoint for listing type %q", t)
	}

	name := "directory_" + string(t)

	return &Client{
		listingType: t,
		endpoint:    endpoint,
		client:      source.NewRestyClient(cfg),
		cb:          source.NewCircuitBreaker[*resty.Response](name, cfg.CB),
		logger:      logger,
	}, nil
}

// Name returns the source identifier.
func (c *Client) Name() string {
	return "directory_" + string(c.listingType)
}

// ListingType returns the entity type this source feeds.
func (c *Client) ListingType() domain.ListingType {
	return c.listingType
}

// Fetch walks every page of the feed and returns the full profile set as
// listing projections.
func (c *Client) Fetch(ctx context.Context) ([]*domain.Listing, error) {
	var listings []*domain.Listing

	for page := 1; ; page++ {
		result, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}

		for _, record := range result.Profiles {
			listings = append(listings, record.ToDomain(c.listingType))
		}

		if len(listings) >= result.Pagination.Total || len(result.Profiles) == 0 {
			break
		}
	}

	c.logger.Info("directory fetch completed",
		zap.String("source", c.Name()),
		zap.Int("count", len(listings)),
	)

	return listings, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (*Response, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		var result Response
		r, err := c.client.R().
			SetContext(ctx).
			SetQueryParam("page", fmt.Sprintf("%d", page)).
			SetResult(&result).
			Get(c.endpoint)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("%s returned status %d", c.Name(), r.StatusCode())
		}

		return r, nil
	})

	if err != nil {
		c.logger.Warn("directory fetch failed",
			zap.String("source", c.Name()),
			zap.Int("page", page),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("fetching from %s: %w", c.Name(), err)
	}

	return resp.Result().(*Response), nil
}

// HealthCheck verifies the directory is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}
