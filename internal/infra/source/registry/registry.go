// Package registry centralizes directory source construction.
package registry

import (
	"go.uber.org/zap"

	"guide-validator/internal/config"
	"guide-validator/internal/domain"
	"guide-validator/internal/infra/source"
	"guide-validator/internal/infra/source/directory"
)

// NewSources builds one directory client per listing type against the
// configured directory host.
func NewSources(cfg config.SourceConfig, logger *zap.Logger) ([]domain.Source, error) {
	clientCfg := source.ClientConfig{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Retry: source.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			WaitTime:    cfg.Retry.WaitTime,
			MaxWaitTime: cfg.Retry.MaxWaitTime,
		},
		CB: source.CBConfig{
			MaxRequests:  cfg.CB.MaxRequests,
			Interval:     cfg.CB.Interval,
			Timeout:      cfg.CB.Timeout,
			FailureRatio: cfg.CB.FailureRatio,
		},
	}

	types := domain.ListingTypes()
	sources := make([]domain.Source, 0, len(types))
	for _, t := range types {
		client, err := directory.New(t, clientCfg, logger)
		if err != nil {
			return nil, err
		}
		sources = append(sources, client)
	}

	return sources, nil
}
