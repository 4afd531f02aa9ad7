// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"guide-validator/internal/app/service"
	"guide-validator/pkg/locker"
)

// RefreshScheduler periodically rematerializes the listing projection from
// the upstream directory. A distributed lock keeps a multi-instance
// deployment from refreshing more than once per interval.
type RefreshScheduler struct {
	materializer *service.MaterializeService
	interval     time.Duration
	timeout      time.Duration
	logger       *zap.Logger
	locker       locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RefreshConfig holds refresh scheduler configuration.
type RefreshConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// NewRefreshScheduler creates a new RefreshScheduler.
func NewRefreshScheduler(
	materializer *service.MaterializeService,
	cfg RefreshConfig,
	logger *zap.Logger,
	locker locker.DistributedLocker,
) *RefreshScheduler {
	return &RefreshScheduler{
		materializer: materializer,
		interval:     cfg.Interval,
		timeout:      cfg.Timeout,
		logger:       logger,
		locker:       locker,
	}
}

// Start begins the background refresh job.
func (s *RefreshScheduler) Start(runOnStartup bool) {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting refresh scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	s.wg.Add(1)
	go s.run(runOnStartup)
}

// Stop gracefully stops the scheduler.
func (s *RefreshScheduler) Stop() {
	s.logger.Info("stopping refresh scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("refresh scheduler stopped")
}

func (s *RefreshScheduler) run(runOnStartup bool) {
	defer s.wg.Done()

	if runOnStartup {
		s.executeRefresh()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.executeRefresh()
		}
	}
}

// executeRefresh runs one refresh under the distributed lock.
//
// The lock TTL equals the interval (cooldown model): after a clean run the
// lock is left to expire so no other instance repeats the work, while a
// failed run releases it immediately so a retry can happen right away.
func (s *RefreshScheduler) executeRefresh() {
	const lockKey = "refresh:scheduler:lock"

	acquired, err := s.locker.Acquire(s.ctx, lockKey, s.interval)
	if err != nil {
		s.logger.Error("failed to acquire distributed lock", zap.Error(err))

		return
	}
	if !acquired {
		s.logger.Debug("another instance is refreshing, skipping execution")

		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	results := s.materializer.RefreshAll(ctx)

	totalRefreshed := 0
	totalErrors := 0
	for _, r := range results {
		if r.Error != nil {
			totalErrors++
			s.logger.Warn("source refresh failed",
				zap.String("source", r.Source),
				zap.Error(r.Error),
			)
		} else {
			totalRefreshed += r.Count
		}
	}

	if totalErrors > 0 {
		if err := s.locker.Release(s.ctx, lockKey); err != nil {
			s.logger.Error("failed to release lock after refresh error", zap.Error(err))
		}
		s.logger.Info("refresh completed with errors, lock released for retry",
			zap.Int("total_refreshed", totalRefreshed),
			zap.Int("sources_failed", totalErrors),
		)
	} else {
		s.logger.Info("refresh completed successfully, lock held for cooldown",
			zap.Int("total_refreshed", totalRefreshed),
			zap.Duration("cooldown", s.interval),
		)
	}
}
