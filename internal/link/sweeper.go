package link

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often the sweeper purges expired records.
const DefaultSweepInterval = time.Hour

// Sweeper periodically removes expired link records from the
// authoritative store and their entries from the cache. It runs
// independently of request traffic; each run is re-entrant, and a record
// whose deletion fails stays in the expiry query result for the next run.
type Sweeper struct {
	repo     Repository
	cache    Cache
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// SweeperConfig holds configuration for the sweeper.
type SweeperConfig struct {
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time // Override for tests; defaults to time.Now
}

// NewSweeper creates a new Sweeper.
func NewSweeper(repo Repository, cache Cache, config *SweeperConfig) *Sweeper {
	if config == nil {
		config = &SweeperConfig{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := config.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &Sweeper{
		repo:     repo,
		cache:    cache,
		logger:   logger,
		interval: interval,
		now:      now,
	}
}

// Run sweeps once per interval, aligned to interval boundaries (on the
// default interval: top of the hour), until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("sweeper started", "interval", s.interval.String())

	for {
		next := s.now().Truncate(s.interval).Add(s.interval)
		timer := time.NewTimer(next.Sub(s.now()))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("sweeper stopped")
			return
		case <-timer.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep removes every record whose expiry has passed, deleting from the
// store first and the cache second. Per-record failures are logged and
// skipped; the record remains expired and is retried on the next run.
// It returns the number of records removed.
func (s *Sweeper) Sweep(ctx context.Context) int {
	now := s.now()

	expired, err := s.repo.ListExpiredBefore(ctx, now)
	if err != nil {
		s.logger.Error("sweep query failed", "error", err.Error())
		return 0
	}
	if len(expired) == 0 {
		return 0
	}

	removed := 0
	for _, l := range expired {
		if err := s.repo.Delete(ctx, l.ID); err != nil {
			s.logger.Warn("sweep store delete failed",
				"id", l.ID,
				"error", err.Error(),
			)
			continue
		}

		if err := s.cache.Delete(ctx, l.ID); err != nil {
			// The entry TTL bounds how long the stale copy can live.
			s.logger.Warn("sweep cache delete failed",
				"id", l.ID,
				"error", err.Error(),
			)
		}

		s.logger.Info("deleted expired link", "id", l.ID)
		removed++
	}

	return removed
}
