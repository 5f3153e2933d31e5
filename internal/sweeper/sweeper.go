// Package sweeper periodically removes expired moves across all groups.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/moves/internal/metrics"
)

// GroupLister finds groups that may hold expired moves.
type GroupLister interface {
	ListGroupsPastDeadline(ctx context.Context, now time.Time) ([]string, error)
}

// GroupSweeper removes one group's expired moves.
type GroupSweeper interface {
	Sweep(ctx context.Context, groupID string) (int, error)
}

// Config controls how often and how widely the sweeper runs.
type Config struct {
	Interval    time.Duration
	Concurrency int
}

// Sweeper runs GroupSweeper.Sweep for every group with a past-deadline move.
type Sweeper struct {
	groups  GroupLister
	sweeper GroupSweeper
	cfg     Config
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Sweeper. A nil metrics or logger falls back to defaults.
func New(groups GroupLister, sweeper GroupSweeper, cfg Config, m *metrics.Metrics, logger *slog.Logger) *Sweeper {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if m == nil {
		m = metrics.NewUnregistered()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		groups:  groups,
		sweeper: sweeper,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
// It returns nil when the interval is zero or the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.cfg.Interval <= 0 {
		s.logger.Info("Periodic sweeper disabled")
		return nil
	}

	s.logger.Info("Periodic sweeper started", "interval", s.cfg.Interval, "concurrency", s.cfg.Concurrency)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("Sweeper run failed", "error", err)
		}
		select {
		case <-ctx.Done():
			s.logger.Info("Periodic sweeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce sweeps every group holding a past-deadline move and returns the
// total number of moves removed. A failing group is logged and skipped.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	s.metrics.SweeperRuns.Inc()

	groupIDs, err := s.groups.ListGroupsPastDeadline(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list groups: %w", err)
	}
	s.metrics.SweeperGroups.Set(float64(len(groupIDs)))
	if len(groupIDs) == 0 {
		return 0, nil
	}

	var removed atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.cfg.Concurrency)
	for _, groupID := range groupIDs {
		eg.Go(func() error {
			n, err := s.sweeper.Sweep(egCtx, groupID)
			if err != nil {
				s.logger.Warn("Group sweep failed", "group_id", groupID, "error", err)
				return nil
			}
			removed.Add(int64(n))
			return nil
		})
	}
	// Group failures are logged above, so Wait only reports nil.
	_ = eg.Wait()

	total := int(removed.Load())
	if total > 0 {
		s.logger.Info("Sweeper run complete", "groups", len(groupIDs), "removed", total)
	}
	return total, nil
}
