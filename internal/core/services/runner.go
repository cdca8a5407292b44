package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driving"
)

// Ensure Runner implements the interface.
var _ driving.Runner = (*Runner)(nil)

// historyKeep is the number of passes kept per queue.
const historyKeep = 500

// Runner repeats batch passes while the operator's STILL_ON switch is on,
// sleeping TIMER between passes. The switch is re-read before every pass and
// a change to the control file cuts the sleep short.
type Runner struct {
	control  driven.RunControlSource
	batch    driving.BatchProcessor
	history  driven.BatchHistoryStore
	fallback time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

// NewRunner creates a runner. history may be nil. A non-positive fallback
// uses domain.DefaultRunInterval.
func NewRunner(
	control driven.RunControlSource,
	batch driving.BatchProcessor,
	history driven.BatchHistoryStore,
	fallback time.Duration,
	logger *zap.Logger,
) *Runner {
	if fallback <= 0 {
		fallback = domain.DefaultRunInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		control:  control,
		batch:    batch,
		history:  history,
		fallback: fallback,
		logger:   logger,
	}
}

// Start runs passes until the switch is off, Stop is called or ctx is
// cancelled. It blocks.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.done = make(chan struct{})
	stopCh, done := r.stopCh, r.done
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		close(done)
	}()

	return r.run(ctx, stopCh)
}

// Stop ends the loop after the current pass and waits for it.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
	done := r.done
	r.mu.Unlock()

	<-done
	return nil
}

func (r *Runner) run(ctx context.Context, stopCh <-chan struct{}) error {
	changes := r.control.Changes()

	for pass := 1; ; pass++ {
		control, err := r.control.Load()
		if err != nil {
			return fmt.Errorf("load run control: %w", err)
		}
		if !control.StillOn {
			r.logger.Info("run switch off, stopping", zap.Int("passes", pass-1))
			return nil
		}

		summaries, err := r.batch.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("pass failed", zap.Int("pass", pass), zap.Error(err))
		}
		r.prune(ctx, summaries)

		interval := control.Interval
		if interval <= 0 {
			interval = r.fallback
		}
		r.logger.Debug("waiting for next pass", zap.Int("pass", pass), zap.Duration("interval", interval))

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-stopCh:
			timer.Stop()
			return nil
		case <-changes:
			timer.Stop()
			r.logger.Debug("run control changed")
		case <-timer.C:
		}
	}
}

// prune trims the pass history after passes that did some work.
func (r *Runner) prune(ctx context.Context, summaries []domain.BatchSummary) {
	if r.history == nil {
		return
	}
	worked := false
	for _, s := range summaries {
		if s.Total() > 0 || s.Error != "" {
			worked = true
			break
		}
	}
	if !worked {
		return
	}
	if err := r.history.PruneHistory(ctx, historyKeep); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Warn("history not pruned", zap.Error(err))
	}
}
