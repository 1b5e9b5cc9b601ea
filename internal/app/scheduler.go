package app

import (
	"context"
	"fmt"
	"sync"

	"signalwatcher/internal/domain"
	"signalwatcher/internal/ports"
)

// MonitorRunner runs the monitoring lifecycle for one admitted trade and
// returns when the trade reaches a terminal state or the context is canceled.
type MonitorRunner func(ctx context.Context, trade *domain.Trade)

// Scheduler admits trades into monitoring under a fixed concurrency cap,
// guaranteeing at most one monitor per trade identity (keyed by row number)
// at any time. Admission blocks on a slot; registration and slot are both
// released on every exit path, including panics inside the runner.
type Scheduler struct {
	logger ports.Logger
	runner MonitorRunner
	slots  chan struct{}

	mu     sync.Mutex
	active map[int]struct{}

	wg sync.WaitGroup
}

// SchedulerConfig holds the scheduler dependencies.
type SchedulerConfig struct {
	Limit  int
	Runner MonitorRunner
	Logger ports.Logger
}

// NewScheduler creates a bounded-concurrency scheduler.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for scheduler")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("runner is required for scheduler")
	}
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("scheduler limit must be positive")
	}
	return &Scheduler{
		logger: cfg.Logger,
		runner: cfg.Runner,
		slots:  make(chan struct{}, cfg.Limit),
		active: make(map[int]struct{}),
	}, nil
}

// Admit registers the trade and starts its monitor once a capacity slot
// frees up. A trade whose row already has an active monitor is ignored.
func (s *Scheduler) Admit(ctx context.Context, trade *domain.Trade) {
	s.mu.Lock()
	if _, ok := s.active[trade.RowNumber]; ok {
		s.mu.Unlock()
		s.logger.Debug(ctx, "Monitor already active for row, skipping admission", map[string]interface{}{
			"row": trade.RowNumber, "symbol": trade.Symbol,
		})
		return
	}
	s.active[trade.RowNumber] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.unregister(trade.RowNumber)

		select {
		case s.slots <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-s.slots }()

		s.runGuarded(ctx, trade)
	}()
}

// runGuarded isolates runner panics so cleanup still happens and one broken
// monitor cannot take the process down.
func (s *Scheduler) runGuarded(ctx context.Context, trade *domain.Trade) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, fmt.Errorf("monitor panicked: %v", r), "Monitor terminated abnormally", map[string]interface{}{
				"row": trade.RowNumber, "symbol": trade.Symbol,
			})
		}
	}()
	s.runner(ctx, trade)
}

func (s *Scheduler) unregister(row int) {
	s.mu.Lock()
	delete(s.active, row)
	s.mu.Unlock()
}

// ActiveCount returns the number of registered trades (admitted or waiting
// for a slot).
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Wait blocks until every admitted monitor has returned. Used on shutdown
// after the shared context is canceled.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
