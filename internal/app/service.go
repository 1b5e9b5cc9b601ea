package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"signalwatcher/config"
	"signalwatcher/internal/domain"
	"signalwatcher/internal/ports"
)

// Service wires the scanner, scheduler and monitors together and owns the
// process lifecycle.
type Service struct {
	cfg       *config.Config
	logger    ports.Logger
	scanner   *Scanner
	scheduler *Scheduler
}

// NewService creates the application service.
func NewService(
	cfg *config.Config,
	logger ports.Logger,
	rows ports.RowStore,
	quotes ports.QuoteProvider,
	ledger ports.SentLedger,
	archive ports.TradeArchive,
	notifier TradeNotifier,
) (*Service, error) {
	if cfg == nil || logger == nil || rows == nil || quotes == nil || ledger == nil || notifier == nil {
		return nil, fmt.Errorf("missing required dependencies for service")
	}

	scheduler, err := NewScheduler(SchedulerConfig{
		Limit:  config.ConcurrencyLimit,
		Logger: logger,
		Runner: func(ctx context.Context, trade *domain.Trade) {
			monitor, err := NewMonitor(MonitorConfig{
				Trade:        trade,
				Quotes:       quotes,
				Rows:         rows,
				Notifier:     notifier,
				Archive:      archive,
				Logger:       logger,
				PollInterval: config.PollInterval,
			})
			if err != nil {
				logger.Error(ctx, err, "Failed to build monitor", map[string]interface{}{"row": trade.RowNumber})
				return
			}
			monitor.Run(ctx)
		},
	})
	if err != nil {
		return nil, err
	}

	scanner, err := NewScanner(ScannerConfig{
		Rows:         rows,
		Ledger:       ledger,
		Archive:      archive,
		Notifier:     notifier,
		Scheduler:    scheduler,
		Logger:       logger,
		TailInterval: config.TailScanInterval,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:       cfg,
		logger:    logger,
		scanner:   scanner,
		scheduler: scheduler,
	}, nil
}

// Start runs the startup sweep and then the tail-poll loop until a shutdown
// signal cancels the context; it returns once every active monitor has
// drained.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting signal watcher...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
		cancel()
	}()

	// Startup sweep: pick up every open trade that predates this process.
	// Not fatal on failure; the tail poll still catches new rows and a later
	// restart retries the sweep.
	if err := s.scanner.FullSweep(ctx); err != nil {
		s.logger.Error(ctx, err, "Startup sweep failed")
	}

	s.logger.Info(ctx, "Monitoring active", map[string]interface{}{
		"activeMonitors": s.scheduler.ActiveCount(),
	})

	// Blocks until ctx is canceled.
	s.scanner.TailPoll(ctx)

	s.logger.Info(ctx, "Waiting for active monitors to stop...")
	s.scheduler.Wait()
	s.logger.Info(ctx, "Signal watcher stopped.")
	return nil
}
