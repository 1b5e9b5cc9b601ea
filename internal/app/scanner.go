package app

import (
	"context"
	"fmt"
	"time"

	"signalwatcher/internal/domain"
	"signalwatcher/internal/ports"
)

// Scanner discovers unprocessed open trades in the sheet, announces them and
// hands them to the scheduler. Double-announcement is guarded twice: the
// in-memory processed set covers this process lifetime, the ledger covers
// restarts. The processed set is owned by this instance, and both loops run
// sequentially on one goroutine, so no locking is needed.
type Scanner struct {
	rows         ports.RowStore
	ledger       ports.SentLedger
	archive      ports.TradeArchive
	notifier     TradeNotifier
	scheduler    *Scheduler
	logger       ports.Logger
	tailInterval time.Duration

	processed map[string]struct{}
}

// ScannerConfig holds the scanner dependencies.
type ScannerConfig struct {
	Rows         ports.RowStore
	Ledger       ports.SentLedger
	Archive      ports.TradeArchive
	Notifier     TradeNotifier
	Scheduler    *Scheduler
	Logger       ports.Logger
	TailInterval time.Duration
}

// NewScanner creates a scanner.
func NewScanner(cfg ScannerConfig) (*Scanner, error) {
	if cfg.Rows == nil || cfg.Ledger == nil || cfg.Notifier == nil || cfg.Scheduler == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for scanner")
	}
	if cfg.TailInterval <= 0 {
		return nil, fmt.Errorf("tail interval must be positive")
	}
	return &Scanner{
		rows:         cfg.Rows,
		ledger:       cfg.Ledger,
		archive:      cfg.Archive,
		notifier:     cfg.Notifier,
		scheduler:    cfg.Scheduler,
		logger:       cfg.Logger,
		tailInterval: cfg.TailInterval,
		processed:    make(map[string]struct{}),
	}, nil
}

// FullSweep reads the whole row range once and processes every candidate
// row. Run at startup so open trades survive a restart.
func (s *Scanner) FullSweep(ctx context.Context) error {
	rows, err := s.rows.ReadRows(ctx)
	if err != nil {
		return fmt.Errorf("full sweep: %w", err)
	}
	s.logger.Info(ctx, "Full sweep started", map[string]interface{}{"rows": len(rows)})
	for i, cells := range rows {
		s.handleRow(ctx, cells, domain.FirstDataRow+i)
	}
	return nil
}

// TailPoll re-reads the range on a slow interval and examines only the last
// row, catching newly appended signals without reprocessing history. Read
// errors are logged and the loop continues on the next interval; only
// context cancellation stops it.
func (s *Scanner) TailPoll(ctx context.Context) {
	for {
		rows, err := s.rows.ReadRows(ctx)
		if err != nil {
			s.logger.Warn(ctx, "Tail poll read failed, retrying next cycle", map[string]interface{}{"error": err.Error()})
		} else if len(rows) > 0 {
			last := len(rows) - 1
			s.handleRow(ctx, rows[last], domain.FirstDataRow+last)
		}

		timer := time.NewTimer(s.tailInterval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info(ctx, "Tail poll stopped")
			return
		}
	}
}

// handleRow applies the unprocessed/open gate to one row and, when it
// passes, announces the trade and admits it into monitoring. A parse failure
// only skips the row.
func (s *Scanner) handleRow(ctx context.Context, cells []string, rowNumber int) {
	id := domain.TradeID(cells, rowNumber)
	if _, ok := s.processed[id]; ok {
		return
	}
	if s.ledger.Has(id) {
		return
	}

	trade, err := domain.ParseRow(cells, rowNumber)
	if err != nil {
		s.logger.Warn(ctx, "Skipping unparseable row", map[string]interface{}{"row": rowNumber, "error": err.Error()})
		return
	}
	if !trade.IsOpen() {
		return
	}

	s.processed[id] = struct{}{}
	s.logger.Info(ctx, "New trade detected", map[string]interface{}{
		"row": rowNumber, "symbol": trade.Symbol, "trader": trade.Trader, "side": trade.Side,
	})

	s.notifier.TradeOpened(ctx, trade)

	if err := s.ledger.Record(id); err != nil {
		// The trade still gets monitored; only restart dedup is weakened.
		s.logger.Error(ctx, err, "Failed to persist trade ID to ledger", map[string]interface{}{"tradeID": id})
	}
	if s.archive != nil {
		if err := s.archive.RecordAnnounced(ctx, trade); err != nil {
			s.logger.Warn(ctx, "Archive announce record failed", map[string]interface{}{"tradeID": id, "error": err.Error()})
		}
	}

	s.scheduler.Admit(ctx, trade)
}
