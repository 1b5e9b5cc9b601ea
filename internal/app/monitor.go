package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"signalwatcher/internal/domain"
	"signalwatcher/internal/ports"
)

// TradeNotifier delivers trade lifecycle events. Implementations swallow
// their own delivery failures; none of these calls can fail the caller.
type TradeNotifier interface {
	TradeOpened(ctx context.Context, t *domain.Trade)
	Target1Hit(ctx context.Context, t *domain.Trade, pnl float64)
	TradeClosed(ctx context.Context, t *domain.Trade, finalPnl float64, kind domain.CloseKind)
}

// Monitor polls the market price for one open trade until it closes. It owns
// the trade's mutable runtime fields for its whole lifetime; no other
// component touches the trade once a monitor has claimed it.
type Monitor struct {
	trade    *domain.Trade
	quotes   ports.QuoteProvider
	rows     ports.RowStore
	notifier TradeNotifier
	archive  ports.TradeArchive
	logger   ports.Logger
	interval time.Duration
}

// MonitorConfig holds the monitor dependencies.
type MonitorConfig struct {
	Trade        *domain.Trade
	Quotes       ports.QuoteProvider
	Rows         ports.RowStore
	Notifier     TradeNotifier
	Archive      ports.TradeArchive
	Logger       ports.Logger
	PollInterval time.Duration
}

// NewMonitor creates a monitor for one trade.
func NewMonitor(cfg MonitorConfig) (*Monitor, error) {
	if cfg.Trade == nil || cfg.Quotes == nil || cfg.Rows == nil || cfg.Notifier == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for monitor")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	return &Monitor{
		trade:    cfg.Trade,
		quotes:   cfg.Quotes,
		rows:     cfg.Rows,
		notifier: cfg.Notifier,
		archive:  cfg.Archive,
		logger:   cfg.Logger,
		interval: cfg.PollInterval,
	}, nil
}

// Run executes the polling loop until the trade reaches a terminal state or
// the context is canceled. No failure inside the loop terminates the
// monitor: quote errors, write-back errors and notification errors are all
// logged and retried or swallowed.
func (m *Monitor) Run(ctx context.Context) {
	t := m.trade
	m.logger.Info(ctx, "Monitor started", map[string]interface{}{
		"row": t.RowNumber, "symbol": t.Symbol, "side": t.Side, "entry": t.EntryPrice,
	})

	for {
		price, err := m.quotes.LastPrice(ctx, t.Symbol)
		if err != nil {
			m.logger.Warn(ctx, "Price fetch failed, retrying next cycle", map[string]interface{}{
				"row": t.RowNumber, "symbol": t.Symbol, "error": err.Error(),
			})
			if !m.sleep(ctx) {
				return
			}
			continue
		}

		pnl := t.PnlAt(price)

		// Evaluation order is part of the contract: target 1, then target 2,
		// then stop. The stop check observes the result fields as they are
		// after the target checks, so a price spike crossing a target and
		// the stop in the same poll always resolves as profit.
		if t.Target1HitAt(price) && t.Target1Result == nil {
			if err := m.rows.UpdateCell(ctx, domain.ColTarget1Result, t.RowNumber, formatPnl(pnl)); err != nil {
				m.logger.Warn(ctx, "Target 1 write-back failed, retrying next cycle", map[string]interface{}{
					"row": t.RowNumber, "symbol": t.Symbol, "error": err.Error(),
				})
				if !m.sleep(ctx) {
					return
				}
				continue
			}
			result := pnl
			t.Target1Result = &result
			m.logger.Info(ctx, "Target 1 hit", map[string]interface{}{
				"row": t.RowNumber, "symbol": t.Symbol, "price": price, "pnl": pnl,
			})
			m.notifier.Target1Hit(ctx, t, pnl)
			if !t.HasSecondTarget() {
				m.close(ctx, pnl, domain.CloseProfit)
				return
			}
		}

		if t.Target2HitAt(price) && t.Target2Result == nil {
			if err := m.rows.UpdateCell(ctx, domain.ColTarget2Result, t.RowNumber, formatPnl(pnl)); err != nil {
				m.logger.Warn(ctx, "Target 2 write-back failed, retrying next cycle", map[string]interface{}{
					"row": t.RowNumber, "symbol": t.Symbol, "error": err.Error(),
				})
				if !m.sleep(ctx) {
					return
				}
				continue
			}
			result := pnl
			t.Target2Result = &result
			m.logger.Info(ctx, "Target 2 hit", map[string]interface{}{
				"row": t.RowNumber, "symbol": t.Symbol, "price": price, "pnl": pnl,
			})
			m.close(ctx, pnl, domain.CloseProfit)
			return
		}

		if t.StopHitAt(price) {
			m.logger.Info(ctx, "Stop hit", map[string]interface{}{
				"row": t.RowNumber, "symbol": t.Symbol, "price": price, "pnl": pnl,
			})
			m.close(ctx, pnl, domain.CloseStopLoss)
			return
		}

		if !m.sleep(ctx) {
			return
		}
	}
}

// close finalizes the trade: batched write-back of result cells, status and
// close kind, then the close notification and the archive record. Write-back
// and notification failures are logged and swallowed; the trade is terminal
// either way.
func (m *Monitor) close(ctx context.Context, finalPnl float64, kind domain.CloseKind) {
	t := m.trade

	updates := make([]ports.CellUpdate, 0, 5)
	switch kind {
	case domain.CloseStopLoss:
		updates = append(updates, ports.CellUpdate{
			Column: domain.ColStopPercent, Row: t.RowNumber,
			Value: strconv.FormatFloat(finalPnl, 'f', 0, 64),
		})
	case domain.CloseProfit:
		t1 := finalPnl
		if t.Target1Result != nil {
			t1 = *t.Target1Result
		}
		updates = append(updates, ports.CellUpdate{
			Column: domain.ColTarget1Result, Row: t.RowNumber, Value: formatPnl(t1),
		})
		if t.HasSecondTarget() {
			t2 := finalPnl
			if t.Target2Result != nil {
				t2 = *t.Target2Result
			}
			updates = append(updates, ports.CellUpdate{
				Column: domain.ColTarget2Result, Row: t.RowNumber, Value: formatPnl(t2),
			})
		}
	}
	updates = append(updates,
		ports.CellUpdate{Column: domain.ColFinalResult, Row: t.RowNumber, Value: formatPnl(finalPnl)},
		ports.CellUpdate{Column: domain.ColStatus, Row: t.RowNumber, Value: domain.StatusCellMarker},
		ports.CellUpdate{Column: domain.ColCloseKind, Row: t.RowNumber, Value: string(kind)},
	)

	if err := m.rows.BatchUpdateCells(ctx, updates); err != nil {
		m.logger.Error(ctx, err, "Close write-back failed", map[string]interface{}{
			"row": t.RowNumber, "symbol": t.Symbol, "closeKind": kind,
		})
	}

	t.Status = domain.StatusClosed
	t.CloseKind = kind
	t.FinalPnl = &finalPnl

	m.notifier.TradeClosed(ctx, t, finalPnl, kind)

	if m.archive != nil {
		if err := m.archive.RecordClosed(ctx, t.ID, kind, finalPnl); err != nil {
			m.logger.Warn(ctx, "Archive close record failed", map[string]interface{}{
				"tradeID": t.ID, "error": err.Error(),
			})
		}
	}

	m.logger.Info(ctx, "Monitor finished", map[string]interface{}{
		"row": t.RowNumber, "symbol": t.Symbol, "closeKind": kind, "finalPnl": finalPnl,
	})
}

// sleep waits one poll interval. Returns false when the context is canceled
// so shutdown interrupts the wait cleanly.
func (m *Monitor) sleep(ctx context.Context) bool {
	timer := time.NewTimer(m.interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// formatPnl renders a PnL percent the way the sheet expects result cells.
func formatPnl(pnl float64) string {
	return strconv.FormatFloat(pnl, 'f', 2, 64)
}
