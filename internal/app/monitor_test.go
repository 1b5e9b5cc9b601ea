package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"signalwatcher/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(t *testing.T, trade *domain.Trade, quotes *mockQuotes, rows *mockRows) (*Monitor, *mockNotifier, *mockArchive) {
	t.Helper()
	notifier := &mockNotifier{}
	archive := newMockArchive()
	m, err := NewMonitor(MonitorConfig{
		Trade:        trade,
		Quotes:       quotes,
		Rows:         rows,
		Notifier:     notifier,
		Archive:      archive,
		Logger:       &mockLogger{},
		PollInterval: time.Millisecond,
	})
	require.NoError(t, err)
	return m, notifier, archive
}

func longTrade() *domain.Trade {
	return &domain.Trade{
		ID:           "ts::alice::ETHUSDT::5",
		RowNumber:    5,
		Symbol:       "ETHUSDT",
		Side:         domain.Long,
		EntryPrice:   100,
		Leverage:     10,
		StopPrice:    95,
		Target1Price: 110,
		Status:       domain.StatusOpen,
	}
}

func TestMonitorSingleTargetClosesProfit(t *testing.T) {
	trade := longTrade()
	quotes := &mockQuotes{steps: []quoteStep{{price: 105}, {price: 111}}}
	rows := &mockRows{}
	m, notifier, archive := newTestMonitor(t, trade, quotes, rows)

	m.Run(context.Background())

	// PnL = (111-100)/100 * 100 * 10
	require.NotNil(t, trade.FinalPnl)
	assert.InDelta(t, 110.0, *trade.FinalPnl, 1e-9)
	assert.Equal(t, domain.StatusClosed, trade.Status)
	assert.Equal(t, domain.CloseProfit, trade.CloseKind)
	require.NotNil(t, trade.Target1Result)
	assert.InDelta(t, 110.0, *trade.Target1Result, 1e-9)

	// Target 1 cell written before the close batch.
	require.Len(t, rows.cellUpdates, 1)
	assert.Equal(t, domain.ColTarget1Result, rows.cellUpdates[0].Column)
	assert.Equal(t, "110.00", rows.cellUpdates[0].Value)

	v, ok := rows.batchCell(domain.ColFinalResult)
	require.True(t, ok)
	assert.Equal(t, "110.00", v)
	v, ok = rows.batchCell(domain.ColStatus)
	require.True(t, ok)
	assert.Equal(t, domain.StatusCellMarker, v)
	v, ok = rows.batchCell(domain.ColCloseKind)
	require.True(t, ok)
	assert.Equal(t, string(domain.CloseProfit), v)
	_, ok = rows.batchCell(domain.ColStopPercent)
	assert.False(t, ok, "profit close must not touch the stop-percent cell")

	assert.Equal(t, []float64{110.0}, notifier.updates)
	assert.Equal(t, []domain.CloseKind{domain.CloseProfit}, notifier.closedKinds())
	assert.Equal(t, domain.CloseProfit, archive.closed[trade.ID])
}

func TestMonitorShortStopLoss(t *testing.T) {
	trade := &domain.Trade{
		ID:           "ts::bob::SOLUSDT::9",
		RowNumber:    9,
		Symbol:       "SOLUSDT",
		Side:         domain.Short,
		EntryPrice:   50,
		Leverage:     5,
		StopPrice:    53,
		Target1Price: 45,
		Status:       domain.StatusOpen,
	}
	quotes := &mockQuotes{steps: []quoteStep{{price: 54}}}
	rows := &mockRows{}
	m, notifier, _ := newTestMonitor(t, trade, quotes, rows)

	m.Run(context.Background())

	// PnL = (50-54)/50 * 100 * 5
	require.NotNil(t, trade.FinalPnl)
	assert.InDelta(t, -40.0, *trade.FinalPnl, 1e-9)
	assert.Equal(t, domain.CloseStopLoss, trade.CloseKind)
	assert.Nil(t, trade.Target1Result)

	v, ok := rows.batchCell(domain.ColStopPercent)
	require.True(t, ok)
	assert.Equal(t, "-40", v)
	v, ok = rows.batchCell(domain.ColFinalResult)
	require.True(t, ok)
	assert.Equal(t, "-40.00", v)
	v, ok = rows.batchCell(domain.ColCloseKind)
	require.True(t, ok)
	assert.Equal(t, string(domain.CloseStopLoss), v)

	assert.Empty(t, notifier.updates, "stop close emits no target update")
	assert.Equal(t, []domain.CloseKind{domain.CloseStopLoss}, notifier.closedKinds())
}

func TestMonitorTwoTargets(t *testing.T) {
	trade := longTrade()
	trade.Target2Price = floatPtr(120)
	quotes := &mockQuotes{steps: []quoteStep{{price: 111}, {price: 121}}}
	rows := &mockRows{}
	m, notifier, _ := newTestMonitor(t, trade, quotes, rows)

	m.Run(context.Background())

	require.NotNil(t, trade.Target1Result)
	assert.InDelta(t, 110.0, *trade.Target1Result, 1e-9)
	require.NotNil(t, trade.Target2Result)
	assert.InDelta(t, 210.0, *trade.Target2Result, 1e-9)
	require.NotNil(t, trade.FinalPnl)
	assert.InDelta(t, 210.0, *trade.FinalPnl, 1e-9)
	assert.Equal(t, domain.CloseProfit, trade.CloseKind)

	// Close batch keeps each target's own recorded PnL.
	v, ok := rows.batchCell(domain.ColTarget1Result)
	require.True(t, ok)
	assert.Equal(t, "110.00", v)
	v, ok = rows.batchCell(domain.ColTarget2Result)
	require.True(t, ok)
	assert.Equal(t, "210.00", v)

	assert.Equal(t, []float64{110.0}, notifier.updates)
}

func TestMonitorBothTargetsInOnePoll(t *testing.T) {
	trade := longTrade()
	trade.Target2Price = floatPtr(120)
	quotes := &mockQuotes{steps: []quoteStep{{price: 125}}}
	rows := &mockRows{}
	m, notifier, _ := newTestMonitor(t, trade, quotes, rows)

	m.Run(context.Background())

	// A spike past both targets fires them in the same iteration and closes
	// as profit, never as stop.
	assert.Equal(t, domain.CloseProfit, trade.CloseKind)
	require.NotNil(t, trade.Target1Result)
	require.NotNil(t, trade.Target2Result)
	assert.Equal(t, []float64{250.0}, notifier.updates)
}

func TestMonitorStopDisabledAfterTarget1(t *testing.T) {
	trade := longTrade()
	trade.Target2Price = floatPtr(120)
	// Target 1 fires, then the price collapses through the stop level.
	quotes := &mockQuotes{steps: []quoteStep{{price: 111}, {price: 90}}}
	rows := &mockRows{}
	m, notifier, _ := newTestMonitor(t, trade, quotes, rows)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	m.Run(ctx)

	// The monitor is still polling when the context expires: no close
	// happened, because a de-risked trade cannot stop out.
	assert.Equal(t, domain.StatusOpen, trade.Status)
	assert.Empty(t, notifier.closedKinds())
	require.NotNil(t, trade.Target1Result)
	assert.Nil(t, trade.Target2Result)
	assert.Equal(t, []float64{110.0}, notifier.updates, "target 1 must fire exactly once")
}

func TestMonitorRetriesQuoteFailures(t *testing.T) {
	trade := longTrade()
	quotes := &mockQuotes{steps: []quoteStep{
		{err: errors.New("connection reset")},
		{err: errors.New("empty ticker list")},
		{price: 111},
	}}
	rows := &mockRows{}
	m, _, _ := newTestMonitor(t, trade, quotes, rows)

	m.Run(context.Background())

	assert.Equal(t, domain.StatusClosed, trade.Status)
	assert.Equal(t, domain.CloseProfit, trade.CloseKind)
	assert.GreaterOrEqual(t, quotes.calls, 3)
}

func TestMonitorRetriesTargetWriteback(t *testing.T) {
	trade := longTrade()
	quotes := &mockQuotes{steps: []quoteStep{{price: 111}}}
	rows := &mockRows{updateErr: errors.New("sheet unavailable")}
	m, notifier, _ := newTestMonitor(t, trade, quotes, rows)

	go func() {
		// Let a few failing iterations pass, then heal the sheet.
		time.Sleep(10 * time.Millisecond)
		rows.mu.Lock()
		rows.updateErr = nil
		rows.mu.Unlock()
	}()
	m.Run(context.Background())

	// The target fired exactly once despite the earlier failed iterations.
	assert.Equal(t, []float64{110.0}, notifier.updates)
	assert.Equal(t, domain.CloseProfit, trade.CloseKind)
}

func TestMonitorCloseWritebackFailureStillCloses(t *testing.T) {
	trade := longTrade()
	quotes := &mockQuotes{steps: []quoteStep{{price: 111}}}
	rows := &mockRows{batchErr: errors.New("sheet unavailable")}
	m, notifier, archive := newTestMonitor(t, trade, quotes, rows)

	m.Run(context.Background())

	assert.Equal(t, domain.StatusClosed, trade.Status)
	assert.Equal(t, []domain.CloseKind{domain.CloseProfit}, notifier.closedKinds())
	assert.Equal(t, domain.CloseProfit, archive.closed[trade.ID])
}

func TestMonitorStopsOnContextCancel(t *testing.T) {
	trade := longTrade()
	quotes := &mockQuotes{steps: []quoteStep{{price: 100}}} // never closes
	rows := &mockRows{}
	m, _, _ := newTestMonitor(t, trade, quotes, rows)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on context cancellation")
	}
	assert.Equal(t, domain.StatusOpen, trade.Status)
}
