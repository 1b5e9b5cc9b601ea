package app

import (
	"context"
	"sync"

	"signalwatcher/internal/domain"
	"signalwatcher/internal/ports"
)

// Mock implementations shared by the engine tests.

type mockLogger struct {
	mu        sync.Mutex
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsgs = append(m.errorMsgs, msg)
}

// mockQuotes serves a scripted sequence of prices and errors; the last step
// repeats once the script is exhausted.
type quoteStep struct {
	price float64
	err   error
}

type mockQuotes struct {
	mu    sync.Mutex
	steps []quoteStep
	calls int
}

func (m *mockQuotes) LastPrice(ctx context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.calls
	m.calls++
	if i >= len(m.steps) {
		i = len(m.steps) - 1
	}
	return m.steps[i].price, m.steps[i].err
}

// mockRows records writes and serves canned row reads.
type mockRows struct {
	mu           sync.Mutex
	rows         [][]string
	readErr      error
	updateErr    error
	batchErr     error
	cellUpdates  []ports.CellUpdate
	batchUpdates [][]ports.CellUpdate
}

func (m *mockRows) ReadRows(ctx context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.rows, nil
}

func (m *mockRows) UpdateCell(ctx context.Context, column string, row int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.cellUpdates = append(m.cellUpdates, ports.CellUpdate{Column: column, Row: row, Value: value})
	return nil
}

func (m *mockRows) BatchUpdateCells(ctx context.Context, updates []ports.CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batchErr != nil {
		return m.batchErr
	}
	m.batchUpdates = append(m.batchUpdates, updates)
	return nil
}

func (m *mockRows) batchCell(column string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, batch := range m.batchUpdates {
		for _, u := range batch {
			if u.Column == column {
				return u.Value, true
			}
		}
	}
	return "", false
}

// mockNotifier records lifecycle events.
type mockNotifier struct {
	mu       sync.Mutex
	opened   []*domain.Trade
	updates  []float64
	closes   []domain.CloseKind
	closePnl []float64
}

func (m *mockNotifier) TradeOpened(ctx context.Context, t *domain.Trade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = append(m.opened, t)
}

func (m *mockNotifier) Target1Hit(ctx context.Context, t *domain.Trade, pnl float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, pnl)
}

func (m *mockNotifier) TradeClosed(ctx context.Context, t *domain.Trade, finalPnl float64, kind domain.CloseKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes = append(m.closes, kind)
	m.closePnl = append(m.closePnl, finalPnl)
}

func (m *mockNotifier) openedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.opened)
}

func (m *mockNotifier) closedKinds() []domain.CloseKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CloseKind(nil), m.closes...)
}

// mockLedger is an in-memory SentLedger.
type mockLedger struct {
	mu        sync.Mutex
	ids       map[string]struct{}
	recordErr error
}

func newMockLedger() *mockLedger {
	return &mockLedger{ids: make(map[string]struct{})}
}

func (m *mockLedger) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[id]
	return ok
}

func (m *mockLedger) Record(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.ids[id] = struct{}{}
	return nil
}

// mockArchive is an in-memory TradeArchive.
type mockArchive struct {
	mu        sync.Mutex
	announced []string
	closed    map[string]domain.CloseKind
}

func newMockArchive() *mockArchive {
	return &mockArchive{closed: make(map[string]domain.CloseKind)}
}

func (m *mockArchive) RecordAnnounced(ctx context.Context, trade *domain.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announced = append(m.announced, trade.ID)
	return nil
}

func (m *mockArchive) RecordClosed(ctx context.Context, tradeID string, kind domain.CloseKind, finalPnl float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed[tradeID] = kind
	return nil
}

func (m *mockArchive) FindRecent(ctx context.Context, limit int) ([]*ports.ArchivedTrade, error) {
	return nil, nil
}

func (m *mockArchive) TotalClosedPnl(ctx context.Context) (float64, error) {
	return 0, nil
}

func floatPtr(v float64) *float64 { return &v }
