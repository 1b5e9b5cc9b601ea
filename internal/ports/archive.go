package ports

import (
	"context"
	"time"

	"signalwatcher/internal/domain"
)

// ArchivedTrade is one locally recorded trade lifecycle.
type ArchivedTrade struct {
	TradeID     string
	RowNumber   int
	Symbol      string
	Trader      string
	Side        domain.Side
	EntryPrice  float64
	Leverage    float64
	AnnouncedAt time.Time
	CloseKind   domain.CloseKind // empty while open
	FinalPnl    *float64
	ClosedAt    *time.Time
}

// TradeArchive keeps a local history of announced trades and their outcomes,
// so the process is auditable without re-reading the sheet. Archive writes
// are best-effort: failures are logged by callers and never affect the
// trade lifecycle.
type TradeArchive interface {
	// RecordAnnounced stores a newly announced trade.
	RecordAnnounced(ctx context.Context, trade *domain.Trade) error
	// RecordClosed stores the close outcome for a previously announced trade.
	RecordClosed(ctx context.Context, tradeID string, kind domain.CloseKind, finalPnl float64) error
	// FindRecent returns the most recently announced trades, newest first.
	FindRecent(ctx context.Context, limit int) ([]*ArchivedTrade, error)
	// TotalClosedPnl sums the final PnL percent across closed trades.
	TotalClosedPnl(ctx context.Context) (float64, error)
}
