package domain

// Trade represents one monitored position, derived from one sheet row.
type Trade struct {
	ID        string // Stable identity: timestamp::trader::symbol::rowNumber
	RowNumber int    // 1-based row in the sheet, used for write-back addressing

	Timestamp string // Kept as the sheet's display string
	Trader    string
	Symbol    string // Trading symbol (e.g., "ETHUSDT")
	Category  string
	Side      Side

	EntryPrice  float64
	Leverage    float64
	StopPrice   float64
	StopPercent *float64 // Pre-filled loss percent column, if present

	Target1Price  float64
	Target1Result *float64 // PnL recorded when target 1 fired; nil = not yet hit
	Target2Price  *float64 // nil = single-target trade
	Target2Result *float64

	ImageRef     string // Chart image URL (typically a Drive share link)
	AnalysisText string

	FinalPnl  *float64 // Set on close
	Status    Status
	CloseKind CloseKind // Set at most once, on close
}

// IsOpen reports whether the trade is still open.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

// HasSecondTarget reports whether a second profit target is configured.
func (t *Trade) HasSecondTarget() bool {
	return t.Target2Price != nil
}

// PnlAt returns the leveraged unrealized PnL percent at the given price.
func (t *Trade) PnlAt(price float64) float64 {
	if t.Side == Long {
		return (price - t.EntryPrice) / t.EntryPrice * 100 * t.Leverage
	}
	return (t.EntryPrice - price) / t.EntryPrice * 100 * t.Leverage
}

// Target1HitAt reports whether the given price reaches the first target.
func (t *Trade) Target1HitAt(price float64) bool {
	if t.Side == Long {
		return price >= t.Target1Price
	}
	return price <= t.Target1Price
}

// Target2HitAt reports whether the given price reaches the second target.
// Always false for single-target trades.
func (t *Trade) Target2HitAt(price float64) bool {
	if t.Target2Price == nil {
		return false
	}
	if t.Side == Long {
		return price >= *t.Target2Price
	}
	return price <= *t.Target2Price
}

// StopHitAt reports whether the given price reaches the stop level. The stop
// is disabled once any target has fired: a position that already paid out is
// considered de-risked, so it can no longer close at a loss.
func (t *Trade) StopHitAt(price float64) bool {
	if t.Target1Result != nil || t.Target2Result != nil {
		return false
	}
	if t.Side == Long {
		return price <= t.StopPrice
	}
	return price >= t.StopPrice
}
