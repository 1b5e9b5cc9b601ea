package domain

// Side represents the direction of a monitored position.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// Status represents the lifecycle status of a trade.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// CloseKind indicates how a trade was closed. The values are written verbatim
// into the close-kind cell of the sheet, so they double as display strings.
type CloseKind string

const (
	CloseProfit   CloseKind = "Profit"
	CloseStopLoss CloseKind = "Stop Loss"
)
