package domain

// Sheet layout: one trade per row, columns A through R, header in row 1.

// ReadRange covers every data row across all trade columns.
const ReadRange = "A2:R"

// FirstDataRow is the sheet row number of the first trade row.
const FirstDataRow = 2

// Cell indices within a row slice read from ReadRange.
const (
	cellTimestamp = iota
	cellTrader
	cellSymbol
	cellCategory
	cellSide
	cellEntry
	cellLeverage
	cellStop
	cellStopPercent
	cellTarget1
	cellTarget1Result
	cellTarget2
	cellTarget2Result
	cellImage
	cellAnalysis
	cellFinalResult
	cellStatus
	cellCloseKind

	rowWidth
)

// Column letters for write-back addressing.
const (
	ColStopPercent   = "I"
	ColTarget1Result = "K"
	ColTarget2Result = "M"
	ColFinalResult   = "P"
	ColStatus        = "Q"
	ColCloseKind     = "R"
)

// StatusCellMarker is written to the status column when a trade closes. Any
// non-empty status cell means the row is no longer a monitoring candidate.
const StatusCellMarker = "Closed"
