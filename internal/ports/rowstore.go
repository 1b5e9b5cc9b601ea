package ports

import "context"

// CellUpdate addresses a single cell write by column letter and row number.
type CellUpdate struct {
	Column string
	Row    int
	Value  string
}

// RowStore is the boundary to the tabular signal source. Rows are returned in
// sheet order; writes are addressed in column-letter + row-number notation.
// Single-cell updates are assumed atomic at cell granularity.
type RowStore interface {
	// ReadRows returns every data row in the monitored range, in order.
	// Trailing empty cells may be absent from a row.
	ReadRows(ctx context.Context) ([][]string, error)
	// UpdateCell writes one value into one cell.
	UpdateCell(ctx context.Context, column string, row int, value string) error
	// BatchUpdateCells writes several cells in a single request.
	BatchUpdateCells(ctx context.Context, updates []CellUpdate) error
}
