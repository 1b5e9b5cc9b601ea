package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TradeID derives the stable identity for a row: the first three cells
// (timestamp, trader, symbol) joined with the row number. It is a pure
// function of fields that never change after the row is appended.
func TradeID(cells []string, rowNumber int) string {
	var ts, trader, symbol string
	if len(cells) > cellTimestamp {
		ts = cells[cellTimestamp]
	}
	if len(cells) > cellTrader {
		trader = cells[cellTrader]
	}
	if len(cells) > cellSymbol {
		symbol = cells[cellSymbol]
	}
	return fmt.Sprintf("%s::%s::%s::%d", ts, trader, symbol, rowNumber)
}

// ParseRow converts one raw sheet row into a Trade. It fails closed: rows
// missing required columns, with an unknown side, or with unparseable
// required numerics are rejected rather than partially populated. Empty
// optional numeric cells map to nil, never to zero; the distinction drives
// the monitoring state machine.
func ParseRow(cells []string, rowNumber int) (*Trade, error) {
	if len(cells) <= cellAnalysis {
		return nil, fmt.Errorf("row %d: expected at least %d columns, got %d", rowNumber, cellAnalysis+1, len(cells))
	}
	// Trailing cells (final result, status, close kind) are trimmed from the
	// API response while empty; pad so they can be indexed uniformly.
	if len(cells) < rowWidth {
		padded := make([]string, rowWidth)
		copy(padded, cells)
		cells = padded
	}

	side := Side(strings.ToLower(strings.TrimSpace(cells[cellSide])))
	if side != Long && side != Short {
		return nil, fmt.Errorf("row %d: invalid side %q", rowNumber, cells[cellSide])
	}

	entry, err := parseRequiredFloat(cells[cellEntry], "entry", rowNumber)
	if err != nil {
		return nil, err
	}
	leverage, err := parseRequiredFloat(cells[cellLeverage], "leverage", rowNumber)
	if err != nil {
		return nil, err
	}
	stop, err := parseRequiredFloat(cells[cellStop], "stop", rowNumber)
	if err != nil {
		return nil, err
	}
	target1, err := parseRequiredFloat(cells[cellTarget1], "target1", rowNumber)
	if err != nil {
		return nil, err
	}

	stopPct, err := parseOptionalFloat(cells[cellStopPercent], "stop percent", rowNumber)
	if err != nil {
		return nil, err
	}
	t1Result, err := parseOptionalFloat(cells[cellTarget1Result], "target1 result", rowNumber)
	if err != nil {
		return nil, err
	}
	target2, err := parseOptionalFloat(cells[cellTarget2], "target2", rowNumber)
	if err != nil {
		return nil, err
	}
	t2Result, err := parseOptionalFloat(cells[cellTarget2Result], "target2 result", rowNumber)
	if err != nil {
		return nil, err
	}
	finalPnl, err := parseOptionalFloat(cells[cellFinalResult], "final result", rowNumber)
	if err != nil {
		return nil, err
	}

	status := StatusOpen
	if strings.TrimSpace(cells[cellStatus]) != "" {
		status = StatusClosed
	}

	return &Trade{
		ID:            TradeID(cells, rowNumber),
		RowNumber:     rowNumber,
		Timestamp:     cells[cellTimestamp],
		Trader:        cells[cellTrader],
		Symbol:        cells[cellSymbol],
		Category:      cells[cellCategory],
		Side:          side,
		EntryPrice:    entry,
		Leverage:      leverage,
		StopPrice:     stop,
		StopPercent:   stopPct,
		Target1Price:  target1,
		Target1Result: t1Result,
		Target2Price:  target2,
		Target2Result: t2Result,
		ImageRef:      cells[cellImage],
		AnalysisText:  cells[cellAnalysis],
		FinalPnl:      finalPnl,
		Status:        status,
		CloseKind:     CloseKind(strings.TrimSpace(cells[cellCloseKind])),
	}, nil
}

func parseRequiredFloat(raw, name string, rowNumber int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("row %d: invalid %s value %q: %w", rowNumber, name, raw, err)
	}
	return v, nil
}

func parseOptionalFloat(raw, name string, rowNumber int) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("row %d: invalid %s value %q: %w", rowNumber, name, raw, err)
	}
	return &v, nil
}
