package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// row builds a full 18-cell row with sensible defaults, letting tests
// override individual cells.
func row(overrides map[int]string) []string {
	cells := []string{
		"2024-05-01 10:00", "alice", "ETHUSDT", "Crypto", "Long",
		"100", "10", "95", "", "110", "", "", "", "https://example.com/chart.png",
		"breakout setup", "", "", "",
	}
	for i, v := range overrides {
		cells[i] = v
	}
	return cells
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		name    string
		cells   []string
		wantErr bool
		check   func(t *testing.T, tr *Trade)
	}{
		{
			name:  "valid long single target",
			cells: row(nil),
			check: func(t *testing.T, tr *Trade) {
				assert.Equal(t, Long, tr.Side)
				assert.Equal(t, 100.0, tr.EntryPrice)
				assert.Equal(t, 10.0, tr.Leverage)
				assert.Equal(t, 95.0, tr.StopPrice)
				assert.Equal(t, 110.0, tr.Target1Price)
				assert.Nil(t, tr.Target2Price)
				assert.Nil(t, tr.Target1Result)
				assert.Equal(t, StatusOpen, tr.Status)
				assert.True(t, tr.IsOpen())
				assert.False(t, tr.HasSecondTarget())
			},
		},
		{
			name:  "valid short with second target",
			cells: row(map[int]string{4: "SHORT", 7: "53", 9: "45", 11: "40"}),
			check: func(t *testing.T, tr *Trade) {
				assert.Equal(t, Short, tr.Side)
				require.NotNil(t, tr.Target2Price)
				assert.Equal(t, 40.0, *tr.Target2Price)
				assert.True(t, tr.HasSecondTarget())
			},
		},
		{
			name:  "side is case normalized",
			cells: row(map[int]string{4: "  LoNg "}),
			check: func(t *testing.T, tr *Trade) {
				assert.Equal(t, Long, tr.Side)
			},
		},
		{
			name:  "pre-recorded target result is kept",
			cells: row(map[int]string{10: "55.5"}),
			check: func(t *testing.T, tr *Trade) {
				require.NotNil(t, tr.Target1Result)
				assert.Equal(t, 55.5, *tr.Target1Result)
			},
		},
		{
			name:  "non-empty status means closed",
			cells: row(map[int]string{16: "Closed", 17: "Profit"}),
			check: func(t *testing.T, tr *Trade) {
				assert.Equal(t, StatusClosed, tr.Status)
				assert.False(t, tr.IsOpen())
				assert.Equal(t, CloseProfit, tr.CloseKind)
			},
		},
		{
			name:  "trailing cells may be trimmed",
			cells: row(nil)[:15],
			check: func(t *testing.T, tr *Trade) {
				assert.Equal(t, StatusOpen, tr.Status)
			},
		},
		{
			name:    "row shorter than analysis column",
			cells:   row(nil)[:10],
			wantErr: true,
		},
		{
			name:    "unknown side",
			cells:   row(map[int]string{4: "sideways"}),
			wantErr: true,
		},
		{
			name:    "unparseable entry",
			cells:   row(map[int]string{5: "n/a"}),
			wantErr: true,
		},
		{
			name:    "empty required target1",
			cells:   row(map[int]string{9: ""}),
			wantErr: true,
		},
		{
			name:    "unparseable optional target2",
			cells:   row(map[int]string{11: "soon"}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := ParseRow(tt.cells, 7)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, tr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, tr)
			assert.Equal(t, 7, tr.RowNumber)
			if tt.check != nil {
				tt.check(t, tr)
			}
		})
	}
}

func TestTradeID(t *testing.T) {
	cells := row(nil)
	assert.Equal(t, "2024-05-01 10:00::alice::ETHUSDT::7", TradeID(cells, 7))

	// Identity stays derivable even from a short row.
	assert.Equal(t, "ts::::::3", TradeID([]string{"ts"}, 3))
}

func TestTradeIDStableAcrossMutableCells(t *testing.T) {
	base := TradeID(row(nil), 7)
	withResults := TradeID(row(map[int]string{10: "55.5", 16: "Closed"}), 7)
	assert.Equal(t, base, withResults)
}
