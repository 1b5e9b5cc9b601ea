package gsheets

import (
	"context"
	"fmt"

	"signalwatcher/internal/domain"
	"signalwatcher/internal/ports"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Store implements the ports.RowStore interface against one spreadsheet.
type Store struct {
	srv           *sheets.Service
	spreadsheetID string
	logger        ports.Logger
}

// Config holds configuration specific to the Sheets adapter.
type Config struct {
	SpreadsheetID   string
	CredentialsPath string
	TokenPath       string
	Logger          ports.Logger
}

// New creates a Sheets row store, running the OAuth flow if no cached token
// exists yet.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Sheets store")
	}
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet ID is required", ports.ErrConfigurationError)
	}

	httpClient, err := newOAuthClient(ctx, cfg.CredentialsPath, cfg.TokenPath, cfg.Logger)
	if err != nil {
		return nil, err
	}
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	cfg.Logger.Info(ctx, "Sheets client initialized", map[string]interface{}{"spreadsheetID": cfg.SpreadsheetID})

	return &Store{srv: srv, spreadsheetID: cfg.SpreadsheetID, logger: cfg.Logger}, nil
}

// ReadRows returns every data row of the trade range, in sheet order.
func (s *Store) ReadRows(ctx context.Context) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, domain.ReadRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrRowStoreRead, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UpdateCell writes one value into one cell, addressed as e.g. K17.
func (s *Store) UpdateCell(ctx context.Context, column string, row int, value string) error {
	rng := fmt.Sprintf("%s%d", column, row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: updating %s: %v", ports.ErrRowStoreWrite, rng, err)
	}
	return nil
}

// BatchUpdateCells writes several cells in one request.
func (s *Store) BatchUpdateCells(ctx context.Context, updates []ports.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s%d", u.Column, u.Row),
			Values: [][]interface{}{{u.Value}},
		})
	}
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	_, err := s.srv.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: batch update of %d cells: %v", ports.ErrRowStoreWrite, len(updates), err)
	}
	return nil
}
