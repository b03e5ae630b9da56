package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	apperrors "github.com/workhq/workplace-bot/internal"
)

// ValueInput selects how appended cells are interpreted by the spreadsheet.
type ValueInput string

const (
	// UserEntered lets the sheet parse dates and numbers as if typed in.
	UserEntered ValueInput = "USER_ENTERED"
	// Raw stores values verbatim, used for rows that must round-trip exactly.
	Raw ValueInput = "RAW"
)

// Gateway wraps the Sheets API for the one spreadsheet that backs the bot.
// Every domain table is a tab in that spreadsheet; services address them by
// A1 range.
type Gateway struct {
	svc           *sheets.Service
	spreadsheetID string
	logger        *slog.Logger
}

func NewGateway(ctx context.Context, credentialsJSON []byte, spreadsheetID string, logger *slog.Logger) (*Gateway, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}
	// Parse the service-account JSON eagerly so a bad credential fails at
	// startup, not on the first append.
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Gateway{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

// Append inserts one row at the end of the given range's table.
func (g *Gateway) Append(ctx context.Context, readRange string, mode ValueInput, row []interface{}) error {
	body := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := g.svc.Spreadsheets.Values.
		Append(g.spreadsheetID, readRange, body).
		ValueInputOption(string(mode)).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		g.logger.Error("sheets append failed", "range", readRange, "error", err)
		return apperrors.NewUpstreamError("Spreadsheet write failed", apperrors.ErrCodeSheetsUnavailable,
			fmt.Errorf("append to %s: %w", readRange, err))
	}
	g.logger.Debug("sheets row appended", "range", readRange)
	return nil
}

// Read returns unformatted values with dates as serial numbers, so date
// arithmetic does not depend on the sheet's display formatting.
func (g *Gateway) Read(ctx context.Context, readRange string) ([][]interface{}, error) {
	resp, err := g.svc.Spreadsheets.Values.
		Get(g.spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		g.logger.Error("sheets read failed", "range", readRange, "error", err)
		return nil, apperrors.NewUpstreamError("Spreadsheet read failed", apperrors.ErrCodeSheetsUnavailable,
			fmt.Errorf("read %s: %w", readRange, err))
	}
	return resp.Values, nil
}
