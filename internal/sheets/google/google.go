package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"cashflow/internal/core"
	"cashflow/internal/export"
	applog "cashflow/internal/log"
	ports "cashflow/internal/sheets"
)

var _ ports.Exporter = (*Client)(nil)

// amountColumn is the index of the amount cell in export.Row.
const amountColumn = 4

// Config selects the target sheet and the service account used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
	ServiceAccountJSON string
}

// Client writes cash flows to a Google Sheets tab.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

// New creates a Sheets client authenticated with service account
// credentials. Extra options are appended after the credentials.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	creds, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}

	all := append([]goption.ClientOption{
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, opts...)
	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if sheetName == "" {
		sheetName = export.SheetName
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        slog.Default().With(applog.FieldComponent, applog.ComponentSheets),
	}
}

func credentialsJSON(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	case cfg.ServiceAccountFile != "":
		data, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Export clears the sheet's data columns and writes a header row
// followed by one row per record. Cells are written RAW so text is never
// parsed as a formula; the amount is sent as a JSON number.
func (c *Client) Export(ctx context.Context, records []core.CashFlow) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:H", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	values := make([][]interface{}, 0, len(records)+1)
	values = append(values, toRow(export.Header))
	for _, r := range records {
		values = append(values, recordRow(r))
	}

	writeRange := fmt.Sprintf("%s!A1:H%d", c.sheetName, len(values))
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update sheet %s: %w", c.sheetName, err)
	}

	updated := resp.UpdatedRange
	if updated == "" {
		updated = writeRange
	}
	c.logger.InfoContext(ctx, "Exported cash flows to Google Sheets",
		applog.FieldCount, len(records),
		"range", updated)
	return updated, nil
}

func recordRow(c core.CashFlow) []interface{} {
	row := toRow(export.Row(c))
	row[amountColumn] = json.Number(c.Amount.String())
	return row
}

func toRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, v := range cells {
		row[i] = v
	}
	return row
}
