package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

type Config struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
}

// NewService authorizes against the Sheets API with a service account. Inline
// JSON credentials take priority over the file.
func NewService(ctx context.Context, cfg Config) (*gsheets.Service, error) {
	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, fmt.Errorf("sheets: no credentials configured")
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return svc, nil
}

// GoogleTable is a Table backed by one worksheet of a spreadsheet. Values are
// written RAW so amounts and timestamps round-trip as plain strings.
type GoogleTable struct {
	svc           *gsheets.Service
	spreadsheetID string
	name          string
	width         int
}

func NewGoogleTable(svc *gsheets.Service, spreadsheetID, name string, width int) *GoogleTable {
	return &GoogleTable{svc: svc, spreadsheetID: spreadsheetID, name: name, width: width}
}

func (t *GoogleTable) Name() string { return t.name }

func (t *GoogleTable) Rows(ctx context.Context) ([][]string, error) {
	resp, err := t.svc.Spreadsheets.Values.
		Get(t.spreadsheetID, t.span(2)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%s: read rows: %w", t.name, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, t.width)
		for i := 0; i < len(raw) && i < t.width; i++ {
			row[i] = fmt.Sprint(raw[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *GoogleTable) Append(ctx context.Context, row []string) error {
	_, err := t.svc.Spreadsheets.Values.
		Append(t.spreadsheetID, t.span(1), &gsheets.ValueRange{Values: [][]interface{}{toCells(row)}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%s: append row: %w", t.name, err)
	}
	return nil
}

func (t *GoogleTable) Update(ctx context.Context, index int, row []string) error {
	sheetRow := index + 2
	rng := fmt.Sprintf("%s!A%d:%s%d", t.name, sheetRow, columnLetter(t.width), sheetRow)
	_, err := t.svc.Spreadsheets.Values.
		Update(t.spreadsheetID, rng, &gsheets.ValueRange{Values: [][]interface{}{toCells(row)}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%s: update row %d: %w", t.name, index, err)
	}
	return nil
}

func (t *GoogleTable) span(fromRow int) string {
	return fmt.Sprintf("%s!A%d:%s", t.name, fromRow, columnLetter(t.width))
}

// EnsureSheets adds any missing worksheet and writes its header row.
func EnsureSheets(ctx context.Context, svc *gsheets.Service, spreadsheetID string, logger *slog.Logger) error {
	doc, err := svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: open spreadsheet: %w", err)
	}
	existing := make(map[string]bool, len(doc.Sheets))
	for _, s := range doc.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = true
		}
	}

	for _, name := range SheetNames {
		if existing[name] {
			continue
		}
		req := &gsheets.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheets.Request{{
				AddSheet: &gsheets.AddSheetRequest{Properties: &gsheets.SheetProperties{Title: name}},
			}},
		}
		if _, err := svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("sheets: add %s: %w", name, err)
		}
		header := headers[name]
		rng := fmt.Sprintf("%s!A1:%s1", name, columnLetter(len(header)))
		_, err := svc.Spreadsheets.Values.
			Update(spreadsheetID, rng, &gsheets.ValueRange{Values: [][]interface{}{toCells(header)}}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("sheets: write %s header: %w", name, err)
		}
		logger.Info("worksheet created", "sheet", name)
	}
	return nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// columnLetter converts a 1-based column number to its A1 letter (1 -> A, 27 -> AA).
func columnLetter(n int) string {
	var sb strings.Builder
	for n > 0 {
		n--
		sb.WriteByte(byte('A' + n%26))
		n /= 26
	}
	b := []byte(sb.String())
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
