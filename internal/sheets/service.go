package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Service is the subset of the spreadsheet API the mirror needs.
type Service interface {
	// SheetIDs maps sheet titles to sheet ids.
	SheetIDs(ctx context.Context) (map[string]int64, error)
	AddSheet(ctx context.Context, title string) (int64, error)
	WriteHeader(ctx context.Context, title string, sheetID int64, header []string) error
	RowCount(ctx context.Context, title string) (int, error)
	// ReadRows returns the data rows below the header.
	ReadRows(ctx context.Context, title string) ([][]string, error)
	AppendRows(ctx context.Context, title string, rows [][]interface{}) error
}

// GoogleService implements Service on top of the Sheets v4 API.
type GoogleService struct {
	api           *gsheets.Service
	spreadsheetID string
}

// NewGoogleService authenticates with a service-account credentials file.
func NewGoogleService(ctx context.Context, credentialsFile, spreadsheetID string) (*GoogleService, error) {
	if credentialsFile == "" {
		return nil, errors.New("GOOGLE_CREDENTIALS_FILE is not set")
	}
	if spreadsheetID == "" {
		return nil, errors.New("GOOGLE_SPREADSHEET_ID is not set")
	}
	api, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets client: %w", err)
	}
	return &GoogleService{api: api, spreadsheetID: spreadsheetID}, nil
}

func (g *GoogleService) SheetIDs(ctx context.Context) (map[string]int64, error) {
	resp, err := g.api.Spreadsheets.Get(g.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	ids := make(map[string]int64, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids, nil
}

func (g *GoogleService) AddSheet(ctx context.Context, title string) (int64, error) {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := g.api.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to add sheet %q: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("no reply for new sheet %q", title)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// WriteHeader writes header into row 1 and formats it bold on grey.
func (g *GoogleService) WriteHeader(ctx context.Context, title string, sheetID int64, header []string) error {
	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	vr := &gsheets.ValueRange{Values: [][]interface{}{values}}
	if _, err := g.api.Spreadsheets.Values.Update(g.spreadsheetID, title+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", title, err)
	}

	format := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			RepeatCell: &gsheets.RepeatCellRequest{
				Range: &gsheets.GridRange{
					SheetId:         sheetID,
					StartRowIndex:   0,
					EndRowIndex:     1,
					ForceSendFields: []string{"SheetId", "StartRowIndex"},
				},
				Cell: &gsheets.CellData{
					UserEnteredFormat: &gsheets.CellFormat{
						BackgroundColor: &gsheets.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
						TextFormat:      &gsheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat)",
			},
		}},
	}
	if _, err := g.api.Spreadsheets.BatchUpdate(g.spreadsheetID, format).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to format header of %q: %w", title, err)
	}
	return nil
}

func (g *GoogleService) RowCount(ctx context.Context, title string) (int, error) {
	resp, err := g.api.Spreadsheets.Values.Get(g.spreadsheetID, title+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to count rows of %q: %w", title, err)
	}
	return len(resp.Values), nil
}

func (g *GoogleService) ReadRows(ctx context.Context, title string) ([][]string, error) {
	resp, err := g.api.Spreadsheets.Values.Get(g.spreadsheetID, title+"!A2:F").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", title, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		row := make([]string, len(r))
		for i, v := range r {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *GoogleService) AppendRows(ctx context.Context, title string, rows [][]interface{}) error {
	vr := &gsheets.ValueRange{Values: rows}
	_, err := g.api.Spreadsheets.Values.Append(g.spreadsheetID, title+"!A:F", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append to %q: %w", title, err)
	}
	return nil
}
