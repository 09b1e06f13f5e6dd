// Package sheets appends screening outcomes to the candidate tracker
// spreadsheet. Matched and rejected candidates land on separate tabs.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"screenflow/internal/googleauth"
	"screenflow/internal/models"
)

var headerRow = []interface{}{
	"Screened At", "Record ID", "Name", "Email", "Subject",
	"Matched Keywords", "Match Count", "Resume", "Note",
}

// Tracker writes screening records to a Google spreadsheet.
type Tracker struct {
	service       *sheets.Service
	spreadsheetID string
	matchedTab    string
	rejectedTab   string
	logger        *zap.Logger
}

// NewTracker builds a Sheets client for the tracker spreadsheet.
func NewTracker(ctx context.Context, credentialsPath, tokenPath, spreadsheetID, matchedTab, rejectedTab string, logger *zap.Logger) (*Tracker, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("tracker spreadsheet ID is not configured")
	}

	httpClient, err := googleauth.NewClient(ctx, credentialsPath, tokenPath, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("authorize Sheets: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create Sheets service: %w", err)
	}

	return &Tracker{
		service:       svc,
		spreadsheetID: spreadsheetID,
		matchedTab:    matchedTab,
		rejectedTab:   rejectedTab,
		logger:        logger,
	}, nil
}

// CheckConnection verifies the spreadsheet is reachable.
func (t *Tracker) CheckConnection(ctx context.Context) error {
	if _, err := t.service.Spreadsheets.Get(t.spreadsheetID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("tracker spreadsheet lookup: %w", err)
	}
	return nil
}

// EnsureTabs creates the matched and rejected tabs with header rows when
// they do not exist yet. Safe to call on every startup.
func (t *Tracker) EnsureTabs(ctx context.Context) error {
	spreadsheet, err := t.service.Spreadsheets.Get(t.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("inspect tracker spreadsheet: %w", err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, sh := range spreadsheet.Sheets {
		existing[sh.Properties.Title] = true
	}

	for _, tab := range []string{t.matchedTab, t.rejectedTab} {
		if existing[tab] {
			continue
		}

		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: tab},
				},
			}},
		}
		if _, err := t.service.Spreadsheets.BatchUpdate(t.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("create tab %q: %w", tab, err)
		}

		header := &sheets.ValueRange{Values: [][]interface{}{headerRow}}
		if _, err := t.service.Spreadsheets.Values.Append(t.spreadsheetID, tab+"!A1", header).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write header for tab %q: %w", tab, err)
		}

		t.logger.Info("created tracker tab", zap.String("tab", tab))
	}

	return nil
}

// Append writes one screening record to the tab matching its verdict.
func (t *Tracker) Append(ctx context.Context, rec models.ScreeningRecord) error {
	tab := t.rejectedTab
	if rec.Result.IsMatch {
		tab = t.matchedTab
	}

	row := []interface{}{
		rec.ScreenedAt.Format(time.RFC3339),
		rec.ID,
		rec.Candidate.Name,
		rec.Candidate.Email,
		rec.Subject,
		strings.Join(rec.Result.Matched, ", "),
		rec.Result.Count,
		rec.ResumePath,
		rec.Note,
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := t.service.Spreadsheets.Values.Append(t.spreadsheetID, tab+"!A:I", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to tab %q: %w", tab, err)
	}

	t.logger.Debug("appended tracker row",
		zap.String("tab", tab),
		zap.String("candidate", rec.Candidate.Email))
	return nil
}

// RowCounts returns how many candidate rows each tab holds, excluding the
// header. Used by the status report.
func (t *Tracker) RowCounts(ctx context.Context) (matched, rejected int, err error) {
	matched, err = t.countRows(ctx, t.matchedTab)
	if err != nil {
		return 0, 0, err
	}
	rejected, err = t.countRows(ctx, t.rejectedTab)
	if err != nil {
		return 0, 0, err
	}
	return matched, rejected, nil
}

func (t *Tracker) countRows(ctx context.Context, tab string) (int, error) {
	resp, err := t.service.Spreadsheets.Values.Get(t.spreadsheetID, tab+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("count rows in tab %q: %w", tab, err)
	}
	if len(resp.Values) == 0 {
		return 0, nil
	}
	return len(resp.Values) - 1, nil
}
