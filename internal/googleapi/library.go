// Package googleapi wraps the Google Drive and Sheets services behind
// the two reads the bridge needs: list spreadsheets with tab metadata,
// and fetch one sheet's values.
package googleapi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/sheetbridge/sheetbridge/internal/api"
)

const (
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	listPageSize        = 50
	// Column span fetched for a preview. A:ZZ covers 702 columns, which
	// is the original backend's "all columns" approximation.
	previewRange = "A:ZZ"
)

// Library reads a user's spreadsheet collection.
type Library struct {
	drive  *drive.Service
	sheets *sheets.Service
}

// NewLibrary builds Drive and Sheets services over the same token
// source. Extra client options are for tests pointing at fakes.
func NewLibrary(ctx context.Context, ts oauth2.TokenSource, extra ...option.ClientOption) (*Library, error) {
	driveSvc, err := NewDrive(ctx, ts, extra...)
	if err != nil {
		return nil, fmt.Errorf("init drive service: %w", err)
	}
	sheetsSvc, err := NewSheets(ctx, ts, extra...)
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}
	return &Library{drive: driveSvc, sheets: sheetsSvc}, nil
}

// ListSpreadsheets searches Drive for spreadsheets and resolves each
// one's tab metadata. A spreadsheet whose metadata read fails is still
// listed with a single default tab rather than dropped.
func (l *Library) ListSpreadsheets(ctx context.Context) ([]api.SpreadsheetSummary, error) {
	files, err := l.drive.Files.List().
		Q(fmt.Sprintf("mimeType='%s'", spreadsheetMimeType)).
		PageSize(listPageSize).
		Fields("nextPageToken, files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list drive files: %w", err)
	}

	out := make([]api.SpreadsheetSummary, 0, len(files.Files))
	for _, f := range files.Files {
		summary := api.SpreadsheetSummary{
			SpreadsheetID: f.Id,
			Title:         f.Name,
		}

		meta, err := l.sheets.Spreadsheets.Get(f.Id).
			Fields("sheets.properties").
			Context(ctx).
			Do()
		if err != nil {
			slog.Warn("spreadsheet metadata unavailable, using default tab",
				"spreadsheet", f.Id, "error", err)
			summary.Sheets = []api.SheetRef{{SheetID: 0, Title: "Sheet1", Index: 0}}
			out = append(out, summary)
			continue
		}

		refs := make([]api.SheetRef, 0, len(meta.Sheets))
		for _, sh := range meta.Sheets {
			if sh.Properties == nil {
				continue
			}
			refs = append(refs, api.SheetRef{
				SheetID: sh.Properties.SheetId,
				Title:   sh.Properties.Title,
				Index:   sh.Properties.Index,
				Type:    sh.Properties.SheetType,
			})
		}
		summary.Sheets = refs
		out = append(out, summary)
	}
	return out, nil
}

// SheetValues reads one sheet's cells. The first row becomes the
// headers; the rest become data rows. An empty sheet yields empty
// headers and data, not an error.
func (l *Library) SheetValues(ctx context.Context, spreadsheetID, sheetName string) (api.SheetPreview, error) {
	rangeSpec := fmt.Sprintf("%s!%s", quoteSheetTitle(sheetName), previewRange)
	resp, err := l.sheets.Spreadsheets.Values.Get(spreadsheetID, rangeSpec).
		Context(ctx).
		Do()
	if err != nil {
		return api.SheetPreview{}, fmt.Errorf("read sheet values: %w", err)
	}

	preview := api.SheetPreview{
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
		Headers:       []string{},
		Data:          [][]string{},
	}
	if len(resp.Values) == 0 {
		return preview, nil
	}

	preview.Headers = stringifyRow(resp.Values[0])
	for _, row := range resp.Values[1:] {
		preview.Data = append(preview.Data, stringifyRow(row))
	}
	return preview, nil
}

// quoteSheetTitle wraps a title in the single quotes A1 notation
// requires for titles with spaces or punctuation. Embedded quotes are
// doubled.
func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func stringifyRow(row []any) []string {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = fmt.Sprintf("%v", cell)
	}
	return cells
}
