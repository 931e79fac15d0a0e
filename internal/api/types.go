package api

import "time"

// SheetRef identifies one tab within a spreadsheet.
type SheetRef struct {
	SheetID int64  `json:"sheet_id"`
	Title   string `json:"title"`
	Index   int64  `json:"index"`
	Type    string `json:"sheet_type,omitempty"`
}

// SpreadsheetSummary describes one spreadsheet and its tabs. Replaced
// wholesale on refresh, never mutated in place.
type SpreadsheetSummary struct {
	SpreadsheetID string     `json:"spreadsheet_id"`
	Title         string     `json:"title"`
	Sheets        []SheetRef `json:"sheets"`
}

// SheetPreview is the header row plus a sample of data rows for one
// sheet. Rows are not guaranteed to be as long as Headers.
type SheetPreview struct {
	SpreadsheetID string     `json:"spreadsheet_id"`
	SheetName     string     `json:"sheet_name"`
	Headers       []string   `json:"headers"`
	Data          [][]string `json:"data"`
}

// Cell returns the value at (row, col), or "" when the row is shorter
// than the header it is rendered under.
func (p SheetPreview) Cell(row, col int) string {
	if row < 0 || row >= len(p.Data) {
		return ""
	}
	r := p.Data[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ImportRequest is the notification payload forwarded to the backend.
type ImportRequest struct {
	SpreadsheetID string     `json:"spreadsheet_id"`
	SheetName     string     `json:"sheet_name"`
	Headers       []string   `json:"headers"`
	Data          [][]string `json:"data"`
	Timestamp     string     `json:"timestamp"`
}

// NewImportRequest packages a preview with a capture timestamp.
func NewImportRequest(p SheetPreview, at time.Time) ImportRequest {
	return ImportRequest{
		SpreadsheetID: p.SpreadsheetID,
		SheetName:     p.SheetName,
		Headers:       p.Headers,
		Data:          p.Data,
		Timestamp:     at.UTC().Format(time.RFC3339),
	}
}

// ImportAck is the backend's acknowledgment for an import.
type ImportAck struct {
	Status string `json:"status"`
	Rows   int    `json:"rows"`
}

type statusResponse struct {
	Authenticated bool `json:"authenticated"`
}

type loginResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state,omitempty"`
}
