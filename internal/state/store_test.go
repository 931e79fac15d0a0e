package state

import (
	"testing"

	"github.com/sheetbridge/sheetbridge/internal/api"
)

func twoSpreadsheets() []api.SpreadsheetSummary {
	return []api.SpreadsheetSummary{
		{SpreadsheetID: "a", Title: "Alpha", Sheets: []api.SheetRef{{Title: "Sheet1"}}},
		{SpreadsheetID: "b", Title: "Beta", Sheets: nil},
	}
}

func TestSelectSpreadsheet_ClearsSheetAndPreview(t *testing.T) {
	s := &Store{}
	s.SetAuthenticated(true)
	s.SetSpreadsheets(twoSpreadsheets())

	s.SelectSpreadsheet("a")
	ticket, ok := s.SelectSheet("Sheet1")
	if !ok {
		t.Fatalf("expected sheet selection to be accepted")
	}
	if !s.FinishPreview(ticket, api.SheetPreview{SpreadsheetID: "a", SheetName: "Sheet1"}) {
		t.Fatalf("expected preview to apply")
	}

	s.SelectSpreadsheet("b")

	snap := s.Snapshot()
	if snap.SelectedID != "b" {
		t.Fatalf("selected = %q", snap.SelectedID)
	}
	if snap.SelectedSheet != "" {
		t.Fatalf("sheet not cleared: %q", snap.SelectedSheet)
	}
	if snap.Preview != nil {
		t.Fatalf("preview not cleared")
	}
}

func TestFinishPreview_DropsStaleResponse(t *testing.T) {
	s := &Store{}
	s.SetAuthenticated(true)
	s.SetSpreadsheets(twoSpreadsheets())
	s.SelectSpreadsheet("a")

	stale, _ := s.SelectSheet("Sheet1")

	// User selects a different spreadsheet while the fetch is in flight.
	s.SelectSpreadsheet("b")

	if s.FinishPreview(stale, api.SheetPreview{SpreadsheetID: "a", SheetName: "Sheet1"}) {
		t.Fatalf("stale preview must not apply")
	}
	if snap := s.Snapshot(); snap.Preview != nil {
		t.Fatalf("stale preview visible under new selection")
	}
}

func TestFinishPreview_DropsSupersededFetch(t *testing.T) {
	s := &Store{}
	s.SetAuthenticated(true)
	s.SelectSpreadsheet("a")

	first, _ := s.SelectSheet("Sheet1")
	second, _ := s.SelectSheet("Sheet2")

	if s.FinishPreview(first, api.SheetPreview{SheetName: "Sheet1"}) {
		t.Fatalf("superseded fetch must not apply")
	}
	if !s.FinishPreview(second, api.SheetPreview{SpreadsheetID: "a", SheetName: "Sheet2"}) {
		t.Fatalf("current fetch should apply")
	}

	snap := s.Snapshot()
	if snap.Preview == nil || snap.Preview.SheetName != "Sheet2" {
		t.Fatalf("unexpected preview: %+v", snap.Preview)
	}
}

func TestSelectSheet_RequiresSpreadsheet(t *testing.T) {
	s := &Store{}
	s.SetAuthenticated(true)

	if _, ok := s.SelectSheet("Sheet1"); ok {
		t.Fatalf("sheet selection without a spreadsheet must be rejected")
	}
}

func TestReset_ClearsEverything(t *testing.T) {
	s := &Store{}
	s.SetAuthenticated(true)
	s.SetSpreadsheets(twoSpreadsheets())
	s.SelectSpreadsheet("a")
	ticket, _ := s.SelectSheet("Sheet1")
	s.FinishPreview(ticket, api.SheetPreview{SheetName: "Sheet1"})
	s.SetError("boom")

	s.Reset()

	snap := s.Snapshot()
	if snap.Authenticated {
		t.Fatalf("still authenticated after reset")
	}
	if snap.Spreadsheets != nil || snap.SelectedID != "" || snap.SelectedSheet != "" || snap.Preview != nil {
		t.Fatalf("downstream state survived reset: %+v", snap)
	}
	if snap.ErrorMessage != "" {
		t.Fatalf("error banner survived reset")
	}

	// A preview issued before the reset must not apply after it.
	if s.FinishPreview(ticket, api.SheetPreview{}) {
		t.Fatalf("pre-reset preview applied")
	}
}

func TestSetAuthenticatedFalse_Resets(t *testing.T) {
	s := &Store{}
	s.SetAuthenticated(true)
	s.SetSpreadsheets(twoSpreadsheets())
	s.SelectSpreadsheet("a")

	s.SetAuthenticated(false)

	snap := s.Snapshot()
	if snap.Authenticated || snap.SelectedID != "" || snap.Spreadsheets != nil {
		t.Fatalf("expected clean unauthenticated state, got %+v", snap)
	}
}

func TestSnapshotSelected(t *testing.T) {
	s := &Store{}
	s.SetSpreadsheets(twoSpreadsheets())
	s.SelectSpreadsheet("b")

	snap := s.Snapshot()
	sel, ok := snap.Selected()
	if !ok || sel.Title != "Beta" {
		t.Fatalf("selected = %+v ok=%v", sel, ok)
	}
	if len(sel.Sheets) != 0 {
		t.Fatalf("zero-sheet spreadsheet should expose no sheets")
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := &Store{}
	s.SetSpreadsheets(twoSpreadsheets())

	snap := s.Snapshot()
	snap.Spreadsheets[0].Title = "mutated"

	if got := s.Snapshot().Spreadsheets[0].Title; got != "Alpha" {
		t.Fatalf("store mutated through snapshot: %q", got)
	}
}
