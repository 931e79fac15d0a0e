// Package state holds the client session in one place. Every mutation
// goes through a Store method, which is what makes the hierarchical
// clearing rules enforceable: selecting a spreadsheet drops any sheet
// selection and preview, logging out drops everything.
package state

import (
	"sync"

	"github.com/sheetbridge/sheetbridge/internal/api"
)

// Snapshot is a copy of the session visible to rendering code.
type Snapshot struct {
	Authenticated bool
	Spreadsheets  []api.SpreadsheetSummary
	SelectedID    string
	SelectedSheet string
	Preview       *api.SheetPreview
	ErrorMessage  string
	Loading       bool
}

// Selected returns the currently selected spreadsheet summary, if any.
func (s Snapshot) Selected() (api.SpreadsheetSummary, bool) {
	for _, sp := range s.Spreadsheets {
		if sp.SpreadsheetID == s.SelectedID {
			return sp, true
		}
	}
	return api.SpreadsheetSummary{}, false
}

// PreviewTicket identifies one in-flight preview fetch. A completion
// whose ticket is no longer current is dropped, so a slow response can
// never overwrite a newer selection.
type PreviewTicket struct {
	spreadsheetID string
	sheetName     string
	gen           uint64
}

// Store coordinates concurrent updates to the session.
type Store struct {
	mu         sync.RWMutex
	session    Snapshot
	previewGen uint64
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.session
	snap.Spreadsheets = cloneSummaries(s.session.Spreadsheets)
	if s.session.Preview != nil {
		p := *s.session.Preview
		snap.Preview = &p
	}
	return snap
}

// SetAuthenticated records the backend's session status. Dropping to
// unauthenticated clears all downstream state.
func (s *Store) SetAuthenticated(authed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !authed {
		s.resetLocked()
		return
	}
	s.session.Authenticated = true
}

// Reset collapses back to the unauthenticated state, discarding the
// list, selection and preview.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.previewGen++
	s.session = Snapshot{}
}

// SetSpreadsheets replaces the spreadsheet list wholesale.
func (s *Store) SetSpreadsheets(list []api.SpreadsheetSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Spreadsheets = cloneSummaries(list)
}

// SelectSpreadsheet records a spreadsheet selection. Any previously
// selected sheet and preview are cleared before the new selection is
// visible.
func (s *Store) SelectSpreadsheet(spreadsheetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.previewGen++
	s.session.SelectedID = spreadsheetID
	s.session.SelectedSheet = ""
	s.session.Preview = nil
}

// SelectSheet records a sheet selection under the current spreadsheet
// and returns the ticket the eventual preview completion must present.
// Selecting with no spreadsheet selected is a no-op.
func (s *Store) SelectSheet(sheetName string) (PreviewTicket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.SelectedID == "" {
		return PreviewTicket{}, false
	}
	s.previewGen++
	s.session.SelectedSheet = sheetName
	s.session.Preview = nil
	return PreviewTicket{
		spreadsheetID: s.session.SelectedID,
		sheetName:     sheetName,
		gen:           s.previewGen,
	}, true
}

// FinishPreview applies a completed preview fetch. Stale completions
// (selection changed, logout, or a newer fetch issued since the ticket
// was cut) are dropped and reported as not applied.
func (s *Store) FinishPreview(ticket PreviewTicket, preview api.SheetPreview) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket.gen != s.previewGen ||
		ticket.spreadsheetID != s.session.SelectedID ||
		ticket.sheetName != s.session.SelectedSheet {
		return false
	}
	p := preview
	s.session.Preview = &p
	return true
}

// SetError records the message for the single error banner. An empty
// message clears the banner.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.ErrorMessage = msg
}

// BeginAction raises the loading flag. It reports false when another
// user-triggered action is already in flight, so rapid repeated clicks
// cannot issue overlapping requests.
func (s *Store) BeginAction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Loading {
		return false
	}
	s.session.Loading = true
	return true
}

// EndAction lowers the loading flag.
func (s *Store) EndAction() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Loading = false
}

func cloneSummaries(items []api.SpreadsheetSummary) []api.SpreadsheetSummary {
	if len(items) == 0 {
		return nil
	}
	dup := make([]api.SpreadsheetSummary, len(items))
	copy(dup, items)
	return dup
}
