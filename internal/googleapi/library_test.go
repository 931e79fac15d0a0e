package googleapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// fakeGoogle serves just enough of the Drive and Sheets REST surface
// for Library.
func fakeGoogle(t *testing.T, handler http.HandlerFunc) *Library {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"})
	lib, err := NewLibrary(context.Background(), ts,
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	return lib
}

func TestListSpreadsheets(t *testing.T) {
	lib := fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/files"):
			if q := r.URL.Query().Get("q"); !strings.Contains(q, "application/vnd.google-apps.spreadsheet") {
				t.Fatalf("unexpected drive query: %q", q)
			}
			_, _ = w.Write([]byte(`{"files":[{"id":"s1","name":"Budget"},{"id":"s2","name":"Broken"}]}`))
		case strings.Contains(r.URL.Path, "/spreadsheets/s1"):
			_, _ = w.Write([]byte(`{"sheets":[
				{"properties":{"sheetId":11,"title":"Sales Q1","index":0,"sheetType":"GRID"}},
				{"properties":{"sheetId":12,"title":"Notes","index":1,"sheetType":"GRID"}}
			]}`))
		case strings.Contains(r.URL.Path, "/spreadsheets/s2"):
			http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
		default:
			t.Fatalf("unexpected path: %q", r.URL.Path)
		}
	})

	got, err := lib.ListSpreadsheets(context.Background())
	if err != nil {
		t.Fatalf("ListSpreadsheets: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 spreadsheets, got %d", len(got))
	}

	if got[0].Title != "Budget" || len(got[0].Sheets) != 2 {
		t.Fatalf("unexpected first summary: %+v", got[0])
	}
	if got[0].Sheets[0].Title != "Sales Q1" || got[0].Sheets[0].SheetID != 11 {
		t.Fatalf("unexpected sheet ref: %+v", got[0].Sheets[0])
	}

	// Metadata failure falls back to a single default tab.
	if len(got[1].Sheets) != 1 || got[1].Sheets[0].Title != "Sheet1" {
		t.Fatalf("expected fallback tab for s2, got %+v", got[1].Sheets)
	}
}

func TestListSpreadsheets_DriveFailure(t *testing.T) {
	lib := fakeGoogle(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})

	if _, err := lib.ListSpreadsheets(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSheetValues(t *testing.T) {
	lib := fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/values/") {
			t.Fatalf("unexpected path: %q", r.URL.Path)
		}
		if !strings.Contains(r.URL.Path, "'Sales Q1'!A:ZZ") {
			t.Fatalf("unexpected range in path: %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"values":[["Name","Amount","Region"],["widget","3"],["gadget","7","east"]]}`))
	})

	got, err := lib.SheetValues(context.Background(), "s1", "Sales Q1")
	if err != nil {
		t.Fatalf("SheetValues: %v", err)
	}
	if got.SheetName != "Sales Q1" {
		t.Fatalf("sheet name: %q", got.SheetName)
	}
	if len(got.Headers) != 3 || got.Headers[0] != "Name" {
		t.Fatalf("headers: %v", got.Headers)
	}
	if len(got.Data) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(got.Data))
	}
	// Short row stays short on the wire; padding is a rendering concern.
	if len(got.Data[0]) != 2 {
		t.Fatalf("row padded unexpectedly: %v", got.Data[0])
	}
}

func TestSheetValues_EmptySheet(t *testing.T) {
	lib := fakeGoogle(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"values":[]}`))
	})

	got, err := lib.SheetValues(context.Background(), "s1", "Empty")
	if err != nil {
		t.Fatalf("SheetValues: %v", err)
	}
	if len(got.Headers) != 0 || len(got.Data) != 0 {
		t.Fatalf("expected empty preview, got %+v", got)
	}
}

func TestSheetValues_QuotesApostrophes(t *testing.T) {
	lib := fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "'Bob''s Ledger'!A:ZZ") {
			t.Fatalf("unexpected range in path: %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"values":[]}`))
	})

	if _, err := lib.SheetValues(context.Background(), "s1", "Bob's Ledger"); err != nil {
		t.Fatalf("SheetValues: %v", err)
	}
}

func TestQuoteSheetTitle(t *testing.T) {
	cases := map[string]string{
		"Sheet1":       "'Sheet1'",
		"Sales Q1":     "'Sales Q1'",
		"Bob's Ledger": "'Bob''s Ledger'",
	}
	for in, want := range cases {
		if got := quoteSheetTitle(in); got != want {
			t.Fatalf("quoteSheetTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStringifyRow(t *testing.T) {
	got := stringifyRow([]any{"a", 3.5, true})
	if got[0] != "a" || got[1] != "3.5" || got[2] != "true" {
		t.Fatalf("unexpected: %v", got)
	}
}
