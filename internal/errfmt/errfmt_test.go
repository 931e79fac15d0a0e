package errfmt

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	ggoogleapi "google.golang.org/api/googleapi"

	"github.com/sheetbridge/sheetbridge/internal/api"
	"github.com/sheetbridge/sheetbridge/internal/config"
)

func TestFormat_Nil(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestFormat_AuthInitiation(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &api.AuthInitiationError{Err: errors.New("connection refused")})
	got := Format(err)
	if !strings.Contains(got, "sign-in") {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestFormat_Logout(t *testing.T) {
	got := Format(&api.LogoutError{Err: errors.New("status 502")})
	if !strings.Contains(got, "local session was cleared") {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestFormat_Fetch(t *testing.T) {
	got := Format(&api.FetchError{Op: "list spreadsheets", Err: errors.New("status 500")})
	if !strings.Contains(got, "list spreadsheets") {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestFormat_CredentialsMissing(t *testing.T) {
	got := Format(&config.CredentialsMissingError{Path: "/etc/sheetbridge/config.toml"})
	if !strings.Contains(got, "GOOGLE_CLIENT_ID") || !strings.Contains(got, "/etc/sheetbridge/config.toml") {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestFormat_GoogleAPIError(t *testing.T) {
	gerr := &ggoogleapi.Error{
		Code:    403,
		Message: "insufficient permissions",
		Errors:  []ggoogleapi.ErrorItem{{Reason: "forbidden"}},
	}
	got := Format(gerr)
	if !strings.Contains(got, "403") || !strings.Contains(got, "forbidden") {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestFormat_Fallback(t *testing.T) {
	if got := Format(errors.New("plain failure")); got != "plain failure" {
		t.Fatalf("unexpected: %q", got)
	}
}
