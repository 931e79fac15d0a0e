package errfmt

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
	ggoogleapi "google.golang.org/api/googleapi"

	"github.com/sheetbridge/sheetbridge/internal/api"
	"github.com/sheetbridge/sheetbridge/internal/config"
)

// Format converts an error into the short human-readable message shown
// in the error banner or on stderr.
func Format(err error) string {
	if err == nil {
		return ""
	}

	var initErr *api.AuthInitiationError
	if errors.As(err, &initErr) {
		return "Could not start Google sign-in. Is the sheetbridge server running?"
	}

	var logoutErr *api.LogoutError
	if errors.As(err, &logoutErr) {
		return "Sign-out did not complete on the server. Your local session was cleared."
	}

	var fetchErr *api.FetchError
	if errors.As(err, &fetchErr) {
		return fmt.Sprintf("Failed to %s. Try again or sign in anew.", fetchErr.Op)
	}

	var credErr *config.CredentialsMissingError
	if errors.As(err, &credErr) {
		return fmt.Sprintf("Google OAuth credentials missing. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET (or add them to %s)", credErr.Path)
	}

	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "No stored Google session. Sign in first."
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out."
	}

	if errors.Is(err, os.ErrNotExist) {
		return err.Error()
	}

	var gerr *ggoogleapi.Error
	if errors.As(err, &gerr) {
		reason := ""
		if len(gerr.Errors) > 0 && gerr.Errors[0].Reason != "" {
			reason = gerr.Errors[0].Reason
		}

		if reason != "" {
			return fmt.Sprintf("Google API error (%d %s): %s", gerr.Code, reason, gerr.Message)
		}

		return fmt.Sprintf("Google API error (%d): %s", gerr.Code, gerr.Message)
	}

	return err.Error()
}
