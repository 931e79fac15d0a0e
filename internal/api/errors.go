package api

import "fmt"

// AuthInitiationError reports a failure to obtain the OAuth consent URL.
type AuthInitiationError struct {
	Err error
}

func (e *AuthInitiationError) Error() string {
	return fmt.Sprintf("initiate login: %v", e.Err)
}

func (e *AuthInitiationError) Unwrap() error { return e.Err }

// LogoutError reports a failure to invalidate the backend session.
// Client-side state is untouched; the caller decides whether to clear
// it regardless.
type LogoutError struct {
	Err error
}

func (e *LogoutError) Error() string {
	return fmt.Sprintf("logout: %v", e.Err)
}

func (e *LogoutError) Unwrap() error { return e.Err }

// FetchError covers spreadsheet-list, sheet-preview and import failures.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
