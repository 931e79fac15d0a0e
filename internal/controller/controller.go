// Package controller sequences backend calls in response to user
// actions and applies the results to the session store. It knows
// nothing about rendering; the terminal UI reads store snapshots.
package controller

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/sheetbridge/sheetbridge/internal/api"
	"github.com/sheetbridge/sheetbridge/internal/errfmt"
	"github.com/sheetbridge/sheetbridge/internal/state"
)

// Navigator abstracts the pieces of navigation the controller needs:
// sending the user to the OAuth consent screen and consuming the query
// parameters the provider redirects back with. Keeping it an interface
// keeps the state transitions testable without a real browser or
// listener.
type Navigator interface {
	// OpenAuthURL performs the full-page redirect to the consent screen.
	OpenAuthURL(ctx context.Context, authURL string) error
	// StripAuthParams removes the consumed auth outcome from the visible
	// address so the transition cannot re-fire on reload.
	StripAuthParams()
}

// Controller drives the session through its two macro-states.
type Controller struct {
	client api.Backend
	store  *state.Store
	nav    Navigator
	now    func() time.Time
}

// New builds a Controller around the given backend, store and navigator.
func New(client api.Backend, store *state.Store, nav Navigator) *Controller {
	return &Controller{
		client: client,
		store:  store,
		nav:    nav,
		now:    time.Now,
	}
}

// Bootstrap queries the backend session status and, when authenticated,
// eagerly loads the spreadsheet list. A failing status check silently
// lands in the unauthenticated state.
func (c *Controller) Bootstrap(ctx context.Context) {
	authed := c.client.AuthStatus(ctx)
	c.store.SetAuthenticated(authed)
	if authed {
		c.refreshSpreadsheets(ctx)
	}
}

// ConsumeAuthReturn handles the query parameters the OAuth provider
// redirected back with. It reports whether an auth outcome was present.
// Either way the parameters are stripped exactly once.
func (c *Controller) ConsumeAuthReturn(ctx context.Context, query url.Values) bool {
	outcome := query.Get("auth")
	if outcome == "" {
		return false
	}
	defer c.nav.StripAuthParams()

	switch outcome {
	case "success":
		c.store.SetAuthenticated(true)
		c.store.SetError("")
		c.refreshSpreadsheets(ctx)
	case "error":
		msg := query.Get("message")
		if msg == "" {
			msg = "authentication failed"
		}
		c.store.SetError(msg)
	default:
		slog.Warn("ignoring unknown auth outcome", "auth", outcome)
		return false
	}
	return true
}

// BeginLogin fetches the consent URL and hands it to the navigator.
func (c *Controller) BeginLogin(ctx context.Context) {
	if !c.store.BeginAction() {
		return
	}
	defer c.store.EndAction()

	authURL, err := c.client.BeginLogin(ctx)
	if err != nil {
		c.store.SetError(errfmt.Format(err))
		return
	}
	if err := c.nav.OpenAuthURL(ctx, authURL); err != nil {
		c.store.SetError(errfmt.Format(err))
	}
}

// RefreshSpreadsheets reloads the spreadsheet list.
func (c *Controller) RefreshSpreadsheets(ctx context.Context) {
	if !c.store.BeginAction() {
		return
	}
	defer c.store.EndAction()
	c.refreshSpreadsheets(ctx)
}

func (c *Controller) refreshSpreadsheets(ctx context.Context) {
	list, err := c.client.ListSpreadsheets(ctx)
	if err != nil {
		c.store.SetError(errfmt.Format(err))
		return
	}
	c.store.SetError("")
	c.store.SetSpreadsheets(list)
}

// SelectSpreadsheet records a spreadsheet selection, clearing any
// previous sheet selection and preview.
func (c *Controller) SelectSpreadsheet(spreadsheetID string) {
	if c.store.Snapshot().Loading {
		return
	}
	c.store.SelectSpreadsheet(spreadsheetID)
}

// SelectSheet records a sheet selection and fetches its preview. The
// result is applied only if the selection is still current when the
// fetch completes.
func (c *Controller) SelectSheet(ctx context.Context, sheetName string) {
	if !c.store.BeginAction() {
		return
	}
	defer c.store.EndAction()

	snap := c.store.Snapshot()
	ticket, ok := c.store.SelectSheet(sheetName)
	if !ok {
		return
	}

	preview, err := c.client.SheetPreview(ctx, snap.SelectedID, sheetName)
	if err != nil {
		c.store.SetError(errfmt.Format(err))
		return
	}
	c.store.SetError("")
	if !c.store.FinishPreview(ticket, preview) {
		slog.Debug("dropped stale preview", "spreadsheet", snap.SelectedID, "sheet", sheetName)
	}
}

// SendPreview forwards the current preview with a capture timestamp and
// waits for the backend's acknowledgment. It returns the acknowledged
// row count for the UI's confirmation message.
func (c *Controller) SendPreview(ctx context.Context) (api.ImportAck, bool) {
	if !c.store.BeginAction() {
		return api.ImportAck{}, false
	}
	defer c.store.EndAction()

	snap := c.store.Snapshot()
	if snap.Preview == nil {
		return api.ImportAck{}, false
	}

	ack, err := c.client.SendPreview(ctx, api.NewImportRequest(*snap.Preview, c.now()))
	if err != nil {
		c.store.SetError(errfmt.Format(err))
		return api.ImportAck{}, false
	}
	c.store.SetError("")
	return ack, true
}

// Logout invalidates the backend session and collapses local state back
// to unauthenticated. A backend failure is surfaced but local state is
// cleared regardless: a second logout may legitimately fail once tokens
// are already gone.
func (c *Controller) Logout(ctx context.Context) {
	if !c.store.BeginAction() {
		return
	}
	defer c.store.EndAction()

	if err := c.client.Logout(ctx); err != nil {
		slog.Warn("backend logout failed", "error", err)
	}
	c.store.Reset()
}
