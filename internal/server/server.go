// Package server implements the REST wrapper around Google OAuth and
// the Drive/Sheets read APIs. It owns the single user session; clients
// talk to it instead of to Google directly.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/sheetbridge/sheetbridge/internal/api"
	"github.com/sheetbridge/sheetbridge/internal/config"
	"github.com/sheetbridge/sheetbridge/internal/googleapi"
	"github.com/sheetbridge/sheetbridge/internal/googleauth"
)

// SheetSource is the Google-facing read surface. *googleapi.Library
// implements it; tests substitute fakes.
type SheetSource interface {
	ListSpreadsheets(ctx context.Context) ([]api.SpreadsheetSummary, error)
	SheetValues(ctx context.Context, spreadsheetID, sheetName string) (api.SheetPreview, error)
}

// Server handles the sheetbridge REST API.
type Server struct {
	cfg    config.Config
	tokens googleauth.TokenStore
	oauth  *oauth2.Config

	// newSource builds the Google read surface for the current session.
	// Overridden in tests.
	newSource func(ctx context.Context, ts oauth2.TokenSource) (SheetSource, error)

	mu    sync.Mutex
	state string // pending OAuth state, empty when no dance is in flight
}

// New builds a Server from app config and a token store.
func New(cfg config.Config, tokens googleauth.TokenStore) *Server {
	return &Server{
		cfg:    cfg,
		tokens: tokens,
		oauth:  googleauth.OAuthConfig(cfg),
		newSource: func(ctx context.Context, ts oauth2.TokenSource) (SheetSource, error) {
			return googleapi.NewLibrary(ctx, ts)
		},
	}
}

// Handler returns the routed HTTP handler with CORS and request
// logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /auth/status", s.handleAuthStatus)
	mux.HandleFunc("GET /auth/login", s.handleAuthLogin)
	mux.HandleFunc("GET /auth/callback", s.handleAuthCallback)
	mux.HandleFunc("POST /auth/logout", s.handleAuthLogout)
	mux.HandleFunc("GET /spreadsheets", s.handleSpreadsheets)
	mux.HandleFunc("GET /spreadsheet/{id}/sheet/{name}", s.handleSheetData)
	mux.HandleFunc("POST /import", s.handleImport)

	return s.logRequests(s.cors(mux))
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	slog.Info("sheetbridge server listening", "addr", s.cfg.ListenAddr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// source builds the Google read surface for the stored session. The
// token source persists refreshed tokens back to the store.
func (s *Server) source(ctx context.Context) (SheetSource, error) {
	tok, err := s.tokens.GetToken()
	if err != nil {
		return nil, err
	}
	ts := googleauth.PersistingTokenSource(s.oauth.TokenSource(ctx, tok), s.tokens, tok)
	return s.newSource(ctx, ts)
}

func (s *Server) setState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// takeState consumes the pending OAuth state and reports whether the
// given value matches it.
func (s *Server) takeState(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == "" || state != s.state {
		return false
	}
	s.state = ""
	return true
}
