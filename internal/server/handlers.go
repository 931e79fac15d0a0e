package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sheetbridge/sheetbridge/internal/api"
	"github.com/sheetbridge/sheetbridge/internal/googleauth"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "sheetbridge API"})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": s.tokens.HasToken()})
}

func (s *Server) handleAuthLogin(w http.ResponseWriter, _ *http.Request) {
	if err := s.cfg.RequireGoogleCredentials(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	state, err := googleauth.NewState()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not generate state")
		return
	}
	s.setState(state)

	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": googleauth.AuthCodeURL(s.oauth, state),
		"state":    state,
	})
}

// handleAuthCallback finishes the OAuth dance and bounces the user back
// to the frontend with the outcome in the query string.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if !s.takeState(q.Get("state")) {
		s.redirectWithError(w, r, "state mismatch")
		return
	}
	code := q.Get("code")
	if code == "" {
		msg := q.Get("error")
		if msg == "" {
			msg = "missing authorization code"
		}
		s.redirectWithError(w, r, msg)
		return
	}

	tok, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		s.redirectWithError(w, r, err.Error())
		return
	}
	if err := s.tokens.SetToken(tok); err != nil {
		s.redirectWithError(w, r, err.Error())
		return
	}

	http.Redirect(w, r, s.cfg.FrontendURL+"?auth=success", http.StatusFound)
}

func (s *Server) redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	target := s.cfg.FrontendURL + "?auth=error&message=" + url.QueryEscape(msg)
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) handleAuthLogout(w http.ResponseWriter, _ *http.Request) {
	if err := s.tokens.DeleteToken(); err != nil {
		writeError(w, http.StatusInternalServerError, "could not clear session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) handleSpreadsheets(w http.ResponseWriter, r *http.Request) {
	if !s.tokens.HasToken() {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	src, err := s.source(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	list, err := src.ListSpreadsheets(r.Context())
	if err != nil {
		slog.Error("list spreadsheets failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching spreadsheets")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSheetData(w http.ResponseWriter, r *http.Request) {
	if !s.tokens.HasToken() {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	spreadsheetID := r.PathValue("id")
	sheetName := r.PathValue("name")

	src, err := s.source(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	preview, err := src.SheetValues(r.Context(), spreadsheetID, sheetName)
	if err != nil {
		slog.Error("sheet read failed", "spreadsheet", spreadsheetID, "sheet", sheetName, "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching sheet data")
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleImport receives a forwarded preview and acknowledges it. The
// acknowledgment carries the accepted row count so the client can
// confirm delivery instead of firing and forgetting.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req api.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.SpreadsheetID) == "" || strings.TrimSpace(req.SheetName) == "" {
		writeError(w, http.StatusBadRequest, "spreadsheet_id and sheet_name are required")
		return
	}
	if _, err := time.Parse(time.RFC3339, req.Timestamp); err != nil {
		writeError(w, http.StatusBadRequest, "timestamp must be RFC 3339")
		return
	}

	slog.Info("preview received",
		"spreadsheet", req.SpreadsheetID,
		"sheet", req.SheetName,
		"rows", len(req.Data),
		"captured_at", req.Timestamp)

	writeJSON(w, http.StatusOK, api.ImportAck{Status: "ok", Rows: len(req.Data)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
