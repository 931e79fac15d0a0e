// Package api implements the HTTP client for the sheetbridge backend.
// Every operation is a single direct call: no retries, no caching.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Backend is the surface the controller drives. Implemented by *Client;
// tests substitute fakes.
type Backend interface {
	AuthStatus(ctx context.Context) bool
	BeginLogin(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	ListSpreadsheets(ctx context.Context) ([]SpreadsheetSummary, error)
	SheetPreview(ctx context.Context, spreadsheetID, sheetName string) (SheetPreview, error)
	SendPreview(ctx context.Context, req ImportRequest) (ImportAck, error)
}

var _ Backend = (*Client)(nil)

// Client talks to the sheetbridge REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultUserAgent = "sheetbridge/0.1"
	requestTimeout   = 15 * time.Second
)

// NewClient builds a Client for the given base URL or host:port value.
func NewClient(base string) (*Client, error) {
	u, err := parseBaseURL(base)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// AuthStatus reports whether the backend holds a valid session. Any
// transport or decode failure is treated as unauthenticated rather than
// surfaced: a transient status-check failure must not block the
// unauthenticated flow.
func (c *Client) AuthStatus(ctx context.Context) bool {
	var payload statusResponse
	if err := c.get(ctx, "/auth/status", &payload); err != nil {
		return false
	}
	return payload.Authenticated
}

// BeginLogin fetches the OAuth consent URL to redirect the user to.
func (c *Client) BeginLogin(ctx context.Context) (string, error) {
	var payload loginResponse
	if err := c.get(ctx, "/auth/login", &payload); err != nil {
		return "", &AuthInitiationError{Err: err}
	}
	if strings.TrimSpace(payload.AuthURL) == "" {
		return "", &AuthInitiationError{Err: fmt.Errorf("backend returned empty auth_url")}
	}
	return payload.AuthURL, nil
}

// Logout invalidates the backend session. Not safely repeatable: a
// second call may legitimately fail once tokens are gone.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, &url.URL{Path: "/auth/logout"}, nil, nil); err != nil {
		return &LogoutError{Err: err}
	}
	return nil
}

// ListSpreadsheets fetches the caller's spreadsheets with tab metadata.
func (c *Client) ListSpreadsheets(ctx context.Context) ([]SpreadsheetSummary, error) {
	var payload []SpreadsheetSummary
	if err := c.get(ctx, "/spreadsheets", &payload); err != nil {
		return nil, &FetchError{Op: "list spreadsheets", Err: err}
	}
	return payload, nil
}

// SheetPreview fetches the header row and data rows for one sheet.
// Sheet titles may contain spaces and punctuation, so each path segment
// is percent-encoded exactly once: RawPath carries the encoded form and
// Path the decoded one, which stops ResolveReference from escaping the
// segments a second time.
func (c *Client) SheetPreview(ctx context.Context, spreadsheetID, sheetName string) (SheetPreview, error) {
	rel := &url.URL{
		Path:    "/spreadsheet/" + spreadsheetID + "/sheet/" + sheetName,
		RawPath: "/spreadsheet/" + url.PathEscape(spreadsheetID) + "/sheet/" + url.PathEscape(sheetName),
	}
	var payload SheetPreview
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return SheetPreview{}, &FetchError{Op: "fetch sheet preview", Err: err}
	}
	return payload, nil
}

// SendPreview forwards a captured preview and waits for the backend's
// acknowledgment.
func (c *Client) SendPreview(ctx context.Context, req ImportRequest) (ImportAck, error) {
	var ack ImportAck
	if err := c.do(ctx, http.MethodPost, &url.URL{Path: "/import"}, req, &ack); err != nil {
		return ImportAck{}, &FetchError{Op: "send preview", Err: err}
	}
	if ack.Status != "ok" {
		return ImportAck{}, &FetchError{Op: "send preview", Err: fmt.Errorf("backend ack status %q", ack.Status)}
	}
	return ack, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	return c.doURL(ctx, http.MethodGet, &url.URL{Path: path}, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	return c.do(ctx, method, rel, nil, dest)
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(base string) (*url.URL, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, fmt.Errorf("backend address is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse backend address %q: %w", base, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
