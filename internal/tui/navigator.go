package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
)

// LoopbackNavigator fills the browser's role in the OAuth dance for a
// terminal client: it opens the consent URL in the user's browser and
// runs a loopback listener at the configured frontend address to catch
// the provider's redirect back.
type LoopbackNavigator struct {
	addr        string
	outcomes    chan url.Values
	openBrowser func(ctx context.Context, rawURL string) error

	mu      sync.Mutex
	srv     *http.Server
	started bool
}

// NewLoopbackNavigator builds a navigator listening at the host of
// frontendURL (the address the server's callback redirects to).
func NewLoopbackNavigator(frontendURL string) (*LoopbackNavigator, error) {
	u, err := url.Parse(frontendURL)
	if err != nil {
		return nil, fmt.Errorf("parse frontend url %q: %w", frontendURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("frontend url %q has no host", frontendURL)
	}
	return &LoopbackNavigator{
		addr:        u.Host,
		outcomes:    make(chan url.Values, 1),
		openBrowser: openBrowser,
	}, nil
}

// Outcomes delivers the query values of each OAuth return.
func (n *LoopbackNavigator) Outcomes() <-chan url.Values {
	return n.outcomes
}

// Start runs the loopback listener until ctx is cancelled. Safe to call
// once; OpenAuthURL assumes it is running.
func (n *LoopbackNavigator) Start(ctx context.Context) error {
	n.mu.Lock()
	if n.started {
		n.mu.Unlock()
		return nil
	}
	n.started = true

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("auth") != "" {
			select {
			case n.outcomes <- q:
			default: // a previous outcome is still unconsumed
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><p>sheetbridge: you can return to the terminal.</p></body></html>")
	})

	n.srv = &http.Server{Addr: n.addr, Handler: mux}
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = n.srv.Close()
	}()

	go func() {
		if err := n.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// The listener dying only breaks the login flow; everything
			// else keeps working, so report it through the outcome
			// channel rather than crashing the UI.
			v := url.Values{}
			v.Set("auth", "error")
			v.Set("message", fmt.Sprintf("login listener failed: %v", err))
			select {
			case n.outcomes <- v:
			default:
			}
		}
	}()
	return nil
}

// OpenAuthURL sends the user's browser to the consent screen.
func (n *LoopbackNavigator) OpenAuthURL(ctx context.Context, authURL string) error {
	return n.openBrowser(ctx, authURL)
}

// StripAuthParams is a no-op here: the terminal has no address bar, and
// taking a value off the outcome channel already consumes it.
func (n *LoopbackNavigator) StripAuthParams() {}

func openBrowser(ctx context.Context, rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", rawURL)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", rawURL)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("could not open browser, visit manually: %s", rawURL)
	}
	return nil
}
