// Package config loads sheetbridge settings from a TOML file with
// environment overrides for the Google OAuth credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const AppName = "sheetbridge"

// Config carries everything the server and the terminal client need.
type Config struct {
	// ListenAddr is the address the REST wrapper binds to.
	ListenAddr string
	// BackendURL is the base URL the client talks to.
	BackendURL string
	// FrontendURL is where the OAuth callback redirects the user after
	// the exchange, and the origin allowed by CORS.
	FrontendURL string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	// KeyringBackend optionally forces a keyring backend ("file" is the
	// portable choice on headless machines).
	KeyringBackend string

	// Path the config was loaded from, for error messages.
	Path string
}

const (
	defaultConfigPath  = "~/.config/sheetbridge/config.toml"
	defaultListenAddr  = "127.0.0.1:8082"
	defaultFrontendURL = "http://localhost:5173"
)

// CredentialsMissingError reports that the Google OAuth client
// credentials are configured nowhere.
type CredentialsMissingError struct {
	Path string
}

func (e *CredentialsMissingError) Error() string {
	return fmt.Sprintf("google oauth credentials not configured (expected in env or %s)", e.Path)
}

// Load locates and parses the config file, falling back to defaults
// when it is missing. Environment variables override file values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:  defaultListenAddr,
		FrontendURL: defaultFrontendURL,
		Path:        resolved,
	}

	data, err := os.ReadFile(resolved)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		var raw struct {
			Listen         string `toml:"listen"`
			Backend        string `toml:"backend"`
			FrontendURL    string `toml:"frontend_url"`
			ClientID       string `toml:"google_client_id"`
			ClientSecret   string `toml:"google_client_secret"`
			RedirectURI    string `toml:"google_redirect_uri"`
			KeyringBackend string `toml:"keyring_backend"`
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
		}
		setIfNotEmpty(&cfg.ListenAddr, raw.Listen)
		setIfNotEmpty(&cfg.BackendURL, raw.Backend)
		setIfNotEmpty(&cfg.FrontendURL, raw.FrontendURL)
		setIfNotEmpty(&cfg.GoogleClientID, raw.ClientID)
		setIfNotEmpty(&cfg.GoogleClientSecret, raw.ClientSecret)
		setIfNotEmpty(&cfg.GoogleRedirectURI, raw.RedirectURI)
		setIfNotEmpty(&cfg.KeyringBackend, raw.KeyringBackend)
	}

	setIfNotEmpty(&cfg.ListenAddr, os.Getenv("SHEETBRIDGE_LISTEN"))
	setIfNotEmpty(&cfg.BackendURL, os.Getenv("SHEETBRIDGE_BACKEND"))
	setIfNotEmpty(&cfg.FrontendURL, os.Getenv("FRONTEND_URL"))
	setIfNotEmpty(&cfg.GoogleClientID, os.Getenv("GOOGLE_CLIENT_ID"))
	setIfNotEmpty(&cfg.GoogleClientSecret, os.Getenv("GOOGLE_CLIENT_SECRET"))
	setIfNotEmpty(&cfg.GoogleRedirectURI, os.Getenv("GOOGLE_REDIRECT_URI"))
	setIfNotEmpty(&cfg.KeyringBackend, os.Getenv("SHEETBRIDGE_KEYRING_BACKEND"))

	if cfg.BackendURL == "" {
		cfg.BackendURL = "http://" + cfg.ListenAddr
	}
	if cfg.GoogleRedirectURI == "" {
		cfg.GoogleRedirectURI = cfg.BackendURL + "/auth/callback"
	}

	return cfg, nil
}

// RequireGoogleCredentials fails when the OAuth client is unconfigured.
// The login endpoint calls this so the failure surfaces as a clear
// message instead of a broken consent URL.
func (c Config) RequireGoogleCredentials() error {
	if strings.TrimSpace(c.GoogleClientID) == "" || strings.TrimSpace(c.GoogleClientSecret) == "" {
		return &CredentialsMissingError{Path: c.Path}
	}
	return nil
}

// EnsureKeyringDir creates and returns the directory backing the file
// keyring fallback.
func EnsureKeyringDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	dir := filepath.Join(base, AppName, "keyring")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create keyring dir: %w", err)
	}
	return dir, nil
}

func setIfNotEmpty(dst *string, v string) {
	if s := strings.TrimSpace(v); s != "" {
		*dst = s
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
