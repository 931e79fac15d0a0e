package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SHEETBRIDGE_LISTEN", "SHEETBRIDGE_BACKEND", "FRONTEND_URL",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URI",
		"SHEETBRIDGE_KEYRING_BACKEND",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Missing(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:8082" {
		t.Fatalf("listen: %q", cfg.ListenAddr)
	}
	if cfg.BackendURL != "http://127.0.0.1:8082" {
		t.Fatalf("backend: %q", cfg.BackendURL)
	}
	if cfg.FrontendURL != "http://localhost:5173" {
		t.Fatalf("frontend: %q", cfg.FrontendURL)
	}
	if cfg.GoogleRedirectURI != "http://127.0.0.1:8082/auth/callback" {
		t.Fatalf("redirect: %q", cfg.GoogleRedirectURI)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	data := `
listen = "0.0.0.0:9000"
frontend_url = "https://app.example.com"
google_client_id = "cid"
google_client_secret = "secret"
keyring_backend = "file"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "0.0.0.0:9000" {
		t.Fatalf("listen: %q", cfg.ListenAddr)
	}
	if cfg.FrontendURL != "https://app.example.com" {
		t.Fatalf("frontend: %q", cfg.FrontendURL)
	}
	if cfg.GoogleClientID != "cid" || cfg.GoogleClientSecret != "secret" {
		t.Fatalf("credentials not loaded")
	}
	if cfg.KeyringBackend != "file" {
		t.Fatalf("keyring backend: %q", cfg.KeyringBackend)
	}
	if err := cfg.RequireGoogleCredentials(); err != nil {
		t.Fatalf("RequireGoogleCredentials: %v", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`google_client_id = "from-file"`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("GOOGLE_CLIENT_ID", "from-env")
	t.Setenv("FRONTEND_URL", "http://localhost:3000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GoogleClientID != "from-env" {
		t.Fatalf("env should win: %q", cfg.GoogleClientID)
	}
	if cfg.FrontendURL != "http://localhost:3000" {
		t.Fatalf("frontend: %q", cfg.FrontendURL)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("listen = [broken"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRequireGoogleCredentials_Missing(t *testing.T) {
	cfg := Config{Path: "/tmp/config.toml"}
	err := cfg.RequireGoogleCredentials()
	if err == nil {
		t.Fatalf("expected error")
	}

	credErr, ok := err.(*CredentialsMissingError)
	if !ok {
		t.Fatalf("expected CredentialsMissingError, got %T", err)
	}
	if credErr.Path != "/tmp/config.toml" {
		t.Fatalf("path: %q", credErr.Path)
	}
}
