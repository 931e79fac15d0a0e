package googleauth

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sheetbridge/sheetbridge/internal/config"
)

// Scopes returns the read-only scopes the bridge asks for. Stable
// ordering keeps auth URL diffs quiet.
func Scopes() []string {
	return []string{
		"https://www.googleapis.com/auth/drive.readonly",
		"https://www.googleapis.com/auth/spreadsheets.readonly",
	}
}

// OAuthConfig builds the oauth2 web-flow configuration from app config.
func OAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       Scopes(),
		Endpoint:     google.Endpoint,
	}
}

// AuthCodeURL returns the consent URL for the given state, requesting
// offline access so a refresh token comes back.
func AuthCodeURL(cfg *oauth2.Config, state string) string {
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// NewState returns a random state value for the OAuth dance.
func NewState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
