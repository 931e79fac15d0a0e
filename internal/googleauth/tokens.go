package googleauth

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/99designs/keyring"
	"golang.org/x/oauth2"

	"github.com/sheetbridge/sheetbridge/internal/config"
)

// TokenStore persists the single user session's OAuth token. The bridge
// is single-user: one token under one key.
type TokenStore interface {
	SetToken(tok *oauth2.Token) error
	GetToken() (*oauth2.Token, error)
	DeleteToken() error
	HasToken() bool
}

const sessionKey = "session:google"

// KeyringStore keeps the token in the OS keyring, falling back to the
// encrypted file backend on headless machines.
type KeyringStore struct {
	ring keyring.Keyring
}

var _ TokenStore = (*KeyringStore)(nil)

// OpenDefault opens the keyring store. An explicit backend (usually
// "file") can be forced via config for machines without a keychain.
func OpenDefault(backend string) (*KeyringStore, error) {
	keyringDir, err := config.EnsureKeyringDir()
	if err != nil {
		return nil, err
	}

	kc := keyring.Config{
		ServiceName:      config.AppName,
		FileDir:          keyringDir,
		FilePasswordFunc: keyring.TerminalPrompt,
	}
	if backend != "" {
		kc.AllowedBackends = []keyring.BackendType{keyring.BackendType(backend)}
	}

	ring, err := keyring.Open(kc)
	if err != nil {
		return nil, err
	}
	return &KeyringStore{ring: ring}, nil
}

// NewKeyringStore wraps an existing keyring, used by tests with
// keyring.NewArrayKeyring.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func (s *KeyringStore) SetToken(tok *oauth2.Token) error {
	if tok == nil {
		return errors.New("missing token")
	}
	payload, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return s.ring.Set(keyring.Item{
		Key:  sessionKey,
		Data: payload,
	})
}

func (s *KeyringStore) GetToken() (*oauth2.Token, error) {
	it, err := s.ring.Get(sessionKey)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(it.Data, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (s *KeyringStore) DeleteToken() error {
	err := s.ring.Remove(sessionKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (s *KeyringStore) HasToken() bool {
	_, err := s.ring.Get(sessionKey)
	return err == nil
}

// persistingSource saves refreshed tokens back to the store so the next
// process start does not need a fresh consent.
type persistingSource struct {
	mu    sync.Mutex
	src   oauth2.TokenSource
	store TokenStore
	last  string
}

// PersistingTokenSource wraps src so every refreshed token is written
// back to store.
func PersistingTokenSource(src oauth2.TokenSource, store TokenStore, current *oauth2.Token) oauth2.TokenSource {
	ps := &persistingSource{src: src, store: store}
	if current != nil {
		ps.last = current.AccessToken
	}
	return ps
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := p.store.SetToken(tok); err != nil {
			return nil, err
		}
	}
	return tok, nil
}
