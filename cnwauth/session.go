package cnwauth

import (
	"path/filepath"
	"sync"

	"github.com/CloudNativeWorks/cnw-device-auth/cnwauth/configstore"
	"github.com/rs/zerolog"
)

const (
	authFileName  = "auth.json"
	authKeyField  = "key"
	authNameField = "name"
)

// SessionStore holds the locally persisted record that a credential was
// accepted: the license key itself and the display name the server returned
// for it. The record lives in auth.json inside the application config
// directory; absence of the file means logged out.
//
// All methods are safe for concurrent use. File-system errors are logged and
// absorbed: the store degrades to "not logged in" rather than failing its
// caller.
type SessionStore struct {
	log   zerolog.Logger
	store *configstore.FileStore

	mu          sync.RWMutex
	credential  string
	displayName string
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithSessionLogger sets the logger used for persistence diagnostics.
func WithSessionLogger(log zerolog.Logger) SessionOption {
	return func(s *SessionStore) {
		s.log = log
	}
}

// NewSessionStore creates a store persisting to auth.json under dir.
func NewSessionStore(dir string, opts ...SessionOption) *SessionStore {
	s := &SessionStore{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.store = configstore.NewFileStore(filepath.Join(dir, authFileName), configstore.WithLogger(s.log))
	return s
}

// Load reads the persisted session into memory. Call it once at process
// start. A missing or malformed file yields a logged-out store, not an error.
func (s *SessionStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Load()

	cred, ok := s.store.Get(authKeyField)
	if !ok || cred == "" {
		s.credential = ""
		s.displayName = ""
		return
	}
	s.credential = cred
	s.displayName, _ = s.store.Get(authNameField)
}

// IsLoggedIn reports whether a credential is currently held.
func (s *SessionStore) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != ""
}

// Credential returns the stored license key, or "" when logged out.
func (s *SessionStore) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// DisplayName returns the display name the server associated with the
// credential, or "" when none was returned.
func (s *SessionStore) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayName
}

// save overwrites the session. It is package-private: sessions are only ever
// created by the login flow.
func (s *SessionStore) save(credential, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credential = credential
	s.displayName = displayName
	if err := s.store.SetAll(map[string]string{
		authKeyField:  credential,
		authNameField: displayName,
	}); err != nil {
		s.log.Error().Err(err).Msg("persist session")
	}
}

// Clear removes the persisted file and resets the in-memory session. Safe to
// call when already logged out.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credential = ""
	s.displayName = ""
	if err := s.store.Delete(); err != nil {
		s.log.Error().Err(err).Msg("delete session file")
	}
}

// UpdateDisplayName rewrites the session with a new display name, preserving
// the credential. A no-op when logged out or when the name is unchanged.
func (s *SessionStore) UpdateDisplayName(displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.credential == "" || displayName == s.displayName {
		return
	}
	s.displayName = displayName
	if err := s.store.SetAll(map[string]string{
		authKeyField:  s.credential,
		authNameField: displayName,
	}); err != nil {
		s.log.Error().Err(err).Msg("persist display name")
	}
}

// Persist rewrites the session file from the in-memory state. Used by the
// scheduler's periodic config-persistence task to heal a deleted or
// tampered file. A no-op when logged out.
func (s *SessionStore) Persist() {
	s.mu.RLock()
	cred, name := s.credential, s.displayName
	s.mu.RUnlock()

	if cred == "" {
		return
	}
	if err := s.store.SetAll(map[string]string{
		authKeyField:  cred,
		authNameField: name,
	}); err != nil {
		s.log.Error().Err(err).Msg("persist session")
	}
}
