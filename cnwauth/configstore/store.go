// Package configstore persists small key-value maps as JSON files in the
// application configuration directory.
package configstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// FileStore holds a flat map of string keys to string values, backed by a
// single JSON file. Writes go through a temp file and rename so readers never
// observe a partially written file.
type FileStore struct {
	path string
	log  zerolog.Logger

	mu     sync.Mutex
	values map[string]string
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets the logger used for load diagnostics. Default is a no-op
// logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *FileStore) {
		s.log = log
	}
}

// NewFileStore creates a store backed by the given file path. The file is not
// touched until Load or a write operation is called.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path:   path,
		log:    zerolog.Nop(),
		values: map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the backing file into memory. A missing or malformed file is not
// an error: the store simply starts empty.
func (s *FileStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = map[string]string{}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("read config store")
		}
		return
	}

	var values map[string]string
	if err := json.Unmarshal(raw, &values); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("config store malformed, starting empty")
		return
	}
	s.values = values
}

// Get returns the value for key and whether it was present.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	return v, ok
}

// Set stores a single value and flushes the file.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.flush()
}

// SetAll replaces the whole map and flushes the file.
func (s *FileStore) SetAll(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]string, len(values))
	for k, v := range values {
		s.values[k] = v
	}
	return s.flush()
}

// Flush rewrites the backing file from the in-memory map.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flush()
}

// Delete removes the backing file and clears the in-memory map. Deleting an
// absent file is not an error.
func (s *FileStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = map[string]string{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}

// flush writes the map atomically. Caller must hold s.mu.
func (s *FileStore) flush() error {
	raw, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
