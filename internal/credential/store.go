// Package credential reads the email provider API key from durable storage.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// APIKeyName is the key under which the provider API key is stored.
const APIKeyName = "resend_api_key"

// ErrNotFound is returned when a store has no value for a key.
var ErrNotFound = errors.New("credential not found")

// Store is a read-only view of a key-value credential store.
type Store interface {
	Get(key string) (string, error)
}

// APIKey returns the stored provider API key, or "" when none is stored.
func APIKey(s Store) (string, error) {
	v, err := s.Get(APIKeyName)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// Static is an in-memory store, typically filled from the environment.
type Static map[string]string

// Get implements Store. Empty values count as missing.
func (s Static) Get(key string) (string, error) {
	if v := s[key]; v != "" {
		return v, nil
	}
	return "", ErrNotFound
}

// Chain asks each store in turn and returns the first value found.
type Chain []Store

// Get implements Store.
func (c Chain) Get(key string) (string, error) {
	for _, s := range c {
		v, err := s.Get(key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		return v, nil
	}
	return "", ErrNotFound
}

// FileStore keeps credentials in a JSON object on disk.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path. The file does not
// need to exist until the first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is store.json in the user's configuration directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, "meetinvite", "store.json"), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Get implements Store.
func (s *FileStore) Get(key string) (string, error) {
	values, err := s.load()
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	v, ok := values[key]
	if !ok || v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key, creating the file if needed.
func (s *FileStore) Set(key, value string) error {
	values, err := s.load()
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		values = make(map[string]string)
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential store dir: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse credential store %s: %w", s.path, err)
	}
	return values, nil
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	const visible = 4
	if len(secret) <= visible {
		return "****"
	}
	return "****" + secret[len(secret)-visible:]
}
