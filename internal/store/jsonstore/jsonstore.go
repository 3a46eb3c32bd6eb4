package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JSON-backed key-value storage. One human-readable file per key, owner-only.
// No locking; writes replace the whole file.

const fileExt = ".json"

type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir is ~/.campusfinder.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".campusfinder"), nil
}

func (s *Store) Dir() string { return s.dir }

// Path is the file backing key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// Key maps a file path back to its key; ok is false for foreign files.
func (s *Store) Key(path string) (key string, ok bool) {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(s.dir) {
		return "", false
	}
	base := filepath.Base(path)
	if !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	return strings.TrimSuffix(base, fileExt), true
}

// Get returns the raw JSON stored under key. A missing key is not an error.
func (s *Store) Get(key string) (json.RawMessage, bool, error) {
	b, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !json.Valid(b) {
		return nil, true, fmt.Errorf("read %s: malformed json", key)
	}
	return b, true, nil
}

// Load decodes the value under key into v.
func (s *Store) Load(key string, v any) (bool, error) {
	raw, found, err := s.Get(key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("json unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Set(key string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// Write then rename, so watchers never read a half-written file.
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(key)); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	if err := os.Remove(s.Path(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
