package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileEntries is the on-disk layout: the token pair plus the locale
// preference under fixed keys. No other state is persisted.
type fileEntries struct {
	TokenPair
	Locale string `json:"locale,omitempty"`
}

// FileStore persists credentials to a JSON file. Writes go through a
// temporary file and rename so a crash never leaves a torn pair on disk.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed credential store at path. The parent
// directory is created if missing. The file itself is created lazily on the
// first write with 0600 permissions.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("credstore: file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("credstore: create directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Pair(_ context.Context) (TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.read()
	if err != nil {
		return TokenPair{}, err
	}
	return entries.TokenPair, nil
}

func (s *FileStore) SetPair(_ context.Context, pair TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.read()
	if err != nil {
		return err
	}
	entries.TokenPair = pair
	return s.write(entries)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.read()
	if err != nil {
		return err
	}
	entries.TokenPair = TokenPair{}
	return s.write(entries)
}

func (s *FileStore) Locale(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.read()
	if err != nil {
		return "", err
	}
	return entries.Locale, nil
}

func (s *FileStore) SetLocale(_ context.Context, locale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.read()
	if err != nil {
		return err
	}
	entries.Locale = locale
	return s.write(entries)
}

func (s *FileStore) read() (fileEntries, error) {
	var entries fileEntries
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return entries, fmt.Errorf("credstore: read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt file behaves like an empty store; the next write repairs it.
		return fileEntries{}, nil
	}
	return entries, nil
}

func (s *FileStore) write(entries fileEntries) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: marshal entries: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("credstore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("credstore: rename %s: %w", tmp, err)
	}
	return nil
}
