package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/brizzai/image-feed/internal/auth/constants"
	"gopkg.in/yaml.v3"
)

// TokenStorage persists the single bearer token slot
type TokenStorage interface {
	Token() (string, bool)
	SetToken(token string) error
	Clear() error
}

// FileTokenStorage keeps the token in a YAML file readable only by the user
type FileTokenStorage struct {
	mu    sync.RWMutex
	path  string
	token string
}

// NewFileTokenStorage loads the token file at path; a missing file means no token
func NewFileTokenStorage(path string) (*FileTokenStorage, error) {
	s := &FileTokenStorage{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}

	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	s.token = values[constants.TokenStorageKey]
	return s, nil
}

func (s *FileTokenStorage) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *FileTokenStorage) SetToken(token string) error {
	if token == "" {
		return s.Clear()
	}

	data, err := yaml.Marshal(map[string]string{constants.TokenStorageKey: token})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	s.token = token
	return nil
}

func (s *FileTokenStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// MemoryTokenStorage keeps the token for the lifetime of the process
type MemoryTokenStorage struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStorage(token string) *MemoryTokenStorage {
	return &MemoryTokenStorage{token: token}
}

func (s *MemoryTokenStorage) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryTokenStorage) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStorage) Clear() error {
	return s.SetToken("")
}
