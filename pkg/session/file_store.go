package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// StoreName is the single named store the session persists under.
const StoreName = "auth-storage.json"

// FileStore keeps session state as one JSON file under a root directory.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) path() string {
	return filepath.Join(s.root, StoreName)
}

func (s *FileStore) Load() (*State, error) {
	body, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read session store: %w", err)
	}

	var state State
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("failed to parse session store: %w", err)
	}

	return &state, nil
}

func (s *FileStore) Save(state *State) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create session store directory: %w", err)
	}

	body, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	if err := os.WriteFile(s.path(), body, 0o600); err != nil {
		return fmt.Errorf("failed to write session store: %w", err)
	}

	return nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear session store: %w", err)
	}

	return nil
}
