package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// State is what survives between invocations. Credentials never go here.
type State struct {
	UserID    string `yaml:"userId,omitempty"`
	AccountID string `yaml:"accountId,omitempty"`
}

// FileStore persists State as YAML.
type FileStore struct {
	Path string
}

// Load reads the state file. A missing file yields an empty State.
func (f *FileStore) Load() (State, error) {
	var st State
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to read session file: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return st, nil
}

// Save writes the state file, removing it when the state is empty.
func (f *FileStore) Save(st State) error {
	if st == (State{}) {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
