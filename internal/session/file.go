package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// FileBackend persists state as a JSON file. Writes go through a temp file
// and rename so a crash mid-write never leaves a torn state file.
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend storing state at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load reads the state file.
func (b *FileBackend) Load() (State, bool, error) {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, false, nil
		}
		return State{}, false, err
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt state file behaves like a fresh install.
		return State{}, false, nil
	}
	return state, true, nil
}

// Save writes the state file atomically.
func (b *FileBackend) Save(state State) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, ".portal-state-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), b.path)
}

// Clear removes the state file.
func (b *FileBackend) Clear() error {
	err := os.Remove(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
