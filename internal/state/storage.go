package state

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SnapshotStorage defines the interface for loading and saving a session.
// This allows for mocking the storage layer during tests.
type SnapshotStorage interface {
	// Load returns the stored snapshot, or nil when nothing has been saved.
	Load() (*Snapshot, error)
	// Save overwrites the stored snapshot.
	Save(snap Snapshot) error
	// Clear removes the stored snapshot.
	Clear() error
}

// JSONFileStorage is an implementation of SnapshotStorage that uses a JSON file.
type JSONFileStorage struct {
	path string
}

// DefaultStoragePath returns ~/.config/yaniv/game.json.
func DefaultStoragePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "yaniv", "game.json"), nil
}

// NewJSONFileStorage creates a storage backed by the file at path. An empty
// path selects DefaultStoragePath.
func NewJSONFileStorage(path string) (*JSONFileStorage, error) {
	if path == "" {
		p, err := DefaultStoragePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &JSONFileStorage{path: path}, nil
}

// Path returns the backing file.
func (jfs *JSONFileStorage) Path() string {
	return jfs.path
}

// Load reads and decodes the snapshot file.
func (jfs *JSONFileStorage) Load() (*Snapshot, error) {
	file, err := os.Open(jfs.path)
	// If the file doesn't exist, nothing was saved yet.
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error opening game file %s for reading: %w", jfs.path, err)
	}
	defer file.Close()

	var snap Snapshot
	if err := json.NewDecoder(bufio.NewReader(file)).Decode(&snap); err != nil {
		// An empty file is treated like a missing one.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("error decoding game file %s: %w", jfs.path, err)
	}
	return &snap, nil
}

// Save encodes and writes the snapshot, replacing the file atomically.
func (jfs *JSONFileStorage) Save(snap Snapshot) error {
	dir := filepath.Dir(jfs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating game directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".game-*.json")
	if err != nil {
		return fmt.Errorf("error opening game file for writing: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := bufio.NewWriter(tmp)
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		tmp.Close()
		return fmt.Errorf("error encoding game snapshot: %w", err)
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing game snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing game snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), jfs.path)
}

// Clear deletes the snapshot file if it exists.
func (jfs *JSONFileStorage) Clear() error {
	if err := os.Remove(jfs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error removing game file %s: %w", jfs.path, err)
	}
	return nil
}
