// Package storage provides the snapshot store backends for the session
// registry: a local file for small deployments and Postgres for anything
// that needs real durability.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the registry snapshot as a single JSON file. Writes
// go through a temp file plus rename so a crash mid-write never leaves a
// truncated snapshot behind.
type FileStore struct {
	path string
}

// NewFileStore creates the store and its parent directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: empty snapshot path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create snapshot dir: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Load reads the snapshot; (nil, nil) when none exists yet.
func (f *FileStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read snapshot: %w", err)
	}
	return data, nil
}

// Save atomically replaces the snapshot file.
func (f *FileStore) Save(_ context.Context, data []byte) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("storage: replace snapshot: %w", err)
	}
	return nil
}
