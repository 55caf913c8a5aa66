package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type fileStorage struct {
	dir string
	mu  sync.Mutex
}

// NewFileStorage stores each key as one JSON file under dir, created if
// missing.
func NewFileStorage(dir string) (Storage, error) {

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}

	return &fileStorage{dir: dir}, nil
}

func (f *fileStorage) path(key string) string {
	// keys may carry a namespace separator, e.g. "persist:root"
	name := strings.ReplaceAll(key, ":", "_") + ".json"

	return filepath.Join(f.dir, name)
}

func (f *fileStorage) Get(_ context.Context, key string, value any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {

		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal stored data for key %s: %w", key, err)
	}

	return true, nil
}

func (f *fileStorage) Set(_ context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	path := f.path(key)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit key %s: %w", key, err)
	}

	return nil
}

func (f *fileStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}

	return nil
}

func (f *fileStorage) Close() error {
	return nil
}
