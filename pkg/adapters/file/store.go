package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/workpad/pkg/domain"
)

const ext = ".json"

// Store implements ports.WorkpadStore using the local filesystem.
// Each workpad is an indented JSON document at <BasePath>/<id>.json.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".workpad/workpads".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".workpad", "workpads")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id string) (string, error) {
	if id == "" {
		return "", errors.New("workpad id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid workpad id %q", id)
	}
	return filepath.Join(s.BasePath, id+ext), nil
}

// Save persists the workpad to a JSON file atomically.
// It writes to a temporary file first, syncs it, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, wp *domain.Workpad) error {
	destPath, err := s.path(wp.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure workpad directory: %w", err)
	}

	data, err := json.MarshalIndent(wp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workpad: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "."+wp.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing workpad file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// Load retrieves the workpad from its JSON file.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workpad, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrWorkpadNotFound
		}
		return nil, fmt.Errorf("failed to read workpad file: %w", err)
	}

	var wp domain.Workpad
	if err := json.Unmarshal(data, &wp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workpad %s: %w", id, err)
	}
	return &wp, nil
}

// Delete removes the workpad file.
func (s *Store) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete workpad file: %w", err)
	}
	return nil
}

// List returns the IDs of all workpad files in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list workpads: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		if id, ok := idFromName(entry.Name()); ok && !entry.IsDir() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// idFromName maps a file name to a workpad ID, skipping temp and foreign files.
func idFromName(name string) (string, bool) {
	if filepath.Ext(name) != ext || strings.HasPrefix(name, ".") {
		return "", false
	}
	return strings.TrimSuffix(name, ext), true
}
