// Package storage persists the bot's tables as plain files under the data
// directory so admins can inspect and edit them between reload cycles.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound is returned when a requested entry does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrExists is returned when an entry is already present.
	ErrExists = errors.New("storage: already exists")
)

// loadJSON reads path into v. A missing or corrupt file leaves v untouched
// and is not an error: the store starts empty.
func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("Ignoring corrupt data file", "path", path, "error", err)
	}
	return nil
}

// saveJSON writes v to path atomically: marshal to a sibling temp file,
// then rename over the target so a crash never leaves a torn file.
func saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
