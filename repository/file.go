package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileRepository stores snapshots as an indented JSON file.
type FileRepository struct {
	path string
}

// NewFile creates a FileRepository writing to path.
func NewFile(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Load(ctx context.Context) (*SaveData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("repository: read %s: %w", r.path, err)
	}
	var data SaveData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("repository: parse %s: %w", r.path, err)
	}
	return &data, nil
}

// Save writes to a temp file and renames it over the old save.
func (r *FileRepository) Save(ctx context.Context, data *SaveData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := data.validate(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("repository: mkdir %s: %w", dir, err)
		}
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("repository: write %s: %w", tmp, err)
	}
	return os.Rename(tmp, r.path)
}

func (r *FileRepository) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
