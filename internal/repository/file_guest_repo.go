package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
)

// fileStore persists the collection as a pretty-printed JSON array.
// The file is read on every operation so edits made while the server
// runs are picked up; writes go through a temp file and a rename.
type fileStore struct {
	path string
}

// NewFileGuestRepo creates a GuestRepository backed by a JSON file
func NewFileGuestRepo(path string) GuestRepository {
	return newSnapshotGuestRepo(&fileStore{path: path})
}

func (s *fileStore) load(_ context.Context) ([]model.Guest, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Guest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return []model.Guest{}, nil
	}

	var guests []model.Guest
	if err := json.Unmarshal(data, &guests); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return guests, nil
}

func (s *fileStore) save(_ context.Context, guests []model.Guest) error {
	data, err := json.MarshalIndent(guests, "", "  ")
	if err != nil {
		return fmt.Errorf("encode guests: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".guests-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
