package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/desertthunder/marquee/internal/models"
)

// FileSlot keeps a single identity record as <dir>/<name>.json.
//
// Writes go to a temporary file that is synced and renamed over the record.
type FileSlot struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileSlot creates a [FileSlot] on fsys. Pass [afero.NewOsFs] in production.
func NewFileSlot(fsys afero.Fs, dir, name string) *FileSlot {
	return &FileSlot{fs: fsys, path: filepath.Join(dir, name+".json")}
}

// Path returns the location of the record.
func (s *FileSlot) Path() string {
	return s.path
}

// Load reads the record. found is false when the file does not exist.
func (s *FileSlot) Load(_ context.Context) (models.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Identity{}, false, nil
	}
	if err != nil {
		return models.Identity{}, false, fmt.Errorf("read identity file: %w", err)
	}

	var identity models.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return models.Identity{}, false, fmt.Errorf("corrupt identity file %s: %w", s.path, err)
	}
	return identity, true, nil
}

// Save writes identity, replacing any previous record.
func (s *FileSlot) Save(_ context.Context, identity models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}

	tmp := s.path + ".tmp"
	file, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create identity temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(identity); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("encode identity: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync identity: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close identity temp file: %w", err)
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace identity file: %w", err)
	}
	return nil
}

// Clear removes the record. A missing file is not an error.
func (s *FileSlot) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove identity file: %w", err)
	}
	return nil
}
