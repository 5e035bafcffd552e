// Package artifacts keeps rendered job artifacts on the local filesystem.
package artifacts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ownership/internal/domain"
)

// ErrOutsideStore is returned when a stored path does not live under the store directory.
var ErrOutsideStore = errors.New("artifact path outside store")

type Store struct {
	dir string
}

// New returns a store rooted at dir, creating it if missing.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("artifact dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{dir: abs}, nil
}

func (s *Store) Dir() string { return s.dir }

// Write renders one artifact for a job and returns its final path. Readers
// never observe a partially written file.
func (s *Store) Write(jobID uuid.UUID, kind domain.ArtifactKind, render func(io.Writer) error) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: artifact kind %q", domain.ErrInvalidInput, kind)
	}
	final := filepath.Join(s.dir, kind.FileName(jobID))

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+string(kind)+"-*")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := render(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("publish artifact: %w", err)
	}
	return final, nil
}

// Open opens a previously written artifact for reading.
func (s *Store) Open(path string) (*os.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(s.dir, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, ErrOutsideStore
	}
	f, err := os.Open(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	return f, err
}
