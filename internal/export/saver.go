package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	homedir "github.com/mitchellh/go-homedir"
)

// Saver persists an exported payload under a file name and reports where it went.
type Saver interface {
	Save(name string, data []byte) (string, error)
}

// FileSaver writes exports into a directory. Files are written to a temporary
// name first and renamed into place, so a failed export never leaves a
// truncated file behind.
type FileSaver struct {
	dir string
}

// NewFileSaver creates a saver for dir. A leading "~" is expanded.
func NewFileSaver(dir string) (*FileSaver, error) {
	if dir == "" {
		dir = "."
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand output directory %q: %w", dir, err)
	}
	return &FileSaver{dir: filepath.Clean(expanded)}, nil
}

// Dir returns the resolved output directory.
func (s *FileSaver) Dir() string { return s.dir }

func (s *FileSaver) Save(name string, data []byte) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid export file name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to set permissions on %s: %w", name, err)
	}

	dest := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, dest); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return dest, nil
}

// MemorySaver keeps exports in memory keyed by file name.
type MemorySaver struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemorySaver() *MemorySaver {
	return &MemorySaver{files: make(map[string][]byte)}
}

func (s *MemorySaver) Save(name string, data []byte) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid export file name %q", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), data...)
	return name, nil
}

// File returns a saved payload.
func (s *MemorySaver) File(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}
