package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fantiadl/pkg/errors"
)

// Manager writes downloaded images below {root}/{fan_club_id}
type Manager struct {
	baseDir string

	mu    sync.Mutex
	saved int
	bytes int64
}

// NewManager creates a storage manager for one fan club. Directories are
// created lazily on the first save.
func NewManager(root, fanClubID string) (*Manager, error) {
	if root == "" {
		return nil, errors.New(errors.ErrorTypeStorage, "download root is empty")
	}
	if err := validName("fan club id", fanClubID); err != nil {
		return nil, err
	}

	return &Manager{
		baseDir: filepath.Join(root, fanClubID),
	}, nil
}

// PostDir returns the directory holding a post's images
func (m *Manager) PostDir(postDir string) string {
	return filepath.Join(m.baseDir, postDir)
}

// Save writes the content of r to {postDir}/{filename}, creating the
// directory if needed. An existing file of the same name is replaced.
// It returns the destination path and the number of bytes written.
func (m *Manager) Save(postDir, filename string, r io.Reader) (string, int64, error) {
	if err := validName("post directory", postDir); err != nil {
		return "", 0, err
	}
	if err := validName("file name", filename); err != nil {
		return "", 0, err
	}

	dir := m.PostDir(postDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, errors.Wrap(errors.ErrorTypeStorage, err, "failed to create post directory")
	}

	target := filepath.Join(dir, filename)

	// Create temporary file first
	out, err := os.CreateTemp(dir, "."+filename+".*.tmp")
	if err != nil {
		return "", 0, errors.Wrap(errors.ErrorTypeStorage, err, "failed to create temporary file")
	}
	tempFile := out.Name()

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", 0, errors.Wrap(errors.ErrorTypeStorage, err, "failed to write image data")
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", 0, errors.Wrap(errors.ErrorTypeStorage, closeErr, "failed to close file")
	}
	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return "", 0, errors.Wrap(errors.ErrorTypeStorage, err, "failed to set file mode")
	}

	// Atomic rename, replacing any previous download
	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return "", 0, errors.Wrap(errors.ErrorTypeStorage, err, "failed to rename temporary file")
	}

	m.mu.Lock()
	m.saved++
	m.bytes += written
	m.mu.Unlock()

	return target, written, nil
}

// GetOutputDir returns the fan club directory
func (m *Manager) GetOutputDir() string {
	return m.baseDir
}

// GetSavedCount returns the number of files written by this manager
func (m *Manager) GetSavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved
}

// GetSavedBytes returns the total size of files written by this manager
func (m *Manager) GetSavedBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bytes
}

// validName rejects empty names and names that would escape their parent
func validName(kind, name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.New(errors.ErrorTypeStorage, fmt.Sprintf("invalid %s %q", kind, name))
	}
	return nil
}
