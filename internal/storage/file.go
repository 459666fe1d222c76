package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON document per slot in a directory. Writes go to a
// temporary file first and are renamed into place.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// DefaultDataDir returns the application data directory, using XDG_DATA_HOME
// or falling back to ~/.local/share.
func DefaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "taskpilot"), nil
}

func (s *FileStore) path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}

// Write replaces the slot's document. The data lands in a temp file in the
// same directory and is renamed over the target, so readers never observe a
// partial document.
func (s *FileStore) Write(slot string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, slot+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(slot))
}

// Read returns the slot's document, or ErrNotFound if it was never written.
func (s *FileStore) Read(slot string) ([]byte, error) {
	data, err := os.ReadFile(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *FileStore) Close() error { return nil }
