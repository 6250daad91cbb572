// Package storage is the binary-attachment collaborator. The engine only
// records attachment metadata; bytes go through a FileStore.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type FileStore interface {
	// Save writes the content and returns the storage path to record in
	// attachment metadata.
	Save(fileName string, content io.Reader) (string, error)
	Delete(path string) error
	Open(path string) (io.ReadCloser, error)
}

// DiskStore keeps uploads in a local directory, one file per attachment,
// prefixed with a UUID so colliding client names never overwrite.
type DiskStore struct {
	dir string
}

var _ FileStore = (*DiskStore)(nil)

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(fileName string, content io.Reader) (string, error) {
	name := uuid.New().String() + "_" + sanitize(fileName)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return name, nil
}

func (s *DiskStore) Delete(path string) error {
	err := os.Remove(filepath.Join(s.dir, path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *DiskStore) Open(path string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.dir, path))
}

// sanitize strips path separators from a client-supplied file name.
func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.ReplaceAll(name, string(os.PathSeparator), "_")
}
