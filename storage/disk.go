package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DiskStorage writes files below BasePath and serves them from BaseURL.
type DiskStorage struct {
	// BasePath is a directory writable by the current process
	BasePath  string
	BaseURL   string
	dirs      map[string]bool
	dirsMutex sync.Mutex
}

func NewDiskStorage(basePath, baseURL string) *DiskStorage {
	return &DiskStorage{
		BasePath: basePath,
		BaseURL:  baseURL,
		dirs:     make(map[string]bool, 4),
	}
}

func (s *DiskStorage) createDir(dir string) error {
	s.dirsMutex.Lock()
	defer s.dirsMutex.Unlock()

	if ok := s.dirs[dir]; ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	s.dirs[dir] = true
	return nil
}

// FullPath maps a content path to its location on disk.
func (s *DiskStorage) FullPath(path string) string {
	return filepath.Join(s.BasePath, filepath.FromSlash(path))
}

func (s *DiskStorage) Save(_ context.Context, path string, data []byte, _ string) error {
	fileName := s.FullPath(path)
	if err := s.createDir(filepath.Dir(fileName)); err != nil {
		return err
	}
	return os.WriteFile(fileName, data, 0o644)
}

func (s *DiskStorage) Delete(_ context.Context, path string) error {
	err := os.Remove(s.FullPath(path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *DiskStorage) URL(path string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
