package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"relief-go/internal/relief"
)

// FileSystemBackend stores each collection as a JSON file:
//
//	<root>/
//	  community_households.json
//	  community_people.json
//	  ...
//
// Writes go through a temp file and a rename, so a reader never sees a
// half-written collection.
type FileSystemBackend struct {
	root string
}

// NewFileSystemBackend creates a backend rooted at the given directory,
// creating it if needed.
func NewFileSystemBackend(root string) (*FileSystemBackend, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileSystemBackend{root: root}, nil
}

func (b *FileSystemBackend) path(key string) string {
	return filepath.Join(b.root, key+".json")
}

func (b *FileSystemBackend) Get(key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, true, nil
}

// Put replaces the collection file using atomic write (temp file + rename).
func (b *FileSystemBackend) Put(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	// Create temp file in the same directory to ensure atomic rename works
	tmpFile, err := os.CreateTemp(b.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, b.path(key)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func (b *FileSystemBackend) Keys() ([]string, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, fmt.Errorf("listing store directory: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		if ValidateKey(key) == nil {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ValidateSetup verifies that the store directory is accessible.
func (b *FileSystemBackend) ValidateSetup() error {
	info, err := os.Stat(b.root)
	if err != nil {
		return fmt.Errorf("store directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store path is not a directory: %s", b.root)
	}
	return nil
}

// Close is a no-op; no file stays open between calls.
func (b *FileSystemBackend) Close() error {
	return nil
}

var _ relief.Backend = (*FileSystemBackend)(nil)
