package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileCache implements the Cache interface using filesystem storage
type FileCache struct {
	dir string
	ttl time.Duration
}

// NewFileCache creates a new file-based cache in the specified subdirectory
// of ~/.slideshare_cache. If subdir is empty, the base directory is used.
func NewFileCache(subdir string) (*FileCache, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Join(home, ".slideshare_cache")
	if subdir != "" {
		baseDir = filepath.Join(baseDir, subdir)
	}

	return NewFileCacheAt(baseDir, DefaultTTL)
}

// NewFileCacheAt creates a file cache rooted at dir with the given default TTL.
func NewFileCacheAt(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttl: effectiveTTL(ttl, DefaultTTL)}, nil
}

// Dir returns the directory entries are stored in.
func (fc *FileCache) Dir() string {
	return fc.dir
}

// Read implements Reader interface
func (fc *FileCache) Read(_ context.Context, key string) (*Entry, bool) {
	data, err := os.ReadFile(fc.path(key))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Expired(time.Now()) {
		return nil, false
	}

	return &entry, true
}

// Write implements Writer interface
func (fc *FileCache) Write(_ context.Context, key string, entry *Entry, ttl time.Duration) error {
	path := fc.path(key)
	entry.stamp(time.Now(), effectiveTTL(ttl, fc.ttl))

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	// Write to temporary file first, then rename (atomic operation)
	tmpPath := path + ".tmp." + uuid.NewString()
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// path generates the full filesystem path for a cache key
func (fc *FileCache) path(key string) string {
	return filepath.Join(fc.dir, sanitizeKey(key)+".json")
}

var _ Cache = (*FileCache)(nil)
