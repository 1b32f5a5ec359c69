// Package cache implements the compile cache: a content-addressed
// directory where each entry's filename is the hash of the input source
// and optimization level, and the file content is the serialized hlxb
// binary. Eviction is out of scope — entries live until something else
// removes them from disk.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/logging"
	"github.com/cyber-boost/helix-sub000/internal/optimizer"
)

// Cache addresses a directory of serialized binaries by content hash.
type Cache struct {
	dir string
}

// New returns a Cache rooted at dir. The directory is not created until
// the first Put.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key derives the cache filename for source compiled at level: a hex
// sha256 of the source bytes followed by the level's numeric value, so
// the same source at two optimization levels never collides.
func Key(source []byte, level optimizer.Level) string {
	h := sha256.New()
	h.Write(source)
	fmt.Fprintf(h, ":%d", level)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached binary for key, or ok=false on a cache miss.
func (c *Cache) Get(key string) (data []byte, ok bool, err error) {
	path := filepath.Join(c.dir, key)
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.For(logging.CategoryCache).Debug("cache miss: %s", key)
			return nil, false, nil
		}
		return nil, false, herr.Wrap(herr.IoFailure, err, "cache: failed to read entry "+key)
	}
	logging.For(logging.CategoryCache).Debug("cache hit: %s (%d bytes)", key, len(data))
	return data, true, nil
}

// Put stores data under key, creating the cache directory if needed.
func (c *Cache) Put(key string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return herr.Wrap(herr.IoFailure, err, "cache: failed to create cache directory")
	}
	path := filepath.Join(c.dir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return herr.Wrap(herr.IoFailure, err, "cache: failed to write entry "+key)
	}
	logging.For(logging.CategoryCache).Debug("cache store: %s (%d bytes)", key, len(data))
	return nil
}

// Has reports whether key is present without reading its contents.
func (c *Cache) Has(key string) bool {
	_, err := os.Stat(filepath.Join(c.dir, key))
	return err == nil
}
