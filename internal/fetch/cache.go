// Copyright Ansvar Systems AB, 2026. All rights reserved.

package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// diskCache is a read-through byte cache keyed by request URL. A cache hit
// skips the network entirely, which makes reruns over a stable cache
// byte-idempotent.
type diskCache struct {
	dir string
}

func newDiskCache(dir string) (*diskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	return &diskCache{dir: dir}, nil
}

func (c *diskCache) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".bin")
}

// Get returns the cached bytes for url, or ok=false on a miss.
func (c *diskCache) Get(url string) ([]byte, bool) {
	data, err := os.ReadFile(c.path(url))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores data for url atomically: temp file first, rename on success,
// so a crashed run never leaves a truncated cache entry.
func (c *diskCache) Put(url string, data []byte) error {
	dest := c.path(url)

	tmp, err := os.CreateTemp(c.dir, ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing cache entry: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing cache entry: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming cache entry: %w", err)
	}
	return nil
}
