// Package imagecache stores downloaded artwork on disk with a JSON index.
// Entries expire after a fixed number of days and are pruned when the cache
// is opened or an expired key is read.
package imagecache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Nomadcxx/jellyfix/internal/transfer"
)

const indexFile = "index.json"

// DefaultExpiry is used when Open is given a non-positive day count.
const DefaultExpiry = 30 * 24 * time.Hour

type entry struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Size      int       `json:"size"`
	Ext       string    `json:"ext"`
}

// Cache is safe for concurrent use.
type Cache struct {
	dir    string
	expiry time.Duration
	now    func() time.Time

	mu    sync.Mutex
	index map[string]entry
}

// Open loads (or creates) the cache rooted at dir.
func Open(dir string, expiryDays int) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	expiry := time.Duration(expiryDays) * 24 * time.Hour
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	c := &Cache{dir: dir, expiry: expiry, now: time.Now, index: map[string]entry{}}

	data, err := os.ReadFile(filepath.Join(dir, indexFile))
	if err == nil {
		// corrupted index starts fresh
		if jsonErr := json.Unmarshal(data, &c.index); jsonErr != nil {
			c.index = map[string]entry{}
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read cache index: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pruneLocked() {
		if err := c.saveLocked(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Get returns the cached file for key when present and fresh.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.index[key]
	if !ok {
		return "", false
	}
	if _, err := os.Stat(e.Path); err != nil || c.expired(e) {
		c.removeLocked(key)
		_ = c.saveLocked()
		return "", false
	}
	return e.Path, true
}

// Save stores data under key with the given extension ("jpg", ".png").
func (c *Cache) Save(key string, data []byte, ext string) (string, error) {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "dat"
	}
	sum := sha256.Sum256([]byte(key))
	path := filepath.Join(c.dir, hex.EncodeToString(sum[:16])+"."+ext)

	if err := transfer.WriteFileAtomic(path, data, 0644); err != nil {
		return "", fmt.Errorf("write cache file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.index[key] = entry{Path: path, Timestamp: c.now(), Size: len(data), Ext: ext}
	if err := c.saveLocked(); err != nil {
		return "", err
	}
	return path, nil
}

// Clear removes every cached file and empties the index.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.index {
		c.removeLocked(key)
	}
	return c.saveLocked()
}

// Len returns the number of indexed entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *Cache) expired(e entry) bool {
	return c.now().Sub(e.Timestamp) > c.expiry
}

func (c *Cache) pruneLocked() bool {
	changed := false
	for key, e := range c.index {
		if c.expired(e) {
			c.removeLocked(key)
			changed = true
		}
	}
	return changed
}

func (c *Cache) removeLocked(key string) {
	if e, ok := c.index[key]; ok {
		_ = os.Remove(e.Path)
		delete(c.index, key)
	}
}

func (c *Cache) saveLocked() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache index: %w", err)
	}
	return transfer.WriteFileAtomic(filepath.Join(c.dir, indexFile), data, 0644)
}
