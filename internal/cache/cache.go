// Package cache stores solver sample sets on disk so repeated runs of the
// same model and solver configuration skip the solver call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/spboyer/knapsack/internal/models"
)

// fileExt is the extension of every cache entry.
const fileExt = ".json.zst"

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// Cache provides caching for sample sets
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory. An empty
// dir disables caching.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key generates the cache key for sampling model with a solver.
// The key is based on:
// - the encoded model (variables, objective, constraints)
// - the engine name
// - the engine params
func Key(model *models.Model, engine string, params map[string]any) (string, error) {
	h := sha256.New()

	modelJSON, err := json.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("marshaling model: %w", err)
	}
	if _, err := h.Write(modelJSON); err != nil {
		return "", err
	}
	if err := writeString(h, engine); err != nil {
		return "", err
	}

	// json.Marshal sorts map keys, so equal params hash equally
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshaling params: %w", err)
	}
	if _, err := h.Write(paramsJSON); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Cacheable reports whether results from engine should be cached. Replayed
// sample sets are already on disk.
func Cacheable(engine string) bool {
	return engine != "replay"
}

// Get retrieves a cached sample set if it exists
func (c *Cache) Get(key string) (*models.SampleSet, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	compressed, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		// Cache miss
		return nil, false
	}

	data, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false
	}

	var set models.SampleSet
	if err := json.Unmarshal(data, &set); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &set, true
}

// Put stores a sample set in the cache
func (c *Cache) Put(key string, set *models.SampleSet) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshaling sample set: %w", err)
	}

	if err := os.WriteFile(c.cachePath(key), encoder.EncodeAll(data, nil), 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached results
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Safety check: verify this is a knapsack cache directory before removing
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if !strings.HasSuffix(entry.Name(), fileExt) {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+fileExt)
}

func writeString(w io.Writer, s string) error {
	// Write string with null byte delimiter to prevent hash collisions
	_, err := w.Write([]byte(s + "\x00"))
	return err
}
