// Package cartcache persists the current remote cart reference in a
// single durable slot scoped to one profile, the way the storefront kept
// it in localStorage under a fixed key. The value has no expiry; it is
// presumed valid until a fetch against it reports the cart gone.
package cartcache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileCache stores the reference in one file. An unset path models a
// context with no durable storage: Get always reports absent and Set is
// a no-op, so server-side paths never assume a cart exists.
type FileCache struct {
	path string
}

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Get returns the stored cart reference, or "" when none is stored.
func (c *FileCache) Get() string {
	if c.path == "" {
		return ""
	}
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// Set stores ref, or clears the slot when ref is empty.
func (c *FileCache) Set(ref string) error {
	if c.path == "" {
		return nil
	}
	if ref == "" {
		err := os.Remove(c.path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, []byte(ref+"\n"), 0o644)
}
