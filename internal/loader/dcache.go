package loader

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"dada/internal/project"
)

// diskCacheSchemaVersion guards DiskPayload's on-disk layout; bump when the
// struct shape changes so stale entries are treated as a miss instead of
// decoded into the wrong fields.
const diskCacheSchemaVersion uint16 = 1

// DiskCache persists a file's check result keyed by content hash, so a
// later run of an unchanged file skips parsing and lowering entirely.
// Grounded on the teacher's internal/driver/dcache.go (content-addressed
// msgpack blobs under an XDG cache dir, atomic write via temp-file +
// rename).
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the on-disk record for one file's check result.
type DiskPayload struct {
	Schema   uint16
	Path     string
	Content  project.Digest
	SigCount int
	Broken   bool
}

// OpenDiskCache opens (creating if needed) the standard on-disk cache
// directory for app, honoring XDG_CACHE_HOME like the teacher's driver.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "files", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and atomically writes a payload.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

// Get reads and deserializes a payload, reporting (false, nil) on a clean
// cache miss.
func (c *DiskCache) Get(key project.Digest) (*DiskPayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload DiskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	return &payload, true, nil
}
