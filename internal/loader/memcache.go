package loader

import (
	"sync"

	"dada/internal/project"
)

// cached is one in-memory cache entry: the file content hash it was
// computed from, plus enough of that file's check result to skip redoing
// the work when the hash matches on a later run.
type cached struct {
	content  project.Digest
	sigCount int
	broken   bool
}

// ModuleCache is an in-memory cache of per-file check results keyed by
// path and content hash; CheckAll builds a new one for each run. Grounded on the teacher's internal/driver
// ModuleCache (an RWMutex-guarded map, Get/Put by path+hash).
type ModuleCache struct {
	mu   sync.RWMutex
	byPath map[string]cached
}

// NewModuleCache constructs an empty cache with a size hint.
func NewModuleCache(capHint int) *ModuleCache {
	return &ModuleCache{byPath: make(map[string]cached, capHint)}
}

// Get returns the cached result for path if its content hash still matches.
func (c *ModuleCache) Get(path string, content project.Digest) (sigCount int, broken bool, hit bool) {
	c.mu.RLock()
	rec, ok := c.byPath[path]
	c.mu.RUnlock()
	if !ok || rec.content != content {
		return 0, false, false
	}
	return rec.sigCount, rec.broken, true
}

// Put records a file's result under its current content hash.
func (c *ModuleCache) Put(path string, content project.Digest, sigCount int, broken bool) {
	c.mu.Lock()
	c.byPath[path] = cached{content: content, sigCount: sigCount, broken: broken}
	c.mu.Unlock()
}
