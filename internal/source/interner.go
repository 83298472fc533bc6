package source

import (
	"slices"
	"sync"
)

type StringID uint32

const NoStringID StringID = 0

type Interner struct {
	mu    sync.RWMutex
	byID  []string            // index -> string (byID[0] == "" for NoStringID)
	index map[string]StringID // string -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},               // NoStringID maps to the empty string
		index: map[string]StringID{"": 0}, // keep the mapping explicit
	}
}

// Intern inserts a string and returns its ID.
// If the string is already present, its existing ID is returned.
// Thread-safe.
func (i *Interner) Intern(s string) StringID {
	// Fast path: check for an existing entry under a read lock.
	i.mu.RLock()
	if id, ok := i.index[s]; ok {
		i.mu.RUnlock()
		return id
	}
	i.mu.RUnlock()

	// Take our own copy so we don't retain the caller's backing array.
	cpy := string([]byte(s))

	i.mu.Lock()
	// Double-check: another goroutine may have inserted the string between
	// the RUnlock above and this Lock.
	if id, ok := i.index[cpy]; ok {
		i.mu.Unlock()
		return id
	}
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	i.mu.Unlock()
	return id
}

// InternBytes interns the byte slice as a string and returns its ID.
func (i *Interner) InternBytes(b []byte) StringID {
	return i.Intern(string(b))
}

// Lookup returns the string for an ID.
// Returns ("", false) if the ID is not valid. Thread-safe.
func (i *Interner) Lookup(id StringID) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup returns the string for an ID, panicking if the ID is invalid.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

// Has reports whether the ID is valid. Thread-safe.
func (i *Interner) Has(id StringID) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return int(id) >= 0 && int(id) < len(i.byID)
}

// Len returns the number of interned strings, including the NoStringID
// sentinel (so it is never less than 1). Thread-safe.
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}

// Snapshot returns a copy of all interned strings. Thread-safe.
func (i *Interner) Snapshot() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.byID)
}
