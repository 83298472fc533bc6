// Package arena provides the generic hash-consing primitive shared by every
// interning table in the compiler: identifiers, symbolic types, permissions,
// places, red chains, and signatures all go through a Table[K, V] instance.
//
// Grounded on the teacher's internal/types/interner.go: a struct-hash key
// maps to a stable slot in an append-only slice, slot 0 is reserved as the
// invalid sentinel, and widening the slice index into an ID goes through
// safecast.Conv so overflow panics loudly instead of silently wrapping.
// Generalized here with Go generics so every domain package (symir, red)
// gets the same dedup mechanism without hand-writing it per value type.
package arena

import (
	"fmt"

	"fortio.org/safecast"
)

// ID is a stable, dense handle into an interning table. The zero value,
// NoID, is reserved and never returned by Intern.
type ID uint32

// NoID is the reserved sentinel occupying slot 0 of every table.
const NoID ID = 0

// Table hash-conses values of type V keyed by a comparable descriptor K.
// Structurally equal keys always resolve to the same ID.
type Table[K comparable, V any] struct {
	byID  []V
	index map[K]ID
}

// NewTable constructs an empty table with slot 0 reserved.
func NewTable[K comparable, V any]() *Table[K, V] {
	var zero V
	return &Table[K, V]{
		byID:  []V{zero},
		index: make(map[K]ID),
	}
}

// Intern returns the stable ID for key, inserting value if key has not been
// seen before. Interning never fails.
func (t *Table[K, V]) Intern(key K, value V) ID {
	if id, ok := t.index[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(t.byID))
	if err != nil {
		panic(fmt.Errorf("arena: table overflow: %w", err))
	}
	id := ID(n)
	t.byID = append(t.byID, value)
	t.index[key] = id
	return id
}

// Lookup returns the value stored for id.
func (t *Table[K, V]) Lookup(id ID) (V, bool) {
	var zero V
	if id == NoID || int(id) >= len(t.byID) {
		return zero, false
	}
	return t.byID[id], true
}

// MustLookup panics if id is not a valid handle into this table.
func (t *Table[K, V]) MustLookup(id ID) V {
	v, ok := t.Lookup(id)
	if !ok {
		panic("arena: invalid table ID")
	}
	return v
}

// Len reports the number of entries, including the slot-0 sentinel (so it
// is never less than 1).
func (t *Table[K, V]) Len() int {
	return len(t.byID)
}

// Store is an append-only, non-deduplicating sibling of Table: useful for
// per-declaration records (function signatures) where two structurally
// identical declarations must still receive distinct IDs.
type Store[V any] struct {
	byID []V
}

// NewStore constructs an empty store with slot 0 reserved.
func NewStore[V any]() *Store[V] {
	var zero V
	return &Store[V]{byID: []V{zero}}
}

// Add appends value and returns its freshly allocated ID.
func (s *Store[V]) Add(value V) ID {
	n, err := safecast.Conv[uint32](len(s.byID))
	if err != nil {
		panic(fmt.Errorf("arena: store overflow: %w", err))
	}
	s.byID = append(s.byID, value)
	return ID(n)
}

// Lookup returns the value stored for id.
func (s *Store[V]) Lookup(id ID) (V, bool) {
	var zero V
	if id == NoID || int(id) >= len(s.byID) {
		return zero, false
	}
	return s.byID[id], true
}

// MustLookup panics if id is not a valid handle into this store.
func (s *Store[V]) MustLookup(id ID) V {
	v, ok := s.Lookup(id)
	if !ok {
		panic("arena: invalid store ID")
	}
	return v
}

// Len reports the number of entries, including the slot-0 sentinel.
func (s *Store[V]) Len() int {
	return len(s.byID)
}
