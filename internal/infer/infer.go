// Package infer is the two-directional constraint store over type and
// permission inference variables: lower/upper chain bounds, a type-layout
// bound from each direction, and known-provably/known-not-provably sets per
// predicate. Every mutation is append-only; the only "retraction" is
// poisoning via Error, matching the monotonicity invariant the check driver
// relies on to guarantee termination.
//
// Grounded on the original implementation's check/predicates/var_infer.rs
// (require_infer_is / require_infer_isnt: check known-is, check known-isnt,
// else record and wake waiters) and check/env/combinator.rs for the waiter
// bookkeeping shape.
package infer

import (
	"dada/internal/predicate"
	"dada/internal/red"
	"dada/internal/symir"
)

// Direction distinguishes a bound inferred from below (something known to
// flow into the variable) from one inferred from above (something the
// variable is required to flow into).
type Direction uint8

const (
	FromBelow Direction = iota
	FromAbove
)

// Bound pairs a chain bound with the diagnostic to raise if that bound is
// later violated.
type Bound struct {
	Chain  red.ChainID
	OrElse OrElse
}

// OrElse carries the reason a bound or predicate requirement was imposed,
// surfaced as a diagnostic only if the requirement is later found to be
// contradicted.
type OrElse struct {
	Reason string
}

// RedTyBound records the known type-layout bound in one direction.
type RedTyBound struct {
	Set    bool
	RedTy  symir.TyID
	OrElse OrElse
}

// varData is the per-variable mutable state: bounds in both directions, the
// type-layout bound from each direction, and the known-is/known-isn't sets
// per predicate. Everything here only ever grows.
type varData struct {
	lowerBounds []Bound
	upperBounds []Bound

	redTyBound [2]RedTyBound

	knownIs    map[predicate.Predicate]OrElse
	knownIsNot map[predicate.Predicate]OrElse

	waiters []chan struct{}
}

func newVarData() *varData {
	return &varData{
		knownIs:    make(map[predicate.Predicate]OrElse),
		knownIsNot: make(map[predicate.Predicate]OrElse),
	}
}

// Store is the inference runtime for one function check: every variable's
// bounds, plus the waiter lists the check driver parks tasks on.
type Store struct {
	vars map[symir.VarID]*varData
}

// NewStore constructs an empty inference store, living for the duration of
// one check_function_signature or body check and dropped once the
// function's result is finalized.
func NewStore() *Store {
	return &Store{vars: make(map[symir.VarID]*varData)}
}

func (s *Store) data(v symir.VarID) *varData {
	d, ok := s.vars[v]
	if !ok {
		d = newVarData()
		s.vars[v] = d
	}
	return d
}

// Declared implements predicate.VarFacts by consulting the known-is set:
// a variable is declared to be pred once the store has recorded it, via
// either an explicit where-clause seed or a successful RequireIs.
func (s *Store) Declared(v symir.VarID, pred predicate.Predicate) bool {
	_, ok := s.data(v).knownIs[pred]
	return ok
}

// DeclaredNot reports whether the variable has been recorded as provably
// not satisfying pred.
func (s *Store) DeclaredNot(v symir.VarID, pred predicate.Predicate) (OrElse, bool) {
	oe, ok := s.data(v).knownIsNot[pred]
	return oe, ok
}

// RequireIs records that v must satisfy pred. If v is already known not to
// satisfy pred, it returns the conflicting OrElse so the caller can report
// the contradiction; otherwise it records the requirement (a no-op if
// already recorded) and wakes any waiters.
func (s *Store) RequireIs(v symir.VarID, pred predicate.Predicate, orElse OrElse) (conflict OrElse, ok bool) {
	d := s.data(v)
	if prior, isnt := d.knownIsNot[pred]; isnt {
		return prior, false
	}
	if _, already := d.knownIs[pred]; !already {
		d.knownIs[pred] = orElse
		s.wake(d)
	}
	return OrElse{}, true
}

// RequireIsNot is the dual of RequireIs.
func (s *Store) RequireIsNot(v symir.VarID, pred predicate.Predicate, orElse OrElse) (conflict OrElse, ok bool) {
	d := s.data(v)
	if prior, is := d.knownIs[pred]; is {
		return prior, false
	}
	if _, already := d.knownIsNot[pred]; !already {
		d.knownIsNot[pred] = orElse
		s.wake(d)
	}
	return OrElse{}, true
}

// InsertChainBound adds a new bound in the given direction. Returns false
// (no-op, no wake) if an identical bound is already present.
func (s *Store) InsertChainBound(v symir.VarID, chain red.ChainID, dir Direction, orElse OrElse) bool {
	d := s.data(v)
	bounds := &d.lowerBounds
	if dir == FromAbove {
		bounds = &d.upperBounds
	}
	for _, b := range *bounds {
		if b.Chain == chain {
			return false
		}
	}
	*bounds = append(*bounds, Bound{Chain: chain, OrElse: orElse})
	s.wake(d)
	return true
}

// LowerBounds returns the chains known to flow into v from below.
func (s *Store) LowerBounds(v symir.VarID) []Bound {
	return s.data(v).lowerBounds
}

// UpperBounds returns the chains v is required to flow into.
func (s *Store) UpperBounds(v symir.VarID) []Bound {
	return s.data(v).upperBounds
}

// RedTyBound reads the type-layout bound recorded in the given direction.
func (s *Store) RedTyBound(v symir.VarID, dir Direction) RedTyBound {
	return s.data(v).redTyBound[dirIndex(dir)]
}

// SetRedTyBound records the type-layout bound in the given direction if one
// is not already set, waking waiters. Returns false if already set (and
// thus a no-op), matching the append-only discipline.
func (s *Store) SetRedTyBound(v symir.VarID, dir Direction, ty symir.TyID, orElse OrElse) bool {
	d := s.data(v)
	idx := dirIndex(dir)
	if d.redTyBound[idx].Set {
		return false
	}
	d.redTyBound[idx] = RedTyBound{Set: true, RedTy: ty, OrElse: orElse}
	s.wake(d)
	return true
}

func dirIndex(dir Direction) int {
	if dir == FromAbove {
		return 1
	}
	return 0
}

// Watch returns a channel that is closed the next time v's data changes.
// The check driver's cooperative scheduler selects over these channels
// instead of blocking an OS thread.
func (s *Store) Watch(v symir.VarID) <-chan struct{} {
	d := s.data(v)
	ch := make(chan struct{})
	d.waiters = append(d.waiters, ch)
	return ch
}

func (s *Store) wake(d *varData) {
	for _, ch := range d.waiters {
		close(ch)
	}
	d.waiters = nil
}
