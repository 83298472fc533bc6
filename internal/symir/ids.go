package symir

import "dada/internal/arena"

// TyID is a stable handle to a hash-consed SymTy.
type TyID = arena.ID

// NoTyID is the reserved invalid type handle.
const NoTyID = arena.NoID

// PermID is a stable handle to a hash-consed SymPerm.
type PermID = arena.ID

// NoPermID is the reserved invalid permission handle.
const NoPermID = arena.NoID

// PlaceID is a stable handle to a hash-consed SymPlace.
type PlaceID = arena.ID

// NoPlaceID is the reserved invalid place handle.
const NoPlaceID = arena.NoID

// SigID is a handle into the signature store. Unlike Ty/Perm/Place, two
// structurally identical signatures still get distinct IDs (one per
// declaration site), so signatures live in an arena.Store rather than a
// Table.
type SigID = arena.ID

// NoSigID is the reserved invalid signature handle.
const NoSigID = arena.NoID

// VarID names a generic (bound) variable or an inference variable, scoped to
// the arena that allocated it.
type VarID uint32

// NoVarID marks the absence of a variable reference.
const NoVarID VarID = 0
