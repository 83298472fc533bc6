package check

import (
	"context"
	"fmt"

	"dada/internal/infer"
	"dada/internal/predicate"
	"dada/internal/red"
	"dada/internal/subtype"
	"dada/internal/symir"
)

// Driver owns the shared, immutably-borrowed database (the symir arena and
// red cache) plus the one mutable piece of state tasks are allowed to
// touch: the inference store. One Driver is created per function check and
// dropped once its result is finalized, matching spec.md §3's "Ownership &
// lifecycle" note.
type Driver struct {
	Arena *symir.Arena
	Red   *red.Cache
	Infer *infer.Store
}

// NewDriver constructs a driver for checking a single function body or
// signature.
func NewDriver(arena *symir.Arena, cache *red.Cache) *Driver {
	return &Driver{Arena: arena, Red: cache, Infer: infer.NewStore()}
}

func (d *Driver) subtypeEnv() subtype.Env {
	return subtype.Env{Arena: d.Arena, Cache: d.Red, Infer: d.Infer}
}

// varBounds adapts the driver's (store, cache) pair into red.VarBounds,
// letting red.Reduce resolve a Var/Infer permission variable to its pinned
// chain once the inference store's lower/upper bounds agree on exactly one
// — the "bound store pins it" case RequireConverge settles into.
type varBounds struct {
	infer *infer.Store
	cache *red.Cache
}

func (b varBounds) KnownChain(v symir.VarID) (red.RedChain, bool) {
	lower := b.infer.LowerBounds(v)
	upper := b.infer.UpperBounds(v)
	switch {
	case len(lower) == 1 && len(upper) == 0:
		return b.cache.Chain(lower[0].Chain), true
	case len(upper) == 1 && len(lower) == 0:
		return b.cache.Chain(upper[0].Chain), true
	case len(lower) == 1 && len(upper) == 1 && lower[0].Chain == upper[0].Chain:
		return b.cache.Chain(lower[0].Chain), true
	default:
		return red.RedChain{}, false
	}
}

func (d *Driver) varBounds() red.VarBounds {
	return varBounds{infer: d.Infer, cache: d.Red}
}

// RequireSubPerm requires lowerPerm ≤ upperPerm, reducing both to red form
// first. It reports orElse if the relation does not hold.
func (d *Driver) RequireSubPerm(ctx context.Context, lowerPerm, upperPerm symir.PermID, orElse OrElse) error {
	lowerRed := red.Reduce(d.Arena, d.Red, d.varBounds(), lowerPerm)
	upperRed := red.Reduce(d.Arena, d.Red, d.varBounds(), upperPerm)
	return Require(ctx, func(context.Context) (bool, error) {
		return subtype.SubPerm(d.subtypeEnv(), lowerRed, upperRed), nil
	}, orElse)
}

// RequireIsProvably requires that permID provably satisfies pred over its
// reduced chains, reporting orElse otherwise.
func (d *Driver) RequireIsProvably(ctx context.Context, permID symir.PermID, pred predicate.Predicate, orElse OrElse) error {
	permRed := red.Reduce(d.Arena, d.Red, d.varBounds(), permID)
	return Require(ctx, func(context.Context) (bool, error) {
		return predicate.PermIsProvably(d.Infer, d.Red, permRed, pred), nil
	}, orElse)
}

// CheckWhereClauses validates a signature's where-clauses against its own
// generic scope: each clause asserts a predicate of a declared variable, so
// checking it here just seeds the inference store's known-is set (a
// where-clause is definitionally true within the function body).
func (d *Driver) CheckWhereClauses(sig symir.SymFunctionSignature) {
	for _, w := range sig.Where {
		pred := wherePredicateToPredicate(w.Predicate)
		d.Infer.RequireIs(w.Var, pred, infer.OrElse{Reason: fmt.Sprintf("where-clause on variable %d", w.Var)})
	}
}

// toInferOrElse adapts a check-level OrElse (consulted only when a proof
// obligation fails) into the infer store's OrElse record (attached to a
// bound at the moment it is recorded, so a later conflicting bound can
// explain itself). Calling o() here is side-effect free — OrElse closures
// only ever build a Reported message — so reusing the caller's reason text
// this way never double-reports anything.
func toInferOrElse(o OrElse) infer.OrElse {
	return infer.OrElse{Reason: o().Reason}
}

func wherePredicateToPredicate(w symir.WherePredicate) predicate.Predicate {
	switch w {
	case symir.WhereIsShared:
		return predicate.Shared
	case symir.WhereIsUnique:
		return predicate.Unique
	case symir.WhereIsOwned:
		return predicate.Owned
	case symir.WhereIsLent:
		return predicate.Lent
	default:
		return predicate.Shared
	}
}

// CheckCall requires each argument's type to be a subtype of the
// corresponding parameter's declared type, checking the arguments
// concurrently with RequireForAll. A mismatch returns orElse() as an error,
// so when several arguments mismatch only the first reported error is
// returned.
func (d *Driver) CheckCall(ctx context.Context, argTys, paramTys []symir.TyID, orElse OrElse) (bool, error) {
	n := len(argTys)
	if len(paramTys) < n {
		n = len(paramTys)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return RequireForAll(ctx, idx, func(ctx context.Context, i int) (bool, error) {
		ok := d.tySubtype(argTys[i], paramTys[i])
		if !ok {
			return false, orElse()
		}
		return true, nil
	})
}

// CheckShare validates a `.share` field access on permID, producing the our
// permission it converts to. Per spec.md §2's sharing rule, `.share` is
// valid either when the value is already our (a no-op copy, scenario 1's
// "both x and y end our String, same heap pointer") or when it is uniquely
// owned (my), the only other shape share can convert — modeled as Either so
// both possibilities are explored concurrently instead of picking one with
// an ad hoc priority order.
func (d *Driver) CheckShare(ctx context.Context, permID symir.PermID, orElse OrElse) (symir.PermID, error) {
	permRed := red.Reduce(d.Arena, d.Red, d.varBounds(), permID)
	alreadyOur := func(context.Context) (bool, error) {
		return predicate.PermIsProvably(d.Infer, d.Red, permRed, predicate.Shared) &&
			predicate.PermIsProvably(d.Infer, d.Red, permRed, predicate.Owned), nil
	}
	uniquelyOwned := func(context.Context) (bool, error) {
		return predicate.PermIsProvably(d.Infer, d.Red, permRed, predicate.Owned) &&
			predicate.PermIsProvably(d.Infer, d.Red, permRed, predicate.Unique), nil
	}
	ok, err := Either(ctx, alreadyOur, uniquelyOwned)
	if err != nil {
		return symir.NoPermID, err
	}
	if !ok {
		return symir.NoPermID, orElse()
	}
	return d.Arena.Our(), nil
}

// RequireAssignable checks `target = value`: the value's type must be a
// subtype of the target's declared type, and (per spec.md §2's mutation
// rule) the target place's permission must be provably Unique — shared
// state can't be assigned through. The two obligations are independent, so
// they run as one RequireBoth rather than two sequential checks.
func (d *Driver) RequireAssignable(ctx context.Context, valueTy, targetTy symir.TyID, targetPerm symir.PermID, orElse OrElse) error {
	return Require(ctx, func(ctx context.Context) (bool, error) {
		return RequireBoth(ctx,
			func(context.Context) (bool, error) {
				return d.tySubtype(valueTy, targetTy), nil
			},
			func(ctx context.Context) (bool, error) {
				err := d.RequireIsProvably(ctx, targetPerm, predicate.Unique, orElse)
				if err == nil {
					return true, nil
				}
				if _, reported := err.(Reported); reported {
					return false, nil
				}
				return false, err
			},
		)
	}, orElse)
}

// RequireAnyBranchIsProvably requires that at least one of permID's reduced
// chains provably satisfies pred. This matters for a permission built from a
// PermOr (for example, two aliasing paths joined by a conditional before
// full inference convergence has settled them into one): the permission as
// a whole need not be uniformly pred for this weaker existential question
// to still be meaningful.
func (d *Driver) RequireAnyBranchIsProvably(ctx context.Context, permID symir.PermID, pred predicate.Predicate, orElse OrElse) error {
	permRed := red.Reduce(d.Arena, d.Red, d.varBounds(), permID)
	chains := d.Red.Perm(permRed).Chains
	return Require(ctx, func(ctx context.Context) (bool, error) {
		return Exists(ctx, chains, func(_ context.Context, chainID red.ChainID) (bool, error) {
			return predicate.ChainIsProvably(d.Infer, d.Red.Chain(chainID), pred), nil
		})
	}, orElse)
}

// CheckStructLit requires every field initializer's type to be a subtype of
// the corresponding declared field type, short-circuiting as soon as one
// field mismatches rather than collecting every result (ForAll's
// fail-fast semantics, unlike CheckCall's RequireForAll).
func (d *Driver) CheckStructLit(ctx context.Context, fieldTys, declaredTys []symir.TyID, orElse OrElse) (bool, error) {
	n := len(fieldTys)
	if len(declaredTys) < n {
		n = len(declaredTys)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return ForAll(ctx, idx, func(_ context.Context, i int) (bool, error) {
		return d.tySubtype(fieldTys[i], declaredTys[i]), nil
	})
}

// RequireConverge checks that every branch permission in branchPerms fits
// under a fresh result variable v (spec.md §4.3's closing paragraph: each
// comparison splices its chain into v's bound set rather than deciding the
// question outright), then blocks until v's permission bound settles via
// Watch/RequireForAllChainBounds — the "future never comes" idiom for an
// inference variable whose value depends on a sibling task's still-pending
// work. baseTy records the branches' common type-layout bound, independent
// of the permission side, through the RedTyBound direction store. Grounded
// on spec.md §8 scenario 6: an if/else with my String / our String arms
// converges to our String ([Our]).
func (d *Driver) RequireConverge(ctx context.Context, v symir.VarID, baseTy symir.TyID, branchPerms []symir.PermID, orElse OrElse) (red.ChainID, error) {
	infOrElse := toInferOrElse(orElse)
	d.Infer.SetRedTyBound(v, infer.FromBelow, baseTy, infOrElse)

	resultPermID := d.Arena.InternPerm(symir.SymPerm{Kind: symir.PermInfer, Var: v})
	resultRed := red.Reduce(d.Arena, d.Red, d.varBounds(), resultPermID)

	type branch struct {
		idx  int
		perm symir.PermID
	}
	branches := make([]branch, len(branchPerms))
	for i, p := range branchPerms {
		branches[i] = branch{idx: i, perm: p}
	}
	alt := Root()
	children := alt.SpawnChildren(len(branches))

	ok, err := RequireForAll(ctx, branches, func(ctx context.Context, b branch) (bool, error) {
		child := children[b.idx]
		check := func(context.Context) (bool, error) {
			lowerRed := red.Reduce(d.Arena, d.Red, d.varBounds(), b.perm)
			return subtype.SubPerm(d.subtypeEnv(), lowerRed, resultRed), nil
		}
		task := IfRequired(child, check, check)
		ok, err := task(ctx)
		child.Retire()
		return ok, err
	})
	if err != nil {
		return red.NoChainID, err
	}
	if !ok {
		return red.NoChainID, orElse()
	}

	watch := d.Infer.Watch(v)
	settled := red.NoChainID
	pollErr := RequireForAllChainBounds(ctx, watch, func() (bool, error) {
		bounds := d.Infer.LowerBounds(v)
		if len(bounds) == 0 {
			return false, nil
		}
		settled = bounds[len(bounds)-1].Chain
		return true, nil
	})
	if pollErr != nil {
		return red.NoChainID, pollErr
	}
	if settled == red.NoChainID {
		return red.NoChainID, orElse()
	}

	settledChain := d.Red.Chain(settled)
	if predicate.ChainIsProvably(d.Infer, settledChain, predicate.Shared) {
		d.Infer.RequireIs(v, predicate.Shared, infOrElse)
		d.Infer.RequireIsNot(v, predicate.Lent, infOrElse)
	} else {
		if _, isnt := d.Infer.DeclaredNot(v, predicate.Shared); !isnt {
			d.Infer.RequireIsNot(v, predicate.Shared, infOrElse)
		}
	}
	return settled, nil
}

// tySubtype is a structural approximation of SymTy subtyping sufficient for
// the checker's call-site argument matching: named heads must match
// exactly (modulo recursing into generic args and the outer permission),
// Never is bottom, Error is absorbing.
func (d *Driver) tySubtype(lowerID, upperID symir.TyID) bool {
	lower := d.Arena.Ty(lowerID)
	upper := d.Arena.Ty(upperID)
	if lower.Kind == symir.TyNever {
		return true
	}
	if lower.Kind == symir.TyError || upper.Kind == symir.TyError {
		return true
	}
	if lower.Kind == symir.TyPerm && upper.Kind == symir.TyPerm {
		if !subtype.SubPerm(d.subtypeEnv(),
			red.Reduce(d.Arena, d.Red, d.varBounds(), lower.Perm),
			red.Reduce(d.Arena, d.Red, d.varBounds(), upper.Perm)) {
			return false
		}
		return d.tySubtype(lower.Base, upper.Base)
	}
	if lower.Kind == symir.TyPerm {
		return d.tySubtype(lower.Base, upperID)
	}
	if upper.Kind == symir.TyPerm {
		return d.tySubtype(lowerID, upper.Base)
	}
	if lower.Kind != upper.Kind {
		return false
	}
	if lower.Kind == symir.TyNamed {
		if lower.Head.Kind != upper.Head.Kind || lower.Head.Name != upper.Head.Name || lower.Head.Bits != upper.Head.Bits {
			return false
		}
		if len(lower.Args) != len(upper.Args) {
			return false
		}
		for i := range lower.Args {
			if !d.tySubtype(lower.Args[i], upper.Args[i]) {
				return false
			}
		}
		return true
	}
	return lower.Var == upper.Var
}
