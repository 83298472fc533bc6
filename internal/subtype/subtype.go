// Package subtype implements sub_chains: structural subtyping of red-perm
// chains, and the RedPerm/type-level subtyping built on top of it.
//
// Grounded directly on the original implementation's
// check/subtype/chains.rs case table (reproduced in the doc comment on
// SubChains), with variable splicing against an infer.Store for the
// inference cases.
package subtype

import (
	"dada/internal/infer"
	"dada/internal/predicate"
	"dada/internal/red"
	"dada/internal/symir"
)

// Env bundles what subtyping needs to resolve variable cases: the arena
// for places, the red-form cache, and the inference store supplying known
// bounds and predicate facts.
type Env struct {
	Arena *symir.Arena
	Cache *red.Cache
	Infer *infer.Store
}

// SubChains decides lower ≤ upper for two concrete chains, per spec.md
// §4.3 (mirrored from check/subtype/chains.rs):
//
//	[]               ≤ C                                always
//	C (C≠[])         ≤ []                                iff C provably my
//	Our []           ≤ head1 tail1                        iff head1 tail1 is provably shared
//	(Our C0)         ≤ (Our C1)            (C0≠[])        iff C0 ≤ C1
//	Our C0           ≤ Ref|Mut|Var _       (C0≠[])        false
//	(Mut p0 C0)      ≤ (Mut p1 C1)                        iff p0 covers p1 && C0 ≤ C1
//	(Ref p0 C0)      ≤ (Ref p1 C1)                        iff p0 covers p1 && C0 ≤ C1
//	(Ref p0 C0)      ≤ (Our C1...)                        iff (Mut p0 C0) ≤ C1...
//	X C0             ≤ X C1            (same variable)    iff C0 ≤ C1
//	X []             ≤ Our []                             iff X declared Shared and Owned
//	?V c0            ≤ anything                           splices ?V's bounds (see spliceLowerInfer)
//	anything         ≤ ?V c1                               splices ?V's bounds (see spliceUpperInfer)
//	Err C0           ≤ anything                           always (the error is already reported)
//	everything else                                       false
//
// "covers" is SymPlace.Covers: p0 covers p1 when p0 is a prefix of p1, so
// mut[z] ≤ mut[z.f] holds and mut[z.f] ≤ mut[z] does not.
//
// The Our case is split on the lower tail's emptiness because the two rows
// overlap only there: `Our` alone (an empty tail) compares against the
// *entire* upper chain via the copy predicate regardless of its head, while
// `Our` followed by more links only ever compares against another `Our`
// chain, recursing on the tails.
func SubChains(env Env, lower, upper red.RedChain) bool {
	if len(lower.Links) == 0 {
		return true
	}
	if len(upper.Links) == 0 {
		return predicate.ChainIsProvably(env.Infer, lower, predicate.Owned) &&
			predicate.ChainIsProvably(env.Infer, lower, predicate.Unique)
	}

	lowerHead, lowerTail := lower.Links[0], red.RedChain{Links: lower.Links[1:]}
	upperHead, upperTail := upper.Links[0], red.RedChain{Links: upper.Links[1:]}

	// Inference-variable splicing takes priority over every other case,
	// matching the original's match-arm ordering: whichever side holds an
	// open variable is resolved by consulting its recorded bounds rather
	// than by structural comparison of that side's own shape.
	if lowerHead.Kind == red.LinkVar && lowerHead.IsInfer {
		return spliceLowerInfer(env, lowerHead.Var, lowerTail, upperHead, upperTail)
	}
	if upperHead.Kind == red.LinkVar && upperHead.IsInfer {
		return spliceUpperInfer(env, lowerHead, lowerTail, upperHead.Var, upperTail)
	}

	switch lowerHead.Kind {
	case red.LinkOur:
		if len(lowerTail.Links) == 0 {
			return predicate.ChainIsProvably(env.Infer, upper, predicate.Shared)
		}
		if upperHead.Kind != red.LinkOur {
			return false
		}
		return SubChains(env, lowerTail, upperTail)
	case red.LinkMut:
		if upperHead.Kind != red.LinkMut {
			return false
		}
		return env.Arena.Place(lowerHead.Place).Covers(env.Arena.Place(upperHead.Place)) &&
			SubChains(env, lowerTail, upperTail)
	case red.LinkRef:
		switch upperHead.Kind {
		case red.LinkRef:
			return env.Arena.Place(lowerHead.Place).Covers(env.Arena.Place(upperHead.Place)) &&
				SubChains(env, lowerTail, upperTail)
		case red.LinkOur:
			// (Ref p0 C0) ≤ (Our C1...) iff (Mut p0 C0) ≤ C1...
			asMut := red.RedChain{Links: append([]red.RedLink{{Kind: red.LinkMut, Live: lowerHead.Live, Place: lowerHead.Place}}, lowerTail.Links...)}
			return SubChains(env, asMut, upperTail)
		default:
			return false
		}
	case red.LinkVar:
		if upperHead.Kind == red.LinkVar && !upperHead.IsInfer && upperHead.Var == lowerHead.Var {
			return SubChains(env, lowerTail, upperTail)
		}
		if upperHead.Kind == red.LinkOur && len(lowerTail.Links) == 0 && len(upperTail.Links) == 0 {
			return env.Infer.Declared(lowerHead.Var, predicate.Shared) &&
				env.Infer.Declared(lowerHead.Var, predicate.Owned)
		}
		return false
	case red.LinkErr:
		// An error chain poisons the comparison but does not itself
		// constitute a fresh error: callers already have a Reported.
		return true
	default:
		return false
	}
}

// headTailChain rebuilds a chain from a head link and the RedChain holding
// the links after it.
func headTailChain(head red.RedLink, tail red.RedChain) red.RedChain {
	links := make([]red.RedLink, 0, len(tail.Links)+1)
	links = append(links, head)
	links = append(links, tail.Links...)
	return red.RedChain{Links: links}
}

// appendTail returns base's links followed by tail's.
func appendTail(base red.RedChain, tail red.RedChain) red.RedChain {
	links := make([]red.RedLink, 0, len(base.Links)+len(tail.Links))
	links = append(links, base.Links...)
	links = append(links, tail.Links...)
	return red.RedChain{Links: links}
}

// spliceLowerInfer handles `?v lowerTail ≤ upperHead upperTail` where the
// lower chain starts with an open inference variable: per spec.md §4.3's
// closing paragraph, the obligation is decided by splicing each of ?v's
// already-recorded lower bounds in its place and recursing. If nothing is
// recorded yet and the variable stands alone (lowerTail empty), the upper
// chain is instead adopted as a new upper bound — mirroring
// require_upper_chain's "don't need to check consistency now" note, since a
// lower bound arriving later will re-derive this comparison against it.
func spliceLowerInfer(env Env, v symir.VarID, lowerTail red.RedChain, upperHead red.RedLink, upperTail red.RedChain) bool {
	upper := headTailChain(upperHead, upperTail)
	bounds := env.Infer.LowerBounds(v)
	if len(bounds) == 0 {
		if len(lowerTail.Links) != 0 {
			return false
		}
		env.Infer.InsertChainBound(v, env.Cache.InternChain(upper), infer.FromAbove, infer.OrElse{Reason: "chain subtyping"})
		return true
	}
	for _, b := range bounds {
		spliced := appendTail(env.Cache.Chain(b.Chain), lowerTail)
		if SubChains(env, spliced, upper) {
			return true
		}
	}
	return false
}

// spliceUpperInfer is spliceLowerInfer's dual: `lowerHead lowerTail ≤ ?v
// upperTail` splices each of ?v's recorded upper bounds in its place, or (if
// none yet and ?v stands alone) records the lower chain as a new lower
// bound on ?v.
func spliceUpperInfer(env Env, lowerHead red.RedLink, lowerTail red.RedChain, v symir.VarID, upperTail red.RedChain) bool {
	lower := headTailChain(lowerHead, lowerTail)
	bounds := env.Infer.UpperBounds(v)
	if len(bounds) == 0 {
		if len(upperTail.Links) != 0 {
			return false
		}
		env.Infer.InsertChainBound(v, env.Cache.InternChain(lower), infer.FromBelow, infer.OrElse{Reason: "chain subtyping"})
		return true
	}
	for _, b := range bounds {
		spliced := appendTail(env.Cache.Chain(b.Chain), upperTail)
		if SubChains(env, lower, spliced) {
			return true
		}
	}
	return false
}

// SubPerm decides lower ≤ upper between two red permissions: every lower
// chain must find some upper chain it is a sub-chain of.
func SubPerm(env Env, lowerID, upperID red.PermID) bool {
	lower := env.Cache.Perm(lowerID)
	upper := env.Cache.Perm(upperID)
	for _, lc := range lower.Chains {
		found := false
		for _, uc := range upper.Chains {
			if SubChains(env, env.Cache.Chain(lc), env.Cache.Chain(uc)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
