package red

import "dada/internal/symir"

// VarBounds answers what is known about a permission/type inference or
// generic variable while reducing it to red form. The infer package
// supplies the concrete implementation backed by its bound store; tests and
// standalone callers can supply a trivial one that reports "nothing known".
type VarBounds interface {
	// KnownChain returns the fully-resolved chain a Var/Infer permission
	// variable reduces to, if the bound store already pins it to exactly
	// one chain. ok is false while the variable is still open.
	KnownChain(v symir.VarID) (RedChain, bool)
}

// openVars is the trivial VarBounds used when no inference context is
// available: every variable is reported unresolved, so reduction falls back
// to representing it with a one-link Var chain.
type openVars struct{}

func (openVars) KnownChain(symir.VarID) (RedChain, bool) { return RedChain{}, false }

// OpenVars is the zero-information VarBounds: every variable reduces to an
// opaque Var link rather than being resolved further.
var OpenVars VarBounds = openVars{}

// Reduce converts a symbolic permission into its red form: a set of
// concrete chains. Grounded on to_red.rs's to_red_perm: Apply concatenates
// the left chains onto the right (dropping the left side when the right is
// already copy), Or unions the chain sets, My becomes the empty chain and
// Our the single-link [Our] chain, and Referenced/Mutable fan out one chain
// per place.
func Reduce(a *symir.Arena, c *Cache, bounds VarBounds, permID symir.PermID) PermID {
	chains := reducePerm(a, c, bounds, permID)
	return c.InternPerm(RedPerm{Chains: dedupChains(c, chains)})
}

func reducePerm(a *symir.Arena, c *Cache, bounds VarBounds, permID symir.PermID) []ChainID {
	p := a.Perm(permID)
	switch p.Kind {
	case symir.PermMy:
		return []ChainID{c.MyChain()}
	case symir.PermOur:
		return []ChainID{c.OurChain()}
	case symir.PermReferenced:
		out := make([]ChainID, 0, len(p.Places))
		for _, pl := range p.Places {
			out = append(out, c.InternChain(RedChain{Links: []RedLink{{Kind: LinkRef, Live: true, Place: pl}}}))
		}
		return out
	case symir.PermMutable:
		out := make([]ChainID, 0, len(p.Places))
		for _, pl := range p.Places {
			out = append(out, c.InternChain(RedChain{Links: []RedLink{{Kind: LinkMut, Live: true, Place: pl}}}))
		}
		return out
	case symir.PermApply:
		lhs := reducePerm(a, c, bounds, p.Lhs)
		rhs := reducePerm(a, c, bounds, p.Rhs)
		out := make([]ChainID, 0, len(lhs)*len(rhs))
		for _, l := range lhs {
			for _, r := range rhs {
				out = append(out, concatChains(c, l, r))
			}
		}
		return out
	case symir.PermOr:
		lhs := reducePerm(a, c, bounds, p.Lhs)
		rhs := reducePerm(a, c, bounds, p.Rhs)
		return append(append([]ChainID{}, lhs...), rhs...)
	case symir.PermVar, symir.PermInfer:
		if chain, ok := bounds.KnownChain(p.Var); ok {
			return []ChainID{c.InternChain(chain)}
		}
		return []ChainID{c.InternChain(RedChain{Links: []RedLink{{Kind: LinkVar, Var: p.Var, IsInfer: p.Kind == symir.PermInfer}}})}
	case symir.PermError:
		return []ChainID{c.InternChain(RedChain{Links: []RedLink{{Kind: LinkErr, Reported: true}}})}
	default:
		return []ChainID{c.MyChain()}
	}
}

// concatChains appends rhs onto lhs, unless rhs is already structurally
// copy — in which case the concatenation is just rhs, matching the
// "Ref/Our absorbs everything applied before it" composition rule.
func concatChains(c *Cache, lhs, rhs ChainID) ChainID {
	rchain := c.Chain(rhs)
	if rchain.IsCopy() {
		return rhs
	}
	lchain := c.Chain(lhs)
	links := make([]RedLink, 0, len(lchain.Links)+len(rchain.Links))
	links = append(links, lchain.Links...)
	links = append(links, rchain.Links...)
	return c.InternChain(RedChain{Links: links})
}

func dedupChains(c *Cache, chains []ChainID) []ChainID {
	seen := make(map[ChainID]bool, len(chains))
	out := make([]ChainID, 0, len(chains))
	for _, ch := range chains {
		if seen[ch] {
			continue
		}
		seen[ch] = true
		out = append(out, ch)
	}
	return out
}
