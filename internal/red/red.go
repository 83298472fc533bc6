// Package red implements the reduced ("red") canonical form of a permission:
// a set of chains, each an ordered sequence of links. Red form is produced
// after inference settles and is what subtyping and predicate evaluation
// ultimately operate on.
//
// Grounded on the original Rust implementation's check/red.rs and
// check/to_red.rs (RedPerm/RedChain/RedLink, reduction of a SymPerm into
// chains), reusing the teacher's Place/covered-by model via symir.SymPlace,
// and hash-consed through the same internal/arena primitive symir uses.
package red

import (
	"dada/internal/arena"
	"dada/internal/symir"
)

// LinkKind discriminates the RedLink variants.
type LinkKind uint8

const (
	LinkOur LinkKind = iota
	LinkRef
	LinkMut
	LinkVar
	LinkErr
)

// RedLink is one step of a reduced permission chain.
type RedLink struct {
	Kind LinkKind

	// LinkRef / LinkMut
	Live  bool
	Place symir.PlaceID

	// LinkVar
	Var     symir.VarID
	IsInfer bool // true for an inference variable, false for a declared generic

	// LinkErr
	Reported bool
}

// ChainID is a stable handle to a hash-consed RedChain.
type ChainID = arena.ID

// NoChainID is the reserved invalid chain handle.
const NoChainID = arena.NoID

// RedChain is an ordered sequence of links describing how some data was
// reached, root to leaf. The empty chain denotes my (owned, unique).
type RedChain struct {
	Links []RedLink
}

// IsEmpty reports whether the chain is the empty (my) chain.
func (c RedChain) IsEmpty() bool {
	return len(c.Links) == 0
}

// IsCopy reports whether the chain's own shape (ignoring variable
// declarations) marks it as copy: it begins with Our or Ref. This is a
// structural shortcut; full provability also consults declared variable
// bounds (see predicate.ChainIsProvably with predicate.Shared).
func (c RedChain) IsCopy() bool {
	if len(c.Links) == 0 {
		return false
	}
	switch c.Links[0].Kind {
	case LinkOur, LinkRef:
		return true
	default:
		return false
	}
}

// IsMove reports whether the chain begins with Mut, the structural
// shortcut for move (unique) chains.
func (c RedChain) IsMove() bool {
	if len(c.Links) == 0 {
		return false
	}
	return c.Links[0].Kind == LinkMut
}

// PermID is a stable handle to a hash-consed RedPerm.
type PermID = arena.ID

// NoPermID is the reserved invalid red-permission handle.
const NoPermID = arena.NoID

// RedPerm is a set of chains: the reduced form of a SymPerm once inference
// has resolved every variable it could resolve.
type RedPerm struct {
	Chains []ChainID
}

func linkKey(l RedLink) string {
	b := make([]byte, 0, 8)
	b = append(b, byte(l.Kind))
	switch l.Kind {
	case LinkRef, LinkMut:
		if l.Live {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
		b = append(b, byte(l.Place), byte(l.Place>>8), byte(l.Place>>16), byte(l.Place>>24))
	case LinkVar:
		b = append(b, byte(l.Var), byte(l.Var>>8), byte(l.Var>>16), byte(l.Var>>24))
		if l.IsInfer {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
	case LinkErr:
		if l.Reported {
			b = append(b, 1)
		}
	}
	return string(b)
}

func chainKey(c RedChain) string {
	b := make([]byte, 0, 8*len(c.Links))
	for _, l := range c.Links {
		k := linkKey(l)
		b = append(b, byte(len(k)))
		b = append(b, k...)
	}
	return string(b)
}

func permKey(p RedPerm) string {
	b := make([]byte, 0, 4*len(p.Chains))
	for _, c := range p.Chains {
		b = append(b, byte(c), byte(c>>8), byte(c>>16), byte(c>>24))
	}
	return string(b)
}

// Cache hash-conses RedChain and RedPerm values for one compilation.
// Grounded on the teacher's per-category interner.Table pattern, reused
// here through internal/arena.
type Cache struct {
	chains *arena.Table[string, RedChain]
	perms  *arena.Table[string, RedPerm]
}

// NewCache constructs an empty red-form cache.
func NewCache() *Cache {
	return &Cache{
		chains: arena.NewTable[string, RedChain](),
		perms:  arena.NewTable[string, RedPerm](),
	}
}

// InternChain hash-conses a RedChain.
func (c *Cache) InternChain(chain RedChain) ChainID {
	return c.chains.Intern(chainKey(chain), chain)
}

// Chain resolves a chain handle back to its value.
func (c *Cache) Chain(id ChainID) RedChain {
	return c.chains.MustLookup(id)
}

// InternPerm hash-conses a RedPerm.
func (c *Cache) InternPerm(perm RedPerm) PermID {
	return c.perms.Intern(permKey(perm), perm)
}

// Perm resolves a red-permission handle back to its value.
func (c *Cache) Perm(id PermID) RedPerm {
	return c.perms.MustLookup(id)
}

// MyChain interns and returns the empty (owned) chain.
func (c *Cache) MyChain() ChainID {
	return c.InternChain(RedChain{})
}

// OurChain interns and returns the single-link [Our] chain.
func (c *Cache) OurChain() ChainID {
	return c.InternChain(RedChain{Links: []RedLink{{Kind: LinkOur}}})
}

// Fallback interns and returns the fallback red permission for an
// unconstrained inference variable: the singleton set containing just the
// empty (my) chain.
func (c *Cache) Fallback() PermID {
	return c.InternPerm(RedPerm{Chains: []ChainID{c.MyChain()}})
}
