package subtype

import (
	"testing"

	"dada/internal/infer"
	"dada/internal/red"
	"dada/internal/source"
	"dada/internal/symir"
)

func newEnv() (Env, *symir.Arena, *red.Cache) {
	a := symir.NewArena()
	c := red.NewCache()
	return Env{Arena: a, Cache: c, Infer: infer.NewStore()}, a, c
}

func TestSubChainsReflexivity(t *testing.T) {
	env, _, c := newEnv()
	our := c.Chain(c.OurChain())
	if !SubChains(env, our, our) {
		t.Fatal("expected our <= our (reflexivity)")
	}
	my := c.Chain(c.MyChain())
	if !SubChains(env, my, our) {
		t.Fatal("expected my <= our (my is bottom)")
	}
}

func TestSubChainsMutCoveredBySubplaceRejected(t *testing.T) {
	// Scenario 2: p: mut[z.f] T does not satisfy a requirement of mut[z] T,
	// since z covers z.f and not the other way around.
	env, a, c := newEnv()
	in := source.NewInterner()
	z := in.Intern("z")
	f := in.Intern("f")

	whole := a.InternPlace(symir.SymPlace{Base: z})
	field := a.InternPlace(symir.SymPlace{Base: z, Segments: []symir.PlaceSegment{{Kind: symir.PlaceSegmentField, Name: f}}})

	lowerChain := c.Chain(c.InternChain(red.RedChain{Links: []red.RedLink{{Kind: red.LinkMut, Live: true, Place: field}}}))
	upperChain := c.Chain(c.InternChain(red.RedChain{Links: []red.RedLink{{Kind: red.LinkMut, Live: true, Place: whole}}}))

	if SubChains(env, lowerChain, upperChain) {
		t.Fatal("expected mut[z.f] <= mut[z] to be rejected: z.f does not cover z")
	}

	// The reverse direction should hold: a lease of the whole value is
	// strictly more permissive than a lease of one of its fields.
	if !SubChains(env, upperChain, lowerChain) {
		t.Fatal("expected mut[z] <= mut[z.f] to hold: z covers z.f")
	}
}

func TestSubChainsRefToOurHeadTrim(t *testing.T) {
	env, a, c := newEnv()
	in := source.NewInterner()
	p := a.InternPlace(symir.SymPlace{Base: in.Intern("p")})

	refChain := c.Chain(c.InternChain(red.RedChain{Links: []red.RedLink{{Kind: red.LinkRef, Live: true, Place: p}}}))
	ourChain := c.Chain(c.OurChain())

	// (Ref p []) <= (Our []) iff (Mut p []) <= [] iff Mut-chain is provably my,
	// which it never is — so this must be rejected.
	if SubChains(env, refChain, ourChain) {
		t.Fatal("expected ref[p] <= our to be rejected")
	}
}
