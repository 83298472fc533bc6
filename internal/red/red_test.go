package red

import (
	"testing"

	"dada/internal/source"
	"dada/internal/symir"
)

func TestReduceMyAndOur(t *testing.T) {
	a := symir.NewArena()
	c := NewCache()

	myRed := Reduce(a, c, OpenVars, a.My())
	perm := c.Perm(myRed)
	if len(perm.Chains) != 1 || !c.Chain(perm.Chains[0]).IsEmpty() {
		t.Fatalf("expected my to reduce to the empty chain, got %+v", perm)
	}

	ourRed := Reduce(a, c, OpenVars, a.Our())
	ourPerm := c.Perm(ourRed)
	if len(ourPerm.Chains) != 1 || !c.Chain(ourPerm.Chains[0]).IsCopy() {
		t.Fatalf("expected our to reduce to a copy chain, got %+v", ourPerm)
	}
}

func TestReduceApplyConcatenates(t *testing.T) {
	a := symir.NewArena()
	c := NewCache()
	in := source.NewInterner()
	x := in.Intern("x")
	place := a.InternPlace(symir.SymPlace{Base: x})

	mutPerm := a.Mutable([]symir.PlaceID{place})
	applied := a.InternPerm(symir.SymPerm{Kind: symir.PermApply, Lhs: mutPerm, Rhs: mutPerm})

	redID := Reduce(a, c, OpenVars, applied)
	perm := c.Perm(redID)
	if len(perm.Chains) != 1 {
		t.Fatalf("expected a single chain, got %d", len(perm.Chains))
	}
	chain := c.Chain(perm.Chains[0])
	if len(chain.Links) != 2 {
		t.Fatalf("expected mut applied to mut to concatenate into a two-link chain, got %d links", len(chain.Links))
	}
}

func TestReduceApplyAbsorbsCopy(t *testing.T) {
	a := symir.NewArena()
	c := NewCache()
	in := source.NewInterner()
	x := in.Intern("x")
	place := a.InternPlace(symir.SymPlace{Base: x})

	mutPerm := a.Mutable([]symir.PlaceID{place})
	applied := a.InternPerm(symir.SymPerm{Kind: symir.PermApply, Lhs: mutPerm, Rhs: a.Our()})

	redID := Reduce(a, c, OpenVars, applied)
	perm := c.Perm(redID)
	if len(perm.Chains) != 1 {
		t.Fatalf("expected a single chain, got %d", len(perm.Chains))
	}
	chain := c.Chain(perm.Chains[0])
	if len(chain.Links) != 1 || chain.Links[0].Kind != LinkOur {
		t.Fatalf("expected mut applied to our to absorb into [Our], got %+v", chain.Links)
	}
}
