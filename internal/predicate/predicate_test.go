package predicate

import (
	"testing"

	"dada/internal/red"
	"dada/internal/source"
	"dada/internal/symir"
)

func TestChainIsProvablyOwnedAndUnique(t *testing.T) {
	c := red.NewCache()
	myChain := c.Chain(c.MyChain())
	if !ChainIsProvably(NoFacts, myChain, Owned) {
		t.Fatal("expected the empty chain to be provably owned")
	}
	if !ChainIsProvably(NoFacts, myChain, Unique) {
		t.Fatal("expected the empty chain to be provably unique")
	}
	if ChainIsProvably(NoFacts, myChain, Shared) {
		t.Fatal("did not expect the empty chain to be provably shared")
	}
}

func TestChainIsProvablySharedAndLent(t *testing.T) {
	c := red.NewCache()
	ourChain := c.Chain(c.OurChain())
	if !ChainIsProvably(NoFacts, ourChain, Shared) {
		t.Fatal("expected [Our] to be provably shared")
	}
	if !ChainIsProvably(NoFacts, ourChain, Owned) {
		t.Fatal("expected [Our] to be provably owned")
	}
	if ChainIsProvably(NoFacts, ourChain, Lent) {
		t.Fatal("did not expect [Our] to be provably lent")
	}
}

func TestMutuallyExclusivePredicates(t *testing.T) {
	a := symir.NewArena()
	c := red.NewCache()
	in := source.NewInterner()
	x := in.Intern("x")
	place := a.InternPlace(symir.SymPlace{Base: x})
	mutChain := c.Chain(c.InternChain(red.RedChain{Links: []red.RedLink{{Kind: red.LinkMut, Place: place}}}))

	shared := ChainIsProvably(NoFacts, mutChain, Shared)
	unique := ChainIsProvably(NoFacts, mutChain, Unique)
	if shared && unique {
		t.Fatal("a chain must never be provably both Shared and Unique")
	}
	if !unique {
		t.Fatal("expected a bare mut chain to be provably unique")
	}
}
