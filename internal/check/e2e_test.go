package check

import (
	"context"
	"testing"

	"dada/internal/infer"
	"dada/internal/objectir"
	"dada/internal/predicate"
	"dada/internal/red"
	"dada/internal/source"
	"dada/internal/subtype"
	"dada/internal/symir"
	"dada/internal/wasmgen"
)

func fatalOrElse(t *testing.T, reason string) OrElse {
	return func() Reported {
		return Reported{Reason: reason}
	}
}

// Scenario 1: sharing an owned value. `.share` on an already-our permission
// is a no-op copy; `.share` on a uniquely owned (my) permission converts it
// to our. Either way the result is provably our. A permission neither our
// nor uniquely owned (a plain lease) cannot be shared.
func TestE2EScenario1ShareConvertsOwnedToShared(t *testing.T) {
	ctx := context.Background()
	arena := symir.NewArena()
	driver := NewDriver(arena, red.NewCache())

	for _, tc := range []struct {
		name string
		perm symir.PermID
	}{
		{"already our", arena.Our()},
		{"uniquely owned", arena.My()},
	} {
		got, err := driver.CheckShare(ctx, tc.perm, fatalOrElse(t, "share should have succeeded for "+tc.name))
		if err != nil {
			t.Fatalf("%s: CheckShare returned %v", tc.name, err)
		}
		if got != arena.Our() {
			t.Fatalf("%s: expected share to produce our, got perm %d", tc.name, got)
		}
	}

	in := source.NewInterner()
	place := arena.InternPlace(symir.SymPlace{Base: in.Intern("p")})
	leased := arena.Referenced([]symir.PlaceID{place})
	if _, err := driver.CheckShare(ctx, leased, fatalOrElse(t, "x")); err == nil {
		t.Fatal("expected share of a borrowed (ref) permission to be rejected")
	}
}

// Still scenario 1's aliasing shape, but exercising RequireAnyBranchIsProvably
// (otherwise uncalled outside its unit test): a permission built from two
// alternatives — one our, one mut — is not uniformly Shared, yet at least
// one of its branches provably is.
func TestE2EScenario1RequireAnyBranchIsProvablyOverAliasedPerm(t *testing.T) {
	ctx := context.Background()
	arena := symir.NewArena()
	cache := red.NewCache()
	driver := NewDriver(arena, cache)
	in := source.NewInterner()
	place := arena.InternPlace(symir.SymPlace{Base: in.Intern("q")})

	orPerm := arena.InternPerm(symir.SymPerm{
		Kind: symir.PermOr,
		Lhs:  arena.Our(),
		Rhs:  arena.Mutable([]symir.PlaceID{place}),
	})

	if err := driver.RequireAnyBranchIsProvably(ctx, orPerm, predicate.Shared, fatalOrElse(t, "one branch is our")); err != nil {
		t.Fatalf("expected the our branch to satisfy Shared: %v", err)
	}

	orPermRed := red.Reduce(arena, cache, red.OpenVars, orPerm)
	if predicate.PermIsProvably(driver.Infer, cache, orPermRed, predicate.Shared) {
		t.Fatal("the permission as a whole (mut branch included) must not be uniformly Shared")
	}

	bothMut := arena.InternPerm(symir.SymPerm{
		Kind: symir.PermOr,
		Lhs:  arena.Mutable([]symir.PlaceID{place}),
		Rhs:  arena.Mutable([]symir.PlaceID{place}),
	})
	if err := driver.RequireAnyBranchIsProvably(ctx, bothMut, predicate.Shared, fatalOrElse(t, "y")); err == nil {
		t.Fatal("expected no branch of an all-mut permission to be Shared")
	}
}

// Scenario 2: a mut[z.f] lease does not satisfy a requirement of mut[z] —
// the lease covers only a field, not the whole place — driven through
// Driver.RequireSubPerm rather than raw SubChains, matching how a real
// call-argument check reaches subtyping.
func TestE2EScenario2MutSubplaceRejectedViaDriver(t *testing.T) {
	ctx := context.Background()
	arena := symir.NewArena()
	driver := NewDriver(arena, red.NewCache())
	in := source.NewInterner()
	z := in.Intern("z")
	f := in.Intern("f")

	whole := arena.InternPlace(symir.SymPlace{Base: z})
	field := arena.InternPlace(symir.SymPlace{Base: z, Segments: []symir.PlaceSegment{{Kind: symir.PlaceSegmentField, Name: f}}})

	leaseField := arena.Mutable([]symir.PlaceID{field})
	leaseWhole := arena.Mutable([]symir.PlaceID{whole})

	if err := driver.RequireSubPerm(ctx, leaseField, leaseWhole, fatalOrElse(t, "z.f does not cover z")); err == nil {
		t.Fatal("expected mut[z.f] <= mut[z] to be rejected")
	}
	if err := driver.RequireSubPerm(ctx, leaseWhole, leaseField, fatalOrElse(t, "z covers z.f")); err != nil {
		t.Fatalf("expected mut[z] <= mut[z.f] to hold: %v", err)
	}
}

// CheckCall/CheckStructLit exercise the same call-argument subtyping in the
// two shapes the body-walker drives them from: positional call arguments
// and struct-literal field initializers.
func TestE2EScenario2CheckCallAndCheckStructLit(t *testing.T) {
	ctx := context.Background()
	arena := symir.NewArena()
	driver := NewDriver(arena, red.NewCache())

	i32 := arena.NamedInt(true, 32)
	u32 := arena.NamedInt(false, 32)

	ok, err := driver.CheckCall(ctx, []symir.TyID{i32}, []symir.TyID{i32}, fatalOrElse(t, "exact match"))
	if err != nil || !ok {
		t.Fatalf("expected a matching call argument to check, got ok=%v err=%v", ok, err)
	}

	ok, err = driver.CheckCall(ctx, []symir.TyID{u32}, []symir.TyID{i32}, OrElse(func() Reported {
		return Reported{Reason: "u32 arg does not fit an i32 param"}
	}))
	if err == nil || ok {
		t.Fatalf("expected a signed/unsigned mismatch to be rejected, got ok=%v err=%v", ok, err)
	}

	ok, err = driver.CheckStructLit(ctx, []symir.TyID{i32, i32}, []symir.TyID{i32, i32}, fatalOrElse(t, "fields match"))
	if err != nil || !ok {
		t.Fatalf("expected matching struct fields to check, got ok=%v err=%v", ok, err)
	}
	ok, err = driver.CheckStructLit(ctx, []symir.TyID{u32, i32}, []symir.TyID{i32, i32}, fatalOrElse(t, "z"))
	if ok {
		t.Fatal("expected a mismatched struct field to fail CheckStructLit")
	}
	_ = err
}

// Scenario 3: an inference variable's already-recorded lower bound is
// spliced into a fresh subtyping obligation rather than the obligation
// being decided outright — ?X with lower bound ref[z] satisfies ?X <=
// ref[z.g] (z covers z.g) but not ?X <= ref[w] (an unrelated root).
func TestE2EScenario3InferVariableSplicing(t *testing.T) {
	arena := symir.NewArena()
	cache := red.NewCache()
	store := infer.NewStore()
	env := subtype.Env{Arena: arena, Cache: cache, Infer: store}
	in := source.NewInterner()
	z := in.Intern("z")
	g := in.Intern("g")
	w := in.Intern("w")

	zPlace := arena.InternPlace(symir.SymPlace{Base: z})
	zgPlace := arena.InternPlace(symir.SymPlace{Base: z, Segments: []symir.PlaceSegment{{Kind: symir.PlaceSegmentField, Name: g}}})
	wPlace := arena.InternPlace(symir.SymPlace{Base: w})

	v := arena.FreshVar()
	lowerBound := red.RedChain{Links: []red.RedLink{{Kind: red.LinkRef, Live: true, Place: zPlace}}}
	store.InsertChainBound(v, cache.InternChain(lowerBound), infer.FromBelow, infer.OrElse{Reason: "?X's only known lower bound"})

	vChain := red.RedChain{Links: []red.RedLink{{Kind: red.LinkVar, Var: v, IsInfer: true}}}
	coveringUpper := red.RedChain{Links: []red.RedLink{{Kind: red.LinkRef, Live: true, Place: zgPlace}}}
	if !subtype.SubChains(env, vChain, coveringUpper) {
		t.Fatal("expected ?X <= ref[z.g] to hold: ?X's recorded lower bound ref[z] covers z.g")
	}

	v2 := arena.FreshVar()
	store.InsertChainBound(v2, cache.InternChain(lowerBound), infer.FromBelow, infer.OrElse{Reason: "?Y's only known lower bound"})
	v2Chain := red.RedChain{Links: []red.RedLink{{Kind: red.LinkVar, Var: v2, IsInfer: true}}}
	unrelatedUpper := red.RedChain{Links: []red.RedLink{{Kind: red.LinkRef, Live: true, Place: wPlace}}}
	if subtype.SubChains(env, v2Chain, unrelatedUpper) {
		t.Fatal("expected ?Y <= ref[w] to be rejected: z does not cover w")
	}
}

// Scenario 4: the same binary operator monomorphizes to a different WASM
// instruction depending on the operand's concrete width — u16 operands
// stay I32 (WASM has no sub-32-bit arithmetic type), u64 operands widen to
// I64, and the instruction selected differs accordingly.
func TestE2EScenario4BinaryOpMonomorphizesByWidth(t *testing.T) {
	arena := symir.NewArena()
	u16 := arena.NamedInt(false, 16)
	u64 := arena.NamedInt(false, 64)

	reprU16 := wasmgen.ReprOf(arena, u16)
	reprU64 := wasmgen.ReprOf(arena, u64)
	if reprU16.Val != wasmgen.I32 {
		t.Fatalf("expected u16 to be represented as I32, got %v", reprU16.Val)
	}
	if reprU64.Val != wasmgen.I64 {
		t.Fatalf("expected u64 to be represented as I64, got %v", reprU64.Val)
	}

	gotU16 := wasmgen.BinaryOpInstr(objectir.OpAdd, reprU16.Val, false, false)
	gotU64 := wasmgen.BinaryOpInstr(objectir.OpAdd, reprU64.Val, false, false)
	if gotU16 != wasmgen.OpI32Add {
		t.Fatalf("expected u16 + u16 to monomorphize to I32Add, got %#x", gotU16)
	}
	if gotU64 != wasmgen.OpI64Add {
		t.Fatalf("expected u64 + u64 to monomorphize to I64Add, got %#x", gotU64)
	}
}

// Scenario 5: a three-arm match, the last arm unconditional, lowers to
// nested If/Else/End with a BlockType::Result(I32) on the conditional arms
// (the match's overall result is an i32-represented int).
func TestE2EScenario5MatchLowersToNestedIfElse(t *testing.T) {
	arena := symir.NewArena()
	mod := objectir.NewModule(arena)
	i32 := arena.NamedInt(true, 32)
	objI32 := objectir.ObjectTy{Ty: i32}

	f := objectir.NewFunc("classify")
	cond0 := f.Add(objectir.Node{Kind: objectir.NodePrimitive, Ty: objI32, Value: objectir.PrimitiveValue{IsBool: true, Bool: true}})
	body0 := f.Add(objectir.Node{Kind: objectir.NodePrimitive, Ty: objI32, Value: objectir.PrimitiveValue{IsInt: true, Int: 0}})
	cond1 := f.Add(objectir.Node{Kind: objectir.NodePrimitive, Ty: objI32, Value: objectir.PrimitiveValue{IsBool: true, Bool: false}})
	body1 := f.Add(objectir.Node{Kind: objectir.NodePrimitive, Ty: objI32, Value: objectir.PrimitiveValue{IsInt: true, Int: 1}})
	body2 := f.Add(objectir.Node{Kind: objectir.NodePrimitive, Ty: objI32, Value: objectir.PrimitiveValue{IsInt: true, Int: 2}})

	match := f.Add(objectir.Node{
		Kind: objectir.NodeMatch,
		Ty:   objI32,
		Arms: []objectir.MatchArm{
			{Cond: cond0, Body: body0},
			{Cond: cond1, Body: body1},
			{Cond: objectir.NoNodeID, Body: body2}, // unconditional final arm
		},
	})
	ret := f.Add(objectir.Node{Kind: objectir.NodeReturn, Ty: objI32, Operand: match})
	f.Entry = ret
	f.ResultTy = objI32
	mod.AddFunc(f)

	out := wasmgen.EmitModule(mod)

	const (
		opIf        = 0x04
		opEnd       = 0x0B
		blockTypeI32 = 0x7F
	)
	ifCount, endCount := 0, 0
	for _, b := range out {
		switch b {
		case opIf:
			ifCount++
		case opEnd:
			endCount++
		}
	}
	if ifCount < 2 {
		t.Fatalf("expected at least 2 nested If opcodes for 2 conditional arms, found %d in %v", ifCount, out)
	}
	if !containsSeq(out, []byte{opIf, blockTypeI32}) {
		t.Fatalf("expected an If opcode followed by a BlockType::Result(I32) byte, got %v", out)
	}
	// At least one End per function (the function body's own opEnd) plus one
	// per nested If: 2 conditional arms means 2 additional Ends.
	if endCount < 3 {
		t.Fatalf("expected >= 3 End opcodes (function body + 2 nested ifs), found %d", endCount)
	}
}

func containsSeq(hay []byte, needle []byte) bool {
	if len(needle) == 0 || len(hay) < len(needle) {
		return false
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Scenario 6: `let x = if cond { a_my_string } else { an_our_string };`
// converges to our String, driven through Driver.RequireConverge: every
// branch splices into a fresh inference variable's bound set, and once
// both have, the variable settles to the our chain (the least upper bound
// of my and our) — exercising RedTyBound/Watch/RequireIsNot/DeclaredNot
// along the way.
func TestE2EScenario6IfElseConvergesToOur(t *testing.T) {
	ctx := context.Background()
	arena := symir.NewArena()
	driver := NewDriver(arena, red.NewCache())
	in := source.NewInterner()
	stringName := in.Intern("String")
	baseTy := arena.NamedAggregate(stringName, nil)

	v := arena.FreshVar()
	settled, err := driver.RequireConverge(ctx, v, baseTy, []symir.PermID{arena.My(), arena.Our()}, fatalOrElse(t, "my/our should converge"))
	if err != nil {
		t.Fatalf("expected convergence to succeed: %v", err)
	}
	if settled != driver.Red.OurChain() {
		t.Fatalf("expected the converged chain to be [Our], got chain %d (our is %d)", settled, driver.Red.OurChain())
	}
	if !driver.Infer.Declared(v, predicate.Shared) {
		t.Fatal("expected the converged variable to be declared Shared")
	}
	if _, isnt := driver.Infer.DeclaredNot(v, predicate.Lent); !isnt {
		t.Fatal("expected the converged variable to be declared not-Lent")
	}
}
