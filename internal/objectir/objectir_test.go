package objectir

import (
	"testing"

	"dada/internal/symir"
)

func TestFuncAddAndNodeRoundtrip(t *testing.T) {
	f := NewFunc("add")
	lit := f.Add(Node{Kind: NodePrimitive, Value: PrimitiveValue{IsInt: true, Int: 1}})
	ret := f.Add(Node{Kind: NodeReturn, Operand: lit})
	f.Entry = ret

	if got := f.Node(ret).Kind; got != NodeReturn {
		t.Fatalf("expected NodeReturn, got %v", got)
	}
	if got := f.Node(f.Node(ret).Operand).Value.Int; got != 1 {
		t.Fatalf("expected literal 1, got %d", got)
	}
}

func TestModuleAddFuncAssignsSequentialIndices(t *testing.T) {
	a := symir.NewArena()
	m := NewModule(a)

	i0 := m.AddFunc(NewFunc("f0"))
	i1 := m.AddFunc(NewFunc("f1"))

	if i0 != 0 || i1 != 1 {
		t.Fatalf("expected sequential indices 0,1; got %d,%d", i0, i1)
	}
	if len(m.Funcs) != 2 {
		t.Fatalf("expected 2 funcs, got %d", len(m.Funcs))
	}
}

func TestNoNodeIDMarksAbsence(t *testing.T) {
	f := NewFunc("empty")
	if f.Entry != NoNodeID {
		t.Fatalf("expected fresh Func to have no entry")
	}
}
