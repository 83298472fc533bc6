// Package wasmgen lowers object IR to a WASM module: the WasmRepr layout
// rules, the manual stack-frame discipline, the per-expression-kind
// lowering table, and the exhaustive operator table.
//
// Grounded on the original implementation's
// components/dada-codegen/src/cx/wasm_repr.rs (WasmRepr variants and the
// perm/named-type dispatch building them) and generate_expr.rs (the
// per-node lowering and the manual stack-frame discipline), with the
// target swapped from wasm_encoder (a Rust crate) to a hand-rolled binary
// module encoder — the teacher's own backend (internal/backend/llvm)
// likewise hand-emits its target IR via a buffer rather than binding an
// external codegen library, so this keeps the same no-external-emitter
// idiom rather than reaching for a WASM-runtime binding (wasmer-go, used
// elsewhere in the pack, embeds a *runtime*, not an *encoder*, and would
// not help here).
package wasmgen

import "dada/internal/symir"

// ValType is a WASM value type.
type ValType uint8

const (
	I32 ValType = iota
	I64
	F32
	F64
)

// wasmByte is the binary encoding of a ValType in the WASM type section.
func (v ValType) wasmByte() byte {
	switch v {
	case I32:
		return 0x7F
	case I64:
		return 0x7E
	case F32:
		return 0x7D
	case F64:
		return 0x7C
	default:
		panic("wasmgen: unknown ValType")
	}
}

// ReprKind discriminates the WasmRepr variants.
type ReprKind uint8

const (
	ReprVal ReprKind = iota
	ReprStruct
	ReprClass
	ReprNothing
)

// WasmRepr is the WASM representation of a Dada type, independent of where
// a value of that type is stored (WASM stack, a local, or linear memory).
type WasmRepr struct {
	Kind   ReprKind
	Val    ValType    // ReprVal
	Fields []WasmRepr // ReprStruct / ReprClass
}

// Flatten returns the sequence of WASM value types obtained by a post-order
// traversal of repr, skipping into Struct but treating Class as one opaque
// i32 pointer.
func Flatten(repr WasmRepr) []ValType {
	switch repr.Kind {
	case ReprVal:
		return []ValType{repr.Val}
	case ReprStruct:
		out := make([]ValType, 0, len(repr.Fields))
		for _, f := range repr.Fields {
			out = append(out, Flatten(f)...)
		}
		return out
	case ReprClass:
		return []ValType{I32}
	case ReprNothing:
		return nil
	default:
		return nil
	}
}

// ReprOf computes the WasmRepr for a symbolic type. Small integers (<32
// bits) are promoted to I32; Mutable permissions collapse their base type
// to a single I32 pointer; My/Our/Referenced pass through to the base
// type's own representation (copies and shared reads have the same
// layout as the owned value — only mut distinguishes a pointer).
func ReprOf(a *symir.Arena, tyID symir.TyID) WasmRepr {
	ty := a.Ty(tyID)
	switch ty.Kind {
	case symir.TyNever, symir.TyError:
		return WasmRepr{Kind: ReprNothing}
	case symir.TyVar, symir.TyInfer:
		panic("wasmgen: unresolved variable reached codegen")
	case symir.TyPerm:
		return reprOfPerm(a, ty.Perm, ty.Base)
	case symir.TyNamed:
		return reprOfNamed(a, ty)
	default:
		return WasmRepr{Kind: ReprNothing}
	}
}

func reprOfPerm(a *symir.Arena, permID symir.PermID, base symir.TyID) WasmRepr {
	perm := a.Perm(permID)
	switch perm.Kind {
	case symir.PermMutable:
		return wasmPointer()
	case symir.PermApply:
		return reprOfPerm(a, perm.Lhs, base)
	case symir.PermOr:
		return reprOfPerm(a, perm.Lhs, base)
	case symir.PermError:
		return WasmRepr{Kind: ReprNothing}
	default: // My, Our, Referenced, Var, Infer
		return ReprOf(a, base)
	}
}

func wasmPointer() WasmRepr {
	return WasmRepr{Kind: ReprVal, Val: I32}
}

func reprOfNamed(a *symir.Arena, ty symir.SymTy) WasmRepr {
	switch ty.Head.Kind {
	case symir.HeadBool, symir.HeadChar, symir.HeadUsize, symir.HeadIsize:
		return WasmRepr{Kind: ReprVal, Val: I32}
	case symir.HeadInt, symir.HeadUint:
		if ty.Head.Bits > 32 {
			return WasmRepr{Kind: ReprVal, Val: I64}
		}
		return WasmRepr{Kind: ReprVal, Val: I32}
	case symir.HeadFloat:
		if ty.Head.Bits <= 32 {
			return WasmRepr{Kind: ReprVal, Val: F32}
		}
		return WasmRepr{Kind: ReprVal, Val: F64}
	case symir.HeadAggregate:
		fields := make([]WasmRepr, 0, len(ty.Args))
		for _, arg := range ty.Args {
			fields = append(fields, ReprOf(a, arg))
		}
		if a.AggregateStyle(ty.Head.Name) == symir.AggregateClass {
			return WasmRepr{Kind: ReprClass, Fields: fields}
		}
		return WasmRepr{Kind: ReprStruct, Fields: fields}
	case symir.HeadFuture:
		inner := ReprOf(a, ty.Args[0])
		return WasmRepr{Kind: ReprClass, Fields: []WasmRepr{inner}}
	case symir.HeadTuple:
		fields := make([]WasmRepr, 0, len(ty.Args))
		for _, arg := range ty.Args {
			fields = append(fields, ReprOf(a, arg))
		}
		return WasmRepr{Kind: ReprStruct, Fields: fields}
	default:
		return WasmRepr{Kind: ReprNothing}
	}
}
