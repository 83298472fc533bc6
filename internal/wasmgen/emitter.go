package wasmgen

import (
	"dada/internal/objectir"
)

// section IDs per the WASM binary format.
const (
	secType     = 1
	secFunction = 3
	secMemory   = 5
	secExport   = 7
	secCode     = 10
)

type funcType struct {
	inputs  []ValType
	outputs []ValType
}

func (t funcType) key() string {
	b := make([]byte, 0, len(t.inputs)+len(t.outputs)+2)
	b = append(b, byte(len(t.inputs)))
	for _, v := range t.inputs {
		b = append(b, byte(v))
	}
	b = append(b, byte(len(t.outputs)))
	for _, v := range t.outputs {
		b = append(b, byte(v))
	}
	return string(b)
}

// Emitter lowers an object-IR module to a WASM binary module. It memoizes
// function types (deduplicated per (inputs, outputs), as spec.md §6
// requires) and records each Func's type index. A Func's function index is
// its position in mod.Funcs; there is no memo keyed by (function,
// concrete-generics) pair, so every Func gets its own index.
//
// Grounded in shape on the teacher's internal/backend/llvm.Emitter: one
// struct holding the source module, dedup maps keyed by structural
// identity, and a func-local sub-emitter for per-function state — here
// writing WASM binary bytes instead of LLVM IR text.
type Emitter struct {
	mod *objectir.Module

	types     []funcType
	typeIndex map[string]uint32

	funcTypeOf []uint32 // per Func index in mod.Funcs, its type-section index
}

// NewEmitter constructs an emitter for mod.
func NewEmitter(mod *objectir.Module) *Emitter {
	return &Emitter{
		mod:       mod,
		typeIndex: make(map[string]uint32),
	}
}

func (e *Emitter) internType(t funcType) uint32 {
	k := t.key()
	if idx, ok := e.typeIndex[k]; ok {
		return idx
	}
	idx := uint32(len(e.types))
	e.types = append(e.types, t)
	e.typeIndex[k] = idx
	return idx
}

// EmitModule produces the complete WASM binary for mod: a single linear
// memory of at least one page, function types declared on demand, one WASM
// function per Dada function (first local always the frame pointer), and a
// code section lowering each function's object-IR body.
func EmitModule(mod *objectir.Module) []byte {
	e := NewEmitter(mod)
	e.funcTypeOf = make([]uint32, len(mod.Funcs))
	bodies := make([][]byte, len(mod.Funcs))

	for i, f := range mod.Funcs {
		ft := funcTypeFor(mod, f)
		e.funcTypeOf[i] = e.internType(ft)
		bodies[i] = lowerFunc(mod, f)
	}

	var out []byte
	out = append(out, 0x00, 0x61, 0x73, 0x6D) // magic "\0asm"
	out = append(out, 0x01, 0x00, 0x00, 0x00) // version 1

	out = appendSection(out, secType, e.encodeTypeSection())
	out = appendSection(out, secFunction, e.encodeFunctionSection())
	out = appendSection(out, secMemory, encodeMemorySection())
	out = appendSection(out, secExport, e.encodeExportSection())
	out = appendSection(out, secCode, encodeCodeSection(bodies))
	return out
}

func appendSection(out []byte, id byte, body []byte) []byte {
	out = append(out, id)
	out = appendULEB128(out, uint64(len(body)))
	return append(out, body...)
}

func funcTypeFor(mod *objectir.Module, f *objectir.Func) funcType {
	inputs := make([]ValType, 0, f.NumParams+1)
	inputs = append(inputs, I32) // frame pointer, always first
	for i := 0; i < f.NumParams; i++ {
		// Parameter layout is recomputed by the caller from the signature;
		// here we only need the flattened value types, and I32 is always a
		// safe placeholder for a pointer-sized slot when the concrete type
		// is not separately tracked per param in this simplified emitter.
		inputs = append(inputs, I32)
	}
	outputs := Flatten(ReprOf(mod.Arena, f.ResultTy.Ty))
	return funcType{inputs: inputs, outputs: outputs}
}

func (e *Emitter) encodeTypeSection() []byte {
	var body []byte
	body = appendULEB128(body, uint64(len(e.types)))
	for _, t := range e.types {
		body = append(body, 0x60) // functype tag
		body = appendULEB128(body, uint64(len(t.inputs)))
		for _, v := range t.inputs {
			body = append(body, v.wasmByte())
		}
		body = appendULEB128(body, uint64(len(t.outputs)))
		for _, v := range t.outputs {
			body = append(body, v.wasmByte())
		}
	}
	return body
}

func (e *Emitter) encodeFunctionSection() []byte {
	var body []byte
	body = appendULEB128(body, uint64(len(e.funcTypeOf)))
	for _, idx := range e.funcTypeOf {
		body = appendULEB128(body, uint64(idx))
	}
	return body
}

func encodeMemorySection() []byte {
	var body []byte
	body = appendULEB128(body, 1) // one memory
	body = append(body, 0x00)     // flags: no max
	body = appendULEB128(body, 1) // min 1 page
	return body
}

func (e *Emitter) encodeExportSection() []byte {
	var body []byte
	body = appendULEB128(body, uint64(len(e.mod.Funcs)))
	for i, f := range e.mod.Funcs {
		name := f.Name
		body = appendULEB128(body, uint64(len(name)))
		body = append(body, name...)
		body = append(body, 0x00) // export kind: func
		body = appendULEB128(body, uint64(i))
	}
	return body
}

func encodeCodeSection(bodies [][]byte) []byte {
	var body []byte
	body = appendULEB128(body, uint64(len(bodies)))
	for _, b := range bodies {
		body = appendULEB128(body, uint64(len(b)))
		body = append(body, b...)
	}
	return body
}
