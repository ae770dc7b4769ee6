// Package runtimeabi declares the external C runtime functions the code
// generator calls into: printf/malloc/free plus yuni's own small runtime
// support library (string conversion, vectors, hashmaps, panics). Every
// symbol here is declared, never defined — the bodies live in the
// external runtime linked alongside the emitted object file.
package runtimeabi

import (
	"fmt"

	"tinygo.org/x/go-llvm"
)

// Registry holds the LLVM function declarations for every runtime ABI
// symbol, keyed by name, the way the teacher's BuiltinRegistry holds Go
// closures keyed by name — resolution here ends at "declare a function in
// this module", not "call a Go implementation".
type Registry struct {
	ctx llvm.Context
	mod llvm.Module
	fns map[string]llvm.Value
}

// NewRegistry declares every runtime ABI symbol into mod and returns a
// registry for looking them up during codegen.
func NewRegistry(ctx llvm.Context, mod llvm.Module) *Registry {
	r := &Registry{ctx: ctx, mod: mod, fns: make(map[string]llvm.Value)}

	ptr := llvm.PointerType(ctx.Int8Type(), 0)
	i32 := ctx.Int32Type()
	i64 := ctx.Int64Type()
	f64 := ctx.DoubleType()
	i1 := ctx.Int1Type()
	void := ctx.VoidType()

	r.declareVararg("printf", i32, []llvm.Type{ptr})
	r.declare("malloc", ptr, []llvm.Type{i64})
	r.declare("free", void, []llvm.Type{ptr})

	r.declare("yuni_string_concat", ptr, []llvm.Type{ptr, ptr})
	r.declare("yuni_int_to_string", ptr, []llvm.Type{i64})
	r.declare("yuni_f64_to_string", ptr, []llvm.Type{f64})
	r.declare("yuni_bool_to_string", ptr, []llvm.Type{i1})
	r.declare("yuni_println", void, []llvm.Type{ptr})
	r.declare("yuni_panic", void, []llvm.Type{ptr})

	r.declare("yuni_vec_new", ptr, []llvm.Type{i64})
	r.declare("yuni_vec_push", void, []llvm.Type{ptr, ptr})
	r.declare("yuni_vec_get", ptr, []llvm.Type{ptr, i64})

	r.declare("yuni_hashmap_new", ptr, nil)
	r.declare("yuni_hashmap_insert", void, []llvm.Type{ptr, ptr, ptr})

	return r
}

func (r *Registry) declare(name string, ret llvm.Type, params []llvm.Type) {
	fnType := llvm.FunctionType(ret, params, false)
	r.fns[name] = llvm.AddFunction(r.mod, name, fnType)
}

func (r *Registry) declareVararg(name string, ret llvm.Type, params []llvm.Type) {
	fnType := llvm.FunctionType(ret, params, true)
	r.fns[name] = llvm.AddFunction(r.mod, name, fnType)
}

// Lookup returns the declared llvm.Value for a runtime ABI symbol.
func (r *Registry) Lookup(name string) (llvm.Value, error) {
	fn, ok := r.fns[name]
	if !ok {
		return llvm.Value{}, fmt.Errorf("runtimeabi: unknown symbol %q", name)
	}
	return fn, nil
}

// Names returns every declared symbol name, for diagnostics and golden
// tests. The names come from a map, so their order is not defined.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	return names
}
