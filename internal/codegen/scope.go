package codegen

import (
	"tinygo.org/x/go-llvm"

	"github.com/yuniruyuni/yunic/internal/types"
)

// varSlot is one local binding: the stack slot codegen allocated for it
// and the semantic type that slot holds.
type varSlot struct {
	ptr llvm.Value
	typ types.Type
}

// scope is one lexical level of the codegen-time variable table, chained
// to its parent the same way internal/symtab.Scope is — a fresh scope
// per block, function parameters living in the outermost one.
type scope struct {
	parent *scope
	vars   map[string]*varSlot
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]*varSlot)}
}

func (s *scope) define(name string, ptr llvm.Value, typ types.Type) {
	s.vars[name] = &varSlot{ptr: ptr, typ: typ}
}

func (s *scope) lookup(name string) (*varSlot, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if slot, ok := sc.vars[name]; ok {
			return slot, true
		}
	}
	return nil, false
}
