// Package symtab implements the type registry and the lexical symbol-table
// scope stack shared by the analyzer's passes.
package symtab

import "github.com/yuniruyuni/yunic/internal/types"

// Symbol is a named, typed binding visible in some lexical scope.
type Symbol struct {
	Name      string
	Type      types.Type
	IsMutable bool
}

// Scope is one lexical level of the symbol table, chained to its Parent.
type Scope struct {
	Parent  *Scope
	symbols map[string]*Symbol
}

// NewScope creates a scope nested inside parent (nil for the top level).
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, symbols: make(map[string]*Symbol)}
}

// Define binds name in this scope, shadowing any outer binding of the same
// name. It reports false if name is already defined in THIS scope (a
// duplicate-definition error, as opposed to legal shadowing of an outer
// scope).
func (s *Scope) Define(sym *Symbol) bool {
	if _, exists := s.symbols[sym.Name]; exists {
		return false
	}
	s.symbols[sym.Name] = sym
	return true
}

// Lookup searches this scope and its ancestors for name.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal searches only this scope, not its ancestors.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// TypeRegistry records every struct/enum declared at module scope, indexed
// by name, along with a field-name-to-index map used by codegen to
// generate GEP indices.
type TypeRegistry struct {
	defs        map[string]*TypeDefInfo
	funcSigs    map[string]*types.TFunction
	typeParams  map[string][]string
}

// TypeDefInfo records a registered struct or enum definition.
type TypeDefInfo struct {
	Name        string
	IsEnum      bool
	TypeParams  []string
	FieldIndex  map[string]int // struct field name -> declaration order
	FieldNames  []string       // struct field names in declaration order
	Fields      []types.Type   // struct field types in declaration order (parallel to FieldNames)
	Variants    map[string]int // enum variant name -> tag value
	VariantKind map[string]int // enum variant name -> ast.EnumVariantKind, stored as int to avoid an ast import cycle
	Methods     map[string]*types.TFunction
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		defs:       make(map[string]*TypeDefInfo),
		funcSigs:   make(map[string]*types.TFunction),
		typeParams: make(map[string][]string),
	}
}

// RegisterType records info for a struct or enum, reporting false if the
// name is already registered.
func (r *TypeRegistry) RegisterType(info *TypeDefInfo) bool {
	if _, exists := r.defs[info.Name]; exists {
		return false
	}
	r.defs[info.Name] = info
	if len(info.TypeParams) > 0 {
		r.typeParams[info.Name] = info.TypeParams
	}
	return true
}

// LookupType returns the registered definition for name.
func (r *TypeRegistry) LookupType(name string) (*TypeDefInfo, bool) {
	info, ok := r.defs[name]
	return info, ok
}

// RegisterFunc records the resolved signature of a free function, reporting
// false if name is already registered.
func (r *TypeRegistry) RegisterFunc(name string, sig *types.TFunction) bool {
	if _, exists := r.funcSigs[name]; exists {
		return false
	}
	r.funcSigs[name] = sig
	return true
}

// LookupFunc returns the resolved signature of a free function.
func (r *TypeRegistry) LookupFunc(name string) (*types.TFunction, bool) {
	sig, ok := r.funcSigs[name]
	return sig, ok
}

// TypeParamsOf returns the declared generic parameter names of a
// registered struct/enum, or nil if it is not generic.
func (r *TypeRegistry) TypeParamsOf(name string) []string {
	return r.typeParams[name]
}

// FieldType looks up the declared type of a struct field by name.
func (info *TypeDefInfo) FieldType(name string) (types.Type, bool) {
	idx, ok := info.FieldIndex[name]
	if !ok {
		return nil, false
	}
	return info.Fields[idx], true
}

// RegisterMethod attaches method sig under name to the type definition
// info, reporting false if name is already registered.
func (info *TypeDefInfo) RegisterMethod(name string, sig *types.TFunction) bool {
	if info.Methods == nil {
		info.Methods = make(map[string]*types.TFunction)
	}
	if _, exists := info.Methods[name]; exists {
		return false
	}
	info.Methods[name] = sig
	return true
}

// LookupMethod resolves a method by name.
func (info *TypeDefInfo) LookupMethod(name string) (*types.TFunction, bool) {
	sig, ok := info.Methods[name]
	return sig, ok
}
