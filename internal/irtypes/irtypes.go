// Package irtypes maintains the type manager (§4.9): the mapping from the
// analyzer's internal/types.Type grammar to LLVM IR types, plus the
// struct/enum field-index tables codegen's field-access lowering
// consults.
package irtypes

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/yuniruyuni/yunic/internal/symtab"
	"github.com/yuniruyuni/yunic/internal/types"
)

// StructInfo records one registered struct/tuple's LLVM type and the
// declaration-order index of each named field.
type StructInfo struct {
	IR         llvm.Type
	FieldIndex map[string]int
}

// EnumInfo records one registered enum's tag type and, for payload-
// carrying variants, the LLVM struct type of `{ tag, payload }`.
type EnumInfo struct {
	TagType      llvm.Type
	PayloadFree  bool
	VariantTag   map[string]int
	PayloadTypes map[string]llvm.Type // set only for payload-carrying variants
}

// Manager owns the LLVM context and the name -> IR type registries built
// while lowering struct/enum definitions, ahead of function body codegen.
type Manager struct {
	ctx     llvm.Context
	structs map[string]*StructInfo
	enums   map[string]*EnumInfo
	reg     *symtab.TypeRegistry
}

// NewManager creates a type manager bound to ctx. reg (the analyzer's
// resolved type registry) is kept on the Manager; none of its methods
// read it.
func NewManager(ctx llvm.Context, reg *symtab.TypeRegistry) *Manager {
	return &Manager{
		ctx:     ctx,
		structs: make(map[string]*StructInfo),
		enums:   make(map[string]*EnumInfo),
		reg:     reg,
	}
}

// LowerInt returns the LLVM integer type of the matching bit width; sign
// is tracked in the source type, not the IR (§4.9).
func (m *Manager) LowerInt(k types.IntKind) llvm.Type {
	return m.ctx.IntType(k.Width())
}

// LowerFloat returns the LLVM float type of the matching width.
func (m *Manager) LowerFloat(k types.FloatKind) llvm.Type {
	if k.Width() <= 32 {
		return m.ctx.FloatType()
	}
	return m.ctx.DoubleType()
}

// PointerType returns an opaque i8* used for Str/String/Array/Reference
// and function-pointer values, per the §4.9 mapping table.
func (m *Manager) PointerType() llvm.Type {
	return llvm.PointerType(m.ctx.Int8Type(), 0)
}

// Lower maps a resolved semantic type to its LLVM IR representation.
func (m *Manager) Lower(t types.Type) (llvm.Type, error) {
	switch v := t.(type) {
	case *types.TInt:
		return m.LowerInt(v.Kind), nil
	case *types.TFloat:
		return m.LowerFloat(v.Kind), nil
	case *types.TBool:
		return m.ctx.Int1Type(), nil
	case *types.TStr, *types.TString, *types.TArray, *types.TReference, *types.TFunction:
		return m.PointerType(), nil
	case *types.TVoid:
		return m.ctx.VoidType(), nil
	case *types.TTuple:
		elems := make([]llvm.Type, len(v.Elements))
		for i, e := range v.Elements {
			lt, err := m.Lower(e)
			if err != nil {
				return llvm.Type{}, err
			}
			elems[i] = lt
		}
		return m.ctx.StructType(elems, false), nil
	case *types.TUserDefined:
		if info, ok := m.structs[v.Name]; ok {
			return info.IR, nil
		}
		if _, ok := m.enums[v.Name]; ok {
			// An enum value is always heap-boxed as { tag, payload }: a
			// bare TagType here would silently drop any payload a
			// variant carries, so every reference to an enum type (a
			// local, a struct field, an array element) is the same
			// opaque pointer used for Str/String/Array/Reference.
			return m.PointerType(), nil
		}
		return llvm.Type{}, fmt.Errorf("type %q has not been registered with the type manager", v.Name)
	case *types.TGeneric:
		return m.Lower(&types.TUserDefined{Name: v.Name})
	default:
		return llvm.Type{}, fmt.Errorf("cannot lower type %s", t)
	}
}

// RegisterStruct lowers a struct's declared fields (in order) into a
// named LLVM struct type and records its field-index map. It is a
// one-shot convenience wrapping PreDeclareStruct+FinalizeStruct for
// structs with no forward references to worry about.
func (m *Manager) RegisterStruct(name string, fieldNames []string, fields []types.Type) error {
	m.PreDeclareStruct(name)
	return m.FinalizeStruct(name, fieldNames, fields)
}

// PreDeclareStruct creates an opaque (bodyless) named LLVM struct type for
// name, so that other structs/enums registered before name's fields are
// finalized can still reference it by name — mutually- or
// forward-referencing struct definitions resolve in any declaration
// order as long as every PreDeclareStruct call is paired with a later
// FinalizeStruct call before the type is used to compute a size.
func (m *Manager) PreDeclareStruct(name string) {
	if _, exists := m.structs[name]; exists {
		return
	}
	st := m.ctx.StructCreateNamed(name)
	m.structs[name] = &StructInfo{IR: st, FieldIndex: make(map[string]int)}
}

// FinalizeStruct sets the body of a struct previously opened with
// PreDeclareStruct, lowering its field types (which may now reference
// other pre-declared structs) and recording the field-index map.
func (m *Manager) FinalizeStruct(name string, fieldNames []string, fields []types.Type) error {
	info, ok := m.structs[name]
	if !ok {
		return fmt.Errorf("struct %q was not pre-declared", name)
	}
	elems := make([]llvm.Type, len(fields))
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		lt, err := m.Lower(f)
		if err != nil {
			return fmt.Errorf("struct %q field %q: %w", name, fieldNames[i], err)
		}
		elems[i] = lt
		index[fieldNames[i]] = i
	}
	info.IR.StructSetBody(elems, false)
	info.FieldIndex = index
	return nil
}

// RegisterEnum lowers an enum's variants. Payload-free enums get a plain
// i32 tag type; payload-carrying variants additionally get a `{ tag,
// payload }` struct recorded per-variant.
func (m *Manager) RegisterEnum(name string, variantOrder []string, payloadFree bool) {
	tag := m.ctx.Int32Type()
	info := &EnumInfo{
		TagType:      tag,
		PayloadFree:  payloadFree,
		VariantTag:   make(map[string]int, len(variantOrder)),
		PayloadTypes: make(map[string]llvm.Type),
	}
	for i, v := range variantOrder {
		info.VariantTag[v] = i
	}
	m.enums[name] = info
}

// SetVariantPayload records the payload struct type for a payload-
// carrying variant, lowered as `{ tag: i32, payload: <T> }`.
func (m *Manager) SetVariantPayload(enumName, variant string, payload llvm.Type) {
	info, ok := m.enums[enumName]
	if !ok {
		return
	}
	wrapped := m.ctx.StructType([]llvm.Type{info.TagType, payload}, false)
	info.PayloadTypes[variant] = wrapped
}

// LookupStruct returns the registered StructInfo for name.
func (m *Manager) LookupStruct(name string) (*StructInfo, bool) {
	info, ok := m.structs[name]
	return info, ok
}

// LookupEnum returns the registered EnumInfo for name.
func (m *Manager) LookupEnum(name string) (*EnumInfo, bool) {
	info, ok := m.enums[name]
	return info, ok
}

// FieldIndex resolves a struct field's declaration-order index by
// struct name and field name, as consulted by field-access lowering.
func (m *Manager) FieldIndex(structName, field string) (int, error) {
	info, ok := m.structs[structName]
	if !ok {
		return 0, fmt.Errorf("unknown struct %q", structName)
	}
	idx, ok := info.FieldIndex[field]
	if !ok {
		return 0, fmt.Errorf("struct %q has no field %q", structName, field)
	}
	return idx, nil
}
