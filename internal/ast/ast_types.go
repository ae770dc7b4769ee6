package ast

import (
	"fmt"
	"strings"
)

// Type nodes (§3 data model). The AST's Type sum is a closed tagged union;
// internal/types.Type is the analyzer-facing mirror of this grammar.
type Type interface {
	Node
	typeNode()
}

// PrimKind enumerates the primitive scalar types.
type PrimKind int

const (
	I8 PrimKind = iota
	I16
	I32
	I64
	I128
	I256
	U8
	U16
	U32
	U64
	U128
	U256
	F8
	F16
	F32
	F64
	Bool
	Str
	StringK
	Void
)

var primNames = map[PrimKind]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64", I128: "i128", I256: "i256",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64", U128: "u128", U256: "u256",
	F8: "f8", F16: "f16", F32: "f32", F64: "f64",
	Bool: "bool", Str: "str", StringK: "String", Void: "void",
}

// PrimType is a primitive integer, float, bool, str/String, or void type.
type PrimType struct {
	Kind PrimKind
	Pos  Pos
}

func (p *PrimType) String() string { return primNames[p.Kind] }
func (p *PrimType) Position() Pos  { return p.Pos }
func (p *PrimType) typeNode()      {}

// IsInt reports whether the primitive is a signed or unsigned integer.
func (p *PrimType) IsInt() bool { return p.Kind >= I8 && p.Kind <= U256 }

// IsSigned reports whether the primitive is a signed integer type.
func (p *PrimType) IsSigned() bool { return p.Kind >= I8 && p.Kind <= I256 }

// IsFloat reports whether the primitive is a float type.
func (p *PrimType) IsFloat() bool { return p.Kind >= F8 && p.Kind <= F64 }

// BitWidth returns the storage width in bits for integer/float kinds.
func (p *PrimType) BitWidth() int {
	switch p.Kind {
	case I8, U8, F8:
		return 8
	case I16, U16, F16:
		return 16
	case I32, U32, F32:
		return 32
	case I64, U64, F64:
		return 64
	case I128, U128:
		return 128
	case I256, U256:
		return 256
	case Bool:
		return 1
	}
	return 0
}

// Reference is a non-owning borrow of Inner with a single-bit mutability.
type Reference struct {
	Inner     Type
	IsMutable bool
	Pos       Pos
}

func (r *Reference) String() string {
	if r.IsMutable {
		return "&mut " + r.Inner.String()
	}
	return "&" + r.Inner.String()
}
func (r *Reference) Position() Pos { return r.Pos }
func (r *Reference) typeNode()     {}

// ArrayType is a homogeneous array of Element.
type ArrayType struct {
	Element Type
	Pos     Pos
}

func (a *ArrayType) String() string { return fmt.Sprintf("[%s]", a.Element.String()) }
func (a *ArrayType) Position() Pos  { return a.Pos }
func (a *ArrayType) typeNode()      {}

// TupleType is a fixed-arity heterogeneous product.
type TupleType struct {
	Elements []Type
	Pos      Pos
}

func (t *TupleType) String() string {
	elems := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
}
func (t *TupleType) Position() Pos { return t.Pos }
func (t *TupleType) typeNode()     {}

// FuncType is a function pointer type: (params) -> return.
type FuncType struct {
	Params []Type
	Return Type
	Pos    Pos
}

func (f *FuncType) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(params, ", "), f.Return.String())
}
func (f *FuncType) Position() Pos { return f.Pos }
func (f *FuncType) typeNode()     {}

// UserDefinedType references a named struct/enum/alias by name.
type UserDefinedType struct {
	Name string
	Pos  Pos
}

func (u *UserDefinedType) String() string { return u.Name }
func (u *UserDefinedType) Position() Pos  { return u.Pos }
func (u *UserDefinedType) typeNode()      {}

// GenericType is a generic instantiation: Name[Args...].
type GenericType struct {
	Name string
	Args []Type
	Pos  Pos
}

func (g *GenericType) String() string {
	args := make([]string, len(g.Args))
	for i, a := range g.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", g.Name, strings.Join(args, ", "))
}
func (g *GenericType) Position() Pos { return g.Pos }
func (g *GenericType) typeNode()     {}

// TypeVarType is a placeholder standing for an as-yet-unknown ground type,
// introduced by a type-parameter declaration.
type TypeVarType struct {
	Name string
	Pos  Pos
}

func (t *TypeVarType) String() string { return t.Name }
func (t *TypeVarType) Position() Pos  { return t.Pos }
func (t *TypeVarType) typeNode()      {}
