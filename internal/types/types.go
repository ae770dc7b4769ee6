// Package types is the semantic analyzer's own type representation (§3 of
// the specification), distinct from internal/ast's surface type syntax. The
// type checker resolves an ast.Type into one of these via ResolveASTType.
package types

import (
	"fmt"
	"strings"
)

// Type is a tagged sum of the language's ground and polymorphic types.
type Type interface {
	String() string
	Equals(Type) bool
	Substitute(map[string]Type) Type
}

// IntKind enumerates the signed/unsigned integer widths.
type IntKind int

const (
	I8 IntKind = iota
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
)

var intNames = map[IntKind]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64", I128: "i128", I256: "i256",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64", U128: "u128", U256: "u256",
}

var intWidths = map[IntKind]int{
	I8: 8, U8: 8, I16: 16, U16: 16, I32: 32, U32: 32,
	I64: 64, U64: 64, I128: 128, U128: 128, I256: 256, U256: 256,
}

// IsSigned reports whether k is a signed integer kind.
func (k IntKind) IsSigned() bool { return k <= I256 }

// Width returns the bit width of k.
func (k IntKind) Width() int { return intWidths[k] }

// TInt is an integer type of a specific width and signedness.
type TInt struct {
	Kind IntKind
}

func (t *TInt) String() string { return intNames[t.Kind] }
func (t *TInt) Equals(o Type) bool {
	other, ok := o.(*TInt)
	return ok && other.Kind == t.Kind
}
func (t *TInt) Substitute(map[string]Type) Type { return t }

// FloatKind enumerates float widths.
type FloatKind int

const (
	F8 FloatKind = iota
	F16
	F32
	F64
)

var floatNames = map[FloatKind]string{F8: "f8", F16: "f16", F32: "f32", F64: "f64"}
var floatWidths = map[FloatKind]int{F8: 8, F16: 16, F32: 32, F64: 64}

func (k FloatKind) Width() int { return floatWidths[k] }

// TFloat is a floating point type of a specific width.
type TFloat struct {
	Kind FloatKind
}

func (t *TFloat) String() string { return floatNames[t.Kind] }
func (t *TFloat) Equals(o Type) bool {
	other, ok := o.(*TFloat)
	return ok && other.Kind == t.Kind
}
func (t *TFloat) Substitute(map[string]Type) Type { return t }

// TBool is the boolean type.
type TBool struct{}

func (t *TBool) String() string                  { return "bool" }
func (t *TBool) Equals(o Type) bool              { _, ok := o.(*TBool); return ok }
func (t *TBool) Substitute(map[string]Type) Type { return t }

// TStr is a borrowed string view.
type TStr struct{}

func (t *TStr) String() string                  { return "str" }
func (t *TStr) Equals(o Type) bool              { _, ok := o.(*TStr); return ok }
func (t *TStr) Substitute(map[string]Type) Type { return t }

// TString is a heap-owned string.
type TString struct{}

func (t *TString) String() string                  { return "String" }
func (t *TString) Equals(o Type) bool              { _, ok := o.(*TString); return ok }
func (t *TString) Substitute(map[string]Type) Type { return t }

// TVoid is the unit/void return type.
type TVoid struct{}

func (t *TVoid) String() string                  { return "void" }
func (t *TVoid) Equals(o Type) bool              { _, ok := o.(*TVoid); return ok }
func (t *TVoid) Substitute(map[string]Type) Type { return t }

// TReference is a non-owning borrow of Inner with a single-bit mutability.
type TReference struct {
	Inner     Type
	IsMutable bool
}

func (t *TReference) String() string {
	if t.IsMutable {
		return "&mut " + t.Inner.String()
	}
	return "&" + t.Inner.String()
}
func (t *TReference) Equals(o Type) bool {
	other, ok := o.(*TReference)
	return ok && other.IsMutable == t.IsMutable && t.Inner.Equals(other.Inner)
}
func (t *TReference) Substitute(subs map[string]Type) Type {
	return &TReference{Inner: t.Inner.Substitute(subs), IsMutable: t.IsMutable}
}

// TArray is a homogeneous array type.
type TArray struct {
	Element Type
}

func (t *TArray) String() string { return fmt.Sprintf("[%s]", t.Element.String()) }
func (t *TArray) Equals(o Type) bool {
	other, ok := o.(*TArray)
	return ok && t.Element.Equals(other.Element)
}
func (t *TArray) Substitute(subs map[string]Type) Type {
	return &TArray{Element: t.Element.Substitute(subs)}
}

// TTuple is a fixed-arity heterogeneous product type.
type TTuple struct {
	Elements []Type
}

func (t *TTuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}
func (t *TTuple) Equals(o Type) bool {
	other, ok := o.(*TTuple)
	if !ok || len(t.Elements) != len(other.Elements) {
		return false
	}
	for i := range t.Elements {
		if !t.Elements[i].Equals(other.Elements[i]) {
			return false
		}
	}
	return true
}
func (t *TTuple) Substitute(subs map[string]Type) Type {
	elems := make([]Type, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = e.Substitute(subs)
	}
	return &TTuple{Elements: elems}
}

// TFunction is a function pointer type.
type TFunction struct {
	Params []Type
	Return Type
}

func (t *TFunction) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(params, ", "), t.Return.String())
}
func (t *TFunction) Equals(o Type) bool {
	other, ok := o.(*TFunction)
	if !ok || len(t.Params) != len(other.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equals(other.Params[i]) {
			return false
		}
	}
	return t.Return.Equals(other.Return)
}
func (t *TFunction) Substitute(subs map[string]Type) Type {
	params := make([]Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Substitute(subs)
	}
	return &TFunction{Params: params, Return: t.Return.Substitute(subs)}
}

// TUserDefined references a named struct/enum/alias by name (no type args).
type TUserDefined struct {
	Name string
}

func (t *TUserDefined) String() string { return t.Name }
func (t *TUserDefined) Equals(o Type) bool {
	other, ok := o.(*TUserDefined)
	return ok && other.Name == t.Name
}
func (t *TUserDefined) Substitute(map[string]Type) Type { return t }

// TGeneric is an instantiation of a generic struct/enum/function name.
type TGeneric struct {
	Name string
	Args []Type
}

func (t *TGeneric) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", t.Name, strings.Join(args, ", "))
}
func (t *TGeneric) Equals(o Type) bool {
	other, ok := o.(*TGeneric)
	if !ok || other.Name != t.Name || len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equals(other.Args[i]) {
			return false
		}
	}
	return true
}
func (t *TGeneric) Substitute(subs map[string]Type) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Substitute(subs)
	}
	return &TGeneric{Name: t.Name, Args: args}
}

// TypeVariable stands for an as-yet-unknown ground type, introduced by a
// type-parameter declaration (§4.3).
type TypeVariable struct {
	Name string
}

func (t *TypeVariable) String() string { return t.Name }
func (t *TypeVariable) Equals(o Type) bool {
	other, ok := o.(*TypeVariable)
	return ok && other.Name == t.Name
}
func (t *TypeVariable) Substitute(subs map[string]Type) Type {
	if sub, ok := subs[t.Name]; ok {
		return sub
	}
	return t
}

// Predefined common ground types. I32Type/F64Type (rather than I32/F64)
// avoid colliding with the IntKind/FloatKind constants of the same name.
var (
	Bool    = &TBool{}
	Str     = &TStr{}
	String  = &TString{}
	Void    = &TVoid{}
	I32Type = &TInt{Kind: I32}
	F64Type = &TFloat{Kind: F64}
)

// IsCopy implements §4.4's Copy-type classification: booleans, all integer
// and float primitives, and any reference type are Copy; everything else
// (String, Array, user-defined struct/enum, and tuples containing
// non-copy components) moves by default.
func IsCopy(t Type) bool {
	switch v := t.(type) {
	case *TBool, *TInt, *TFloat, *TReference:
		return true
	case *TTuple:
		for _, e := range v.Elements {
			if !IsCopy(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsInteger reports whether t is some integer width.
func IsInteger(t Type) bool {
	_, ok := t.(*TInt)
	return ok
}

// IsFloat reports whether t is some float width.
func IsFloat(t Type) bool {
	_, ok := t.(*TFloat)
	return ok
}

// IsNumeric reports whether t is an integer or float type.
func IsNumeric(t Type) bool {
	return IsInteger(t) || IsFloat(t)
}
