package ast

import (
	"fmt"
	"strings"
)

// Pattern nodes for pattern matching (§4.11).
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern always matches and binds nothing.
type WildcardPattern struct {
	Pos Pos
}

func (w *WildcardPattern) String() string { return "_" }
func (w *WildcardPattern) Position() Pos  { return w.Pos }
func (w *WildcardPattern) patternNode()   {}

// IdentifierPattern always matches and binds the scrutinee to Name.
type IdentifierPattern struct {
	Name string
	Pos  Pos
}

func (i *IdentifierPattern) String() string { return i.Name }
func (i *IdentifierPattern) Position() Pos  { return i.Pos }
func (i *IdentifierPattern) patternNode()   {}

// LiteralPattern matches by equality against a literal value.
type LiteralPattern struct {
	Value Expr // one of IntLit, FloatLit, StringLit, BoolLit
	Pos   Pos
}

func (l *LiteralPattern) String() string { return l.Value.String() }
func (l *LiteralPattern) Position() Pos  { return l.Pos }
func (l *LiteralPattern) patternNode()   {}

// TuplePattern recurses pointwise into a tuple's elements.
type TuplePattern struct {
	Elements []Pattern
	Pos      Pos
}

func (t *TuplePattern) String() string {
	elems := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
}
func (t *TuplePattern) Position() Pos { return t.Pos }
func (t *TuplePattern) patternNode()  {}

// StructFieldPattern binds one field of a StructPattern.
type StructFieldPattern struct {
	Name    string
	Pattern Pattern
}

// StructPattern recurses by field into a struct value.
type StructPattern struct {
	TypeName string
	Fields   []StructFieldPattern
	Pos      Pos
}

func (s *StructPattern) String() string {
	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Pattern)
	}
	return fmt.Sprintf("%s { %s }", s.TypeName, strings.Join(fields, ", "))
}
func (s *StructPattern) Position() Pos { return s.Pos }
func (s *StructPattern) patternNode()  {}

// EnumVariantPattern matches a specific variant of an enum type. Unit
// variants have no Elements/Fields; tuple variants populate Elements;
// struct variants populate Fields.
type EnumVariantPattern struct {
	EnumType string
	Variant  string
	Kind     EnumVariantKind
	Elements []Pattern
	Fields   []StructFieldPattern
	Pos      Pos
}

func (e *EnumVariantPattern) String() string {
	switch e.Kind {
	case VariantTuple:
		elems := make([]string, len(e.Elements))
		for i, p := range e.Elements {
			elems[i] = p.String()
		}
		return fmt.Sprintf("%s(%s)", e.Variant, strings.Join(elems, ", "))
	case VariantStruct:
		fields := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Pattern)
		}
		return fmt.Sprintf("%s { %s }", e.Variant, strings.Join(fields, ", "))
	default:
		return e.Variant
	}
}
func (e *EnumVariantPattern) Position() Pos { return e.Pos }
func (e *EnumVariantPattern) patternNode()  {}
