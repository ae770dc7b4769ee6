// Package ast defines the in-memory AST contract shared by the semantic
// analyzer, the monomorphizer, and the code generator. Lexing and parsing
// are out of scope for this module (see SPEC_FULL.md §1); a JSON-serialized
// AST is produced by an external parser or by internal/astdecode's test
// fixtures and fed straight into this package's types.
package ast

import (
	"fmt"
)

// Node is the base interface for all AST nodes.
type Node interface {
	String() string
	Position() Pos
}

// Pos represents a position in the source code.
type Pos struct {
	Line   int
	Column int
	File   string
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span represents a range in source code, used by diagnostics.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.Start.String(), s.End.Line, s.End.Column)
}

// Program is the root of a compilation unit: Program { package, imports, items }.
type Program struct {
	Package string
	Imports []*Import
	Items   []Item
	Pos     Pos
}

func (p *Program) String() string { return fmt.Sprintf("package %s (%d items)", p.Package, len(p.Items)) }
func (p *Program) Position() Pos  { return p.Pos }

// Import is parsed externally; the core only carries the path through.
type Import struct {
	Path string
	Pos  Pos
}

func (i *Import) String() string { return "import " + i.Path }
func (i *Import) Position() Pos  { return i.Pos }

// Item is one of Function | Method | TypeDef.
type Item interface {
	Node
	itemNode()
}

// LivesConstraint captures a single `target: source, ...` entry of a
// function's `lives` clause (§4.5): each of Sources must outlive Target.
type LivesConstraint struct {
	Target  string
	Sources []string
}

// Param is a single (name, type) function parameter.
type Param struct {
	Name string
	Type Type
	Pos  Pos
}

// FuncDecl is a top-level (possibly generic) function definition.
type FuncDecl struct {
	Name       string
	TypeParams []string
	Params     []*Param
	ReturnType Type
	Lives      []LivesConstraint
	Body       *Block
	Pos        Pos
}

func (f *FuncDecl) String() string { return "fn " + f.Name }
func (f *FuncDecl) Position() Pos  { return f.Pos }
func (f *FuncDecl) itemNode()      {}

// MethodDecl is a method attached to a receiver type.
type MethodDecl struct {
	ReceiverType string
	ReceiverRef  *Reference // non-nil if the receiver is `&T`/`&mut T`
	Func         *FuncDecl
	Pos          Pos
}

func (m *MethodDecl) String() string { return m.ReceiverType + "." + m.Func.Name }
func (m *MethodDecl) Position() Pos  { return m.Pos }
func (m *MethodDecl) itemNode()      {}

// TypeDefKind discriminates TypeDef's payload.
type TypeDefKind int

const (
	TypeDefStruct TypeDefKind = iota
	TypeDefEnum
	TypeDefAlias
)

// FieldDef is a named, typed struct field.
type FieldDef struct {
	Name string
	Type Type
}

// EnumVariantKind discriminates an enum variant's payload shape.
type EnumVariantKind int

const (
	VariantUnit EnumVariantKind = iota
	VariantTuple
	VariantStruct
)

// EnumVariant is one arm of an enum's sum type.
type EnumVariant struct {
	Name         string
	Kind         EnumVariantKind
	TupleFields  []Type
	StructFields []FieldDef
}

// TypeDef declares a named type: struct, enum, or alias.
type TypeDef struct {
	Name       string
	TypeParams []string
	Kind       TypeDefKind
	Fields     []FieldDef    // Struct
	Variants   []EnumVariant // Enum
	Alias      Type          // Alias
	Methods    []*MethodDecl
	Pos        Pos
}

func (t *TypeDef) String() string { return "type " + t.Name }
func (t *TypeDef) Position() Pos  { return t.Pos }
func (t *TypeDef) itemNode()      {}

// Block is a braced sequence of statements. Used as an expression (see
// BlockExpr) it produces no value: its trailing expression statement's
// value is not propagated.
type Block struct {
	Stmts []Stmt
	Pos   Pos
}

func (b *Block) String() string { return fmt.Sprintf("{ %d stmts }", len(b.Stmts)) }
func (b *Block) Position() Pos  { return b.Pos }
