package mono

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuniruyuni/yunic/internal/ast"
)

func TestMangleType_Primitive(t *testing.T) {
	assert.Equal(t, "i32", MangleType(&ast.PrimType{Kind: ast.I32}))
	assert.Equal(t, "f64", MangleType(&ast.PrimType{Kind: ast.F64}))
}

func TestMangleType_UserDefined(t *testing.T) {
	assert.Equal(t, "Point", MangleType(&ast.UserDefinedType{Name: "Point"}))
}

func TestMangleType_Array(t *testing.T) {
	ty := &ast.ArrayType{Element: &ast.PrimType{Kind: ast.I32}}
	assert.Equal(t, "array_i32", MangleType(ty))
}

func TestMangleType_Reference(t *testing.T) {
	shared := &ast.Reference{Inner: &ast.PrimType{Kind: ast.I32}}
	mutable := &ast.Reference{Inner: &ast.PrimType{Kind: ast.I32}, IsMutable: true}
	assert.Equal(t, "ref_i32", MangleType(shared))
	assert.Equal(t, "ref_mut_i32", MangleType(mutable))
}

func TestMangleType_Tuple(t *testing.T) {
	ty := &ast.TupleType{Elements: []ast.Type{
		&ast.PrimType{Kind: ast.I32},
		&ast.PrimType{Kind: ast.Bool},
	}}
	assert.Equal(t, "tuple_i32_bool", MangleType(ty))
}

func TestMangleType_Func(t *testing.T) {
	ty := &ast.FuncType{
		Params: []ast.Type{&ast.PrimType{Kind: ast.I32}, &ast.PrimType{Kind: ast.I32}},
		Return: &ast.PrimType{Kind: ast.Bool},
	}
	assert.Equal(t, "fn_i32_i32_bool", MangleType(ty))
}

func TestMangleType_Generic(t *testing.T) {
	ty := &ast.GenericType{Name: "Box", Args: []ast.Type{&ast.PrimType{Kind: ast.I32}}}
	assert.Equal(t, "Box_i32", MangleType(ty))
}

func TestMangleType_TypeVar(t *testing.T) {
	assert.Equal(t, "T", MangleType(&ast.TypeVarType{Name: "T"}))
}

func TestMangleName_NoArgsReturnsBase(t *testing.T) {
	assert.Equal(t, "id", MangleName("id", nil))
}

func TestMangleName_SingleArg(t *testing.T) {
	assert.Equal(t, "id_i32", MangleName("id", []ast.Type{&ast.PrimType{Kind: ast.I32}}))
}

func TestMangleName_MultipleArgs(t *testing.T) {
	args := []ast.Type{&ast.PrimType{Kind: ast.I32}, &ast.PrimType{Kind: ast.F64}}
	assert.Equal(t, "pair_i32_f64", MangleName("pair", args))
}

// genericIdentityProgram builds `fn id<T>(x: T) -> T { return x; }` plus a
// call site `id<i32>(1)` inside a non-generic `main` function, mirroring the
// 03_generic_identity end-to-end fixture.
func genericIdentityProgram() *ast.Program {
	idFn := &ast.FuncDecl{
		Name:       "id",
		TypeParams: []string{"T"},
		Params:     []*ast.Param{{Name: "x", Type: &ast.TypeVarType{Name: "T"}}},
		ReturnType: &ast.TypeVarType{Name: "T"},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.Identifier{Name: "x"}},
		}},
	}
	call := &ast.CallExpr{
		Callee:           &ast.Identifier{Name: "id"},
		ExplicitTypeArgs: []ast.Type{&ast.PrimType{Kind: ast.I32}},
		Args:             []ast.Expr{&ast.IntLit{Value: 1}},
	}
	mainFn := &ast.FuncDecl{
		Name:       "main",
		ReturnType: &ast.PrimType{Kind: ast.Void},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{Expr: call},
		}},
	}
	return &ast.Program{Package: "main", Items: []ast.Item{idFn, mainFn}}
}

func TestMonomorphizer_Run_InstantiatesGenericFunction(t *testing.T) {
	prog := genericIdentityProgram()
	m := NewMonomorphizer()
	out := m.Run(prog)

	require.Equal(t, []string{"id_i32"}, m.Mangled)

	var names []string
	for _, item := range out.Items {
		if fn, ok := item.(*ast.FuncDecl); ok {
			names = append(names, fn.Name)
		}
	}
	assert.Contains(t, names, "id_i32")
	assert.Contains(t, names, "main")
	assert.NotContains(t, names, "id")
}

func TestMonomorphizer_Run_RewritesCallSite(t *testing.T) {
	prog := genericIdentityProgram()
	m := NewMonomorphizer()
	out := m.Run(prog)

	var mainFn *ast.FuncDecl
	for _, item := range out.Items {
		if fn, ok := item.(*ast.FuncDecl); ok && fn.Name == "main" {
			mainFn = fn
		}
	}
	require.NotNil(t, mainFn)

	exprStmt, ok := mainFn.Body.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.Expr.(*ast.CallExpr)
	require.True(t, ok)
	callee, ok := call.Callee.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "id_i32", callee.Name)
	assert.Empty(t, call.ExplicitTypeArgs)
}

func TestMonomorphizer_Run_ClonedFuncHasSubstitutedTypes(t *testing.T) {
	prog := genericIdentityProgram()
	m := NewMonomorphizer()
	out := m.Run(prog)

	var idI32 *ast.FuncDecl
	for _, item := range out.Items {
		if fn, ok := item.(*ast.FuncDecl); ok && fn.Name == "id_i32" {
			idI32 = fn
		}
	}
	require.NotNil(t, idI32)
	assert.Empty(t, idI32.TypeParams)
	require.Len(t, idI32.Params, 1)
	assert.Equal(t, "i32", idI32.Params[0].Type.(*ast.PrimType).String())
	assert.Equal(t, "i32", idI32.ReturnType.(*ast.PrimType).String())
}

func TestMonomorphizer_Run_NoGenericsIsNoop(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:       "plain",
		ReturnType: &ast.PrimType{Kind: ast.Void},
		Body:       &ast.Block{},
	}
	prog := &ast.Program{Package: "main", Items: []ast.Item{fn}}

	m := NewMonomorphizer()
	out := m.Run(prog)

	assert.Empty(t, m.Mangled)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "plain", out.Items[0].(*ast.FuncDecl).Name)
}

func TestMonomorphizer_Run_GenericStructLiteral(t *testing.T) {
	boxDef := &ast.TypeDef{
		Name:       "Box",
		TypeParams: []string{"T"},
		Kind:       ast.TypeDefStruct,
		Fields:     []ast.FieldDef{{Name: "value", Type: &ast.TypeVarType{Name: "T"}}},
	}
	lit := &ast.StructLitExpr{
		TypeName: "Box",
		TypeArgs: []ast.Type{&ast.PrimType{Kind: ast.I32}},
		Fields:   []ast.StructLitField{{Name: "value", Value: &ast.IntLit{Value: 1}}},
	}
	mainFn := &ast.FuncDecl{
		Name:       "main",
		ReturnType: &ast.PrimType{Kind: ast.Void},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.LetStmt{Name: "b", Value: lit},
		}},
	}
	prog := &ast.Program{Package: "main", Items: []ast.Item{boxDef, mainFn}}

	m := NewMonomorphizer()
	out := m.Run(prog)

	require.Equal(t, []string{"Box_i32"}, m.Mangled)

	var names []string
	for _, item := range out.Items {
		if td, ok := item.(*ast.TypeDef); ok {
			names = append(names, td.Name)
		}
	}
	assert.Contains(t, names, "Box_i32")
	assert.NotContains(t, names, "Box")

	var rewrittenMain *ast.FuncDecl
	for _, item := range out.Items {
		if fn, ok := item.(*ast.FuncDecl); ok && fn.Name == "main" {
			rewrittenMain = fn
		}
	}
	require.NotNil(t, rewrittenMain)
	letStmt, ok := rewrittenMain.Body.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	structLit, ok := letStmt.Value.(*ast.StructLitExpr)
	require.True(t, ok)
	assert.Equal(t, "Box_i32", structLit.TypeName)
	assert.Empty(t, structLit.TypeArgs)
}
