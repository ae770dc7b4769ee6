package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/diag"
	"github.com/yuniruyuni/yunic/internal/symtab"
	"github.com/yuniruyuni/yunic/internal/typeenv"
	"github.com/yuniruyuni/yunic/internal/types"
)

func newInferCtx() (*inferCtx, *Driver) {
	d := New()
	scope := symtab.NewScope(nil)
	ic := &inferCtx{d: d, scope: scope, typeScope: typeenv.NewScope(nil), retType: types.Void}
	return ic, d
}

func TestInfer_IntLitDefaultsToI32(t *testing.T) {
	ic, _ := newInferCtx()
	ty := ic.infer(&ast.IntLit{Value: 1})
	assert.Equal(t, types.I32Type, ty)
}

func TestInfer_IntLitSuffix(t *testing.T) {
	ic, _ := newInferCtx()
	ty := ic.infer(&ast.IntLit{Value: 1, Suffix: "u64"})
	assert.Equal(t, &types.TInt{Kind: types.U64}, ty)
}

func TestInfer_FloatLitDefaultsToF64(t *testing.T) {
	ic, _ := newInferCtx()
	ty := ic.infer(&ast.FloatLit{Value: 1.5})
	assert.Equal(t, types.F64Type, ty)
}

func TestInfer_UndefinedIdentifierFails(t *testing.T) {
	ic, d := newInferCtx()
	ty := ic.infer(&ast.Identifier{Name: "missing"})
	assert.Equal(t, types.Void, ty)
	require.Len(t, d.Diagnostics(), 1)
	assert.Equal(t, diag.TCUndefinedVariable, d.Diagnostics()[0].Code)
}

func TestInfer_IdentifierResolvesToFunctionSignature(t *testing.T) {
	ic, d := newInferCtx()
	sig := &types.TFunction{Return: types.I32Type}
	d.Registry.RegisterFunc("helper", sig)
	ty := ic.infer(&ast.Identifier{Name: "helper"})
	assert.Same(t, sig, ty)
}

func TestInfer_BinaryArithmeticMatchingOperands(t *testing.T) {
	ic, _ := newInferCtx()
	ty := ic.infer(&ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 2}})
	assert.Equal(t, types.I32Type, ty)
}

func TestInfer_BinaryArithmeticMismatchFails(t *testing.T) {
	ic, d := newInferCtx()
	ty := ic.infer(&ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.IntLit{Value: 1}, Right: &ast.BoolLit{Value: true}})
	assert.Equal(t, types.Void, ty)
	require.Len(t, d.Diagnostics(), 1)
	assert.Equal(t, diag.TCInvalidOperation, d.Diagnostics()[0].Code)
}

func TestInfer_StringConcatenationViaPlus(t *testing.T) {
	ic, d := newInferCtx()
	ty := ic.infer(&ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.StringLit{Value: "a"}, Right: &ast.StringLit{Value: "b"}})
	assert.Equal(t, types.String, ty)
	assert.Empty(t, d.Diagnostics())
}

func TestInfer_CastExprResolvesTargetType(t *testing.T) {
	ic, _ := newInferCtx()
	ty := ic.infer(&ast.CastExpr{Value: &ast.IntLit{Value: 1}, Type: &ast.PrimType{Kind: ast.F64}})
	assert.Equal(t, &types.TFloat{Kind: types.F64}, ty)
}

func TestInfer_LetStmtDeclaredTypeMismatchFails(t *testing.T) {
	ic, d := newInferCtx()
	ic.checkStmt(&ast.LetStmt{Name: "x", Type: &ast.PrimType{Kind: ast.Bool}, Value: &ast.IntLit{Value: 1}})
	require.Len(t, d.Diagnostics(), 1)
	assert.Equal(t, diag.TCTypeMismatch, d.Diagnostics()[0].Code)
}

func TestInfer_LetStmtInfersTypeWhenUnannotated(t *testing.T) {
	ic, d := newInferCtx()
	ic.checkStmt(&ast.LetStmt{Name: "x", Value: &ast.IntLit{Value: 1}})
	assert.Empty(t, d.Diagnostics())
	sym, ok := ic.scope.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, types.I32Type, sym.Type)
}

func TestInfer_ReturnTypeMismatchFails(t *testing.T) {
	ic, d := newInferCtx()
	ic.retType = types.Bool
	ic.checkStmt(&ast.ReturnStmt{Value: &ast.IntLit{Value: 1}})
	require.Len(t, d.Diagnostics(), 1)
	assert.Equal(t, diag.TCTypeMismatch, d.Diagnostics()[0].Code)
}

func TestInfer_CallArgumentCountMismatch(t *testing.T) {
	ic, d := newInferCtx()
	d.Registry.RegisterFunc("add", &types.TFunction{Params: []types.Type{types.I32Type, types.I32Type}, Return: types.I32Type})
	ty := ic.infer(&ast.CallExpr{Callee: &ast.Identifier{Name: "add"}, Args: []ast.Expr{&ast.IntLit{Value: 1}}})
	assert.Equal(t, types.I32Type, ty)
	require.Len(t, d.Diagnostics(), 1)
	assert.Equal(t, diag.TCArgumentCountMismatch, d.Diagnostics()[0].Code)
}

func TestInfer_CallToUndefinedFunctionFails(t *testing.T) {
	ic, d := newInferCtx()
	ty := ic.infer(&ast.CallExpr{Callee: &ast.Identifier{Name: "missing"}})
	assert.Equal(t, types.Void, ty)
	require.Len(t, d.Diagnostics(), 1)
	assert.Equal(t, diag.TCUndefinedFunction, d.Diagnostics()[0].Code)
}

func TestInfer_FieldAccessOnStruct(t *testing.T) {
	ic, d := newInferCtx()
	info := &symtab.TypeDefInfo{
		Name:       "Point",
		FieldIndex: map[string]int{"x": 0},
		Fields:     []types.Type{types.I32Type},
	}
	d.Registry.RegisterType(info)
	ic.scope.Define(&symtab.Symbol{Name: "p", Type: &types.TUserDefined{Name: "Point"}})
	ty := ic.infer(&ast.FieldAccessExpr{Receiver: &ast.Identifier{Name: "p"}, Field: "x"})
	assert.Equal(t, types.I32Type, ty)
}

func TestInfer_FieldAccessUnknownFieldFails(t *testing.T) {
	ic, d := newInferCtx()
	d.Registry.RegisterType(&symtab.TypeDefInfo{Name: "Point", FieldIndex: map[string]int{}})
	ic.scope.Define(&symtab.Symbol{Name: "p", Type: &types.TUserDefined{Name: "Point"}})
	ty := ic.infer(&ast.FieldAccessExpr{Receiver: &ast.Identifier{Name: "p"}, Field: "missing"})
	assert.Equal(t, types.Void, ty)
	require.Len(t, d.Diagnostics(), 1)
	assert.Equal(t, diag.TCMethodNotFound, d.Diagnostics()[0].Code)
}

func TestInfer_MethodCallResolvesReturnType(t *testing.T) {
	ic, d := newInferCtx()
	info := &symtab.TypeDefInfo{Name: "Point"}
	info.RegisterMethod("magnitude", &types.TFunction{Return: types.I32Type})
	d.Registry.RegisterType(info)
	ic.scope.Define(&symtab.Symbol{Name: "p", Type: &types.TUserDefined{Name: "Point"}})
	ty := ic.infer(&ast.MethodCallExpr{Receiver: &ast.Identifier{Name: "p"}, Method: "magnitude"})
	assert.Equal(t, types.I32Type, ty)
}

func TestInfer_IndexExprOnArray(t *testing.T) {
	ic, _ := newInferCtx()
	ic.scope.Define(&symtab.Symbol{Name: "arr", Type: &types.TArray{Element: types.I32Type}})
	ty := ic.infer(&ast.IndexExpr{Receiver: &ast.Identifier{Name: "arr"}, Index: &ast.IntLit{Value: 0}})
	assert.Equal(t, types.I32Type, ty)
}

func TestInfer_RefAndDeref(t *testing.T) {
	ic, _ := newInferCtx()
	ic.scope.Define(&symtab.Symbol{Name: "v", Type: types.I32Type})
	refTy := ic.infer(&ast.RefExpr{Target: &ast.Identifier{Name: "v"}, IsMutable: true})
	ref, ok := refTy.(*types.TReference)
	require.True(t, ok)
	assert.True(t, ref.IsMutable)

	derefTy := ic.infer(&ast.DerefExpr{Target: &ast.RefExpr{Target: &ast.Identifier{Name: "v"}}})
	assert.Equal(t, types.I32Type, derefTy)
}

func TestInfer_IfConditionMustBeBool(t *testing.T) {
	ic, d := newInferCtx()
	ic.infer(&ast.IfExpr{Cond: &ast.IntLit{Value: 1}, Then: &ast.Block{}})
	require.Len(t, d.Diagnostics(), 1)
	assert.Equal(t, diag.TCInvalidOperation, d.Diagnostics()[0].Code)
}

func TestInfer_TupleLitElementwise(t *testing.T) {
	ic, _ := newInferCtx()
	ty := ic.infer(&ast.TupleLitExpr{Elements: []ast.Expr{&ast.IntLit{Value: 1}, &ast.BoolLit{Value: true}}})
	tup, ok := ty.(*types.TTuple)
	require.True(t, ok)
	assert.Equal(t, types.I32Type, tup.Elements[0])
	assert.Equal(t, types.Bool, tup.Elements[1])
}
