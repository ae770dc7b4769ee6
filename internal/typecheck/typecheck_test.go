package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/symtab"
	"github.com/yuniruyuni/yunic/internal/typeenv"
	"github.com/yuniruyuni/yunic/internal/types"
)

func TestResolveASTType_Primitives(t *testing.T) {
	reg := symtab.NewTypeRegistry()
	ty, err := ResolveASTType(&ast.PrimType{Kind: ast.I32}, reg, nil)
	require.NoError(t, err)
	assert.Equal(t, &types.TInt{Kind: types.I32}, ty)

	ty, err = ResolveASTType(&ast.PrimType{Kind: ast.Bool}, reg, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Bool, ty)

	ty, err = ResolveASTType(&ast.PrimType{Kind: ast.StringK}, reg, nil)
	require.NoError(t, err)
	assert.Equal(t, types.String, ty)
}

func TestResolveASTType_Reference(t *testing.T) {
	reg := symtab.NewTypeRegistry()
	ty, err := ResolveASTType(&ast.Reference{Inner: &ast.PrimType{Kind: ast.I32}, IsMutable: true}, reg, nil)
	require.NoError(t, err)
	ref, ok := ty.(*types.TReference)
	require.True(t, ok)
	assert.True(t, ref.IsMutable)
	assert.Equal(t, &types.TInt{Kind: types.I32}, ref.Inner)
}

func TestResolveASTType_UnknownUserDefinedTypeErrors(t *testing.T) {
	reg := symtab.NewTypeRegistry()
	_, err := ResolveASTType(&ast.UserDefinedType{Name: "Missing"}, reg, nil)
	assert.Error(t, err)
}

func TestResolveASTType_UserDefinedTypeRegistered(t *testing.T) {
	reg := symtab.NewTypeRegistry()
	reg.RegisterType(&symtab.TypeDefInfo{Name: "Point"})
	ty, err := ResolveASTType(&ast.UserDefinedType{Name: "Point"}, reg, nil)
	require.NoError(t, err)
	assert.Equal(t, &types.TUserDefined{Name: "Point"}, ty)
}

func TestResolveASTType_TypeVarResolvedFromScope(t *testing.T) {
	reg := symtab.NewTypeRegistry()
	scope := typeenv.NewScope(nil)
	tv, _ := scope.Declare("T")
	ty, err := ResolveASTType(&ast.TypeVarType{Name: "T"}, reg, scope)
	require.NoError(t, err)
	assert.Same(t, tv, ty)
}

func TestResolveASTType_UnresolvedTypeVarErrors(t *testing.T) {
	reg := symtab.NewTypeRegistry()
	_, err := ResolveASTType(&ast.TypeVarType{Name: "T"}, reg, nil)
	assert.Error(t, err)
}

func TestResolveASTType_GenericTypeArgs(t *testing.T) {
	reg := symtab.NewTypeRegistry()
	reg.RegisterType(&symtab.TypeDefInfo{Name: "Box", TypeParams: []string{"T"}})
	ty, err := ResolveASTType(&ast.GenericType{Name: "Box", Args: []ast.Type{&ast.PrimType{Kind: ast.I32}}}, reg, nil)
	require.NoError(t, err)
	gt, ok := ty.(*types.TGeneric)
	require.True(t, ok)
	assert.Equal(t, "Box", gt.Name)
	assert.Equal(t, &types.TInt{Kind: types.I32}, gt.Args[0])
}

func TestValidateType_UnknownUserDefinedErrors(t *testing.T) {
	reg := symtab.NewTypeRegistry()
	err := ValidateType(&types.TUserDefined{Name: "Missing"}, reg)
	assert.Error(t, err)
}

func TestValidateType_GenericArityMismatchErrors(t *testing.T) {
	reg := symtab.NewTypeRegistry()
	reg.RegisterType(&symtab.TypeDefInfo{Name: "Box", TypeParams: []string{"T"}})
	err := ValidateType(&types.TGeneric{Name: "Box", Args: []types.Type{types.I32Type, types.Bool}}, reg)
	assert.Error(t, err)
}

func TestValidateType_ValidNestedType(t *testing.T) {
	reg := symtab.NewTypeRegistry()
	reg.RegisterType(&symtab.TypeDefInfo{Name: "Box", TypeParams: []string{"T"}})
	err := ValidateType(&types.TArray{Element: &types.TGeneric{Name: "Box", Args: []types.Type{types.I32Type}}}, reg)
	assert.NoError(t, err)
}

func TestCheckTypeCompatibility_ExactMatch(t *testing.T) {
	assert.True(t, CheckTypeCompatibility(types.I32Type, types.I32Type))
	assert.False(t, CheckTypeCompatibility(types.I32Type, types.Bool))
}

func TestCheckTypeCompatibility_MutableReborrowsToShared(t *testing.T) {
	mutRef := &types.TReference{Inner: types.I32Type, IsMutable: true}
	sharedRef := &types.TReference{Inner: types.I32Type, IsMutable: false}
	assert.True(t, CheckTypeCompatibility(mutRef, sharedRef))
	assert.False(t, CheckTypeCompatibility(sharedRef, mutRef))
}

func TestBinaryOpResultType_Arithmetic(t *testing.T) {
	ty, err := BinaryOpResultType(ast.OpAdd, types.I32Type, types.I32Type)
	require.NoError(t, err)
	assert.Equal(t, types.I32Type, ty)

	_, err = BinaryOpResultType(ast.OpAdd, types.I32Type, types.Bool)
	assert.Error(t, err)
}

func TestBinaryOpResultType_Comparison(t *testing.T) {
	ty, err := BinaryOpResultType(ast.OpLt, types.I32Type, types.I32Type)
	require.NoError(t, err)
	assert.Equal(t, types.Bool, ty)
}

func TestBinaryOpResultType_Equality(t *testing.T) {
	ty, err := BinaryOpResultType(ast.OpEq, types.Bool, types.Bool)
	require.NoError(t, err)
	assert.Equal(t, types.Bool, ty)

	_, err = BinaryOpResultType(ast.OpEq, types.I32Type, types.Bool)
	assert.Error(t, err)
}

func TestBinaryOpResultType_LogicalRequiresBool(t *testing.T) {
	ty, err := BinaryOpResultType(ast.OpAnd, types.Bool, types.Bool)
	require.NoError(t, err)
	assert.Equal(t, types.Bool, ty)

	_, err = BinaryOpResultType(ast.OpAnd, types.I32Type, types.Bool)
	assert.Error(t, err)
}

func TestBinaryOpResultType_BitwiseRequiresInteger(t *testing.T) {
	_, err := BinaryOpResultType(ast.OpBitAnd, types.I32Type, types.I32Type)
	assert.NoError(t, err)

	_, err = BinaryOpResultType(ast.OpBitAnd, &types.TFloat{Kind: types.F64}, &types.TFloat{Kind: types.F64})
	assert.Error(t, err)
}

func TestUnaryOpResultType_Not(t *testing.T) {
	ty, err := UnaryOpResultType(ast.OpNot, types.Bool)
	require.NoError(t, err)
	assert.Equal(t, types.Bool, ty)

	_, err = UnaryOpResultType(ast.OpNot, types.I32Type)
	assert.Error(t, err)
}

func TestUnaryOpResultType_NegRejectsUnsigned(t *testing.T) {
	_, err := UnaryOpResultType(ast.OpNeg, &types.TInt{Kind: types.U32})
	assert.Error(t, err)

	ty, err := UnaryOpResultType(ast.OpNeg, types.I32Type)
	require.NoError(t, err)
	assert.Equal(t, types.I32Type, ty)
}

func TestGetFieldType_DerefsReference(t *testing.T) {
	fields := map[string]types.Type{"x": types.I32Type}
	ty, err := GetFieldType(fields, &types.TReference{Inner: &types.TUserDefined{Name: "Point"}}, "x")
	require.NoError(t, err)
	assert.Equal(t, types.I32Type, ty)
}

func TestGetFieldType_UnknownFieldErrors(t *testing.T) {
	fields := map[string]types.Type{"x": types.I32Type}
	_, err := GetFieldType(fields, &types.TUserDefined{Name: "Point"}, "y")
	assert.Error(t, err)
}
