package irtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/go-llvm"

	"github.com/yuniruyuni/yunic/internal/types"
)

func newManager() *Manager {
	ctx := llvm.NewContext()
	return NewManager(ctx, nil)
}

func TestLowerInt_Width(t *testing.T) {
	m := newManager()
	assert.Equal(t, 32, m.LowerInt(types.I32).IntTypeWidth())
	assert.Equal(t, 64, m.LowerInt(types.I64).IntTypeWidth())
}

func TestLowerFloat_NarrowIsFloat(t *testing.T) {
	m := newManager()
	ft := m.LowerFloat(types.F32)
	assert.Equal(t, llvm.FloatTypeKind, ft.TypeKind())
}

func TestLowerFloat_WideIsDouble(t *testing.T) {
	m := newManager()
	ft := m.LowerFloat(types.F64)
	assert.Equal(t, llvm.DoubleTypeKind, ft.TypeKind())
}

func TestLower_Int(t *testing.T) {
	m := newManager()
	lt, err := m.Lower(types.I32Type)
	require.NoError(t, err)
	assert.Equal(t, 32, lt.IntTypeWidth())
}

func TestLower_Bool(t *testing.T) {
	m := newManager()
	lt, err := m.Lower(&types.TBool{})
	require.NoError(t, err)
	assert.Equal(t, llvm.IntegerTypeKind, lt.TypeKind())
	assert.Equal(t, 1, lt.IntTypeWidth())
}

func TestLower_Void(t *testing.T) {
	m := newManager()
	lt, err := m.Lower(&types.TVoid{})
	require.NoError(t, err)
	assert.Equal(t, llvm.VoidTypeKind, lt.TypeKind())
}

func TestLower_PointerLikeKinds(t *testing.T) {
	m := newManager()
	for _, ty := range []types.Type{
		&types.TStr{},
		&types.TString{},
		&types.TArray{Element: types.I32Type},
		&types.TReference{Inner: types.I32Type},
		&types.TFunction{Return: types.Void},
	} {
		lt, err := m.Lower(ty)
		require.NoError(t, err)
		assert.Equal(t, llvm.PointerTypeKind, lt.TypeKind())
	}
}

func TestLower_Tuple(t *testing.T) {
	m := newManager()
	lt, err := m.Lower(&types.TTuple{Elements: []types.Type{types.I32Type, types.F64Type}})
	require.NoError(t, err)
	assert.Equal(t, llvm.StructTypeKind, lt.TypeKind())
	assert.Len(t, lt.StructElementTypes(), 2)
}

func TestLower_UnregisteredUserDefinedErrors(t *testing.T) {
	m := newManager()
	_, err := m.Lower(&types.TUserDefined{Name: "Missing"})
	assert.Error(t, err)
}

func TestLower_RegisteredStructResolves(t *testing.T) {
	m := newManager()
	require.NoError(t, m.RegisterStruct("Point", []string{"x", "y"}, []types.Type{types.I32Type, types.I32Type}))

	lt, err := m.Lower(&types.TUserDefined{Name: "Point"})
	require.NoError(t, err)
	assert.Equal(t, llvm.StructTypeKind, lt.TypeKind())
}

func TestLower_RegisteredEnumResolvesToPointer(t *testing.T) {
	m := newManager()
	m.RegisterEnum("Option", []string{"None", "Some"}, false)

	lt, err := m.Lower(&types.TUserDefined{Name: "Option"})
	require.NoError(t, err)
	assert.Equal(t, llvm.PointerTypeKind, lt.TypeKind())
}

func TestLower_GenericDelegatesToUserDefinedByName(t *testing.T) {
	m := newManager()
	require.NoError(t, m.RegisterStruct("Box", []string{"value"}, []types.Type{types.I32Type}))

	lt, err := m.Lower(&types.TGeneric{Name: "Box", Args: []types.Type{types.I32Type}})
	require.NoError(t, err)
	assert.Equal(t, llvm.StructTypeKind, lt.TypeKind())
}

func TestPreDeclareThenFinalizeStruct_ForwardReference(t *testing.T) {
	m := newManager()
	m.PreDeclareStruct("Node")
	m.PreDeclareStruct("List")

	require.NoError(t, m.FinalizeStruct("List", []string{"head"}, []types.Type{&types.TReference{Inner: &types.TUserDefined{Name: "Node"}}}))
	require.NoError(t, m.FinalizeStruct("Node", []string{"value"}, []types.Type{types.I32Type}))

	idx, err := m.FieldIndex("List", "head")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestFinalizeStruct_WithoutPreDeclareErrors(t *testing.T) {
	m := newManager()
	err := m.FinalizeStruct("Never", nil, nil)
	assert.Error(t, err)
}

func TestRegisterStruct_FieldIndexAndLookup(t *testing.T) {
	m := newManager()
	require.NoError(t, m.RegisterStruct("Point", []string{"x", "y"}, []types.Type{types.I32Type, types.I32Type}))

	idx, err := m.FieldIndex("Point", "y")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	info, ok := m.LookupStruct("Point")
	require.True(t, ok)
	assert.Equal(t, 0, info.FieldIndex["x"])
}

func TestFieldIndex_UnknownStructErrors(t *testing.T) {
	m := newManager()
	_, err := m.FieldIndex("Missing", "x")
	assert.Error(t, err)
}

func TestFieldIndex_UnknownFieldErrors(t *testing.T) {
	m := newManager()
	require.NoError(t, m.RegisterStruct("Point", []string{"x"}, []types.Type{types.I32Type}))
	_, err := m.FieldIndex("Point", "z")
	assert.Error(t, err)
}

func TestRegisterEnum_VariantTagOrder(t *testing.T) {
	m := newManager()
	m.RegisterEnum("Color", []string{"Red", "Green", "Blue"}, true)

	info, ok := m.LookupEnum("Color")
	require.True(t, ok)
	assert.Equal(t, 0, info.VariantTag["Red"])
	assert.Equal(t, 1, info.VariantTag["Green"])
	assert.Equal(t, 2, info.VariantTag["Blue"])
	assert.True(t, info.PayloadFree)
}

func TestSetVariantPayload_WrapsTagAndPayload(t *testing.T) {
	m := newManager()
	m.RegisterEnum("Option", []string{"None", "Some"}, false)

	payload := m.LowerInt(types.I32)
	m.SetVariantPayload("Option", "Some", payload)

	info, ok := m.LookupEnum("Option")
	require.True(t, ok)
	wrapped, ok := info.PayloadTypes["Some"]
	require.True(t, ok)
	assert.Equal(t, llvm.StructTypeKind, wrapped.TypeKind())
	assert.Len(t, wrapped.StructElementTypes(), 2)
}

func TestSetVariantPayload_UnknownEnumIsNoop(t *testing.T) {
	m := newManager()
	assert.NotPanics(t, func() {
		m.SetVariantPayload("Missing", "Variant", m.LowerInt(types.I32))
	})
}

func TestLookupStruct_Missing(t *testing.T) {
	m := newManager()
	_, ok := m.LookupStruct("Missing")
	assert.False(t, ok)
}

func TestLookupEnum_Missing(t *testing.T) {
	m := newManager()
	_, ok := m.LookupEnum("Missing")
	assert.False(t, ok)
}
