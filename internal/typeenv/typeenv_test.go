package typeenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuniruyuni/yunic/internal/types"
)

func TestScope_DeclareAndLookup(t *testing.T) {
	scope := NewScope(nil)
	tv, ok := scope.Declare("T")
	require.True(t, ok)
	assert.Equal(t, "T", tv.Name)

	got, found := scope.Lookup("T")
	require.True(t, found)
	assert.Same(t, tv, got)
}

func TestScope_DeclareDuplicateInSameScopeFails(t *testing.T) {
	scope := NewScope(nil)
	_, ok := scope.Declare("T")
	require.True(t, ok)

	_, ok = scope.Declare("T")
	assert.False(t, ok)
}

func TestScope_LookupSearchesEnclosingScopes(t *testing.T) {
	outer := NewScope(nil)
	outer.Declare("T")
	inner := NewScope(outer)

	_, found := inner.Lookup("T")
	assert.True(t, found)

	_, found = inner.Lookup("U")
	assert.False(t, found)
}

func TestUnifier_UnifyTypeVariableBindsIt(t *testing.T) {
	u := NewUnifier()
	tv := &types.TypeVariable{Name: "T"}
	require.NoError(t, u.Unify(tv, types.I32Type))
	assert.Equal(t, types.I32Type, u.Resolve(tv))
}

func TestUnifier_UnifyGroundTypesMatch(t *testing.T) {
	u := NewUnifier()
	assert.NoError(t, u.Unify(types.I32Type, types.I32Type))
	assert.NoError(t, u.Unify(types.Bool, types.Bool))
}

func TestUnifier_UnifyGroundTypesMismatchErrors(t *testing.T) {
	u := NewUnifier()
	err := u.Unify(types.I32Type, types.Bool)
	assert.Error(t, err)
}

func TestUnifier_UnifyReferenceRequiresMatchingMutability(t *testing.T) {
	u := NewUnifier()
	a := &types.TReference{Inner: types.I32Type, IsMutable: true}
	b := &types.TReference{Inner: types.I32Type, IsMutable: false}
	assert.Error(t, u.Unify(a, b))

	u2 := NewUnifier()
	c := &types.TReference{Inner: types.I32Type, IsMutable: true}
	assert.NoError(t, u2.Unify(a, c))
}

func TestUnifier_UnifyTupleElementwise(t *testing.T) {
	u := NewUnifier()
	tv := &types.TypeVariable{Name: "T"}
	a := &types.TTuple{Elements: []types.Type{types.I32Type, tv}}
	b := &types.TTuple{Elements: []types.Type{types.I32Type, types.Bool}}
	require.NoError(t, u.Unify(a, b))
	assert.Equal(t, types.Bool, u.Resolve(tv))
}

func TestUnifier_UnifyTupleArityMismatchErrors(t *testing.T) {
	u := NewUnifier()
	a := &types.TTuple{Elements: []types.Type{types.I32Type}}
	b := &types.TTuple{Elements: []types.Type{types.I32Type, types.Bool}}
	assert.Error(t, u.Unify(a, b))
}

func TestUnifier_UnifyGenericInstantiation(t *testing.T) {
	u := NewUnifier()
	tv := &types.TypeVariable{Name: "T"}
	a := &types.TGeneric{Name: "Box", Args: []types.Type{tv}}
	b := &types.TGeneric{Name: "Box", Args: []types.Type{types.I32Type}}
	require.NoError(t, u.Unify(a, b))
	assert.Equal(t, types.I32Type, u.Resolve(tv))
}

func TestUnifier_UnifyGenericNameMismatchErrors(t *testing.T) {
	u := NewUnifier()
	a := &types.TGeneric{Name: "Box", Args: []types.Type{types.I32Type}}
	b := &types.TGeneric{Name: "Bag", Args: []types.Type{types.I32Type}}
	assert.Error(t, u.Unify(a, b))
}

func TestUnifier_UnifyOccursCheckRejectsInfiniteType(t *testing.T) {
	u := NewUnifier()
	tv := &types.TypeVariable{Name: "T"}
	arr := &types.TArray{Element: tv}
	err := u.Unify(tv, arr)
	assert.Error(t, err)
}

func TestUnifier_UnifyFunctionParamsAndReturn(t *testing.T) {
	u := NewUnifier()
	tv := &types.TypeVariable{Name: "T"}
	a := &types.TFunction{Params: []types.Type{tv}, Return: tv}
	b := &types.TFunction{Params: []types.Type{types.I32Type}, Return: types.I32Type}
	require.NoError(t, u.Unify(a, b))
	assert.Equal(t, types.I32Type, u.Resolve(tv))
}

func TestUnifier_ResolveChainsTransitiveBindings(t *testing.T) {
	u := NewUnifier()
	t1 := &types.TypeVariable{Name: "T1"}
	t2 := &types.TypeVariable{Name: "T2"}
	require.NoError(t, u.Unify(t1, t2))
	require.NoError(t, u.Unify(t2, types.I32Type))
	assert.Equal(t, types.I32Type, u.Resolve(t1))
}
