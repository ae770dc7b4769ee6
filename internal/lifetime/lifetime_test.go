package lifetime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_ScopeNesting(t *testing.T) {
	c := NewContext()
	assert.Equal(t, 0, c.CurrentScope())

	child := c.PushScope()
	assert.Equal(t, child, c.CurrentScope())
	assert.NotEqual(t, 0, child)

	c.PopScope()
	assert.Equal(t, 0, c.CurrentScope())
}

func TestContext_NewAnonymousLifetimeIncrementsCount(t *testing.T) {
	c := NewContext()
	assert.Equal(t, 0, c.LifetimeCount())

	l1 := c.NewAnonymousLifetime()
	l2 := c.NewAnonymousLifetime()
	assert.NotEqual(t, l1, l2)
	assert.Equal(t, 2, c.LifetimeCount())
}

func TestContext_DeclareNamedIsIdempotent(t *testing.T) {
	c := NewContext()
	id1 := c.DeclareNamed("a")
	id2 := c.DeclareNamed("a")
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, c.LifetimeCount())

	resolved, ok := c.ResolveNamed("a")
	require.True(t, ok)
	assert.Equal(t, id1, resolved)

	_, ok = c.ResolveNamed("b")
	assert.False(t, ok)
}

func TestContext_DoesOutliveReflexiveAndStatic(t *testing.T) {
	c := NewContext()
	l1 := c.NewAnonymousLifetime()
	assert.True(t, c.DoesOutlive(l1, l1))
	assert.True(t, c.DoesOutlive(Static, l1))
}

func TestContext_DoesOutliveViaConstraint(t *testing.T) {
	c := NewContext()
	outer := c.DeclareNamed("outer")
	inner := c.DeclareNamed("inner")
	c.AddOutlivesConstraint(outer, inner)
	assert.True(t, c.DoesOutlive(outer, inner))
	assert.False(t, c.DoesOutlive(inner, outer))
}

func TestContext_ConstraintTargetsDedupesInOrder(t *testing.T) {
	c := NewContext()
	outer := c.DeclareNamed("outer")
	inner := c.DeclareNamed("inner")
	other := c.DeclareNamed("other")
	c.AddOutlivesConstraint(outer, inner)
	c.AddOutlivesConstraint(other, inner)

	assert.Equal(t, []int{inner}, c.ConstraintTargets())
}

func TestContext_VerifyConstraintsRejectsUnknownLifetime(t *testing.T) {
	c := NewContext()
	known := c.DeclareNamed("a")
	c.AddOutlivesConstraint(known, 999)
	assert.Error(t, c.VerifyConstraints())
}

func TestContext_VerifyConstraintsAcceptsStaticAndKnown(t *testing.T) {
	c := NewContext()
	known := c.DeclareNamed("a")
	c.AddOutlivesConstraint(known, Static)
	assert.NoError(t, c.VerifyConstraints())
}

func TestContext_CheckBorrowsAllowsMultipleShared(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.CheckBorrows("v", Shared))
	c.AddBorrow("v", Shared, c.NewAnonymousLifetime())
	assert.NoError(t, c.CheckBorrows("v", Shared))
}

func TestContext_CheckBorrowsRejectsSecondMutable(t *testing.T) {
	c := NewContext()
	c.AddBorrow("v", Mutable, c.NewAnonymousLifetime())
	assert.Error(t, c.CheckBorrows("v", Mutable))
	assert.Error(t, c.CheckBorrows("v", Shared))
}

func TestContext_ActiveBorrowsAndClear(t *testing.T) {
	c := NewContext()
	life := c.NewAnonymousLifetime()
	c.AddBorrow("v", Shared, life)
	assert.Len(t, c.ActiveBorrows("v"), 1)

	c.ClearBorrows("v")
	assert.Empty(t, c.ActiveBorrows("v"))
}

func TestContext_MoveTracking(t *testing.T) {
	c := NewContext()
	assert.False(t, c.IsMoved("s"))

	c.MarkMoved("s")
	assert.True(t, c.IsMoved("s"))

	c.UnmarkMoved("s")
	assert.False(t, c.IsMoved("s"))
}
