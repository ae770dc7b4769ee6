// Package typeenv implements the type-parameter scope stack and the
// first-order unifier used while checking generic function and type
// definitions.
package typeenv

import (
	"fmt"

	"github.com/yuniruyuni/yunic/internal/types"
)

// Scope binds a function or type definition's declared type parameters to
// fresh TypeVariable placeholders, nested so an inner generic context can
// shadow an outer one (e.g. a generic method on a generic struct).
type Scope struct {
	parent *Scope
	params map[string]*types.TypeVariable
}

// NewScope creates a type-parameter scope nested inside parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, params: make(map[string]*types.TypeVariable)}
}

// Declare introduces name as a type parameter visible in this scope,
// reporting false if it shadows a parameter already declared in THIS
// scope.
func (s *Scope) Declare(name string) (*types.TypeVariable, bool) {
	if _, exists := s.params[name]; exists {
		return nil, false
	}
	tv := &types.TypeVariable{Name: name}
	s.params[name] = tv
	return tv, true
}

// Lookup resolves name to its bound type variable, searching enclosing
// scopes.
func (s *Scope) Lookup(name string) (*types.TypeVariable, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if tv, ok := scope.params[name]; ok {
			return tv, true
		}
	}
	return nil, false
}

// Substitution maps type-variable names to concrete types, built up by
// Unify and consumed by types.Type.Substitute.
type Substitution map[string]types.Type

// Unifier performs first-order structural unification over the Type
// grammar, recording bindings for TypeVariable occurrences.
type Unifier struct {
	subst Substitution
}

// NewUnifier creates an empty unifier.
func NewUnifier() *Unifier {
	return &Unifier{subst: make(Substitution)}
}

// Substitution returns the accumulated variable bindings.
func (u *Unifier) Substitution() Substitution {
	return u.subst
}

// Resolve applies the unifier's current substitution to t, recursively
// resolving chained variable bindings.
func (u *Unifier) Resolve(t types.Type) types.Type {
	for {
		tv, ok := t.(*types.TypeVariable)
		if !ok {
			return t.Substitute(map[string]types.Type(u.subst))
		}
		bound, ok := u.subst[tv.Name]
		if !ok {
			return t
		}
		t = bound
	}
}

// Unify attempts to make a and b structurally equal by extending the
// unifier's substitution, returning an error describing the first
// mismatch encountered.
func (u *Unifier) Unify(a, b types.Type) error {
	a = u.Resolve(a)
	b = u.Resolve(b)

	if av, ok := a.(*types.TypeVariable); ok {
		return u.bind(av, b)
	}
	if bv, ok := b.(*types.TypeVariable); ok {
		return u.bind(bv, a)
	}

	switch av := a.(type) {
	case *types.TReference:
		bv, ok := b.(*types.TReference)
		if !ok || av.IsMutable != bv.IsMutable {
			return mismatch(a, b)
		}
		return u.Unify(av.Inner, bv.Inner)
	case *types.TArray:
		bv, ok := b.(*types.TArray)
		if !ok {
			return mismatch(a, b)
		}
		return u.Unify(av.Element, bv.Element)
	case *types.TTuple:
		bv, ok := b.(*types.TTuple)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return mismatch(a, b)
		}
		for i := range av.Elements {
			if err := u.Unify(av.Elements[i], bv.Elements[i]); err != nil {
				return err
			}
		}
		return nil
	case *types.TFunction:
		bv, ok := b.(*types.TFunction)
		if !ok || len(av.Params) != len(bv.Params) {
			return mismatch(a, b)
		}
		for i := range av.Params {
			if err := u.Unify(av.Params[i], bv.Params[i]); err != nil {
				return err
			}
		}
		return u.Unify(av.Return, bv.Return)
	case *types.TGeneric:
		bv, ok := b.(*types.TGeneric)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return mismatch(a, b)
		}
		for i := range av.Args {
			if err := u.Unify(av.Args[i], bv.Args[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		if a.Equals(b) {
			return nil
		}
		return mismatch(a, b)
	}
}

func (u *Unifier) bind(tv *types.TypeVariable, t types.Type) error {
	if other, ok := t.(*types.TypeVariable); ok && other.Name == tv.Name {
		return nil
	}
	if occurs(tv.Name, t) {
		return fmt.Errorf("infinite type: %s occurs in %s", tv.Name, t.String())
	}
	u.subst[tv.Name] = t
	return nil
}

func occurs(name string, t types.Type) bool {
	switch v := t.(type) {
	case *types.TypeVariable:
		return v.Name == name
	case *types.TReference:
		return occurs(name, v.Inner)
	case *types.TArray:
		return occurs(name, v.Element)
	case *types.TTuple:
		for _, e := range v.Elements {
			if occurs(name, e) {
				return true
			}
		}
		return false
	case *types.TFunction:
		for _, p := range v.Params {
			if occurs(name, p) {
				return true
			}
		}
		return occurs(name, v.Return)
	case *types.TGeneric:
		for _, a := range v.Args {
			if occurs(name, a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func mismatch(a, b types.Type) error {
	return fmt.Errorf("type mismatch: %s vs %s", a.String(), b.String())
}
