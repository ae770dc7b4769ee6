// Package typecheck resolves surface ast.Type syntax into internal/types
// values and implements the compatibility and operator-result rules used
// by the rest of the semantic analyzer (§4.2).
package typecheck

import (
	"fmt"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/symtab"
	"github.com/yuniruyuni/yunic/internal/typeenv"
	"github.com/yuniruyuni/yunic/internal/types"
)

var primKindToInt = map[ast.PrimKind]types.IntKind{
	ast.I8: types.I8, ast.I16: types.I16, ast.I32: types.I32, ast.I64: types.I64,
	ast.I128: types.I128, ast.I256: types.I256,
	ast.U8: types.U8, ast.U16: types.U16, ast.U32: types.U32, ast.U64: types.U64,
	ast.U128: types.U128, ast.U256: types.U256,
}

var primKindToFloat = map[ast.PrimKind]types.FloatKind{
	ast.F8: types.F8, ast.F16: types.F16, ast.F32: types.F32, ast.F64: types.F64,
}

// ResolveASTType converts a surface ast.Type into its internal/types
// representation, resolving UserDefinedType/GenericType names against reg
// and TypeVarType names against scope. It returns an error naming the
// unresolved identifier when reg or scope cannot find a match.
func ResolveASTType(t ast.Type, reg *symtab.TypeRegistry, scope *typeenv.Scope) (types.Type, error) {
	switch v := t.(type) {
	case *ast.PrimType:
		return resolvePrim(v.Kind), nil
	case *ast.Reference:
		inner, err := ResolveASTType(v.Inner, reg, scope)
		if err != nil {
			return nil, err
		}
		return &types.TReference{Inner: inner, IsMutable: v.IsMutable}, nil
	case *ast.ArrayType:
		elem, err := ResolveASTType(v.Element, reg, scope)
		if err != nil {
			return nil, err
		}
		return &types.TArray{Element: elem}, nil
	case *ast.TupleType:
		elems := make([]types.Type, len(v.Elements))
		for i, e := range v.Elements {
			resolved, err := ResolveASTType(e, reg, scope)
			if err != nil {
				return nil, err
			}
			elems[i] = resolved
		}
		return &types.TTuple{Elements: elems}, nil
	case *ast.FuncType:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			resolved, err := ResolveASTType(p, reg, scope)
			if err != nil {
				return nil, err
			}
			params[i] = resolved
		}
		ret, err := ResolveASTType(v.Return, reg, scope)
		if err != nil {
			return nil, err
		}
		return &types.TFunction{Params: params, Return: ret}, nil
	case *ast.UserDefinedType:
		if _, ok := reg.LookupType(v.Name); !ok {
			return nil, fmt.Errorf("unknown type %q", v.Name)
		}
		return &types.TUserDefined{Name: v.Name}, nil
	case *ast.GenericType:
		if _, ok := reg.LookupType(v.Name); !ok {
			return nil, fmt.Errorf("unknown generic type %q", v.Name)
		}
		args := make([]types.Type, len(v.Args))
		for i, a := range v.Args {
			resolved, err := ResolveASTType(a, reg, scope)
			if err != nil {
				return nil, err
			}
			args[i] = resolved
		}
		return &types.TGeneric{Name: v.Name, Args: args}, nil
	case *ast.TypeVarType:
		if scope != nil {
			if tv, ok := scope.Lookup(v.Name); ok {
				return tv, nil
			}
		}
		return nil, fmt.Errorf("unresolved type parameter %q", v.Name)
	default:
		return nil, fmt.Errorf("unhandled AST type node %T", t)
	}
}

func resolvePrim(k ast.PrimKind) types.Type {
	if ik, ok := primKindToInt[k]; ok {
		return &types.TInt{Kind: ik}
	}
	if fk, ok := primKindToFloat[k]; ok {
		return &types.TFloat{Kind: fk}
	}
	switch k {
	case ast.Bool:
		return types.Bool
	case ast.Str:
		return types.Str
	case ast.StringK:
		return types.String
	case ast.Void:
		return types.Void
	}
	return types.Void
}

// ValidateType reports whether t is well-formed: every TUserDefined and
// TGeneric name it mentions must exist in reg, and a TGeneric's argument
// count must match the definition's declared type-parameter count.
func ValidateType(t types.Type, reg *symtab.TypeRegistry) error {
	switch v := t.(type) {
	case *types.TUserDefined:
		if _, ok := reg.LookupType(v.Name); !ok {
			return fmt.Errorf("unknown type %q", v.Name)
		}
		return nil
	case *types.TGeneric:
		info, ok := reg.LookupType(v.Name)
		if !ok {
			return fmt.Errorf("unknown generic type %q", v.Name)
		}
		if len(info.TypeParams) != len(v.Args) {
			return fmt.Errorf("type %q expects %d type argument(s), got %d", v.Name, len(info.TypeParams), len(v.Args))
		}
		for _, a := range v.Args {
			if err := ValidateType(a, reg); err != nil {
				return err
			}
		}
		return nil
	case *types.TReference:
		return ValidateType(v.Inner, reg)
	case *types.TArray:
		return ValidateType(v.Element, reg)
	case *types.TTuple:
		for _, e := range v.Elements {
			if err := ValidateType(e, reg); err != nil {
				return err
			}
		}
		return nil
	case *types.TFunction:
		for _, p := range v.Params {
			if err := ValidateType(p, reg); err != nil {
				return err
			}
		}
		return ValidateType(v.Return, reg)
	default:
		return nil
	}
}

// CheckTypeCompatibility reports whether a value of type src can be used
// where dst is expected: an exact structural match, str and String in
// either direction, or src being a mutable reference where dst expects a
// shared one to the same inner type (reborrow).
func CheckTypeCompatibility(src, dst types.Type) bool {
	if src.Equals(dst) {
		return true
	}
	_, srcStr := src.(*types.TStr)
	_, srcString := src.(*types.TString)
	_, dstStr := dst.(*types.TStr)
	_, dstString := dst.(*types.TString)
	if (srcStr || srcString) && (dstStr || dstString) {
		return true
	}
	sref, sok := src.(*types.TReference)
	dref, dok := dst.(*types.TReference)
	if sok && dok && sref.IsMutable && !dref.IsMutable {
		return CheckTypeCompatibility(sref.Inner, dref.Inner)
	}
	return false
}
