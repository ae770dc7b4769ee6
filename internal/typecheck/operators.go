package typecheck

import (
	"fmt"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/types"
)

// BinaryOpResultType computes the result type of applying op to operands
// of type left and right, or an error if the operator does not accept
// that operand combination.
func BinaryOpResultType(op ast.BinaryOp, left, right types.Type) (types.Type, error) {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if !left.Equals(right) || !types.IsNumeric(left) {
			return nil, fmt.Errorf("operator %s requires matching numeric operands, got %s and %s", op, left, right)
		}
		return left, nil
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		if !left.Equals(right) || !types.IsInteger(left) {
			return nil, fmt.Errorf("operator %s requires matching integer operands, got %s and %s", op, left, right)
		}
		return left, nil
	case ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe:
		if !left.Equals(right) || !types.IsNumeric(left) {
			return nil, fmt.Errorf("operator %s requires matching numeric operands, got %s and %s", op, left, right)
		}
		return types.Bool, nil
	case ast.OpEq, ast.OpNe:
		if !left.Equals(right) {
			return nil, fmt.Errorf("operator %s requires matching operand types, got %s and %s", op, left, right)
		}
		return types.Bool, nil
	case ast.OpAnd, ast.OpOr:
		if !isBool(left) || !isBool(right) {
			return nil, fmt.Errorf("operator %s requires bool operands, got %s and %s", op, left, right)
		}
		return types.Bool, nil
	default:
		return nil, fmt.Errorf("unknown binary operator %v", op)
	}
}

// UnaryOpResultType computes the result type of applying op to an operand
// of type operand, or an error if the operator does not accept it.
func UnaryOpResultType(op ast.UnaryOp, operand types.Type) (types.Type, error) {
	switch op {
	case ast.OpNot:
		if !isBool(operand) {
			return nil, fmt.Errorf("operator ! requires a bool operand, got %s", operand)
		}
		return types.Bool, nil
	case ast.OpNeg:
		if !types.IsNumeric(operand) {
			return nil, fmt.Errorf("unary - requires a numeric operand, got %s", operand)
		}
		if it, ok := operand.(*types.TInt); ok && !it.Kind.IsSigned() {
			return nil, fmt.Errorf("unary - cannot be applied to unsigned type %s", operand)
		}
		return operand, nil
	default:
		return nil, fmt.Errorf("unknown unary operator %v", op)
	}
}

func isBool(t types.Type) bool {
	_, ok := t.(*types.TBool)
	return ok
}

// GetFieldType resolves the type of field on a struct type, following one
// level of automatic reference deref (so `ref_to_struct.field` and
// `struct.field` both resolve), given that struct's declared field list.
func GetFieldType(fields map[string]types.Type, t types.Type, field string) (types.Type, error) {
	if ref, ok := t.(*types.TReference); ok {
		t = ref.Inner
	}
	ud, ok := t.(*types.TUserDefined)
	if !ok {
		if _, ok := t.(*types.TGeneric); !ok {
			return nil, fmt.Errorf("type %s has no fields", t)
		}
	} else {
		_ = ud
	}
	ft, ok := fields[field]
	if !ok {
		return nil, fmt.Errorf("type %s has no field %q", t, field)
	}
	return ft, nil
}
