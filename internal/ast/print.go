package ast

import (
	"encoding/json"
	"fmt"
)

// Print produces a deterministic JSON representation of an AST node for
// golden snapshot testing. Positions are omitted so snapshots are stable
// across cosmetic source changes.
func Print(node Node) string {
	data, err := json.MarshalIndent(simplify(node), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// Compact returns a single-line JSON representation of node.
func Compact(node Node) string {
	data, err := json.Marshal(simplify(node))
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

func simplify(node interface{}) interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		return map[string]interface{}{
			"type":    "Program",
			"package": n.Package,
			"items":   simplifySlice(n.Items),
		}
	case *FuncDecl:
		m := map[string]interface{}{
			"type":   "FuncDecl",
			"name":   n.Name,
			"params": simplifyParams(n.Params),
			"return": simplify(n.ReturnType),
		}
		if len(n.TypeParams) > 0 {
			m["typeParams"] = n.TypeParams
		}
		if n.Body != nil {
			m["body"] = simplify(n.Body)
		}
		return m
	case *MethodDecl:
		return map[string]interface{}{
			"type":     "MethodDecl",
			"receiver": n.ReceiverType,
			"func":     simplify(n.Func),
		}
	case *TypeDef:
		return map[string]interface{}{
			"type": "TypeDef",
			"name": n.Name,
			"kind": n.Kind,
		}
	case *Block:
		stmts := make([]interface{}, len(n.Stmts))
		for i, s := range n.Stmts {
			stmts[i] = simplify(s)
		}
		return map[string]interface{}{"type": "Block", "stmts": stmts}
	case *LetStmt:
		return map[string]interface{}{
			"type":    "LetStmt",
			"name":    n.Name,
			"mutable": n.IsMutable,
			"value":   simplify(n.Value),
		}
	case *ReturnStmt:
		return map[string]interface{}{"type": "ReturnStmt", "value": simplify(n.Value)}
	case *ExprStmt:
		return map[string]interface{}{"type": "ExprStmt", "expr": simplify(n.Expr)}
	case *Identifier:
		return map[string]interface{}{"type": "Identifier", "name": n.Name}
	case *IntLit:
		return map[string]interface{}{"type": "IntLit", "value": n.Value, "suffix": n.Suffix}
	case *FloatLit:
		return map[string]interface{}{"type": "FloatLit", "value": n.Value, "suffix": n.Suffix}
	case *BoolLit:
		return map[string]interface{}{"type": "BoolLit", "value": n.Value}
	case *StringLit:
		return map[string]interface{}{"type": "StringLit", "value": n.Value}
	case *BinaryExpr:
		return map[string]interface{}{
			"type": "BinaryExpr", "op": n.Op.String(),
			"left": simplify(n.Left), "right": simplify(n.Right),
		}
	case *UnaryExpr:
		return map[string]interface{}{"type": "UnaryExpr", "op": n.Op.String(), "operand": simplify(n.Operand)}
	case *CastExpr:
		return map[string]interface{}{"type": "CastExpr", "value": simplify(n.Value), "to": simplify(n.Type)}
	case *CallExpr:
		return map[string]interface{}{
			"type": "CallExpr", "callee": simplify(n.Callee),
			"args": simplifyExprSlice(n.Args), "tail": n.IsTail,
		}
	case *FieldAccessExpr:
		return map[string]interface{}{"type": "FieldAccessExpr", "receiver": simplify(n.Receiver), "field": n.Field}
	case *MethodCallExpr:
		return map[string]interface{}{
			"type": "MethodCallExpr", "receiver": simplify(n.Receiver),
			"method": n.Method, "args": simplifyExprSlice(n.Args),
		}
	case *StructLitExpr:
		return map[string]interface{}{"type": "StructLitExpr", "typeName": n.TypeName}
	case *EnumLitExpr:
		return map[string]interface{}{"type": "EnumLitExpr", "enum": n.EnumType, "variant": n.Variant}
	case *ArrayLitExpr:
		return map[string]interface{}{"type": "ArrayLitExpr", "elements": simplifyExprSlice(n.Elements)}
	case *TupleLitExpr:
		return map[string]interface{}{"type": "TupleLitExpr", "elements": simplifyExprSlice(n.Elements)}
	case *IndexExpr:
		return map[string]interface{}{"type": "IndexExpr", "receiver": simplify(n.Receiver), "index": simplify(n.Index)}
	case *RefExpr:
		return map[string]interface{}{"type": "RefExpr", "mutable": n.IsMutable, "target": simplify(n.Target)}
	case *DerefExpr:
		return map[string]interface{}{"type": "DerefExpr", "target": simplify(n.Target)}
	case *AssignExpr:
		return map[string]interface{}{"type": "AssignExpr", "target": simplify(n.Target), "value": simplify(n.Value)}
	case *IfExpr:
		m := map[string]interface{}{"type": "IfExpr", "cond": simplify(n.Cond), "then": simplify(n.Then)}
		if n.Else != nil {
			m["else"] = simplify(n.Else)
		}
		return m
	case *WhileExpr:
		return map[string]interface{}{"type": "WhileExpr", "cond": simplify(n.Cond), "body": simplify(n.Body)}
	case *ForExpr:
		return map[string]interface{}{"type": "ForExpr", "body": simplify(n.Body)}
	case *MatchExpr:
		arms := make([]interface{}, len(n.Arms))
		for i, a := range n.Arms {
			arms[i] = map[string]interface{}{"pattern": simplify(a.Pattern), "body": simplify(a.Body)}
		}
		return map[string]interface{}{"type": "MatchExpr", "scrutinee": simplify(n.Scrutinee), "arms": arms}
	case *BlockExpr:
		return map[string]interface{}{"type": "BlockExpr", "block": simplify(n.Block)}
	case *WildcardPattern:
		return map[string]interface{}{"type": "WildcardPattern"}
	case *IdentifierPattern:
		return map[string]interface{}{"type": "IdentifierPattern", "name": n.Name}
	case *LiteralPattern:
		return map[string]interface{}{"type": "LiteralPattern", "value": simplify(n.Value)}
	case *TuplePattern:
		return map[string]interface{}{"type": "TuplePattern", "elements": simplifyPatternSlice(n.Elements)}
	case *StructPattern:
		return map[string]interface{}{"type": "StructPattern", "typeName": n.TypeName}
	case *EnumVariantPattern:
		return map[string]interface{}{"type": "EnumVariantPattern", "enum": n.EnumType, "variant": n.Variant}
	case *PrimType:
		return map[string]interface{}{"type": "PrimType", "name": n.String()}
	case *Reference:
		return map[string]interface{}{"type": "Reference", "mutable": n.IsMutable, "inner": simplify(n.Inner)}
	case *ArrayType:
		return map[string]interface{}{"type": "ArrayType", "element": simplify(n.Element)}
	case *TupleType:
		return map[string]interface{}{"type": "TupleType", "elements": simplifyTypeSlice(n.Elements)}
	case *FuncType:
		return map[string]interface{}{"type": "FuncType", "params": simplifyTypeSlice(n.Params), "return": simplify(n.Return)}
	case *UserDefinedType:
		return map[string]interface{}{"type": "UserDefinedType", "name": n.Name}
	case *GenericType:
		return map[string]interface{}{"type": "GenericType", "name": n.Name, "args": simplifyTypeSlice(n.Args)}
	case *TypeVarType:
		return map[string]interface{}{"type": "TypeVarType", "name": n.Name}
	default:
		return map[string]interface{}{"type": fmt.Sprintf("%T", node), "_note": "unhandled by printer"}
	}
}

func simplifySlice(items []Item) []interface{} {
	result := make([]interface{}, len(items))
	for i, it := range items {
		result[i] = simplify(it)
	}
	return result
}

func simplifyExprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = simplify(e)
	}
	return result
}

func simplifyTypeSlice(types []Type) []interface{} {
	result := make([]interface{}, len(types))
	for i, t := range types {
		result[i] = simplify(t)
	}
	return result
}

func simplifyPatternSlice(patterns []Pattern) []interface{} {
	result := make([]interface{}, len(patterns))
	for i, p := range patterns {
		result[i] = simplify(p)
	}
	return result
}

func simplifyParams(params []*Param) []interface{} {
	result := make([]interface{}, len(params))
	for i, p := range params {
		result[i] = map[string]interface{}{"name": p.Name, "type": simplify(p.Type)}
	}
	return result
}
