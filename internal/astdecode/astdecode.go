// Package astdecode converts an untyped JSON document into internal/ast
// types. Lexing and parsing a yuni source file is out of scope for this
// module, so a JSON-serialized AST is the compiler's actual input
// boundary: the CLI and test fixtures both supply one instead of source
// text.
package astdecode

import (
	"encoding/json"
	"fmt"

	"github.com/yuniruyuni/yunic/internal/ast"
)

// DecodeError mirrors the teacher's argument-decode error: it names what
// was expected, what arrived, and why, so a bad fixture fails with a
// pointer back to the offending node rather than a bare type assertion
// panic.
type DecodeError struct {
	Expected string
	Got      string
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("AST_DECODE_MISMATCH: expected %s, got %s\n  %s", e.Expected, e.Got, e.Reason)
}

// DecodeProgram parses data as JSON and decodes it into an *ast.Program.
func DecodeProgram(data []byte) (*ast.Program, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &DecodeError{Expected: "Program object", Got: fmt.Sprintf("%T", raw), Reason: "top-level JSON value must be an object"}
	}
	return decodeProgram(obj)
}

type node = map[string]interface{}

func nodeType(n node) string {
	t, _ := n["type"].(string)
	return t
}

func field(n node, name string) (node, bool) {
	v, ok := n[name]
	if !ok || v == nil {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	return m, ok
}

func strField(n node, name string) string {
	s, _ := n[name].(string)
	return s
}

func boolField(n node, name string) bool {
	b, _ := n[name].(bool)
	return b
}

func intField(n node, name string) int64 {
	f, _ := n[name].(float64)
	return int64(f)
}

func floatField(n node, name string) float64 {
	f, _ := n[name].(float64)
	return f
}

func arrField(n node, name string) []interface{} {
	arr, _ := n[name].([]interface{})
	return arr
}

func decodePos(n node) ast.Pos {
	p, ok := field(n, "pos")
	if !ok {
		return ast.Pos{}
	}
	return ast.Pos{
		File:   strField(p, "file"),
		Line:   int(intField(p, "line")),
		Column: int(intField(p, "column")),
		Offset: int(intField(p, "offset")),
	}
}

func asObj(v interface{}, expected string) (node, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, &DecodeError{Expected: expected, Got: fmt.Sprintf("%v (%T)", v, v), Reason: "expected a JSON object"}
	}
	return m, nil
}

// --- Program / Items ---

func decodeProgram(n node) (*ast.Program, error) {
	prog := &ast.Program{Package: strField(n, "package"), Pos: decodePos(n)}
	for _, raw := range arrField(n, "imports") {
		obj, err := asObj(raw, "Import")
		if err != nil {
			return nil, err
		}
		prog.Imports = append(prog.Imports, &ast.Import{Path: strField(obj, "path"), Pos: decodePos(obj)})
	}
	for _, raw := range arrField(n, "items") {
		obj, err := asObj(raw, "Item")
		if err != nil {
			return nil, err
		}
		item, err := decodeItem(obj)
		if err != nil {
			return nil, err
		}
		prog.Items = append(prog.Items, item)
	}
	return prog, nil
}

func decodeItem(n node) (ast.Item, error) {
	switch nodeType(n) {
	case "FuncDecl":
		return decodeFuncDecl(n)
	case "MethodDecl":
		return decodeMethodDecl(n)
	case "TypeDef":
		return decodeTypeDef(n)
	default:
		return nil, &DecodeError{Expected: "FuncDecl|MethodDecl|TypeDef", Got: nodeType(n), Reason: "unknown item kind"}
	}
}

func decodeFuncDecl(n node) (*ast.FuncDecl, error) {
	fn := &ast.FuncDecl{Name: strField(n, "name"), Pos: decodePos(n)}
	for _, tp := range arrField(n, "typeParams") {
		s, _ := tp.(string)
		fn.TypeParams = append(fn.TypeParams, s)
	}
	for _, raw := range arrField(n, "params") {
		obj, err := asObj(raw, "Param")
		if err != nil {
			return nil, err
		}
		ty, err := decodeTypeField(obj, "type")
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, &ast.Param{Name: strField(obj, "name"), Type: ty, Pos: decodePos(obj)})
	}
	ret, err := decodeTypeField(n, "return")
	if err != nil {
		return nil, err
	}
	fn.ReturnType = ret
	for _, raw := range arrField(n, "lives") {
		obj, err := asObj(raw, "LivesConstraint")
		if err != nil {
			return nil, err
		}
		lc := ast.LivesConstraint{Target: strField(obj, "target")}
		for _, s := range arrField(obj, "sources") {
			str, _ := s.(string)
			lc.Sources = append(lc.Sources, str)
		}
		fn.Lives = append(fn.Lives, lc)
	}
	if bodyRaw, ok := n["body"]; ok && bodyRaw != nil {
		bodyObj, err := asObj(bodyRaw, "Block")
		if err != nil {
			return nil, err
		}
		block, err := decodeBlock(bodyObj)
		if err != nil {
			return nil, err
		}
		fn.Body = block
	}
	return fn, nil
}

func decodeMethodDecl(n node) (*ast.MethodDecl, error) {
	m := &ast.MethodDecl{ReceiverType: strField(n, "receiver"), Pos: decodePos(n)}
	if recvRefRaw, ok := field(n, "receiverRef"); ok {
		m.ReceiverRef = &ast.Reference{IsMutable: boolField(recvRefRaw, "mutable")}
	}
	fnObj, present := field(n, "func")
	if !present {
		return nil, &DecodeError{Expected: "FuncDecl", Got: "missing", Reason: "MethodDecl requires a func field"}
	}
	fn, err := decodeFuncDecl(fnObj)
	if err != nil {
		return nil, err
	}
	m.Func = fn
	return m, nil
}

func decodeTypeDef(n node) (*ast.TypeDef, error) {
	td := &ast.TypeDef{Name: strField(n, "name"), Pos: decodePos(n)}
	for _, tp := range arrField(n, "typeParams") {
		s, _ := tp.(string)
		td.TypeParams = append(td.TypeParams, s)
	}
	switch strField(n, "kind") {
	case "struct":
		td.Kind = ast.TypeDefStruct
	case "enum":
		td.Kind = ast.TypeDefEnum
	case "alias":
		td.Kind = ast.TypeDefAlias
	default:
		return nil, &DecodeError{Expected: "struct|enum|alias", Got: strField(n, "kind"), Reason: "unknown TypeDef kind"}
	}
	for _, raw := range arrField(n, "fields") {
		obj, err := asObj(raw, "FieldDef")
		if err != nil {
			return nil, err
		}
		ty, err := decodeTypeField(obj, "type")
		if err != nil {
			return nil, err
		}
		td.Fields = append(td.Fields, ast.FieldDef{Name: strField(obj, "name"), Type: ty})
	}
	for _, raw := range arrField(n, "variants") {
		obj, err := asObj(raw, "EnumVariant")
		if err != nil {
			return nil, err
		}
		v := ast.EnumVariant{Name: strField(obj, "name")}
		switch strField(obj, "kind") {
		case "tuple":
			v.Kind = ast.VariantTuple
			for _, t := range arrField(obj, "tupleFields") {
				tobj, err := asObj(t, "Type")
				if err != nil {
					return nil, err
				}
				ty, err := decodeType(tobj)
				if err != nil {
					return nil, err
				}
				v.TupleFields = append(v.TupleFields, ty)
			}
		case "struct":
			v.Kind = ast.VariantStruct
			for _, f := range arrField(obj, "structFields") {
				fobj, err := asObj(f, "FieldDef")
				if err != nil {
					return nil, err
				}
				ty, err := decodeTypeField(fobj, "type")
				if err != nil {
					return nil, err
				}
				v.StructFields = append(v.StructFields, ast.FieldDef{Name: strField(fobj, "name"), Type: ty})
			}
		default:
			v.Kind = ast.VariantUnit
		}
		td.Variants = append(td.Variants, v)
	}
	if aliasRaw, present := n["alias"]; present && aliasRaw != nil {
		ty, err := decodeTypeField(n, "alias")
		if err != nil {
			return nil, err
		}
		td.Alias = ty
	}
	for _, raw := range arrField(n, "methods") {
		obj, err := asObj(raw, "MethodDecl")
		if err != nil {
			return nil, err
		}
		meth, err := decodeMethodDecl(obj)
		if err != nil {
			return nil, err
		}
		td.Methods = append(td.Methods, meth)
	}
	return td, nil
}

// --- Types ---

func decodeTypeField(n node, name string) (ast.Type, error) {
	raw, ok := n[name]
	if !ok || raw == nil {
		return nil, &DecodeError{Expected: "Type", Got: "missing", Reason: fmt.Sprintf("field %q is required", name)}
	}
	obj, err := asObj(raw, "Type")
	if err != nil {
		return nil, err
	}
	return decodeType(obj)
}

func decodeType(n node) (ast.Type, error) {
	switch nodeType(n) {
	case "PrimType":
		kind, ok := primKindByName[strField(n, "name")]
		if !ok {
			return nil, &DecodeError{Expected: "primitive type name", Got: strField(n, "name"), Reason: "unknown PrimType name"}
		}
		return &ast.PrimType{Kind: kind, Pos: decodePos(n)}, nil
	case "Reference":
		inner, err := decodeTypeField(n, "inner")
		if err != nil {
			return nil, err
		}
		return &ast.Reference{Inner: inner, IsMutable: boolField(n, "mutable"), Pos: decodePos(n)}, nil
	case "ArrayType":
		elem, err := decodeTypeField(n, "element")
		if err != nil {
			return nil, err
		}
		return &ast.ArrayType{Element: elem, Pos: decodePos(n)}, nil
	case "TupleType":
		elems, err := decodeTypeSlice(arrField(n, "elements"))
		if err != nil {
			return nil, err
		}
		return &ast.TupleType{Elements: elems, Pos: decodePos(n)}, nil
	case "FuncType":
		params, err := decodeTypeSlice(arrField(n, "params"))
		if err != nil {
			return nil, err
		}
		ret, err := decodeTypeField(n, "return")
		if err != nil {
			return nil, err
		}
		return &ast.FuncType{Params: params, Return: ret, Pos: decodePos(n)}, nil
	case "UserDefinedType":
		return &ast.UserDefinedType{Name: strField(n, "name"), Pos: decodePos(n)}, nil
	case "GenericType":
		args, err := decodeTypeSlice(arrField(n, "args"))
		if err != nil {
			return nil, err
		}
		return &ast.GenericType{Name: strField(n, "name"), Args: args, Pos: decodePos(n)}, nil
	case "TypeVarType":
		return &ast.TypeVarType{Name: strField(n, "name"), Pos: decodePos(n)}, nil
	default:
		return nil, &DecodeError{Expected: "a Type node", Got: nodeType(n), Reason: "unknown Type kind"}
	}
}

func decodeTypeSlice(items []interface{}) ([]ast.Type, error) {
	out := make([]ast.Type, 0, len(items))
	for _, raw := range items {
		obj, err := asObj(raw, "Type")
		if err != nil {
			return nil, err
		}
		ty, err := decodeType(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, ty)
	}
	return out, nil
}

var primKindByName = map[string]ast.PrimKind{
	"i8": ast.I8, "i16": ast.I16, "i32": ast.I32, "i64": ast.I64, "i128": ast.I128, "i256": ast.I256,
	"u8": ast.U8, "u16": ast.U16, "u32": ast.U32, "u64": ast.U64, "u128": ast.U128, "u256": ast.U256,
	"f8": ast.F8, "f16": ast.F16, "f32": ast.F32, "f64": ast.F64,
	"bool": ast.Bool, "str": ast.Str, "String": ast.StringK, "void": ast.Void,
}

// --- Blocks / Statements ---

func decodeBlock(n node) (*ast.Block, error) {
	block := &ast.Block{Pos: decodePos(n)}
	for _, raw := range arrField(n, "stmts") {
		obj, err := asObj(raw, "Stmt")
		if err != nil {
			return nil, err
		}
		stmt, err := decodeStmt(obj)
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	return block, nil
}

func decodeStmt(n node) (ast.Stmt, error) {
	kind := nodeType(n)
	if _, annotated := n["type"].(map[string]interface{}); annotated {
		// An annotated LetStmt carries its declared type under "type" as
		// well; encoding/json keeps the later duplicate key, so only the
		// type object survives there.
		kind = "LetStmt"
	}
	switch kind {
	case "LetStmt":
		val, err := decodeExprField(n, "value")
		if err != nil {
			return nil, err
		}
		let := &ast.LetStmt{Name: strField(n, "name"), IsMutable: boolField(n, "mutable"), Value: val, Pos: decodePos(n)}
		if _, annotated := n["type"].(map[string]interface{}); annotated {
			ty, err := decodeTypeField(n, "type")
			if err != nil {
				return nil, err
			}
			let.Type = ty
		}
		return let, nil
	case "ReturnStmt":
		var val ast.Expr
		if raw, present := n["value"]; present && raw != nil {
			v, err := decodeExprField(n, "value")
			if err != nil {
				return nil, err
			}
			val = v
		}
		return &ast.ReturnStmt{Value: val, Pos: decodePos(n)}, nil
	case "ExprStmt":
		e, err := decodeExprField(n, "expr")
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: e, Pos: decodePos(n)}, nil
	default:
		return nil, &DecodeError{Expected: "LetStmt|ReturnStmt|ExprStmt", Got: nodeType(n), Reason: "unknown Stmt kind"}
	}
}

// --- Expressions ---

func decodeExprField(n node, name string) (ast.Expr, error) {
	raw, present := n[name]
	if !present || raw == nil {
		return nil, &DecodeError{Expected: "Expr", Got: "missing", Reason: fmt.Sprintf("field %q is required", name)}
	}
	obj, err := asObj(raw, "Expr")
	if err != nil {
		return nil, err
	}
	return decodeExpr(obj)
}

func decodeExprSlice(items []interface{}) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(items))
	for _, raw := range items {
		obj, err := asObj(raw, "Expr")
		if err != nil {
			return nil, err
		}
		e, err := decodeExpr(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

var binOpByName = map[string]ast.BinaryOp{
	"+": ast.OpAdd, "-": ast.OpSub, "*": ast.OpMul, "/": ast.OpDiv, "%": ast.OpMod,
	"<": ast.OpLt, ">": ast.OpGt, "<=": ast.OpLe, ">=": ast.OpGe, "==": ast.OpEq, "!=": ast.OpNe,
	"&&": ast.OpAnd, "||": ast.OpOr,
	"&": ast.OpBitAnd, "|": ast.OpBitOr, "^": ast.OpBitXor, "<<": ast.OpShl, ">>": ast.OpShr,
}

var unOpByName = map[string]ast.UnaryOp{"!": ast.OpNot, "-": ast.OpNeg}

func decodeExpr(n node) (ast.Expr, error) {
	switch nodeType(n) {
	case "IntLit":
		return &ast.IntLit{Value: intField(n, "value"), Suffix: strField(n, "suffix"), Pos: decodePos(n)}, nil
	case "FloatLit":
		return &ast.FloatLit{Value: floatField(n, "value"), Suffix: strField(n, "suffix"), Pos: decodePos(n)}, nil
	case "BoolLit":
		return &ast.BoolLit{Value: boolField(n, "value"), Pos: decodePos(n)}, nil
	case "StringLit":
		return &ast.StringLit{Value: strField(n, "value"), Pos: decodePos(n)}, nil
	case "TemplateStringLit":
		tpl := &ast.TemplateStringLit{Pos: decodePos(n)}
		for _, raw := range arrField(n, "parts") {
			obj, err := asObj(raw, "TemplateStringPart")
			if err != nil {
				return nil, err
			}
			part := ast.TemplateStringPart{Literal: strField(obj, "literal")}
			if exprRaw, present := obj["expr"]; present && exprRaw != nil {
				eobj, err := asObj(exprRaw, "Expr")
				if err != nil {
					return nil, err
				}
				e, err := decodeExpr(eobj)
				if err != nil {
					return nil, err
				}
				part.Expr = e
			}
			tpl.Parts = append(tpl.Parts, part)
		}
		return tpl, nil
	case "Identifier":
		return &ast.Identifier{Name: strField(n, "name"), Pos: decodePos(n)}, nil
	case "BinaryExpr":
		op, ok := binOpByName[strField(n, "op")]
		if !ok {
			return nil, &DecodeError{Expected: "binary operator", Got: strField(n, "op"), Reason: "unknown BinaryExpr op"}
		}
		left, err := decodeExprField(n, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeExprField(n, "right")
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: op, Left: left, Right: right, Pos: decodePos(n)}, nil
	case "UnaryExpr":
		op, ok := unOpByName[strField(n, "op")]
		if !ok {
			return nil, &DecodeError{Expected: "unary operator", Got: strField(n, "op"), Reason: "unknown UnaryExpr op"}
		}
		operand, err := decodeExprField(n, "operand")
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Operand: operand, Pos: decodePos(n)}, nil
	case "CastExpr":
		val, err := decodeExprField(n, "value")
		if err != nil {
			return nil, err
		}
		ty, err := decodeTypeField(n, "to")
		if err != nil {
			return nil, err
		}
		return &ast.CastExpr{Value: val, Type: ty, Pos: decodePos(n)}, nil
	case "CallExpr":
		callee, err := decodeExprField(n, "callee")
		if err != nil {
			return nil, err
		}
		typeArgs, err := decodeTypeSlice(arrField(n, "typeArgs"))
		if err != nil {
			return nil, err
		}
		args, err := decodeExprSlice(arrField(n, "args"))
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Callee: callee, ExplicitTypeArgs: typeArgs, Args: args, Pos: decodePos(n)}, nil
	case "FieldAccessExpr":
		recv, err := decodeExprField(n, "receiver")
		if err != nil {
			return nil, err
		}
		return &ast.FieldAccessExpr{Receiver: recv, Field: strField(n, "field"), Pos: decodePos(n)}, nil
	case "MethodCallExpr":
		recv, err := decodeExprField(n, "receiver")
		if err != nil {
			return nil, err
		}
		args, err := decodeExprSlice(arrField(n, "args"))
		if err != nil {
			return nil, err
		}
		return &ast.MethodCallExpr{Receiver: recv, Method: strField(n, "method"), Args: args, Pos: decodePos(n)}, nil
	case "StructLitExpr":
		typeArgs, err := decodeTypeSlice(arrField(n, "typeArgs"))
		if err != nil {
			return nil, err
		}
		fields, err := decodeStructLitFields(arrField(n, "fields"))
		if err != nil {
			return nil, err
		}
		return &ast.StructLitExpr{TypeName: strField(n, "typeName"), TypeArgs: typeArgs, Fields: fields, Pos: decodePos(n)}, nil
	case "EnumLitExpr":
		typeArgs, err := decodeTypeSlice(arrField(n, "typeArgs"))
		if err != nil {
			return nil, err
		}
		lit := &ast.EnumLitExpr{EnumType: strField(n, "enum"), TypeArgs: typeArgs, Variant: strField(n, "variant"), Pos: decodePos(n)}
		switch strField(n, "kind") {
		case "tuple":
			lit.Kind = ast.VariantTuple
			elems, err := decodeExprSlice(arrField(n, "elements"))
			if err != nil {
				return nil, err
			}
			lit.Elements = elems
		case "struct":
			lit.Kind = ast.VariantStruct
			fields, err := decodeStructLitFields(arrField(n, "fields"))
			if err != nil {
				return nil, err
			}
			lit.Fields = fields
		default:
			lit.Kind = ast.VariantUnit
		}
		return lit, nil
	case "ArrayLitExpr":
		elems, err := decodeExprSlice(arrField(n, "elements"))
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLitExpr{Elements: elems, Pos: decodePos(n)}, nil
	case "TupleLitExpr":
		elems, err := decodeExprSlice(arrField(n, "elements"))
		if err != nil {
			return nil, err
		}
		return &ast.TupleLitExpr{Elements: elems, Pos: decodePos(n)}, nil
	case "IndexExpr":
		recv, err := decodeExprField(n, "receiver")
		if err != nil {
			return nil, err
		}
		idx, err := decodeExprField(n, "index")
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{Receiver: recv, Index: idx, Pos: decodePos(n)}, nil
	case "RefExpr":
		target, err := decodeExprField(n, "target")
		if err != nil {
			return nil, err
		}
		return &ast.RefExpr{IsMutable: boolField(n, "mutable"), Target: target, Pos: decodePos(n)}, nil
	case "DerefExpr":
		target, err := decodeExprField(n, "target")
		if err != nil {
			return nil, err
		}
		return &ast.DerefExpr{Target: target, Pos: decodePos(n)}, nil
	case "AssignExpr":
		target, err := decodeExprField(n, "target")
		if err != nil {
			return nil, err
		}
		val, err := decodeExprField(n, "value")
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpr{Target: target, Value: val, Pos: decodePos(n)}, nil
	case "IfExpr":
		cond, err := decodeExprField(n, "cond")
		if err != nil {
			return nil, err
		}
		thenObj, present := field(n, "then")
		if !present {
			return nil, &DecodeError{Expected: "Block", Got: "missing", Reason: "IfExpr requires a then block"}
		}
		thenBlock, err := decodeBlock(thenObj)
		if err != nil {
			return nil, err
		}
		ifExpr := &ast.IfExpr{Cond: cond, Then: thenBlock, Pos: decodePos(n)}
		if elseObj, present := field(n, "else"); present {
			elseBlock, err := decodeBlock(elseObj)
			if err != nil {
				return nil, err
			}
			ifExpr.Else = elseBlock
		}
		return ifExpr, nil
	case "WhileExpr":
		cond, err := decodeExprField(n, "cond")
		if err != nil {
			return nil, err
		}
		bodyObj, present := field(n, "body")
		if !present {
			return nil, &DecodeError{Expected: "Block", Got: "missing", Reason: "WhileExpr requires a body block"}
		}
		body, err := decodeBlock(bodyObj)
		if err != nil {
			return nil, err
		}
		return &ast.WhileExpr{Cond: cond, Body: body, Pos: decodePos(n)}, nil
	case "ForExpr":
		forExpr := &ast.ForExpr{Pos: decodePos(n)}
		if initRaw, present := n["init"]; present && initRaw != nil {
			obj, err := asObj(initRaw, "Stmt")
			if err != nil {
				return nil, err
			}
			stmt, err := decodeStmt(obj)
			if err != nil {
				return nil, err
			}
			forExpr.Init = stmt
		}
		if condRaw, present := n["cond"]; present && condRaw != nil {
			cond, err := decodeExprField(n, "cond")
			if err != nil {
				return nil, err
			}
			forExpr.Cond = cond
		}
		if updRaw, present := n["update"]; present && updRaw != nil {
			upd, err := decodeExprField(n, "update")
			if err != nil {
				return nil, err
			}
			forExpr.Update = upd
		}
		bodyObj, present := field(n, "body")
		if !present {
			return nil, &DecodeError{Expected: "Block", Got: "missing", Reason: "ForExpr requires a body block"}
		}
		body, err := decodeBlock(bodyObj)
		if err != nil {
			return nil, err
		}
		forExpr.Body = body
		return forExpr, nil
	case "MatchExpr":
		scrutinee, err := decodeExprField(n, "scrutinee")
		if err != nil {
			return nil, err
		}
		match := &ast.MatchExpr{Scrutinee: scrutinee, Pos: decodePos(n)}
		for _, raw := range arrField(n, "arms") {
			obj, err := asObj(raw, "MatchArm")
			if err != nil {
				return nil, err
			}
			patObj, present := field(obj, "pattern")
			if !present {
				return nil, &DecodeError{Expected: "Pattern", Got: "missing", Reason: "MatchArm requires a pattern"}
			}
			pat, err := decodePattern(patObj)
			if err != nil {
				return nil, err
			}
			body, err := decodeExprField(obj, "body")
			if err != nil {
				return nil, err
			}
			arm := ast.MatchArm{Pattern: pat, Body: body}
			if guardRaw, present := obj["guard"]; present && guardRaw != nil {
				guard, err := decodeExprField(obj, "guard")
				if err != nil {
					return nil, err
				}
				arm.Guard = guard
			}
			match.Arms = append(match.Arms, arm)
		}
		return match, nil
	case "BlockExpr":
		blockObj, present := field(n, "block")
		if !present {
			return nil, &DecodeError{Expected: "Block", Got: "missing", Reason: "BlockExpr requires a block"}
		}
		block, err := decodeBlock(blockObj)
		if err != nil {
			return nil, err
		}
		return &ast.BlockExpr{Block: block, Pos: decodePos(n)}, nil
	default:
		return nil, &DecodeError{Expected: "an Expr node", Got: nodeType(n), Reason: "unknown Expr kind"}
	}
}

func decodeStructLitFields(items []interface{}) ([]ast.StructLitField, error) {
	out := make([]ast.StructLitField, 0, len(items))
	for _, raw := range items {
		obj, err := asObj(raw, "StructLitField")
		if err != nil {
			return nil, err
		}
		val, err := decodeExprField(obj, "value")
		if err != nil {
			return nil, err
		}
		out = append(out, ast.StructLitField{Name: strField(obj, "name"), Value: val})
	}
	return out, nil
}

// --- Patterns ---

func decodePattern(n node) (ast.Pattern, error) {
	switch nodeType(n) {
	case "WildcardPattern":
		return &ast.WildcardPattern{Pos: decodePos(n)}, nil
	case "IdentifierPattern":
		return &ast.IdentifierPattern{Name: strField(n, "name"), Pos: decodePos(n)}, nil
	case "LiteralPattern":
		valObj, present := field(n, "value")
		if !present {
			return nil, &DecodeError{Expected: "Expr literal", Got: "missing", Reason: "LiteralPattern requires a value"}
		}
		val, err := decodeExpr(valObj)
		if err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Value: val, Pos: decodePos(n)}, nil
	case "TuplePattern":
		elems, err := decodePatternSlice(arrField(n, "elements"))
		if err != nil {
			return nil, err
		}
		return &ast.TuplePattern{Elements: elems, Pos: decodePos(n)}, nil
	case "StructPattern":
		fields, err := decodeStructFieldPatterns(arrField(n, "fields"))
		if err != nil {
			return nil, err
		}
		return &ast.StructPattern{TypeName: strField(n, "typeName"), Fields: fields, Pos: decodePos(n)}, nil
	case "EnumVariantPattern":
		p := &ast.EnumVariantPattern{EnumType: strField(n, "enum"), Variant: strField(n, "variant"), Pos: decodePos(n)}
		switch strField(n, "kind") {
		case "tuple":
			p.Kind = ast.VariantTuple
			elems, err := decodePatternSlice(arrField(n, "elements"))
			if err != nil {
				return nil, err
			}
			p.Elements = elems
		case "struct":
			p.Kind = ast.VariantStruct
			fields, err := decodeStructFieldPatterns(arrField(n, "fields"))
			if err != nil {
				return nil, err
			}
			p.Fields = fields
		default:
			p.Kind = ast.VariantUnit
		}
		return p, nil
	default:
		return nil, &DecodeError{Expected: "a Pattern node", Got: nodeType(n), Reason: "unknown Pattern kind"}
	}
}

func decodePatternSlice(items []interface{}) ([]ast.Pattern, error) {
	out := make([]ast.Pattern, 0, len(items))
	for _, raw := range items {
		obj, err := asObj(raw, "Pattern")
		if err != nil {
			return nil, err
		}
		p, err := decodePattern(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeStructFieldPatterns(items []interface{}) ([]ast.StructFieldPattern, error) {
	out := make([]ast.StructFieldPattern, 0, len(items))
	for _, raw := range items {
		obj, err := asObj(raw, "StructFieldPattern")
		if err != nil {
			return nil, err
		}
		patObj, present := field(obj, "pattern")
		if !present {
			return nil, &DecodeError{Expected: "Pattern", Got: "missing", Reason: "StructFieldPattern requires a pattern"}
		}
		pat, err := decodePattern(patObj)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.StructFieldPattern{Name: strField(obj, "name"), Pattern: pat})
	}
	return out, nil
}
