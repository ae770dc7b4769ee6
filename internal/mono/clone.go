// Package mono implements the generics monomorphizer (§4.8): it collects
// every generic function/struct/enum definition, seeds a work queue from
// every call site that instantiates one, clones and substitutes each
// queued instantiation, rewrites call sites to the mangled name, and
// strips the original generic definitions from the output program.
package mono

import "github.com/yuniruyuni/yunic/internal/ast"

// substTypes maps a declared type-parameter name to the concrete ast.Type
// it is instantiated with for one work-queue item.
type substTypes map[string]ast.Type

// cloneType deep-clones t, replacing any TypeVarType bound in subs with
// its concrete type.
func cloneType(t ast.Type, subs substTypes) ast.Type {
	if t == nil {
		return nil
	}
	switch v := t.(type) {
	case *ast.PrimType:
		cp := *v
		return &cp
	case *ast.Reference:
		return &ast.Reference{Inner: cloneType(v.Inner, subs), IsMutable: v.IsMutable, Pos: v.Pos}
	case *ast.ArrayType:
		return &ast.ArrayType{Element: cloneType(v.Element, subs), Pos: v.Pos}
	case *ast.TupleType:
		elems := make([]ast.Type, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = cloneType(e, subs)
		}
		return &ast.TupleType{Elements: elems, Pos: v.Pos}
	case *ast.FuncType:
		params := make([]ast.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = cloneType(p, subs)
		}
		return &ast.FuncType{Params: params, Return: cloneType(v.Return, subs), Pos: v.Pos}
	case *ast.UserDefinedType:
		cp := *v
		return &cp
	case *ast.GenericType:
		args := make([]ast.Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = cloneType(a, subs)
		}
		return &ast.GenericType{Name: v.Name, Args: args, Pos: v.Pos}
	case *ast.TypeVarType:
		if replacement, ok := subs[v.Name]; ok {
			return cloneType(replacement, nil)
		}
		cp := *v
		return &cp
	default:
		return t
	}
}

func cloneTypeSlice(ts []ast.Type, subs substTypes) []ast.Type {
	if ts == nil {
		return nil
	}
	out := make([]ast.Type, len(ts))
	for i, t := range ts {
		out[i] = cloneType(t, subs)
	}
	return out
}

func cloneBlock(b *ast.Block, subs substTypes) *ast.Block {
	if b == nil {
		return nil
	}
	stmts := make([]ast.Stmt, len(b.Stmts))
	for i, s := range b.Stmts {
		stmts[i] = cloneStmt(s, subs)
	}
	return &ast.Block{Stmts: stmts, Pos: b.Pos}
}

func cloneStmt(s ast.Stmt, subs substTypes) ast.Stmt {
	switch v := s.(type) {
	case *ast.LetStmt:
		return &ast.LetStmt{Name: v.Name, IsMutable: v.IsMutable, Type: cloneType(v.Type, subs), Value: cloneExpr(v.Value, subs), Pos: v.Pos}
	case *ast.ReturnStmt:
		return &ast.ReturnStmt{Value: cloneExpr(v.Value, subs), Pos: v.Pos}
	case *ast.ExprStmt:
		return &ast.ExprStmt{Expr: cloneExpr(v.Expr, subs), Pos: v.Pos}
	default:
		return s
	}
}

func cloneExprSlice(es []ast.Expr, subs substTypes) []ast.Expr {
	if es == nil {
		return nil
	}
	out := make([]ast.Expr, len(es))
	for i, e := range es {
		out[i] = cloneExpr(e, subs)
	}
	return out
}

func cloneExpr(e ast.Expr, subs substTypes) ast.Expr {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *ast.IntLit:
		cp := *v
		return &cp
	case *ast.FloatLit:
		cp := *v
		return &cp
	case *ast.BoolLit:
		cp := *v
		return &cp
	case *ast.StringLit:
		cp := *v
		return &cp
	case *ast.TemplateStringLit:
		parts := make([]ast.TemplateStringPart, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = ast.TemplateStringPart{Literal: p.Literal, Expr: cloneExpr(p.Expr, subs)}
		}
		return &ast.TemplateStringLit{Parts: parts, Pos: v.Pos}
	case *ast.Identifier:
		cp := *v
		return &cp
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Op: v.Op, Left: cloneExpr(v.Left, subs), Right: cloneExpr(v.Right, subs), Pos: v.Pos}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: v.Op, Operand: cloneExpr(v.Operand, subs), Pos: v.Pos}
	case *ast.CastExpr:
		return &ast.CastExpr{Value: cloneExpr(v.Value, subs), Type: cloneType(v.Type, subs), Pos: v.Pos}
	case *ast.CallExpr:
		return &ast.CallExpr{
			Callee:           cloneExpr(v.Callee, subs),
			ExplicitTypeArgs: cloneTypeSlice(v.ExplicitTypeArgs, subs),
			Args:             cloneExprSlice(v.Args, subs),
			Pos:              v.Pos,
			TailCall:         v.TailCall,
		}
	case *ast.FieldAccessExpr:
		return &ast.FieldAccessExpr{Receiver: cloneExpr(v.Receiver, subs), Field: v.Field, Pos: v.Pos}
	case *ast.MethodCallExpr:
		return &ast.MethodCallExpr{Receiver: cloneExpr(v.Receiver, subs), Method: v.Method, Args: cloneExprSlice(v.Args, subs), Pos: v.Pos, TailCall: v.TailCall}
	case *ast.StructLitExpr:
		fields := make([]ast.StructLitField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = ast.StructLitField{Name: f.Name, Value: cloneExpr(f.Value, subs)}
		}
		return &ast.StructLitExpr{TypeName: v.TypeName, TypeArgs: cloneTypeSlice(v.TypeArgs, subs), Fields: fields, Pos: v.Pos}
	case *ast.EnumLitExpr:
		fields := make([]ast.StructLitField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = ast.StructLitField{Name: f.Name, Value: cloneExpr(f.Value, subs)}
		}
		return &ast.EnumLitExpr{
			EnumType: v.EnumType, TypeArgs: cloneTypeSlice(v.TypeArgs, subs), Variant: v.Variant, Kind: v.Kind,
			Elements: cloneExprSlice(v.Elements, subs), Fields: fields, Pos: v.Pos,
		}
	case *ast.ArrayLitExpr:
		return &ast.ArrayLitExpr{Elements: cloneExprSlice(v.Elements, subs), Pos: v.Pos}
	case *ast.TupleLitExpr:
		return &ast.TupleLitExpr{Elements: cloneExprSlice(v.Elements, subs), Pos: v.Pos}
	case *ast.IndexExpr:
		return &ast.IndexExpr{Receiver: cloneExpr(v.Receiver, subs), Index: cloneExpr(v.Index, subs), Pos: v.Pos}
	case *ast.RefExpr:
		return &ast.RefExpr{IsMutable: v.IsMutable, Target: cloneExpr(v.Target, subs), Pos: v.Pos}
	case *ast.DerefExpr:
		return &ast.DerefExpr{Target: cloneExpr(v.Target, subs), Pos: v.Pos}
	case *ast.AssignExpr:
		return &ast.AssignExpr{Target: cloneExpr(v.Target, subs), Value: cloneExpr(v.Value, subs), Pos: v.Pos}
	case *ast.IfExpr:
		var elseBlk *ast.Block
		if v.Else != nil {
			elseBlk = cloneBlock(v.Else, subs)
		}
		return &ast.IfExpr{Cond: cloneExpr(v.Cond, subs), Then: cloneBlock(v.Then, subs), Else: elseBlk, Pos: v.Pos}
	case *ast.WhileExpr:
		return &ast.WhileExpr{Cond: cloneExpr(v.Cond, subs), Body: cloneBlock(v.Body, subs), Pos: v.Pos}
	case *ast.ForExpr:
		var init ast.Stmt
		if v.Init != nil {
			init = cloneStmt(v.Init, subs)
		}
		var cond, update ast.Expr
		if v.Cond != nil {
			cond = cloneExpr(v.Cond, subs)
		}
		if v.Update != nil {
			update = cloneExpr(v.Update, subs)
		}
		return &ast.ForExpr{Init: init, Cond: cond, Update: update, Body: cloneBlock(v.Body, subs), Pos: v.Pos}
	case *ast.MatchExpr:
		arms := make([]ast.MatchArm, len(v.Arms))
		for i, a := range v.Arms {
			var guard ast.Expr
			if a.Guard != nil {
				guard = cloneExpr(a.Guard, subs)
			}
			arms[i] = ast.MatchArm{Pattern: clonePattern(a.Pattern, subs), Guard: guard, Body: cloneExpr(a.Body, subs)}
		}
		return &ast.MatchExpr{Scrutinee: cloneExpr(v.Scrutinee, subs), Arms: arms, Pos: v.Pos}
	case *ast.BlockExpr:
		return &ast.BlockExpr{Block: cloneBlock(v.Block, subs), Pos: v.Pos}
	default:
		return e
	}
}

func clonePattern(p ast.Pattern, subs substTypes) ast.Pattern {
	switch v := p.(type) {
	case *ast.WildcardPattern:
		cp := *v
		return &cp
	case *ast.IdentifierPattern:
		cp := *v
		return &cp
	case *ast.LiteralPattern:
		return &ast.LiteralPattern{Value: cloneExpr(v.Value, subs), Pos: v.Pos}
	case *ast.TuplePattern:
		elems := make([]ast.Pattern, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = clonePattern(e, subs)
		}
		return &ast.TuplePattern{Elements: elems, Pos: v.Pos}
	case *ast.StructPattern:
		fields := make([]ast.StructFieldPattern, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = ast.StructFieldPattern{Name: f.Name, Pattern: clonePattern(f.Pattern, subs)}
		}
		return &ast.StructPattern{TypeName: v.TypeName, Fields: fields, Pos: v.Pos}
	case *ast.EnumVariantPattern:
		elems := make([]ast.Pattern, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = clonePattern(e, subs)
		}
		fields := make([]ast.StructFieldPattern, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = ast.StructFieldPattern{Name: f.Name, Pattern: clonePattern(f.Pattern, subs)}
		}
		return &ast.EnumVariantPattern{EnumType: v.EnumType, Variant: v.Variant, Kind: v.Kind, Elements: elems, Fields: fields, Pos: v.Pos}
	default:
		return p
	}
}

func cloneFuncDecl(fn *ast.FuncDecl, subs substTypes) *ast.FuncDecl {
	params := make([]*ast.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = &ast.Param{Name: p.Name, Type: cloneType(p.Type, subs), Pos: p.Pos}
	}
	return &ast.FuncDecl{
		Name:       fn.Name,
		TypeParams: nil,
		Params:     params,
		ReturnType: cloneType(fn.ReturnType, subs),
		Lives:      fn.Lives,
		Body:       cloneBlock(fn.Body, subs),
		Pos:        fn.Pos,
	}
}

func cloneTypeDef(td *ast.TypeDef, subs substTypes) *ast.TypeDef {
	out := &ast.TypeDef{
		Name:       td.Name,
		TypeParams: nil,
		Kind:       td.Kind,
		Pos:        td.Pos,
	}
	for _, f := range td.Fields {
		out.Fields = append(out.Fields, ast.FieldDef{Name: f.Name, Type: cloneType(f.Type, subs)})
	}
	for _, v := range td.Variants {
		nv := ast.EnumVariant{Name: v.Name, Kind: v.Kind}
		for _, t := range v.TupleFields {
			nv.TupleFields = append(nv.TupleFields, cloneType(t, subs))
		}
		for _, f := range v.StructFields {
			nv.StructFields = append(nv.StructFields, ast.FieldDef{Name: f.Name, Type: cloneType(f.Type, subs)})
		}
		out.Variants = append(out.Variants, nv)
	}
	if td.Alias != nil {
		out.Alias = cloneType(td.Alias, subs)
	}
	for _, m := range td.Methods {
		out.Methods = append(out.Methods, &ast.MethodDecl{
			ReceiverType: m.ReceiverType,
			ReceiverRef:  m.ReceiverRef,
			Func:         cloneFuncDecl(m.Func, subs),
			Pos:          m.Pos,
		})
	}
	return out
}
