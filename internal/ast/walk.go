package ast

// Walk visits every node reachable from n, including n itself, calling
// visit on each. Visitors that need to mutate a node do so by type-
// asserting the argument and writing through its pointer fields directly
// — every node in this package is passed and stored by pointer, so such
// writes are visible to the rest of the tree without Walk needing a
// separate mutating variant.
func Walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)

	switch v := n.(type) {
	case *Program:
		for _, it := range v.Items {
			Walk(it, visit)
		}
	case *FuncDecl:
		for _, p := range v.Params {
			if p.Type != nil {
				Walk(p.Type, visit)
			}
		}
		if v.ReturnType != nil {
			Walk(v.ReturnType, visit)
		}
		Walk(v.Body, visit)
	case *MethodDecl:
		Walk(v.Func, visit)
	case *TypeDef:
		for _, f := range v.Fields {
			Walk(f.Type, visit)
		}
		for _, variant := range v.Variants {
			for _, t := range variant.TupleFields {
				Walk(t, visit)
			}
			for _, f := range variant.StructFields {
				Walk(f.Type, visit)
			}
		}
		if v.Alias != nil {
			Walk(v.Alias, visit)
		}
		for _, m := range v.Methods {
			Walk(m, visit)
		}
	case *Block:
		for _, s := range v.Stmts {
			Walk(s, visit)
		}
	case *LetStmt:
		if v.Type != nil {
			Walk(v.Type, visit)
		}
		Walk(v.Value, visit)
	case *ReturnStmt:
		if v.Value != nil {
			Walk(v.Value, visit)
		}
	case *ExprStmt:
		Walk(v.Expr, visit)
	case *BinaryExpr:
		Walk(v.Left, visit)
		Walk(v.Right, visit)
	case *UnaryExpr:
		Walk(v.Operand, visit)
	case *CastExpr:
		Walk(v.Value, visit)
		Walk(v.Type, visit)
	case *CallExpr:
		Walk(v.Callee, visit)
		for _, t := range v.ExplicitTypeArgs {
			Walk(t, visit)
		}
		for _, a := range v.Args {
			Walk(a, visit)
		}
	case *FieldAccessExpr:
		Walk(v.Receiver, visit)
	case *MethodCallExpr:
		Walk(v.Receiver, visit)
		for _, a := range v.Args {
			Walk(a, visit)
		}
	case *StructLitExpr:
		for _, t := range v.TypeArgs {
			Walk(t, visit)
		}
		for _, f := range v.Fields {
			Walk(f.Value, visit)
		}
	case *EnumLitExpr:
		for _, t := range v.TypeArgs {
			Walk(t, visit)
		}
		for _, e := range v.Elements {
			Walk(e, visit)
		}
		for _, f := range v.Fields {
			Walk(f.Value, visit)
		}
	case *ArrayLitExpr:
		for _, e := range v.Elements {
			Walk(e, visit)
		}
	case *TupleLitExpr:
		for _, e := range v.Elements {
			Walk(e, visit)
		}
	case *IndexExpr:
		Walk(v.Receiver, visit)
		Walk(v.Index, visit)
	case *RefExpr:
		Walk(v.Target, visit)
	case *DerefExpr:
		Walk(v.Target, visit)
	case *AssignExpr:
		Walk(v.Target, visit)
		Walk(v.Value, visit)
	case *IfExpr:
		Walk(v.Cond, visit)
		Walk(v.Then, visit)
		if v.Else != nil {
			Walk(v.Else, visit)
		}
	case *WhileExpr:
		Walk(v.Cond, visit)
		Walk(v.Body, visit)
	case *ForExpr:
		if v.Init != nil {
			Walk(v.Init, visit)
		}
		if v.Cond != nil {
			Walk(v.Cond, visit)
		}
		Walk(v.Body, visit)
		if v.Update != nil {
			Walk(v.Update, visit)
		}
	case *MatchExpr:
		Walk(v.Scrutinee, visit)
		for _, arm := range v.Arms {
			if arm.Guard != nil {
				Walk(arm.Guard, visit)
			}
			Walk(arm.Body, visit)
		}
	case *BlockExpr:
		Walk(v.Block, visit)
	case *TemplateStringLit:
		for _, p := range v.Parts {
			if p.Expr != nil {
				Walk(p.Expr, visit)
			}
		}
	case *Reference:
		Walk(v.Inner, visit)
	case *ArrayType:
		Walk(v.Element, visit)
	case *TupleType:
		for _, e := range v.Elements {
			Walk(e, visit)
		}
	case *FuncType:
		for _, p := range v.Params {
			Walk(p, visit)
		}
		Walk(v.Return, visit)
	case *GenericType:
		for _, a := range v.Args {
			Walk(a, visit)
		}
	}
}
