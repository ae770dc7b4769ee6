package analyzer

import (
	"fmt"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/diag"
	"github.com/yuniruyuni/yunic/internal/symtab"
	"github.com/yuniruyuni/yunic/internal/typecheck"
	"github.com/yuniruyuni/yunic/internal/typeenv"
	"github.com/yuniruyuni/yunic/internal/types"
)

// inferCtx performs the type-checking half of pass 2: inferring an
// internal/types.Type for every expression and reporting TC### mismatches,
// independent of the borrow-checking walk done afterwards.
type inferCtx struct {
	d         *Driver
	scope     *symtab.Scope
	typeScope *typeenv.Scope
	retType   types.Type
}

func (ic *inferCtx) fail(code, msg string, pos ast.Pos) {
	ic.d.fail(diag.PhaseTypecheck, code, msg, pos)
}

func (ic *inferCtx) checkBlock(block *ast.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Stmts {
		ic.checkStmt(stmt)
	}
}

func (ic *inferCtx) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		valTy := ic.infer(s.Value)
		declTy := valTy
		if s.Type != nil {
			resolved, err := typecheck.ResolveASTType(s.Type, ic.d.Registry, ic.typeScope)
			if err != nil {
				ic.fail(diag.TCUndefinedType, err.Error(), s.Pos)
			} else {
				if !typecheck.CheckTypeCompatibility(valTy, resolved) {
					ic.fail(diag.TCTypeMismatch, fmt.Sprintf("cannot assign %s to %s", valTy, resolved), s.Pos)
				}
				declTy = resolved
			}
		}
		ic.scope.Define(&symtab.Symbol{Name: s.Name, Type: declTy, IsMutable: s.IsMutable})
	case *ast.ReturnStmt:
		if s.Value == nil {
			if _, isVoid := ic.retType.(*types.TVoid); !isVoid {
				ic.fail(diag.TCTypeMismatch, "missing return value", s.Pos)
			}
			return
		}
		valTy := ic.infer(s.Value)
		if !typecheck.CheckTypeCompatibility(valTy, ic.retType) {
			ic.fail(diag.TCTypeMismatch, fmt.Sprintf("cannot return %s, expected %s", valTy, ic.retType), s.Pos)
		}
	case *ast.ExprStmt:
		ic.infer(s.Expr)
	}
}

// infer computes expr's type, recording diagnostics for any mismatch it
// finds along the way. It never aborts: on error it returns a best-effort
// placeholder type so the caller can keep checking.
func (ic *inferCtx) infer(expr ast.Expr) types.Type {
	switch e := expr.(type) {
	case *ast.IntLit:
		if e.Suffix != "" {
			if k, ok := suffixInt[e.Suffix]; ok {
				return &types.TInt{Kind: k}
			}
		}
		return types.I32Type
	case *ast.FloatLit:
		if e.Suffix == "f32" {
			return &types.TFloat{Kind: types.F32}
		}
		return types.F64Type
	case *ast.BoolLit:
		return types.Bool
	case *ast.StringLit:
		return types.Str
	case *ast.TemplateStringLit:
		for _, part := range e.Parts {
			if part.Expr != nil {
				ic.infer(part.Expr)
			}
		}
		return types.String
	case *ast.Identifier:
		sym, ok := ic.scope.Lookup(e.Name)
		if !ok {
			if sig, ok := ic.d.Registry.LookupFunc(e.Name); ok {
				return sig
			}
			ic.fail(diag.TCUndefinedVariable, fmt.Sprintf("undefined symbol %q", e.Name), e.Pos)
			return types.Void
		}
		return sym.Type
	case *ast.BinaryExpr:
		l, r := ic.infer(e.Left), ic.infer(e.Right)
		res, err := typecheck.BinaryOpResultType(e.Op, l, r)
		if err != nil {
			if _, lIsStr := l.(*types.TStr); e.Op == ast.OpAdd && (lIsStr || isString(l)) && isString(r) {
				return types.String
			}
			ic.fail(diag.TCInvalidOperation, err.Error(), e.Pos)
			return types.Void
		}
		return res
	case *ast.UnaryExpr:
		operand := ic.infer(e.Operand)
		res, err := typecheck.UnaryOpResultType(e.Op, operand)
		if err != nil {
			ic.fail(diag.TCInvalidOperation, err.Error(), e.Pos)
			return types.Void
		}
		return res
	case *ast.CastExpr:
		ic.infer(e.Value)
		ty, err := typecheck.ResolveASTType(e.Type, ic.d.Registry, ic.typeScope)
		if err != nil {
			ic.fail(diag.TCUndefinedType, err.Error(), e.Pos)
			return types.Void
		}
		return ty
	case *ast.CallExpr:
		return ic.inferCall(e)
	case *ast.FieldAccessExpr:
		recv := ic.infer(e.Receiver)
		ty, err := ic.fieldType(recv, e.Field)
		if err != nil {
			ic.fail(diag.TCMethodNotFound, err.Error(), e.Pos)
			return types.Void
		}
		return ty
	case *ast.MethodCallExpr:
		return ic.inferMethodCall(e)
	case *ast.StructLitExpr:
		for _, f := range e.Fields {
			ic.infer(f.Value)
		}
		if len(e.TypeArgs) > 0 {
			args := make([]types.Type, len(e.TypeArgs))
			for i, a := range e.TypeArgs {
				ty, err := typecheck.ResolveASTType(a, ic.d.Registry, ic.typeScope)
				if err != nil {
					ic.fail(diag.TCUndefinedType, err.Error(), e.Pos)
					ty = types.Void
				}
				args[i] = ty
			}
			return &types.TGeneric{Name: e.TypeName, Args: args}
		}
		return &types.TUserDefined{Name: e.TypeName}
	case *ast.EnumLitExpr:
		for _, el := range e.Elements {
			ic.infer(el)
		}
		for _, f := range e.Fields {
			ic.infer(f.Value)
		}
		if len(e.TypeArgs) > 0 {
			args := make([]types.Type, len(e.TypeArgs))
			for i, a := range e.TypeArgs {
				ty, err := typecheck.ResolveASTType(a, ic.d.Registry, ic.typeScope)
				if err != nil {
					ty = types.Void
				}
				args[i] = ty
			}
			return &types.TGeneric{Name: e.EnumType, Args: args}
		}
		return &types.TUserDefined{Name: e.EnumType}
	case *ast.ArrayLitExpr:
		if len(e.Elements) == 0 {
			return &types.TArray{Element: types.Void}
		}
		elem := ic.infer(e.Elements[0])
		for _, el := range e.Elements[1:] {
			ty := ic.infer(el)
			if !typecheck.CheckTypeCompatibility(ty, elem) {
				ic.fail(diag.TCTypeMismatch, fmt.Sprintf("array element type mismatch: %s vs %s", elem, ty), el.Position())
			}
		}
		return &types.TArray{Element: elem}
	case *ast.TupleLitExpr:
		elems := make([]types.Type, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = ic.infer(el)
		}
		return &types.TTuple{Elements: elems}
	case *ast.IndexExpr:
		recv := ic.infer(e.Receiver)
		idx := ic.infer(e.Index)
		if !types.IsInteger(idx) {
			ic.fail(diag.TCInvalidOperation, "array index must be an integer", e.Index.Position())
		}
		if arr, ok := recv.(*types.TArray); ok {
			return arr.Element
		}
		if gen, ok := recv.(*types.TGeneric); ok && len(gen.Args) > 0 {
			return gen.Args[0]
		}
		ic.fail(diag.TCInvalidOperation, fmt.Sprintf("type %s is not indexable", recv), e.Pos)
		return types.Void
	case *ast.RefExpr:
		target := ic.infer(e.Target)
		return &types.TReference{Inner: target, IsMutable: e.IsMutable}
	case *ast.DerefExpr:
		target := ic.infer(e.Target)
		if ref, ok := target.(*types.TReference); ok {
			return ref.Inner
		}
		ic.fail(diag.TCInvalidOperation, fmt.Sprintf("cannot dereference non-reference type %s", target), e.Pos)
		return types.Void
	case *ast.AssignExpr:
		valTy := ic.infer(e.Value)
		targetTy := ic.infer(e.Target)
		if !typecheck.CheckTypeCompatibility(valTy, targetTy) {
			ic.fail(diag.TCTypeMismatch, fmt.Sprintf("cannot assign %s to %s", valTy, targetTy), e.Pos)
		}
		return types.Void
	case *ast.IfExpr:
		condTy := ic.infer(e.Cond)
		if _, ok := condTy.(*types.TBool); !ok {
			ic.fail(diag.TCInvalidOperation, "if condition must be bool", e.Cond.Position())
		}
		ic.checkBlock(e.Then)
		if e.Else != nil {
			ic.checkBlock(e.Else)
		}
		return types.Void
	case *ast.WhileExpr:
		condTy := ic.infer(e.Cond)
		if _, ok := condTy.(*types.TBool); !ok {
			ic.fail(diag.TCInvalidOperation, "while condition must be bool", e.Cond.Position())
		}
		ic.checkBlock(e.Body)
		return types.Void
	case *ast.ForExpr:
		if e.Init != nil {
			ic.checkStmt(e.Init)
		}
		if e.Cond != nil {
			ic.infer(e.Cond)
		}
		ic.checkBlock(e.Body)
		if e.Update != nil {
			ic.infer(e.Update)
		}
		return types.Void
	case *ast.MatchExpr:
		ic.infer(e.Scrutinee)
		for _, arm := range e.Arms {
			if arm.Guard != nil {
				ic.infer(arm.Guard)
			}
			ic.infer(arm.Body)
		}
		return types.Void
	case *ast.BlockExpr:
		ic.checkBlock(e.Block)
		return types.Void
	default:
		return types.Void
	}
}

var suffixInt = map[string]types.IntKind{
	"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64,
	"i128": types.I128, "i256": types.I256,
	"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64,
	"u128": types.U128, "u256": types.U256,
}

func isString(t types.Type) bool {
	switch t.(type) {
	case *types.TStr, *types.TString:
		return true
	default:
		return false
	}
}

func (ic *inferCtx) fieldType(recv types.Type, field string) (types.Type, error) {
	if ref, ok := recv.(*types.TReference); ok {
		recv = ref.Inner
	}
	switch t := recv.(type) {
	case *types.TUserDefined:
		info, ok := ic.d.Registry.LookupType(t.Name)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", t.Name)
		}
		ft, ok := info.FieldType(field)
		if !ok {
			return nil, fmt.Errorf("type %q has no field %q", t.Name, field)
		}
		return ft, nil
	case *types.TGeneric:
		info, ok := ic.d.Registry.LookupType(t.Name)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", t.Name)
		}
		ft, ok := info.FieldType(field)
		if !ok {
			return nil, fmt.Errorf("type %q has no field %q", t.Name, field)
		}
		subs := make(map[string]types.Type, len(info.TypeParams))
		for i, p := range info.TypeParams {
			if i < len(t.Args) {
				subs[p] = t.Args[i]
			}
		}
		return ft.Substitute(subs), nil
	default:
		return nil, fmt.Errorf("type %s has no fields", recv)
	}
}

func (ic *inferCtx) inferCall(e *ast.CallExpr) types.Type {
	for _, a := range e.Args {
		ic.infer(a)
	}
	id, ok := e.Callee.(*ast.Identifier)
	if !ok {
		calleeTy := ic.infer(e.Callee)
		if fn, ok := calleeTy.(*types.TFunction); ok {
			return fn.Return
		}
		return types.Void
	}
	if sig, ok := ic.d.Registry.LookupFunc(id.Name); ok {
		if len(sig.Params) != len(e.Args) {
			ic.fail(diag.TCArgumentCountMismatch, fmt.Sprintf("function %q expects %d argument(s), got %d", id.Name, len(sig.Params), len(e.Args)), e.Pos)
		}
		return sig.Return
	}
	if sym, ok := ic.scope.Lookup(id.Name); ok {
		if fn, ok := sym.Type.(*types.TFunction); ok {
			return fn.Return
		}
	}
	ic.fail(diag.TCUndefinedFunction, fmt.Sprintf("call to undefined function %q", id.Name), e.Pos)
	return types.Void
}

func (ic *inferCtx) inferMethodCall(e *ast.MethodCallExpr) types.Type {
	recv := ic.infer(e.Receiver)
	for _, a := range e.Args {
		ic.infer(a)
	}
	base := recv
	if ref, ok := base.(*types.TReference); ok {
		base = ref.Inner
	}
	var typeName string
	switch t := base.(type) {
	case *types.TUserDefined:
		typeName = t.Name
	case *types.TGeneric:
		typeName = t.Name
	default:
		ic.fail(diag.TCMethodNotFound, fmt.Sprintf("type %s has no methods", recv), e.Pos)
		return types.Void
	}
	info, ok := ic.d.Registry.LookupType(typeName)
	if !ok {
		ic.fail(diag.TCUndefinedType, fmt.Sprintf("unknown type %q", typeName), e.Pos)
		return types.Void
	}
	sig, ok := info.LookupMethod(e.Method)
	if !ok {
		ic.fail(diag.TCMethodNotFound, fmt.Sprintf("type %q has no method %q", typeName, e.Method), e.Pos)
		return types.Void
	}
	return sig.Return
}
