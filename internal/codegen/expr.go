package codegen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/diag"
	"github.com/yuniruyuni/yunic/internal/typecheck"
	"github.com/yuniruyuni/yunic/internal/types"
)

// genExpr lowers expr to an LLVM value, returning the semantic type it
// synthesizes alongside it. This mirrors internal/analyzer/infer.go's
// inferCtx.infer() algorithm exactly — codegen runs after type checking
// has already accepted the program, so it re-derives types to choose the
// right LLVM instruction (signed vs unsigned divide, int vs float add)
// without re-reporting any diagnostic.
func (g *Generator) genExpr(expr ast.Expr, sc *scope) (llvm.Value, types.Type, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return g.genIntLit(e)
	case *ast.FloatLit:
		return g.genFloatLit(e)
	case *ast.BoolLit:
		v := uint64(0)
		if e.Value {
			v = 1
		}
		return llvm.ConstInt(g.ctx.Int1Type(), v, false), types.Bool, nil
	case *ast.StringLit:
		return g.genStringConst(e.Value), types.Str, nil
	case *ast.TemplateStringLit:
		return g.genTemplateString(e, sc)
	case *ast.Identifier:
		return g.genIdentifier(e, sc)
	case *ast.BinaryExpr:
		return g.genBinary(e, sc)
	case *ast.UnaryExpr:
		return g.genUnary(e, sc)
	case *ast.CastExpr:
		return g.genCast(e, sc)
	case *ast.CallExpr:
		return g.genCall(e, sc)
	case *ast.FieldAccessExpr:
		return g.genFieldAccess(e, sc)
	case *ast.MethodCallExpr:
		return g.genMethodCall(e, sc)
	case *ast.StructLitExpr:
		return g.genStructLit(e, sc)
	case *ast.EnumLitExpr:
		return g.genEnumLit(e, sc)
	case *ast.ArrayLitExpr:
		return g.genArrayLit(e, sc)
	case *ast.TupleLitExpr:
		return g.genTupleLit(e, sc)
	case *ast.IndexExpr:
		return g.genIndex(e, sc)
	case *ast.RefExpr:
		return g.genRef(e, sc)
	case *ast.DerefExpr:
		return g.genDeref(e, sc)
	case *ast.AssignExpr:
		return g.genAssign(e, sc)
	case *ast.IfExpr:
		if _, err := g.genIf(e, sc); err != nil {
			return llvm.Value{}, nil, err
		}
		return llvm.Value{}, types.Void, nil
	case *ast.WhileExpr:
		if _, err := g.genWhile(e, sc); err != nil {
			return llvm.Value{}, nil, err
		}
		return llvm.Value{}, types.Void, nil
	case *ast.ForExpr:
		if _, err := g.genFor(e, sc); err != nil {
			return llvm.Value{}, nil, err
		}
		return llvm.Value{}, types.Void, nil
	case *ast.MatchExpr:
		if _, err := g.genMatch(e, sc); err != nil {
			return llvm.Value{}, nil, err
		}
		return llvm.Value{}, types.Void, nil
	case *ast.BlockExpr:
		if _, err := g.genBlock(e.Block, sc); err != nil {
			return llvm.Value{}, nil, err
		}
		return llvm.Value{}, types.Void, nil
	default:
		return llvm.Value{}, nil, cgFail(diag.CGUnimplemented, fmt.Sprintf("unsupported expression node %T", expr), expr.Position())
	}
}

func (g *Generator) genIntLit(e *ast.IntLit) (llvm.Value, types.Type, error) {
	kind := types.I32
	if e.Suffix != "" {
		if k, ok := suffixInt[e.Suffix]; ok {
			kind = k
		}
	}
	ty := &types.TInt{Kind: kind}
	lt, err := g.types.Lower(ty)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
	}
	return llvm.ConstInt(lt, uint64(e.Value), kind.IsSigned()), ty, nil
}

func (g *Generator) genFloatLit(e *ast.FloatLit) (llvm.Value, types.Type, error) {
	kind := types.F64
	if e.Suffix == "f32" {
		kind = types.F32
	}
	ty := &types.TFloat{Kind: kind}
	lt, err := g.types.Lower(ty)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
	}
	return llvm.ConstFloat(lt, e.Value), ty, nil
}

// genStringConst materializes a string literal as a module-level constant
// byte array and returns an opaque i8* pointer to it, per the §4.9 str
// representation.
func (g *Generator) genStringConst(s string) llvm.Value {
	return g.builder.CreateGlobalStringPtr(s, ".str")
}

func (g *Generator) genTemplateString(e *ast.TemplateStringLit, sc *scope) (llvm.Value, types.Type, error) {
	concat, err := g.runtime.Lookup("yuni_string_concat")
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInternal, err.Error(), e.Pos)
	}
	var acc llvm.Value
	first := true
	accumulate := func(piece llvm.Value) {
		if first {
			acc = piece
			first = false
			return
		}
		acc = g.builder.CreateCall(concat, []llvm.Value{acc, piece}, "")
	}
	for _, part := range e.Parts {
		if part.Expr == nil {
			accumulate(g.genStringConst(part.Literal))
			continue
		}
		val, ty, err := g.genExpr(part.Expr, sc)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		piece, err := g.genToString(val, ty, part.Expr.Position())
		if err != nil {
			return llvm.Value{}, nil, err
		}
		accumulate(piece)
	}
	if first {
		return g.genStringConst(""), types.String, nil
	}
	return acc, types.String, nil
}

// genToString renders val (of semantic type ty) to a runtime string
// pointer, for string interpolation and `+` concatenation with a
// non-string operand.
func (g *Generator) genToString(val llvm.Value, ty types.Type, pos ast.Pos) (llvm.Value, error) {
	switch t := ty.(type) {
	case *types.TStr, *types.TString:
		return val, nil
	case *types.TInt:
		fn, err := g.runtime.Lookup("yuni_int_to_string")
		if err != nil {
			return llvm.Value{}, cgFail(diag.CGInternal, err.Error(), pos)
		}
		widened := val
		if t.Kind.Width() < 64 {
			if t.Kind.IsSigned() {
				widened = g.builder.CreateSExt(val, g.ctx.Int64Type(), "")
			} else {
				widened = g.builder.CreateZExt(val, g.ctx.Int64Type(), "")
			}
		}
		return g.builder.CreateCall(fn, []llvm.Value{widened}, ""), nil
	case *types.TFloat:
		fn, err := g.runtime.Lookup("yuni_f64_to_string")
		if err != nil {
			return llvm.Value{}, cgFail(diag.CGInternal, err.Error(), pos)
		}
		widened := val
		if t.Kind != types.F64 {
			widened = g.builder.CreateFPExt(val, g.ctx.DoubleType(), "")
		}
		return g.builder.CreateCall(fn, []llvm.Value{widened}, ""), nil
	case *types.TBool:
		fn, err := g.runtime.Lookup("yuni_bool_to_string")
		if err != nil {
			return llvm.Value{}, cgFail(diag.CGInternal, err.Error(), pos)
		}
		return g.builder.CreateCall(fn, []llvm.Value{val}, ""), nil
	default:
		return llvm.Value{}, cgFail(diag.CGUnimplemented, fmt.Sprintf("cannot stringify type %s", ty), pos)
	}
}

func (g *Generator) genIdentifier(e *ast.Identifier, sc *scope) (llvm.Value, types.Type, error) {
	slot, ok := sc.lookup(e.Name)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("undefined symbol %q", e.Name), e.Pos)
	}
	lt, err := g.types.Lower(slot.typ)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
	}
	return g.builder.CreateLoad(lt, slot.ptr, e.Name), slot.typ, nil
}

func isStringType(t types.Type) bool {
	switch t.(type) {
	case *types.TStr, *types.TString:
		return true
	default:
		return false
	}
}

func (g *Generator) genBinary(e *ast.BinaryExpr, sc *scope) (llvm.Value, types.Type, error) {
	lv, lt, err := g.genExpr(e.Left, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	rv, rt, err := g.genExpr(e.Right, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}

	if e.Op == ast.OpAdd && (isStringType(lt) || isStringType(rt)) && !(types.IsNumeric(lt) && types.IsNumeric(rt)) {
		lstr, err := g.genToString(lv, lt, e.Left.Position())
		if err != nil {
			return llvm.Value{}, nil, err
		}
		rstr, err := g.genToString(rv, rt, e.Right.Position())
		if err != nil {
			return llvm.Value{}, nil, err
		}
		concat, err := g.runtime.Lookup("yuni_string_concat")
		if err != nil {
			return llvm.Value{}, nil, cgFail(diag.CGInternal, err.Error(), e.Pos)
		}
		return g.builder.CreateCall(concat, []llvm.Value{lstr, rstr}, ""), types.String, nil
	}

	resTy, err := typecheck.BinaryOpResultType(e.Op, lt, rt)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGTypeError, err.Error(), e.Pos)
	}

	isFloat := types.IsFloat(lt)
	signed := true
	if it, ok := lt.(*types.TInt); ok {
		signed = it.Kind.IsSigned()
	}

	switch e.Op {
	case ast.OpAdd:
		if isFloat {
			return g.builder.CreateFAdd(lv, rv, ""), resTy, nil
		}
		return g.builder.CreateAdd(lv, rv, ""), resTy, nil
	case ast.OpSub:
		if isFloat {
			return g.builder.CreateFSub(lv, rv, ""), resTy, nil
		}
		return g.builder.CreateSub(lv, rv, ""), resTy, nil
	case ast.OpMul:
		if isFloat {
			return g.builder.CreateFMul(lv, rv, ""), resTy, nil
		}
		return g.builder.CreateMul(lv, rv, ""), resTy, nil
	case ast.OpDiv:
		if isFloat {
			return g.builder.CreateFDiv(lv, rv, ""), resTy, nil
		}
		if signed {
			return g.builder.CreateSDiv(lv, rv, ""), resTy, nil
		}
		return g.builder.CreateUDiv(lv, rv, ""), resTy, nil
	case ast.OpMod:
		if isFloat {
			return g.builder.CreateFRem(lv, rv, ""), resTy, nil
		}
		if signed {
			return g.builder.CreateSRem(lv, rv, ""), resTy, nil
		}
		return g.builder.CreateURem(lv, rv, ""), resTy, nil
	case ast.OpBitAnd:
		return g.builder.CreateAnd(lv, rv, ""), resTy, nil
	case ast.OpBitOr:
		return g.builder.CreateOr(lv, rv, ""), resTy, nil
	case ast.OpBitXor:
		return g.builder.CreateXor(lv, rv, ""), resTy, nil
	case ast.OpShl:
		return g.builder.CreateShl(lv, rv, ""), resTy, nil
	case ast.OpShr:
		if signed {
			return g.builder.CreateAShr(lv, rv, ""), resTy, nil
		}
		return g.builder.CreateLShr(lv, rv, ""), resTy, nil
	case ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe, ast.OpEq, ast.OpNe:
		return g.genComparison(e.Op, lv, rv, lt, isFloat, signed), types.Bool, nil
	case ast.OpAnd:
		return g.builder.CreateAnd(lv, rv, ""), types.Bool, nil
	case ast.OpOr:
		return g.builder.CreateOr(lv, rv, ""), types.Bool, nil
	default:
		return llvm.Value{}, nil, cgFail(diag.CGUnimplemented, fmt.Sprintf("unsupported binary operator %v", e.Op), e.Pos)
	}
}

func (g *Generator) genComparison(op ast.BinaryOp, lv, rv llvm.Value, lt types.Type, isFloat, signed bool) llvm.Value {
	if isFloat {
		var pred llvm.FloatPredicate
		switch op {
		case ast.OpLt:
			pred = llvm.FloatOLT
		case ast.OpGt:
			pred = llvm.FloatOGT
		case ast.OpLe:
			pred = llvm.FloatOLE
		case ast.OpGe:
			pred = llvm.FloatOGE
		case ast.OpEq:
			pred = llvm.FloatOEQ
		default:
			pred = llvm.FloatONE
		}
		return g.builder.CreateFCmp(pred, lv, rv, "")
	}
	var pred llvm.IntPredicate
	switch op {
	case ast.OpLt:
		if signed {
			pred = llvm.IntSLT
		} else {
			pred = llvm.IntULT
		}
	case ast.OpGt:
		if signed {
			pred = llvm.IntSGT
		} else {
			pred = llvm.IntUGT
		}
	case ast.OpLe:
		if signed {
			pred = llvm.IntSLE
		} else {
			pred = llvm.IntULE
		}
	case ast.OpGe:
		if signed {
			pred = llvm.IntSGE
		} else {
			pred = llvm.IntUGE
		}
	case ast.OpEq:
		pred = llvm.IntEQ
	default:
		pred = llvm.IntNE
	}
	return g.builder.CreateICmp(pred, lv, rv, "")
}

func (g *Generator) genUnary(e *ast.UnaryExpr, sc *scope) (llvm.Value, types.Type, error) {
	val, ty, err := g.genExpr(e.Operand, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	resTy, err := typecheck.UnaryOpResultType(e.Op, ty)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGTypeError, err.Error(), e.Pos)
	}
	switch e.Op {
	case ast.OpNot:
		return g.builder.CreateNot(val, ""), resTy, nil
	case ast.OpNeg:
		if types.IsFloat(ty) {
			return g.builder.CreateFNeg(val, ""), resTy, nil
		}
		return g.builder.CreateNeg(val, ""), resTy, nil
	default:
		return llvm.Value{}, nil, cgFail(diag.CGUnimplemented, fmt.Sprintf("unsupported unary operator %v", e.Op), e.Pos)
	}
}

// genCast lowers an explicit `as` conversion between numeric ground types.
func (g *Generator) genCast(e *ast.CastExpr, sc *scope) (llvm.Value, types.Type, error) {
	val, srcTy, err := g.genExpr(e.Value, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	dstTy, err := typecheck.ResolveASTType(e.Type, g.reg, nil)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGTypeError, err.Error(), e.Pos)
	}
	dstLT, err := g.types.Lower(dstTy)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
	}

	switch src := srcTy.(type) {
	case *types.TInt:
		switch dst := dstTy.(type) {
		case *types.TInt:
			if dst.Kind.Width() == src.Kind.Width() {
				return val, dstTy, nil
			}
			if dst.Kind.Width() < src.Kind.Width() {
				return g.builder.CreateTrunc(val, dstLT, ""), dstTy, nil
			}
			if src.Kind.IsSigned() {
				return g.builder.CreateSExt(val, dstLT, ""), dstTy, nil
			}
			return g.builder.CreateZExt(val, dstLT, ""), dstTy, nil
		case *types.TFloat:
			if src.Kind.IsSigned() {
				return g.builder.CreateSIToFP(val, dstLT, ""), dstTy, nil
			}
			return g.builder.CreateUIToFP(val, dstLT, ""), dstTy, nil
		}
	case *types.TFloat:
		switch dst := dstTy.(type) {
		case *types.TFloat:
			if dst.Kind.Width() == src.Kind.Width() {
				return val, dstTy, nil
			}
			if dst.Kind.Width() < src.Kind.Width() {
				return g.builder.CreateFPTrunc(val, dstLT, ""), dstTy, nil
			}
			return g.builder.CreateFPExt(val, dstLT, ""), dstTy, nil
		case *types.TInt:
			if dst.Kind.IsSigned() {
				return g.builder.CreateFPToSI(val, dstLT, ""), dstTy, nil
			}
			return g.builder.CreateFPToUI(val, dstLT, ""), dstTy, nil
		}
	}
	return llvm.Value{}, nil, cgFail(diag.CGTypeError, fmt.Sprintf("unsupported cast from %s to %s", srcTy, dstTy), e.Pos)
}

func (g *Generator) genCall(e *ast.CallExpr, sc *scope) (llvm.Value, types.Type, error) {
	id, ok := e.Callee.(*ast.Identifier)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUnimplemented, "indirect calls are not supported", e.Pos)
	}
	fnVal, ok := g.funcs[id.Name]
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("call to undefined function %q", id.Name), e.Pos)
	}
	sig, ok := g.reg.LookupFunc(id.Name)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("no signature registered for function %q", id.Name), e.Pos)
	}
	args := make([]llvm.Value, len(e.Args))
	for i, a := range e.Args {
		v, _, err := g.genExpr(a, sc)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		args[i] = v
	}
	name := ""
	if _, isVoid := sig.Return.(*types.TVoid); !isVoid {
		name = id.Name + ".ret"
	}
	return g.builder.CreateCall(fnVal, args, name), sig.Return, nil
}

func (g *Generator) genMethodCall(e *ast.MethodCallExpr, sc *scope) (llvm.Value, types.Type, error) {
	recvVal, recvTy, err := g.genExpr(e.Receiver, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	base := recvTy
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
		return llvm.Value{}, nil, cgFail(diag.CGTypeError, fmt.Sprintf("type %s has no methods", recvTy), e.Pos)
	}
	info, ok := g.reg.LookupType(typeName)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("unknown type %q", typeName), e.Pos)
	}
	sig, ok := info.LookupMethod(e.Method)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("type %q has no method %q", typeName, e.Method), e.Pos)
	}
	symbol := mangledMethodName(typeName, e.Method)
	fnVal, ok := g.funcs[symbol]
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("method %q not declared", symbol), e.Pos)
	}
	args := make([]llvm.Value, 0, len(e.Args)+1)
	args = append(args, recvVal)
	for _, a := range e.Args {
		v, _, err := g.genExpr(a, sc)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		args = append(args, v)
	}
	name := ""
	if _, isVoid := sig.Return.(*types.TVoid); !isVoid {
		name = e.Method + ".ret"
	}
	return g.builder.CreateCall(fnVal, args, name), sig.Return, nil
}

func (g *Generator) genFieldAccess(e *ast.FieldAccessExpr, sc *scope) (llvm.Value, types.Type, error) {
	ptr, fieldTy, err := g.genFieldPtr(e, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	lt, err := g.types.Lower(fieldTy)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
	}
	return g.builder.CreateLoad(lt, ptr, e.Field), fieldTy, nil
}

// genFieldPtr resolves the address of e.Field without loading it, for use
// both by genFieldAccess (which loads) and genAssign (which stores).
func (g *Generator) genFieldPtr(e *ast.FieldAccessExpr, sc *scope) (llvm.Value, types.Type, error) {
	basePtr, baseTy, err := g.genLValuePtr(e.Receiver, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	structTy := baseTy
	if ref, ok := structTy.(*types.TReference); ok {
		structTy = ref.Inner
		lt, err := g.types.Lower(baseTy)
		if err != nil {
			return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
		}
		basePtr = g.builder.CreateLoad(lt, basePtr, "")
	}
	ud, ok := structTy.(*types.TUserDefined)
	if !ok {
		if gen, ok := structTy.(*types.TGeneric); ok {
			ud = &types.TUserDefined{Name: gen.Name}
		} else {
			return llvm.Value{}, nil, cgFail(diag.CGTypeError, fmt.Sprintf("type %s has no fields", structTy), e.Pos)
		}
	}
	info, ok := g.reg.LookupType(ud.Name)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("unknown type %q", ud.Name), e.Pos)
	}
	fieldTy, ok := info.FieldType(e.Field)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("type %q has no field %q", ud.Name, e.Field), e.Pos)
	}
	idx, err := g.types.FieldIndex(ud.Name, e.Field)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInternal, err.Error(), e.Pos)
	}
	structInfo, ok := g.types.LookupStruct(ud.Name)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGInternal, fmt.Sprintf("struct %q has no registered layout", ud.Name), e.Pos)
	}
	structPtrTy := llvm.PointerType(structInfo.IR, 0)
	typedPtr := g.builder.CreateBitCast(basePtr, structPtrTy, "")
	zero := llvm.ConstInt(g.ctx.Int32Type(), 0, false)
	fieldIdx := llvm.ConstInt(g.ctx.Int32Type(), uint64(idx), false)
	gep := g.builder.CreateGEP(typedPtr, []llvm.Value{zero, fieldIdx}, e.Field+".addr")
	return gep, fieldTy, nil
}

func (g *Generator) genStructLit(e *ast.StructLitExpr, sc *scope) (llvm.Value, types.Type, error) {
	ty, err := g.litType(e.TypeName, e.TypeArgs, e.Pos)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	info, ok := g.reg.LookupType(e.TypeName)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("unknown struct %q", e.TypeName), e.Pos)
	}
	structInfo, ok := g.types.LookupStruct(e.TypeName)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGInternal, fmt.Sprintf("struct %q has no registered layout", e.TypeName), e.Pos)
	}
	agg := llvm.ConstNull(structInfo.IR)
	for _, f := range e.Fields {
		v, _, err := g.genExpr(f.Value, sc)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		idx, ok := info.FieldIndex[f.Name]
		if !ok {
			return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("struct %q has no field %q", e.TypeName, f.Name), e.Pos)
		}
		agg = g.builder.CreateInsertValue(agg, v, idx, "")
	}
	return agg, ty, nil
}

func (g *Generator) litType(name string, typeArgs []ast.Type, pos ast.Pos) (types.Type, error) {
	if len(typeArgs) == 0 {
		return &types.TUserDefined{Name: name}, nil
	}
	args := make([]types.Type, len(typeArgs))
	for i, a := range typeArgs {
		ty, err := typecheck.ResolveASTType(a, g.reg, nil)
		if err != nil {
			return nil, cgFail(diag.CGTypeError, err.Error(), pos)
		}
		args[i] = ty
	}
	return &types.TGeneric{Name: name, Args: args}, nil
}

func (g *Generator) genArrayLit(e *ast.ArrayLitExpr, sc *scope) (llvm.Value, types.Type, error) {
	newFn, err := g.runtime.Lookup("yuni_vec_new")
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInternal, err.Error(), e.Pos)
	}
	pushFn, err := g.runtime.Lookup("yuni_vec_push")
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInternal, err.Error(), e.Pos)
	}
	n := llvm.ConstInt(g.ctx.Int64Type(), uint64(len(e.Elements)), false)
	vec := g.builder.CreateCall(newFn, []llvm.Value{n}, "vec")

	var elemTy types.Type = types.Void
	for i, el := range e.Elements {
		v, ty, err := g.genExpr(el, sc)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		if i == 0 {
			elemTy = ty
		}
		boxed, err := g.genBoxForVec(v, ty, el.Position())
		if err != nil {
			return llvm.Value{}, nil, err
		}
		g.builder.CreateCall(pushFn, []llvm.Value{vec, boxed}, "")
	}
	return vec, &types.TArray{Element: elemTy}, nil
}

// genBoxForVec stores val on the heap (via malloc) so that yuni_vec_push,
// which stores elements as opaque i8*, can hold non-pointer element
// types uniformly.
func (g *Generator) genBoxForVec(val llvm.Value, ty types.Type, pos ast.Pos) (llvm.Value, error) {
	lt, err := g.types.Lower(ty)
	if err != nil {
		return llvm.Value{}, cgFail(diag.CGInvalidType, err.Error(), pos)
	}
	if lt.TypeKind() == llvm.PointerTypeKind {
		return val, nil
	}
	slot, err := g.heapAlloc(lt, pos)
	if err != nil {
		return llvm.Value{}, err
	}
	g.builder.CreateStore(val, slot)
	return g.builder.CreateBitCast(slot, g.types.PointerType(), ""), nil
}

// heapAlloc mallocs room for one value of LLVM type lt, sized via the
// null-pointer GEP trick: ConstGEP a null pointer of lt's pointer type by
// one element and ptrtoint the result, which folds to sizeof(lt) without
// depending on a target-specific DataLayout query.
func (g *Generator) heapAlloc(lt llvm.Type, pos ast.Pos) (llvm.Value, error) {
	mallocFn, err := g.runtime.Lookup("malloc")
	if err != nil {
		return llvm.Value{}, cgFail(diag.CGInternal, err.Error(), pos)
	}
	ptrTy := llvm.PointerType(lt, 0)
	null := llvm.ConstNull(ptrTy)
	one := llvm.ConstInt(g.ctx.Int32Type(), 1, false)
	sizePtr := llvm.ConstGEP(null, []llvm.Value{one})
	size := llvm.ConstPtrToInt(sizePtr, g.ctx.Int64Type())
	raw := g.builder.CreateCall(mallocFn, []llvm.Value{size}, "")
	return g.builder.CreateBitCast(raw, ptrTy, ""), nil
}

func (g *Generator) genTupleLit(e *ast.TupleLitExpr, sc *scope) (llvm.Value, types.Type, error) {
	elemTypes := make([]types.Type, len(e.Elements))
	vals := make([]llvm.Value, len(e.Elements))
	for i, el := range e.Elements {
		v, ty, err := g.genExpr(el, sc)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		vals[i] = v
		elemTypes[i] = ty
	}
	tupleTy := &types.TTuple{Elements: elemTypes}
	lt, err := g.types.Lower(tupleTy)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
	}
	agg := llvm.Undef(lt)
	for i, v := range vals {
		agg = g.builder.CreateInsertValue(agg, v, i, "")
	}
	return agg, tupleTy, nil
}

func (g *Generator) genIndex(e *ast.IndexExpr, sc *scope) (llvm.Value, types.Type, error) {
	ptr, elemTy, err := g.genIndexPtr(e, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	lt, err := g.types.Lower(elemTy)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
	}
	return g.builder.CreateLoad(lt, ptr, "idx"), elemTy, nil
}

// genIndexPtr resolves the (boxed) element address at e.Receiver[e.Index]
// via the runtime vector accessor, bitcast to the element's own pointer
// type.
func (g *Generator) genIndexPtr(e *ast.IndexExpr, sc *scope) (llvm.Value, types.Type, error) {
	recvVal, recvTy, err := g.genExpr(e.Receiver, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	var elemTy types.Type
	switch t := recvTy.(type) {
	case *types.TArray:
		elemTy = t.Element
	case *types.TGeneric:
		if len(t.Args) == 0 {
			return llvm.Value{}, nil, cgFail(diag.CGTypeError, fmt.Sprintf("type %s is not indexable", recvTy), e.Pos)
		}
		elemTy = t.Args[0]
	default:
		return llvm.Value{}, nil, cgFail(diag.CGTypeError, fmt.Sprintf("type %s is not indexable", recvTy), e.Pos)
	}
	idxVal, _, err := g.genExpr(e.Index, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	idx64 := g.builder.CreateSExt(idxVal, g.ctx.Int64Type(), "")
	getFn, err := g.runtime.Lookup("yuni_vec_get")
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInternal, err.Error(), e.Pos)
	}
	raw := g.builder.CreateCall(getFn, []llvm.Value{recvVal, idx64}, "elem")
	elemLT, err := g.types.Lower(elemTy)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
	}
	if elemLT.TypeKind() == llvm.PointerTypeKind {
		return raw, elemTy, nil
	}
	return g.builder.CreateBitCast(raw, llvm.PointerType(elemLT, 0), ""), elemTy, nil
}

func (g *Generator) genRef(e *ast.RefExpr, sc *scope) (llvm.Value, types.Type, error) {
	ptr, targetTy, err := g.genLValuePtr(e.Target, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	refTy := &types.TReference{Inner: targetTy, IsMutable: e.IsMutable}
	return g.builder.CreateBitCast(ptr, g.types.PointerType(), ""), refTy, nil
}

func (g *Generator) genDeref(e *ast.DerefExpr, sc *scope) (llvm.Value, types.Type, error) {
	ptr, pointeeTy, err := g.genDerefPtr(e, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	lt, err := g.types.Lower(pointeeTy)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
	}
	return g.builder.CreateLoad(lt, ptr, "deref"), pointeeTy, nil
}

// genDerefPtr evaluates e.Target (an ordinary rvalue of reference type, an
// opaque i8*) and bitcasts it to a pointer of the pointee's own LLVM type.
func (g *Generator) genDerefPtr(e *ast.DerefExpr, sc *scope) (llvm.Value, types.Type, error) {
	val, targetTy, err := g.genExpr(e.Target, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	ref, ok := targetTy.(*types.TReference)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGTypeError, fmt.Sprintf("cannot dereference non-reference type %s", targetTy), e.Pos)
	}
	lt, err := g.types.Lower(ref.Inner)
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
	}
	return g.builder.CreateBitCast(val, llvm.PointerType(lt, 0), ""), ref.Inner, nil
}

// genLValuePtr resolves the address of an assignable expression without
// loading its current value, covering exactly the target kinds
// ast.AssignExpr documents as legal: Identifier, FieldAccessExpr,
// IndexExpr, DerefExpr.
func (g *Generator) genLValuePtr(expr ast.Expr, sc *scope) (llvm.Value, types.Type, error) {
	switch e := expr.(type) {
	case *ast.Identifier:
		slot, ok := sc.lookup(e.Name)
		if !ok {
			return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("undefined symbol %q", e.Name), e.Pos)
		}
		return slot.ptr, slot.typ, nil
	case *ast.FieldAccessExpr:
		return g.genFieldPtr(e, sc)
	case *ast.IndexExpr:
		return g.genIndexPtr(e, sc)
	case *ast.DerefExpr:
		return g.genDerefPtr(e, sc)
	default:
		return llvm.Value{}, nil, cgFail(diag.CGUnimplemented, fmt.Sprintf("%T is not an assignable expression", expr), expr.Position())
	}
}

// genEnumLit builds a variant's { tag, payload } box on the heap and
// returns an opaque pointer to it, matching irtypes.Manager's uniform
// enum representation.
func (g *Generator) genEnumLit(e *ast.EnumLitExpr, sc *scope) (llvm.Value, types.Type, error) {
	enumInfo, ok := g.types.LookupEnum(e.EnumType)
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("unknown enum %q", e.EnumType), e.Pos)
	}
	tagIdx, ok := enumInfo.VariantTag[e.Variant]
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("enum %q has no variant %q", e.EnumType, e.Variant), e.Pos)
	}
	boxTy, ok := enumInfo.PayloadTypes[e.Variant]
	if !ok {
		return llvm.Value{}, nil, cgFail(diag.CGInternal, fmt.Sprintf("enum %q variant %q has no registered payload", e.EnumType, e.Variant), e.Pos)
	}

	elems := g.variantElems[e.EnumType][e.Variant]
	payloadLT, err := g.types.Lower(&types.TTuple{Elements: elems})
	if err != nil {
		return llvm.Value{}, nil, cgFail(diag.CGInvalidType, err.Error(), e.Pos)
	}
	payload := llvm.Undef(payloadLT)

	switch e.Kind {
	case ast.VariantTuple:
		for i, el := range e.Elements {
			v, _, err := g.genExpr(el, sc)
			if err != nil {
				return llvm.Value{}, nil, err
			}
			payload = g.builder.CreateInsertValue(payload, v, i, "")
		}
	case ast.VariantStruct:
		names := g.variantFieldNames[e.EnumType][e.Variant]
		for _, f := range e.Fields {
			idx := indexOfName(names, f.Name)
			if idx < 0 {
				return llvm.Value{}, nil, cgFail(diag.CGUndefined, fmt.Sprintf("enum %q variant %q has no field %q", e.EnumType, e.Variant, f.Name), e.Pos)
			}
			v, _, err := g.genExpr(f.Value, sc)
			if err != nil {
				return llvm.Value{}, nil, err
			}
			payload = g.builder.CreateInsertValue(payload, v, idx, "")
		}
	}

	box := llvm.Undef(boxTy)
	box = g.builder.CreateInsertValue(box, llvm.ConstInt(enumInfo.TagType, uint64(tagIdx), false), 0, "")
	box = g.builder.CreateInsertValue(box, payload, 1, "")

	slot, err := g.heapAlloc(boxTy, e.Pos)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	g.builder.CreateStore(box, slot)
	ptr := g.builder.CreateBitCast(slot, g.types.PointerType(), "")

	ty, err := g.litType(e.EnumType, e.TypeArgs, e.Pos)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	return ptr, ty, nil
}

func (g *Generator) genAssign(e *ast.AssignExpr, sc *scope) (llvm.Value, types.Type, error) {
	val, _, err := g.genExpr(e.Value, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	ptr, _, err := g.genLValuePtr(e.Target, sc)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	g.builder.CreateStore(val, ptr)
	return llvm.Value{}, types.Void, nil
}
