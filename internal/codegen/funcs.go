package codegen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/diag"
	"github.com/yuniruyuni/yunic/internal/typecheck"
	"github.com/yuniruyuni/yunic/internal/types"
)

// funcTarget is one function or method awaiting codegen, with its final
// emitted symbol name and (for methods) its receiver binding worked out.
type funcTarget struct {
	name         string
	fn           *ast.FuncDecl
	receiverName string
	receiverType types.Type // nil for a free function
}

func (g *Generator) collectTargets(prog *ast.Program) []funcTarget {
	var out []funcTarget
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FuncDecl:
			out = append(out, funcTarget{name: it.Name, fn: it})
		case *ast.TypeDef:
			for _, meth := range it.Methods {
				recvTy := types.Type(&types.TUserDefined{Name: it.Name})
				recvName := "self"
				if meth.ReceiverRef != nil {
					recvTy = &types.TReference{Inner: recvTy, IsMutable: meth.ReceiverRef.IsMutable}
				}
				out = append(out, funcTarget{
					name:         mangledMethodName(it.Name, meth.Func.Name),
					fn:           meth.Func,
					receiverName: recvName,
					receiverType: recvTy,
				})
			}
		}
	}
	return out
}

func (g *Generator) buildFunctionType(target funcTarget) (llvm.Type, []types.Type, error) {
	params := make([]types.Type, 0, len(target.fn.Params)+1)
	if target.receiverType != nil {
		params = append(params, target.receiverType)
	}
	for _, p := range target.fn.Params {
		ty, err := typecheck.ResolveASTType(p.Type, g.reg, nil)
		if err != nil {
			return llvm.Type{}, nil, fmt.Errorf("function %q parameter %q: %w", target.name, p.Name, err)
		}
		params = append(params, ty)
	}
	retTy, err := typecheck.ResolveASTType(target.fn.ReturnType, g.reg, nil)
	if err != nil {
		return llvm.Type{}, nil, fmt.Errorf("function %q return type: %w", target.name, err)
	}
	paramIR := make([]llvm.Type, len(params))
	for i, p := range params {
		lt, err := g.types.Lower(p)
		if err != nil {
			return llvm.Type{}, nil, fmt.Errorf("function %q: %w", target.name, err)
		}
		paramIR[i] = lt
	}
	retIR, err := g.types.Lower(retTy)
	if err != nil {
		return llvm.Type{}, nil, fmt.Errorf("function %q: %w", target.name, err)
	}
	return llvm.FunctionType(retIR, paramIR, false), params, nil
}

// declareFunctions emits an LLVM function declaration (name and signature,
// no body) for every free function and method in prog.
func (g *Generator) declareFunctions(prog *ast.Program) error {
	for _, target := range g.collectTargets(prog) {
		fnType, params, err := g.buildFunctionType(target)
		if err != nil {
			return cgFail(diag.CGTypeError, err.Error(), target.fn.Pos)
		}
		fnVal := llvm.AddFunction(g.mod, target.name, fnType)
		names := paramNames(target)
		for i, p := range fnVal.Params() {
			if i < len(names) {
				p.SetName(names[i])
			}
		}
		g.funcs[target.name] = fnVal
		_ = params
	}
	return nil
}

func paramNames(target funcTarget) []string {
	var names []string
	if target.receiverType != nil {
		names = append(names, target.receiverName)
	}
	for _, p := range target.fn.Params {
		names = append(names, p.Name)
	}
	return names
}

// defineFunctions emits every function/method body, now that every
// function in the program has been declared (so mutually recursive calls
// resolve regardless of definition order).
func (g *Generator) defineFunctions(prog *ast.Program) error {
	for _, target := range g.collectTargets(prog) {
		if target.fn.Body == nil {
			continue // extern-only declaration, nothing to lower
		}
		if err := g.genFuncBody(target); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) genFuncBody(target funcTarget) error {
	fnVal := g.funcs[target.name]
	entry := llvm.AddBasicBlock(fnVal, "entry")
	g.builder.SetInsertPointAtEnd(entry)

	sc := newScope(nil)
	args := fnVal.Params()
	idx := 0
	if target.receiverType != nil {
		if err := g.bindParam(sc, target.receiverName, target.receiverType, args[idx]); err != nil {
			return cgFail(diag.CGInternal, err.Error(), target.fn.Pos)
		}
		idx++
	}
	for _, p := range target.fn.Params {
		ty, err := typecheck.ResolveASTType(p.Type, g.reg, nil)
		if err != nil {
			return cgFail(diag.CGTypeError, err.Error(), p.Pos)
		}
		if err := g.bindParam(sc, p.Name, ty, args[idx]); err != nil {
			return cgFail(diag.CGInternal, err.Error(), p.Pos)
		}
		idx++
	}

	retTy, err := typecheck.ResolveASTType(target.fn.ReturnType, g.reg, nil)
	if err != nil {
		return cgFail(diag.CGTypeError, err.Error(), target.fn.Pos)
	}

	g.curFn = fnVal
	g.curRetType = retTy

	terminated, err := g.genBlock(target.fn.Body, sc)
	if err != nil {
		return err
	}
	if !terminated {
		if _, isVoid := retTy.(*types.TVoid); isVoid {
			g.builder.CreateRetVoid()
		} else {
			g.builder.CreateUnreachable()
		}
	}
	return nil
}

func (g *Generator) bindParam(sc *scope, name string, ty types.Type, val llvm.Value) error {
	lt, err := g.types.Lower(ty)
	if err != nil {
		return err
	}
	slot := g.builder.CreateAlloca(lt, name)
	g.builder.CreateStore(val, slot)
	sc.define(name, slot, ty)
	return nil
}
