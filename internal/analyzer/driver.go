// Package analyzer is the semantic analyzer driver (§4.1): a two-pass
// walk that registers every type/function signature before analyzing any
// function body, accumulating diagnostics rather than aborting on the
// first error.
package analyzer

import (
	"fmt"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/borrow"
	"github.com/yuniruyuni/yunic/internal/diag"
	"github.com/yuniruyuni/yunic/internal/lifetime"
	"github.com/yuniruyuni/yunic/internal/symtab"
	"github.com/yuniruyuni/yunic/internal/typecheck"
	"github.com/yuniruyuni/yunic/internal/typeenv"
	"github.com/yuniruyuni/yunic/internal/types"
)

// Driver holds the analyzer's cross-function state: the type registry, the
// accumulated diagnostics, the borrow-checker subset of them, and the
// lifetime total. Scopes and a lifetime context are built fresh inside each
// function's analysis.
type Driver struct {
	Registry *symtab.TypeRegistry
	diags    []*diag.Report

	borrowReports []*diag.Report
	lifetimeCount int
}

// New creates a driver with a fresh, empty type registry.
func New() *Driver {
	return &Driver{Registry: symtab.NewTypeRegistry()}
}

// Diagnostics returns every diagnostic accumulated across Analyze.
func (d *Driver) Diagnostics() []*diag.Report {
	return d.diags
}

// BorrowReports returns only the subset of Diagnostics raised by the
// borrow checker, for the compile manifest's borrow verdict (§4.8).
func (d *Driver) BorrowReports() []*diag.Report {
	return d.borrowReports
}

// LifetimeCount returns the total number of lifetimes allocated across
// every function body analyzed, for the compile manifest's lifetime_count
// field. Each function body gets its own lifetime.Context, so this is a
// sum across functions rather than a single context's count.
func (d *Driver) LifetimeCount() int {
	return d.lifetimeCount
}

func (d *Driver) fail(phase, code, msg string, pos ast.Pos) {
	span := &ast.Span{Start: pos, End: pos}
	d.diags = append(d.diags, diag.New(phase, code, msg, span))
}

// Analyze runs both passes over prog, returning accumulated diagnostics.
// A non-empty result does not necessarily mean analysis stopped early:
// every item is still visited so as many diagnostics as possible surface
// in one run.
func (d *Driver) Analyze(prog *ast.Program) []*diag.Report {
	d.registerTypeStubs(prog)
	d.resolveTypeBodies(prog)
	d.registerSignatures(prog)

	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FuncDecl:
			d.analyzeFunc(it, nil)
		case *ast.MethodDecl:
			d.analyzeFunc(it.Func, it)
		}
	}
	return d.diags
}

// --- Pass 1: registration -----------------------------------------------

func (d *Driver) registerTypeStubs(prog *ast.Program) {
	for _, item := range prog.Items {
		td, ok := item.(*ast.TypeDef)
		if !ok {
			continue
		}
		info := &symtab.TypeDefInfo{
			Name:        td.Name,
			IsEnum:      td.Kind == ast.TypeDefEnum,
			TypeParams:  td.TypeParams,
			FieldIndex:  make(map[string]int),
			Variants:    make(map[string]int),
			VariantKind: make(map[string]int),
		}
		if !d.Registry.RegisterType(info) {
			d.fail(diag.PhaseTypecheck, diag.TCDuplicateType, fmt.Sprintf("type %q already defined", td.Name), td.Pos)
		}
	}
}

func (d *Driver) resolveTypeBodies(prog *ast.Program) {
	for _, item := range prog.Items {
		td, ok := item.(*ast.TypeDef)
		if !ok {
			continue
		}
		info, ok := d.Registry.LookupType(td.Name)
		if !ok {
			continue
		}
		scope := typeenv.NewScope(nil)
		for _, p := range td.TypeParams {
			scope.Declare(p)
		}
		switch td.Kind {
		case ast.TypeDefStruct:
			for i, f := range td.Fields {
				ty, err := typecheck.ResolveASTType(f.Type, d.Registry, scope)
				if err != nil {
					d.fail(diag.PhaseTypecheck, diag.TCUndefinedType, err.Error(), td.Pos)
					ty = types.Void
				}
				info.FieldIndex[f.Name] = i
				info.FieldNames = append(info.FieldNames, f.Name)
				info.Fields = append(info.Fields, ty)
			}
		case ast.TypeDefEnum:
			for i, v := range td.Variants {
				info.Variants[v.Name] = i
				info.VariantKind[v.Name] = int(v.Kind)
			}
		}
		for _, m := range td.Methods {
			sig, err := d.resolveFuncSig(m.Func, scope)
			if err != nil {
				d.fail(diag.PhaseTypecheck, diag.TCUndefinedType, err.Error(), m.Pos)
				continue
			}
			if !info.RegisterMethod(m.Func.Name, sig) {
				d.fail(diag.PhaseTypecheck, diag.TCDuplicateFunction, fmt.Sprintf("method %q already defined on %q", m.Func.Name, td.Name), m.Pos)
			}
		}
	}
}

func (d *Driver) registerSignatures(prog *ast.Program) {
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FuncDecl:
			scope := typeenv.NewScope(nil)
			for _, p := range it.TypeParams {
				scope.Declare(p)
			}
			sig, err := d.resolveFuncSig(it, scope)
			if err != nil {
				d.fail(diag.PhaseTypecheck, diag.TCUndefinedType, err.Error(), it.Pos)
				continue
			}
			if !d.Registry.RegisterFunc(it.Name, sig) {
				d.fail(diag.PhaseTypecheck, diag.TCDuplicateFunction, fmt.Sprintf("function %q already defined", it.Name), it.Pos)
			}
		case *ast.MethodDecl:
			// Method signatures were registered onto their type in
			// resolveTypeBodies; methods declared outside the TypeDef's
			// own Methods list (attached separately) are registered here.
			info, ok := d.Registry.LookupType(it.ReceiverType)
			if !ok {
				d.fail(diag.PhaseTypecheck, diag.TCUndefinedType, fmt.Sprintf("unknown receiver type %q", it.ReceiverType), it.Pos)
				continue
			}
			if _, exists := info.LookupMethod(it.Func.Name); exists {
				continue
			}
			scope := typeenv.NewScope(nil)
			for _, p := range info.TypeParams {
				scope.Declare(p)
			}
			sig, err := d.resolveFuncSig(it.Func, scope)
			if err != nil {
				d.fail(diag.PhaseTypecheck, diag.TCUndefinedType, err.Error(), it.Pos)
				continue
			}
			info.RegisterMethod(it.Func.Name, sig)
		}
	}
}

// assignParamLifetimes associates each reference-typed receiver/parameter
// with one of the function's named lifetimes, in declaration order: the
// surface grammar has no per-reference lifetime annotation, so the Nth
// reference-typed binding (receiver first, then parameters) is bound to
// the Nth distinct name introduced by the `lives` clause. This lets
// internal/borrow's checkBorrow reuse that named lifetime instead of
// minting a fresh anonymous one, so a borrow of the parameter that is
// later returned can be validated against the declared constraints via
// lifetime.Context.DoesOutlive.
func assignParamLifetimes(fn *ast.FuncDecl, method *ast.MethodDecl, life *lifetime.Context, locals map[string]*borrow.VarInfo) {
	names := namedLifetimeOrder(fn.Lives)
	if len(names) == 0 {
		return
	}
	order := make([]string, 0, len(fn.Params)+1)
	if method != nil {
		order = append(order, "self")
	}
	for _, p := range fn.Params {
		order = append(order, p.Name)
	}
	i := 0
	for _, name := range order {
		if i >= len(names) {
			return
		}
		info, ok := locals[name]
		if !ok {
			continue
		}
		if _, isRef := info.Type.(*types.TReference); !isRef {
			continue
		}
		id, ok := life.ResolveNamed(names[i])
		if !ok {
			continue
		}
		info.Lifetime = id
		info.HasLifetime = true
		i++
	}
}

// namedLifetimeOrder lists the distinct lifetime names a `lives` clause
// introduces, in first-encounter order (each constraint's target, then
// its sources).
func namedLifetimeOrder(lives []ast.LivesConstraint) []string {
	seen := make(map[string]bool)
	var order []string
	for _, lc := range lives {
		if !seen[lc.Target] {
			seen[lc.Target] = true
			order = append(order, lc.Target)
		}
		for _, src := range lc.Sources {
			if !seen[src] {
				seen[src] = true
				order = append(order, src)
			}
		}
	}
	return order
}

func (d *Driver) resolveFuncSig(fn *ast.FuncDecl, scope *typeenv.Scope) (*types.TFunction, error) {
	params := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		ty, err := typecheck.ResolveASTType(p.Type, d.Registry, scope)
		if err != nil {
			return nil, err
		}
		params[i] = ty
	}
	ret, err := typecheck.ResolveASTType(fn.ReturnType, d.Registry, scope)
	if err != nil {
		return nil, err
	}
	return &types.TFunction{Params: params, Return: ret}, nil
}

// --- Pass 2: body analysis -----------------------------------------------

func (d *Driver) analyzeFunc(fn *ast.FuncDecl, method *ast.MethodDecl) {
	scope := symtab.NewScope(nil)
	typeScope := typeenv.NewScope(nil)
	for _, p := range fn.TypeParams {
		typeScope.Declare(p)
	}
	life := lifetime.NewContext()

	locals := make(map[string]*borrow.VarInfo)

	if method != nil {
		var recvType types.Type = &types.TUserDefined{Name: method.ReceiverType}
		if method.ReceiverRef != nil {
			recvType = &types.TReference{Inner: recvType, IsMutable: method.ReceiverRef.IsMutable}
		}
		scope.Define(&symtab.Symbol{Name: "self", Type: recvType, IsMutable: method.ReceiverRef != nil && method.ReceiverRef.IsMutable})
		locals["self"] = &borrow.VarInfo{Type: recvType, IsMutable: false}
	}

	for _, p := range fn.Params {
		ty, err := typecheck.ResolveASTType(p.Type, d.Registry, typeScope)
		if err != nil {
			d.fail(diag.PhaseTypecheck, diag.TCUndefinedType, err.Error(), p.Pos)
			ty = types.Void
		}
		scope.Define(&symtab.Symbol{Name: p.Name, Type: ty, IsMutable: false})
		locals[p.Name] = &borrow.VarInfo{Type: ty, IsMutable: false}
	}

	for _, lc := range fn.Lives {
		target := life.DeclareNamed(lc.Target)
		for _, src := range lc.Sources {
			source := life.DeclareNamed(src)
			life.AddOutlivesConstraint(source, target)
		}
	}
	if err := life.VerifyConstraints(); err != nil {
		d.fail(diag.PhaseLifetime, diag.LFTLifetimeError, err.Error(), fn.Pos)
	}
	assignParamLifetimes(fn, method, life, locals)

	retType, err := typecheck.ResolveASTType(fn.ReturnType, d.Registry, typeScope)
	if err != nil {
		d.fail(diag.PhaseTypecheck, diag.TCUndefinedType, err.Error(), fn.Pos)
		retType = types.Void
	}

	ic := &inferCtx{d: d, scope: scope, typeScope: typeScope, retType: retType}
	ic.checkBlock(fn.Body)

	MarkTailCalls(fn)

	if _, isVoid := retType.(*types.TVoid); !isVoid && !BlockReturns(fn.Body) {
		d.fail(diag.PhaseFlow, diag.FLWMissingReturn, fmt.Sprintf("function %q does not return a value on every path", fn.Name), fn.Pos)
	}

	bc := borrow.NewChecker(locals, life)
	bc.CheckBlock(fn.Body)
	d.diags = append(d.diags, bc.Errors()...)
	d.borrowReports = append(d.borrowReports, bc.Errors()...)
	d.lifetimeCount += life.LifetimeCount()
}
