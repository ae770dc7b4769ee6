// Package codegen lowers a fully analyzed, monomorphized internal/ast
// program into an LLVM IR module (§4.9/§4.10/§4.11). There is no separate
// Core IR: codegen walks ast.Expr/ast.Stmt/ast.Pattern directly, the way
// internal/dtree compiles match arms directly against the surface AST.
package codegen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/diag"
	"github.com/yuniruyuni/yunic/internal/irtypes"
	"github.com/yuniruyuni/yunic/internal/runtimeabi"
	"github.com/yuniruyuni/yunic/internal/symtab"
	"github.com/yuniruyuni/yunic/internal/typecheck"
	"github.com/yuniruyuni/yunic/internal/types"
)

// Generator owns every piece of LLVM state for one compilation unit: the
// context, the module being built, a builder reused across function
// bodies (one function at a time — Generator is not safe for concurrent
// use on the same run, mirroring internal/pipeline.Pipeline), the type
// manager, and the runtime ABI registry.
type Generator struct {
	ctx     llvm.Context
	mod     llvm.Module
	builder llvm.Builder
	types   *irtypes.Manager
	runtime *runtimeabi.Registry
	reg     *symtab.TypeRegistry

	funcs map[string]llvm.Value // declared LLVM functions, keyed by their emitted (possibly mangled) name

	// variantElems and variantFieldNames record each enum variant's payload
	// shape (tag-order element types, and for struct-kind variants their
	// field names in the same order) so enum construction and
	// pattern-match destructuring can build/read the { tag, payload }
	// heap box irtypes.Manager registers for the variant.
	variantElems      map[string]map[string][]types.Type
	variantFieldNames map[string]map[string][]string

	// curFn and curRetType are set for the duration of one genFuncBody
	// call — Generator lowers one function body at a time, so these are
	// plain fields rather than parameters threaded through every
	// statement/expression helper.
	curFn      llvm.Value
	curRetType types.Type
}

// NewGenerator creates a Generator that will emit into a fresh module
// named moduleName.
func NewGenerator(moduleName string) *Generator {
	ctx := llvm.NewContext()
	mod := ctx.NewModule(moduleName)
	reg := symtab.NewTypeRegistry()
	return &Generator{
		ctx:     ctx,
		mod:     mod,
		builder: ctx.NewBuilder(),
		types:   irtypes.NewManager(ctx, reg),
		runtime: runtimeabi.NewRegistry(ctx, mod),
		reg:     reg,
		funcs:   make(map[string]llvm.Value),

		variantElems:      make(map[string]map[string][]types.Type),
		variantFieldNames: make(map[string]map[string][]string),
	}
}

// Module returns the module built so far.
func (g *Generator) Module() llvm.Module { return g.mod }

// Dispose releases the builder and context (and, transitively, the
// module). Call after the module has been emitted to a file or memory
// buffer.
func (g *Generator) Dispose() {
	g.builder.Dispose()
	g.mod.Dispose()
	g.ctx.Dispose()
}

func cgFail(code, msg string, pos ast.Pos) error {
	span := &ast.Span{Start: pos, End: pos}
	return diag.Wrap(diag.New(diag.PhaseCodegen, code, msg, span))
}

// GenerateProgram lowers prog — already analyzed and monomorphized, so it
// carries no remaining type parameters — into g's module. It registers
// every struct/enum/function signature, then every struct/enum LLVM
// layout, then every function body, in that order so forward references
// between top-level items resolve regardless of declaration order.
func (g *Generator) GenerateProgram(prog *ast.Program) error {
	if err := g.registerSignatures(prog); err != nil {
		return err
	}
	if err := g.registerLayouts(prog); err != nil {
		return err
	}
	if err := g.declareFunctions(prog); err != nil {
		return err
	}
	return g.defineFunctions(prog)
}

// registerSignatures records every struct/enum name (so ResolveASTType
// can see forward references) and every function/method signature, ahead
// of lowering any field or parameter type.
func (g *Generator) registerSignatures(prog *ast.Program) error {
	for _, item := range prog.Items {
		if td, ok := item.(*ast.TypeDef); ok {
			info := &symtab.TypeDefInfo{
				Name:        td.Name,
				IsEnum:      td.Kind == ast.TypeDefEnum,
				TypeParams:  td.TypeParams,
				FieldIndex:  make(map[string]int),
				Variants:    make(map[string]int),
				VariantKind: make(map[string]int),
			}
			if !g.reg.RegisterType(info) {
				return cgFail(diag.CGInvalidType, fmt.Sprintf("duplicate type %q", td.Name), td.Pos)
			}
		}
	}
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FuncDecl:
			sig, err := g.resolveFuncSig(it)
			if err != nil {
				return cgFail(diag.CGTypeError, err.Error(), it.Pos)
			}
			if !g.reg.RegisterFunc(it.Name, sig) {
				return cgFail(diag.CGInvalidType, fmt.Sprintf("duplicate function %q", it.Name), it.Pos)
			}
		case *ast.TypeDef:
			for _, meth := range it.Methods {
				sig, err := g.resolveFuncSig(meth.Func)
				if err != nil {
					return cgFail(diag.CGTypeError, err.Error(), meth.Pos)
				}
				info, _ := g.reg.LookupType(it.Name)
				if !info.RegisterMethod(meth.Func.Name, sig) {
					return cgFail(diag.CGInvalidType, fmt.Sprintf("duplicate method %s.%s", it.Name, meth.Func.Name), meth.Pos)
				}
			}
		}
	}
	return nil
}

func (g *Generator) resolveFuncSig(fn *ast.FuncDecl) (*types.TFunction, error) {
	params := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		ty, err := typecheck.ResolveASTType(p.Type, g.reg, nil)
		if err != nil {
			return nil, fmt.Errorf("function %q parameter %q: %w", fn.Name, p.Name, err)
		}
		params[i] = ty
	}
	ret, err := typecheck.ResolveASTType(fn.ReturnType, g.reg, nil)
	if err != nil {
		return nil, fmt.Errorf("function %q return type: %w", fn.Name, err)
	}
	return &types.TFunction{Params: params, Return: ret}, nil
}

// registerLayouts lowers every struct's field list and every enum's
// variant set into LLVM types, pre-declaring every struct before
// finalizing any of them so mutually-referencing structs resolve.
func (g *Generator) registerLayouts(prog *ast.Program) error {
	for _, item := range prog.Items {
		if td, ok := item.(*ast.TypeDef); ok && td.Kind == ast.TypeDefStruct {
			g.types.PreDeclareStruct(td.Name)
		}
	}
	for _, item := range prog.Items {
		td, ok := item.(*ast.TypeDef)
		if !ok {
			continue
		}
		switch td.Kind {
		case ast.TypeDefStruct:
			if err := g.finalizeStruct(td); err != nil {
				return err
			}
		case ast.TypeDefEnum:
			if err := g.finalizeEnum(td); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) finalizeStruct(td *ast.TypeDef) error {
	fieldNames := make([]string, len(td.Fields))
	fieldTypes := make([]types.Type, len(td.Fields))
	for i, f := range td.Fields {
		ty, err := typecheck.ResolveASTType(f.Type, g.reg, nil)
		if err != nil {
			return cgFail(diag.CGTypeError, fmt.Sprintf("struct %q field %q: %s", td.Name, f.Name, err), td.Pos)
		}
		fieldNames[i] = f.Name
		fieldTypes[i] = ty
	}
	if err := g.types.FinalizeStruct(td.Name, fieldNames, fieldTypes); err != nil {
		return cgFail(diag.CGInternal, err.Error(), td.Pos)
	}
	info, _ := g.reg.LookupType(td.Name)
	info.FieldNames = fieldNames
	info.Fields = fieldTypes
	for i, name := range fieldNames {
		info.FieldIndex[name] = i
	}
	return nil
}

func (g *Generator) finalizeEnum(td *ast.TypeDef) error {
	variantOrder := make([]string, len(td.Variants))
	payloadFree := true
	for i, v := range td.Variants {
		variantOrder[i] = v.Name
		if v.Kind != ast.VariantUnit {
			payloadFree = false
		}
	}
	g.types.RegisterEnum(td.Name, variantOrder, payloadFree)

	info, _ := g.reg.LookupType(td.Name)
	g.variantElems[td.Name] = make(map[string][]types.Type)
	g.variantFieldNames[td.Name] = make(map[string][]string)

	for i, v := range td.Variants {
		info.Variants[v.Name] = i
		info.VariantKind[v.Name] = int(v.Kind)

		var elems []types.Type
		switch v.Kind {
		case ast.VariantTuple:
			elems = make([]types.Type, len(v.TupleFields))
			for j, ft := range v.TupleFields {
				ty, err := typecheck.ResolveASTType(ft, g.reg, nil)
				if err != nil {
					return cgFail(diag.CGTypeError, fmt.Sprintf("enum %q variant %q: %s", td.Name, v.Name, err), td.Pos)
				}
				elems[j] = ty
			}
		case ast.VariantStruct:
			elems = make([]types.Type, len(v.StructFields))
			names := make([]string, len(v.StructFields))
			for j, f := range v.StructFields {
				ty, err := typecheck.ResolveASTType(f.Type, g.reg, nil)
				if err != nil {
					return cgFail(diag.CGTypeError, fmt.Sprintf("enum %q variant %q field %q: %s", td.Name, v.Name, f.Name, err), td.Pos)
				}
				elems[j] = ty
				names[j] = f.Name
			}
			g.variantFieldNames[td.Name][v.Name] = names
		}
		g.variantElems[td.Name][v.Name] = elems

		payload, err := g.types.Lower(&types.TTuple{Elements: elems})
		if err != nil {
			return cgFail(diag.CGInternal, err.Error(), td.Pos)
		}
		g.types.SetVariantPayload(td.Name, v.Name, payload)
	}
	return nil
}

// mangledMethodName renders a method's emitted symbol, per §4.10:
// ReceiverType_Method.
func mangledMethodName(receiverType, method string) string {
	return receiverType + "_" + method
}
