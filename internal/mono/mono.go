package mono

import (
	"fmt"

	"github.com/yuniruyuni/yunic/internal/ast"
)

// genericFunc/genericType record a collected generic definition (step 1).
type genericFunc struct {
	decl   *ast.FuncDecl
	method *ast.MethodDecl // non-nil if this is a method
}

type workItem struct {
	name string
	args []ast.Type
}

// Monomorphizer runs the full §4.8 pipeline over one program.
type Monomorphizer struct {
	funcs map[string]genericFunc
	types map[string]*ast.TypeDef

	queued  map[string]bool
	queue   []workItem
	results []ast.Item

	// Mangled records every produced mangled name, in the deterministic
	// order they were processed, for manifest reporting.
	Mangled []string
}

// NewMonomorphizer creates an empty monomorphizer.
func NewMonomorphizer() *Monomorphizer {
	return &Monomorphizer{
		funcs:  make(map[string]genericFunc),
		types:  make(map[string]*ast.TypeDef),
		queued: make(map[string]bool),
	}
}

// Run executes collect -> seed -> process -> rewrite -> strip over prog,
// returning the transformed, generics-free program.
func (m *Monomorphizer) Run(prog *ast.Program) *ast.Program {
	m.collect(prog)
	m.seed(prog)
	m.process()
	rewritten := m.rewrite(prog)
	return m.strip(rewritten)
}

// --- 1. collect ---

func (m *Monomorphizer) collect(prog *ast.Program) {
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FuncDecl:
			if len(it.TypeParams) > 0 {
				m.funcs[it.Name] = genericFunc{decl: it}
			}
		case *ast.TypeDef:
			if len(it.TypeParams) > 0 {
				m.types[it.Name] = it
			}
			for _, meth := range it.Methods {
				if len(it.TypeParams) > 0 {
					m.funcs[it.Name+"_"+meth.Func.Name] = genericFunc{decl: meth.Func, method: meth}
				}
			}
		}
	}
}

// --- 2. seed ---

func (m *Monomorphizer) seed(prog *ast.Program) {
	ast.Walk(prog, func(n ast.Node) {
		switch e := n.(type) {
		case *ast.CallExpr:
			if id, ok := e.Callee.(*ast.Identifier); ok {
				if _, generic := m.funcs[id.Name]; generic && len(e.ExplicitTypeArgs) > 0 {
					m.enqueue(id.Name, e.ExplicitTypeArgs)
				}
			}
		case *ast.StructLitExpr:
			if _, generic := m.types[e.TypeName]; generic && len(e.TypeArgs) > 0 {
				m.enqueue(e.TypeName, e.TypeArgs)
			}
		case *ast.EnumLitExpr:
			if _, generic := m.types[e.EnumType]; generic && len(e.TypeArgs) > 0 {
				m.enqueue(e.EnumType, e.TypeArgs)
			}
		case *ast.GenericType:
			if _, generic := m.types[e.Name]; generic {
				m.enqueue(e.Name, e.Args)
			}
		}
	})
}

func (m *Monomorphizer) enqueue(name string, args []ast.Type) {
	key := MangleName(name, args)
	if m.queued[key] {
		return
	}
	m.queued[key] = true
	m.queue = append(m.queue, workItem{name: name, args: args})
}

// --- 3. process queue ---

func (m *Monomorphizer) process() {
	for i := 0; i < len(m.queue); i++ {
		item := m.queue[i]
		mangled := MangleName(item.name, item.args)
		m.Mangled = append(m.Mangled, mangled)

		if fn, ok := m.funcs[item.name]; ok {
			subs := bindParams(fn.decl.TypeParams, item.args)
			clone := cloneFuncDecl(fn.decl, subs)
			clone.Name = mangled
			m.results = append(m.results, clone)
			continue
		}
		if td, ok := m.types[item.name]; ok {
			subs := bindParams(td.TypeParams, item.args)
			clone := cloneTypeDef(td, subs)
			clone.Name = mangled
			m.results = append(m.results, clone)
			continue
		}
	}
}

func bindParams(params []string, args []ast.Type) substTypes {
	subs := make(substTypes, len(params))
	for i, p := range params {
		if i < len(args) {
			subs[p] = args[i]
		}
	}
	return subs
}

// --- 4. rewrite call sites ---

func (m *Monomorphizer) rewrite(prog *ast.Program) *ast.Program {
	out := &ast.Program{Package: prog.Package, Imports: prog.Imports, Pos: prog.Pos}
	for _, item := range prog.Items {
		out.Items = append(out.Items, m.rewriteItem(item))
	}
	out.Items = append(out.Items, m.results...)
	return out
}

func (m *Monomorphizer) rewriteItem(item ast.Item) ast.Item {
	switch it := item.(type) {
	case *ast.FuncDecl:
		if len(it.TypeParams) > 0 {
			return it // stripped later
		}
		return cloneFuncDeclRewriting(it, m)
	case *ast.TypeDef:
		if len(it.TypeParams) > 0 {
			return it // stripped later
		}
		clone := *it
		clone.Methods = nil
		for _, meth := range it.Methods {
			clone.Methods = append(clone.Methods, &ast.MethodDecl{
				ReceiverType: meth.ReceiverType,
				ReceiverRef:  meth.ReceiverRef,
				Func:         cloneFuncDeclRewriting(meth.Func, m),
				Pos:          meth.Pos,
			})
		}
		return &clone
	case *ast.MethodDecl:
		return &ast.MethodDecl{
			ReceiverType: it.ReceiverType,
			ReceiverRef:  it.ReceiverRef,
			Func:         cloneFuncDeclRewriting(it.Func, m),
			Pos:          it.Pos,
		}
	default:
		return item
	}
}

// cloneFuncDeclRewriting clones fn while replacing every generic call /
// struct literal found inside its body with its mangled instantiation.
func cloneFuncDeclRewriting(fn *ast.FuncDecl, m *Monomorphizer) *ast.FuncDecl {
	clone := cloneFuncDecl(fn, nil)
	clone.TypeParams = fn.TypeParams
	ast.Walk(clone, func(n ast.Node) {
		switch e := n.(type) {
		case *ast.CallExpr:
			if id, ok := e.Callee.(*ast.Identifier); ok {
				if _, generic := m.funcs[id.Name]; generic && len(e.ExplicitTypeArgs) > 0 {
					e.Callee = &ast.Identifier{Name: MangleName(id.Name, e.ExplicitTypeArgs), Pos: id.Pos}
					e.ExplicitTypeArgs = nil
				}
			}
		case *ast.StructLitExpr:
			if _, generic := m.types[e.TypeName]; generic && len(e.TypeArgs) > 0 {
				e.TypeName = MangleName(e.TypeName, e.TypeArgs)
				e.TypeArgs = nil
			}
		case *ast.EnumLitExpr:
			if _, generic := m.types[e.EnumType]; generic && len(e.TypeArgs) > 0 {
				e.EnumType = MangleName(e.EnumType, e.TypeArgs)
				e.TypeArgs = nil
			}
		}
	})
	return clone
}

// --- 5. strip ---

func (m *Monomorphizer) strip(prog *ast.Program) *ast.Program {
	out := &ast.Program{Package: prog.Package, Imports: prog.Imports, Pos: prog.Pos}
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FuncDecl:
			if len(it.TypeParams) == 0 {
				out.Items = append(out.Items, it)
			}
		case *ast.TypeDef:
			if len(it.TypeParams) == 0 {
				out.Items = append(out.Items, it)
			}
		default:
			out.Items = append(out.Items, it)
		}
	}
	return out
}

// String renders an error-friendly summary, used by tests and the CLI's
// `mangle` subcommand.
func (m *Monomorphizer) String() string {
	return fmt.Sprintf("%d instantiation(s)", len(m.Mangled))
}
