package mono

import (
	"fmt"
	"strings"

	"github.com/yuniruyuni/yunic/internal/ast"
)

// MangleType renders t structurally per §4.8's mangling rule.
func MangleType(t ast.Type) string {
	switch v := t.(type) {
	case *ast.PrimType:
		return v.String()
	case *ast.UserDefinedType:
		return v.Name
	case *ast.ArrayType:
		return "array_" + MangleType(v.Element)
	case *ast.Reference:
		if v.IsMutable {
			return "ref_mut_" + MangleType(v.Inner)
		}
		return "ref_" + MangleType(v.Inner)
	case *ast.TupleType:
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = MangleType(e)
		}
		return "tuple_" + strings.Join(parts, "_")
	case *ast.FuncType:
		params := make([]string, len(v.Params))
		for i, p := range v.Params {
			params[i] = MangleType(p)
		}
		return fmt.Sprintf("fn_%s_%s", strings.Join(params, "_"), MangleType(v.Return))
	case *ast.GenericType:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = MangleType(a)
		}
		return v.Name + "_" + strings.Join(args, "_")
	case *ast.TypeVarType:
		return v.Name
	default:
		return "unknown"
	}
}

// MangleName produces the deterministic, injective instantiation name
// `base_name_arg1_arg2…` for base instantiated with args.
func MangleName(base string, args []ast.Type) string {
	if len(args) == 0 {
		return base
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = MangleType(a)
	}
	return base + "_" + strings.Join(parts, "_")
}
