package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// PreCodegenValidator runs the mode-specific checks that gate IR
// emission. Binary compilations need a main binding of function origin
// with no parameters returning Unit or Int; libraries have no entry-point
// constraint; the remaining modes pass through.
type PreCodegenValidator struct{}

func (PreCodegenValidator) Name() string { return "pre-codegen-validation" }

func (p PreCodegenValidator) Process(s State) State {
	if s.Cfg.Mode != ModeBinary {
		return s
	}

	var main *ast.Bnd
	for _, m := range s.Module.Members {
		if b, ok := m.(*ast.Bnd); ok && b.Name == "main" {
			main = b
			break
		}
	}
	if main == nil {
		return s.WithErrors(errf(p.Name(), InvalidEntryPoint, ast.Synth{},
			"binary compilation requires a main function"))
	}
	if main.Meta.Origin != ast.OriginFunction {
		return s.WithErrors(namedErrf(p.Name(), InvalidEntryPoint, "main", main.Orig,
			"main must be a function, not a %s binding", main.Meta.Origin))
	}
	l := main.BodyLambda()
	if l == nil || len(l.Params) != 0 {
		return s.WithErrors(namedErrf(p.Name(), InvalidEntryPoint, "main", main.Orig,
			"main must have no parameters"))
	}
	if !validMainReturn(main, s.Index()) {
		return s.WithErrors(namedErrf(p.Name(), InvalidEntryPoint, "main", main.Orig,
			"main must return Unit or Int, not %s", mainReturn(main)))
	}
	return s
}

func mainReturn(b *ast.Bnd) ast.Type {
	if fn, ok := b.TypeSpec.(*ast.TypeFn); ok {
		return fn.Return
	}
	return b.TypeAsc
}

func validMainReturn(b *ast.Bnd, ix *ast.ResolvablesIndex) bool {
	ret := mainReturn(b)
	switch t := ret.(type) {
	case nil:
		return false
	case *ast.TypeUnit:
		return true
	case *ast.TypeRef:
		if t.Name == "Unit" || t.Name == "Int" {
			return true
		}
		// Aliases of Int and Unit qualify through their chains.
		if decl, ok := ix.LookupType(t.ResolvedID); ok {
			if alias, isAlias := decl.(*ast.TypeAlias); isAlias && alias.TypeSpec != nil {
				if ref, isRef := alias.TypeSpec.(*ast.TypeRef); isRef {
					return ref.Name == "Unit" || ref.Name == "Int"
				}
			}
		}
	}
	return false
}
