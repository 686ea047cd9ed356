package semantic

import (
	"testing"

	"github.com/fedesilva/minnieml/internal/ast"
)

// Builders shared by the phase tests. They construct modules the way the
// parser hands them over: flat term sequences, unresolved references,
// concrete source locations.

var testLine = 0

func loc() ast.Loc {
	testLine++
	return ast.Loc{
		Start: ast.SrcPoint{Line: testLine, Col: 1, Offset: testLine * 40},
		End:   ast.SrcPoint{Line: testLine, Col: 40, Offset: testLine*40 + 39},
	}
}

func newModule(members ...ast.Member) *ast.Module {
	return &ast.Module{
		Name:        "test",
		Members:     members,
		Resolvables: ast.NewResolvablesIndex(),
		Orig:        loc(),
	}
}

func tRef(name string) *ast.TypeRef { return &ast.TypeRef{Name: name, Orig: loc()} }

func ref(name string) *ast.Ref { return &ast.Ref{Name: name, Orig: loc()} }

func qref(qualifier, name string) *ast.Ref {
	return &ast.Ref{Name: name, Qualifier: ref(qualifier), Orig: loc()}
}

func intLit(v int64) *ast.LiteralInt { return &ast.LiteralInt{Value: v, Orig: loc()} }

func strLit(v string) *ast.LiteralString { return &ast.LiteralString{Value: v, Orig: loc()} }

func fnParam(name string, asc ast.Type) *ast.FnParam {
	return &ast.FnParam{Name: name, TypeAsc: asc, Orig: loc()}
}

func expr(terms ...ast.Term) *ast.Expr {
	return &ast.Expr{Terms: terms, Orig: loc()}
}

func group(terms ...ast.Term) *ast.TermGroup {
	return &ast.TermGroup{Inner: expr(terms...), Orig: loc()}
}

func cond(c, ifTrue, ifFalse *ast.Expr) *ast.Cond {
	return &ast.Cond{Cond: c, IfTrue: ifTrue, IfFalse: ifFalse, Orig: loc()}
}

// letIn is a let-binding in its parsed shape: App(Lambda([name], body), value).
func letIn(name string, value ast.Term, body ...ast.Term) *ast.App {
	l := loc()
	return &ast.App{
		Fn: &ast.Lambda{
			Params: []*ast.FnParam{{Name: name, Orig: l}},
			Body:   expr(body...),
			Orig:   l,
		},
		Arg:  value,
		Orig: l,
	}
}

// fnBnd is a function declaration: a binding whose body leads with a
// lambda.
func fnBnd(name string, params []*ast.FnParam, ret ast.Type, body ...ast.Term) *ast.Bnd {
	l := loc()
	return &ast.Bnd{
		Name:    name,
		TypeAsc: ret,
		Body: &ast.Expr{
			Terms: []ast.Term{&ast.Lambda{Params: params, Body: expr(body...), Orig: l}},
			Orig:  l,
		},
		Orig: l,
	}
}

// valBnd is a plain value binding.
func valBnd(name string, terms ...ast.Term) *ast.Bnd {
	return &ast.Bnd{Name: name, Body: expr(terms...), Orig: loc()}
}

func structDecl(name string, fields ...*ast.Field) *ast.TypeStruct {
	return &ast.TypeStruct{Name: name, Fields: fields, Orig: loc()}
}

func field(name string, t ast.Type) *ast.Field {
	return &ast.Field{Name: name, Type: t, Orig: loc()}
}

// allPhases mirrors the pipeline order; tests run prefixes of it.
func allPhases() []Phase {
	return []Phase{
		StdlibInjector{},
		ErrorNodeCheck{},
		DuplicateNameCheck{},
		IDAssigner{},
		TypeResolver{},
		ConstructorGenerator{},
		RefResolver{},
		ExprRewriter{},
		ResolvablesIndexer{},
		TypeChecker{},
		MemFuncGenerator{},
		OwnershipAnalyzer{},
		TailCallDetector{},
		PreCodegenValidator{},
	}
}

// runThrough executes phases up to and including the named one.
func runThrough(t *testing.T, m *ast.Module, cfg Config, last string) State {
	t.Helper()
	st := NewState(m, cfg)
	for _, p := range allPhases() {
		st = p.Process(st)
		if p.Name() == last {
			return st
		}
	}
	t.Fatalf("unknown phase %q", last)
	return st
}

func findBnd(t *testing.T, st State, name string) *ast.Bnd {
	t.Helper()
	for _, m := range st.Module.Members {
		if b, ok := m.(*ast.Bnd); ok && b.Name == name {
			return b
		}
	}
	t.Fatalf("binding %s not found", name)
	return nil
}

func errorKinds(st State) []Kind {
	kinds := make([]Kind, len(st.Errors))
	for i, e := range st.Errors {
		kinds[i] = e.Kind
	}
	return kinds
}

func hasErrorKind(st State, k Kind) bool {
	for _, e := range st.Errors {
		if e.Kind == k {
			return true
		}
	}
	return false
}
