package semantic

import (
	"strings"
	"testing"

	"github.com/fedesilva/minnieml/internal/ast"
)

func TestIDSchemeForDeclarations(t *testing.T) {
	m := newModule(
		valBnd("x", intLit(1)),
		structDecl("Point", field("x", tRef("Int")), field("y", tRef("Int"))),
		&ast.TypeAlias{Name: "Coord", Ref: tRef("Int"), Orig: loc()},
		&ast.TypeDef{Name: "Handle", Orig: loc()},
	)
	st := runThrough(t, m, Config{}, "id-assignment")

	tests := []struct{ name, id string }{
		{"x", "test::bnd::x"},
		{"Point", "test::typestruct::Point"},
		{"Coord", "test::typealias::Coord"},
		{"Handle", "test::typedef::Handle"},
	}
	for _, tt := range tests {
		found := false
		for _, mb := range st.Module.Members {
			r, ok := mb.(ast.Resolvable)
			if !ok || r.ResolvableName() != tt.name {
				continue
			}
			found = true
			if r.ResolvableID() != tt.id {
				t.Errorf("%s: id %q, want %q", tt.name, r.ResolvableID(), tt.id)
			}
		}
		if !found {
			t.Errorf("%s not found", tt.name)
		}
	}

	// Struct fields carry the struct path.
	for _, mb := range st.Module.Members {
		s, ok := mb.(*ast.TypeStruct)
		if !ok || s.Name != "Point" {
			continue
		}
		if s.Fields[0].ID != "test::typestruct::Point::x" {
			t.Errorf("field id %q, want test::typestruct::Point::x", s.Fields[0].ID)
		}
	}
}

func TestNestedParamIDsGetRandomSuffix(t *testing.T) {
	m := newModule(
		fnBnd("f", []*ast.FnParam{fnParam("n", tRef("Int"))}, tRef("Int"),
			letIn("k", expr(intLit(1)), ref("k"), ref("+"), ref("n"))),
	)
	st := runThrough(t, m, Config{}, "id-assignment")

	b := findBnd(t, st, "f")
	var ids []string
	ast.WalkLambdas(b.Body, func(l *ast.Lambda) {
		for _, p := range l.Params {
			ids = append(ids, p.ID)
		}
	})
	if len(ids) != 2 {
		t.Fatalf("%d params with ids, want 2", len(ids))
	}
	for _, id := range ids {
		if !strings.HasPrefix(id, "test::bnd::f::") {
			t.Errorf("param id %q not under test::bnd::f::", id)
		}
		segs := strings.Split(id, "::")
		suffix := segs[len(segs)-1]
		if len(suffix) != 8 {
			t.Errorf("param id %q: suffix %q is not 8 hex chars", id, suffix)
		}
	}
}

func TestEveryDeclarationHasIDAfterAssignment(t *testing.T) {
	m := newModule(
		valBnd("x", intLit(1)),
		fnBnd("f", []*ast.FnParam{fnParam("n", tRef("Int"))}, tRef("Int"), ref("n")),
		structDecl("S", field("s", tRef("String"))),
	)
	st := runThrough(t, m, Config{}, "id-assignment")

	for _, mb := range st.Module.Members {
		r, ok := mb.(ast.Resolvable)
		if !ok {
			continue
		}
		if r.ResolvableID() == "" {
			t.Errorf("%s has no id", r.ResolvableName())
		}
		if _, found := st.Index().Lookup(r.ResolvableID()); !found {
			if _, foundT := st.Index().LookupType(r.ResolvableID()); !foundT {
				t.Errorf("%s (%s) not in the rebuilt index", r.ResolvableName(), r.ResolvableID())
			}
		}
	}
}

func TestUserFunctionOriginNormalized(t *testing.T) {
	m := newModule(fnBnd("f", []*ast.FnParam{fnParam("n", tRef("Int"))}, tRef("Int"), ref("n")))
	st := runThrough(t, m, Config{}, "id-assignment")

	b := findBnd(t, st, "f")
	if b.Meta.Origin != ast.OriginFunction {
		t.Errorf("origin %s, want function", b.Meta.Origin)
	}
	if b.Meta.Arity != 1 {
		t.Errorf("arity %d, want 1", b.Meta.Arity)
	}
}
