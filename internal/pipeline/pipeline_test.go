package pipeline

import (
	"testing"

	"github.com/fedesilva/minnieml/internal/ast"
	"github.com/fedesilva/minnieml/internal/semantic"
)

func srcLoc(line int) ast.Loc {
	return ast.Loc{
		Start: ast.SrcPoint{Line: line, Col: 1, Offset: line * 50},
		End:   ast.SrcPoint{Line: line, Col: 50, Offset: line*50 + 49},
	}
}

// helloModule is roughly:
//
//	fn main(): Unit = let s = to_string 42; println s
func helloModule() *ast.Module {
	l := srcLoc(1)
	return &ast.Module{
		Name:        "hello",
		Resolvables: ast.NewResolvablesIndex(),
		Orig:        l,
		Members: []ast.Member{
			&ast.Bnd{
				Name:    "main",
				TypeAsc: &ast.TypeRef{Name: "Unit", Orig: l},
				Orig:    l,
				Body: &ast.Expr{
					Orig: l,
					Terms: []ast.Term{&ast.Lambda{
						Orig: l,
						Body: &ast.Expr{
							Orig: l,
							Terms: []ast.Term{&ast.App{
								Orig: l,
								Fn: &ast.Lambda{
									Orig:   l,
									Params: []*ast.FnParam{{Name: "s", Orig: l}},
									Body: &ast.Expr{
										Orig:  l,
										Terms: []ast.Term{&ast.Ref{Name: "println", Orig: l}, &ast.Ref{Name: "s", Orig: l}},
									},
								},
								Arg: &ast.Expr{
									Orig:  l,
									Terms: []ast.Term{&ast.Ref{Name: "to_string", Orig: l}, &ast.LiteralInt{Value: 42, Orig: l}},
								},
							}},
						},
					}},
				},
			},
		},
	}
}

func TestRunHelloEndToEnd(t *testing.T) {
	result := Run(Config{Mode: semantic.ModeBinary}, helloModule())

	if len(result.State.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.State.Errors)
	}
	if !result.Emittable() {
		t.Fatal("clean module must be emittable")
	}
	for _, phase := range Phases() {
		if _, ok := result.PhaseTimings[phase.Name()]; !ok {
			t.Errorf("no timing recorded for %s", phase.Name())
		}
	}
}

func TestRunResolvesEveryReference(t *testing.T) {
	result := Run(Config{Mode: semantic.ModeBinary}, helloModule())
	mod := result.State.Module

	for _, m := range mod.Members {
		b, ok := m.(*ast.Bnd)
		if !ok || b.Body == nil {
			continue
		}
		ast.WalkTerms(b.Body, func(t2 ast.Term) bool {
			if r, isRef := t2.(*ast.Ref); isRef {
				if r.ResolvedID == "" {
					t.Errorf("unresolved reference %s in %s", r.Name, b.Name)
				}
			}
			return true
		})
	}
}

func TestRunIndexClosedUnderResolvedIDs(t *testing.T) {
	result := Run(Config{Mode: semantic.ModeBinary}, helloModule())
	mod := result.State.Module
	ix := mod.Resolvables

	for _, m := range mod.Members {
		b, ok := m.(*ast.Bnd)
		if !ok || b.Body == nil {
			continue
		}
		ast.WalkTerms(b.Body, func(t2 ast.Term) bool {
			r, isRef := t2.(*ast.Ref)
			if !isRef || r.ResolvedID == "" {
				return true
			}
			if _, found := ix.Lookup(r.ResolvedID); !found {
				t.Errorf("id %s referenced by %s is not in the index", r.ResolvedID, r.Name)
			}
			return true
		})
	}
}

func TestRunEveryBindingTyped(t *testing.T) {
	result := Run(Config{Mode: semantic.ModeBinary}, helloModule())

	for _, m := range result.State.Module.Members {
		if b, ok := m.(*ast.Bnd); ok {
			if b.TypeSpec == nil && b.TypeAsc == nil {
				t.Errorf("binding %s has neither spec nor ascription", b.Name)
			}
		}
	}
}

func TestRunReportsCarryPhaseAndSpan(t *testing.T) {
	l := srcLoc(3)
	mod := &ast.Module{
		Name:        "broken",
		Resolvables: ast.NewResolvablesIndex(),
		Orig:        l,
		Members: []ast.Member{
			&ast.Bnd{
				Name: "x",
				Orig: l,
				Body: &ast.Expr{Terms: []ast.Term{&ast.Ref{Name: "nope", Orig: l}}, Orig: l},
			},
		},
	}
	result := Run(Config{Mode: semantic.ModeLibrary}, mod)

	if result.Emittable() {
		t.Fatal("module with undefined reference must not be emittable")
	}
	found := false
	for _, r := range result.Reports {
		if r.Code == "SEM002" {
			found = true
			if r.Phase != "reference-resolution" {
				t.Errorf("report phase %q, want reference-resolution", r.Phase)
			}
			if r.Span == nil || r.Span.Start.Line != 3 {
				t.Errorf("report span %+v, want line 3", r.Span)
			}
		}
	}
	if !found {
		t.Errorf("no SEM002 report emitted: %+v", result.Reports)
	}
}

func TestRunGeneratedHelpersExist(t *testing.T) {
	l := srcLoc(1)
	mod := helloModule()
	mod.Members = append([]ast.Member{
		&ast.TypeStruct{
			Name:   "Pair",
			Orig:   l,
			Fields: []*ast.Field{{Name: "s", Type: &ast.TypeRef{Name: "String", Orig: l}, Orig: l}},
		},
	}, mod.Members...)

	result := Run(Config{Mode: semantic.ModeBinary}, mod)
	names := map[string]bool{}
	for _, m := range result.State.Module.Members {
		if b, ok := m.(*ast.Bnd); ok {
			names[b.Name] = true
		}
	}
	for _, want := range []string{"__mk_Pair", "__free_Pair", "__clone_Pair"} {
		if !names[want] {
			t.Errorf("generated binding %s missing", want)
		}
	}
}
