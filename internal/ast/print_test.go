package ast

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func TestPrintModule(t *testing.T) {
	m := sampleModule()
	snaps.MatchSnapshot(t, Print(m))
}

func TestPrintIncludesComputedFacts(t *testing.T) {
	m := &Module{
		Name:        "facts",
		Resolvables: NewResolvablesIndex(),
		Orig:        Synth{},
		Members: []Member{
			&Bnd{
				Name:     "f",
				ID:       "facts::bnd::f",
				TypeSpec: &TypeFn{Params: []Type{&TypeRef{Name: "Int", Orig: Synth{}}}, Return: &TypeRef{Name: "Int", Orig: Synth{}}, Orig: Synth{}},
				Orig:     Synth{},
				Body: &Expr{
					Orig: Synth{},
					Terms: []Term{&Lambda{
						Params: []*FnParam{{Name: "n", Orig: Synth{}}},
						Body:   &Expr{Terms: []Term{&Ref{Name: "n", Orig: Synth{}}}, Orig: Synth{}},
						Meta:   LambdaMeta{IsTailRecursive: true},
						Orig:   Synth{},
					}},
				},
			},
		},
	}
	out := Print(m)
	for _, want := range []string{":id facts::bnd::f", ":type", ":tailrec"} {
		if !strings.Contains(out, want) {
			t.Errorf("printed module lacks %q:\n%s", want, out)
		}
	}
}
