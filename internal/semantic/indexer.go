package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// ResolvablesIndexer re-walks all bindings and inserts every parameter
// appearing in nested lambdas, including those the expression rewriter
// synthesized, so later phases can look parameter ids up. Parameters still
// missing an id receive one here.
type ResolvablesIndexer struct{}

func (ResolvablesIndexer) Name() string { return "resolvables-indexing" }

func (p ResolvablesIndexer) Process(s State) State {
	ix := s.Index()
	for _, m := range s.Module.Members {
		b, ok := m.(*ast.Bnd)
		if !ok {
			continue
		}
		ix.Updated(b)
		if b.Body == nil {
			continue
		}
		ast.WalkLambdas(b.Body, func(l *ast.Lambda) {
			for _, fp := range l.Params {
				if fp.ID == "" {
					fp.ID = NestedParamID(s.Module.Name, "bnd", b.Name, fp.Name)
				}
			}
			ix.UpdatedAll(l.Params)
		})
	}
	return s
}
