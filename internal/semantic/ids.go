package semantic

import (
	"strings"

	"github.com/google/uuid"

	"github.com/fedesilva/minnieml/internal/ast"
)

// IDAssigner assigns stable, path-derived identifiers to every
// declaration that lacks one, then rebuilds the resolvables index.
//
// Top-level ids are <module>::<declClass>::<name>; struct fields append
// their field name; nested parameters append the parameter name plus an
// 8-hex random suffix, so the same name may appear in sibling lambdas.
type IDAssigner struct{}

func (IDAssigner) Name() string { return "id-assignment" }

// scopeSuffix returns a random disambiguator for nested scopes. A fresh
// suffix is drawn on every call; ids, once assigned, are kept.
func scopeSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func declClass(m ast.Member) string {
	switch m.(type) {
	case *ast.Bnd:
		return "bnd"
	case *ast.TypeDef:
		return "typedef"
	case *ast.TypeAlias:
		return "typealias"
	case *ast.TypeStruct:
		return "typestruct"
	}
	return ""
}

func (p IDAssigner) Process(s State) State {
	mod := s.Module
	for _, m := range mod.Members {
		class := declClass(m)
		switch d := m.(type) {
		case *ast.Bnd:
			if d.ID == "" {
				d.ID = mod.Name + "::" + class + "::" + d.Name
			}
			// User bindings whose body leads with a lambda are functions.
			if d.Meta.Origin == ast.OriginUser && d.IsFunction() {
				d.Meta.Origin = ast.OriginFunction
			}
			if l := d.BodyLambda(); l != nil && d.Meta.Arity == 0 {
				d.Meta.Arity = len(l.Params)
			}
			if d.Meta.OriginalName == "" {
				d.Meta.OriginalName = d.Name
			}
			p.assignNested(mod.Name, class, d)
		case *ast.TypeDef:
			if d.ID == "" {
				d.ID = mod.Name + "::" + class + "::" + d.Name
			}
		case *ast.TypeAlias:
			if d.ID == "" {
				d.ID = mod.Name + "::" + class + "::" + d.Name
			}
		case *ast.TypeStruct:
			if d.ID == "" {
				d.ID = mod.Name + "::" + class + "::" + d.Name
			}
			for _, f := range d.Fields {
				if f.ID == "" {
					f.ID = mod.Name + "::" + class + "::" + d.Name + "::" + f.Name
				}
			}
		}
	}
	rebuildIndex(s)
	return s
}

// assignNested gives ids to parameters of the binding's lambdas,
// innermost scopes included.
func (p IDAssigner) assignNested(modName, ownerClass string, b *ast.Bnd) {
	if b.Body == nil {
		return
	}
	ast.WalkLambdas(b.Body, func(l *ast.Lambda) {
		for _, fp := range l.Params {
			if fp.ID == "" {
				fp.ID = NestedParamID(modName, ownerClass, b.Name, fp.Name)
			}
		}
	})
}

// NestedParamID builds an id for a parameter nested under a binding.
func NestedParamID(modName, ownerClass, ownerName, paramName string) string {
	return modName + "::" + ownerClass + "::" + ownerName + "::" + paramName + "::" + scopeSuffix()
}

// rebuildIndex re-registers every declaration and every lambda parameter.
func rebuildIndex(s State) {
	ix := s.Index()
	for _, m := range s.Module.Members {
		switch d := m.(type) {
		case *ast.Bnd:
			ix.Updated(d)
			if d.Body != nil {
				ast.WalkLambdas(d.Body, func(l *ast.Lambda) {
					ix.UpdatedAll(l.Params)
				})
			}
		case *ast.TypeDef:
			ix.UpdatedType(d)
		case *ast.TypeAlias:
			ix.UpdatedType(d)
		case *ast.TypeStruct:
			ix.UpdatedType(d)
			// Fields are value-level selectables: qualified references
			// resolve to them.
			for _, f := range d.Fields {
				ix.Updated(f)
			}
		}
	}
}
