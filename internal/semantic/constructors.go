package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// ConstructorGenerator synthesizes a __mk_T binding for every struct-like
// type: each TypeStruct, and each TypeDef whose spec is a non-empty native
// struct. The binding takes one argument per field in declaration order
// and produces a DataConstructor typed by the struct's TypeRef. It is
// placed immediately after the type declaration.
type ConstructorGenerator struct{}

func (ConstructorGenerator) Name() string { return "constructor-generation" }

func (p ConstructorGenerator) Process(s State) State {
	mod := s.Module
	var members []ast.Member
	for _, m := range mod.Members {
		members = append(members, m)
		switch d := m.(type) {
		case *ast.TypeStruct:
			ctor := p.makeConstructor(mod.Name, d.Name, d.ID, d.Fields)
			members = append(members, ctor)
			registerBinding(s.Index(), ctor)
		case *ast.TypeDef:
			ns, ok := d.Spec.(*ast.NativeStruct)
			if !ok || len(ns.Fields) == 0 {
				continue
			}
			ctor := p.makeConstructor(mod.Name, d.Name, d.ID, ns.Fields)
			members = append(members, ctor)
			registerBinding(s.Index(), ctor)
		}
	}
	mod.Members = members
	return s
}

func (p ConstructorGenerator) makeConstructor(modName, typeName, typeID string, fields []*ast.Field) *ast.Bnd {
	name := MkName(typeName)
	params := make([]*ast.FnParam, len(fields))
	for i, f := range fields {
		params[i] = &ast.FnParam{
			Name:    f.Name,
			ID:      NestedParamID(modName, "bnd", name, f.Name),
			TypeAsc: f.Type,
			Orig:    ast.Synth{},
		}
	}
	structRef := &ast.TypeRef{Name: typeName, ResolvedID: typeID, Orig: ast.Synth{}}
	body := &ast.Expr{
		Terms: []ast.Term{
			&ast.Lambda{
				Params: params,
				Body: &ast.Expr{
					Terms: []ast.Term{&ast.DataConstructor{TypeRef: structRef, Orig: ast.Synth{}}},
					Orig:  ast.Synth{},
				},
				Orig: ast.Synth{},
			},
		},
		Orig: ast.Synth{},
	}
	return &ast.Bnd{
		Name:    name,
		ID:      modName + "::bnd::" + name,
		TypeAsc: structRef,
		Body:    body,
		Meta: ast.BindingMeta{
			Origin:       ast.OriginConstructor,
			Arity:        len(fields),
			OriginalName: typeName,
			MangledName:  name,
			TypeName:     typeName,
		},
		Orig: ast.Synth{},
	}
}

func registerBinding(ix *ast.ResolvablesIndex, b *ast.Bnd) {
	ix.Updated(b)
	if l := b.BodyLambda(); l != nil {
		ix.UpdatedAll(l.Params)
	}
}
