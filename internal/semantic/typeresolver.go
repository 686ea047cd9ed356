package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// TypeResolver resolves type references, computes alias specs and rewrites
// undefined references to invalid-type markers. It runs four passes over
// the module: build the type map, resolve the type map against itself
// (twice, so alias chains close regardless of declaration order), rewrite
// type references in member bodies and ascriptions, and compute each
// alias's canonical spec.
type TypeResolver struct{}

func (TypeResolver) Name() string { return "type-resolution" }

type typeScope struct {
	phase string
	byName map[string][]ast.Resolvable
	byID   map[string]ast.Resolvable
	errs   []*Error
}

func (p TypeResolver) Process(s State) State {
	sc := &typeScope{
		phase:  p.Name(),
		byName: make(map[string][]ast.Resolvable),
		byID:   make(map[string]ast.Resolvable),
	}

	// Pass 1: type map.
	for _, m := range s.Module.Members {
		switch d := m.(type) {
		case *ast.TypeDef:
			sc.add(d)
		case *ast.TypeAlias:
			sc.add(d)
		case *ast.TypeStruct:
			sc.add(d)
		}
	}

	// Pass 2: resolve the type map against itself. Two rounds so aliases
	// declared after their targets, and struct fields naming aliases,
	// settle.
	for i := 0; i < 2; i++ {
		quiet := i == 0
		for _, m := range s.Module.Members {
			switch d := m.(type) {
			case *ast.TypeDef:
				if d.Spec != nil {
					d.Spec = sc.resolve(d.Spec, quiet)
				}
			case *ast.TypeAlias:
				d.Ref = sc.resolve(d.Ref, quiet)
			case *ast.TypeStruct:
				for _, f := range d.Fields {
					f.Type = sc.resolve(f.Type, quiet)
				}
			}
		}
	}

	// Pass 3: member bodies and ascriptions.
	for _, m := range s.Module.Members {
		b, ok := m.(*ast.Bnd)
		if !ok {
			continue
		}
		if b.TypeAsc != nil {
			b.TypeAsc = sc.resolve(b.TypeAsc, false)
		}
		if b.Body != nil {
			ast.WalkLambdas(b.Body, func(l *ast.Lambda) {
				for _, fp := range l.Params {
					if fp.TypeAsc != nil {
						fp.TypeAsc = sc.resolve(fp.TypeAsc, false)
					}
				}
			})
		}
	}

	// Pass 4: alias canonical specs.
	for _, m := range s.Module.Members {
		if a, ok := m.(*ast.TypeAlias); ok {
			a.TypeSpec = sc.aliasSpec(a)
		}
	}

	return s.WithErrors(sc.errs...)
}

func (sc *typeScope) add(d ast.Resolvable) {
	sc.byName[d.ResolvableName()] = append(sc.byName[d.ResolvableName()], d)
	sc.byID[d.ResolvableID()] = d
}

// resolve rewrites t so every reachable TypeRef either points at its
// target or becomes an InvalidType. quiet suppresses error emission for
// the first self-resolution round.
func (sc *typeScope) resolve(t ast.Type, quiet bool) ast.Type {
	switch n := t.(type) {
	case *ast.TypeRef:
		targets := sc.byName[n.Name]
		switch len(targets) {
		case 1:
			return &ast.TypeRef{Name: n.Name, ResolvedID: targets[0].ResolvableID(), Orig: n.Orig}
		case 0:
			// The quiet round leaves failures untouched: the reference
			// may name an alias that has not settled yet.
			if quiet {
				return n
			}
			sc.errs = append(sc.errs, namedErrf(sc.phase, UndefinedTypeRef, n.Name, n.Orig,
				"undefined type %s", n.Name))
			return &ast.InvalidType{Original: n, Orig: n.Orig}
		default:
			if quiet {
				return n
			}
			sc.errs = append(sc.errs, namedErrf(sc.phase, AmbiguousTypeRef, n.Name, n.Orig,
				"type %s matches %d declarations", n.Name, len(targets)))
			return &ast.InvalidType{Original: n, Orig: n.Orig}
		}
	case *ast.TypeFn:
		params := make([]ast.Type, len(n.Params))
		for i, pt := range n.Params {
			params[i] = sc.resolve(pt, quiet)
		}
		return &ast.TypeFn{Params: params, Return: sc.resolve(n.Return, quiet), Orig: n.Orig}
	case *ast.TypeTuple:
		elems := make([]ast.Type, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = sc.resolve(e, quiet)
		}
		return &ast.TypeTuple{Elements: elems, Orig: n.Orig}
	case *ast.TypeStructSpec:
		for _, f := range n.Fields {
			f.Type = sc.resolve(f.Type, quiet)
		}
		return n
	case *ast.NativeStruct:
		for _, f := range n.Fields {
			f.Type = sc.resolve(f.Type, quiet)
		}
		return n
	case *ast.Union:
		members := make([]ast.Type, len(n.Members))
		for i, m := range n.Members {
			members[i] = sc.resolve(m, quiet)
		}
		return &ast.Union{Members: members, Orig: n.Orig}
	case *ast.Intersection:
		members := make([]ast.Type, len(n.Members))
		for i, m := range n.Members {
			members[i] = sc.resolve(m, quiet)
		}
		return &ast.Intersection{Members: members, Orig: n.Orig}
	case *ast.TypeApplication:
		args := make([]ast.Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = sc.resolve(a, quiet)
		}
		return &ast.TypeApplication{Base: sc.resolve(n.Base, quiet), Args: args, Orig: n.Orig}
	case *ast.TypeScheme:
		return &ast.TypeScheme{Vars: n.Vars, Body: sc.resolve(n.Body, quiet), Orig: n.Orig}
	default:
		return t
	}
}

// aliasSpec follows the alias's resolved reference chain. Aliases of
// typedefs, native-backed ones included, compute to a TypeRef at the
// typedef, never the native representation, so source-level types survive
// later phases.
func (sc *typeScope) aliasSpec(a *ast.TypeAlias) ast.Type {
	seen := map[string]bool{a.ID: true}
	t := a.Ref
	for {
		ref, ok := t.(*ast.TypeRef)
		if !ok || ref.ResolvedID == "" {
			return t
		}
		target, found := sc.byID[ref.ResolvedID]
		if !found {
			return t
		}
		switch d := target.(type) {
		case *ast.TypeDef:
			return &ast.TypeRef{Name: d.Name, ResolvedID: d.ID, Orig: ast.Synth{}}
		case *ast.TypeStruct:
			return &ast.TypeRef{Name: d.Name, ResolvedID: d.ID, Orig: ast.Synth{}}
		case *ast.TypeAlias:
			if seen[d.ID] {
				return &ast.InvalidType{Original: a.Ref, Orig: a.Orig}
			}
			seen[d.ID] = true
			t = d.Ref
		default:
			return t
		}
	}
}
