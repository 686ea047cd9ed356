package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// RefResolver resolves value and function references in every member
// body. Candidates are collected scope-aware: enclosing lambda parameters
// innermost first, then let-bound names (lambda parameters of enclosing
// App(Lambda, arg) chains, covered by the same scope stack), then the
// module's top-level declarations, stdlib included. A member does not see
// itself unless it is a function and therefore may recurse.
type RefResolver struct{}

func (RefResolver) Name() string { return "reference-resolution" }

type refScope struct {
	phase    string
	ix       *ast.ResolvablesIndex
	topLevel map[string][]ast.Resolvable
	errs     []*Error
}

func (p RefResolver) Process(s State) State {
	sc := &refScope{
		phase:    p.Name(),
		ix:       s.Index(),
		topLevel: make(map[string][]ast.Resolvable),
	}
	for _, m := range s.Module.Members {
		if b, ok := m.(*ast.Bnd); ok {
			sc.topLevel[b.Name] = append(sc.topLevel[b.Name], b)
			// A struct's name applies its constructor in term position.
			if b.Meta.Origin == ast.OriginConstructor && b.Meta.TypeName != "" {
				sc.topLevel[b.Meta.TypeName] = append(sc.topLevel[b.Meta.TypeName], b)
			}
		}
	}

	for _, m := range s.Module.Members {
		b, ok := m.(*ast.Bnd)
		if !ok || b.Body == nil {
			continue
		}
		sc.member(b)
	}
	return s.WithErrors(sc.errs...)
}

func (sc *refScope) member(b *ast.Bnd) {
	self := ""
	if !b.IsFunction() {
		// Value bindings cannot reference themselves.
		self = b.ID
	}
	sc.term(b.Body, nil, self)
}

// term resolves references under a stack of parameter scopes, innermost
// last.
func (sc *refScope) term(t ast.Term, scopes [][]*ast.FnParam, selfExcluded string) {
	switch n := t.(type) {
	case *ast.Expr:
		for _, inner := range n.Terms {
			sc.term(inner, scopes, selfExcluded)
		}
	case *ast.App:
		sc.term(n.Fn, scopes, selfExcluded)
		sc.term(n.Arg, scopes, selfExcluded)
	case *ast.Lambda:
		sc.term(n.Body, append(scopes, n.Params), selfExcluded)
	case *ast.Cond:
		sc.term(n.Cond, scopes, selfExcluded)
		sc.term(n.IfTrue, scopes, selfExcluded)
		sc.term(n.IfFalse, scopes, selfExcluded)
	case *ast.TermGroup:
		sc.term(n.Inner, scopes, selfExcluded)
	case *ast.Tuple:
		for _, e := range n.Elements {
			sc.term(e, scopes, selfExcluded)
		}
	case *ast.Ref:
		sc.ref(n, scopes, selfExcluded)
	}
}

func (sc *refScope) ref(r *ast.Ref, scopes [][]*ast.FnParam, selfExcluded string) {
	if r.Qualifier != nil {
		sc.qualified(r, scopes, selfExcluded)
		return
	}
	if r.Resolved() {
		return
	}

	var candidates []string
	// Innermost scope with a matching parameter wins; outer shadowed
	// parameters are not candidates.
	for i := len(scopes) - 1; i >= 0 && len(candidates) == 0; i-- {
		for _, fp := range scopes[i] {
			if fp.Name == r.Name {
				candidates = append(candidates, fp.ID)
			}
		}
	}
	if len(candidates) == 0 {
		for _, d := range sc.topLevel[r.Name] {
			if d.ResolvableID() == selfExcluded {
				continue
			}
			candidates = append(candidates, d.ResolvableID())
		}
	}

	switch len(candidates) {
	case 0:
		sc.errs = append(sc.errs, namedErrf(sc.phase, UndefinedRef, r.Name, r.Orig,
			"undefined reference %s", r.Name))
	case 1:
		r.ResolvedID = candidates[0]
		r.CandidateIDs = candidates
	default:
		r.CandidateIDs = candidates
	}
}

// qualified resolves p.name by first resolving the qualifier, then
// looking the field up against the qualifier's resolved type.
func (sc *refScope) qualified(r *ast.Ref, scopes [][]*ast.FnParam, selfExcluded string) {
	sc.ref(r.Qualifier, scopes, selfExcluded)
	if !r.Qualifier.Resolved() {
		return
	}
	qt := sc.declaredType(r.Qualifier.ResolvedID)
	st := sc.structOf(qt)
	if st == nil {
		sc.errs = append(sc.errs, namedErrf(sc.phase, UndefinedRef, r.Name, r.Orig,
			"%s has no fields to select %s from", r.Qualifier.Name, r.Name))
		return
	}
	f := st.FieldNamed(r.Name)
	if f == nil {
		sc.errs = append(sc.errs, namedErrf(sc.phase, UndefinedRef, r.Name, r.Orig,
			"%s has no field %s", st.Name, r.Name))
		return
	}
	r.ResolvedID = f.ID
	r.CandidateIDs = []string{f.ID}
}

// declaredType returns the ascribed or computed type of a resolvable.
func (sc *refScope) declaredType(id string) ast.Type {
	if fp, ok := sc.ix.LookupParam(id); ok {
		if fp.TypeSpec != nil {
			return fp.TypeSpec
		}
		return fp.TypeAsc
	}
	if b, ok := sc.ix.LookupBnd(id); ok {
		if b.TypeSpec != nil {
			return b.TypeSpec
		}
		return b.TypeAsc
	}
	return nil
}

// structOf follows a type reference to a struct declaration, through
// aliases.
func (sc *refScope) structOf(t ast.Type) *ast.TypeStruct {
	for i := 0; i < 8; i++ {
		ref, ok := t.(*ast.TypeRef)
		if !ok || ref.ResolvedID == "" {
			return nil
		}
		decl, found := sc.ix.LookupType(ref.ResolvedID)
		if !found {
			return nil
		}
		switch d := decl.(type) {
		case *ast.TypeStruct:
			return d
		case *ast.TypeAlias:
			if d.TypeSpec != nil {
				t = d.TypeSpec
			} else {
				t = d.Ref
			}
		default:
			return nil
		}
	}
	return nil
}
