package ast

// WalkTerms calls fn for every term reachable from t, parents before
// children, left to right. fn returning false prunes the subtree.
func WalkTerms(t Term, fn func(Term) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch n := t.(type) {
	case *Expr:
		for _, inner := range n.Terms {
			WalkTerms(inner, fn)
		}
	case *App:
		WalkTerms(n.Fn, fn)
		WalkTerms(n.Arg, fn)
	case *Lambda:
		WalkTerms(n.Body, fn)
	case *Cond:
		WalkTerms(n.Cond, fn)
		WalkTerms(n.IfTrue, fn)
		WalkTerms(n.IfFalse, fn)
	case *TermGroup:
		WalkTerms(n.Inner, fn)
	case *Tuple:
		for _, e := range n.Elements {
			WalkTerms(e, fn)
		}
	case *TermError:
		for _, e := range n.Terms {
			WalkTerms(e, fn)
		}
	}
}

// WalkLambdas calls fn for every lambda reachable from t, outermost first.
func WalkLambdas(t Term, fn func(*Lambda)) {
	WalkTerms(t, func(inner Term) bool {
		if l, ok := inner.(*Lambda); ok {
			fn(l)
		}
		return true
	})
}

// WalkTypes calls fn for every type node reachable from ty, parents before
// children.
func WalkTypes(ty Type, fn func(Type)) {
	if ty == nil {
		return
	}
	fn(ty)
	switch n := ty.(type) {
	case *TypeFn:
		for _, p := range n.Params {
			WalkTypes(p, fn)
		}
		WalkTypes(n.Return, fn)
	case *TypeTuple:
		for _, e := range n.Elements {
			WalkTypes(e, fn)
		}
	case *TypeStructSpec:
		for _, f := range n.Fields {
			WalkTypes(f.Type, fn)
		}
	case *NativeStruct:
		for _, f := range n.Fields {
			WalkTypes(f.Type, fn)
		}
	case *Union:
		for _, m := range n.Members {
			WalkTypes(m, fn)
		}
	case *Intersection:
		for _, m := range n.Members {
			WalkTypes(m, fn)
		}
	case *TypeApplication:
		WalkTypes(n.Base, fn)
		for _, a := range n.Args {
			WalkTypes(a, fn)
		}
	case *TypeScheme:
		WalkTypes(n.Body, fn)
	case *InvalidType:
		WalkTypes(n.Original, fn)
	}
}

// Bindings returns the module's Bnd members in declaration order.
func (m *Module) Bindings() []*Bnd {
	var out []*Bnd
	for _, mb := range m.Members {
		if b, ok := mb.(*Bnd); ok {
			out = append(out, b)
		}
	}
	return out
}

// TypeDecls returns the module's type declarations in declaration order.
func (m *Module) TypeDecls() []Member {
	var out []Member
	for _, mb := range m.Members {
		switch mb.(type) {
		case *TypeDef, *TypeAlias, *TypeStruct:
			out = append(out, mb)
		}
	}
	return out
}
