package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// TypeChecker lowers parameter ascriptions into type specs, then checks
// every member body bottom-up against its ascriptions, inferring the
// types of ascription-less bindings from their bodies.
type TypeChecker struct{}

func (TypeChecker) Name() string { return "type-checking" }

type checker struct {
	phase string
	ix    *ast.ResolvablesIndex
	errs  []*Error
	// prior maps names already reported by earlier phases, so that
	// consequent unresolvable-type errors register as secondary.
	prior map[string]*Error
}

func (p TypeChecker) Process(s State) State {
	c := &checker{phase: p.Name(), ix: s.Index(), prior: make(map[string]*Error)}
	for _, e := range s.Errors {
		if e.Name != "" && c.prior[e.Name] == nil {
			c.prior[e.Name] = e
		}
	}

	// Phase 1: ascription lowering. Function and operator parameters
	// require ascriptions; let-bound and synthetic parameters get their
	// specs from context during body checking.
	for _, m := range s.Module.Members {
		b, ok := m.(*ast.Bnd)
		if !ok {
			continue
		}
		if l := b.BodyLambda(); l != nil {
			for _, fp := range l.Params {
				if fp.TypeAsc != nil {
					fp.TypeSpec = fp.TypeAsc
					continue
				}
				kind := MissingParameterType
				if b.Meta.Origin == ast.OriginOperator {
					kind = MissingOperatorParameterType
				}
				c.errs = append(c.errs, namedErrf(c.phase, kind, fp.Name, b.Orig,
					"parameter %s of %s has no type", fp.Name, b.Name))
			}
		}
		// Nested ascribed parameters (eta-expansion, annotated lets).
		if b.Body != nil {
			ast.WalkLambdas(b.Body, func(l *ast.Lambda) {
				for _, fp := range l.Params {
					if fp.TypeSpec == nil && fp.TypeAsc != nil {
						fp.TypeSpec = fp.TypeAsc
					}
				}
			})
		}
	}

	// Provisional binding types from ascriptions, so recursion and
	// forward references see a callable type before bodies are checked.
	for _, m := range s.Module.Members {
		b, ok := m.(*ast.Bnd)
		if !ok || b.TypeAsc == nil {
			continue
		}
		if l := b.BodyLambda(); l != nil {
			b.TypeSpec = &ast.TypeFn{Params: paramSpecs(l.Params), Return: b.TypeAsc, Orig: ast.Synth{}}
		} else {
			b.TypeSpec = b.TypeAsc
		}
	}

	// Phase 2: body checking in declaration order.
	for _, m := range s.Module.Members {
		b, ok := m.(*ast.Bnd)
		if !ok || b.Body == nil {
			continue
		}
		c.checkBinding(b)
	}
	return s.WithErrors(c.errs...)
}

// unresolvable reports a type that could not be computed, secondary when
// an earlier phase already flagged the name.
func (c *checker) unresolvable(name string, orig ast.SourceOrigin, format string, args ...any) {
	e := namedErrf(c.phase, UnresolvableType, name, orig, format, args...)
	if cause, ok := c.prior[name]; ok {
		e.Cause = cause
	}
	c.errs = append(c.errs, e)
}

func paramSpecs(params []*ast.FnParam) []ast.Type {
	specs := make([]ast.Type, len(params))
	for i, p := range params {
		if p.TypeSpec != nil {
			specs[i] = p.TypeSpec
		} else {
			specs[i] = p.TypeAsc
		}
	}
	return specs
}

func (c *checker) checkBinding(b *ast.Bnd) {
	l := b.BodyLambda()
	if l != nil {
		// Native bodies have no checkable content: the ascription is
		// trusted.
		if isNativeBody(l.Body) {
			if b.TypeAsc != nil {
				l.TypeSpec = &ast.TypeFn{Params: paramSpecs(l.Params), Return: b.TypeAsc, Orig: ast.Synth{}}
				b.TypeSpec = l.TypeSpec
			}
			return
		}
		bodyT := c.infer(l.Body, b)
		l.TypeSpec = &ast.TypeFn{Params: paramSpecs(l.Params), Return: bodyT, Orig: ast.Synth{}}
		b.Body.TypeSpec = l.TypeSpec
		if b.TypeAsc != nil {
			if bodyT != nil && !c.compatible(b.TypeAsc, bodyT) {
				c.errs = append(c.errs, namedErrf(c.phase, TypeMismatch, b.Name, b.Orig,
					"%s declares %s but its body has type %s", b.Name, b.TypeAsc, bodyT))
			}
			b.TypeSpec = &ast.TypeFn{Params: paramSpecs(l.Params), Return: b.TypeAsc, Orig: ast.Synth{}}
			return
		}
		if bodyT == nil {
			c.unresolvable(b.Name, b.Orig, "cannot infer the return type of %s", b.Name)
			return
		}
		b.TypeSpec = l.TypeSpec
		return
	}

	bodyT := c.infer(b.Body, b)
	b.Body.TypeSpec = bodyT
	if b.TypeAsc != nil {
		if bodyT != nil && !c.compatible(b.TypeAsc, bodyT) {
			c.errs = append(c.errs, namedErrf(c.phase, TypeMismatch, b.Name, b.Orig,
				"%s declares %s but is bound to a %s", b.Name, b.TypeAsc, bodyT))
		}
		b.TypeSpec = b.TypeAsc
		return
	}
	if bodyT == nil {
		c.unresolvable(b.Name, b.Orig, "cannot infer the type of %s", b.Name)
		return
	}
	b.TypeSpec = bodyT
}

func isNativeBody(e *ast.Expr) bool {
	if e == nil {
		return false
	}
	_, ok := e.Single().(*ast.NativeImpl)
	return ok
}

// infer computes the type of a term bottom-up, nil when unknown. owner is
// the binding under check, for error attribution.
func (c *checker) infer(t ast.Term, owner *ast.Bnd) ast.Type {
	switch n := t.(type) {
	case *ast.Expr:
		if n == nil {
			return nil
		}
		var last ast.Type
		for _, inner := range n.Terms {
			last = c.infer(inner, owner)
		}
		n.TypeSpec = last
		return last
	case *ast.LiteralInt:
		return StdlibTypeRef("Int")
	case *ast.LiteralFloat:
		return StdlibTypeRef("Float")
	case *ast.LiteralString:
		return StdlibTypeRef("String")
	case *ast.LiteralBool:
		return StdlibTypeRef("Bool")
	case *ast.LiteralUnit:
		return &ast.TypeUnit{Orig: n.Orig}
	case *ast.Ref:
		return c.refType(n, owner)
	case *ast.App:
		return c.inferApp(n, owner)
	case *ast.Lambda:
		bodyT := c.infer(n.Body, owner)
		ft := &ast.TypeFn{Params: paramSpecs(n.Params), Return: bodyT, Orig: ast.Synth{}}
		n.TypeSpec = ft
		return ft
	case *ast.Cond:
		return c.inferCond(n, owner)
	case *ast.TermGroup:
		return c.infer(n.Inner, owner)
	case *ast.Tuple:
		elems := make([]ast.Type, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = c.infer(e, owner)
		}
		tt := &ast.TypeTuple{Elements: elems, Orig: n.Orig}
		n.TypeSpec = tt
		return tt
	case *ast.DataConstructor:
		return n.TypeRef
	case *ast.Hole:
		c.errs = append(c.errs, namedErrf(c.phase, UntypedHoleInBinding, owner.Name, n.Orig,
			"hole in %s has no inferable type", owner.Name))
		return nil
	case *ast.NativeImpl, *ast.Placeholder, *ast.TermError, *ast.InvalidExpression:
		return nil
	default:
		return nil
	}
}

func (c *checker) refType(r *ast.Ref, owner *ast.Bnd) ast.Type {
	if !r.Resolved() {
		// Unresolved references were already reported upstream.
		return nil
	}
	if fp, ok := c.ix.LookupParam(r.ResolvedID); ok {
		if fp.TypeSpec != nil {
			return fp.TypeSpec
		}
		if fp.TypeAsc != nil {
			return fp.TypeAsc
		}
		c.unresolvable(r.Name, r.Orig, "type of %s is not known", r.Name)
		return nil
	}
	if b, ok := c.ix.LookupBnd(r.ResolvedID); ok {
		if b.TypeSpec != nil {
			return b.TypeSpec
		}
		if b.TypeAsc != nil {
			return b.TypeAsc
		}
		c.unresolvable(r.Name, r.Orig, "type of %s is not known", r.Name)
		return nil
	}
	if res, ok := c.ix.Lookup(r.ResolvedID); ok {
		if f, isField := res.(*ast.Field); isField {
			return f.Type
		}
	}
	return nil
}

func (c *checker) inferApp(a *ast.App, owner *ast.Bnd) ast.Type {
	// Let-binding shape: the bound value's type seeds the parameter.
	if l, ok := a.Fn.(*ast.Lambda); ok {
		argT := c.infer(a.Arg, owner)
		if len(l.Params) > 0 && l.Params[0].TypeSpec == nil {
			l.Params[0].TypeSpec = argT
		}
		fnT, _ := c.infer(l, owner).(*ast.TypeFn)
		if fnT == nil {
			return nil
		}
		return c.apply(a, fnT, argT)
	}

	fnT := c.infer(a.Fn, owner)
	argT := c.infer(a.Arg, owner)
	if fnT == nil {
		return nil
	}
	ft, ok := c.resolveSpec(fnT).(*ast.TypeFn)
	if !ok {
		c.errs = append(c.errs, errf(c.phase, InvalidApplication, a.Orig,
			"cannot apply a value of type %s", fnT))
		return nil
	}

	// Zero-arity call with an explicit unit argument.
	if len(ft.Params) == 0 {
		if _, isUnit := a.Arg.(*ast.LiteralUnit); isUnit {
			a.TypeSpec = ft.Return
			return ft.Return
		}
		c.errs = append(c.errs, errf(c.phase, InvalidApplication, a.Orig,
			"%s takes no arguments", a.Fn))
		return nil
	}

	if argT != nil && ft.Params[0] != nil && !c.compatible(ft.Params[0], argT) {
		c.errs = append(c.errs, errf(c.phase, TypeMismatch, a.Orig,
			"argument of type %s where %s is expected", argT, ft.Params[0]))
	}
	return c.apply(a, ft, argT)
}

// apply drops the function type's first parameter, yielding the return
// type when the application saturates it.
func (c *checker) apply(a *ast.App, ft *ast.TypeFn, argT ast.Type) ast.Type {
	var result ast.Type
	if len(ft.Params) <= 1 {
		result = ft.Return
	} else {
		result = &ast.TypeFn{Params: ft.Params[1:], Return: ft.Return, Orig: ast.Synth{}}
	}
	a.TypeSpec = result
	return result
}

func (c *checker) inferCond(n *ast.Cond, owner *ast.Bnd) ast.Type {
	condT := c.infer(n.Cond, owner)
	if condT != nil && !c.compatible(StdlibTypeRef("Bool"), condT) {
		c.errs = append(c.errs, errf(c.phase, TypeMismatch, n.Orig,
			"condition has type %s, not Bool", condT))
	}
	tT := c.infer(n.IfTrue, owner)
	fT := c.infer(n.IfFalse, owner)
	if tT == nil || fT == nil {
		c.errs = append(c.errs, errf(c.phase, ConditionalBranchTypeUnknown, n.Orig,
			"cannot determine the type of a conditional branch"))
		return nil
	}
	if !c.compatible(tT, fT) {
		c.errs = append(c.errs, errf(c.phase, ConditionalBranchTypeMismatch, n.Orig,
			"branches have incompatible types %s and %s", tT, fT))
		return nil
	}
	n.TypeSpec = tT
	return tT
}

// resolveSpec follows alias chains to the comparison form of a type.
func (c *checker) resolveSpec(t ast.Type) ast.Type {
	for i := 0; i < 8; i++ {
		ref, ok := t.(*ast.TypeRef)
		if !ok || ref.ResolvedID == "" {
			return t
		}
		decl, found := c.ix.LookupType(ref.ResolvedID)
		if !found {
			return t
		}
		alias, isAlias := decl.(*ast.TypeAlias)
		if !isAlias {
			return t
		}
		if alias.TypeSpec == nil {
			return t
		}
		t = alias.TypeSpec
	}
	return t
}

// compatible compares two types after alias-chain resolution.
func (c *checker) compatible(expected, actual ast.Type) bool {
	e := c.resolveSpec(expected)
	a := c.resolveSpec(actual)

	// Error markers compare compatible with anything: the primary error
	// was already reported where the marker was introduced.
	if _, ok := e.(*ast.InvalidType); ok {
		return true
	}
	if _, ok := a.(*ast.InvalidType); ok {
		return true
	}

	switch et := e.(type) {
	case *ast.TypeRef:
		if at, ok := a.(*ast.TypeRef); ok {
			if et.ResolvedID != "" && et.ResolvedID == at.ResolvedID {
				return true
			}
			if et.Name == at.Name {
				return true
			}
			return c.sameNativeRepr(et, at)
		}
		if _, ok := a.(*ast.TypeUnit); ok {
			return et.Name == "Unit"
		}
		if ap, ok := a.(*ast.NativePrimitive); ok {
			return c.nativeReprOf(et) == ap.LLVMType
		}
	case *ast.TypeUnit:
		if _, ok := a.(*ast.TypeUnit); ok {
			return true
		}
		if at, ok := a.(*ast.TypeRef); ok {
			return at.Name == "Unit"
		}
	case *ast.NativePrimitive:
		if ap, ok := a.(*ast.NativePrimitive); ok {
			return et.LLVMType == ap.LLVMType
		}
		if at, ok := a.(*ast.TypeRef); ok {
			return c.nativeReprOf(at) == et.LLVMType
		}
	case *ast.TypeFn:
		at, ok := a.(*ast.TypeFn)
		if !ok || len(et.Params) != len(at.Params) {
			return false
		}
		for i := range et.Params {
			if et.Params[i] == nil || at.Params[i] == nil {
				continue
			}
			if !c.compatible(et.Params[i], at.Params[i]) {
				return false
			}
		}
		if et.Return == nil || at.Return == nil {
			return true
		}
		return c.compatible(et.Return, at.Return)
	case *ast.TypeTuple:
		at, ok := a.(*ast.TypeTuple)
		if !ok || len(et.Elements) != len(at.Elements) {
			return false
		}
		for i := range et.Elements {
			if !c.compatible(et.Elements[i], at.Elements[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// sameNativeRepr reports whether two type references bottom out at native
// primitives with the same LLVM representation.
func (c *checker) sameNativeRepr(a, b *ast.TypeRef) bool {
	ra, rb := c.nativeReprOf(a), c.nativeReprOf(b)
	return ra != "" && ra == rb
}

func (c *checker) nativeReprOf(r *ast.TypeRef) string {
	decl, ok := c.ix.LookupType(r.ResolvedID)
	if !ok {
		return ""
	}
	td, ok := decl.(*ast.TypeDef)
	if !ok {
		return ""
	}
	np, ok := td.Spec.(*ast.NativePrimitive)
	if !ok {
		return ""
	}
	return np.LLVMType
}
