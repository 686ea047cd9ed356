package semantic

import (
	"fmt"

	"github.com/fedesilva/minnieml/internal/ast"
)

// OwnershipAnalyzer tracks owned/moved/borrowed/literal states for every
// binding introduced in a lexical scope, inserts __free_T calls on scope
// exit, promotes static and borrowed values to owned ones at return
// positions, and lifts allocating argument expressions into temporaries
// whose frees run after the enclosing call.
//
// Top-level bindings are borrow-only: they are never invalidated by use.
// A mixed construction, a borrowed global next to an owned local in one
// constructor call, is rejected.
type OwnershipAnalyzer struct{}

func (OwnershipAnalyzer) Name() string { return "ownership-analysis" }

type ownState int

const (
	stateOwned ownState = iota
	stateMoved
	stateBorrowed
	stateLiteral
)

func (st ownState) String() string {
	switch st {
	case stateOwned:
		return "owned"
	case stateMoved:
		return "moved"
	case stateBorrowed:
		return "borrowed"
	default:
		return "literal"
	}
}

// valKind characterizes the value an expression produces.
type valKind int

const (
	vPlain valKind = iota // non-heap value, no tracking
	vOwned                // freshly allocated or cloned
	vLiteral              // static-storage value
	vBorrowed             // reference to something owned elsewhere
)

type ownVar struct {
	param    *ast.FnParam
	state    ownState
	heapType string // empty when the variable is not heap-typed
	isParam  bool   // consuming parameter of the enclosing function
	escaped  bool   // returned to the caller; ownership moved out
	movedAt  ast.SourceOrigin
}

type ownScope struct {
	parent *ownScope
	vars   map[string]*ownVar
}

func (sc *ownScope) lookup(id string) *ownVar {
	for s := sc; s != nil; s = s.parent {
		if v, ok := s.vars[id]; ok {
			return v
		}
	}
	return nil
}

func (sc *ownScope) child(v *ownVar) *ownScope {
	return &ownScope{parent: sc, vars: map[string]*ownVar{v.param.ID: v}}
}

type own struct {
	phase   string
	ix      *ast.ResolvablesIndex
	modName string
	owner   string
	tmpN    int
	errs    []*Error
}

func (p OwnershipAnalyzer) Process(s State) State {
	a := &own{phase: p.Name(), ix: s.Index(), modName: s.Module.Name}
	for _, m := range s.Module.Members {
		b, ok := m.(*ast.Bnd)
		if !ok || b.Orig.Synthetic() || !b.IsFunction() {
			continue
		}
		l := b.BodyLambda()
		if isNativeBody(l.Body) {
			continue
		}
		a.owner = b.Name
		a.function(b, l)
	}
	return s.WithErrors(a.errs...)
}

func (a *own) function(b *ast.Bnd, l *ast.Lambda) {
	sc := &ownScope{vars: make(map[string]*ownVar)}
	for _, fp := range l.Params {
		heapT, _ := HeapTypeName(fp.TypeSpec, a.ix)
		v := &ownVar{param: fp, state: stateBorrowed, heapType: heapT}
		if fp.Consuming {
			// The caller hands ownership in; this scope must settle it.
			v.state = stateOwned
			v.isParam = true
		}
		sc.vars[fp.ID] = v
	}

	retHeap := ""
	if b.TypeAsc != nil {
		retHeap, _ = HeapTypeName(b.TypeAsc, a.ix)
	}
	l.Body = a.expr(l.Body, sc, true, retHeap)

	// Consuming parameters left owned at exit are freed here, the same
	// way let-bound values are.
	for _, fp := range l.Params {
		v := sc.vars[fp.ID]
		if v.isParam && v.state == stateOwned && v.heapType != "" && !v.escaped {
			l.Body = a.exprOf(a.withFree(single(l.Body), fp, v.heapType))
		}
	}
}

func single(e *ast.Expr) ast.Term {
	if t := e.Single(); t != nil {
		return t
	}
	return e
}

func (a *own) exprOf(t ast.Term) *ast.Expr {
	return &ast.Expr{Terms: []ast.Term{t}, Orig: ast.Synth{}}
}

func (a *own) expr(e *ast.Expr, sc *ownScope, tail bool, retHeap string) *ast.Expr {
	out, _ := a.exprKind(e, sc, tail, retHeap)
	return out
}

func (a *own) exprKind(e *ast.Expr, sc *ownScope, tail bool, retHeap string) (*ast.Expr, valKind) {
	if e == nil {
		return nil, vPlain
	}
	inner := e.Single()
	if inner == nil {
		// Not collapsed by the rewriter: an error subtree. Nothing to
		// track.
		return e, vPlain
	}
	t, k := a.term(inner, sc, tail, retHeap)
	return &ast.Expr{Terms: []ast.Term{t}, TypeSpec: e.TypeSpec, Orig: e.Orig}, k
}

func (a *own) term(t ast.Term, sc *ownScope, tail bool, retHeap string) (ast.Term, valKind) {
	switch n := t.(type) {
	case *ast.Expr:
		return a.exprKind(n, sc, tail, retHeap)
	case *ast.Ref:
		return a.ref(n, sc, tail, retHeap)
	case *ast.App:
		return a.app(n, sc, tail, retHeap)
	case *ast.Cond:
		return a.cond(n, sc, tail, retHeap)
	case *ast.LiteralString:
		if tail && retHeap != "" {
			return a.cloneWrap(n, "String"), vOwned
		}
		return n, vLiteral
	case *ast.Lambda:
		// A nested lambda opens its own scope; its parameters borrow
		// unless declared consuming.
		inner := &ownScope{parent: sc, vars: make(map[string]*ownVar)}
		for _, fp := range n.Params {
			heapT, _ := HeapTypeName(fp.TypeSpec, a.ix)
			v := &ownVar{param: fp, state: stateBorrowed, heapType: heapT}
			if fp.Consuming {
				v.state = stateOwned
				v.isParam = true
			}
			inner.vars[fp.ID] = v
		}
		n.Body = a.expr(n.Body, inner, false, "")
		return n, vPlain
	case *ast.TermGroup:
		inner, k := a.exprKind(n.Inner, sc, tail, retHeap)
		n.Inner = inner
		return n, k
	case *ast.Tuple:
		for i, e := range n.Elements {
			n.Elements[i], _ = a.term(e, sc, false, "")
		}
		return n, vPlain
	default:
		return t, vPlain
	}
}

func (a *own) ref(n *ast.Ref, sc *ownScope, tail bool, retHeap string) (ast.Term, valKind) {
	if n.Qualifier != nil {
		if v := sc.lookup(n.Qualifier.ResolvedID); v != nil && v.state == stateMoved {
			a.moveUseError(v, n.Orig)
		}
		return n, vBorrowed
	}

	v := sc.lookup(n.ResolvedID)
	if v == nil {
		// Top-level binding: borrow-only. Returning one where an owned
		// value is required clones it.
		if tail && retHeap != "" {
			if b, ok := a.ix.LookupBnd(n.ResolvedID); ok {
				if heapT, heap := HeapTypeName(bindingType(b), a.ix); heap {
					return a.cloneWrap(n, heapT), vOwned
				}
			}
		}
		return n, vBorrowed
	}

	if v.state == stateMoved {
		a.moveUseError(v, n.Orig)
		return n, vPlain
	}
	if v.heapType == "" {
		return n, vPlain
	}

	if tail {
		switch v.state {
		case stateOwned:
			// Ownership moves out to the caller; no free on this path.
			v.escaped = true
			return n, vOwned
		case stateBorrowed, stateLiteral:
			if retHeap != "" {
				return a.cloneWrap(n, v.heapType), vOwned
			}
		}
	}
	switch v.state {
	case stateLiteral:
		return n, vLiteral
	default:
		return n, vBorrowed
	}
}

func (a *own) moveUseError(v *ownVar, at ast.SourceOrigin) {
	if v.isParam {
		a.errs = append(a.errs, namedErrf(a.phase, ConsumingParamNotLastUse, v.param.Name, at,
			"consuming parameter %s used after being consumed", v.param.Name))
		return
	}
	e := namedErrf(a.phase, UseAfterMove, v.param.Name, at,
		"%s used after its ownership moved", v.param.Name)
	a.errs = append(a.errs, e)
}

// app handles both let-bindings (App of Lambda) and calls.
func (a *own) app(n *ast.App, sc *ownScope, tail bool, retHeap string) (ast.Term, valKind) {
	if lam, ok := n.Fn.(*ast.Lambda); ok && len(lam.Params) == 1 {
		return a.let(n, lam, sc, tail, retHeap)
	}
	return a.call(n, sc, tail, retHeap)
}

func (a *own) let(n *ast.App, lam *ast.Lambda, sc *ownScope, tail bool, retHeap string) (ast.Term, valKind) {
	fp := lam.Params[0]
	value, vk := a.term(n.Arg, sc, false, "")

	heapT, _ := HeapTypeName(fp.TypeSpec, a.ix)
	v := &ownVar{param: fp, heapType: heapT}
	switch vk {
	case vOwned:
		v.state = stateOwned
	case vLiteral:
		v.state = stateLiteral
	default:
		v.state = stateBorrowed
	}

	inner := sc.child(v)
	body, bk := a.exprKind(lam.Body, inner, tail, retHeap)

	// Exactly one free on every exit path, unless ownership moved.
	if v.state == stateOwned && v.heapType != "" && !v.escaped {
		body = a.exprOf(a.withFree(single(body), fp, v.heapType))
	}
	lam.Body = body
	return &ast.App{Fn: lam, Arg: value, TypeSpec: n.TypeSpec, Orig: n.Orig}, bk
}

type liftedArg struct {
	tmp      *ast.FnParam
	value    ast.Term
	heapType string
}

func (a *own) call(n *ast.App, sc *ownScope, tail bool, retHeap string) (ast.Term, valKind) {
	base, args := n.Uncurry()

	var callee *ast.Bnd
	if ref, ok := base.(*ast.Ref); ok && ref.Resolved() {
		callee, _ = a.ix.LookupBnd(ref.ResolvedID)
	} else {
		base, _ = a.term(base, sc, false, "")
	}

	var lifts []liftedArg
	var movedLocal, borrowedGlobal *ast.Ref
	newArgs := make([]ast.Term, len(args))
	for i, arg := range args {
		arg, _ = a.term(arg, sc, false, "")
		param := calleeParam(callee, i)

		if param != nil && param.Consuming {
			if ref, bare := arg.(*ast.Ref); bare && ref.Qualifier == nil {
				if v := sc.lookup(ref.ResolvedID); v != nil {
					a.moveInto(v, ref)
					if v.state == stateMoved {
						movedLocal = ref
					}
				} else if _, isGlobal := a.ix.LookupBnd(ref.ResolvedID); isGlobal {
					// Globals are borrow-only and survive consuming use.
					borrowedGlobal = ref
				}
			}
			// Complex arguments pass through: they must themselves be
			// allocating or freshly cloned, which the callee then owns.
		} else if param != nil {
			// An allocating expression used as a borrowed argument is
			// lifted into a temporary so its free runs after the call.
			if heapT, isTemp := a.liftable(arg); isTemp {
				tmp := a.newTmp(heapT, param.TypeSpec)
				lifts = append(lifts, liftedArg{tmp: tmp, value: arg, heapType: heapT})
				arg = &ast.Ref{
					Name:         tmp.Name,
					ResolvedID:   tmp.ID,
					CandidateIDs: []string{tmp.ID},
					Orig:         ast.Synth{},
				}
			}
		}
		newArgs[i] = arg
	}

	if callee != nil && callee.Meta.Origin == ast.OriginConstructor && movedLocal != nil && borrowedGlobal != nil {
		a.errs = append(a.errs, namedErrf(a.phase, MoveOfBorrowed, borrowedGlobal.Name, borrowedGlobal.Orig,
			"constructor mixes borrowed %s with owned %s; clone %s explicitly",
			borrowedGlobal.Name, movedLocal.Name, borrowedGlobal.Name))
	}

	var chain ast.Term = base
	for _, arg := range newArgs {
		chain = &ast.App{Fn: chain, Arg: arg, Orig: n.Orig}
	}
	if app, ok := chain.(*ast.App); ok {
		app.TypeSpec = n.TypeSpec
	}

	// Temporaries free after the enclosing call returns; folding in
	// reverse keeps argument evaluation left-to-right.
	for i := len(lifts) - 1; i >= 0; i-- {
		l := lifts[i]
		body := a.withFree(chain, l.tmp, l.heapType)
		chain = &ast.App{
			Fn: &ast.Lambda{
				Params: []*ast.FnParam{l.tmp},
				Body:   a.exprOf(body),
				Orig:   ast.Synth{},
			},
			Arg:  l.value,
			Orig: ast.Synth{},
		}
	}

	if _, heap := HeapTypeName(n.TypeSpec, a.ix); heap {
		return chain, vOwned
	}
	return chain, vPlain
}

// moveInto transitions a scope variable consumed by a callee.
func (a *own) moveInto(v *ownVar, ref *ast.Ref) {
	switch v.state {
	case stateOwned:
		v.state = stateMoved
		v.movedAt = ref.Orig
	case stateMoved:
		a.moveUseError(v, ref.Orig)
	case stateBorrowed:
		if v.heapType != "" {
			a.errs = append(a.errs, namedErrf(a.phase, MoveOfBorrowed, ref.Name, ref.Orig,
				"cannot move %s: it is borrowed", ref.Name))
		}
	case stateLiteral:
		// Static values move trivially.
	}
}

// liftable reports whether an argument is an allocating call that needs a
// temporary.
func (a *own) liftable(arg ast.Term) (string, bool) {
	app, ok := arg.(*ast.App)
	if !ok {
		return "", false
	}
	if _, isLet := app.Fn.(*ast.Lambda); isLet {
		return "", false
	}
	return HeapTypeName(app.TypeSpec, a.ix)
}

func (a *own) cond(n *ast.Cond, sc *ownScope, tail bool, retHeap string) (ast.Term, valKind) {
	n.Cond = a.expr(n.Cond, sc, false, "")
	ifTrue, tk := a.exprKind(n.IfTrue, sc, tail, retHeap)
	ifFalse, fk := a.exprKind(n.IfFalse, sc, tail, retHeap)

	heapT, isHeap := HeapTypeName(n.TypeSpec, a.ix)
	if isHeap {
		needOwned := tk == vOwned || fk == vOwned || (tail && retHeap != "")
		if needOwned {
			if tk == vLiteral || tk == vBorrowed {
				ifTrue = a.cloneWrapExpr(ifTrue, heapT)
				tk = vOwned
			}
			if fk == vLiteral || fk == vBorrowed {
				ifFalse = a.cloneWrapExpr(ifFalse, heapT)
				fk = vOwned
			}
		}
		if tk != fk {
			a.errs = append(a.errs, errf(a.phase, ConditionalOwnershipMismatch, n.Orig,
				"branches produce %s incompatible ownership", heapT))
		}
	}
	n.IfTrue = ifTrue
	n.IfFalse = ifFalse
	return n, tk
}

func (a *own) newTmp(heapType string, spec ast.Type) *ast.FnParam {
	name := fmt.Sprintf("__tmp%d", a.tmpN)
	a.tmpN++
	tmp := &ast.FnParam{
		Name:     name,
		ID:       NestedParamID(a.modName, "bnd", a.owner, name),
		TypeSpec: spec,
		Orig:     ast.Synth{},
	}
	a.ix.Updated(tmp)
	return tmp
}

// withFree wraps a body so the variable's free executes exactly once
// after the body's value is computed:
//
//	let __r = <body>; let _ = __free_T x; __r
func (a *own) withFree(body ast.Term, fp *ast.FnParam, typeName string) ast.Term {
	rParam := &ast.FnParam{
		Name: "__r",
		ID:   NestedParamID(a.modName, "bnd", a.owner, "__r"),
		Orig: ast.Synth{},
	}
	dParam := &ast.FnParam{
		Name:     "_",
		ID:       NestedParamID(a.modName, "bnd", a.owner, "_"),
		TypeSpec: StdlibTypeRef("Unit"),
		Orig:     ast.Synth{},
	}
	a.ix.Updated(rParam)
	a.ix.Updated(dParam)

	freeCall := &ast.App{
		Fn: memFnRef(a.ix, a.modName, FreeName(typeName)),
		Arg: &ast.Ref{
			Name:         fp.Name,
			ResolvedID:   fp.ID,
			CandidateIDs: []string{fp.ID},
			Orig:         ast.Synth{},
		},
		TypeSpec: StdlibTypeRef("Unit"),
		Orig:     ast.Synth{},
	}
	resultRef := &ast.Ref{
		Name:         "__r",
		ResolvedID:   rParam.ID,
		CandidateIDs: []string{rParam.ID},
		Orig:         ast.Synth{},
	}
	inner := &ast.App{
		Fn: &ast.Lambda{
			Params: []*ast.FnParam{dParam},
			Body:   a.exprOf(resultRef),
			Orig:   ast.Synth{},
		},
		Arg:  freeCall,
		Orig: ast.Synth{},
	}
	return &ast.App{
		Fn: &ast.Lambda{
			Params: []*ast.FnParam{rParam},
			Body:   a.exprOf(inner),
			Orig:   ast.Synth{},
		},
		Arg:  body,
		Orig: ast.Synth{},
	}
}

func (a *own) cloneWrap(t ast.Term, typeName string) ast.Term {
	return &ast.App{
		Fn:       memFnRef(a.ix, a.modName, CloneName(typeName)),
		Arg:      t,
		TypeSpec: a.typeRefByName(typeName),
		Orig:     ast.Synth{},
	}
}

func (a *own) cloneWrapExpr(e *ast.Expr, typeName string) *ast.Expr {
	return &ast.Expr{
		Terms:    []ast.Term{a.cloneWrap(single(e), typeName)},
		TypeSpec: e.TypeSpec,
		Orig:     e.Orig,
	}
}

// typeRefByName resolves a heap type name back to a reference.
func (a *own) typeRefByName(name string) *ast.TypeRef {
	for _, id := range []string{
		stdlibTypes + name,
		a.modName + "::typestruct::" + name,
		a.modName + "::typedef::" + name,
	} {
		if _, ok := a.ix.LookupType(id); ok {
			return &ast.TypeRef{Name: name, ResolvedID: id, Orig: ast.Synth{}}
		}
	}
	return &ast.TypeRef{Name: name, Orig: ast.Synth{}}
}

func calleeParam(callee *ast.Bnd, i int) *ast.FnParam {
	if callee == nil {
		return nil
	}
	l := callee.BodyLambda()
	if l == nil || i >= len(l.Params) {
		return nil
	}
	return l.Params[i]
}

func bindingType(b *ast.Bnd) ast.Type {
	if b.TypeSpec != nil {
		if fn, ok := b.TypeSpec.(*ast.TypeFn); ok {
			return fn.Return
		}
		return b.TypeSpec
	}
	return b.TypeAsc
}
