package semantic

import (
	"fmt"

	"github.com/fedesilva/minnieml/internal/ast"
)

// ExprRewriter converts each flat Expr term sequence into a nested tree
// of App, Lambda and Cond nodes: precedence climbing with function
// application as juxtaposition. Under-applied function heads are
// eta-expanded into synthetic lambdas that saturate the call, unless a
// still-missing parameter is consuming.
//
// Bindings are rewritten in declaration order and re-registered in the
// index as they complete, so references to bindings already rewritten see
// the rewritten form within the same module.
type ExprRewriter struct{}

func (ExprRewriter) Name() string { return "expression-rewriting" }

type rewriter struct {
	phase   string
	ix      *ast.ResolvablesIndex
	modName string
	owner   string
	errs    []*Error
}

func (p ExprRewriter) Process(s State) State {
	rw := &rewriter{phase: p.Name(), ix: s.Index(), modName: s.Module.Name}
	for _, m := range s.Module.Members {
		b, ok := m.(*ast.Bnd)
		if !ok || b.Body == nil {
			continue
		}
		rw.owner = b.Name
		b.Body = rw.expr(b.Body)
		s.Index().Updated(b)
	}
	return s.WithErrors(rw.errs...)
}

// expr collapses a term sequence to a single-term expression. Running it
// on an already-collapsed expression only recurses into the term, so the
// rewrite is idempotent.
func (rw *rewriter) expr(e *ast.Expr) *ast.Expr {
	if e == nil || len(e.Terms) == 0 {
		return e
	}
	if len(e.Terms) == 1 {
		return &ast.Expr{Terms: []ast.Term{rw.term(e.Terms[0])}, Orig: e.Orig}
	}
	atom, rest := rw.climb(e.Terms, MinPrecedence)
	if len(rest) > 0 {
		rw.errs = append(rw.errs, errf(rw.phase, DanglingTerms, originOf(rest[0]),
			"%d terms left over after expression", len(rest)))
		atom = &ast.TermError{
			Terms:  append([]ast.Term{atom}, rest...),
			Reason: "dangling terms",
			Orig:   e.Orig,
		}
	}
	return &ast.Expr{Terms: []ast.Term{atom}, Orig: e.Orig}
}

// term rewrites the interiors of an already-shaped term.
func (rw *rewriter) term(t ast.Term) ast.Term {
	switch n := t.(type) {
	case *ast.Lambda:
		n.Body = rw.expr(n.Body)
		return n
	case *ast.Cond:
		n.Cond = rw.expr(n.Cond)
		n.IfTrue = rw.expr(n.IfTrue)
		n.IfFalse = rw.expr(n.IfFalse)
		return n
	case *ast.App:
		n.Fn = rw.term(n.Fn)
		n.Arg = rw.term(n.Arg)
		return n
	case *ast.TermGroup:
		inner := rw.expr(n.Inner)
		if single := inner.Single(); single != nil {
			return single
		}
		return &ast.TermGroup{Inner: inner, Orig: n.Orig}
	case *ast.Tuple:
		elems := make([]ast.Term, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = rw.term(e)
		}
		n.Elements = elems
		return n
	case *ast.Expr:
		return rw.expr(n)
	default:
		return t
	}
}

// opBinding returns the candidate binding of the reference that is an
// operator of the wanted kind, or nil.
func (rw *rewriter) opBinding(ref *ast.Ref, kind ast.OpKind) *ast.Bnd {
	ids := ref.CandidateIDs
	if len(ids) == 0 && ref.ResolvedID != "" {
		ids = []string{ref.ResolvedID}
	}
	for _, id := range ids {
		if b, ok := rw.ix.LookupBnd(id); ok && b.Meta.OpKind == kind {
			return b
		}
	}
	return nil
}

func (rw *rewriter) isOperator(t ast.Term) bool {
	ref, ok := t.(*ast.Ref)
	if !ok {
		return false
	}
	return rw.opBinding(ref, ast.OpBinary) != nil || rw.opBinding(ref, ast.OpPostfix) != nil
}

// climb parses one expression at or above minPrec, returning the shaped
// term and the unconsumed tail.
func (rw *rewriter) climb(terms []ast.Term, minPrec int) (ast.Term, []ast.Term) {
	atom, rest := rw.primary(terms)
	for len(rest) > 0 {
		ref, isRef := rest[0].(*ast.Ref)
		if isRef {
			if b := rw.opBinding(ref, ast.OpBinary); b != nil {
				if b.Meta.Precedence < minPrec {
					break
				}
				resolveTo(ref, b)
				next := b.Meta.Precedence
				if b.Meta.Assoc == ast.AssocLeft {
					next++
				}
				var rhs ast.Term
				rhs, rest = rw.climb(rest[1:], next)
				atom = appChain(ref, atom, rhs)
				continue
			}
			if b := rw.opBinding(ref, ast.OpPostfix); b != nil {
				if b.Meta.Precedence < minPrec {
					break
				}
				resolveTo(ref, b)
				atom = &ast.App{Fn: ref, Arg: atom, Orig: ref.Orig}
				rest = rest[1:]
				continue
			}
		}
		// A group or any other non-operator term directly following a
		// completed expression is an error, not silent application.
		reason := "term follows completed expression"
		if _, isGroup := rest[0].(*ast.TermGroup); isGroup {
			reason = "group follows completed expression without an operator"
		}
		rw.errs = append(rw.errs, errf(rw.phase, DanglingTerms, originOf(rest[0]), "%s", reason))
		atom = &ast.TermError{
			Terms:  append([]ast.Term{atom}, rest...),
			Reason: reason,
			Orig:   originOf(rest[0]),
		}
		rest = nil
	}
	return atom, rest
}

// primary parses one atom, consuming juxtaposed arguments after a
// function head.
func (rw *rewriter) primary(terms []ast.Term) (ast.Term, []ast.Term) {
	if len(terms) == 0 {
		return &ast.TermError{Reason: "empty expression", Orig: ast.Synth{}}, nil
	}
	switch n := terms[0].(type) {
	case *ast.Ref:
		if pb := rw.opBinding(n, ast.OpPrefix); pb != nil {
			resolveTo(n, pb)
			operand, rest := rw.climb(terms[1:], pb.Meta.Precedence)
			return &ast.App{Fn: n, Arg: operand, Orig: n.Orig}, rest
		}
		if rw.isOperator(n) {
			rw.errs = append(rw.errs, namedErrf(rw.phase, InvalidExpr, n.Name, n.Orig,
				"operator %s at expression head", n.Name))
			return &ast.TermError{Terms: []ast.Term{n}, Reason: "operator at head", Orig: n.Orig}, terms[1:]
		}
		var args []ast.Term
		rest := terms[1:]
		for len(rest) > 0 && rw.isArgAtom(rest[0]) {
			var arg ast.Term
			arg, rest = rw.argAtom(rest)
			args = append(args, arg)
		}
		followedByOp := len(rest) > 0 && rw.isOperator(rest[0])
		return rw.applyHead(n, args, followedByOp), rest
	case *ast.TermGroup:
		inner := rw.expr(n.Inner)
		if single := inner.Single(); single != nil {
			return single, terms[1:]
		}
		return &ast.TermGroup{Inner: inner, Orig: n.Orig}, terms[1:]
	case *ast.Cond, *ast.Lambda, *ast.App, *ast.Tuple:
		return rw.term(n), terms[1:]
	default:
		return terms[0], terms[1:]
	}
}

// isArgAtom reports whether a term can be consumed as a juxtaposed
// argument.
func (rw *rewriter) isArgAtom(t ast.Term) bool {
	switch n := t.(type) {
	case *ast.Ref:
		return !rw.isOperator(n) && rw.opBinding(n, ast.OpPrefix) == nil
	case *ast.LiteralInt, *ast.LiteralFloat, *ast.LiteralString, *ast.LiteralBool,
		*ast.LiteralUnit, *ast.TermGroup, *ast.Tuple, *ast.Hole, *ast.Placeholder:
		return true
	}
	return false
}

func (rw *rewriter) argAtom(terms []ast.Term) (ast.Term, []ast.Term) {
	if g, ok := terms[0].(*ast.TermGroup); ok {
		inner := rw.expr(g.Inner)
		if single := inner.Single(); single != nil {
			return single, terms[1:]
		}
		return &ast.TermGroup{Inner: inner, Orig: g.Orig}, terms[1:]
	}
	return terms[0], terms[1:]
}

// applyHead builds the left-associative application chain for a function
// head, eta-expanding partial applications. When the partial application
// is the operand of a following operator it is left bare for the operator
// to consume.
func (rw *rewriter) applyHead(ref *ast.Ref, args []ast.Term, followedByOp bool) ast.Term {
	var chain ast.Term = ref
	for _, a := range args {
		chain = &ast.App{Fn: chain, Arg: a, Orig: ref.Orig}
	}
	if len(args) == 0 {
		return chain
	}

	b := rw.headBinding(ref)
	if b == nil || !b.IsFunction() {
		return chain
	}
	arity := b.Meta.Arity
	if len(args) >= arity || followedByOp {
		return chain
	}

	declared := b.BodyLambda().Params
	missing := declared[len(args):]
	for _, mp := range missing {
		if mp.Consuming {
			rw.errs = append(rw.errs, namedErrf(rw.phase, PartialApplicationWithConsuming, b.Name, ref.Orig,
				"partial application of %s leaves consuming parameter %s unapplied", b.Name, mp.Name))
			return chain
		}
	}

	// Eta-expansion: one synthetic parameter per missing argument, typed
	// from the declared parameter; the lambda body saturates the call.
	params := make([]*ast.FnParam, len(missing))
	full := chain
	for i, mp := range missing {
		name := fmt.Sprintf("$p%d", i)
		sp := &ast.FnParam{
			Name:    name,
			ID:      NestedParamID(rw.modName, "bnd", rw.owner, name),
			TypeAsc: mp.TypeAsc,
			Orig:    ast.Synth{},
		}
		params[i] = sp
		full = &ast.App{
			Fn:   full,
			Arg:  &ast.Ref{Name: name, ResolvedID: sp.ID, CandidateIDs: []string{sp.ID}, Orig: ast.Synth{}},
			Orig: ast.Synth{},
		}
	}
	return &ast.Lambda{
		Params: params,
		Body:   &ast.Expr{Terms: []ast.Term{full}, Orig: ast.Synth{}},
		Orig:   ast.Synth{},
	}
}

// headBinding finds the non-operator binding a function head refers to.
func (rw *rewriter) headBinding(ref *ast.Ref) *ast.Bnd {
	ids := ref.CandidateIDs
	if len(ids) == 0 && ref.ResolvedID != "" {
		ids = []string{ref.ResolvedID}
	}
	for _, id := range ids {
		if b, ok := rw.ix.LookupBnd(id); ok && b.Meta.OpKind == ast.OpNone {
			return b
		}
	}
	return nil
}

func resolveTo(ref *ast.Ref, b *ast.Bnd) {
	ref.ResolvedID = b.ID
	ref.CandidateIDs = []string{b.ID}
}

func appChain(op *ast.Ref, lhs, rhs ast.Term) ast.Term {
	return &ast.App{
		Fn:   &ast.App{Fn: op, Arg: lhs, Orig: op.Orig},
		Arg:  rhs,
		Orig: op.Orig,
	}
}

func originOf(t ast.Term) ast.SourceOrigin {
	if t == nil {
		return ast.Synth{}
	}
	return t.Origin()
}
