package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Term is an expression node.
type Term interface {
	Node
	termNode()
}

// Expr is a flat sequence of terms as produced by the parser. The
// expression rewriter collapses every Expr to a single term; the TypeSpec
// is filled by the type checker.
type Expr struct {
	Terms    []Term
	TypeSpec Type
	Orig     SourceOrigin
}

func (e *Expr) termNode()            {}
func (e *Expr) Origin() SourceOrigin { return e.Orig }
func (e *Expr) String() string {
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Single returns the expression's only term when the rewriter has already
// collapsed it, or nil.
func (e *Expr) Single() Term {
	if e == nil || len(e.Terms) != 1 {
		return nil
	}
	return e.Terms[0]
}

// Literals.

type LiteralInt struct {
	Value int64
	Orig  SourceOrigin
}

func (l *LiteralInt) termNode()            {}
func (l *LiteralInt) Origin() SourceOrigin { return l.Orig }
func (l *LiteralInt) String() string       { return strconv.FormatInt(l.Value, 10) }

type LiteralFloat struct {
	Value float64
	Orig  SourceOrigin
}

func (l *LiteralFloat) termNode()            {}
func (l *LiteralFloat) Origin() SourceOrigin { return l.Orig }
func (l *LiteralFloat) String() string       { return strconv.FormatFloat(l.Value, 'g', -1, 64) }

type LiteralString struct {
	Value string
	Orig  SourceOrigin
}

func (l *LiteralString) termNode()            {}
func (l *LiteralString) Origin() SourceOrigin { return l.Orig }
func (l *LiteralString) String() string       { return strconv.Quote(l.Value) }

type LiteralBool struct {
	Value bool
	Orig  SourceOrigin
}

func (l *LiteralBool) termNode()            {}
func (l *LiteralBool) Origin() SourceOrigin { return l.Orig }
func (l *LiteralBool) String() string       { return strconv.FormatBool(l.Value) }

type LiteralUnit struct {
	Orig SourceOrigin
}

func (l *LiteralUnit) termNode()            {}
func (l *LiteralUnit) Origin() SourceOrigin { return l.Orig }
func (l *LiteralUnit) String() string       { return "()" }

// Ref is a reference to a binding, parameter or, when qualified, a
// struct field. The reference resolver fills CandidateIDs and, when a
// single winner exists, ResolvedID.
type Ref struct {
	Name         string
	Qualifier    *Ref
	ResolvedID   string
	CandidateIDs []string
	Orig         SourceOrigin
}

func (r *Ref) termNode()            {}
func (r *Ref) Origin() SourceOrigin { return r.Orig }
func (r *Ref) String() string {
	if r.Qualifier != nil {
		return fmt.Sprintf("%s.%s", r.Qualifier, r.Name)
	}
	return r.Name
}

// Resolved reports whether the reference has exactly one target.
func (r *Ref) Resolved() bool { return r.ResolvedID != "" }

// App is a curried application: each App takes exactly one argument, so
// `f a b` is App(App(f, a), b). Fn is a Ref, App or Lambda.
type App struct {
	Fn       Term
	Arg      Term
	TypeSpec Type
	Orig     SourceOrigin
}

func (a *App) termNode()            {}
func (a *App) Origin() SourceOrigin { return a.Orig }
func (a *App) String() string {
	return fmt.Sprintf("(%s %s)", a.Fn, a.Arg)
}

// Uncurry flattens an application chain into its base function and the
// arguments in application order.
func (a *App) Uncurry() (Term, []Term) {
	args := []Term{a.Arg}
	fn := a.Fn
	for {
		inner, ok := fn.(*App)
		if !ok {
			break
		}
		args = append([]Term{inner.Arg}, args...)
		fn = inner.Fn
	}
	return fn, args
}

// LambdaMeta carries flags computed by late phases.
type LambdaMeta struct {
	IsTailRecursive bool
}

// Lambda is a function value. Let-bindings are represented as
// App(Lambda([name], body), value).
type Lambda struct {
	Params   []*FnParam
	Body     *Expr
	Captures []string
	TypeSpec Type
	Meta     LambdaMeta
	Orig     SourceOrigin
}

func (l *Lambda) termNode()            {}
func (l *Lambda) Origin() SourceOrigin { return l.Orig }
func (l *Lambda) String() string {
	params := make([]string, len(l.Params))
	for i, p := range l.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("(fn [%s] %s)", strings.Join(params, ", "), l.Body)
}

// Cond is a conditional expression.
type Cond struct {
	Cond     *Expr
	IfTrue   *Expr
	IfFalse  *Expr
	TypeSpec Type
	Orig     SourceOrigin
}

func (c *Cond) termNode()            {}
func (c *Cond) Origin() SourceOrigin { return c.Orig }
func (c *Cond) String() string {
	return fmt.Sprintf("(if %s %s %s)", c.Cond, c.IfTrue, c.IfFalse)
}

// TermGroup is a parenthesized sub-expression.
type TermGroup struct {
	Inner *Expr
	Orig  SourceOrigin
}

func (g *TermGroup) termNode()            {}
func (g *TermGroup) Origin() SourceOrigin { return g.Orig }
func (g *TermGroup) String() string       { return fmt.Sprintf("(%s)", g.Inner) }

// Tuple is an ordered collection of terms.
type Tuple struct {
	Elements []Term
	TypeSpec Type
	Orig     SourceOrigin
}

func (t *Tuple) termNode()            {}
func (t *Tuple) Origin() SourceOrigin { return t.Orig }
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(tuple %s)", strings.Join(parts, " "))
}

// NativeImpl marks a body implemented by the backend rather than in
// source. MemEffect declares whether calling it allocates.
type NativeImpl struct {
	MemEffect MemEffect
	Orig      SourceOrigin
}

func (n *NativeImpl) termNode()            {}
func (n *NativeImpl) Origin() SourceOrigin { return n.Orig }
func (n *NativeImpl) String() string {
	if n.MemEffect != MemNone {
		return fmt.Sprintf("(native %s)", n.MemEffect)
	}
	return "(native)"
}

// DataConstructor is the body of a generated __mk_T binding: it carries
// the struct type the constructor produces.
type DataConstructor struct {
	TypeRef *TypeRef
	Orig    SourceOrigin
}

func (d *DataConstructor) termNode()            {}
func (d *DataConstructor) Origin() SourceOrigin { return d.Orig }
func (d *DataConstructor) String() string       { return fmt.Sprintf("(construct %s)", d.TypeRef) }

// Hole is an explicitly unfinished term.
type Hole struct {
	Orig SourceOrigin
}

func (h *Hole) termNode()            {}
func (h *Hole) Origin() SourceOrigin { return h.Orig }
func (h *Hole) String() string       { return "???" }

// Placeholder stands for an argument position in partial application
// syntax.
type Placeholder struct {
	Orig SourceOrigin
}

func (p *Placeholder) termNode()            {}
func (p *Placeholder) Origin() SourceOrigin { return p.Orig }
func (p *Placeholder) String() string       { return "_" }

// TermError replaces a subtree the rewriter could not make sense of. The
// offending terms are preserved for reporting.
type TermError struct {
	Terms  []Term
	Reason string
	Orig   SourceOrigin
}

func (e *TermError) termNode()            {}
func (e *TermError) Origin() SourceOrigin { return e.Orig }
func (e *TermError) String() string {
	return fmt.Sprintf("(term-error %q)", e.Reason)
}

// InvalidExpression is a parser-produced placeholder for an expression it
// could not parse.
type InvalidExpression struct {
	Reason string
	Orig   SourceOrigin
}

func (e *InvalidExpression) termNode()            {}
func (e *InvalidExpression) Origin() SourceOrigin { return e.Orig }
func (e *InvalidExpression) String() string {
	return fmt.Sprintf("(invalid-expr %q)", e.Reason)
}
