package semantic

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fedesilva/minnieml/internal/ast"
)

func TestRewriteArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3  ⇒  ((+ 1) ((* 2) 3))
	m := newModule(valBnd("x", intLit(1), ref("+"), intLit(2), ref("*"), intLit(3)))
	st := runThrough(t, m, Config{}, "expression-rewriting")

	if len(st.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", st.Errors)
	}
	b := findBnd(t, st, "x")
	outer, ok := b.Body.Single().(*ast.App)
	if !ok {
		t.Fatalf("body is %T, want App", b.Body.Single())
	}
	base, args := outer.Uncurry()
	opRef, ok := base.(*ast.Ref)
	if !ok || opRef.Name != "+" {
		t.Fatalf("outer operator is %s, want +", base)
	}
	if len(args) != 2 {
		t.Fatalf("outer application has %d args, want 2", len(args))
	}
	if lit, ok := args[0].(*ast.LiteralInt); !ok || lit.Value != 1 {
		t.Errorf("lhs is %s, want 1", args[0])
	}
	rhs, ok := args[1].(*ast.App)
	if !ok {
		t.Fatalf("rhs is %T, want App", args[1])
	}
	rbase, rargs := rhs.Uncurry()
	if rref, ok := rbase.(*ast.Ref); !ok || rref.Name != "*" {
		t.Fatalf("rhs operator is %s, want *", rbase)
	}
	if len(rargs) != 2 {
		t.Fatalf("rhs application has %d args, want 2", len(rargs))
	}
}

func TestRewritePowerIsRightAssociative(t *testing.T) {
	// 2 ^ 3 ^ 4  ⇒  ((^ 2) ((^ 3) 4))
	m := newModule(valBnd("x", intLit(2), ref("^"), intLit(3), ref("^"), intLit(4)))
	st := runThrough(t, m, Config{}, "expression-rewriting")

	b := findBnd(t, st, "x")
	outer := b.Body.Single().(*ast.App)
	_, args := outer.Uncurry()
	if _, ok := args[1].(*ast.App); !ok {
		t.Fatalf("right operand is %T, want nested App", args[1])
	}
	if _, ok := args[0].(*ast.LiteralInt); !ok {
		t.Fatalf("left operand is %T, want literal", args[0])
	}
}

func TestRewritePrefixOperator(t *testing.T) {
	// - 5 + 1  ⇒  ((+ (neg 5)) 1): unary minus binds tighter.
	m := newModule(valBnd("x", ref("-"), intLit(5), ref("+"), intLit(1)))
	st := runThrough(t, m, Config{}, "expression-rewriting")

	if len(st.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", st.Errors)
	}
	b := findBnd(t, st, "x")
	outer := b.Body.Single().(*ast.App)
	base, args := outer.Uncurry()
	if opRef := base.(*ast.Ref); opRef.ResolvedID != "stdlib::ops::plus" {
		t.Fatalf("outer operator resolved to %s, want stdlib::ops::plus", opRef.ResolvedID)
	}
	neg, ok := args[0].(*ast.App)
	if !ok {
		t.Fatalf("left operand is %T, want prefix application", args[0])
	}
	if negRef := neg.Fn.(*ast.Ref); negRef.ResolvedID != "stdlib::ops::neg" {
		t.Errorf("prefix operator resolved to %s, want stdlib::ops::neg", negRef.ResolvedID)
	}
}

func TestRewriteFunctionApplicationJuxtaposition(t *testing.T) {
	// f a b  ⇒  ((f a) b)
	m := newModule(
		fnBnd("f", []*ast.FnParam{fnParam("a", tRef("Int")), fnParam("b", tRef("Int"))}, tRef("Int"),
			ref("a"), ref("+"), ref("b")),
		valBnd("x", ref("f"), intLit(1), intLit(2)),
	)
	st := runThrough(t, m, Config{}, "expression-rewriting")

	if len(st.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", st.Errors)
	}
	b := findBnd(t, st, "x")
	outer := b.Body.Single().(*ast.App)
	base, args := outer.Uncurry()
	if fref := base.(*ast.Ref); fref.Name != "f" {
		t.Fatalf("head is %s, want f", base)
	}
	if len(args) != 2 {
		t.Fatalf("%d args, want 2", len(args))
	}
}

func TestRewritePartialApplicationEtaExpands(t *testing.T) {
	// add 1  ⇒  fn($p0: Int) ((add 1) $p0)
	m := newModule(
		fnBnd("add", []*ast.FnParam{fnParam("a", tRef("Int")), fnParam("b", tRef("Int"))}, tRef("Int"),
			ref("a"), ref("+"), ref("b")),
		valBnd("inc", ref("add"), intLit(1)),
	)
	st := runThrough(t, m, Config{}, "expression-rewriting")

	if len(st.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", st.Errors)
	}
	b := findBnd(t, st, "inc")
	lam, ok := b.Body.Single().(*ast.Lambda)
	if !ok {
		t.Fatalf("body is %T, want eta-expansion Lambda", b.Body.Single())
	}
	if len(lam.Params) != 1 || lam.Params[0].Name != "$p0" {
		t.Fatalf("lambda params are %v, want [$p0]", lam.Params)
	}
	if !lam.Orig.Synthetic() {
		t.Error("eta-expansion lambda must be synthetic")
	}
	if diff := cmp.Diff("Int", lam.Params[0].TypeAsc.(*ast.TypeRef).Name); diff != "" {
		t.Errorf("synthetic param type mismatch (-want +got):\n%s", diff)
	}
	full, ok := lam.Body.Single().(*ast.App)
	if !ok {
		t.Fatalf("lambda body is %T, want saturated App", lam.Body.Single())
	}
	_, args := full.Uncurry()
	if len(args) != 2 {
		t.Fatalf("saturated call has %d args, want 2", len(args))
	}
	if pref, ok := args[1].(*ast.Ref); !ok || pref.Name != "$p0" {
		t.Errorf("last arg is %s, want $p0", args[1])
	}
}

func TestRewritePartialApplicationWithConsumingParam(t *testing.T) {
	consume := fnParam("s", tRef("String"))
	consume.Consuming = true
	m := newModule(
		fnBnd("sink", []*ast.FnParam{fnParam("n", tRef("Int")), consume}, tRef("Unit"),
			ref("println"), ref("s")),
		valBnd("x", ref("sink"), intLit(1)),
	)
	st := runThrough(t, m, Config{}, "expression-rewriting")

	if !hasErrorKind(st, PartialApplicationWithConsuming) {
		t.Fatalf("want PartialApplicationWithConsuming, got %v", errorKinds(st))
	}
	// The binding keeps the bare partial chain rather than an eta lambda.
	b := findBnd(t, st, "x")
	if _, ok := b.Body.Single().(*ast.App); !ok {
		t.Fatalf("body is %T, want App", b.Body.Single())
	}
}

func TestRewriteDanglingTerm(t *testing.T) {
	m := newModule(valBnd("x", intLit(1), intLit(2)))
	st := runThrough(t, m, Config{}, "expression-rewriting")

	if !hasErrorKind(st, DanglingTerms) {
		t.Fatalf("want DanglingTerms, got %v", errorKinds(st))
	}
	b := findBnd(t, st, "x")
	if _, ok := b.Body.Single().(*ast.TermError); !ok {
		t.Fatalf("body is %T, want TermError marker", b.Body.Single())
	}
}

func TestRewriteDanglingGroup(t *testing.T) {
	// A group after a completed expression is an error, not application.
	m := newModule(valBnd("x", intLit(1), ref("+"), intLit(2), group(intLit(3))))
	st := runThrough(t, m, Config{}, "expression-rewriting")

	if !hasErrorKind(st, DanglingTerms) {
		t.Fatalf("want DanglingTerms, got %v", errorKinds(st))
	}
}

func TestRewriteGroupsOverridePrecedence(t *testing.T) {
	// (1 + 2) * 3  ⇒  ((* ((+ 1) 2)) 3)
	m := newModule(valBnd("x", group(intLit(1), ref("+"), intLit(2)), ref("*"), intLit(3)))
	st := runThrough(t, m, Config{}, "expression-rewriting")

	if len(st.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", st.Errors)
	}
	b := findBnd(t, st, "x")
	outer := b.Body.Single().(*ast.App)
	base, args := outer.Uncurry()
	if opRef := base.(*ast.Ref); opRef.Name != "*" {
		t.Fatalf("outer operator is %s, want *", base)
	}
	if _, ok := args[0].(*ast.App); !ok {
		t.Fatalf("grouped operand is %T, want App", args[0])
	}
}

func TestRewriteIsIdempotent(t *testing.T) {
	m := newModule(
		fnBnd("add", []*ast.FnParam{fnParam("a", tRef("Int")), fnParam("b", tRef("Int"))}, tRef("Int"),
			ref("a"), ref("+"), ref("b")),
		valBnd("x", intLit(1), ref("+"), intLit(2), ref("*"), intLit(3)),
		valBnd("inc", ref("add"), intLit(1)),
	)
	st := runThrough(t, m, Config{}, "expression-rewriting")
	once := ast.Print(st.Module)

	st = (ExprRewriter{}).Process(st)
	twice := ast.Print(st.Module)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("rewriter is not idempotent (-once +twice):\n%s", diff)
	}
	if len(st.Errors) != 0 {
		t.Errorf("second run produced errors: %v", st.Errors)
	}
}
