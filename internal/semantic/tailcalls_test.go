package semantic

import (
	"testing"

	"github.com/fedesilva/minnieml/internal/ast"
)

func loopBinding() *ast.Bnd {
	// fn loop(n: Int): Int = if n == 0 then 0 else loop (n - 1)
	return fnBnd("loop", []*ast.FnParam{fnParam("n", tRef("Int"))}, tRef("Int"),
		cond(
			expr(ref("n"), ref("=="), intLit(0)),
			expr(intLit(0)),
			expr(ref("loop"), group(ref("n"), ref("-"), intLit(1)))))
}

func TestTailCallDetected(t *testing.T) {
	m := newModule(loopBinding())
	st := runThrough(t, m, Config{}, "tail-call-detection")

	if len(st.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", st.Errors)
	}
	b := findBnd(t, st, "loop")
	if !b.BodyLambda().Meta.IsTailRecursive {
		t.Error("terminal self-call not marked tail-recursive")
	}
}

func TestTailCallSkippedWithNoTCO(t *testing.T) {
	m := newModule(loopBinding())
	st := runThrough(t, m, Config{NoTCO: true}, "tail-call-detection")

	b := findBnd(t, st, "loop")
	if b.BodyLambda().Meta.IsTailRecursive {
		t.Error("noTco must disable tail-call detection")
	}
}

func TestNonTerminalSelfCallNotMarked(t *testing.T) {
	// The recursive call feeds an addition: not terminal.
	m := newModule(
		fnBnd("sum", []*ast.FnParam{fnParam("n", tRef("Int"))}, tRef("Int"),
			cond(
				expr(ref("n"), ref("=="), intLit(0)),
				expr(intLit(0)),
				expr(ref("n"), ref("+"), group(ref("sum"), group(ref("n"), ref("-"), intLit(1)))))),
	)
	st := runThrough(t, m, Config{}, "tail-call-detection")

	b := findBnd(t, st, "sum")
	if b.BodyLambda().Meta.IsTailRecursive {
		t.Error("non-terminal self-call must not be marked")
	}
}

func TestTailCallThroughLetContinuation(t *testing.T) {
	// The let continuation is the terminal position.
	m := newModule(
		fnBnd("spin", []*ast.FnParam{fnParam("n", tRef("Int"))}, tRef("Int"),
			letIn("m", expr(ref("n"), ref("-"), intLit(1)),
				ref("spin"), ref("m"))),
	)
	st := runThrough(t, m, Config{}, "tail-call-detection")

	b := findBnd(t, st, "spin")
	if !b.BodyLambda().Meta.IsTailRecursive {
		t.Error("self-call in let continuation not marked tail-recursive")
	}
}
