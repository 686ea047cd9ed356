package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedesilva/minnieml/internal/ast"
)

func TestCheckArithmeticHasIntType(t *testing.T) {
	m := newModule(valBnd("x", intLit(1), ref("+"), intLit(2), ref("*"), intLit(3)))
	st := runThrough(t, m, Config{}, "type-checking")

	require.Empty(t, st.Errors)
	b := findBnd(t, st, "x")
	require.NotNil(t, b.TypeSpec)
	assert.Equal(t, "Int", b.TypeSpec.(*ast.TypeRef).Name)
}

func TestCheckFunctionAgainstAscription(t *testing.T) {
	m := newModule(
		fnBnd("inc", []*ast.FnParam{fnParam("n", tRef("Int"))}, tRef("Int"),
			ref("n"), ref("+"), intLit(1)),
	)
	st := runThrough(t, m, Config{}, "type-checking")

	require.Empty(t, st.Errors)
	b := findBnd(t, st, "inc")
	fn, ok := b.TypeSpec.(*ast.TypeFn)
	require.True(t, ok, "binding type is %T, want TypeFn", b.TypeSpec)
	assert.Len(t, fn.Params, 1)
	assert.Equal(t, "Int", fn.Return.(*ast.TypeRef).Name)
	// Ascriptions were lowered into specs.
	assert.NotNil(t, b.BodyLambda().Params[0].TypeSpec)
}

func TestCheckBodyDisagreesWithAscription(t *testing.T) {
	m := newModule(
		fnBnd("bad", []*ast.FnParam{fnParam("n", tRef("Int"))}, tRef("String"),
			ref("n"), ref("+"), intLit(1)),
	)
	st := runThrough(t, m, Config{}, "type-checking")

	assert.True(t, hasErrorKind(st, TypeMismatch), "got %v", errorKinds(st))
}

func TestCheckMissingParameterType(t *testing.T) {
	m := newModule(
		fnBnd("f", []*ast.FnParam{fnParam("n", nil)}, tRef("Int"), ref("n")),
	)
	st := runThrough(t, m, Config{}, "type-checking")

	assert.True(t, hasErrorKind(st, MissingParameterType), "got %v", errorKinds(st))
}

func TestCheckArgumentMismatch(t *testing.T) {
	m := newModule(
		fnBnd("inc", []*ast.FnParam{fnParam("n", tRef("Int"))}, tRef("Int"),
			ref("n"), ref("+"), intLit(1)),
		valBnd("x", ref("inc"), strLit("oops")),
	)
	st := runThrough(t, m, Config{}, "type-checking")

	assert.True(t, hasErrorKind(st, TypeMismatch), "got %v", errorKinds(st))
}

func TestCheckApplyNonCallable(t *testing.T) {
	m := newModule(
		valBnd("n", intLit(3)),
		valBnd("x", &ast.App{Fn: ref("n"), Arg: intLit(1), Orig: loc()}),
	)
	st := runThrough(t, m, Config{}, "type-checking")

	assert.True(t, hasErrorKind(st, InvalidApplication), "got %v", errorKinds(st))
}

func TestCheckConditional(t *testing.T) {
	m := newModule(
		fnBnd("pick", []*ast.FnParam{fnParam("b", tRef("Bool"))}, tRef("Int"),
			cond(expr(ref("b")), expr(intLit(1)), expr(intLit(2)))),
	)
	st := runThrough(t, m, Config{}, "type-checking")

	require.Empty(t, st.Errors)
	b := findBnd(t, st, "pick")
	c := b.BodyLambda().Body.Single().(*ast.Cond)
	assert.Equal(t, "Int", c.TypeSpec.(*ast.TypeRef).Name)
}

func TestCheckConditionalBranchMismatch(t *testing.T) {
	m := newModule(
		fnBnd("pick", []*ast.FnParam{fnParam("b", tRef("Bool"))}, tRef("Int"),
			cond(expr(ref("b")), expr(intLit(1)), expr(strLit("two")))),
	)
	st := runThrough(t, m, Config{}, "type-checking")

	assert.True(t, hasErrorKind(st, ConditionalBranchTypeMismatch), "got %v", errorKinds(st))
}

func TestCheckConditionMustBeBool(t *testing.T) {
	m := newModule(
		fnBnd("pick", []*ast.FnParam{fnParam("n", tRef("Int"))}, tRef("Int"),
			cond(expr(ref("n")), expr(intLit(1)), expr(intLit(2)))),
	)
	st := runThrough(t, m, Config{}, "type-checking")

	assert.True(t, hasErrorKind(st, TypeMismatch), "got %v", errorKinds(st))
}

func TestCheckLetBindingSeedsParamType(t *testing.T) {
	m := newModule(
		fnBnd("f", nil, tRef("Int"),
			letIn("x", expr(intLit(2), ref("+"), intLit(3)), ref("x"), ref("*"), intLit(2))),
	)
	st := runThrough(t, m, Config{}, "type-checking")

	require.Empty(t, st.Errors)
	b := findBnd(t, st, "f")
	let := b.BodyLambda().Body.Single().(*ast.App)
	lam := let.Fn.(*ast.Lambda)
	require.NotNil(t, lam.Params[0].TypeSpec)
	assert.Equal(t, "Int", lam.Params[0].TypeSpec.(*ast.TypeRef).Name)
}

func TestCheckHoleIsRejected(t *testing.T) {
	m := newModule(valBnd("x", &ast.Hole{Orig: loc()}))
	st := runThrough(t, m, Config{}, "type-checking")

	assert.True(t, hasErrorKind(st, UntypedHoleInBinding), "got %v", errorKinds(st))
}

func TestCheckAliasChainCompatibility(t *testing.T) {
	m := newModule(
		&ast.TypeAlias{Name: "Count", Ref: tRef("Int"), Orig: loc()},
		fnBnd("inc", []*ast.FnParam{fnParam("n", tRef("Count"))}, tRef("Count"),
			ref("n"), ref("+"), intLit(1)),
	)
	st := runThrough(t, m, Config{}, "type-checking")

	assert.Empty(t, st.Errors, "alias chains should compare compatible: %v", st.Errors)
}

func TestCheckZeroArityCallWithUnit(t *testing.T) {
	m := newModule(
		fnBnd("answer", nil, tRef("Int"), intLit(42)),
		valBnd("x", &ast.App{Fn: ref("answer"), Arg: &ast.LiteralUnit{Orig: loc()}, Orig: loc()}),
	)
	st := runThrough(t, m, Config{}, "type-checking")

	require.Empty(t, st.Errors)
	b := findBnd(t, st, "x")
	assert.Equal(t, "Int", b.TypeSpec.(*ast.TypeRef).Name)
}
