package semantic

import (
	"testing"

	"github.com/fedesilva/minnieml/internal/ast"
)

func TestEntryPointWithParamsRejected(t *testing.T) {
	m := newModule(
		fnBnd("main", []*ast.FnParam{fnParam("x", tRef("Int"))}, tRef("Int"), ref("x")),
	)
	st := runThrough(t, m, Config{Mode: ModeBinary}, "pre-codegen-validation")

	if !hasErrorKind(st, InvalidEntryPoint) {
		t.Fatalf("want InvalidEntryPoint, got %v", errorKinds(st))
	}
}

func TestEntryPointIntReturnAccepted(t *testing.T) {
	m := newModule(fnBnd("main", nil, tRef("Int"), intLit(0)))
	st := runThrough(t, m, Config{Mode: ModeBinary}, "pre-codegen-validation")

	if hasErrorKind(st, InvalidEntryPoint) {
		t.Fatalf("valid entry point rejected: %v", errorKinds(st))
	}
}

func TestEntryPointStringReturnRejected(t *testing.T) {
	m := newModule(fnBnd("main", nil, tRef("String"), strLit("no")))
	st := runThrough(t, m, Config{Mode: ModeBinary}, "pre-codegen-validation")

	if !hasErrorKind(st, InvalidEntryPoint) {
		t.Fatalf("want InvalidEntryPoint, got %v", errorKinds(st))
	}
}

func TestMissingEntryPointRejected(t *testing.T) {
	m := newModule(fnBnd("helper", nil, tRef("Int"), intLit(1)))
	st := runThrough(t, m, Config{Mode: ModeBinary}, "pre-codegen-validation")

	if !hasErrorKind(st, InvalidEntryPoint) {
		t.Fatalf("want InvalidEntryPoint, got %v", errorKinds(st))
	}
}

func TestLibraryModeNeedsNoEntryPoint(t *testing.T) {
	m := newModule(fnBnd("helper", nil, tRef("Int"), intLit(1)))
	st := runThrough(t, m, Config{Mode: ModeLibrary}, "pre-codegen-validation")

	if hasErrorKind(st, InvalidEntryPoint) {
		t.Fatalf("library mode must not require main: %v", errorKinds(st))
	}
}
