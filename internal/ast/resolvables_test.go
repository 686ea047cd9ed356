package ast

import (
	"testing"
)

func TestIndexInsertAndReplace(t *testing.T) {
	ix := NewResolvablesIndex()
	b := &Bnd{Name: "x", ID: "m::bnd::x", Orig: Synth{}}
	ix.Updated(b)

	got, ok := ix.Lookup("m::bnd::x")
	if !ok || got != Resolvable(b) {
		t.Fatal("inserted binding not found")
	}

	// Replace by id.
	b2 := &Bnd{Name: "x", ID: "m::bnd::x", Orig: Synth{}}
	ix.Updated(b2)
	got, _ = ix.Lookup("m::bnd::x")
	if got != Resolvable(b2) {
		t.Error("replacement did not win")
	}
	if ix.Size() != 1 {
		t.Errorf("size %d, want 1", ix.Size())
	}
}

func TestIndexIgnoresEmptyIDs(t *testing.T) {
	ix := NewResolvablesIndex()
	ix.Updated(&Bnd{Name: "anon", Orig: Synth{}})
	if ix.Size() != 0 {
		t.Error("declaration without an id must not be indexed")
	}
}

func TestIndexSeparatesValueAndTypeNamespaces(t *testing.T) {
	ix := NewResolvablesIndex()
	ix.Updated(&Bnd{Name: "Int", ID: "m::bnd::Int", Orig: Synth{}})
	ix.UpdatedType(&TypeDef{Name: "Int", ID: "m::typedef::Int", Orig: Synth{}})

	if _, ok := ix.Lookup("m::typedef::Int"); ok {
		t.Error("type declaration leaked into the value table")
	}
	if _, ok := ix.LookupType("m::typedef::Int"); !ok {
		t.Error("type declaration not found in the type table")
	}
}

func TestIndexUpdatedAllParams(t *testing.T) {
	ix := NewResolvablesIndex()
	params := []*FnParam{
		{Name: "a", ID: "m::bnd::f::a::00000000", Orig: Synth{}},
		{Name: "b", ID: "m::bnd::f::b::00000000", Orig: Synth{}},
	}
	ix.UpdatedAll(params)
	if ix.Size() != 2 {
		t.Fatalf("size %d, want 2", ix.Size())
	}
	if p, ok := ix.LookupParam("m::bnd::f::a::00000000"); !ok || p.Name != "a" {
		t.Error("parameter lookup failed")
	}
}

func TestLookupBndRejectsParams(t *testing.T) {
	ix := NewResolvablesIndex()
	ix.Updated(&FnParam{Name: "a", ID: "id", Orig: Synth{}})
	if _, ok := ix.LookupBnd("id"); ok {
		t.Error("LookupBnd must not return a parameter")
	}
}
