package ast

// ResolvablesIndex maps stable ids to declarations. Bindings and
// parameters live in one table, type declarations in a second, so that
// value and type namespaces stay separate. Updates are monotonic: insert
// or replace by id.
type ResolvablesIndex struct {
	bindings map[string]Resolvable
	types    map[string]Resolvable
}

// NewResolvablesIndex returns an empty index.
func NewResolvablesIndex() *ResolvablesIndex {
	return &ResolvablesIndex{
		bindings: make(map[string]Resolvable),
		types:    make(map[string]Resolvable),
	}
}

// Updated inserts or replaces a binding-like declaration by id.
func (ix *ResolvablesIndex) Updated(decl Resolvable) {
	if decl == nil || decl.ResolvableID() == "" {
		return
	}
	ix.bindings[decl.ResolvableID()] = decl
}

// UpdatedAll inserts all parameters.
func (ix *ResolvablesIndex) UpdatedAll(params []*FnParam) {
	for _, p := range params {
		ix.Updated(p)
	}
}

// UpdatedType inserts or replaces a type declaration by id.
func (ix *ResolvablesIndex) UpdatedType(decl Resolvable) {
	if decl == nil || decl.ResolvableID() == "" {
		return
	}
	ix.types[decl.ResolvableID()] = decl
}

// Lookup returns the binding or parameter with the given id.
func (ix *ResolvablesIndex) Lookup(id string) (Resolvable, bool) {
	r, ok := ix.bindings[id]
	return r, ok
}

// LookupType returns the type declaration with the given id.
func (ix *ResolvablesIndex) LookupType(id string) (Resolvable, bool) {
	r, ok := ix.types[id]
	return r, ok
}

// LookupBnd returns the binding with the given id when it is a Bnd.
func (ix *ResolvablesIndex) LookupBnd(id string) (*Bnd, bool) {
	r, ok := ix.bindings[id]
	if !ok {
		return nil, false
	}
	b, ok := r.(*Bnd)
	return b, ok
}

// LookupParam returns the parameter with the given id when it is one.
func (ix *ResolvablesIndex) LookupParam(id string) (*FnParam, bool) {
	r, ok := ix.bindings[id]
	if !ok {
		return nil, false
	}
	p, ok := r.(*FnParam)
	return p, ok
}

// Size reports how many value-level entries the index holds.
func (ix *ResolvablesIndex) Size() int { return len(ix.bindings) }

// TypeSize reports how many type-level entries the index holds.
func (ix *ResolvablesIndex) TypeSize() int { return len(ix.types) }

// IDs returns all value-level ids. Order is unspecified.
func (ix *ResolvablesIndex) IDs() []string {
	ids := make([]string, 0, len(ix.bindings))
	for id := range ix.bindings {
		ids = append(ids, id)
	}
	return ids
}
