package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// MemFuncGenerator synthesizes __free_T and __clone_T for every user
// struct with at least one heap-typed field, and marks the heap-typed
// parameters of the synthetic constructors as consuming so the ownership
// analyzer enforces transfer at construction sites.
type MemFuncGenerator struct{}

func (MemFuncGenerator) Name() string { return "memory-function-generation" }

func (p MemFuncGenerator) Process(s State) State {
	mod := s.Module
	ix := s.Index()

	// Collect the structs needing memory functions first, so that
	// nested-struct bodies can reference each other's functions
	// regardless of declaration order.
	var heapStructs []*ast.TypeStruct
	for _, m := range mod.Members {
		st, ok := m.(*ast.TypeStruct)
		if !ok {
			continue
		}
		if _, heap := HeapTypeName(&ast.TypeRef{Name: st.Name, ResolvedID: st.ID, Orig: ast.Synth{}}, ix); heap {
			heapStructs = append(heapStructs, st)
		}
	}
	if len(heapStructs) == 0 {
		return s
	}

	// Reserve ids up front.
	generated := make(map[string][2]*ast.Bnd, len(heapStructs))
	for _, st := range heapStructs {
		free := &ast.Bnd{
			Name: FreeName(st.Name),
			ID:   mod.Name + "::bnd::" + FreeName(st.Name),
			Meta: ast.BindingMeta{
				Origin:       ast.OriginDestructor,
				Arity:        1,
				OriginalName: st.Name,
				MangledName:  FreeName(st.Name),
				TypeName:     st.Name,
			},
			Orig: ast.Synth{},
		}
		clone := &ast.Bnd{
			Name: CloneName(st.Name),
			ID:   mod.Name + "::bnd::" + CloneName(st.Name),
			Meta: ast.BindingMeta{
				Origin:       ast.OriginFunction,
				Arity:        1,
				OriginalName: st.Name,
				MangledName:  CloneName(st.Name),
				TypeName:     st.Name,
			},
			Orig: ast.Synth{},
		}
		generated[st.Name] = [2]*ast.Bnd{free, clone}
		ix.Updated(free)
		ix.Updated(clone)
	}

	for _, st := range heapStructs {
		pair := generated[st.Name]
		p.buildFree(s, st, pair[0])
		p.buildClone(s, st, pair[1])
	}

	// Splice the new bindings in after each struct's constructor.
	var members []ast.Member
	for _, m := range mod.Members {
		members = append(members, m)
		b, ok := m.(*ast.Bnd)
		if !ok || b.Meta.Origin != ast.OriginConstructor {
			continue
		}
		if pair, found := generated[b.Meta.TypeName]; found {
			members = append(members, pair[0], pair[1])
		}
	}
	mod.Members = members

	// Constructors of heap structs take ownership of their heap fields.
	for _, m := range mod.Members {
		b, ok := m.(*ast.Bnd)
		if !ok || b.Meta.Origin != ast.OriginConstructor {
			continue
		}
		l := b.BodyLambda()
		if l == nil {
			continue
		}
		for _, fp := range l.Params {
			if _, heap := HeapTypeName(fp.TypeAsc, ix); heap {
				fp.Consuming = true
			}
		}
	}
	return s
}

func structRef(st *ast.TypeStruct) *ast.TypeRef {
	return &ast.TypeRef{Name: st.Name, ResolvedID: st.ID, Orig: ast.Synth{}}
}

// fieldAccess builds s.f with both references resolved.
func fieldAccess(sp *ast.FnParam, f *ast.Field) *ast.Ref {
	return &ast.Ref{
		Name:         f.Name,
		ResolvedID:   f.ID,
		CandidateIDs: []string{f.ID},
		Qualifier: &ast.Ref{
			Name:         sp.Name,
			ResolvedID:   sp.ID,
			CandidateIDs: []string{sp.ID},
			Orig:         ast.Synth{},
		},
		Orig: ast.Synth{},
	}
}

// buildFree gives the destructor its body:
//
//	__free_T(~s: T): Unit = let _ = __free_F1 s.f1; ...; ()
//
// as nested App(Lambda(discard, rest), freeCall) forms.
func (p MemFuncGenerator) buildFree(s State, st *ast.TypeStruct, free *ast.Bnd) {
	ix := s.Index()
	mod := s.Module
	sp := &ast.FnParam{
		Name:      "s",
		ID:        NestedParamID(mod.Name, "bnd", free.Name, "s"),
		TypeAsc:   structRef(st),
		TypeSpec:  structRef(st),
		Consuming: true,
		Orig:      ast.Synth{},
	}
	ix.Updated(sp)

	unit := StdlibTypeRef("Unit")
	var body ast.Term = &ast.LiteralUnit{Orig: ast.Synth{}}
	for i := len(st.Fields) - 1; i >= 0; i-- {
		f := st.Fields[i]
		fieldType, heap := HeapTypeName(f.Type, ix)
		if !heap {
			continue
		}
		freeCall := &ast.App{
			Fn:       memFnRef(ix, mod.Name, FreeName(fieldType)),
			Arg:      fieldAccess(sp, f),
			TypeSpec: unit,
			Orig:     ast.Synth{},
		}
		discard := &ast.FnParam{
			Name:     "_",
			ID:       NestedParamID(mod.Name, "bnd", free.Name, "_"),
			TypeAsc:  unit,
			TypeSpec: unit,
			Orig:     ast.Synth{},
		}
		ix.Updated(discard)
		body = &ast.App{
			Fn: &ast.Lambda{
				Params: []*ast.FnParam{discard},
				Body:   &ast.Expr{Terms: []ast.Term{body}, Orig: ast.Synth{}},
				Orig:   ast.Synth{},
			},
			Arg:  freeCall,
			Orig: ast.Synth{},
		}
	}

	free.TypeAsc = unit
	free.TypeSpec = &ast.TypeFn{Params: []ast.Type{structRef(st)}, Return: unit, Orig: ast.Synth{}}
	free.Body = &ast.Expr{
		Terms: []ast.Term{&ast.Lambda{
			Params: []*ast.FnParam{sp},
			Body:   &ast.Expr{Terms: []ast.Term{body}, Orig: ast.Synth{}},
			Orig:   ast.Synth{},
		}},
		Orig: ast.Synth{},
	}
}

// buildClone gives the clone function its body:
//
//	__clone_T(s: T): T = __mk_T (__clone_F1 s.f1) s.f2 ...
//
// cloning heap fields and passing the rest through.
func (p MemFuncGenerator) buildClone(s State, st *ast.TypeStruct, clone *ast.Bnd) {
	ix := s.Index()
	mod := s.Module
	sp := &ast.FnParam{
		Name:     "s",
		ID:       NestedParamID(mod.Name, "bnd", clone.Name, "s"),
		TypeAsc:  structRef(st),
		TypeSpec: structRef(st),
		Orig:     ast.Synth{},
	}
	ix.Updated(sp)

	mkID := mod.Name + "::bnd::" + MkName(st.Name)
	var chain ast.Term = &ast.Ref{
		Name:         MkName(st.Name),
		ResolvedID:   mkID,
		CandidateIDs: []string{mkID},
		Orig:         ast.Synth{},
	}
	for _, f := range st.Fields {
		var arg ast.Term = fieldAccess(sp, f)
		if fieldType, heap := HeapTypeName(f.Type, ix); heap {
			arg = &ast.App{
				Fn:       memFnRef(ix, mod.Name, CloneName(fieldType)),
				Arg:      arg,
				TypeSpec: f.Type,
				Orig:     ast.Synth{},
			}
		}
		chain = &ast.App{Fn: chain, Arg: arg, Orig: ast.Synth{}}
	}
	if app, ok := chain.(*ast.App); ok {
		app.TypeSpec = structRef(st)
	}

	clone.TypeAsc = structRef(st)
	clone.TypeSpec = &ast.TypeFn{Params: []ast.Type{structRef(st)}, Return: structRef(st), Orig: ast.Synth{}}
	clone.Body = &ast.Expr{
		Terms: []ast.Term{&ast.Lambda{
			Params: []*ast.FnParam{sp},
			Body:   &ast.Expr{Terms: []ast.Term{chain}, Orig: ast.Synth{}},
			Orig:   ast.Synth{},
		}},
		Orig: ast.Synth{},
	}
}
