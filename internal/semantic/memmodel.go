package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// HeapTypeName follows a type to its declaration and reports the declared
// type's name when values of it live on the heap: typedefs with an Alloc
// effect, and structs with at least one heap-typed field.
func HeapTypeName(t ast.Type, ix *ast.ResolvablesIndex) (string, bool) {
	return heapTypeName(t, ix, 0)
}

func heapTypeName(t ast.Type, ix *ast.ResolvablesIndex, depth int) (string, bool) {
	if depth > 8 {
		return "", false
	}
	ref, ok := t.(*ast.TypeRef)
	if !ok || ref.ResolvedID == "" {
		return "", false
	}
	decl, found := ix.LookupType(ref.ResolvedID)
	if !found {
		return "", false
	}
	switch d := decl.(type) {
	case *ast.TypeDef:
		if d.MemEffect == ast.MemAlloc {
			return d.Name, true
		}
	case *ast.TypeStruct:
		for _, f := range d.Fields {
			if _, heap := heapTypeName(f.Type, ix, depth+1); heap {
				return d.Name, true
			}
		}
	case *ast.TypeAlias:
		spec := d.TypeSpec
		if spec == nil {
			spec = d.Ref
		}
		if name, heap := heapTypeName(spec, ix, depth+1); heap {
			return name, true
		}
	}
	return "", false
}

// memFnID finds the id of a memory function (__free_T or __clone_T) for a
// type: stdlib for heap natives, the current module for generated ones.
func memFnID(ix *ast.ResolvablesIndex, modName, fnName string) (string, bool) {
	if _, ok := ix.LookupBnd(stdlibMem + fnName); ok {
		return stdlibMem + fnName, true
	}
	id := modName + "::bnd::" + fnName
	if _, ok := ix.LookupBnd(id); ok {
		return id, true
	}
	return "", false
}

// memFnRef builds a resolved reference to a memory function.
func memFnRef(ix *ast.ResolvablesIndex, modName, fnName string) *ast.Ref {
	r := &ast.Ref{Name: fnName, Orig: ast.Synth{}}
	if id, ok := memFnID(ix, modName, fnName); ok {
		r.ResolvedID = id
		r.CandidateIDs = []string{id}
	}
	return r
}
