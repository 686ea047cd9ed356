package ast

import (
	"fmt"
	"strings"
)

// Type is a type-level node.
type Type interface {
	Node
	typeNode()
}

// TypeRef is a reference to a named type. The type resolver fills
// ResolvedID or rewrites the reference to an InvalidType.
type TypeRef struct {
	Name       string
	ResolvedID string
	Orig       SourceOrigin
}

func (t *TypeRef) typeNode()            {}
func (t *TypeRef) Origin() SourceOrigin { return t.Orig }
func (t *TypeRef) String() string       { return t.Name }

// TypeFn is a function type.
type TypeFn struct {
	Params []Type
	Return Type
	Orig   SourceOrigin
}

func (t *TypeFn) typeNode()            {}
func (t *TypeFn) Origin() SourceOrigin { return t.Orig }
func (t *TypeFn) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s -> %s)", strings.Join(parts, " -> "), t.Return)
}

// TypeTuple is a tuple type.
type TypeTuple struct {
	Elements []Type
	Orig     SourceOrigin
}

func (t *TypeTuple) typeNode()            {}
func (t *TypeTuple) Origin() SourceOrigin { return t.Orig }
func (t *TypeTuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// TypeStructSpec is an anonymous structural record type.
type TypeStructSpec struct {
	Fields []*Field
	Orig   SourceOrigin
}

func (t *TypeStructSpec) typeNode()            {}
func (t *TypeStructSpec) Origin() SourceOrigin { return t.Orig }
func (t *TypeStructSpec) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

// TypeUnit is the unit type.
type TypeUnit struct {
	Orig SourceOrigin
}

func (t *TypeUnit) typeNode()            {}
func (t *TypeUnit) Origin() SourceOrigin { return t.Orig }
func (t *TypeUnit) String() string       { return "()" }

// NativePrimitive is a type backed directly by an LLVM scalar.
type NativePrimitive struct {
	LLVMType string
	Orig     SourceOrigin
}

func (t *NativePrimitive) typeNode()            {}
func (t *NativePrimitive) Origin() SourceOrigin { return t.Orig }
func (t *NativePrimitive) String() string       { return "@" + t.LLVMType }

// NativeStruct is a type backed by an LLVM aggregate.
type NativeStruct struct {
	Fields []*Field
	Orig   SourceOrigin
}

func (t *NativeStruct) typeNode()            {}
func (t *NativeStruct) Origin() SourceOrigin { return t.Orig }
func (t *NativeStruct) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("@{%s}", strings.Join(parts, ", "))
}

// Union is a union of types.
type Union struct {
	Members []Type
	Orig    SourceOrigin
}

func (t *Union) typeNode()            {}
func (t *Union) Origin() SourceOrigin { return t.Orig }
func (t *Union) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// Intersection is an intersection of types.
type Intersection struct {
	Members []Type
	Orig    SourceOrigin
}

func (t *Intersection) typeNode()            {}
func (t *Intersection) Origin() SourceOrigin { return t.Orig }
func (t *Intersection) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " & ")
}

// TypeApplication applies a type to arguments.
type TypeApplication struct {
	Base Type
	Args []Type
	Orig SourceOrigin
}

func (t *TypeApplication) typeNode()            {}
func (t *TypeApplication) Origin() SourceOrigin { return t.Orig }
func (t *TypeApplication) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", t.Base, strings.Join(parts, ", "))
}

// TypeScheme is a shallow quantified type.
type TypeScheme struct {
	Vars []string
	Body Type
	Orig SourceOrigin
}

func (t *TypeScheme) typeNode()            {}
func (t *TypeScheme) Origin() SourceOrigin { return t.Orig }
func (t *TypeScheme) String() string {
	return fmt.Sprintf("forall %s. %s", strings.Join(t.Vars, " "), t.Body)
}

// InvalidType marks a reference that could not be resolved, preserving the
// original for error reporting.
type InvalidType struct {
	Original Type
	Orig     SourceOrigin
}

func (t *InvalidType) typeNode()            {}
func (t *InvalidType) Origin() SourceOrigin { return t.Orig }
func (t *InvalidType) String() string       { return fmt.Sprintf("!%s", t.Original) }
