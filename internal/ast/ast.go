// Package ast defines the MinnieML abstract syntax tree shared by every
// semantic phase: the module container, declaration members, terms, types
// and the resolvables index. Phases update nodes in place (ids, computed
// types, rewritten bodies) and build new nodes only where a rewrite
// changes a node's shape; nodes are not copied between phases.
package ast

import (
	"fmt"
	"strings"
)

// Node is the base interface for all AST nodes.
type Node interface {
	String() string
	Origin() SourceOrigin
}

// Visibility of a module or member.
type Visibility int

const (
	Public Visibility = iota
	Private
)

func (v Visibility) String() string {
	if v == Private {
		return "private"
	}
	return "public"
}

// Module is the top-level container: a named, ordered list of members plus
// the resolvables index maintained by the semantic phases.
type Module struct {
	Name        string
	Visibility  Visibility
	Members     []Member
	Resolvables *ResolvablesIndex
	Orig        SourceOrigin
}

func (m *Module) Origin() SourceOrigin { return m.Orig }
func (m *Module) String() string {
	parts := make([]string, 0, len(m.Members))
	for _, mb := range m.Members {
		parts = append(parts, mb.String())
	}
	return fmt.Sprintf("module %s\n%s", m.Name, strings.Join(parts, "\n"))
}

// Member is a top-level declaration or a parser/compiler-produced error
// placeholder standing in for one.
type Member interface {
	Node
	memberNode()
}

// Resolvable is any declaration the reference resolver can target: it has
// a name and a stable id.
type Resolvable interface {
	Node
	ResolvableName() string
	ResolvableID() string
}

// BindingOrigin records how a binding came to exist.
type BindingOrigin int

const (
	OriginUser BindingOrigin = iota
	OriginFunction
	OriginOperator
	OriginConstructor
	OriginDestructor
)

func (o BindingOrigin) String() string {
	switch o {
	case OriginFunction:
		return "function"
	case OriginOperator:
		return "operator"
	case OriginConstructor:
		return "constructor"
	case OriginDestructor:
		return "destructor"
	default:
		return "user"
	}
}

// OpKind distinguishes operator bindings for duplicate grouping and for
// the expression rewriter.
type OpKind int

const (
	OpNone OpKind = iota
	OpBinary
	OpPrefix
	OpPostfix
)

// Assoc is operator associativity.
type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
)

// BindingMeta carries the non-structural facts about a binding: where it
// came from, its arity, and, for operators, precedence and associativity.
type BindingMeta struct {
	Origin       BindingOrigin
	OpKind       OpKind
	Arity        int
	Precedence   int
	Assoc        Assoc
	OriginalName string
	MangledName  string
	// TypeName is set on constructors, destructors and clone functions to
	// the struct or typedef they were generated for.
	TypeName string
}

// Bnd is a named value whose body is an expression. Functions and
// operators are bindings whose body's first term is a Lambda.
type Bnd struct {
	Name string
	ID   string
	// TypeAsc is the declared return type, when present.
	TypeAsc Type
	// TypeSpec is the computed type of the binding, filled by the checker.
	TypeSpec Type
	Body     *Expr
	Meta     BindingMeta
	Orig     SourceOrigin
}

func (b *Bnd) memberNode()            {}
func (b *Bnd) Origin() SourceOrigin   { return b.Orig }
func (b *Bnd) ResolvableName() string { return b.Name }
func (b *Bnd) ResolvableID() string   { return b.ID }
func (b *Bnd) String() string {
	return fmt.Sprintf("(bnd %s %s)", b.Name, b.Body)
}

// IsFunction reports whether the binding's body begins with a lambda.
func (b *Bnd) IsFunction() bool {
	return b.BodyLambda() != nil
}

// BodyLambda returns the leading lambda of the body, or nil.
func (b *Bnd) BodyLambda() *Lambda {
	if b.Body == nil || len(b.Body.Terms) == 0 {
		return nil
	}
	l, _ := b.Body.Terms[0].(*Lambda)
	return l
}

// MemEffect declares whether values of a type may be heap-allocated.
type MemEffect int

const (
	MemNone MemEffect = iota
	MemAlloc
	MemStatic
)

func (m MemEffect) String() string {
	switch m {
	case MemAlloc:
		return "alloc"
	case MemStatic:
		return "static"
	default:
		return "none"
	}
}

// TypeDef is an opaque or native-backed type declaration.
type TypeDef struct {
	Name      string
	ID        string
	Spec      Type // native representation, when backed
	MemEffect MemEffect
	Orig      SourceOrigin
}

func (t *TypeDef) memberNode()            {}
func (t *TypeDef) Origin() SourceOrigin   { return t.Orig }
func (t *TypeDef) ResolvableName() string { return t.Name }
func (t *TypeDef) ResolvableID() string   { return t.ID }
func (t *TypeDef) String() string {
	if t.Spec != nil {
		return fmt.Sprintf("(typedef %s %s)", t.Name, t.Spec)
	}
	return fmt.Sprintf("(typedef %s)", t.Name)
}

// TypeAlias is a name pointing at another type. Ref is the raw reference as
// written; TypeSpec is the canonical form computed by the type resolver.
type TypeAlias struct {
	Name     string
	ID       string
	Ref      Type
	TypeSpec Type
	Orig     SourceOrigin
}

func (t *TypeAlias) memberNode()            {}
func (t *TypeAlias) Origin() SourceOrigin   { return t.Orig }
func (t *TypeAlias) ResolvableName() string { return t.Name }
func (t *TypeAlias) ResolvableID() string   { return t.ID }
func (t *TypeAlias) String() string {
	return fmt.Sprintf("(typealias %s %s)", t.Name, t.Ref)
}

// TypeStruct is a named record type with ordered fields.
type TypeStruct struct {
	Name   string
	ID     string
	Fields []*Field
	Orig   SourceOrigin
}

// Field is a single struct field. It carries its own stable id so that
// qualified references can resolve to it.
type Field struct {
	Name string
	ID   string
	Type Type
	Orig SourceOrigin
}

func (f *Field) Origin() SourceOrigin   { return f.Orig }
func (f *Field) String() string         { return fmt.Sprintf("%s: %s", f.Name, f.Type) }
func (f *Field) ResolvableName() string { return f.Name }
func (f *Field) ResolvableID() string   { return f.ID }

func (t *TypeStruct) memberNode()            {}
func (t *TypeStruct) Origin() SourceOrigin   { return t.Orig }
func (t *TypeStruct) ResolvableName() string { return t.Name }
func (t *TypeStruct) ResolvableID() string   { return t.ID }
func (t *TypeStruct) String() string {
	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = f.String()
	}
	return fmt.Sprintf("(typestruct %s {%s})", t.Name, strings.Join(fields, ", "))
}

// FieldNamed returns the field with the given name, or nil.
func (t *TypeStruct) FieldNamed(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FnParam is a formal parameter of a lambda. The ascription is required on
// user functions; TypeSpec is propagated from it during checking.
// Consuming is true when the parameter was declared with the move sigil.
type FnParam struct {
	Name      string
	ID        string
	TypeAsc   Type
	TypeSpec  Type
	Consuming bool
	Orig      SourceOrigin
}

func (p *FnParam) Origin() SourceOrigin   { return p.Orig }
func (p *FnParam) ResolvableName() string { return p.Name }
func (p *FnParam) ResolvableID() string   { return p.ID }
func (p *FnParam) String() string {
	sigil := ""
	if p.Consuming {
		sigil = "~"
	}
	if p.TypeAsc != nil {
		return fmt.Sprintf("%s%s: %s", sigil, p.Name, p.TypeAsc)
	}
	return sigil + p.Name
}

// Error placeholder members. They are produced by the parser or by the
// duplicate-name check and carried through the pipeline so downstream
// phases always have a well-formed tree to walk.

// ParsingMemberError marks a member-level parse failure.
type ParsingMemberError struct {
	Message string
	Orig    SourceOrigin
}

func (e *ParsingMemberError) memberNode()          {}
func (e *ParsingMemberError) Origin() SourceOrigin { return e.Orig }
func (e *ParsingMemberError) String() string {
	return fmt.Sprintf("(member-error %q)", e.Message)
}

// ParsingIdError marks an unparsable identifier at member position.
type ParsingIdError struct {
	Found   string
	Message string
	Orig    SourceOrigin
}

func (e *ParsingIdError) memberNode()          {}
func (e *ParsingIdError) Origin() SourceOrigin { return e.Orig }
func (e *ParsingIdError) String() string {
	return fmt.Sprintf("(id-error %q %q)", e.Found, e.Message)
}

// DuplicateMember replaces every duplicate declaration after the first,
// pointing back at the member it collided with.
type DuplicateMember struct {
	Name     string
	Dup      Member
	Original Member
	Orig     SourceOrigin
}

func (d *DuplicateMember) memberNode()          {}
func (d *DuplicateMember) Origin() SourceOrigin { return d.Orig }
func (d *DuplicateMember) String() string {
	return fmt.Sprintf("(duplicate %s)", d.Name)
}

// InvalidMember wraps a declaration that is structurally broken beyond
// per-node repair, preserving the original for reporting.
type InvalidMember struct {
	Inner  Member
	Reason string
	Orig   SourceOrigin
}

func (i *InvalidMember) memberNode()          {}
func (i *InvalidMember) Origin() SourceOrigin { return i.Orig }
func (i *InvalidMember) String() string {
	return fmt.Sprintf("(invalid-member %s)", i.Inner)
}
