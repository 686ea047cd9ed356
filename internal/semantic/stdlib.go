package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// Stdlib ids follow the form stdlib::<segment>::<name>.
const (
	stdlibTypes = "stdlib::types::"
	stdlibOps   = "stdlib::ops::"
	stdlibMem   = "stdlib::mem::"
	stdlibIO    = "stdlib::io::"
	stdlibConv  = "stdlib::conv::"
)

// Operator precedence levels. Higher binds tighter.
const (
	PrecOr         = 30
	PrecAnd        = 40
	PrecComparison = 50
	PrecAdditive   = 60
	PrecProduct    = 80
	PrecPower      = 90
	PrecPrefix     = 95

	// MinPrecedence is the floor the expression rewriter climbs from.
	MinPrecedence = 0
)

// StdlibInjector prepends the built-in operators, base types and memory
// functions to the module.
type StdlibInjector struct{}

func (StdlibInjector) Name() string { return "stdlib-injection" }

func (p StdlibInjector) Process(s State) State {
	members := Stdlib()
	s.Module.Members = append(members, s.Module.Members...)
	ix := s.Index()
	for _, m := range members {
		switch d := m.(type) {
		case *ast.Bnd:
			ix.Updated(d)
			if l := d.BodyLambda(); l != nil {
				ix.UpdatedAll(l.Params)
			}
		case *ast.TypeDef:
			ix.UpdatedType(d)
		}
	}
	return s
}

// StdlibTypeRef returns a reference to a built-in type, pre-resolved.
func StdlibTypeRef(name string) *ast.TypeRef {
	return &ast.TypeRef{Name: name, ResolvedID: stdlibTypes + name, Orig: ast.Synth{}}
}

// heapNatives are the built-in types whose values live on the heap.
var heapNatives = []string{"String", "Buffer", "IntArray", "StringArray"}

// Stdlib builds the injected member list. The result is fresh on every
// call so pipelines never share node identity.
func Stdlib() []ast.Member {
	var members []ast.Member

	members = append(members,
		nativeType("Int", "i64", ast.MemNone),
		nativeType("Float", "double", ast.MemNone),
		nativeType("Bool", "i1", ast.MemNone),
		nativeType("Unit", "void", ast.MemNone),
		nativeType("String", "ptr", ast.MemAlloc),
		nativeType("Buffer", "ptr", ast.MemAlloc),
		nativeType("IntArray", "ptr", ast.MemAlloc),
		nativeType("StringArray", "ptr", ast.MemAlloc),
	)

	intT := func() *ast.TypeRef { return StdlibTypeRef("Int") }
	boolT := func() *ast.TypeRef { return StdlibTypeRef("Bool") }

	members = append(members,
		binOp("^", "pow", PrecPower, ast.AssocRight, intT(), intT()),
		binOp("*", "times", PrecProduct, ast.AssocLeft, intT(), intT()),
		binOp("/", "div", PrecProduct, ast.AssocLeft, intT(), intT()),
		binOp("+", "plus", PrecAdditive, ast.AssocLeft, intT(), intT()),
		binOp("-", "minus", PrecAdditive, ast.AssocLeft, intT(), intT()),
		binOp("==", "eq", PrecComparison, ast.AssocLeft, intT(), boolT()),
		binOp("!=", "neq", PrecComparison, ast.AssocLeft, intT(), boolT()),
		binOp("<", "lt", PrecComparison, ast.AssocLeft, intT(), boolT()),
		binOp(">", "gt", PrecComparison, ast.AssocLeft, intT(), boolT()),
		binOp("<=", "lte", PrecComparison, ast.AssocLeft, intT(), boolT()),
		binOp(">=", "gte", PrecComparison, ast.AssocLeft, intT(), boolT()),
		binOp("and", "and", PrecAnd, ast.AssocLeft, boolT(), boolT()),
		binOp("or", "or", PrecOr, ast.AssocLeft, boolT(), boolT()),
		prefixOp("-", "neg", intT(), intT()),
		prefixOp("+", "pos", intT(), intT()),
		prefixOp("not", "not", boolT(), boolT()),
	)

	for _, t := range heapNatives {
		members = append(members, freeBinding(t), cloneBinding(t))
	}

	members = append(members,
		nativeFn(stdlibConv, "to_string", param("n", StdlibTypeRef("Int"), false), StdlibTypeRef("String"), ast.MemAlloc),
		nativeFn(stdlibConv, "to_int", param("s", StdlibTypeRef("String"), false), StdlibTypeRef("Int"), ast.MemNone),
		nativeFn(stdlibIO, "println", param("s", StdlibTypeRef("String"), false), StdlibTypeRef("Unit"), ast.MemNone),
		nativeFn(stdlibIO, "print", param("s", StdlibTypeRef("String"), false), StdlibTypeRef("Unit"), ast.MemNone),
	)

	return members
}

func nativeType(name, llvm string, eff ast.MemEffect) *ast.TypeDef {
	return &ast.TypeDef{
		Name:      name,
		ID:        stdlibTypes + name,
		Spec:      &ast.NativePrimitive{LLVMType: llvm, Orig: ast.Synth{}},
		MemEffect: eff,
		Orig:      ast.Synth{},
	}
}

func param(name string, asc ast.Type, consuming bool) *ast.FnParam {
	return &ast.FnParam{
		Name:      name,
		TypeAsc:   asc,
		Consuming: consuming,
		Orig:      ast.Synth{},
	}
}

func nativeBody(params []*ast.FnParam, eff ast.MemEffect) *ast.Expr {
	return &ast.Expr{
		Terms: []ast.Term{
			&ast.Lambda{
				Params: params,
				Body: &ast.Expr{
					Terms: []ast.Term{&ast.NativeImpl{MemEffect: eff, Orig: ast.Synth{}}},
					Orig:  ast.Synth{},
				},
				Orig: ast.Synth{},
			},
		},
		Orig: ast.Synth{},
	}
}

func opBinding(name, mangled string, kind ast.OpKind, prec int, assoc ast.Assoc, operand, result ast.Type, arity int) *ast.Bnd {
	params := make([]*ast.FnParam, arity)
	names := []string{"a", "b"}
	for i := range params {
		params[i] = param(names[i], operand, false)
		params[i].ID = stdlibOps + mangled + "::" + names[i]
	}
	paramTypes := make([]ast.Type, arity)
	for i := range paramTypes {
		paramTypes[i] = operand
	}
	return &ast.Bnd{
		Name:    name,
		ID:      stdlibOps + mangled,
		TypeAsc: result,
		Body:    nativeBody(params, ast.MemNone),
		Meta: ast.BindingMeta{
			Origin:       ast.OriginOperator,
			OpKind:       kind,
			Arity:        arity,
			Precedence:   prec,
			Assoc:        assoc,
			OriginalName: name,
			MangledName:  mangled,
		},
		Orig: ast.Synth{},
	}
}

func binOp(name, mangled string, prec int, assoc ast.Assoc, operand, result ast.Type) *ast.Bnd {
	return opBinding(name, mangled, ast.OpBinary, prec, assoc, operand, result, 2)
}

func prefixOp(name, mangled string, operand, result ast.Type) *ast.Bnd {
	return opBinding(name, mangled, ast.OpPrefix, PrecPrefix, ast.AssocRight, operand, result, 1)
}

// FreeName returns the destructor name for a type.
func FreeName(typeName string) string { return "__free_" + typeName }

// CloneName returns the clone-function name for a type.
func CloneName(typeName string) string { return "__clone_" + typeName }

// MkName returns the constructor name for a type.
func MkName(typeName string) string { return "__mk_" + typeName }

func freeBinding(typeName string) *ast.Bnd {
	name := FreeName(typeName)
	p := param("s", StdlibTypeRef(typeName), true)
	p.ID = stdlibMem + name + "::s"
	return &ast.Bnd{
		Name:    name,
		ID:      stdlibMem + name,
		TypeAsc: StdlibTypeRef("Unit"),
		Body:    nativeBody([]*ast.FnParam{p}, ast.MemNone),
		Meta: ast.BindingMeta{
			Origin:       ast.OriginDestructor,
			Arity:        1,
			OriginalName: name,
			MangledName:  name,
			TypeName:     typeName,
		},
		Orig: ast.Synth{},
	}
}

func cloneBinding(typeName string) *ast.Bnd {
	name := CloneName(typeName)
	p := param("s", StdlibTypeRef(typeName), false)
	p.ID = stdlibMem + name + "::s"
	return &ast.Bnd{
		Name:    name,
		ID:      stdlibMem + name,
		TypeAsc: StdlibTypeRef(typeName),
		Body:    nativeBody([]*ast.FnParam{p}, ast.MemAlloc),
		Meta: ast.BindingMeta{
			Origin:       ast.OriginFunction,
			Arity:        1,
			OriginalName: name,
			MangledName:  name,
			TypeName:     typeName,
		},
		Orig: ast.Synth{},
	}
}

func nativeFn(segment, name string, p *ast.FnParam, ret ast.Type, eff ast.MemEffect) *ast.Bnd {
	p.ID = segment + name + "::" + p.Name
	return &ast.Bnd{
		Name:    name,
		ID:      segment + name,
		TypeAsc: ret,
		Body:    nativeBody([]*ast.FnParam{p}, eff),
		Meta: ast.BindingMeta{
			Origin:       ast.OriginFunction,
			Arity:        1,
			OriginalName: name,
			MangledName:  name,
		},
		Orig: ast.Synth{},
	}
}
