package ast

import (
	"encoding/json"
	"fmt"
)

// Kind-tagged JSON exchange form for modules. This is the contract with
// the external parser (input) and the IR emitter and LSP server (output):
// every node is an object with a "kind" field, and a "loc" field that is
// absent on compiler-synthesized nodes.

type wireLoc struct {
	Start SrcPoint `json:"start"`
	End   SrcPoint `json:"end"`
}

type wireMeta struct {
	Origin       string `json:"origin,omitempty"`
	OpKind       string `json:"opKind,omitempty"`
	Arity        int    `json:"arity,omitempty"`
	Precedence   int    `json:"precedence,omitempty"`
	Assoc        string `json:"assoc,omitempty"`
	OriginalName string `json:"originalName,omitempty"`
	MangledName  string `json:"mangledName,omitempty"`
	TypeName     string `json:"typeName,omitempty"`
}

// wire is the superset node: which fields are meaningful depends on kind.
type wire struct {
	Kind       string    `json:"kind"`
	Name       string    `json:"name,omitempty"`
	ID         string    `json:"id,omitempty"`
	Visibility string    `json:"visibility,omitempty"`
	Int        *int64    `json:"int,omitempty"`
	Float      *float64  `json:"float,omitempty"`
	Str        *string   `json:"str,omitempty"`
	Bool       *bool     `json:"bool,omitempty"`
	Members    []*wire   `json:"members,omitempty"`
	Terms      []*wire   `json:"terms,omitempty"`
	Fields     []*wire   `json:"fields,omitempty"`
	Params     []*wire   `json:"params,omitempty"`
	Elements   []*wire   `json:"elements,omitempty"`
	Fn         *wire     `json:"fn,omitempty"`
	Arg        *wire     `json:"arg,omitempty"`
	Body       *wire     `json:"body,omitempty"`
	Cond       *wire     `json:"cond,omitempty"`
	IfTrue     *wire     `json:"ifTrue,omitempty"`
	IfFalse    *wire     `json:"ifFalse,omitempty"`
	Inner      *wire     `json:"inner,omitempty"`
	Qualifier  *wire     `json:"qualifier,omitempty"`
	Type       *wire     `json:"type,omitempty"`
	TypeSpec   *wire     `json:"typeSpec,omitempty"`
	Return     *wire     `json:"return,omitempty"`
	Types      []*wire   `json:"types,omitempty"`
	Base       *wire     `json:"base,omitempty"`
	Args       []*wire   `json:"args,omitempty"`
	Vars       []string  `json:"vars,omitempty"`
	LLVM       string    `json:"llvm,omitempty"`
	MemEffect  string    `json:"memEffect,omitempty"`
	Consuming  bool      `json:"consuming,omitempty"`
	ResolvedID string    `json:"resolvedId,omitempty"`
	Candidates []string  `json:"candidateIds,omitempty"`
	Message    string    `json:"message,omitempty"`
	Found      string    `json:"found,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	TailRec    bool      `json:"tailRecursive,omitempty"`
	Meta       *wireMeta `json:"meta,omitempty"`
	Loc        *wireLoc  `json:"loc,omitempty"`
}

// DecodeModule reads a parser-emitted module.
func DecodeModule(data []byte) (*Module, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.Kind != "module" {
		return nil, fmt.Errorf("expected a module node, got %q", w.Kind)
	}
	m := &Module{
		Name:        w.Name,
		Resolvables: NewResolvablesIndex(),
		Orig:        originIn(w.Loc),
	}
	if w.Visibility == "private" {
		m.Visibility = Private
	}
	for i, mw := range w.Members {
		mb, err := memberIn(mw)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		m.Members = append(m.Members, mb)
	}
	return m, nil
}

// EncodeModule writes the resolved module for the IR emitter.
func EncodeModule(m *Module) ([]byte, error) {
	w := &wire{
		Kind:       "module",
		Name:       m.Name,
		Visibility: m.Visibility.String(),
		Loc:        locOut(m.Orig),
	}
	for _, mb := range m.Members {
		w.Members = append(w.Members, memberOut(mb))
	}
	return json.MarshalIndent(w, "", "  ")
}

func originIn(l *wireLoc) SourceOrigin {
	if l == nil {
		return Synth{}
	}
	return Loc{Start: l.Start, End: l.End}
}

func locOut(o SourceOrigin) *wireLoc {
	l, ok := o.(Loc)
	if !ok {
		return nil
	}
	return &wireLoc{Start: l.Start, End: l.End}
}

func metaIn(w *wireMeta) BindingMeta {
	if w == nil {
		return BindingMeta{}
	}
	m := BindingMeta{
		Arity:        w.Arity,
		Precedence:   w.Precedence,
		OriginalName: w.OriginalName,
		MangledName:  w.MangledName,
		TypeName:     w.TypeName,
	}
	switch w.Origin {
	case "function":
		m.Origin = OriginFunction
	case "operator":
		m.Origin = OriginOperator
	case "constructor":
		m.Origin = OriginConstructor
	case "destructor":
		m.Origin = OriginDestructor
	}
	switch w.OpKind {
	case "binary":
		m.OpKind = OpBinary
	case "prefix":
		m.OpKind = OpPrefix
	case "postfix":
		m.OpKind = OpPostfix
	}
	if w.Assoc == "right" {
		m.Assoc = AssocRight
	}
	return m
}

func metaOut(m BindingMeta) *wireMeta {
	w := &wireMeta{
		Origin:       m.Origin.String(),
		Arity:        m.Arity,
		Precedence:   m.Precedence,
		OriginalName: m.OriginalName,
		MangledName:  m.MangledName,
		TypeName:     m.TypeName,
	}
	switch m.OpKind {
	case OpBinary:
		w.OpKind = "binary"
	case OpPrefix:
		w.OpKind = "prefix"
	case OpPostfix:
		w.OpKind = "postfix"
	}
	if m.Assoc == AssocRight {
		w.Assoc = "right"
	}
	return w
}

func memberIn(w *wire) (Member, error) {
	switch w.Kind {
	case "bnd":
		var body *Expr
		if w.Body != nil {
			t, err := termIn(w.Body)
			if err != nil {
				return nil, err
			}
			e, ok := t.(*Expr)
			if !ok {
				e = &Expr{Terms: []Term{t}, Orig: t.Origin()}
			}
			body = e
		}
		b := &Bnd{
			Name: w.Name,
			ID:   w.ID,
			Body: body,
			Meta: metaIn(w.Meta),
			Orig: originIn(w.Loc),
		}
		if w.Type != nil {
			asc, err := typeIn(w.Type)
			if err != nil {
				return nil, err
			}
			b.TypeAsc = asc
		}
		if w.TypeSpec != nil {
			spec, err := typeIn(w.TypeSpec)
			if err != nil {
				return nil, err
			}
			b.TypeSpec = spec
		}
		return b, nil
	case "typedef":
		td := &TypeDef{Name: w.Name, ID: w.ID, Orig: originIn(w.Loc)}
		if w.Type != nil {
			spec, err := typeIn(w.Type)
			if err != nil {
				return nil, err
			}
			td.Spec = spec
		}
		switch w.MemEffect {
		case "alloc":
			td.MemEffect = MemAlloc
		case "static":
			td.MemEffect = MemStatic
		}
		return td, nil
	case "typealias":
		ref, err := typeIn(w.Type)
		if err != nil {
			return nil, err
		}
		return &TypeAlias{Name: w.Name, ID: w.ID, Ref: ref, Orig: originIn(w.Loc)}, nil
	case "typestruct":
		fields, err := fieldsIn(w.Fields)
		if err != nil {
			return nil, err
		}
		return &TypeStruct{Name: w.Name, ID: w.ID, Fields: fields, Orig: originIn(w.Loc)}, nil
	case "memberError":
		return &ParsingMemberError{Message: w.Message, Orig: originIn(w.Loc)}, nil
	case "idError":
		return &ParsingIdError{Found: w.Found, Message: w.Message, Orig: originIn(w.Loc)}, nil
	default:
		return nil, fmt.Errorf("unknown member kind %q", w.Kind)
	}
}

func memberOut(m Member) *wire {
	switch d := m.(type) {
	case *Bnd:
		w := &wire{
			Kind: "bnd",
			Name: d.Name,
			ID:   d.ID,
			Meta: metaOut(d.Meta),
			Loc:  locOut(d.Orig),
		}
		if d.TypeAsc != nil {
			w.Type = typeOut(d.TypeAsc)
		}
		if d.TypeSpec != nil {
			w.TypeSpec = typeOut(d.TypeSpec)
		}
		if d.Body != nil {
			w.Body = termOut(d.Body)
		}
		return w
	case *TypeDef:
		w := &wire{Kind: "typedef", Name: d.Name, ID: d.ID, Loc: locOut(d.Orig)}
		if d.Spec != nil {
			w.Type = typeOut(d.Spec)
		}
		if d.MemEffect != MemNone {
			w.MemEffect = d.MemEffect.String()
		}
		return w
	case *TypeAlias:
		return &wire{Kind: "typealias", Name: d.Name, ID: d.ID, Type: typeOut(d.Ref), Loc: locOut(d.Orig)}
	case *TypeStruct:
		return &wire{Kind: "typestruct", Name: d.Name, ID: d.ID, Fields: fieldsOut(d.Fields), Loc: locOut(d.Orig)}
	case *ParsingMemberError:
		return &wire{Kind: "memberError", Message: d.Message, Loc: locOut(d.Orig)}
	case *ParsingIdError:
		return &wire{Kind: "idError", Found: d.Found, Message: d.Message, Loc: locOut(d.Orig)}
	case *DuplicateMember:
		return &wire{Kind: "duplicateMember", Name: d.Name, Loc: locOut(d.Orig)}
	case *InvalidMember:
		return &wire{Kind: "invalidMember", Reason: d.Reason, Loc: locOut(d.Orig)}
	default:
		return &wire{Kind: "unknown"}
	}
}

func fieldsIn(ws []*wire) ([]*Field, error) {
	var out []*Field
	for _, fw := range ws {
		ft, err := typeIn(fw.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, &Field{Name: fw.Name, ID: fw.ID, Type: ft, Orig: originIn(fw.Loc)})
	}
	return out, nil
}

func fieldsOut(fields []*Field) []*wire {
	var out []*wire
	for _, f := range fields {
		out = append(out, &wire{Kind: "field", Name: f.Name, ID: f.ID, Type: typeOut(f.Type), Loc: locOut(f.Orig)})
	}
	return out
}

func paramsIn(ws []*wire) ([]*FnParam, error) {
	var out []*FnParam
	for _, pw := range ws {
		p := &FnParam{Name: pw.Name, ID: pw.ID, Consuming: pw.Consuming, Orig: originIn(pw.Loc)}
		if pw.Type != nil {
			asc, err := typeIn(pw.Type)
			if err != nil {
				return nil, err
			}
			p.TypeAsc = asc
		}
		if pw.TypeSpec != nil {
			spec, err := typeIn(pw.TypeSpec)
			if err != nil {
				return nil, err
			}
			p.TypeSpec = spec
		}
		out = append(out, p)
	}
	return out, nil
}

func paramsOut(params []*FnParam) []*wire {
	var out []*wire
	for _, p := range params {
		pw := &wire{Kind: "param", Name: p.Name, ID: p.ID, Consuming: p.Consuming, Loc: locOut(p.Orig)}
		if p.TypeAsc != nil {
			pw.Type = typeOut(p.TypeAsc)
		}
		if p.TypeSpec != nil {
			pw.TypeSpec = typeOut(p.TypeSpec)
		}
		out = append(out, pw)
	}
	return out
}

func termsIn(ws []*wire) ([]Term, error) {
	var out []Term
	for _, tw := range ws {
		t, err := termIn(tw)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func exprIn(w *wire) (*Expr, error) {
	if w == nil {
		return nil, nil
	}
	t, err := termIn(w)
	if err != nil {
		return nil, err
	}
	if e, ok := t.(*Expr); ok {
		return e, nil
	}
	return &Expr{Terms: []Term{t}, Orig: t.Origin()}, nil
}

func termIn(w *wire) (Term, error) {
	orig := originIn(w.Loc)
	switch w.Kind {
	case "expr":
		terms, err := termsIn(w.Terms)
		if err != nil {
			return nil, err
		}
		return &Expr{Terms: terms, Orig: orig}, nil
	case "int":
		var v int64
		if w.Int != nil {
			v = *w.Int
		}
		return &LiteralInt{Value: v, Orig: orig}, nil
	case "float":
		var v float64
		if w.Float != nil {
			v = *w.Float
		}
		return &LiteralFloat{Value: v, Orig: orig}, nil
	case "string":
		var v string
		if w.Str != nil {
			v = *w.Str
		}
		return &LiteralString{Value: v, Orig: orig}, nil
	case "bool":
		var v bool
		if w.Bool != nil {
			v = *w.Bool
		}
		return &LiteralBool{Value: v, Orig: orig}, nil
	case "unit":
		return &LiteralUnit{Orig: orig}, nil
	case "ref":
		r := &Ref{Name: w.Name, ResolvedID: w.ResolvedID, CandidateIDs: w.Candidates, Orig: orig}
		if w.Qualifier != nil {
			q, err := termIn(w.Qualifier)
			if err != nil {
				return nil, err
			}
			qr, ok := q.(*Ref)
			if !ok {
				return nil, fmt.Errorf("qualifier of %s is not a reference", w.Name)
			}
			r.Qualifier = qr
		}
		return r, nil
	case "app":
		fn, err := termIn(w.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := termIn(w.Arg)
		if err != nil {
			return nil, err
		}
		return &App{Fn: fn, Arg: arg, Orig: orig}, nil
	case "lambda":
		params, err := paramsIn(w.Params)
		if err != nil {
			return nil, err
		}
		body, err := exprIn(w.Body)
		if err != nil {
			return nil, err
		}
		return &Lambda{Params: params, Body: body, Meta: LambdaMeta{IsTailRecursive: w.TailRec}, Orig: orig}, nil
	case "cond":
		cond, err := exprIn(w.Cond)
		if err != nil {
			return nil, err
		}
		ifTrue, err := exprIn(w.IfTrue)
		if err != nil {
			return nil, err
		}
		ifFalse, err := exprIn(w.IfFalse)
		if err != nil {
			return nil, err
		}
		return &Cond{Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse, Orig: orig}, nil
	case "group":
		inner, err := exprIn(w.Inner)
		if err != nil {
			return nil, err
		}
		return &TermGroup{Inner: inner, Orig: orig}, nil
	case "tuple":
		elems, err := termsIn(w.Elements)
		if err != nil {
			return nil, err
		}
		return &Tuple{Elements: elems, Orig: orig}, nil
	case "native":
		n := &NativeImpl{Orig: orig}
		switch w.MemEffect {
		case "alloc":
			n.MemEffect = MemAlloc
		case "static":
			n.MemEffect = MemStatic
		}
		return n, nil
	case "construct":
		t, err := typeIn(w.Type)
		if err != nil {
			return nil, err
		}
		ref, ok := t.(*TypeRef)
		if !ok {
			return nil, fmt.Errorf("constructor type is not a reference")
		}
		return &DataConstructor{TypeRef: ref, Orig: orig}, nil
	case "hole":
		return &Hole{Orig: orig}, nil
	case "placeholder":
		return &Placeholder{Orig: orig}, nil
	case "invalidExpr":
		return &InvalidExpression{Reason: w.Reason, Orig: orig}, nil
	case "termError":
		terms, err := termsIn(w.Terms)
		if err != nil {
			return nil, err
		}
		return &TermError{Terms: terms, Reason: w.Reason, Orig: orig}, nil
	default:
		return nil, fmt.Errorf("unknown term kind %q", w.Kind)
	}
}

func exprOut(e *Expr) *wire {
	if e == nil {
		return nil
	}
	return termOut(e)
}

func termOut(t Term) *wire {
	switch n := t.(type) {
	case *Expr:
		w := &wire{Kind: "expr", Loc: locOut(n.Orig)}
		for _, inner := range n.Terms {
			w.Terms = append(w.Terms, termOut(inner))
		}
		return w
	case *LiteralInt:
		v := n.Value
		return &wire{Kind: "int", Int: &v, Loc: locOut(n.Orig)}
	case *LiteralFloat:
		v := n.Value
		return &wire{Kind: "float", Float: &v, Loc: locOut(n.Orig)}
	case *LiteralString:
		v := n.Value
		return &wire{Kind: "string", Str: &v, Loc: locOut(n.Orig)}
	case *LiteralBool:
		v := n.Value
		return &wire{Kind: "bool", Bool: &v, Loc: locOut(n.Orig)}
	case *LiteralUnit:
		return &wire{Kind: "unit", Loc: locOut(n.Orig)}
	case *Ref:
		w := &wire{Kind: "ref", Name: n.Name, ResolvedID: n.ResolvedID, Candidates: n.CandidateIDs, Loc: locOut(n.Orig)}
		if n.Qualifier != nil {
			w.Qualifier = termOut(n.Qualifier)
		}
		return w
	case *App:
		return &wire{Kind: "app", Fn: termOut(n.Fn), Arg: termOut(n.Arg), Loc: locOut(n.Orig)}
	case *Lambda:
		return &wire{
			Kind:    "lambda",
			Params:  paramsOut(n.Params),
			Body:    exprOut(n.Body),
			TailRec: n.Meta.IsTailRecursive,
			Loc:     locOut(n.Orig),
		}
	case *Cond:
		return &wire{
			Kind:    "cond",
			Cond:    exprOut(n.Cond),
			IfTrue:  exprOut(n.IfTrue),
			IfFalse: exprOut(n.IfFalse),
			Loc:     locOut(n.Orig),
		}
	case *TermGroup:
		return &wire{Kind: "group", Inner: exprOut(n.Inner), Loc: locOut(n.Orig)}
	case *Tuple:
		w := &wire{Kind: "tuple", Loc: locOut(n.Orig)}
		for _, e := range n.Elements {
			w.Elements = append(w.Elements, termOut(e))
		}
		return w
	case *NativeImpl:
		w := &wire{Kind: "native", Loc: locOut(n.Orig)}
		if n.MemEffect != MemNone {
			w.MemEffect = n.MemEffect.String()
		}
		return w
	case *DataConstructor:
		return &wire{Kind: "construct", Type: typeOut(n.TypeRef), Loc: locOut(n.Orig)}
	case *Hole:
		return &wire{Kind: "hole", Loc: locOut(n.Orig)}
	case *Placeholder:
		return &wire{Kind: "placeholder", Loc: locOut(n.Orig)}
	case *InvalidExpression:
		return &wire{Kind: "invalidExpr", Reason: n.Reason, Loc: locOut(n.Orig)}
	case *TermError:
		w := &wire{Kind: "termError", Reason: n.Reason, Loc: locOut(n.Orig)}
		for _, inner := range n.Terms {
			w.Terms = append(w.Terms, termOut(inner))
		}
		return w
	default:
		return &wire{Kind: "unknown"}
	}
}

func typesIn(ws []*wire) ([]Type, error) {
	var out []Type
	for _, tw := range ws {
		t, err := typeIn(tw)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func typeIn(w *wire) (Type, error) {
	if w == nil {
		return nil, fmt.Errorf("missing type node")
	}
	orig := originIn(w.Loc)
	switch w.Kind {
	case "typeRef":
		return &TypeRef{Name: w.Name, ResolvedID: w.ResolvedID, Orig: orig}, nil
	case "typeFn":
		params, err := typesIn(w.Types)
		if err != nil {
			return nil, err
		}
		ret, err := typeIn(w.Return)
		if err != nil {
			return nil, err
		}
		return &TypeFn{Params: params, Return: ret, Orig: orig}, nil
	case "typeTuple":
		elems, err := typesIn(w.Types)
		if err != nil {
			return nil, err
		}
		return &TypeTuple{Elements: elems, Orig: orig}, nil
	case "typeStructSpec":
		fields, err := fieldsIn(w.Fields)
		if err != nil {
			return nil, err
		}
		return &TypeStructSpec{Fields: fields, Orig: orig}, nil
	case "typeUnit":
		return &TypeUnit{Orig: orig}, nil
	case "nativePrimitive":
		return &NativePrimitive{LLVMType: w.LLVM, Orig: orig}, nil
	case "nativeStruct":
		fields, err := fieldsIn(w.Fields)
		if err != nil {
			return nil, err
		}
		return &NativeStruct{Fields: fields, Orig: orig}, nil
	case "union":
		members, err := typesIn(w.Types)
		if err != nil {
			return nil, err
		}
		return &Union{Members: members, Orig: orig}, nil
	case "intersection":
		members, err := typesIn(w.Types)
		if err != nil {
			return nil, err
		}
		return &Intersection{Members: members, Orig: orig}, nil
	case "typeApply":
		base, err := typeIn(w.Base)
		if err != nil {
			return nil, err
		}
		args, err := typesIn(w.Args)
		if err != nil {
			return nil, err
		}
		return &TypeApplication{Base: base, Args: args, Orig: orig}, nil
	case "typeScheme":
		body, err := typeIn(w.Base)
		if err != nil {
			return nil, err
		}
		return &TypeScheme{Vars: w.Vars, Body: body, Orig: orig}, nil
	case "invalidType":
		inner, err := typeIn(w.Type)
		if err != nil {
			return nil, err
		}
		return &InvalidType{Original: inner, Orig: orig}, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", w.Kind)
	}
}

func typeOut(t Type) *wire {
	switch n := t.(type) {
	case *TypeRef:
		return &wire{Kind: "typeRef", Name: n.Name, ResolvedID: n.ResolvedID, Loc: locOut(n.Orig)}
	case *TypeFn:
		w := &wire{Kind: "typeFn", Return: typeOut(n.Return), Loc: locOut(n.Orig)}
		for _, p := range n.Params {
			w.Types = append(w.Types, typeOut(p))
		}
		return w
	case *TypeTuple:
		w := &wire{Kind: "typeTuple", Loc: locOut(n.Orig)}
		for _, e := range n.Elements {
			w.Types = append(w.Types, typeOut(e))
		}
		return w
	case *TypeStructSpec:
		return &wire{Kind: "typeStructSpec", Fields: fieldsOut(n.Fields), Loc: locOut(n.Orig)}
	case *TypeUnit:
		return &wire{Kind: "typeUnit", Loc: locOut(n.Orig)}
	case *NativePrimitive:
		return &wire{Kind: "nativePrimitive", LLVM: n.LLVMType, Loc: locOut(n.Orig)}
	case *NativeStruct:
		return &wire{Kind: "nativeStruct", Fields: fieldsOut(n.Fields), Loc: locOut(n.Orig)}
	case *Union:
		w := &wire{Kind: "union", Loc: locOut(n.Orig)}
		for _, m := range n.Members {
			w.Types = append(w.Types, typeOut(m))
		}
		return w
	case *Intersection:
		w := &wire{Kind: "intersection", Loc: locOut(n.Orig)}
		for _, m := range n.Members {
			w.Types = append(w.Types, typeOut(m))
		}
		return w
	case *TypeApplication:
		w := &wire{Kind: "typeApply", Base: typeOut(n.Base), Loc: locOut(n.Orig)}
		for _, a := range n.Args {
			w.Args = append(w.Args, typeOut(a))
		}
		return w
	case *TypeScheme:
		return &wire{Kind: "typeScheme", Vars: n.Vars, Base: typeOut(n.Body), Loc: locOut(n.Orig)}
	case *InvalidType:
		return &wire{Kind: "invalidType", Type: typeOut(n.Original), Loc: locOut(n.Orig)}
	case nil:
		return nil
	default:
		return &wire{Kind: "unknown"}
	}
}
