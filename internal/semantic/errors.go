package semantic

import (
	"fmt"

	"github.com/fedesilva/minnieml/internal/ast"
	mmlerr "github.com/fedesilva/minnieml/internal/errors"
)

// Kind enumerates the semantic error conditions.
type Kind int

const (
	MemberErrorFound Kind = iota
	ParsingIdErrorFound
	InvalidExpressionFound
	DuplicateName
	DuplicateParams
	UndefinedRef
	UndefinedTypeRef
	AmbiguousRef
	AmbiguousTypeRef
	DanglingTerms
	InvalidExpr
	MissingParameterType
	MissingOperatorParameterType
	TypeMismatch
	InvalidApplication
	UnresolvableType
	UntypedHoleInBinding
	ConditionalBranchTypeMismatch
	ConditionalBranchTypeUnknown
	UseAfterMove
	ConsumingParamNotLastUse
	PartialApplicationWithConsuming
	ConditionalOwnershipMismatch
	MoveOfBorrowed
	InvalidEntryPoint
)

// codeOf maps error kinds to report codes.
var codeOf = map[Kind]string{
	MemberErrorFound:                mmlerr.PRS001,
	ParsingIdErrorFound:             mmlerr.PRS002,
	InvalidExpressionFound:          mmlerr.PRS003,
	DuplicateName:                   mmlerr.SEM001,
	DuplicateParams:                 mmlerr.SEM008,
	UndefinedRef:                    mmlerr.SEM002,
	UndefinedTypeRef:                mmlerr.SEM003,
	AmbiguousRef:                    mmlerr.SEM005,
	AmbiguousTypeRef:                mmlerr.SEM004,
	DanglingTerms:                   mmlerr.SEM006,
	InvalidExpr:                     mmlerr.SEM007,
	MissingParameterType:            mmlerr.TYP004,
	MissingOperatorParameterType:    mmlerr.TYP004,
	TypeMismatch:                    mmlerr.TYP001,
	InvalidApplication:              mmlerr.TYP002,
	UnresolvableType:                mmlerr.TYP003,
	UntypedHoleInBinding:            mmlerr.TYP007,
	ConditionalBranchTypeMismatch:   mmlerr.TYP005,
	ConditionalBranchTypeUnknown:    mmlerr.TYP006,
	UseAfterMove:                    mmlerr.OWN001,
	ConsumingParamNotLastUse:        mmlerr.OWN002,
	PartialApplicationWithConsuming: mmlerr.OWN003,
	ConditionalOwnershipMismatch:    mmlerr.OWN004,
	MoveOfBorrowed:                  mmlerr.OWN005,
	InvalidEntryPoint:               mmlerr.GEN001,
}

// Error is a semantic phase error. Name is the offending identifier when
// one exists. Cause links a downstream consequence back to its root:
// errors with a nil Cause are primary.
type Error struct {
	Kind    Kind
	Phase   string
	Message string
	Name    string
	Orig    ast.SourceOrigin
	Cause   *Error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code(), e.Message)
}

// Code returns the report code for the error kind.
func (e *Error) Code() string { return codeOf[e.Kind] }

// Primary reports whether the error is a root cause rather than a
// downstream consequence.
func (e *Error) Primary() bool { return e.Cause == nil }

// Report converts the error to its serializable form.
func (e *Error) Report() *mmlerr.Report {
	r := mmlerr.New(e.Phase, e.Code(), e.Message)
	if e.Orig != nil {
		r = r.WithSpan(e.Orig)
	}
	if e.Name != "" {
		r = r.WithData("name", e.Name)
	}
	r.Secondary = !e.Primary()
	return r
}

// errf builds a phase error.
func errf(phase string, kind Kind, orig ast.SourceOrigin, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Phase:   phase,
		Message: fmt.Sprintf(format, args...),
		Orig:    orig,
	}
}

// namedErrf builds a phase error carrying the offending name.
func namedErrf(phase string, kind Kind, name string, orig ast.SourceOrigin, format string, args ...any) *Error {
	e := errf(phase, kind, orig, format, args...)
	e.Name = name
	return e
}

// secondary marks an error as a consequence of an earlier one.
func secondary(e, cause *Error) *Error {
	e.Cause = cause
	return e
}
