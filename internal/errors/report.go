// Package errors provides the structured error reports the compiler
// surfaces to drivers and tooling. Semantic phases produce their own
// richer error values; this package is the stable, serializable form.
package errors

import (
	"encoding/json"
	"errors"

	"github.com/fedesilva/minnieml/internal/ast"
)

// SchemaV1 tags every report with the wire schema it follows.
const SchemaV1 = "mml.error/v1"

// Report is the canonical structured error type for MML.
type Report struct {
	Schema    string         `json:"schema"`
	Code      string         `json:"code"`
	Phase     string         `json:"phase"`
	Message   string         `json:"message"`
	Span      *Span          `json:"span,omitempty"`
	Secondary bool           `json:"secondary,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Span is a source range in driver-friendly form.
type Span struct {
	Start ast.SrcPoint `json:"start"`
	End   ast.SrcPoint `json:"end"`
}

// SpanOf converts a source origin to a report span. Synthetic origins have
// no span.
func SpanOf(o ast.SourceOrigin) *Span {
	loc, ok := o.(ast.Loc)
	if !ok {
		return nil
	}
	return &Span{Start: loc.Start, End: loc.End}
}

// New builds a report for the given phase.
func New(phase, code, message string) *Report {
	return &Report{
		Schema:  SchemaV1,
		Code:    code,
		Phase:   phase,
		Message: message,
	}
}

// WithSpan attaches a source span derived from an origin.
func (r *Report) WithSpan(o ast.SourceOrigin) *Report {
	r.Span = SpanOf(o)
	return r
}

// WithData attaches a structured data key.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

// ReportError wraps a Report as an error so structured reports survive
// errors.As unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders a report as JSON.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
