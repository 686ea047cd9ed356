// Package semantic implements the MinnieML semantic phases: the sequence
// of AST-rewriting passes between the parse tree and IR emission. Each
// phase is a State → State function that updates the module it is handed
// in place, so the input State's module is not preserved; phases never panic and never
// short-circuit: they accumulate errors and rewrite malformed subtrees
// into explicit error-marker nodes so downstream phases always have a
// well-formed tree to walk.
package semantic

import (
	"time"

	"github.com/fedesilva/minnieml/internal/ast"
)

// Mode is the compilation mode the pipeline targets.
type Mode int

const (
	ModeBinary Mode = iota
	ModeLibrary
	ModeAst
	ModeIr
)

func (m Mode) String() string {
	switch m {
	case ModeLibrary:
		return "library"
	case ModeAst:
		return "ast"
	case ModeIr:
		return "ir"
	default:
		return "binary"
	}
}

// ParseMode converts a mode name from config or flags.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "binary", "":
		return ModeBinary, true
	case "library":
		return ModeLibrary, true
	case "ast":
		return ModeAst, true
	case "ir":
		return ModeIr, true
	}
	return ModeBinary, false
}

// Config carries the compiler options the phases consult.
type Config struct {
	Mode  Mode
	NoTCO bool
}

// Metrics accumulates per-phase timings and error counts.
type Metrics struct {
	PhaseTimings  map[string]time.Duration
	ErrorsByPhase map[string]int
}

// NewMetrics returns an empty metrics record.
func NewMetrics() *Metrics {
	return &Metrics{
		PhaseTimings:  make(map[string]time.Duration),
		ErrorsByPhase: make(map[string]int),
	}
}

// State is the value threaded through the pipeline: the module under
// transformation, the accumulated errors, the configuration and metrics.
// The module's resolvables index is the only structure updated by more
// than one phase; updates are monotonic.
type State struct {
	Module  *ast.Module
	Errors  []*Error
	Cfg     Config
	Metrics *Metrics
}

// NewState wraps a parser-produced module for the pipeline. The module's
// resolvables index is created when the parser left it empty.
func NewState(m *ast.Module, cfg Config) State {
	if m.Resolvables == nil {
		m.Resolvables = ast.NewResolvablesIndex()
	}
	return State{
		Module:  m,
		Cfg:     cfg,
		Metrics: NewMetrics(),
	}
}

// Index returns the module's resolvables index.
func (s State) Index() *ast.ResolvablesIndex { return s.Module.Resolvables }

// WithErrors returns the state with errors appended.
func (s State) WithErrors(errs ...*Error) State {
	s.Errors = append(s.Errors, errs...)
	return s
}

// PrimaryErrors returns the errors with no recorded cause.
func (s State) PrimaryErrors() []*Error {
	var out []*Error
	for _, e := range s.Errors {
		if e.Primary() {
			out = append(out, e)
		}
	}
	return out
}

// Phase is one semantic pass.
type Phase interface {
	Name() string
	Process(s State) State
}
