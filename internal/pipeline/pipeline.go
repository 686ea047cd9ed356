// Package pipeline sequences the semantic phases over a parser-produced
// module and packages the result for drivers: the transformed module, the
// accumulated error reports and per-phase timings.
package pipeline

import (
	"time"

	"github.com/fedesilva/minnieml/internal/ast"
	"github.com/fedesilva/minnieml/internal/errors"
	"github.com/fedesilva/minnieml/internal/semantic"
)

// Config contains pipeline options.
type Config struct {
	Mode    semantic.Mode
	NoTCO   bool
	DumpAst bool // caller displays the resolved AST
}

// Result contains pipeline output.
type Result struct {
	State        semantic.State
	Reports      []*errors.Report
	PhaseTimings map[string]time.Duration
}

// Emittable reports whether IR emission may proceed: no primary error
// survived the pipeline.
func (r Result) Emittable() bool {
	return len(r.State.PrimaryErrors()) == 0
}

// Phases returns the semantic passes in execution order.
func Phases() []semantic.Phase {
	return []semantic.Phase{
		semantic.StdlibInjector{},
		semantic.ErrorNodeCheck{},
		semantic.DuplicateNameCheck{},
		semantic.IDAssigner{},
		semantic.TypeResolver{},
		semantic.ConstructorGenerator{},
		semantic.RefResolver{},
		semantic.ExprRewriter{},
		semantic.ResolvablesIndexer{},
		semantic.TypeChecker{},
		semantic.MemFuncGenerator{},
		semantic.OwnershipAnalyzer{},
		semantic.TailCallDetector{},
		semantic.PreCodegenValidator{},
	}
}

// Run executes the full semantic pipeline. Phases always run to
// completion: errors accumulate in the state, never abort.
func Run(cfg Config, mod *ast.Module) Result {
	st := semantic.NewState(mod, semantic.Config{Mode: cfg.Mode, NoTCO: cfg.NoTCO})

	for _, phase := range Phases() {
		start := time.Now()
		before := len(st.Errors)
		st = phase.Process(st)
		st.Metrics.PhaseTimings[phase.Name()] = time.Since(start)
		st.Metrics.ErrorsByPhase[phase.Name()] = len(st.Errors) - before
	}

	reports := make([]*errors.Report, 0, len(st.Errors))
	for _, e := range st.Errors {
		reports = append(reports, e.Report())
	}
	return Result{
		State:        st,
		Reports:      reports,
		PhaseTimings: st.Metrics.PhaseTimings,
	}
}
