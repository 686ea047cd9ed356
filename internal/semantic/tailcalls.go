package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// TailCallDetector marks self-recursive calls in terminal position. A
// position is terminal if it is the body's last expression, a branch of a
// conditional in terminal position, or the continuation of a let-binding
// in terminal position.
type TailCallDetector struct{}

func (TailCallDetector) Name() string { return "tail-call-detection" }

func (p TailCallDetector) Process(s State) State {
	if s.Cfg.NoTCO {
		return s
	}
	for _, m := range s.Module.Members {
		b, ok := m.(*ast.Bnd)
		if !ok {
			continue
		}
		l := b.BodyLambda()
		if l == nil || l.Body == nil {
			continue
		}
		if terminalSelfCall(l.Body.Single(), b.ID) {
			l.Meta.IsTailRecursive = true
		}
	}
	return s
}

func terminalSelfCall(t ast.Term, selfID string) bool {
	switch n := t.(type) {
	case *ast.App:
		if lam, ok := n.Fn.(*ast.Lambda); ok {
			// Let-binding: the continuation is the terminal position.
			return terminalSelfCall(lam.Body.Single(), selfID)
		}
		base, _ := n.Uncurry()
		ref, ok := base.(*ast.Ref)
		return ok && ref.ResolvedID == selfID
	case *ast.Cond:
		return terminalSelfCall(n.IfTrue.Single(), selfID) ||
			terminalSelfCall(n.IfFalse.Single(), selfID)
	case *ast.TermGroup:
		return terminalSelfCall(n.Inner.Single(), selfID)
	}
	return false
}
