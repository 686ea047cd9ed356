package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// ErrorNodeCheck surfaces parser-produced error placeholders into the
// error stream. The tree is not modified.
type ErrorNodeCheck struct{}

func (ErrorNodeCheck) Name() string { return "error-node-check" }

func (p ErrorNodeCheck) Process(s State) State {
	for _, m := range s.Module.Members {
		switch n := m.(type) {
		case *ast.ParsingMemberError:
			s = s.WithErrors(errf(p.Name(), MemberErrorFound, n.Orig,
				"parse error in member: %s", n.Message))
		case *ast.ParsingIdError:
			s = s.WithErrors(namedErrf(p.Name(), ParsingIdErrorFound, n.Found, n.Orig,
				"unparsable identifier %q: %s", n.Found, n.Message))
		case *ast.Bnd:
			if n.Body == nil {
				continue
			}
			ast.WalkTerms(n.Body, func(t ast.Term) bool {
				if inv, ok := t.(*ast.InvalidExpression); ok {
					s = s.WithErrors(namedErrf(p.Name(), InvalidExpressionFound, n.Name, inv.Orig,
						"invalid expression in %s: %s", n.Name, inv.Reason))
				}
				return true
			})
		}
	}
	return s
}
