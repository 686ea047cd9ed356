package semantic

import (
	"github.com/fedesilva/minnieml/internal/ast"
)

// DuplicateNameCheck detects same-name members and duplicate parameters.
// Duplicates after the first are replaced with DuplicateMember
// placeholders; declarations with duplicate parameter names are replaced
// whole with InvalidMember.
type DuplicateNameCheck struct{}

func (DuplicateNameCheck) Name() string { return "duplicate-name-check" }

type nameKey struct {
	name string
	kind string
}

func declKind(m ast.Member) (nameKey, bool) {
	switch d := m.(type) {
	case *ast.Bnd:
		switch d.Meta.OpKind {
		case ast.OpBinary:
			return nameKey{d.Name, "bin-op"}, true
		case ast.OpPrefix, ast.OpPostfix:
			return nameKey{d.Name, "unary-op"}, true
		default:
			return nameKey{d.Name, "other"}, true
		}
	case *ast.TypeDef:
		return nameKey{d.Name, "other"}, true
	case *ast.TypeAlias:
		return nameKey{d.Name, "other"}, true
	case *ast.TypeStruct:
		return nameKey{d.Name, "other"}, true
	}
	return nameKey{}, false
}

func (p DuplicateNameCheck) Process(s State) State {
	firstByKey := make(map[nameKey]ast.Member)
	dupsByKey := make(map[nameKey][]ast.Member)
	for _, m := range s.Module.Members {
		key, ok := declKind(m)
		if !ok {
			continue
		}
		if _, seen := firstByKey[key]; !seen {
			firstByKey[key] = m
			continue
		}
		dupsByKey[key] = append(dupsByKey[key], m)
	}

	replaced := make(map[ast.Member]ast.Member)
	for key, dups := range dupsByKey {
		original := firstByKey[key]
		decls := append([]ast.Member{original}, dups...)
		s = s.WithErrors(namedErrf(p.Name(), DuplicateName, key.name, dups[0].Origin(),
			"%s declared %d times", key.name, len(decls)))
		for _, d := range dups {
			replaced[d] = &ast.DuplicateMember{
				Name:     key.name,
				Dup:      d,
				Original: original,
				Orig:     d.Origin(),
			}
		}
	}

	// A function and an operator sharing a name collide even though their
	// grouping kinds differ.
	opNames := make(map[string]ast.Member)
	for key, m := range firstByKey {
		if key.kind != "other" {
			opNames[key.name] = m
		}
	}
	for key, m := range firstByKey {
		if key.kind != "other" {
			continue
		}
		b, ok := m.(*ast.Bnd)
		if !ok || !b.IsFunction() {
			continue
		}
		if _, clash := opNames[key.name]; clash {
			s = s.WithErrors(namedErrf(p.Name(), DuplicateName, key.name, m.Origin(),
				"%s is declared both as a function and as an operator", key.name))
		}
	}

	for _, m := range s.Module.Members {
		b, ok := m.(*ast.Bnd)
		if !ok || replaced[m] != nil {
			continue
		}
		l := b.BodyLambda()
		if l == nil {
			continue
		}
		if dup := duplicateParam(l.Params); dup != "" {
			s = s.WithErrors(namedErrf(p.Name(), DuplicateParams, b.Name, b.Orig,
				"parameter %s declared more than once in %s", dup, b.Name))
			replaced[m] = &ast.InvalidMember{
				Inner:  b,
				Reason: "duplicate parameter " + dup,
				Orig:   b.Orig,
			}
		}
	}

	if len(replaced) > 0 {
		members := make([]ast.Member, len(s.Module.Members))
		for i, m := range s.Module.Members {
			if r, ok := replaced[m]; ok {
				members[i] = r
			} else {
				members[i] = m
			}
		}
		s.Module.Members = members
	}
	return s
}

func duplicateParam(params []*ast.FnParam) string {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if seen[p.Name] {
			return p.Name
		}
		seen[p.Name] = true
	}
	return ""
}
