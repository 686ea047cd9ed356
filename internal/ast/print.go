package ast

import (
	"fmt"
	"strings"
)

// Print renders a module in the compact s-expression form used by dump
// flags and snapshot tests. Binding metadata that later phases computed
// (ids, types, tail-recursion flags) is included so the output pins down
// a pass's observable result.
func Print(m *Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(module %s %s\n", m.Name, m.Visibility)
	for _, mb := range m.Members {
		printMember(&b, mb)
	}
	b.WriteString(")\n")
	return b.String()
}

func printMember(b *strings.Builder, m Member) {
	switch d := m.(type) {
	case *Bnd:
		fmt.Fprintf(b, "  (bnd %s", d.Name)
		if d.ID != "" {
			fmt.Fprintf(b, " :id %s", d.ID)
		}
		if d.TypeSpec != nil {
			fmt.Fprintf(b, " :type %s", d.TypeSpec)
		} else if d.TypeAsc != nil {
			fmt.Fprintf(b, " :asc %s", d.TypeAsc)
		}
		if l := d.BodyLambda(); l != nil && l.Meta.IsTailRecursive {
			b.WriteString(" :tailrec")
		}
		if d.Body != nil {
			fmt.Fprintf(b, "\n    %s", d.Body)
		}
		b.WriteString(")\n")
	case *TypeStruct:
		fmt.Fprintf(b, "  %s\n", d)
	case *TypeDef:
		fmt.Fprintf(b, "  %s\n", d)
	case *TypeAlias:
		fmt.Fprintf(b, "  (typealias %s %s", d.Name, d.Ref)
		if d.TypeSpec != nil {
			fmt.Fprintf(b, " :spec %s", d.TypeSpec)
		}
		b.WriteString(")\n")
	default:
		fmt.Fprintf(b, "  %s\n", m)
	}
}
