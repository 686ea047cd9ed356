// Package diag renders error reports for humans. Output is colored when
// the output sink is a terminal and plain otherwise; primary errors print by
// default, secondaries behind a flag.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/fedesilva/minnieml/internal/errors"
)

// Printer writes reports to a sink.
type Printer struct {
	out       io.Writer
	all       bool
	errColor  *color.Color
	codeColor *color.Color
	dimColor  *color.Color
}

// NewPrinter builds a printer for the given sink. Color engages only when
// the sink is the terminal.
func NewPrinter(out io.Writer, showSecondary bool) *Printer {
	p := &Printer{
		out:       out,
		all:       showSecondary,
		errColor:  color.New(color.FgRed, color.Bold),
		codeColor: color.New(color.FgYellow),
		dimColor:  color.New(color.Faint),
	}
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		p.errColor.DisableColor()
		p.codeColor.DisableColor()
		p.dimColor.DisableColor()
	}
	return p
}

// Print renders the reports, returning how many were shown.
func (p *Printer) Print(reports []*errors.Report) int {
	shown := 0
	for _, r := range reports {
		if r.Secondary && !p.all {
			continue
		}
		shown++
		p.one(r)
	}
	return shown
}

func (p *Printer) one(r *errors.Report) {
	label := "error"
	if r.Secondary {
		label = "error (secondary)"
	}
	fmt.Fprintf(p.out, "%s %s %s\n",
		p.errColor.Sprint(label),
		p.codeColor.Sprintf("[%s]", r.Code),
		r.Message)
	if r.Span != nil {
		fmt.Fprintf(p.out, "  %s\n", p.dimColor.Sprintf("at %d:%d, phase %s", r.Span.Start.Line, r.Span.Start.Col, r.Phase))
	} else {
		fmt.Fprintf(p.out, "  %s\n", p.dimColor.Sprintf("phase %s", r.Phase))
	}
}

// Summary prints the error count line.
func (p *Printer) Summary(n int) {
	if n == 0 {
		fmt.Fprintln(p.out, "no errors")
		return
	}
	fmt.Fprintln(p.out, p.errColor.Sprintf("%d error(s)", n))
}
