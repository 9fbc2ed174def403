package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Renderer turns a Report into human-facing output. Two implementations
// ship: TextRenderer (color terminal output) and the Sink's own
// EncodeAll/ToJSON for machine consumers — the core never formats beyond
// writing codes and messages (spec §6).
type Renderer interface {
	Render(w io.Writer, r *Report)
}

// TextRenderer prints one colorized line per Report, e.g.:
//
//	error[E201]: type mismatch on assignment (typecheck)
type TextRenderer struct {
	NoColor bool
}

func (t TextRenderer) Render(w io.Writer, r *Report) {
	label := severityColor(r.Severity, t.NoColor)
	fmt.Fprintf(w, "%s[%s]: %s (%s)\n", label(string(r.Severity)), r.Code, r.Message, r.Phase)
	if r.Span != nil {
		fmt.Fprintf(w, "  --> %s:%d:%d\n", r.Span.File, r.Span.StartLine, r.Span.StartColumn)
	}
}

// RenderAll writes every report in s to w via rd, in emission order.
func (s *Sink) RenderAll(w io.Writer, rd Renderer) {
	for _, r := range s.Reports() {
		rd.Render(w, r)
	}
}

func severityColor(sev Severity, noColor bool) func(a ...interface{}) string {
	if noColor {
		return fmt.Sprint
	}
	switch sev {
	case SeverityError:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case SeverityWarning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgCyan).SprintFunc()
	}
}
