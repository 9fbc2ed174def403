package diag

import (
	"errors"
	"fmt"
)

// Severity classifies a Report.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Span is an optional source range attached to a Report.
type Span struct {
	File                   string
	StartLine, StartColumn int
	EndLine, EndColumn     int
}

// Report is the canonical structured diagnostic (spec §6), versioned
// under its own schema so downstream tooling can detect a shape change.
type Report struct {
	Schema   string         `json:"schema"`
	Code     string         `json:"code"`
	Severity Severity       `json:"severity"`
	Phase    string         `json:"phase"`
	Message  string         `json:"message"`
	Span     *Span          `json:"span,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error so it survives errors.As
// unwrapping.
type ReportError struct{ Rep *Report }

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown diagnostic"
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

// WrapReport wraps r as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// Sink is the single shared diagnostic collector across every module in a
// registry (spec §5: "DiagnosticContext is shared across all modules...
// callers append from a single thread"). Errors are non-fatal: passes keep
// producing diagnostics until the inference/lowering boundary, which is the
// only place HasErrors() gates further work (spec §5, §7).
type Sink struct {
	reports []*Report
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink { return &Sink{} }

// Add appends a fully-formed Report.
func (s *Sink) Add(r *Report) {
	if r.Schema == "" {
		r.Schema = "jsac.diag/v1"
	}
	s.reports = append(s.reports, r)
}

// Addf builds and appends a Report from primitive fields — the common case
// call sites reach for.
func (s *Sink) Addf(sev Severity, code, phase, message string) *Report {
	r := &Report{Schema: "jsac.diag/v1", Code: code, Severity: sev, Phase: phase, Message: message}
	s.reports = append(s.reports, r)
	return r
}

// Errorf is a convenience wrapper for the common "report an error and
// return it as a Go error" pattern used throughout the passes.
func (s *Sink) Errorf(code, phase, format string, args ...interface{}) error {
	r := s.Addf(SeverityError, code, phase, fmt.Sprintf(format, args...))
	return WrapReport(r)
}

// Warnf reports a non-fatal warning (e.g. the iteration-cap or
// excess-argument cases from spec §4.F/§6).
func (s *Sink) Warnf(code, phase, format string, args ...interface{}) {
	s.Addf(SeverityWarning, code, phase, fmt.Sprintf(format, args...))
}

// Reports returns every diagnostic recorded so far, in emission order.
func (s *Sink) Reports() []*Report {
	out := make([]*Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// HasErrors reports whether any SeverityError diagnostic was recorded
// (spec §5, §7: the only gate between inference and lowering).
func (s *Sink) HasErrors() bool {
	for _, r := range s.reports {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of recorded diagnostics of the given severity
// (count of all severities when sev == "").
func (s *Sink) Count(sev Severity) int {
	if sev == "" {
		return len(s.reports)
	}
	n := 0
	for _, r := range s.reports {
		if r.Severity == sev {
			n++
		}
	}
	return n
}
