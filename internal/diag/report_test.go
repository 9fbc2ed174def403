package diag

import "testing"

func TestSinkAddfAndHasErrors(t *testing.T) {
	s := NewSink()
	if s.HasErrors() {
		t.Fatalf("empty sink should not have errors")
	}

	s.Warnf(E303, "typecheck", "fewer placeholders than arguments")
	if s.HasErrors() {
		t.Fatalf("warning-only sink should not have errors")
	}
	if s.Count(SeverityWarning) != 1 {
		t.Fatalf("want 1 warning, got %d", s.Count(SeverityWarning))
	}

	s.Addf(SeverityError, E101, "resolve", "undefined variable x")
	if !s.HasErrors() {
		t.Fatalf("sink with an E101 should report HasErrors")
	}
	if s.Count("") != 2 {
		t.Fatalf("want 2 total reports, got %d", s.Count(""))
	}
}

func TestSinkErrorfWrapsReport(t *testing.T) {
	s := NewSink()
	err := s.Errorf(E305, "consteval", "circular dependency: %s -> %s", "A", "B")
	if err == nil {
		t.Fatalf("Errorf should return a non-nil error")
	}
	rep, ok := AsReport(err)
	if !ok {
		t.Fatalf("AsReport should unwrap the ReportError")
	}
	if rep.Code != E305 {
		t.Fatalf("want code %s, got %s", E305, rep.Code)
	}
	if rep.Message != "circular dependency: A -> B" {
		t.Fatalf("unexpected message: %s", rep.Message)
	}
	if rep.Schema != "jsac.diag/v1" {
		t.Fatalf("want default schema stamped, got %q", rep.Schema)
	}
}

func TestAsReportOnPlainError(t *testing.T) {
	_, ok := AsReport(nil)
	if ok {
		t.Fatalf("nil error should not unwrap to a Report")
	}
}

func TestReportsReturnsACopy(t *testing.T) {
	s := NewSink()
	s.Addf(SeverityError, E101, "resolve", "x")
	reps := s.Reports()
	reps[0] = nil
	if s.Reports()[0] == nil {
		t.Fatalf("Reports() must return a defensive copy")
	}
}
