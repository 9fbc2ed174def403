package consteval

import (
	"testing"

	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/symbols"
)

func constEntry(scope *symbols.Scope, name string, value ast.Expr) {
	decl := &ast.ConstDecl{Name: name, Value: value}
	e := scope.InsertVarDecl(name, nil, decl, 0)
	e.IsConst = true
}

func TestEvalIntLiteral(t *testing.T) {
	ev := New()
	lit := &ast.IntLiteral{Value: 4}
	r := ev.Eval(lit, symbols.NewScope(), nil)
	if r.Kind != Success || r.Value != 4 {
		t.Fatalf("expected Success(4), got %+v", r)
	}
}

func TestEvalNonPositiveIntIsError(t *testing.T) {
	ev := New()
	lit := &ast.IntLiteral{Value: 0}
	r := ev.Eval(lit, symbols.NewScope(), nil)
	if r.Kind != Error {
		t.Fatalf("expected Error for non-positive size, got %+v", r)
	}
}

func TestEvalUndefinedIdentifierIsWaiting(t *testing.T) {
	ev := New()
	id := &ast.Identifier{Name: "N"}
	r := ev.Eval(id, symbols.NewScope(), nil)
	if r.Kind != Waiting {
		t.Fatalf("expected Waiting for undefined identifier, got %+v", r)
	}
}

// S5: const A = B + 1; const B = 2; both resolve once B is visible.
func TestEvalForwardReferenceResolvesOnceDefined(t *testing.T) {
	ev := New()
	scope := symbols.NewScope()

	aExpr := &ast.BinaryExpr{Op: "+", Left: &ast.Identifier{Name: "B"}, Right: &ast.IntLiteral{Value: 1}}
	constEntry(scope, "A", aExpr)

	idA := &ast.Identifier{Name: "A"}
	if r := ev.Eval(idA, scope, nil); r.Kind != Waiting {
		t.Fatalf("expected Waiting before B is defined, got %+v", r)
	}

	constEntry(scope, "B", &ast.IntLiteral{Value: 2})

	r := ev.Eval(idA, scope, nil)
	if r.Kind != Success || r.Value != 3 {
		t.Fatalf("expected Success(3) once B is defined, got %+v", r)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	ev := New()
	expr := &ast.BinaryExpr{Op: "/", Left: &ast.IntLiteral{Value: 4}, Right: &ast.IntLiteral{Value: 0}}
	r := ev.Eval(expr, symbols.NewScope(), nil)
	if r.Kind != Error {
		t.Fatalf("expected Error for division by zero, got %+v", r)
	}
}

func TestEvalCircularDependency(t *testing.T) {
	ev := New()
	scope := symbols.NewScope()
	aID := &ast.Identifier{Name: "A"}
	bID := &ast.Identifier{Name: "B"}
	constEntry(scope, "A", bID)
	constEntry(scope, "B", aID)

	r := ev.Eval(aID, scope, nil)
	if r.Kind != Cycle {
		t.Fatalf("expected Cycle for A->B->A, got %+v", r)
	}
}

// S6: function calls are not compile-time-evaluable.
func TestEvalFunctionCallIsError(t *testing.T) {
	ev := New()
	call := &ast.CallExpr{Callee: &ast.Identifier{Name: "f"}}
	r := ev.Eval(call, symbols.NewScope(), nil)
	if r.Kind != Error {
		t.Fatalf("expected Error for a function call, got %+v", r)
	}
}
