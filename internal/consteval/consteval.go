// Package consteval implements the compile-time constant expression
// evaluator (component D), used to resolve array-size expressions for
// consts and struct fields (spec §4.D).
package consteval

import (
	"fmt"

	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/symbols"
)

// ResultKind tags an EvalResult.
type ResultKind int

const (
	Success ResultKind = iota
	Waiting
	Cycle
	Error
)

// Result is the tri(+)-state outcome of evaluating a const expression.
type Result struct {
	Kind  ResultKind
	Value int64  // meaningful when Kind == Success
	Pos   ast.Pos
	Msg   string
}

func ok(v int64) Result              { return Result{Kind: Success, Value: v} }
func waiting(pos ast.Pos, msg string) Result { return Result{Kind: Waiting, Pos: pos, Msg: msg} }
func cyclic(pos ast.Pos, msg string) Result  { return Result{Kind: Cycle, Pos: pos, Msg: msg} }
func errf(pos ast.Pos, format string, a ...interface{}) Result {
	return Result{Kind: Error, Pos: pos, Msg: fmt.Sprintf(format, a...)}
}

// maxStackDepth bounds the evaluation stack (spec §4.D).
const maxStackDepth = 100

// Evaluator evaluates const expressions against a symbol scope. It is
// stateless across calls except for a memo cache of previously-succeeded
// node evaluations (spec SPEC_FULL.md supplement: memoize across Pass 0
// retries so repeated re-evaluation of an unresolved const doesn't re-walk
// already-resolved subtrees).
type Evaluator struct {
	memo map[ast.Expr]int64
}

// New creates a fresh Evaluator.
func New() *Evaluator {
	return &Evaluator{memo: make(map[ast.Expr]int64)}
}

// Eval evaluates expr in scope. visiting is the current per-call evaluation
// stack, keyed by AST node identity (spec §9: "prefer a visited-set
// threaded through the recursion rather than a module-global"); pass nil
// (or an empty set) at the top-level call site.
func (ev *Evaluator) Eval(expr ast.Expr, scope *symbols.Scope, visiting map[ast.Expr]bool) Result {
	if v, found := ev.memo[expr]; found {
		return ok(v)
	}
	if visiting == nil {
		visiting = make(map[ast.Expr]bool)
	}
	if visiting[expr] {
		return cyclic(expr.Position(), "circular constant dependency")
	}
	if len(visiting) >= maxStackDepth {
		return cyclic(expr.Position(), "constant evaluation stack depth exceeded")
	}
	visiting[expr] = true
	defer delete(visiting, expr)

	r := ev.evalNode(expr, scope, visiting)
	if r.Kind == Success {
		ev.memo[expr] = r.Value
	}
	return r
}

func (ev *Evaluator) evalNode(expr ast.Expr, scope *symbols.Scope, visiting map[ast.Expr]bool) Result {
	switch n := expr.(type) {
	case *ast.IntLiteral:
		if n.Value <= 0 {
			return errf(n.Pos, "array size must be a positive integer, got %d", n.Value)
		}
		return ok(n.Value)

	case *ast.Identifier:
		e, found := scope.Lookup(n.Name)
		if !found {
			return waiting(n.Pos, fmt.Sprintf("undefined identifier %q", n.Name))
		}
		if !e.IsConst {
			return errf(n.Pos, "%q is not a compile-time constant", n.Name)
		}
		cd, ok := e.DeclNode.(*ast.ConstDecl)
		if !ok || cd.Value == nil {
			return errf(n.Pos, "%q has no compile-time-evaluable initializer", n.Name)
		}
		return ev.Eval(cd.Value, scope, visiting)

	case *ast.BinaryExpr:
		switch n.Op {
		case "+", "-", "*", "/", "%":
			l := ev.Eval(n.Left, scope, visiting)
			if l.Kind != Success {
				return l
			}
			r := ev.Eval(n.Right, scope, visiting)
			if r.Kind != Success {
				return r
			}
			switch n.Op {
			case "+":
				return ok(l.Value + r.Value)
			case "-":
				return ok(l.Value - r.Value)
			case "*":
				return ok(l.Value * r.Value)
			case "/":
				if r.Value == 0 {
					return errf(n.Pos, "division by zero in constant expression")
				}
				return ok(l.Value / r.Value)
			case "%":
				if r.Value == 0 {
					return errf(n.Pos, "modulo by zero in constant expression")
				}
				return ok(l.Value % r.Value)
			}
		}
		return errf(n.Pos, "operator %q is not a compile-time-evaluable expression", n.Op)

	default:
		return errf(expr.Position(), "expression is not a compile-time constant")
	}
}
