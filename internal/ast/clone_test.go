package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jsa-lang/jsac/internal/types"
)

// CloneBlock must produce a structurally identical tree with entirely new
// node identities, so two specializations of one function body never share
// an exprBase.resolved slot (spec §4.G).
func TestCloneBlockIsStructurallyEqualButDistinct(t *testing.T) {
	orig := &Block{Stmts: []Stmt{
		&ExprStmt{X: &BinaryExpr{
			Op:   "+",
			Left: &Identifier{Name: "a"},
			Right: &CallExpr{
				Callee: &Identifier{Name: "f"},
				Args:   []Expr{&IntLiteral{Value: 1}},
			},
		}},
		&Return{Value: &Identifier{Name: "a"}},
	}}

	clone := CloneBlock(orig)

	opts := cmpopts.IgnoreUnexported(Identifier{}, IntLiteral{}, BinaryExpr{}, CallExpr{})
	if diff := cmp.Diff(orig, clone, opts); diff != "" {
		t.Fatalf("clone diverged structurally (-orig +clone):\n%s", diff)
	}

	if clone == orig {
		t.Fatal("expected a distinct Block, got the same pointer")
	}
	origCall := orig.Stmts[0].(*ExprStmt).X.(*BinaryExpr).Right.(*CallExpr)
	cloneCall := clone.Stmts[0].(*ExprStmt).X.(*BinaryExpr).Right.(*CallExpr)
	if origCall == cloneCall {
		t.Fatal("expected cloned CallExpr to be a new node")
	}

	// Mutating one specialization's resolved type must never affect the other.
	origCall.SetType(types.I32)
	if cloneCall.Type() == types.I32 {
		t.Fatal("expected the clone's resolved type to be independent of the original")
	}
	if cloneCall.Args[0] == origCall.Args[0] {
		t.Fatal("expected cloned argument nodes to be distinct from the original")
	}
}
