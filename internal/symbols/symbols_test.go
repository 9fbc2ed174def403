package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/types"
)

func TestLookupWalksParentChain(t *testing.T) {
	root := NewScope()
	root.InsertPlain("x", types.I32, nil, false)

	child := root.NewChild()
	e, ok := child.Lookup("x")
	require.True(t, ok, "expected child scope to see parent binding")
	assert.Equal(t, types.I32, e.Type)
}

func TestShadowingInsertsAtHead(t *testing.T) {
	root := NewScope()
	root.InsertPlain("x", types.I32, nil, false)
	root.InsertPlain("x", types.Double, nil, false)

	e, ok := root.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, types.Double, e.Type, "expected the most recent binding to shadow the earlier one")
}

func TestLookupLocalDoesNotSeeParent(t *testing.T) {
	root := NewScope()
	root.InsertPlain("x", types.I32, nil, false)
	child := root.NewChild()

	_, ok := child.LookupLocal("x")
	assert.False(t, ok, "expected LookupLocal to ignore the parent scope")
}

func TestNamespaceDetection(t *testing.T) {
	root := NewScope()
	imp := &ast.ImportDecl{Alias: "math", Path: "./math"}
	root.InsertNamespace("math", imp)

	e, ok := root.Lookup("math")
	require.True(t, ok, "expected namespace binding to be found")
	assert.True(t, e.IsNamespace())

	root.InsertPlain("notAns", types.I32, nil, false)
	e2, ok := root.Lookup("notAns")
	require.True(t, ok)
	assert.False(t, e2.IsNamespace(), "expected plain entries to not be namespaces")
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	root := NewScope()
	_, ok := root.Lookup("nope")
	assert.False(t, ok, "expected missing lookup to fail")
}
