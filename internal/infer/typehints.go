package infer

import (
	"fmt"

	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/loader"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/types"
)

// resolveTypeHint turns a parsed TypeHint into an interned TypeInfo (spec
// §4.E type-path resolution, §4.A interning).
func (e *Engine) resolveTypeHint(hint ast.TypeHint, scope *symbols.Scope) (*types.TypeInfo, error) {
	if hint == nil {
		return types.Unknown, nil
	}
	switch h := hint.(type) {
	case *ast.NamedTypeHint:
		if t, ok := types.InternPrimitive(h.Name); ok {
			return t, nil
		}
		if t, ok := e.ctx.FindStruct(h.Name); ok {
			return t, nil
		}
		if t, ok := e.ctx.FindEnum(h.Name); ok {
			return t, nil
		}
		return nil, e.sink.Errorf("E104", "typecheck", "unknown type %q", h.Name)

	case *ast.NamespacedTypeHint:
		t, err := loader.ResolveTypePath(scope, h)
		if err != nil {
			return nil, e.sink.Errorf("E105", "typecheck", "%v", err)
		}
		return t, nil

	case *ast.RefTypeHint:
		target, err := e.resolveTypeHint(h.Target, scope)
		if err != nil {
			return nil, err
		}
		return e.ctx.GetOrCreateRef(target, h.IsMutable), nil

	case *ast.ArrayTypeHint:
		elem, err := e.resolveTypeHint(h.Element, scope)
		if err != nil {
			return nil, err
		}
		return e.ctx.CreateArray(elem), nil

	default:
		return nil, fmt.Errorf("unhandled type hint %T", hint)
	}
}
