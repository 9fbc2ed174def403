package loader

import (
	"fmt"

	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/types"
)

// ResolveTypePath resolves a single-level namespaced type hint such as
// `termios.termios_t` (spec §4.E): the first component must resolve to a
// namespace symbol in scope, and the final component must name a
// struct/enum type in that module's TypeContext. Deeper paths (`a.b.c`)
// are explicitly unsupported (spec §4.E, Open Questions).
func ResolveTypePath(scope *symbols.Scope, hint *ast.NamespacedTypeHint) (*types.TypeInfo, error) {
	entry, found := scope.Lookup(hint.Namespace)
	if !found {
		return nil, fmt.Errorf("undefined namespace %q in type path %s.%s", hint.Namespace, hint.Namespace, hint.Name)
	}
	if !entry.IsNamespace() {
		return nil, fmt.Errorf("%q is not an imported module", hint.Namespace)
	}
	imp := entry.DeclNode.(*ast.ImportDecl)
	mod, ok := imp.ImportedModule.(*Module)
	if !ok || mod == nil {
		return nil, fmt.Errorf("namespace %q has no resolved module", hint.Namespace)
	}
	if mod.TypeCtx == nil {
		return nil, fmt.Errorf("namespace %q's module has not been type-checked yet", hint.Namespace)
	}
	if t, ok := mod.TypeCtx.FindStruct(hint.Name); ok {
		return t, nil
	}
	if t, ok := mod.TypeCtx.FindEnum(hint.Name); ok {
		return t, nil
	}
	return nil, fmt.Errorf("type %q not found in module %q", hint.Name, hint.Namespace)
}
