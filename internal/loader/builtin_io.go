package loader

import (
	"strings"

	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/types"
)

// IOFuncNames lists the synthetic `@io` module's exports (spec §4.E, §6).
var IOFuncNames = []string{"println", "print", "eprintln", "eprint", "format"}

// registerIOModule seeds the `@io` built-in module: variadic functions with
// a leading Str format argument, each validated against its call site
// before lowering (spec §4.E, §6).
func (r *Registry) registerIOModule() {
	ctx := types.NewContext("@io")
	for _, name := range IOFuncNames {
		ret := types.Void
		if name == "format" {
			ret = types.Str
		}
		ctx.CreateFunction(name, []*types.TypeInfo{types.Str}, ret, nil, true)
	}
	mod := &Module{
		AbsolutePath: "@io",
		RelativePath: "@io",
		Prefix:       "", // externs/builtins are never mangled (spec §4.E)
		TypeCtx:      ctx,
		isParsed:     true,
		loadCount:    1,
	}
	r.modules["@io"] = mod
	r.builtins["@io"] = mod
}

func (r *Registry) loadBuiltin(name string) (*Module, error) {
	mod, ok := r.builtins[name]
	if !ok {
		return nil, r.reportf("E504", "unknown built-in module %q", name)
	}
	mod.loadCount++
	return mod, nil
}

// ValidateIOCall checks an `@io` call site against spec §6: the first
// argument must be a string literal, and the number of `{}` placeholders
// must equal the number of remaining arguments exactly — fewer is an
// error (E302), more is a warning (E303). format strings that aren't
// string literals are E301.
func ValidateIOCall(sink *diag.Sink, funcName string, args []ast.Expr) {
	if len(args) == 0 {
		sink.Addf(diag.SeverityError, "E301", "typecheck",
			funcName+" requires a string literal format argument")
		return
	}
	lit, ok := args[0].(*ast.StringLiteral)
	if !ok {
		sink.Addf(diag.SeverityError, "E301", "typecheck",
			funcName+"'s first argument must be a string literal")
		return
	}
	placeholders := strings.Count(lit.Value, "{}")
	remaining := len(args) - 1
	switch {
	case placeholders > remaining:
		sink.Addf(diag.SeverityError, "E302", "typecheck",
			funcName+": format string has more {} placeholders than arguments")
	case placeholders < remaining:
		sink.Addf(diag.SeverityWarning, "E303", "typecheck",
			funcName+": format string has fewer {} placeholders than arguments (extras ignored)")
	}
}
