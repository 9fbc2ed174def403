package infer

import (
	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/types"
)

// registerEnum registers en unconditionally — enum variants never carry
// array-size expressions, so there is nothing to wait on (spec §4.F Pass 0:
// "enum declarations: register unconditionally").
func (e *Engine) registerEnum(en *ast.EnumDecl) {
	variantNames := make([]string, len(en.Variants))
	variantFieldNames := make([][]string, len(en.Variants))
	variantFieldTypes := make([][]*types.TypeInfo, len(en.Variants))

	for vi, v := range en.Variants {
		variantNames[vi] = v.Name
		fieldNames := make([]string, len(v.Fields))
		fieldTypes := make([]*types.TypeInfo, len(v.Fields))
		for fi, f := range v.Fields {
			fieldNames[fi] = f.Name
			t, err := e.resolveTypeHint(f.TypeHint, e.root)
			if err != nil {
				fieldTypes[fi] = types.Unknown
				continue
			}
			fieldTypes[fi] = t
		}
		variantFieldNames[vi] = fieldNames
		variantFieldTypes[vi] = fieldTypes
	}

	t, err := e.ctx.CreateEnum(en.Name, variantNames, variantFieldNames, variantFieldTypes, en)
	if err != nil {
		e.sink.Addf(diag.SeverityError, "E210", "typecheck", err.Error())
		return
	}
	en.ResolvedType = t
}
