package infer

import (
	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/consteval"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/types"
)

// runPass0 resolves const array sizes and registers struct/enum types to a
// fixed point (spec §4.F Pass 0): up to maxPassIterations sweeps over the
// not-yet-processed top-level declarations, retrying anything that came
// back Waiting.
func (e *Engine) runPass0(program *ast.Program) {
	var consts []*ast.ConstDecl
	var structs []*ast.StructDecl
	var enums []*ast.EnumDecl
	for _, d := range program.Decls {
		switch decl := d.(type) {
		case *ast.ConstDecl:
			consts = append(consts, decl)
			entry := e.root.InsertVarDecl(decl.Name, nil, decl, 0)
			entry.IsConst = true
		case *ast.StructDecl:
			structs = append(structs, decl)
		case *ast.EnumDecl:
			enums = append(enums, decl)
		}
	}

	for _, en := range enums {
		e.registerEnum(en)
	}

	doneConst := make(map[*ast.ConstDecl]bool)
	doneStruct := make(map[*ast.StructDecl]bool)

	for iter := 0; iter < maxPassIterations; iter++ {
		progressed := false

		for _, c := range consts {
			if doneConst[c] {
				continue
			}
			if e.processConst(c) {
				doneConst[c] = true
				progressed = true
			}
		}

		for _, s := range structs {
			if doneStruct[s] {
				continue
			}
			if e.processStruct(s) {
				doneStruct[s] = true
				progressed = true
			}
		}

		if !progressed {
			break
		}
	}

	for _, c := range consts {
		if !doneConst[c] {
			e.sink.Addf(diag.SeverityError, "E306", "consteval", "const "+c.Name+" could not be resolved")
		}
	}
	for _, s := range structs {
		if !doneStruct[s] {
			e.sink.Addf(diag.SeverityError, "E306", "consteval", "struct "+s.Name+" has an unresolved array-size field")
		}
	}
}

// processConst attempts to resolve c's array-size expression (if any) and
// returns true when c is fully processed (either resolved or terminally
// errored/cyclic — spec §4.F Pass 0).
func (e *Engine) processConst(c *ast.ConstDecl) bool {
	if c.ArraySizeExp == nil {
		return true
	}
	r := e.consts.Eval(c.ArraySizeExp, e.root, nil)
	switch r.Kind {
	case consteval.Success:
		c.ResolvedSize = int(r.Value)
		return true
	case consteval.Waiting:
		return false
	default: // Error, Cycle
		code := "E305"
		if r.Kind == consteval.Error {
			code = "E307"
		}
		e.sink.Addf(diag.SeverityError, code, "consteval", r.Msg)
		return true
	}
}

// processStruct attempts to register s as a struct type, waiting if any
// field's array-size expression is still unresolved (spec §4.F Pass 0).
func (e *Engine) processStruct(s *ast.StructDecl) bool {
	for _, f := range s.Fields {
		if f.ArraySizeExp == nil {
			continue
		}
		r := e.consts.Eval(f.ArraySizeExp, e.root, nil)
		switch r.Kind {
		case consteval.Success:
			// size only checked at pass-0 time and not stored anywhere;
			// lowering gives every array-typed struct field a pointer
			// representation and never reads a field's array size.
		case consteval.Waiting:
			return false
		default:
			e.sink.Addf(diag.SeverityError, "E307", "consteval", r.Msg)
		}
	}

	fieldNames := make([]string, len(s.Fields))
	fieldTypes := make([]*types.TypeInfo, len(s.Fields))
	for i, f := range s.Fields {
		fieldNames[i] = f.Name
		t, err := e.resolveTypeHint(f.TypeHint, e.root)
		if err != nil {
			// resolveTypeHint already reported a diagnostic; mark done so
			// Pass 0 doesn't spin forever retrying an unresolvable hint.
			return true
		}
		fieldTypes[i] = t
	}

	t, err := e.ctx.CreateObject(s.Name, fieldNames, fieldTypes, s)
	if err != nil {
		e.sink.Addf(diag.SeverityError, "E210", "typecheck", err.Error())
		return true
	}
	s.ResolvedType = t
	return true
}
