package infer

import (
	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/loader"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/traits"
	"github.com/jsa-lang/jsac/internal/types"
)

// inferExpr types expr in scope, mutating it in place (SetType) and
// recursing into its children. It is the workhorse `infer_literal_types` /
// member/index/pattern half of spec §4.F Pass 2-4; analyze_call_sites and
// create_specializations (the CallExpr case) live in pass2_calls.go.
func (e *Engine) inferExpr(expr ast.Expr, scope *symbols.Scope) {
	if expr == nil {
		return
	}
	switch n := expr.(type) {
	case *ast.IntLiteral:
		n.SetType(types.I32)
	case *ast.FloatLiteral:
		n.SetType(types.Double)
	case *ast.StringLiteral:
		n.SetType(types.Str)
	case *ast.BoolLiteral:
		n.SetType(types.Bool)

	case *ast.Identifier:
		e.inferIdentifier(n, scope)

	case *ast.BinaryExpr:
		e.inferBinary(n, scope)

	case *ast.UnaryExpr:
		e.inferUnary(n, scope)

	case *ast.IncDec:
		if ix, ok := n.Target.(*ast.IndexExpr); ok {
			ix.IsAssignTarget = true
		}
		e.inferExpr(n.Target, scope)
		n.SetType(n.Target.Type())

	case *ast.MemberExpr:
		e.inferMember(n, scope)

	case *ast.IndexExpr:
		e.inferIndex(n, scope)

	case *ast.NewArrayExpr:
		e.inferNewArray(n, scope)

	case *ast.ObjectLiteral:
		e.inferObjectLiteral(n, scope)

	case *ast.EnumConstructExpr:
		e.inferEnumConstruct(n, scope)

	case *ast.IsExpr:
		e.inferIs(n, scope)

	case *ast.CallExpr:
		e.inferCall(n, scope)
	}
}

func (e *Engine) inferIdentifier(n *ast.Identifier, scope *symbols.Scope) {
	entry, found := scope.Lookup(n.Name)
	if !found {
		e.sink.Addf(diag.SeverityError, diag.E101, "typecheck", "undefined identifier "+n.Name)
		n.SetType(types.Unknown)
		return
	}
	if entry.IsNamespace() {
		n.SetType(types.Unknown) // namespaces are only meaningful as MemberExpr/CallExpr targets
		return
	}
	if fn, ok := entry.DeclNode.(*ast.FuncDecl); ok && entry.Type == nil {
		if fn.ResolvedType != nil {
			n.SetType(fn.ResolvedType)
			return
		}
	}
	if entry.Type == nil {
		n.SetType(types.Unknown)
		return
	}
	n.SetType(entry.Type)
}

func (e *Engine) inferBinary(n *ast.BinaryExpr, scope *symbols.Scope) {
	e.inferExpr(n.Left, scope)
	e.inferExpr(n.Right, scope)
	left, right := n.Left.Type(), n.Right.Type()

	if traits.IsShortCircuit(n.Op) {
		n.SetType(types.Bool)
		return
	}

	trait, method, ok := traits.BinaryOperatorTrait(n.Op)
	if !ok {
		e.sink.Addf(diag.SeverityError, diag.E205, "typecheck", "unknown operator "+n.Op)
		n.SetType(types.Unknown)
		return
	}
	if left.IsUnknown() || right.IsUnknown() {
		n.SetType(types.Unknown)
		return
	}
	if _, ok := e.traits.GetBinaryMethod(trait, left, right, method); !ok {
		e.sink.Addf(diag.SeverityError, diag.E205, "typecheck",
			"no implementation of "+string(trait)+" for "+left.String()+" "+n.Op+" "+right.String())
		n.SetType(types.Unknown)
		return
	}
	out, _ := e.traits.GetBinaryOutput(trait, left, right)
	n.SetType(out)
}

func (e *Engine) inferUnary(n *ast.UnaryExpr, scope *symbols.Scope) {
	e.inferExpr(n.Operand, scope)
	self := n.Operand.Type()
	trait, method, ok := traits.UnaryOperatorTrait(n.Op)
	if !ok || self.IsUnknown() {
		n.SetType(types.Unknown)
		return
	}
	impl, ok := e.traits.FindImpl(trait, self, nil)
	if !ok {
		e.sink.Addf(diag.SeverityError, diag.E205, "typecheck", "no implementation of "+string(trait)+" for "+self.String())
		n.SetType(types.Unknown)
		return
	}
	if _, has := impl.Methods[method]; !has {
		n.SetType(types.Unknown)
		return
	}
	n.SetType(impl.AssocTypes["Output"])
}

// namespaceModule resolves the *loader.Module an Identifier's namespace
// entry points at, or nil if target isn't a namespace reference.
func namespaceModule(entry *symbols.Entry) *loader.Module {
	if entry == nil || !entry.IsNamespace() {
		return nil
	}
	imp := entry.DeclNode.(*ast.ImportDecl)
	mod, _ := imp.ImportedModule.(*loader.Module)
	return mod
}

func (e *Engine) inferMember(n *ast.MemberExpr, scope *symbols.Scope) {
	n.FieldIndex = -1

	if id, ok := n.Target.(*ast.Identifier); ok {
		if entry, found := scope.Lookup(id.Name); found && entry.IsNamespace() {
			mod := namespaceModule(entry)
			if mod == nil {
				n.SetType(types.Unknown)
				return
			}
			decl, ok := mod.Exports[n.Name]
			if !ok {
				e.sink.Addf(diag.SeverityError, diag.E103, "typecheck", "module has no export "+n.Name)
				n.SetType(types.Unknown)
				return
			}
			switch d := decl.(type) {
			case *ast.ConstDecl:
				n.SetType(d.Value.Type())
			case *ast.VarDecl:
				n.SetType(d.Value.Type())
			default:
				n.SetType(types.Unknown)
			}
			return
		}
	}

	e.inferExpr(n.Target, scope)
	obj := n.Target.Type()
	if obj.IsRef() {
		obj = obj.RefTargetOf()
	}
	if obj == nil || !obj.IsObject() {
		e.sink.Addf(diag.SeverityError, diag.E103, "typecheck", "member access "+n.Name+" on non-struct type")
		n.SetType(types.Unknown)
		return
	}
	idx := obj.FindProperty(n.Name)
	if idx < 0 {
		e.sink.Addf(diag.SeverityError, diag.E103, "typecheck", obj.TypeName+" has no field "+n.Name)
		n.SetType(types.Unknown)
		return
	}
	n.FieldIndex = idx
	n.SetType(obj.FieldTypes[idx])
}

func (e *Engine) inferIndex(n *ast.IndexExpr, scope *symbols.Scope) {
	e.inferExpr(n.Target, scope)
	e.inferExpr(n.Index, scope)

	arr := n.Target.Type()
	key := n.Index.Type()
	if arr.IsUnknown() || key.IsUnknown() {
		n.SetType(types.Unknown)
		return
	}

	trait := traits.Index
	errCode := diag.E206
	if n.IsAssignTarget {
		trait = traits.RefIndex
		errCode = diag.E207
	}

	impl, substituted, ok := e.traits.ResolveIndex(trait, arr, key)
	if !ok {
		e.sink.Addf(diag.SeverityError, errCode, "typecheck", "no "+string(trait)+" implementation for "+arr.String()+"["+key.String()+"]")
		n.SetType(types.Unknown)
		return
	}
	n.ConvertIndexTo = substituted
	n.SetType(impl.AssocTypes["Output"])
}

func (e *Engine) inferNewArray(n *ast.NewArrayExpr, scope *symbols.Scope) {
	e.inferExpr(n.Size, scope)
	elem, err := e.resolveTypeHint(n.ElemHint, scope)
	if err != nil {
		n.SetType(types.Unknown)
		return
	}
	n.SetType(e.ctx.CreateArray(elem))
}

// reorderObjectFields applies spec §4.F's struct-literal reordering rule:
// fields are emitted in declaration order, pulling from the literal's
// name:value pairs (in any order) and falling back to FieldDecl.Default
// when a field is omitted.
func (e *Engine) reorderObjectFields(fields []*ast.ObjectFieldInit, declFields []*ast.FieldDecl, scope *symbols.Scope, errCode string) []*ast.ObjectFieldInit {
	byName := make(map[string]*ast.ObjectFieldInit, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	out := make([]*ast.ObjectFieldInit, 0, len(declFields))
	for _, fd := range declFields {
		if f, ok := byName[fd.Name]; ok {
			e.inferExpr(f.Value, scope)
			out = append(out, f)
			continue
		}
		if fd.Default != nil {
			e.inferExpr(fd.Default, scope)
			out = append(out, &ast.ObjectFieldInit{Name: fd.Name, Value: fd.Default, Pos: fd.Pos})
			continue
		}
		e.sink.Addf(diag.SeverityError, errCode, "typecheck", "missing required field "+fd.Name+" with no default")
	}
	return out
}

func (e *Engine) inferObjectLiteral(n *ast.ObjectLiteral, scope *symbols.Scope) {
	if n.StructHint == "" {
		for _, f := range n.Fields {
			e.inferExpr(f.Value, scope)
		}
		e.sink.Addf(diag.SeverityError, diag.E104, "typecheck", "cannot infer struct type for object literal")
		n.SetType(types.Unknown)
		return
	}
	st, ok := e.ctx.FindStruct(n.StructHint)
	if !ok {
		e.sink.Addf(diag.SeverityError, diag.E104, "typecheck", "unknown struct "+n.StructHint)
		n.SetType(types.Unknown)
		return
	}
	declFields, _ := st.StructDeclRef.(*ast.StructDecl)
	if declFields != nil {
		n.Fields = e.reorderObjectFields(n.Fields, declFields.Fields, scope, diag.E209)
	}
	n.SetType(st)
}

func (e *Engine) inferEnumConstruct(n *ast.EnumConstructExpr, scope *symbols.Scope) {
	et, ok := e.ctx.FindEnum(n.EnumName)
	if !ok {
		e.sink.Addf(diag.SeverityError, diag.E401, "typecheck", "unknown enum "+n.EnumName)
		n.SetType(types.Unknown)
		return
	}
	idx := et.VariantIndex(n.Variant)
	if idx < 0 {
		e.sink.Addf(diag.SeverityError, diag.E402, "typecheck", "unknown variant "+n.EnumName+"."+n.Variant)
		n.SetType(types.Unknown)
		return
	}
	en, _ := et.EnumDeclRef.(*ast.EnumDecl)
	if en != nil {
		declFields := en.Variants[idx].Fields
		n.Fields = e.reorderObjectFields(n.Fields, declFields, scope, diag.E209)
	}
	n.SetType(et)
}

func (e *Engine) inferIs(n *ast.IsExpr, scope *symbols.Scope) {
	e.inferExpr(n.Target, scope)
	n.SetType(types.Bool)

	et, ok := e.ctx.FindEnum(n.EnumName)
	if !ok {
		e.sink.Addf(diag.SeverityError, diag.E401, "typecheck", "unknown enum "+n.EnumName)
		return
	}
	idx := et.VariantIndex(n.Variant)
	if idx < 0 {
		e.sink.Addf(diag.SeverityError, diag.E402, "typecheck", "unknown variant "+n.EnumName+"."+n.Variant)
		return
	}
	fieldTypes := et.VariantFieldTypes[idx]

	if n.WholeVariantBind {
		for _, b := range n.Bindings {
			if !b.IsWildcard {
				b.ResolvedType = et
			}
		}
		return
	}
	if len(n.Bindings) != len(fieldTypes) {
		e.sink.Addf(diag.SeverityError, diag.E403, "typecheck", "pattern binding count does not match variant arity")
		return
	}
	for i, b := range n.Bindings {
		if !b.IsWildcard {
			b.ResolvedType = fieldTypes[i]
		}
	}
}
