package types

import "fmt"

// Context is the per-module type registry: it owns every non-primitive
// TypeInfo created while type-checking one module (spec §3 "TypeContext is
// per-module"). It must be destroyed strictly before the owning module's
// AST (spec §9 teardown ordering) — Go's GC makes this a documentation
// concern rather than a code one, but Release() is provided so callers can
// make the ordering explicit and testable.
type Context struct {
	ModuleName string

	refCache   map[refKey]*TypeInfo
	arrayCache map[*TypeInfo]*TypeInfo

	structs   map[string]*TypeInfo
	enums     map[string]*TypeInfo
	functions map[string]*TypeInfo // keyed by mangled/declared name, incl. "S.m" methods
	aliases   map[string]*TypeInfo

	released bool
}

type refKey struct {
	target  *TypeInfo
	mutable bool
}

// NewContext creates an empty registry for one module.
func NewContext(moduleName string) *Context {
	return &Context{
		ModuleName: moduleName,
		refCache:   make(map[refKey]*TypeInfo),
		arrayCache: make(map[*TypeInfo]*TypeInfo),
		structs:    make(map[string]*TypeInfo),
		enums:      make(map[string]*TypeInfo),
		functions:  make(map[string]*TypeInfo),
		aliases:    make(map[string]*TypeInfo),
	}
}

// Release marks the context as torn down; further use is a programmer
// error surfaced via panic rather than silent corruption, enforcing the
// teardown ordering invariant from spec §9.
func (c *Context) Release() { c.released = true }

func (c *Context) checkAlive() {
	if c.released {
		panic(fmt.Sprintf("types.Context %q used after Release", c.ModuleName))
	}
}

// GetOrCreateRef deduplicates on (target, mutability) (spec §4.A).
func (c *Context) GetOrCreateRef(target *TypeInfo, mutable bool) *TypeInfo {
	c.checkAlive()
	k := refKey{target, mutable}
	if r, ok := c.refCache[k]; ok {
		return r
	}
	r := &TypeInfo{Kind: KindRef, RefTarget: target, RefMutable: mutable}
	c.refCache[k] = r
	return r
}

// CreateArray deduplicates on element type.
func (c *Context) CreateArray(elem *TypeInfo) *TypeInfo {
	c.checkAlive()
	if a, ok := c.arrayCache[elem]; ok {
		return a
	}
	a := &TypeInfo{Kind: KindArray, ElemType: elem}
	c.arrayCache[elem] = a
	return a
}

// CreateObject registers a new struct type. fieldNames/fieldTypes must be
// parallel (spec §3 invariant iii).
func (c *Context) CreateObject(name string, fieldNames []string, fieldTypes []*TypeInfo, declRef interface{}) (*TypeInfo, error) {
	c.checkAlive()
	if len(fieldNames) != len(fieldTypes) {
		return nil, fmt.Errorf("struct %q: field name/type arity mismatch (%d vs %d)", name, len(fieldNames), len(fieldTypes))
	}
	if _, exists := c.structs[name]; exists {
		return nil, fmt.Errorf("duplicate struct declaration: %s", name)
	}
	t := &TypeInfo{
		Kind:          KindObject,
		TypeName:      name,
		FieldNames:    fieldNames,
		FieldTypes:    fieldTypes,
		StructDeclRef: declRef,
	}
	c.structs[name] = t
	return t, nil
}

// CreateEnum registers a new enum type.
func (c *Context) CreateEnum(name string, variantNames []string, variantFieldNames [][]string, variantFieldTypes [][]*TypeInfo, declRef interface{}) (*TypeInfo, error) {
	c.checkAlive()
	if len(variantNames) != len(variantFieldNames) || len(variantNames) != len(variantFieldTypes) {
		return nil, fmt.Errorf("enum %q: variant arrays not parallel", name)
	}
	if _, exists := c.enums[name]; exists {
		return nil, fmt.Errorf("duplicate enum declaration: %s", name)
	}
	t := &TypeInfo{
		Kind:              KindEnum,
		TypeName:          name,
		VariantNames:      variantNames,
		VariantFieldNames: variantFieldNames,
		VariantFieldTypes: variantFieldTypes,
		EnumDeclRef:       declRef,
	}
	c.enums[name] = t
	return t, nil
}

// VariantIndex returns the discriminant of a variant name, or -1 (spec §3
// invariant v: "enum variant-index is the authoritative discriminant").
func (t *TypeInfo) VariantIndex(variant string) int {
	for i, n := range t.VariantNames {
		if n == variant {
			return i
		}
	}
	return -1
}

// CreateFunction registers a function type under name (mangled for
// non-extern exports, `S.m` for methods, unmangled for externs).
func (c *Context) CreateFunction(name string, params []*TypeInfo, ret *TypeInfo, bodyRef interface{}, isVariadic bool) *TypeInfo {
	c.checkAlive()
	t := &TypeInfo{
		Kind:         KindFunction,
		FuncName:     name,
		Params:       params,
		Return:       ret,
		FuncBodyRef:  bodyRef,
		IsVariadic:   isVariadic,
		IsFullyTyped: allTyped(params) && ret != nil && !ret.IsUnknown(),
	}
	c.functions[name] = t
	return t
}

func allTyped(ts []*TypeInfo) bool {
	for _, t := range ts {
		if t == nil || t.IsUnknown() {
			return false
		}
	}
	return true
}

func (c *Context) FindStruct(name string) (*TypeInfo, bool) {
	t, ok := c.structs[name]
	return t, ok
}

func (c *Context) FindEnum(name string) (*TypeInfo, bool) {
	t, ok := c.enums[name]
	return t, ok
}

func (c *Context) FindFunction(name string) (*TypeInfo, bool) {
	t, ok := c.functions[name]
	return t, ok
}

// AllFunctions returns every registered function TypeInfo (used by lowering
// to pre-declare prototypes, spec §4.H).
func (c *Context) AllFunctions() []*TypeInfo {
	out := make([]*TypeInfo, 0, len(c.functions))
	for _, f := range c.functions {
		out = append(out, f)
	}
	return out
}

// AllStructs returns every registered struct TypeInfo.
func (c *Context) AllStructs() []*TypeInfo {
	out := make([]*TypeInfo, 0, len(c.structs))
	for _, s := range c.structs {
		out = append(out, s)
	}
	return out
}

// AllEnums returns every registered enum TypeInfo (used by lowering to
// pre-declare the tagged-union IR representation, spec §4.H).
func (c *Context) AllEnums() []*TypeInfo {
	out := make([]*TypeInfo, 0, len(c.enums))
	for _, e := range c.enums {
		out = append(out, e)
	}
	return out
}

// SetAlias / ResolveAlias support `type Alias = T;`-style indirection if the
// surface language grows one; unused built-ins resolve to themselves.
func (c *Context) SetAlias(name string, target *TypeInfo) {
	c.checkAlive()
	c.aliases[name] = target
}

func (c *Context) ResolveAlias(t *TypeInfo) *TypeInfo {
	if t == nil || t.Kind != KindObject && t.Kind != KindEnum {
		return t
	}
	if a, ok := c.aliases[t.TypeName]; ok {
		return a
	}
	return t
}
