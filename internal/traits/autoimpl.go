package traits

import "github.com/jsa-lang/jsac/internal/types"

// indexCandidates is the fallback order tried when no direct Index<K>/
// RefIndex<K> implementation exists for K (spec §4.C auto-impl rule).
var indexCandidates = []*types.TypeInfo{types.Usize, types.I64, types.I32}

// EnsureArrayIndexed lazily registers a synthetic Index<Usize>/RefIndex<Usize>
// implementation for an array type the first time it is requested (spec
// §4.C: "on first request ... a synthetic intrinsic implementation is
// registered").
func (r *Registry) EnsureArrayIndexed(arrayType *types.TypeInfo) {
	if !r.autoIndexed[arrayType] {
		_ = r.Register(&Impl{
			Trait:             Index,
			SelfType:          arrayType,
			TypeParamBindings: []*types.TypeInfo{types.Usize},
			AssocTypes:        map[string]*types.TypeInfo{"Output": arrayType.ArrayOf()},
			Methods:           map[string]*Method{"index": {Kind: Intrinsic}},
		})
		r.autoIndexed[arrayType] = true
	}
	if !r.autoRefIndexed[arrayType] {
		_ = r.Register(&Impl{
			Trait:             RefIndex,
			SelfType:          arrayType,
			TypeParamBindings: []*types.TypeInfo{types.Usize},
			AssocTypes:        map[string]*types.TypeInfo{"Output": arrayType.ArrayOf()},
			Methods:           map[string]*Method{"ref_index": {Kind: Intrinsic}},
		})
		r.autoRefIndexed[arrayType] = true
	}
}

// EnsureLength lazily registers a synthetic Length implementation for an
// array or string type.
func (r *Registry) EnsureLength(self *types.TypeInfo) {
	if r.autoLengthed[self] {
		return
	}
	if !self.IsArray() && !self.IsString() {
		return
	}
	_ = r.Register(&Impl{
		Trait:      Length,
		SelfType:   self,
		AssocTypes: map[string]*types.TypeInfo{"Output": types.Usize},
		Methods:    map[string]*Method{"length": {Kind: Intrinsic}},
	})
	r.autoLengthed[self] = true
}

// ResolveIndex finds the Index (trait=Index) or RefIndex (trait=RefIndex)
// implementation to use for arrayType[keyType], auto-implementing the
// array's Index<Usize>/RefIndex<Usize> on first use. If keyType itself has
// no direct binding, it tries the candidate substitution chain
// {Usize, I64, I32}: the first candidate C for which an impl exists AND
// From<keyType> is registered for C is substituted, and the caller should
// record that conversion on the index expression (spec §4.C). The second
// return value is the substituted key type (nil if no substitution was
// needed).
func (r *Registry) ResolveIndex(trait Name, arrayType, keyType *types.TypeInfo) (*Impl, *types.TypeInfo, bool) {
	if arrayType.IsArray() {
		r.EnsureArrayIndexed(arrayType)
	}

	if impl, ok := r.FindImpl(trait, arrayType, []*types.TypeInfo{keyType}); ok {
		return impl, nil, true
	}

	for _, candidate := range indexCandidates {
		if candidate == keyType {
			continue
		}
		implForCandidate, ok := r.FindImpl(trait, arrayType, []*types.TypeInfo{candidate})
		if !ok {
			continue
		}
		if _, hasFrom := r.FindImpl(From, candidate, []*types.TypeInfo{keyType}); hasFrom {
			return implForCandidate, candidate, true
		}
	}
	return nil, nil, false
}

// RegisterFrom registers a From<Source> conversion implementation for
// target, enabling the index-coercion rule above.
func (r *Registry) RegisterFrom(target, source *types.TypeInfo) {
	_ = r.Register(&Impl{
		Trait:             From,
		SelfType:          target,
		TypeParamBindings: []*types.TypeInfo{source},
		AssocTypes:        map[string]*types.TypeInfo{"Output": target},
		Methods:           map[string]*Method{"from": {Kind: Intrinsic}},
	})
}

// registerBuiltinFromConversions seeds From<I32>/From<I64> for Usize, so
// `arr[i]` with `i: I32` and an auto-implemented `Index<Usize>` works out of
// the box (spec §4.C worked example).
func (r *Registry) registerBuiltinFromConversions() {
	r.RegisterFrom(types.Usize, types.I32)
	r.RegisterFrom(types.Usize, types.I64)
	r.RegisterFrom(types.I64, types.I32)
}
