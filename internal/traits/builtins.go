package traits

import "github.com/jsa-lang/jsac/internal/types"

// registerBuiltins pre-registers the arithmetic/comparison/bitwise
// intrinsic implementations for every primitive numeric type plus Bool and
// Str, so GetBinaryMethod can resolve an operator purely from the promoted
// self type (spec §4.C).
func (r *Registry) registerBuiltins() {
	arithmetic := []struct {
		trait  Name
		method string
	}{
		{Add, "add"}, {Sub, "sub"}, {Mul, "mul"}, {Div, "div"}, {Rem, "rem"},
		{BitAnd, "and"}, {BitOr, "or"}, {BitXor, "xor"}, {Shl, "shl"}, {Shr, "shr"},
		{AddAssign, "add_assign"}, {SubAssign, "sub_assign"},
		{MulAssign, "mul_assign"}, {DivAssign, "div_assign"},
	}
	for _, self := range []*types.TypeInfo{
		types.I8, types.I16, types.I32, types.I64,
		types.U8, types.U16, types.U32, types.U64, types.Usize, types.Double,
	} {
		for _, a := range arithmetic {
			if (a.trait == BitAnd || a.trait == BitOr || a.trait == BitXor || a.trait == Shl || a.trait == Shr) && self.IsDouble() {
				continue // bitwise ops don't apply to floating point
			}
			_ = r.Register(&Impl{
				Trait:      a.trait,
				SelfType:   self,
				AssocTypes: map[string]*types.TypeInfo{"Output": self},
				Methods:    map[string]*Method{a.method: {Kind: Intrinsic}},
			})
		}
		_ = r.Register(&Impl{
			Trait:      Ord,
			SelfType:   self,
			AssocTypes: map[string]*types.TypeInfo{"Output": types.Bool},
			Methods: map[string]*Method{
				"lt": {Kind: Intrinsic}, "le": {Kind: Intrinsic},
				"gt": {Kind: Intrinsic}, "ge": {Kind: Intrinsic},
			},
		})
		_ = r.Register(&Impl{
			Trait:      Eq,
			SelfType:   self,
			AssocTypes: map[string]*types.TypeInfo{"Output": types.Bool},
			Methods:    map[string]*Method{"eq": {Kind: Intrinsic}, "ne": {Kind: Intrinsic}},
		})
		_ = r.Register(&Impl{
			Trait:      Neg,
			SelfType:   self,
			AssocTypes: map[string]*types.TypeInfo{"Output": self},
			Methods:    map[string]*Method{"neg": {Kind: Intrinsic}},
		})
		_ = r.Register(&Impl{
			Trait:      Display,
			SelfType:   self,
			AssocTypes: map[string]*types.TypeInfo{"Output": types.Void},
			Methods:    map[string]*Method{"display": {Kind: Intrinsic}},
		})
	}

	_ = r.Register(&Impl{
		Trait:      Eq,
		SelfType:   types.Bool,
		AssocTypes: map[string]*types.TypeInfo{"Output": types.Bool},
		Methods:    map[string]*Method{"eq": {Kind: Intrinsic}, "ne": {Kind: Intrinsic}},
	})
	_ = r.Register(&Impl{
		Trait:      Not,
		SelfType:   types.Bool,
		AssocTypes: map[string]*types.TypeInfo{"Output": types.Bool},
		Methods:    map[string]*Method{"not": {Kind: Intrinsic}},
	})
	_ = r.Register(&Impl{
		Trait:      Display,
		SelfType:   types.Bool,
		AssocTypes: map[string]*types.TypeInfo{"Output": types.Void},
		Methods:    map[string]*Method{"display": {Kind: Intrinsic}},
	})

	// Str: equality compares length then memcmp (spec §6), concatenation
	// via Add (alloc_string + two memcpys, realized at lowering time).
	_ = r.Register(&Impl{
		Trait:      Eq,
		SelfType:   types.Str,
		AssocTypes: map[string]*types.TypeInfo{"Output": types.Bool},
		Methods:    map[string]*Method{"eq": {Kind: Intrinsic}, "ne": {Kind: Intrinsic}},
	})
	_ = r.Register(&Impl{
		Trait:      Add,
		SelfType:   types.Str,
		AssocTypes: map[string]*types.TypeInfo{"Output": types.Str},
		Methods:    map[string]*Method{"add": {Kind: Intrinsic}},
	})
	_ = r.Register(&Impl{
		Trait:      Display,
		SelfType:   types.Str,
		AssocTypes: map[string]*types.TypeInfo{"Output": types.Void},
		Methods:    map[string]*Method{"display": {Kind: Intrinsic}},
	})
}

// GetBinaryMethod selects the implementation whose method methodName is
// present, resolving left/right to a single self type via Promote (spec
// §4.C `get_binary_method`).
func (r *Registry) GetBinaryMethod(trait Name, left, right *types.TypeInfo, methodName string) (*Impl, bool) {
	self := Promote(left, right)
	impl, ok := r.FindImpl(trait, self, nil)
	if !ok {
		return nil, false
	}
	if _, has := impl.Methods[methodName]; !has {
		return nil, false
	}
	return impl, true
}

// GetBinaryOutput returns the Output associated type of the implementation
// GetBinaryMethod would select for any method on it (spec §4.C
// `get_binary_output`; Testable Properties "Trait output" law).
func (r *Registry) GetBinaryOutput(trait Name, left, right *types.TypeInfo) (*types.TypeInfo, bool) {
	self := Promote(left, right)
	impl, ok := r.FindImpl(trait, self, nil)
	if !ok {
		return nil, false
	}
	out, ok := impl.AssocTypes["Output"]
	return out, ok
}
