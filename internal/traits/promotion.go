package traits

import "github.com/jsa-lang/jsac/internal/types"

// Promote implements the C#-style integer-promotion policy for built-in
// numeric traits (spec §4.C): same type is identity; any operand paired
// with Double promotes to Double; between two integers the wider width
// wins; at equal width the unsigned type wins; at equal width and
// signedness the left operand's type wins.
func Promote(left, right *types.TypeInfo) *types.TypeInfo {
	if left == right {
		return left
	}
	if left.IsDouble() || right.IsDouble() {
		return types.Double
	}
	if left.IsInteger() && right.IsInteger() {
		lw, rw := left.IntWidth(), right.IntWidth()
		switch {
		case lw > rw:
			return left
		case rw > lw:
			return right
		default: // same width
			if !left.IsSigned() {
				return left
			}
			if !right.IsSigned() {
				return right
			}
			return left
		}
	}
	// Bool/Str/etc: no numeric promotion applies; same-type identity
	// already handled above, so a mismatch here is a type error the
	// caller (infer) must report — Promote just returns left as the
	// best-effort self type for trait lookup.
	return left
}

func numericAndBoolTypes() []*types.TypeInfo {
	return []*types.TypeInfo{
		types.I8, types.I16, types.I32, types.I64,
		types.U8, types.U16, types.U32, types.U64, types.Usize,
		types.Double, types.Bool,
	}
}
