// Package diag provides the shared diagnostic sink and the compiler's
// stable error-code taxonomy (spec §6, §7). Rendering is pluggable — the
// core only ever writes codes and messages (spec §6: "the core only
// writes codes and messages, never formats file/line itself beyond what
// the diagnostic sink renders").
package diag

// Error code constants, grouped by phase: one constant per condition, one
// doc comment line each.
const (
	// ============================================================
	// Name resolution (E1xx)
	// ============================================================

	// E101 indicates a reference to an undefined variable.
	E101 = "E101"
	// E102 indicates a call to an undefined function.
	E102 = "E102"
	// E103 indicates access to an unknown struct/enum property.
	E103 = "E103"
	// E104 indicates a reference to an unknown struct or enum type.
	E104 = "E104"
	// E105 indicates a namespaced type path that could not be resolved.
	E105 = "E105"
	// E106 indicates a cyclic import between modules.
	E106 = "E106"

	// ============================================================
	// Type checking (E2xx)
	// ============================================================

	// E201 indicates a type mismatch on assignment.
	E201 = "E201"
	// E202 indicates a type mismatch on a return statement.
	E202 = "E202"
	// E203 indicates a type mismatch on a call argument.
	E203 = "E203"
	// E204 indicates a call with the wrong number of arguments.
	E204 = "E204"
	// E205 indicates no trait implementation for the operand types.
	E205 = "E205"
	// E206 indicates an index key that cannot be converted to a usable key type.
	E206 = "E206"
	// E207 indicates an index-assignment target with no RefIndex implementation.
	E207 = "E207"
	// E208 indicates `delete` applied to a non-ref operand.
	E208 = "E208"
	// E209 indicates a struct literal missing a required field with no default.
	E209 = "E209"
	// E210 indicates a duplicate declaration in the same scope.
	E210 = "E210"
	// E211 indicates a function missing a return on some path.
	E211 = "E211"

	// ============================================================
	// Compile-time evaluation (E3xx) — includes the fixed §6 IO codes.
	// ============================================================

	// E301 indicates an @io format call whose first argument is not a string literal.
	E301 = "E301"
	// E302 indicates an @io format string with more {} placeholders than arguments (shortage).
	E302 = "E302"
	// E303 indicates an @io format string with fewer {} placeholders than arguments (excess, warning).
	E303 = "E303"
	// E304 indicates a malformed format-string call outside the above cases.
	E304 = "E304"
	// E305 indicates a circular const dependency.
	E305 = "E305"
	// E306 indicates a const expression that could not be resolved (stayed Waiting).
	E306 = "E306"
	// E307 indicates division or modulo by zero in a const expression.
	E307 = "E307"
	// E308 indicates a negative or non-integer array size.
	E308 = "E308"

	// ============================================================
	// Pattern matching (E4xx)
	// ============================================================

	// E401 indicates a pattern match against an unknown enum.
	E401 = "E401"
	// E402 indicates a pattern match against an unknown variant.
	E402 = "E402"
	// E403 indicates a binding-count mismatch in a pattern.
	E403 = "E403"
	// E404 indicates an ambiguous whole-variant bind.
	E404 = "E404"

	// ============================================================
	// Module / loader (E5xx)
	// ============================================================

	// E501 indicates a module could not be resolved to a file.
	E501 = "E501"
	// E502 indicates a cyclic import was detected while loading.
	E502 = "E502"
	// E503 indicates a module failed to parse.
	E503 = "E503"
	// E504 indicates an unknown built-in (`@`-prefixed) module.
	E504 = "E504"

	// ============================================================
	// Lowering (fatal; E9xx) — invariant violations, not user errors.
	// ============================================================

	// E901 indicates a struct type was used in lowering before being declared.
	E901 = "E901"
	// E902 indicates break/continue outside any enclosing loop.
	E902 = "E902"
)
