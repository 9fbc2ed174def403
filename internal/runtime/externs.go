// Package runtime describes the fixed set of C-ABI runtime symbols the
// lowering pass (component H) emits calls to, and the value
// representation those calls agree on (spec §6). It declares no
// executable code of its own — it is the contract between lower and
// whatever C runtime the linker supplies, kept in one place so both
// sides of that contract read from the same names.
package runtime

import "github.com/jsa-lang/jsac/internal/types"

// Symbol names the lowering pass is allowed to call without having
// declared them in source (spec §6).
type Symbol string

const (
	SymPrintf  Symbol = "printf"
	SymPuts    Symbol = "puts"
	SymMalloc  Symbol = "malloc"
	SymCalloc  Symbol = "calloc"
	SymSprintf Symbol = "sprintf"
	SymStrcat  Symbol = "strcat"
	SymStrcpy  Symbol = "strcpy"
	SymStrlen  Symbol = "strlen"
	SymMemcpy  Symbol = "memcpy"
	SymMemcmp  Symbol = "memcmp"

	SymAlloc       Symbol = "alloc"
	SymFree        Symbol = "free"
	SymAllocString Symbol = "alloc_string"

	SymGetStdout Symbol = "get_stdout"
	SymGetStderr Symbol = "get_stderr"
	SymGetStdin  Symbol = "get_stdin"

	SymDisplayI8     Symbol = "display_i8"
	SymDisplayI16    Symbol = "display_i16"
	SymDisplayI32    Symbol = "display_i32"
	SymDisplayI64    Symbol = "display_i64"
	SymDisplayU8     Symbol = "display_u8"
	SymDisplayU16    Symbol = "display_u16"
	SymDisplayU32    Symbol = "display_u32"
	SymDisplayU64    Symbol = "display_u64"
	SymDisplayBool   Symbol = "display_bool"
	SymDisplayString Symbol = "display_string"
	SymDisplayF64    Symbol = "display_f64"
)

// DisplaySymbol picks the display_* extern matching t, per spec §6's
// "display_i8..i64, display_u8..u64, display_bool, display_string,
// display_f64" family. ok is false for a type with no display extern.
func DisplaySymbol(t *types.TypeInfo) (Symbol, bool) {
	switch {
	case t.IsBool():
		return SymDisplayBool, true
	case t.IsString():
		return SymDisplayString, true
	case t.IsDouble():
		return SymDisplayF64, true
	case t.IsInteger():
		w := t.IntWidth()
		signed := t.IsSigned()
		switch {
		case w <= 8 && signed:
			return SymDisplayI8, true
		case w <= 8:
			return SymDisplayU8, true
		case w <= 16 && signed:
			return SymDisplayI16, true
		case w <= 16:
			return SymDisplayU16, true
		case w <= 32 && signed:
			return SymDisplayI32, true
		case w <= 32:
			return SymDisplayU32, true
		case signed:
			return SymDisplayI64, true
		default:
			return SymDisplayU64, true
		}
	default:
		return "", false
	}
}

// StrLayout describes the two fields of the built-in Str value struct
// (spec §6: "a value struct { data: *u8, length: usize }"). lower reads
// these indices when it addresses a Str's fields (strField); the actual IR
// struct type is built once per module and reused.
type StrLayout struct {
	DataFieldIndex   int
	LengthFieldIndex int
}

// DefaultStrLayout is the fixed field order every module agrees on.
var DefaultStrLayout = StrLayout{DataFieldIndex: 0, LengthFieldIndex: 1}

// FormatterFieldIndex is the index of the FILE* field within the
// Formatter* struct passed to every display_* extern (spec §6: "a
// Formatter* with field 0 = FILE*").
const FormatterFieldIndex = 0
