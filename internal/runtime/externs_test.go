package runtime

import (
	"testing"

	"github.com/jsa-lang/jsac/internal/types"
)

func TestDisplaySymbolForPrimitives(t *testing.T) {
	tests := []struct {
		name string
		t    *types.TypeInfo
		want Symbol
	}{
		{"i8", types.I8, SymDisplayI8},
		{"i64", types.I64, SymDisplayI64},
		{"u8", types.U8, SymDisplayU8},
		{"u64", types.U64, SymDisplayU64},
		{"bool", types.Bool, SymDisplayBool},
		{"str", types.Str, SymDisplayString},
		{"double", types.Double, SymDisplayF64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DisplaySymbol(tt.t)
			if !ok {
				t.Fatalf("DisplaySymbol(%s): no extern found", tt.name)
			}
			if got != tt.want {
				t.Fatalf("DisplaySymbol(%s) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestDisplaySymbolUnknownHasNoExtern(t *testing.T) {
	if _, ok := DisplaySymbol(types.Unknown); ok {
		t.Fatalf("DisplaySymbol(Unknown) should have no extern")
	}
}

func TestDefaultStrLayoutFieldOrder(t *testing.T) {
	if DefaultStrLayout.DataFieldIndex != 0 || DefaultStrLayout.LengthFieldIndex != 1 {
		t.Fatalf("unexpected Str field order: %+v", DefaultStrLayout)
	}
}
