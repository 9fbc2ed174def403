package traits

import (
	"fmt"
	"testing"

	"github.com/jsa-lang/jsac/internal/types"
)

func TestBinaryOperatorTraitMapping(t *testing.T) {
	tests := []struct {
		op       string
		trait    Name
		method   string
		isTrait  bool
	}{
		{"+", Add, "add", true},
		{"-", Sub, "sub", true},
		{"*", Mul, "mul", true},
		{"/", Div, "div", true},
		{"%", Rem, "rem", true},
		{"==", Eq, "eq", true},
		{"!=", Eq, "ne", true},
		{"<", Ord, "lt", true},
		{"<=", Ord, "le", true},
		{">", Ord, "gt", true},
		{">=", Ord, "ge", true},
		{"&&", "", "", false},
		{"||", "", "", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.op), func(t *testing.T) {
			trait, method, ok := BinaryOperatorTrait(tt.op)
			if ok != tt.isTrait || trait != tt.trait || method != tt.method {
				t.Errorf("BinaryOperatorTrait(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.op, trait, method, ok, tt.trait, tt.method, tt.isTrait)
			}
		})
	}
}

func TestShortCircuitOperatorsAreNotTraits(t *testing.T) {
	if !IsShortCircuit("&&") || !IsShortCircuit("||") {
		t.Fatal("expected && and || to be short-circuit operators")
	}
	if IsShortCircuit("+") {
		t.Fatal("expected + to not be short-circuit")
	}
}

func TestPromotionIdentity(t *testing.T) {
	if Promote(types.I32, types.I32) != types.I32 {
		t.Fatal("expected promoted(T,T) = T")
	}
}

func TestPromotionDoubleWins(t *testing.T) {
	if Promote(types.I32, types.Double) != types.Double {
		t.Fatal("expected int+double to promote to double")
	}
	if Promote(types.Double, types.I32) != types.Double {
		t.Fatal("expected double+int to promote to double")
	}
}

func TestPromotionWidthAndSignedness(t *testing.T) {
	if got := Promote(types.I32, types.I64); got != types.I64 {
		t.Fatalf("expected wider width to win, got %s", got)
	}
	if got := Promote(types.I32, types.U32); got != types.U32 {
		t.Fatalf("expected unsigned to win at equal width, got %s", got)
	}
	if got := Promote(types.I32, types.I32); got != types.I32 {
		t.Fatalf("expected left to win at equal width+signedness, got %s", got)
	}
}

func TestGetBinaryMethodAndOutputAgree(t *testing.T) {
	r := NewRegistry()
	impl, ok := r.GetBinaryMethod(Add, types.I32, types.I32, "add")
	if !ok {
		t.Fatal("expected Add[I32].add to resolve")
	}
	out, ok := r.GetBinaryOutput(Add, types.I32, types.I32)
	if !ok || out != impl.AssocTypes["Output"] {
		t.Fatal("expected GetBinaryOutput to match the selected implementation's Output")
	}
	if out != types.I32 {
		t.Fatalf("expected I32 + I32 -> I32, got %s", out)
	}
}

func TestGetBinaryMethodPromotesMixedWidths(t *testing.T) {
	r := NewRegistry()
	out, ok := r.GetBinaryOutput(Add, types.I32, types.Double)
	if !ok || out != types.Double {
		t.Fatalf("expected I32+Double to resolve via Double's Add impl, got %v ok=%v", out, ok)
	}
}

func TestEnsureArrayIndexedIsIdempotent(t *testing.T) {
	r := NewRegistry()
	ctx := types.NewContext("m")
	arr := ctx.CreateArray(types.I32)

	r.EnsureArrayIndexed(arr)
	r.EnsureArrayIndexed(arr) // must not panic/duplicate

	impl, ok := r.FindImpl(Index, arr, []*types.TypeInfo{types.Usize})
	if !ok {
		t.Fatal("expected auto-implemented Index<Usize> for array type")
	}
	if impl.AssocTypes["Output"] != types.I32 {
		t.Fatal("expected Index<Usize> Output to be the element type")
	}
}

func TestResolveIndexSubstitutesViaFrom(t *testing.T) {
	r := NewRegistry()
	ctx := types.NewContext("m")
	arr := ctx.CreateArray(types.I32)

	// arr[i] where i: I32 — only Index<Usize> exists, but From<I32> for
	// Usize is registered, so resolution should substitute Usize.
	impl, substituted, ok := r.ResolveIndex(Index, arr, types.I32)
	if !ok {
		t.Fatal("expected index resolution to succeed via From-based substitution")
	}
	if substituted != types.Usize {
		t.Fatalf("expected substituted key type Usize, got %v", substituted)
	}
	if impl.AssocTypes["Output"] != types.I32 {
		t.Fatal("expected element type I32 as Output")
	}
}

func TestEnsureLengthForArrayAndString(t *testing.T) {
	r := NewRegistry()
	ctx := types.NewContext("m")
	arr := ctx.CreateArray(types.I32)

	r.EnsureLength(arr)
	if _, ok := r.FindImpl(Length, arr, nil); !ok {
		t.Fatal("expected Length auto-impl for array")
	}

	r.EnsureLength(types.Str)
	if _, ok := r.FindImpl(Length, types.Str, nil); !ok {
		t.Fatal("expected Length auto-impl for Str")
	}
}

func TestRegisterRejectsOverlap(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&Impl{Trait: Add, SelfType: types.I32, Methods: map[string]*Method{"add": {Kind: Intrinsic}}})
	if err == nil {
		t.Fatal("expected overlap error re-registering Add[I32]")
	}
}
