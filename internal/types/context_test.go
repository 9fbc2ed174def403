package types

import "testing"

func TestPrimitiveSingletonsArePointerEqual(t *testing.T) {
	a, ok := InternPrimitive("i32")
	if !ok {
		t.Fatal("expected i32 to intern")
	}
	b, ok := InternPrimitive("I32")
	if !ok {
		t.Fatal("expected case-insensitive lookup")
	}
	if a != b {
		t.Fatalf("expected pointer identity, got distinct allocations")
	}
	if a != I32 {
		t.Fatalf("expected InternPrimitive to return the package singleton")
	}
}

func TestGetOrCreateRefDeduplicates(t *testing.T) {
	ctx := NewContext("m")
	r1 := ctx.GetOrCreateRef(I32, true)
	r2 := ctx.GetOrCreateRef(I32, true)
	if r1 != r2 {
		t.Fatal("expected Ref(I32, mut) to be deduplicated")
	}
	r3 := ctx.GetOrCreateRef(I32, false)
	if r3 == r1 {
		t.Fatal("expected different mutability to produce a distinct Ref type")
	}
}

func TestCreateObjectRejectsArityMismatch(t *testing.T) {
	ctx := NewContext("m")
	_, err := ctx.CreateObject("Point", []string{"x", "y"}, []*TypeInfo{I32}, nil)
	if err == nil {
		t.Fatal("expected arity mismatch error")
	}
}

func TestCreateObjectRejectsDuplicate(t *testing.T) {
	ctx := NewContext("m")
	if _, err := ctx.CreateObject("Point", []string{"x"}, []*TypeInfo{I32}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ctx.CreateObject("Point", []string{"x"}, []*TypeInfo{I32}, nil); err == nil {
		t.Fatal("expected duplicate struct error")
	}
}

func TestFindPropertyAndVariantIndex(t *testing.T) {
	ctx := NewContext("m")
	p, err := ctx.CreateObject("Point", []string{"x", "y"}, []*TypeInfo{I32, I32}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.FindProperty("y") != 1 {
		t.Fatal("expected y at index 1")
	}
	if p.FindProperty("z") != -1 {
		t.Fatal("expected missing property to report -1")
	}

	e, err := ctx.CreateEnum("Msg", []string{"Ping", "Pong"}, [][]string{{}, {"n"}}, [][]*TypeInfo{{}, {I32}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.VariantIndex("Pong") != 1 {
		t.Fatal("expected Pong at discriminant 1")
	}
	if e.VariantIndex("Nope") != -1 {
		t.Fatal("expected unknown variant to report -1")
	}
}

func TestContextPanicsAfterRelease(t *testing.T) {
	ctx := NewContext("m")
	ctx.Release()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic after Release")
		}
	}()
	ctx.CreateArray(I32)
}

func TestAddSpecializationDeduplicates(t *testing.T) {
	ctx := NewContext("m")
	fn := ctx.CreateFunction("add", []*TypeInfo{I32, I32}, I32, nil, false)
	s1 := AddSpecialization(fn, []*TypeInfo{I32, I32}, "add$i32_i32")
	s2 := AddSpecialization(fn, []*TypeInfo{I32, I32}, "add$i32_i32_other")
	if s1 != s2 {
		t.Fatal("expected identical arg-type tuples to reuse the specialization")
	}
	s3 := AddSpecialization(fn, []*TypeInfo{Double, Double}, "add$f64_f64")
	if s3 == s1 {
		t.Fatal("expected distinct arg types to produce a new specialization")
	}
	all := AllSpecializations(fn)
	if len(all) != 2 {
		t.Fatalf("expected 2 specializations, got %d", len(all))
	}
	if all[0] != s1 || all[1] != s3 {
		t.Fatal("expected specializations in creation order")
	}
}
