package types

// Specialization is one monomorphic instance of a Function TypeInfo,
// created by pinning its parameter types to the concrete types observed at
// a call site (spec §3 FunctionSpecialization, §4.G). A specialization
// with Body == nil denotes an external (extern-linked) function.
type Specialization struct {
	Owner         *TypeInfo // the Function TypeInfo this specializes
	ParamTypes    []*TypeInfo
	ReturnType    *TypeInfo
	MangledName   string
	Body          interface{} // cloned *ast.Block; nil for externs
	Next          *Specialization
}

// sameArgs reports whether two parameter-type tuples are identical by
// pointer identity — spec §9: "use an interning scheme that collapses to
// pointer identity inside one TypeContext", so tuple comparison is a plain
// pointer walk.
func sameArgs(a, b []*TypeInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AddSpecialization returns an existing specialization matching argTypes or
// appends a fresh one with an empty Body slot (spec §4.G `add`). fn must be
// a KindFunction TypeInfo.
func AddSpecialization(fn *TypeInfo, argTypes []*TypeInfo, mangledName string) *Specialization {
	for s := fn.Specializations; s != nil; s = s.Next {
		if sameArgs(s.ParamTypes, argTypes) {
			return s
		}
	}
	s := &Specialization{
		Owner:       fn,
		ParamTypes:  append([]*TypeInfo(nil), argTypes...),
		MangledName: mangledName,
	}
	s.Next = fn.Specializations
	fn.Specializations = s
	return s
}

// FindSpecialization scans fn's specialization list for an exact argument
// tuple match.
func FindSpecialization(fn *TypeInfo, argTypes []*TypeInfo) *Specialization {
	for s := fn.Specializations; s != nil; s = s.Next {
		if sameArgs(s.ParamTypes, argTypes) {
			return s
		}
	}
	return nil
}

// FindSpecializationByName scans fn's specialization list by mangled name
// (spec §4.G `find_by_name_and_args`, name-only half).
func FindSpecializationByName(fn *TypeInfo, name string) *Specialization {
	for s := fn.Specializations; s != nil; s = s.Next {
		if s.MangledName == name {
			return s
		}
	}
	return nil
}

// AllSpecializations drains fn's list into a slice, in creation order
// (oldest first — the list is built head-first, so this reverses storage
// order) for deterministic iteration during lowering.
func AllSpecializations(fn *TypeInfo) []*Specialization {
	var rev []*Specialization
	for s := fn.Specializations; s != nil; s = s.Next {
		rev = append(rev, s)
	}
	out := make([]*Specialization, len(rev))
	for i, s := range rev {
		out[len(rev)-1-i] = s
	}
	return out
}

// IsExtern reports whether a specialization is a declared-but-not-defined
// external function (spec §3).
func (s *Specialization) IsExtern() bool { return s.Body == nil }
