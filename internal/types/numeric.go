package types

// NumericCompat is the fixed target-size compatibility table (spec
// §4.1(b), §1 "no implicit numeric coercions beyond a fixed target-size
// compatibility table"). It is intentionally small and closed — this
// is the one escape hatch from "distinct constructor names never
// unify" (spec invariant 5).
//
// Grounded on the teacher's numeric defaulting tower
// (internal/types/defaulting.go's Int/Float handling), generalized to
// named target-size pairs the way a systems-facing ADT language (one
// with C-interop primitives) would need.
var NumericCompat = map[[2]string]bool{
	{"U32", "CUInt"}:          true,
	{"CUInt", "U32"}:          true,
	{"Usize", "CULongLong"}:   true,
	{"CULongLong", "Usize"}:   true,
	{"I32", "CInt"}:           true,
	{"CInt", "I32"}:           true,
	{"I64", "CLongLong"}:      true,
	{"CLongLong", "I64"}:      true,
}

// NumericCompatible reports whether two distinct constructor names are
// declared interchangeable by the compatibility table.
func NumericCompatible(a, b string) bool {
	if a == b {
		return true
	}
	return NumericCompat[[2]string{a, b}]
}
