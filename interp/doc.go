// Package interp executes emitted programs against a parcel.
//
// Values are dynamic: aggregates are *Object, enum constants are Enum,
// sequences are *List, sets are *Set and maps are *LinkedMap. Primitives keep
// their Go type (int32, string, ...), boxed primitives are the same values
// with nil standing for absence, dates are time.Time. Arrays of primitives
// are typed slices ([]int32, [][]int32 is []any of []int32); all other arrays
// are []any.
//
// A Machine is loaded with the decode and encode programs of every aggregate
// it should handle. Nested aggregates travel through the parcel's tagged
// object path, resolved by a registry private to the machine.
//
//	m := interp.New(index)
//	m.Load(procs.Decode, procs.Encode)
//	data, err := m.Encode(&interp.Object{Class: "example.User", Fields: ...})
//	obj, err := m.Decode("example.User", data)
package interp
