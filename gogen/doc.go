// Package gogen renders generated procedures as Go source.
//
// Every aggregate gets a constructor function and two methods:
//
//	func CreateUserFromParcel(p *parcel.Parcel) *User
//	func (v *User) WriteToParcel(p *parcel.Parcel, flags int32)
//	func (*User) ParcelTag() string
//
// and is registered with parcel.Register in an init function, so nested
// reads resolve it by tag. With Options.Models set, the aggregate structs
// and the enum types they reference are declared as well.
//
// Type mapping: class-typed values are pointers (*User, *Color, *time.Time,
// *parcel.Bundle), boxed primitives are *int32 and friends, arrays and
// sequences are slices, sets are map[T]struct{} and maps are map[K]V.
// Boxed, enum and date keys are keyed by value (set<*int64> is
// map[int64]struct{}) and a nil key is dropped on insert; aggregate keys stay
// pointers. Serializable classes are user-declared types read with
// parcel.ReadSerializableAs.
// A nullable value whose Go type has no nil (a nullable string) decodes an
// absent value as the zero value.
//
// Instruction bodies are rendered one statement per instruction, with locals
// hoisted to the top of the function and forward branches as gotos.
package gogen
