package desc

import (
	"strings"
)

type Kind uint8

const (
	KindPrimitive Kind = iota
	KindBoxed
	KindArray
	KindClass
	KindParameterized
)

var kindNames = [...]string{
	KindPrimitive:     "primitive",
	KindBoxed:         "boxed",
	KindArray:         "array",
	KindClass:         "class",
	KindParameterized: "parameterized",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Primitive identities.
const (
	Bool    = "bool"
	Int8    = "int8"
	Int16   = "int16"
	Uint16  = "uint16"
	Int32   = "int32"
	Int64   = "int64"
	Float32 = "float32"
	Float64 = "float64"
	String  = "string"
)

var primitives = map[string]bool{
	Bool: true, Int8: true, Int16: true, Uint16: true, Int32: true,
	Int64: true, Float32: true, Float64: true, String: true,
}

// IsPrimitiveName reports whether name is one of the primitive identities.
func IsPrimitiveName(name string) bool {
	return primitives[name]
}

// Well-known class identities.
const (
	ParcelPackage = "github.com/wippyai/parcelgen/parcel"

	ParcelClass          = ParcelPackage + ".Parcel"
	BundleClass          = ParcelPackage + ".Bundle"
	SparseBoolArrayClass = ParcelPackage + ".SparseBoolArray"
	SparseArrayClass     = ParcelPackage + ".SparseArray"
	AggregateMarker      = ParcelPackage + ".Aggregate"
	EnumMarker           = ParcelPackage + ".Enum"
	SerializableMarker   = ParcelPackage + ".Serializable"
	DateClass            = "time.Time"

	Collection = "collection"
	List       = "list"
	Set        = "set"
	Map        = "map"
)

// Type is an immutable type descriptor.
type Type struct {
	elem *Type
	name string
	args []*Type
	dims int
	kind Kind
}

// Primitive returns the descriptor of a primitive.
func Primitive(name string) *Type {
	return &Type{kind: KindPrimitive, name: name}
}

// Boxed returns the nullable counterpart of a primitive.
func Boxed(name string) *Type {
	return &Type{kind: KindBoxed, name: name}
}

// Class returns a raw class descriptor.
func Class(name string) *Type {
	return &Type{kind: KindClass, name: name}
}

// Parameterized returns a generic class descriptor with ordered arguments.
func Parameterized(name string, args ...*Type) *Type {
	return &Type{kind: KindParameterized, name: name, args: append([]*Type(nil), args...)}
}

// ArrayOf returns an array whose element is elem. Dimensions accumulate.
func ArrayOf(elem *Type) *Type {
	dims := 1
	if elem.kind == KindArray {
		dims = elem.dims + 1
	}
	return &Type{kind: KindArray, elem: elem, dims: dims}
}

func (t *Type) Kind() Kind { return t.kind }

// Name returns the raw identity. Arrays have none.
func (t *Type) Name() string { return t.name }

// Elem returns the element of an array with one dimension stripped, or nil.
func (t *Type) Elem() *Type { return t.elem }

// Dims returns the dimension count of an array, 0 otherwise.
func (t *Type) Dims() int { return t.dims }

// Base returns the innermost element of an array, or t itself.
func (t *Type) Base() *Type {
	for t.kind == KindArray {
		t = t.elem
	}
	return t
}

// Args returns a copy of the type arguments.
func (t *Type) Args() []*Type {
	return append([]*Type(nil), t.args...)
}

// NumArgs returns the number of type arguments.
func (t *Type) NumArgs() int { return len(t.args) }

// Arg returns the i-th type argument, or nil when absent.
func (t *Type) Arg(i int) *Type {
	if i < 0 || i >= len(t.args) {
		return nil
	}
	return t.args[i]
}

// Raw returns the descriptor with type arguments erased.
func (t *Type) Raw() *Type {
	if t.kind != KindParameterized {
		return t
	}
	return Class(t.name)
}

func (t *Type) IsPrimitive() bool { return t.kind == KindPrimitive }
func (t *Type) IsBoxed() bool     { return t.kind == KindBoxed }
func (t *Type) IsArray() bool     { return t.kind == KindArray }

// IsClassLike reports whether t names a class, with or without arguments.
func (t *Type) IsClassLike() bool {
	return t.kind == KindClass || t.kind == KindParameterized
}

// Equal reports structural equality.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.kind != o.kind || t.name != o.name || t.dims != o.dims || len(t.args) != len(o.args) {
		return false
	}
	if t.kind == KindArray && !t.elem.Equal(o.elem) {
		return false
	}
	for i := range t.args {
		if !t.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// String returns the canonical type expression accepted by Parse.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Type) write(b *strings.Builder) {
	switch t.kind {
	case KindBoxed:
		b.WriteByte('*')
		b.WriteString(t.name)
	case KindArray:
		b.WriteString("[]")
		t.elem.write(b)
	case KindParameterized:
		b.WriteString(t.name)
		b.WriteByte('<')
		for i, a := range t.args {
			if i > 0 {
				b.WriteString(", ")
			}
			a.write(b)
		}
		b.WriteByte('>')
	default:
		b.WriteString(t.name)
	}
}

// SplitName splits a qualified class name into its package path and local name.
// "github.com/acme/model.User" yields ("github.com/acme/model", "User").
func SplitName(name string) (pkg, local string) {
	slash := strings.LastIndexByte(name, '/')
	dot := strings.LastIndexByte(name[slash+1:], '.')
	if dot < 0 {
		return "", name
	}
	dot += slash + 1
	return name[:dot], name[dot+1:]
}
