package hierarchy

import (
	"github.com/wippyai/parcelgen/desc"
)

// Kind is the declared kind of a class.
type Kind uint8

const (
	KindClass Kind = iota
	KindInterface
	KindEnum
	KindAggregate
	KindAdapter
	KindSerializable
)

var kindNames = [...]string{
	KindClass:        "class",
	KindInterface:    "interface",
	KindEnum:         "enum",
	KindAggregate:    "aggregate",
	KindAdapter:      "adapter",
	KindSerializable: "serializable",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind returns the kind with the given name.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Class is one class declaration.
type Class struct {
	Name string
	// Supers lists direct supertypes. Enums, aggregates and serializable
	// classes implicitly extend their marker.
	Supers []string
	// Constants is the declared constant order of an enum.
	Constants []string
	Kind      Kind
	// Shared marks an adapter that exposes a single shared instance.
	Shared bool
}

func (c Class) supers() []string {
	var marker string
	switch c.Kind {
	case KindEnum:
		marker = desc.EnumMarker
	case KindAggregate:
		marker = desc.AggregateMarker
	case KindSerializable:
		marker = desc.SerializableMarker
	default:
		return c.Supers
	}
	for _, s := range c.Supers {
		if s == marker {
			return c.Supers
		}
	}
	return append(append([]string(nil), c.Supers...), marker)
}

// Oracle answers subtype and declaration queries.
type Oracle interface {
	// IsSubtype reports whether sub is super or transitively extends it.
	IsSubtype(sub, super string) bool
	// Lookup returns the declaration of name.
	Lookup(name string) (Class, bool)
}

// EnumConstants returns the constant order of an enum class.
func EnumConstants(o Oracle, name string) ([]string, bool) {
	c, ok := o.Lookup(name)
	if !ok || c.Kind != KindEnum {
		return nil, false
	}
	return c.Constants, true
}

// SharedAdapter reports whether the adapter class exposes a shared instance.
func SharedAdapter(o Oracle, name string) bool {
	c, ok := o.Lookup(name)
	return ok && c.Shared
}
