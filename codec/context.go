package codec

import (
	"strconv"

	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/emit"
)

// ValueContext binds the slots and type a codec works on. Forks copy; the
// parent is never modified.
type ValueContext struct {
	typ    *desc.Type
	name   string
	path   []string
	stream emit.Slot
	value  emit.Slot
	flags  emit.Slot
}

// NewContext returns the context of a top-level field.
func NewContext(stream, value, flags emit.Slot, t *desc.Type, field string) ValueContext {
	return ValueContext{
		typ:    t,
		name:   field,
		path:   []string{field},
		stream: stream,
		value:  value,
		flags:  flags,
	}
}

func (c ValueContext) Type() *desc.Type  { return c.typ }
func (c ValueContext) Stream() emit.Slot { return c.stream }
func (c ValueContext) Value() emit.Slot  { return c.value }
func (c ValueContext) Flags() emit.Slot  { return c.flags }

// Name is the base name for temporaries holding the value in scope.
func (c ValueContext) Name() string { return c.name }

// Path returns a copy of the field path.
func (c ValueContext) Path() []string {
	return append([]string(nil), c.path...)
}

func (c ValueContext) descend(t *desc.Type, name, step string) ValueContext {
	path := make([]string, len(c.path), len(c.path)+1)
	copy(path, c.path)
	c.path = append(path, step)
	c.typ = t
	c.name = name
	c.value = emit.NoSlot
	return c
}

// Typed rebinds the type in scope.
func (c ValueContext) Typed(t *desc.Type) ValueContext {
	c.typ = t
	return c
}

// WithValue rebinds the value slot.
func (c ValueContext) WithValue(s emit.Slot) ValueContext {
	c.value = s
	return c
}

// Elem descends into the element of an array.
func (c ValueContext) Elem() ValueContext {
	return c.descend(c.typ.Elem(), "elem", "[]")
}

// TypeArg descends into the i-th type argument. Map arguments are named key and val.
func (c ValueContext) TypeArg(i int) ValueContext {
	name := "elem"
	if c.typ.Name() == desc.Map {
		name = [...]string{"key", "val"}[i&1]
	}
	return c.descend(c.typ.Arg(i), name, "<"+strconv.Itoa(i)+">")
}
