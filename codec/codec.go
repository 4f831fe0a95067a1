package codec

import (
	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/emit"
)

// Codec emits the decode and encode procedure for one value.
type Codec interface {
	Category() Category
	// Decode emits reads from ctx.Stream and returns the slot holding the result.
	Decode(e *emit.Emitter, ctx ValueContext) emit.Slot
	// Encode emits writes of ctx.Value to ctx.Stream.
	Encode(e *emit.Emitter, ctx ValueContext)
}

var (
	int32Type = desc.Primitive(desc.Int32)
	int64Type = desc.Primitive(desc.Int64)
)

type nullable struct {
	inner Codec
}

// Nullable prefixes the wrapped codec with a presence flag. Wrapping twice is a no-op.
func Nullable(c Codec) Codec {
	if n, ok := c.(*nullable); ok {
		return n
	}
	return &nullable{inner: c}
}

// Unwrap strips the presence decorator, if any.
func Unwrap(c Codec) Codec {
	if n, ok := c.(*nullable); ok {
		return n.inner
	}
	return c
}

// IsNullable reports whether c writes a presence flag.
func IsNullable(c Codec) bool {
	_, ok := c.(*nullable)
	return ok
}

func (c *nullable) Category() Category { return CategoryNullable }

func (c *nullable) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	flag := e.Local("present", int32Type)
	e.Read(flag, ctx.Stream(), emit.StreamInt32, nil)

	v := e.Local(ctx.Name(), ctx.Type())
	absent := e.NewLabel()
	end := e.NewLabel()

	e.Branch(emit.CondZero, flag, absent)
	e.Move(v, c.inner.Decode(e, ctx))
	e.Jump(end)
	e.Mark(absent)
	e.Const(v, nil)
	e.Mark(end)
	return v
}

func (c *nullable) Encode(e *emit.Emitter, ctx ValueContext) {
	flag := e.Local("present", int32Type)
	absent := e.NewLabel()
	end := e.NewLabel()

	e.Branch(emit.CondNil, ctx.Value(), absent)
	e.Const(flag, int32(1))
	e.Write(ctx.Stream(), emit.StreamInt32, flag)
	c.inner.Encode(e, ctx)
	e.Jump(end)
	e.Mark(absent)
	e.Const(flag, int32(0))
	e.Write(ctx.Stream(), emit.StreamInt32, flag)
	e.Mark(end)
}

type boxed struct {
	prim *PrimitiveCodec
}

// Boxed adapts a primitive codec to its boxed counterpart. Callers wrap the
// result in Nullable.
func Boxed(p *PrimitiveCodec) Codec {
	return &boxed{prim: p}
}

func (c *boxed) Category() Category { return CategoryBoxed }

func (c *boxed) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	raw := c.prim.Decode(e, ctx.Typed(desc.Primitive(c.prim.name)))
	v := e.Local(ctx.Name(), desc.Boxed(c.prim.name))
	e.Invoke(v, emit.MethodBox, raw)
	return v
}

func (c *boxed) Encode(e *emit.Emitter, ctx ValueContext) {
	prim := desc.Primitive(c.prim.name)
	raw := e.Local(ctx.Name(), prim)
	e.Invoke(raw, emit.MethodUnbox, ctx.Value())
	c.prim.Encode(e, ctx.Typed(prim).WithValue(raw))
}
