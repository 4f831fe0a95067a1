package codec

import (
	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/emit"
)

// PrimitiveCodec handles one primitive. Booleans travel as an int32 1/0 word;
// int8, int16 and uint16 are widened to an int32 word.
type PrimitiveCodec struct {
	name string
}

func (c *PrimitiveCodec) Category() Category { return CategoryPrimitive }

// Name returns the primitive identity.
func (c *PrimitiveCodec) Name() string { return c.name }

var primitiveStreams = map[string]emit.Stream{
	desc.Int32:   emit.StreamInt32,
	desc.Int64:   emit.StreamInt64,
	desc.Float32: emit.StreamFloat32,
	desc.Float64: emit.StreamFloat64,
	desc.String:  emit.StreamString,
}

func (c *PrimitiveCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	t := desc.Primitive(c.name)

	switch c.name {
	case desc.Bool:
		word := e.Local("word", int32Type)
		v := e.Local(ctx.Name(), t)
		isFalse := e.NewLabel()
		end := e.NewLabel()

		e.Read(word, ctx.Stream(), emit.StreamInt32, nil)
		e.Branch(emit.CondZero, word, isFalse)
		e.Const(v, true)
		e.Jump(end)
		e.Mark(isFalse)
		e.Const(v, false)
		e.Mark(end)
		return v

	case desc.Int8, desc.Int16, desc.Uint16:
		word := e.Local("word", int32Type)
		v := e.Local(ctx.Name(), t)
		e.Read(word, ctx.Stream(), emit.StreamInt32, nil)
		e.Invoke(v, emit.MethodNarrow, word)
		return v
	}

	v := e.Local(ctx.Name(), t)
	e.Read(v, ctx.Stream(), primitiveStreams[c.name], nil)
	return v
}

func (c *PrimitiveCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	switch c.name {
	case desc.Bool:
		word := e.Local("word", int32Type)
		isFalse := e.NewLabel()
		end := e.NewLabel()

		e.Branch(emit.CondZero, ctx.Value(), isFalse)
		e.Const(word, int32(1))
		e.Jump(end)
		e.Mark(isFalse)
		e.Const(word, int32(0))
		e.Mark(end)
		e.Write(ctx.Stream(), emit.StreamInt32, word)
		return

	case desc.Int8, desc.Int16, desc.Uint16:
		word := e.Local("word", int32Type)
		e.Invoke(word, emit.MethodWiden, ctx.Value())
		e.Write(ctx.Stream(), emit.StreamInt32, word)
		return
	}

	e.Write(ctx.Stream(), primitiveStreams[c.name], ctx.Value())
}

// nativeCodec delegates to a single container operation.
type nativeCodec struct {
	category Category
	op       emit.Stream
}

func (c *nativeCodec) Category() Category { return c.category }

func (c *nativeCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	v := e.Local(ctx.Name(), ctx.Type())
	e.Read(v, ctx.Stream(), c.op, nil)
	return v
}

func (c *nativeCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	e.Write(ctx.Stream(), c.op, ctx.Value())
}

type dateCodec struct{}

func (dateCodec) Category() Category { return CategoryDate }

func (dateCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	millis := e.Local("millis", int64Type)
	v := e.Local(ctx.Name(), ctx.Type())
	e.Read(millis, ctx.Stream(), emit.StreamInt64, nil)
	e.Invoke(v, emit.MethodFromMillis, millis)
	return v
}

func (dateCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	millis := e.Local("millis", int64Type)
	e.Invoke(millis, emit.MethodMillis, ctx.Value())
	e.Write(ctx.Stream(), emit.StreamInt64, millis)
}

type enumCodec struct {
	constants int32
}

func (c *enumCodec) Category() Category { return CategoryEnum }

func (c *enumCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	ordinal := e.Local("ordinal", int32Type)
	v := e.Local(ctx.Name(), ctx.Type())
	e.Read(ordinal, ctx.Stream(), emit.StreamInt32, nil)
	e.EnumValue(v, ctx.Type(), ordinal, c.constants)
	return v
}

func (c *enumCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	ordinal := e.Local("ordinal", int32Type)
	e.Invoke(ordinal, emit.MethodOrdinal, ctx.Value())
	e.Write(ctx.Stream(), emit.StreamInt32, ordinal)
}

type aggregateCodec struct{}

func (aggregateCodec) Category() Category { return CategoryAggregate }

func (aggregateCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	v := e.Local(ctx.Name(), ctx.Type())
	e.Read(v, ctx.Stream(), emit.StreamAggregate, ctx.Type())
	return v
}

func (aggregateCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	e.Write(ctx.Stream(), emit.StreamAggregate, ctx.Value(), ctx.Flags())
}

type aggregateArrayCodec struct{}

func (aggregateArrayCodec) Category() Category { return CategoryAggregateArray }

func (aggregateArrayCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	v := e.Local(ctx.Name(), ctx.Type())
	e.Read(v, ctx.Stream(), emit.StreamAggregateArray, ctx.Type().Elem())
	return v
}

func (aggregateArrayCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	e.Write(ctx.Stream(), emit.StreamAggregateArray, ctx.Value(), ctx.Flags())
}

type sparseArrayCodec struct{}

func (sparseArrayCodec) Category() Category { return CategorySparseArray }

func (sparseArrayCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	v := e.Local(ctx.Name(), ctx.Type())
	e.Read(v, ctx.Stream(), emit.StreamSparseArray, ctx.Type())
	return v
}

func (sparseArrayCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	e.Write(ctx.Stream(), emit.StreamSparseArray, ctx.Value())
}

type serializableCodec struct{}

func (serializableCodec) Category() Category { return CategorySerializable }

func (serializableCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	v := e.Local(ctx.Name(), ctx.Type())
	e.Read(v, ctx.Stream(), emit.StreamSerializable, ctx.Type())
	return v
}

func (serializableCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	e.Write(ctx.Stream(), emit.StreamSerializable, ctx.Value())
}

// adapterCodec delegates to a user adapter, constructed per use or fetched
// from its shared instance.
type adapterCodec struct {
	adapter *desc.Type
	shared  bool
}

func (c *adapterCodec) Category() Category { return CategoryAdapter }

func (c *adapterCodec) instance(e *emit.Emitter) emit.Slot {
	a := e.Local("adapter", c.adapter)
	if c.shared {
		e.Shared(a, c.adapter)
	} else {
		e.New(a, c.adapter, "")
	}
	return a
}

func (c *adapterCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	a := c.instance(e)
	v := e.Local(ctx.Name(), ctx.Type())
	e.Invoke(v, emit.MethodFromParcel, a, ctx.Stream())
	return v
}

func (c *adapterCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	a := c.instance(e)
	e.Invoke(emit.NoSlot, emit.MethodToParcel, a, ctx.Value(), ctx.Stream(), ctx.Flags())
}

// Adapter returns the codec of a field annotated with an adapter class.
func Adapter(adapter string, shared bool) Codec {
	return Nullable(&adapterCodec{adapter: desc.Class(adapter), shared: shared})
}
