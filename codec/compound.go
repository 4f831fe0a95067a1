package codec

import (
	"github.com/wippyai/parcelgen/emit"
)

type arrayCodec struct {
	elem Codec
}

// Array returns a codec for arrays whose elements use elem. Nested arrays
// compose by passing another array codec.
func Array(elem Codec) Codec {
	return &arrayCodec{elem: elem}
}

func (c *arrayCodec) Category() Category { return CategoryArray }

func (c *arrayCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	n := e.Local("n", int32Type)
	arr := e.Local(ctx.Name(), ctx.Type())
	i := e.Local("i", int32Type)

	e.Read(n, ctx.Stream(), emit.StreamInt32, nil)
	e.MakeArray(arr, ctx.Type(), n)
	e.Loop(i, n, func() {
		v := c.elem.Decode(e, ctx.Elem())
		e.Invoke(emit.NoSlot, emit.MethodSetIndex, arr, i, v)
	})
	return arr
}

func (c *arrayCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	n := e.Local("n", int32Type)
	i := e.Local("i", int32Type)
	elem := ctx.Elem()

	e.Invoke(n, emit.MethodLen, ctx.Value())
	e.Write(ctx.Stream(), emit.StreamInt32, n)
	e.Loop(i, n, func() {
		v := e.Local(elem.Name(), elem.Type())
		e.Invoke(v, emit.MethodIndex, ctx.Value(), i)
		c.elem.Encode(e, elem.WithValue(v))
	})
}

type collectionCodec struct {
	elem Codec
	impl string
}

// Collection returns a codec for sequences and sets. Decode constructs impl and
// inserts elements in read order.
func Collection(elem Codec, impl string) Codec {
	return &collectionCodec{elem: elem, impl: impl}
}

func (c *collectionCodec) Category() Category { return CategoryCollection }

func (c *collectionCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	n := e.Local("n", int32Type)
	coll := e.Local(ctx.Name(), ctx.Type())
	i := e.Local("i", int32Type)

	e.Read(n, ctx.Stream(), emit.StreamInt32, nil)
	e.New(coll, ctx.Type(), c.impl)
	e.Loop(i, n, func() {
		v := c.elem.Decode(e, ctx.TypeArg(0))
		e.Invoke(emit.NoSlot, emit.MethodAdd, coll, v)
	})
	return coll
}

func (c *collectionCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	elem := ctx.TypeArg(0)
	n := e.Local("n", int32Type)
	v := e.Local(elem.Name(), elem.Type())

	e.Invoke(n, emit.MethodLen, ctx.Value())
	e.Write(ctx.Stream(), emit.StreamInt32, n)
	e.Range(ctx.Value(), v, func() {
		c.elem.Encode(e, elem.WithValue(v))
	})
}

type mapCodec struct {
	key  Codec
	val  Codec
	impl string
}

// Map returns a codec for maps. Encode follows the iteration order of the map
// in hand; decode always rebuilds an insertion-ordered impl, so round trips
// preserve the entry set but not necessarily the order.
func Map(key, val Codec, impl string) Codec {
	return &mapCodec{key: key, val: val, impl: impl}
}

func (c *mapCodec) Category() Category { return CategoryMap }

func (c *mapCodec) Decode(e *emit.Emitter, ctx ValueContext) emit.Slot {
	n := e.Local("n", int32Type)
	m := e.Local(ctx.Name(), ctx.Type())
	i := e.Local("i", int32Type)

	e.Read(n, ctx.Stream(), emit.StreamInt32, nil)
	e.New(m, ctx.Type(), c.impl)
	e.Loop(i, n, func() {
		k := c.key.Decode(e, ctx.TypeArg(0))
		v := c.val.Decode(e, ctx.TypeArg(1))
		e.Invoke(emit.NoSlot, emit.MethodPut, m, k, v)
	})
	return m
}

func (c *mapCodec) Encode(e *emit.Emitter, ctx ValueContext) {
	keyCtx := ctx.TypeArg(0)
	valCtx := ctx.TypeArg(1)
	n := e.Local("n", int32Type)
	k := e.Local(keyCtx.Name(), keyCtx.Type())
	v := e.Local(valCtx.Name(), valCtx.Type())

	e.Invoke(n, emit.MethodLen, ctx.Value())
	e.Write(ctx.Stream(), emit.StreamInt32, n)
	e.RangeMap(ctx.Value(), k, v, func() {
		c.key.Encode(e, keyCtx.WithValue(k))
		c.val.Encode(e, valCtx.WithValue(v))
	})
}
