// Package codec selects and composes the strategies that encode and decode a
// declared type against the parcel container.
//
// A Classifier maps a desc.Type to a Codec through an explicit ordered rule
// table (Rules). The first matching rule wins:
//
//	bundle           exact match of parcel.Bundle
//	aggregate        subtype of parcel.Aggregate
//	aggregate-array  one-dimensional array of aggregates
//	enum             subtype of parcel.Enum
//	static           primitives, boxed primitives, native arrays, dates, sparse bool arrays
//	compound         other arrays, list/collection/set, map, parcel.SparseArray
//	serializable     subtype of parcel.Serializable, written as an opaque blob
//
// Codecs never touch values directly. They drive an emit.Emitter against a
// ValueContext, so a codec composes with any other without knowing its internals.
// Nullable is idempotent and therefore always the outermost decorator.
package codec
