// Package parcelgen generates binary container codecs from declared types.
//
// Given an aggregate (an ordered list of typed fields) and a class hierarchy
// oracle, the generator classifies every field type, composes a codec for it
// and emits two programs: one that decodes the aggregate from a parcel and
// one that encodes it. Programs are abstract instruction lists; backends turn
// them into Go source or execute them directly.
//
// # Architecture Overview
//
//	parcelgen/         Generator, Procedures, lifecycle signals
//	├── desc/          Type descriptors, fields and aggregates
//	├── hierarchy/     Subtype oracle (precomputed and lazy)
//	├── codec/         Classifier, codec registry, decorators, compound codecs
//	├── emit/          Instruction emitter and programs
//	├── parcel/        Binary container runtime targeted by generated code
//	├── interp/        Program interpreter over dynamic values
//	├── gogen/         Go source backend
//	├── schema/        YAML and WIT frontends
//	├── config/        parcelgen.toml loading
//	└── errors/        Structured error types
//
// # Quick Start
//
//	idx, aggs, err := schema.Load("model.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	gen := parcelgen.New(idx)
//	procs, err := gen.GenerateAll(ctx, aggs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src, err := gogen.Render(procs, idx, gogen.Options{Package: "example"})
//
// # Classification
//
// Field types resolve in a fixed order, first match wins:
//
//  1. parcel.Bundle
//  2. subtypes of parcel.Aggregate (nested aggregates)
//  3. one-dimensional arrays of aggregates
//  4. subtypes of parcel.Enum
//  5. the static table: primitives, boxed primitives, native arrays,
//     time.Time and parcel.SparseBoolArray
//  6. other arrays, list/collection/set, map and parcel.SparseArray
//
// A field annotated with an adapter class bypasses classification. Any field
// that does not resolve rejects its whole aggregate with an
// unsupported_type error.
//
// # Wire Format
//
// All values are little-endian and 4-byte aligned. Booleans and the small
// integer types travel as one int32 word; nullable values carry an int32
// presence flag; arrays, collections and maps are prefixed by an int32
// count; enums are written by ordinal and dates as int64 Unix milliseconds.
// See package parcel for the container itself.
//
// # Concurrency
//
// Generation of one aggregate is single-threaded. GenerateAll fans out
// across aggregates with a bounded worker count; the codec registry and the
// oracle are shared read-only.
package parcelgen
