// Package parcel is the binary container that generated codecs read and write.
//
// A Parcel is a flat sequence of little-endian 4-byte words:
//
//	int32, float32        one word
//	int64, float64        two words
//	string                int32 byte length, UTF-8 bytes padded to a word
//	native arrays         int32 count (-1 for nil), then elements
//	Bundle, SparseArray   int32 length, canonical CBOR blob padded to a word
//	aggregate             tag string (length -1 for nil), then its own encoding
//
// Reads past the end do not panic. The first failure is kept and returned by
// Err; every later read yields a zero value.
//
// Aggregates are created through a Registry keyed by ParcelTag. Generated code
// registers each aggregate in init.
package parcel
