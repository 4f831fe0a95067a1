package parcel

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/parcelgen/errors"
)

// Serializable marks a type written as an opaque CBOR blob instead of field
// by field. Any CBOR-encodable value can be written; the marker only drives
// classification.
type Serializable interface{}

// WriteSerializable writes v as a length-prefixed canonical CBOR blob. A nil
// v, including a typed nil pointer, is written as length -1.
func (p *Parcel) WriteSerializable(v any) {
	if v == nil {
		p.WriteInt32(-1)
		return
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		p.WriteInt32(-1)
		return
	}
	data, err := cborEncMode.Marshal(v)
	if err != nil {
		p.Fail(errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Type(fmt.Sprintf("%T", v)).
			Detail("value is not serializable").
			Cause(err).
			Build())
		return
	}
	p.writeBlob(data)
}

// ReadSerializable decodes a blob written by WriteSerializable into dst,
// which must be a non-nil pointer. It reports false for a nil blob or a
// failure.
func (p *Parcel) ReadSerializable(dst any) bool {
	data, ok := p.readBlob("serializable")
	if !ok {
		return false
	}
	if err := cbor.Unmarshal(data, dst); err != nil {
		p.Fail(invalidBlob(fmt.Sprintf("serializable %T", dst), err))
		return false
	}
	return true
}

// ReadSerializableAs reads a blob into a fresh T.
func ReadSerializableAs[T any](p *Parcel) *T {
	v := new(T)
	if !p.ReadSerializable(v) {
		return nil
	}
	return v
}
