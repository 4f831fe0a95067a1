package parcel

import (
	"fmt"

	"github.com/wippyai/parcelgen/errors"
)

// WriteAggregate writes the tag of v followed by its body. A nil v is written
// as a nil tag.
func (p *Parcel) WriteAggregate(v Aggregate, flags int32) {
	if v == nil {
		p.writeNilString()
		return
	}
	p.WriteString(v.ParcelTag())
	v.WriteToParcel(p, flags)
}

// ReadAggregate reads a tagged aggregate through the registry. A nil tag
// yields nil.
func (p *Parcel) ReadAggregate() Aggregate {
	tag, ok := p.readString()
	if !ok {
		return nil
	}
	create, found := p.registry.Lookup(tag)
	if !found {
		p.Fail(errors.NotFound(errors.PhaseDecode, "aggregate creator", tag))
		return nil
	}
	v := create(p)
	if p.err != nil {
		return nil
	}
	return v
}

// ReadAggregateAs reads a tagged aggregate and checks that it is a T.
func ReadAggregateAs[T Aggregate](p *Parcel) T {
	var zero T
	v := p.ReadAggregate()
	if v == nil {
		return zero
	}
	t, ok := v.(T)
	if !ok {
		p.Fail(errors.TypeMismatch(errors.PhaseDecode, nil, v.ParcelTag(), fmt.Sprintf("%T", zero)))
		return zero
	}
	return t
}

// WriteAggregateArray writes a count (-1 for nil) and each element tagged.
// Zero elements are written as nil tags.
func WriteAggregateArray[T interface {
	comparable
	Aggregate
}](p *Parcel, vs []T, flags int32) {
	if vs == nil {
		p.WriteInt32(-1)
		return
	}
	var zero T
	p.WriteInt32(int32(len(vs)))
	for _, v := range vs {
		if v == zero {
			p.writeNilString()
			continue
		}
		p.WriteAggregate(v, flags)
	}
}

// ReadAggregateArrayAs reads an array written by WriteAggregateArray.
func ReadAggregateArrayAs[T Aggregate](p *Parcel) []T {
	return readArray(p, "aggregate array", func() T { return ReadAggregateAs[T](p) })
}
