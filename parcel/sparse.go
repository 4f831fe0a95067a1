package parcel

import (
	"reflect"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/wippyai/parcelgen/errors"
)

// sparse keeps values ordered by ascending int32 key.
type sparse[T any] struct {
	keys   []int32
	values []T
}

func (s *sparse[T]) search(key int32) int {
	return sort.Search(len(s.keys), func(i int) bool { return s.keys[i] >= key })
}

// Put sets the value of key.
func (s *sparse[T]) Put(key int32, v T) {
	i := s.search(key)
	if i < len(s.keys) && s.keys[i] == key {
		s.values[i] = v
		return
	}
	s.keys = append(s.keys, 0)
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = key

	var zero T
	s.values = append(s.values, zero)
	copy(s.values[i+1:], s.values[i:])
	s.values[i] = v
}

// Get returns the value of key.
func (s *sparse[T]) Get(key int32) (T, bool) {
	i := s.search(key)
	if i < len(s.keys) && s.keys[i] == key {
		return s.values[i], true
	}
	var zero T
	return zero, false
}

// Len returns the number of entries.
func (s *sparse[T]) Len() int { return len(s.keys) }

// KeyAt returns the i-th smallest key.
func (s *sparse[T]) KeyAt(i int) int32 { return s.keys[i] }

// ValueAt returns the value of the i-th smallest key.
func (s *sparse[T]) ValueAt(i int) T { return s.values[i] }

func (s *sparse[T]) equal(o *sparse[T], eq func(a, b T) bool) bool {
	if len(s.keys) != len(o.keys) {
		return false
	}
	for i := range s.keys {
		if s.keys[i] != o.keys[i] || !eq(s.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

func (s *sparse[T]) validate() bool {
	if len(s.keys) != len(s.values) {
		return false
	}
	for i := 1; i < len(s.keys); i++ {
		if s.keys[i] <= s.keys[i-1] {
			return false
		}
	}
	return true
}

// SparseBoolArray maps int32 keys to booleans.
type SparseBoolArray struct {
	sparse[bool]
}

// NewSparseBoolArray returns an empty array.
func NewSparseBoolArray() *SparseBoolArray { return &SparseBoolArray{} }

// Equal compares entries positionally by key.
func (s *SparseBoolArray) Equal(o *SparseBoolArray) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.equal(&o.sparse, func(a, b bool) bool { return a == b })
}

// WriteSparseBoolArray writes a count (-1 for nil) then key, value word pairs.
func (p *Parcel) WriteSparseBoolArray(s *SparseBoolArray) {
	if s == nil {
		p.WriteInt32(-1)
		return
	}
	p.WriteInt32(int32(s.Len()))
	for i := range s.keys {
		p.WriteInt32(s.keys[i])
		p.WriteBool(s.values[i])
	}
}

// ReadSparseBoolArray reads an array written by WriteSparseBoolArray.
func (p *Parcel) ReadSparseBoolArray() *SparseBoolArray {
	n, ok := p.count("sparse bool array")
	if !ok {
		return nil
	}
	s := NewSparseBoolArray()
	for i := 0; i < n && p.err == nil; i++ {
		key := p.ReadInt32()
		s.Put(key, p.ReadBool())
	}
	if p.err != nil {
		return nil
	}
	return s
}

// SparseArray maps int32 keys to values of T.
type SparseArray[T any] struct {
	sparse[T]
}

// NewSparseArray returns an empty array.
func NewSparseArray[T any]() *SparseArray[T] { return &SparseArray[T]{} }

// Equal compares entries positionally by key.
func (s *SparseArray[T]) Equal(o *SparseArray[T]) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.equal(&o.sparse, func(a, b T) bool { return reflect.DeepEqual(a, b) })
}

type sparseBlob[T any] struct {
	Keys   []int32 `cbor:"1,keyasint"`
	Values []T     `cbor:"2,keyasint"`
}

// WriteSparseArray writes a length-prefixed CBOR blob. A nil array is written
// as length -1.
func WriteSparseArray[T any](p *Parcel, s *SparseArray[T]) {
	if s == nil {
		p.WriteInt32(-1)
		return
	}
	data, err := cborEncMode.Marshal(sparseBlob[T]{Keys: s.keys, Values: s.values})
	if err != nil {
		p.Fail(errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Type("sparse array").
			Cause(err).
			Build())
		return
	}
	p.writeBlob(data)
}

// ReadSparseArray reads an array written by WriteSparseArray.
func ReadSparseArray[T any](p *Parcel) *SparseArray[T] {
	data, ok := p.readBlob("sparse array")
	if !ok {
		return nil
	}
	var blob sparseBlob[T]
	if err := cbor.Unmarshal(data, &blob); err != nil {
		p.Fail(invalidBlob("sparse array", err))
		return nil
	}
	s := &SparseArray[T]{sparse: sparse[T]{keys: blob.Keys, values: blob.Values}}
	if !s.validate() {
		p.Fail(errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Type("sparse array").
			Detail("keys not strictly ascending or count mismatch").
			Build())
		return nil
	}
	return s
}
