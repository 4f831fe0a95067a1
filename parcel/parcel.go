package parcel

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/parcel/internal/binary"
)

// FlagWriteReturnValue marks a parcel written as a return value.
const FlagWriteReturnValue int32 = 1

// Aggregate is a value with a generated codec.
type Aggregate interface {
	ParcelTag() string
	WriteToParcel(p *Parcel, flags int32)
}

// Enum is an enumeration encoded by its ordinal.
type Enum interface {
	Ordinal() int32
}

// Adapter is a user-supplied codec for a single field type.
type Adapter[T any] interface {
	FromParcel(p *Parcel) T
	ToParcel(v T, p *Parcel, flags int32)
}

// Parcel is a write buffer with a read cursor.
type Parcel struct {
	err      error
	w        *binary.Writer
	r        *binary.Reader
	registry *Registry
}

// New returns an empty parcel.
func New() *Parcel {
	return &Parcel{w: binary.NewWriter(), registry: defaultRegistry}
}

// FromBytes returns a parcel that reads data from the start.
func FromBytes(data []byte) *Parcel {
	p := New()
	p.w.WriteBytes(data)
	p.Rewind()
	return p
}

// WithRegistry sets the creator registry used by ReadAggregate.
func (p *Parcel) WithRegistry(r *Registry) *Parcel {
	p.registry = r
	return p
}

// Registry returns the creator registry in use.
func (p *Parcel) Registry() *Registry { return p.registry }

// Bytes returns everything written so far.
func (p *Parcel) Bytes() []byte { return p.w.Bytes() }

// Len returns the number of bytes written.
func (p *Parcel) Len() int { return p.w.Len() }

// Rewind moves the read cursor to the start of the written data.
func (p *Parcel) Rewind() {
	p.r = binary.NewReader(p.w.Bytes())
}

// Position returns the read cursor.
func (p *Parcel) Position() int {
	if p.r == nil {
		return 0
	}
	return p.r.Position()
}

// Remaining returns the number of unread bytes.
func (p *Parcel) Remaining() int {
	if p.r == nil {
		return 0
	}
	return p.r.Remaining()
}

// Err returns the first read or decode failure.
func (p *Parcel) Err() error { return p.err }

// Fail records err unless a failure is already recorded.
func (p *Parcel) Fail(err error) {
	if p.err == nil && err != nil {
		p.err = err
	}
}

func (p *Parcel) reader() *binary.Reader {
	if p.r == nil {
		p.Rewind()
	}
	return p.r
}

func (p *Parcel) short(what string, cause error) {
	p.Fail(errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
		Type(what).
		Detail("truncated parcel at offset %d", p.Position()).
		Cause(cause).
		Build())
}

func (p *Parcel) word(what string) uint32 {
	if p.err != nil {
		return 0
	}
	v, err := p.reader().ReadU32LE()
	if err != nil {
		p.short(what, err)
		return 0
	}
	return v
}

func (p *Parcel) dword(what string) uint64 {
	if p.err != nil {
		return 0
	}
	v, err := p.reader().ReadU64LE()
	if err != nil {
		p.short(what, err)
		return 0
	}
	return v
}

func (p *Parcel) padded(what string, n int) []byte {
	if p.err != nil {
		return nil
	}
	b, err := p.reader().ReadPadded(n)
	if err != nil {
		p.short(what, err)
		return nil
	}
	return b
}

// count reads an element count; -1 means nil and is reported as ok=false.
func (p *Parcel) count(what string) (int, bool) {
	n := int32(p.word(what))
	if p.err != nil || n < 0 {
		return 0, false
	}
	// Every element takes at least one word.
	if int(n) > p.Remaining()/4 {
		p.Fail(errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Type(what).
			Detail("count %d exceeds remaining data", n).
			Build())
		return 0, false
	}
	return int(n), true
}

func (p *Parcel) WriteInt32(v int32)     { p.w.WriteU32LE(uint32(v)) }
func (p *Parcel) WriteInt64(v int64)     { p.w.WriteU64LE(uint64(v)) }
func (p *Parcel) WriteFloat32(v float32) { p.w.WriteU32LE(math.Float32bits(v)) }
func (p *Parcel) WriteFloat64(v float64) { p.w.WriteU64LE(math.Float64bits(v)) }

func (p *Parcel) ReadInt32() int32     { return int32(p.word("int32")) }
func (p *Parcel) ReadInt64() int64     { return int64(p.dword("int64")) }
func (p *Parcel) ReadFloat32() float32 { return math.Float32frombits(p.word("float32")) }
func (p *Parcel) ReadFloat64() float64 { return math.Float64frombits(p.dword("float64")) }

// WriteBool writes a boolean as an int32 1/0 word.
func (p *Parcel) WriteBool(v bool) {
	if v {
		p.WriteInt32(1)
	} else {
		p.WriteInt32(0)
	}
}

// ReadBool reads an int32 word; any non-zero value is true.
func (p *Parcel) ReadBool() bool { return p.ReadInt32() != 0 }

// WriteString writes a length-prefixed UTF-8 string.
func (p *Parcel) WriteString(s string) {
	p.WriteInt32(int32(len(s)))
	p.w.WritePadded([]byte(s))
}

// ReadString reads a string. A nil string (length -1) reads as "".
func (p *Parcel) ReadString() string {
	s, _ := p.readString()
	return s
}

func (p *Parcel) writeNilString() { p.WriteInt32(-1) }

func (p *Parcel) readString() (string, bool) {
	n := int32(p.word("string"))
	if p.err != nil || n < 0 {
		return "", false
	}
	b := p.padded("string", int(n))
	if p.err != nil {
		return "", false
	}
	if !utf8.Valid(b) {
		p.Fail(errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Type("string").
			Detail("invalid UTF-8 at offset %d", p.Position()).
			Build())
		return "", false
	}
	return string(b), true
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// EnumAt returns the constant of E with the given ordinal. It panics when the
// ordinal is outside [0, count).
func EnumAt[E ~int32](ordinal, count int32) *E {
	if ordinal < 0 || ordinal >= count {
		var zero E
		panic(fmt.Sprintf("parcel: ordinal %d out of range for %T", ordinal, zero))
	}
	e := E(ordinal)
	return &e
}
