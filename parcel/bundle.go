package parcel

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/wippyai/parcelgen/errors"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("parcel: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

const (
	entryBool uint8 = iota + 1
	entryInt32
	entryInt64
	entryFloat64
	entryString
	entryBytes
)

// bundleEntry is the wire form of one Bundle value. The kind keeps integer
// widths intact across the blob.
type bundleEntry struct {
	Key   string  `cbor:"1,keyasint"`
	Kind  uint8   `cbor:"2,keyasint"`
	Int   int64   `cbor:"3,keyasint,omitempty"`
	Float float64 `cbor:"4,keyasint,omitempty"`
	Str   string  `cbor:"5,keyasint,omitempty"`
	Bytes []byte  `cbor:"6,keyasint,omitempty"`
}

// Bundle is an opaque key-value bag of bool, int32, int64, float64, string
// and []byte values.
type Bundle struct {
	entries map[string]any
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{entries: make(map[string]any)}
}

func (b *Bundle) put(key string, v any) *Bundle {
	if b.entries == nil {
		b.entries = make(map[string]any)
	}
	b.entries[key] = v
	return b
}

func (b *Bundle) PutBool(key string, v bool) *Bundle       { return b.put(key, v) }
func (b *Bundle) PutInt32(key string, v int32) *Bundle     { return b.put(key, v) }
func (b *Bundle) PutInt64(key string, v int64) *Bundle     { return b.put(key, v) }
func (b *Bundle) PutFloat64(key string, v float64) *Bundle { return b.put(key, v) }
func (b *Bundle) PutString(key string, v string) *Bundle   { return b.put(key, v) }

// PutBytes stores a copy of v.
func (b *Bundle) PutBytes(key string, v []byte) *Bundle {
	return b.put(key, bytes.Clone(v))
}

// Get returns the value stored under key.
func (b *Bundle) Get(key string) (any, bool) {
	v, ok := b.entries[key]
	return v, ok
}

// Len returns the number of entries.
func (b *Bundle) Len() int { return len(b.entries) }

// Keys returns the keys in sorted order.
func (b *Bundle) Keys() []string {
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both bundles hold the same entries.
func (b *Bundle) Equal(o *Bundle) bool {
	if b == nil || o == nil {
		return b == o
	}
	if len(b.entries) != len(o.entries) {
		return false
	}
	for k, v := range b.entries {
		w, ok := o.entries[k]
		if !ok {
			return false
		}
		if bv, isBytes := v.([]byte); isBytes {
			wv, ok := w.([]byte)
			if !ok || !bytes.Equal(bv, wv) {
				return false
			}
			continue
		}
		if v != w {
			return false
		}
	}
	return true
}

func (b *Bundle) marshal() ([]byte, error) {
	entries := make([]bundleEntry, 0, len(b.entries))
	for _, k := range b.Keys() {
		e := bundleEntry{Key: k}
		switch v := b.entries[k].(type) {
		case bool:
			e.Kind = entryBool
			if v {
				e.Int = 1
			}
		case int32:
			e.Kind, e.Int = entryInt32, int64(v)
		case int64:
			e.Kind, e.Int = entryInt64, v
		case float64:
			e.Kind, e.Float = entryFloat64, v
		case string:
			e.Kind, e.Str = entryString, v
		case []byte:
			e.Kind, e.Bytes = entryBytes, v
		default:
			return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(k).
				Type(fmt.Sprintf("%T", v)).
				Detail("unsupported bundle value").
				Build()
		}
		entries = append(entries, e)
	}
	return cborEncMode.Marshal(entries)
}

func unmarshalBundle(data []byte) (*Bundle, error) {
	var entries []bundleEntry
	if err := cbor.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	b := NewBundle()
	for _, e := range entries {
		switch e.Kind {
		case entryBool:
			b.put(e.Key, e.Int != 0)
		case entryInt32:
			b.put(e.Key, int32(e.Int))
		case entryInt64:
			b.put(e.Key, e.Int)
		case entryFloat64:
			b.put(e.Key, e.Float)
		case entryString:
			b.put(e.Key, e.Str)
		case entryBytes:
			b.put(e.Key, append([]byte{}, e.Bytes...))
		default:
			return nil, fmt.Errorf("entry %q has unknown kind %d", e.Key, e.Kind)
		}
	}
	return b, nil
}

// WriteBundle writes a length-prefixed CBOR blob. A nil bundle is written as
// length -1.
func (p *Parcel) WriteBundle(b *Bundle) {
	if b == nil {
		p.WriteInt32(-1)
		return
	}
	data, err := b.marshal()
	if err != nil {
		p.Fail(err)
		return
	}
	p.writeBlob(data)
}

// ReadBundle reads a bundle written by WriteBundle.
func (p *Parcel) ReadBundle() *Bundle {
	data, ok := p.readBlob("bundle")
	if !ok {
		return nil
	}
	b, err := unmarshalBundle(data)
	if err != nil {
		p.Fail(invalidBlob("bundle", err))
		return nil
	}
	return b
}

func (p *Parcel) writeBlob(data []byte) {
	p.WriteInt32(int32(len(data)))
	p.w.WritePadded(data)
}

func (p *Parcel) readBlob(what string) ([]byte, bool) {
	n := int32(p.word(what))
	if p.err != nil || n < 0 {
		return nil, false
	}
	data := p.padded(what, int(n))
	return data, p.err == nil
}

func invalidBlob(what string, cause error) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Type(what).
		Detail("malformed blob").
		Cause(cause).
		Build()
}
