package codec

import (
	"sort"
	"sync"

	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/emit"
)

// Registry is the static table of codecs keyed by canonical type expression.
// It is read-only after construction.
type Registry struct {
	codecs     map[string]Codec
	primitives map[string]*PrimitiveCodec
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, built on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = newRegistry()
	})
	return defaultRegistry
}

var nativeArrays = map[string]emit.Stream{
	desc.Bool:    emit.StreamBoolArray,
	desc.Int8:    emit.StreamInt8Array,
	desc.Uint16:  emit.StreamUint16Array,
	desc.Int32:   emit.StreamInt32Array,
	desc.Int64:   emit.StreamInt64Array,
	desc.Float32: emit.StreamFloat32Array,
	desc.Float64: emit.StreamFloat64Array,
	desc.String:  emit.StreamStringArray,
}

func newRegistry() *Registry {
	r := &Registry{
		codecs:     make(map[string]Codec),
		primitives: make(map[string]*PrimitiveCodec),
	}

	for _, name := range []string{
		desc.Bool, desc.Int8, desc.Int16, desc.Uint16, desc.Int32,
		desc.Int64, desc.Float32, desc.Float64, desc.String,
	} {
		p := &PrimitiveCodec{name: name}
		r.primitives[name] = p
		r.codecs[desc.Primitive(name).String()] = p
		if name != desc.String {
			r.codecs[desc.Boxed(name).String()] = Nullable(Boxed(p))
		}
	}

	for name, op := range nativeArrays {
		r.codecs[desc.ArrayOf(desc.Primitive(name)).String()] = &nativeCodec{category: CategoryNative, op: op}
	}

	r.codecs[desc.DateClass] = Nullable(dateCodec{})
	r.codecs[desc.SparseBoolArrayClass] = &nativeCodec{category: CategorySparseBoolArray, op: emit.StreamSparseBoolArray}
	return r
}

// Lookup returns the codec registered for exactly t.
func (r *Registry) Lookup(t *desc.Type) (Codec, bool) {
	c, ok := r.codecs[t.String()]
	return c, ok
}

// Primitive returns the interned codec of a primitive.
func (r *Registry) Primitive(name string) (*PrimitiveCodec, bool) {
	p, ok := r.primitives[name]
	return p, ok
}

// Keys returns the registered type expressions, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
