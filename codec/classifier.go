package codec

import (
	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/emit"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
)

// Rule is one step of the classification order. Match returns a nil codec and
// nil error when the rule does not apply.
type Rule struct {
	Match func(c *Classifier, t *desc.Type) (Codec, error)
	Name  string
}

var rules []Rule

// Compound matching recurses through Classify, so the table is set up in init.
func init() {
	rules = []Rule{
		{Name: "bundle", Match: matchBundle},
		{Name: "aggregate", Match: matchAggregate},
		{Name: "aggregate-array", Match: matchAggregateArray},
		{Name: "enum", Match: matchEnum},
		{Name: "static", Match: matchStatic},
		{Name: "compound", Match: matchCompound},
		{Name: "serializable", Match: matchSerializable},
	}
}

// Rules returns the classification order.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Classifier resolves descriptors to codecs. It holds no mutable state and is
// safe for concurrent use when its oracle is.
type Classifier struct {
	oracle   hierarchy.Oracle
	registry *Registry
	defaults Defaults
}

// NewClassifier returns a classifier over oracle. Empty implementation names
// fall back to DefaultImplementations.
func NewClassifier(oracle hierarchy.Oracle, defaults Defaults) *Classifier {
	return &Classifier{
		oracle:   oracle,
		registry: Default(),
		defaults: defaults.WithFallback(),
	}
}

// Defaults returns the designated implementations in use.
func (c *Classifier) Defaults() Defaults { return c.defaults }

// Classify returns the codec for a value of type t.
func (c *Classifier) Classify(t *desc.Type) (Codec, error) {
	_, codec, err := c.Match(t)
	return codec, err
}

// Match returns the codec for t together with the name of the rule that
// selected it.
func (c *Classifier) Match(t *desc.Type) (string, Codec, error) {
	if t == nil {
		return "", nil, errors.New(errors.PhaseClassify, errors.KindUnsupportedType).
			Detail("missing type").
			Build()
	}
	for _, r := range rules {
		codec, err := r.Match(c, t)
		if err != nil {
			return r.Name, nil, err
		}
		if codec != nil {
			return r.Name, codec, nil
		}
	}
	return "", nil, unsupported(t)
}

func unsupported(t *desc.Type) *errors.Error {
	return errors.New(errors.PhaseClassify, errors.KindUnsupportedType).
		Type(t.String()).
		Detail("no codec matches").
		Build()
}

// Resolve returns the codec of a field of owner. An adapter annotation bypasses
// classification. Nullable fields get a single outermost presence flag.
// Failures are reported as errors.UnsupportedType against the field.
func (c *Classifier) Resolve(owner string, f desc.Field) (Codec, error) {
	if f.Adapter != "" {
		cls, ok := c.oracle.Lookup(f.Adapter)
		if !ok || cls.Kind != hierarchy.KindAdapter {
			err := errors.UnsupportedType(owner, f.Name, f.Type.String())
			err.Detail = "adapter " + f.Adapter + " is not a declared adapter class"
			return nil, err
		}
		return Adapter(f.Adapter, cls.Shared), nil
	}

	codec, err := c.Classify(f.Type)
	if err != nil {
		typ := f.Type.String()
		wrapped := errors.UnsupportedType(owner, f.Name, typ)
		if inner, ok := err.(*errors.Error); !ok || inner.Type != typ {
			wrapped.Cause = err
		}
		return nil, wrapped
	}
	if f.Nullable {
		codec = Nullable(codec)
	}
	return codec, nil
}

func (c *Classifier) isSubtype(t *desc.Type, super string) bool {
	return t.IsClassLike() && c.oracle.IsSubtype(t.Name(), super)
}

func matchBundle(c *Classifier, t *desc.Type) (Codec, error) {
	if t.Kind() == desc.KindClass && t.Name() == desc.BundleClass {
		return &nativeCodec{category: CategoryBundle, op: emit.StreamBundle}, nil
	}
	return nil, nil
}

func matchAggregate(c *Classifier, t *desc.Type) (Codec, error) {
	if c.isSubtype(t, desc.AggregateMarker) {
		return Nullable(aggregateCodec{}), nil
	}
	return nil, nil
}

func matchAggregateArray(c *Classifier, t *desc.Type) (Codec, error) {
	if t.IsArray() && t.Dims() == 1 && c.isSubtype(t.Elem(), desc.AggregateMarker) {
		return aggregateArrayCodec{}, nil
	}
	return nil, nil
}

func matchEnum(c *Classifier, t *desc.Type) (Codec, error) {
	if !c.isSubtype(t, desc.EnumMarker) {
		return nil, nil
	}
	constants, _ := hierarchy.EnumConstants(c.oracle, t.Name())
	return Nullable(&enumCodec{constants: int32(len(constants))}), nil
}

func matchStatic(c *Classifier, t *desc.Type) (Codec, error) {
	if codec, ok := c.registry.Lookup(t); ok {
		return codec, nil
	}
	return nil, nil
}

func matchCompound(c *Classifier, t *desc.Type) (Codec, error) {
	if t.IsArray() {
		elem, err := c.Classify(t.Elem())
		if err != nil {
			return nil, err
		}
		return Array(elem), nil
	}

	if t.Kind() != desc.KindParameterized {
		return nil, nil
	}

	switch t.Name() {
	case desc.List, desc.Collection, desc.Set:
		if t.NumArgs() != 1 {
			return nil, arity(t, 1)
		}
		elem, err := c.Classify(t.Arg(0))
		if err != nil {
			return nil, err
		}
		impl := c.defaults.Sequence
		if t.Name() == desc.Set {
			impl = c.defaults.Set
		}
		return Collection(elem, impl), nil

	case desc.Map:
		if t.NumArgs() != 2 {
			return nil, arity(t, 2)
		}
		key, err := c.Classify(t.Arg(0))
		if err != nil {
			return nil, err
		}
		val, err := c.Classify(t.Arg(1))
		if err != nil {
			return nil, err
		}
		return Map(key, val, c.defaults.Map), nil

	case desc.SparseArrayClass:
		if t.NumArgs() != 1 {
			return nil, arity(t, 1)
		}
		// Sparse values travel inside an opaque blob, so only primitives qualify.
		if !t.Arg(0).IsPrimitive() {
			return nil, unsupported(t)
		}
		return sparseArrayCodec{}, nil
	}
	return nil, nil
}

// matchSerializable runs last; any more specific category wins.
func matchSerializable(c *Classifier, t *desc.Type) (Codec, error) {
	if c.isSubtype(t, desc.SerializableMarker) {
		return Nullable(serializableCodec{}), nil
	}
	return nil, nil
}

func arity(t *desc.Type, want int) error {
	return errors.New(errors.PhaseClassify, errors.KindUnsupportedType).
		Type(t.String()).
		Detail("%s takes %d type arguments, got %d", t.Name(), want, t.NumArgs()).
		Build()
}
