package schema

import (
	"bytes"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
)

// Schema is a set of class declarations and the aggregates among them.
type Schema struct {
	Package    string
	Classes    []hierarchy.Class
	Aggregates []desc.Aggregate
}

// Index builds the subtype oracle of the declared classes.
func (s *Schema) Index() (*hierarchy.Index, error) {
	return hierarchy.Build(s.Classes)
}

// Lazy returns an oracle over the declared classes that asks fallback for
// any other name, so classes outside the schema can be discovered on
// demand. The first declaration of a name wins. A nil fallback resolves
// nothing.
func (s *Schema) Lazy(fallback hierarchy.Source) *hierarchy.Lazy {
	declared := make(map[string]hierarchy.Class, len(s.Classes))
	for _, c := range s.Classes {
		if _, dup := declared[c.Name]; !dup {
			declared[c.Name] = c
		}
	}
	return hierarchy.NewLazy(func(name string) (hierarchy.Class, bool) {
		if c, ok := declared[name]; ok {
			return c, true
		}
		if fallback == nil {
			return hierarchy.Class{}, false
		}
		return fallback(name)
	})
}

// Merge appends the declarations of o. Duplicates surface when the index is
// built.
func (s *Schema) Merge(o *Schema) *Schema {
	return &Schema{
		Package:    s.Package,
		Classes:    append(append([]hierarchy.Class(nil), s.Classes...), o.Classes...),
		Aggregates: append(append([]desc.Aggregate(nil), s.Aggregates...), o.Aggregates...),
	}
}

type document struct {
	Package string     `yaml:"package"`
	Classes []classDoc `yaml:"classes"`
}

type classDoc struct {
	Name      string     `yaml:"name"`
	Kind      string     `yaml:"kind"`
	Supers    []string   `yaml:"supers"`
	Constants []string   `yaml:"constants"`
	Shared    bool       `yaml:"shared"`
	Fields    []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Adapter  string `yaml:"adapter"`
	Nullable bool   `yaml:"nullable"`
}

// Load reads a YAML schema and builds its index.
func Load(path string) (*hierarchy.Index, []desc.Aggregate, error) {
	s, err := ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	idx, err := s.Index()
	if err != nil {
		return nil, nil, err
	}
	return idx, s.Aggregates, nil
}

// ReadFile reads and parses a YAML schema.
func ReadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Detail("read schema %s", path).
			Cause(err).
			Build()
	}
	return Parse(data)
}

// Parse decodes a YAML schema. Unknown keys are rejected.
func Parse(data []byte) (*Schema, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Detail("decode schema").
			Cause(err).
			Build()
	}

	declared := make(map[string]bool, len(doc.Classes))
	for _, c := range doc.Classes {
		declared[c.Name] = true
	}
	resolve := func(name string) string {
		name = desc.ResolveParcel(name)
		if doc.Package != "" && declared[name] && !strings.Contains(name, ".") {
			return doc.Package + "." + name
		}
		return name
	}

	s := &Schema{Package: doc.Package}
	for _, c := range doc.Classes {
		cls, agg, err := c.build(resolve)
		if err != nil {
			return nil, err
		}
		s.Classes = append(s.Classes, cls)
		if agg != nil {
			s.Aggregates = append(s.Aggregates, *agg)
		}
	}
	return s, nil
}

func (c classDoc) invalid(format string, args ...any) error {
	return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
		Type(c.Name).
		Detail(format, args...).
		Build()
}

func (c classDoc) build(resolve desc.Resolver) (hierarchy.Class, *desc.Aggregate, error) {
	if c.Name == "" {
		return hierarchy.Class{}, nil, c.invalid("class without a name")
	}
	kind, ok := hierarchy.ParseKind(c.Kind)
	if c.Kind == "" {
		kind, ok = hierarchy.KindClass, true
	}
	if !ok {
		return hierarchy.Class{}, nil, c.invalid("unknown kind %q", c.Kind)
	}
	switch {
	case len(c.Fields) > 0 && kind != hierarchy.KindAggregate:
		return hierarchy.Class{}, nil, c.invalid("only aggregates declare fields")
	case len(c.Constants) > 0 && kind != hierarchy.KindEnum:
		return hierarchy.Class{}, nil, c.invalid("only enums declare constants")
	case c.Shared && kind != hierarchy.KindAdapter:
		return hierarchy.Class{}, nil, c.invalid("only adapters can be shared")
	}

	name := resolve(c.Name)
	cls := hierarchy.Class{
		Name:      name,
		Kind:      kind,
		Constants: c.Constants,
		Shared:    c.Shared,
	}
	for _, s := range c.Supers {
		cls.Supers = append(cls.Supers, resolve(s))
	}
	if kind != hierarchy.KindAggregate {
		return cls, nil, nil
	}

	agg := &desc.Aggregate{Name: name}
	for _, f := range c.Fields {
		t, err := desc.ParseWith(f.Type, resolve)
		if err != nil {
			return hierarchy.Class{}, nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Owner(name).
				Path(f.Name).
				Type(f.Type).
				Cause(err).
				Build()
		}
		field := desc.Field{Name: f.Name, Type: t, Nullable: f.Nullable}
		if f.Adapter != "" {
			field.Adapter = resolve(f.Adapter)
		}
		agg.Fields = append(agg.Fields, field)
	}
	return cls, agg, nil
}
