package schema

import (
	"os"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
)

// LoadWIT reads a WIT package in JSON form, as printed by
// "wasm-tools component wit --json", and converts it with FromWIT.
func LoadWIT(path, pkg string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Detail("open WIT %s", path).
			Cause(err).
			Build()
	}
	defer f.Close()

	res, err := wit.DecodeJSON(f)
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Detail("decode WIT %s", path).
			Cause(err).
			Build()
	}
	return FromWIT(res, pkg)
}

// FromWIT converts the named records and enums of res into classes under
// pkg. Records become aggregates whose fields keep declaration order; an
// option<T> field is nullable, or boxed when T is a primitive. WIT types
// with no container counterpart map to raw classes the classifier rejects.
func FromWIT(res *wit.Resolve, pkg string) (*Schema, error) {
	c := &witConverter{pkg: pkg, names: make(map[*wit.TypeDef]string)}
	s := &Schema{Package: pkg}

	for _, td := range res.TypeDefs {
		if td.Name == nil {
			continue
		}
		switch kind := td.Kind.(type) {
		case *wit.Record:
			name := c.name(td)
			agg := desc.Aggregate{Name: name}
			for _, f := range kind.Fields {
				field := c.field(f.Name, f.Type)
				agg.Fields = append(agg.Fields, field)
			}
			s.Classes = append(s.Classes, hierarchy.Class{Name: name, Kind: hierarchy.KindAggregate})
			s.Aggregates = append(s.Aggregates, agg)
		case *wit.Enum:
			constants := make([]string, len(kind.Cases))
			for i, ec := range kind.Cases {
				constants[i] = strings.ToUpper(strings.ReplaceAll(ec.Name, "-", "_"))
			}
			s.Classes = append(s.Classes, hierarchy.Class{Name: c.name(td), Kind: hierarchy.KindEnum, Constants: constants})
		}
	}
	return s, nil
}

type witConverter struct {
	names map[*wit.TypeDef]string
	pkg   string
}

// name returns the qualified class name of a named type definition.
func (c *witConverter) name(td *wit.TypeDef) string {
	if n, ok := c.names[td]; ok {
		return n
	}
	n := pascal(*td.Name)
	if c.pkg != "" {
		n = c.pkg + "." + n
	}
	c.names[td] = n
	return n
}

func (c *witConverter) field(name string, t wit.Type) desc.Field {
	f := desc.Field{Name: camel(name)}
	if inner, ok := option(t); ok {
		f.Type = c.typ(inner)
		if f.Type.IsPrimitive() && f.Type.Name() != desc.String {
			f.Type = desc.Boxed(f.Type.Name())
		} else {
			f.Nullable = true
		}
		return f
	}
	f.Type = c.typ(t)
	return f
}

func option(t wit.Type) (wit.Type, bool) {
	td, ok := t.(*wit.TypeDef)
	if !ok {
		return nil, false
	}
	if o, ok := td.Kind.(*wit.Option); ok {
		return o.Type, true
	}
	return nil, false
}

// typ maps a WIT type to a descriptor. Unsigned types widen where a wider
// signed primitive exists; u64 shares int64.
func (c *witConverter) typ(t wit.Type) *desc.Type {
	switch t := t.(type) {
	case wit.Bool:
		return desc.Primitive(desc.Bool)
	case wit.S8:
		return desc.Primitive(desc.Int8)
	case wit.U8, wit.S16:
		return desc.Primitive(desc.Int16)
	case wit.U16:
		return desc.Primitive(desc.Uint16)
	case wit.S32, wit.Char:
		return desc.Primitive(desc.Int32)
	case wit.U32, wit.S64, wit.U64:
		return desc.Primitive(desc.Int64)
	case wit.F32:
		return desc.Primitive(desc.Float32)
	case wit.F64:
		return desc.Primitive(desc.Float64)
	case wit.String:
		return desc.Primitive(desc.String)
	case *wit.TypeDef:
		return c.typeDef(t)
	}
	return desc.Class("wit.unknown")
}

func (c *witConverter) typeDef(td *wit.TypeDef) *desc.Type {
	switch kind := td.Kind.(type) {
	case *wit.Record, *wit.Enum:
		return desc.Class(c.name(td))
	case *wit.List:
		elem := c.typ(kind.Type)
		if inner, ok := option(kind.Type); ok {
			elem = c.typ(inner)
			if elem.IsPrimitive() && elem.Name() != desc.String {
				elem = desc.Boxed(elem.Name())
			}
		}
		return desc.Parameterized(desc.List, elem)
	case *wit.Option:
		inner := c.typ(kind.Type)
		if inner.IsPrimitive() && inner.Name() != desc.String {
			return desc.Boxed(inner.Name())
		}
		return inner
	case *wit.Tuple:
		return desc.Class("wit.tuple")
	case *wit.Variant:
		return desc.Class("wit.variant")
	case *wit.Result:
		return desc.Class("wit.result")
	case *wit.Flags:
		return desc.Class("wit.flags")
	case wit.Type:
		// type alias
		return c.typ(kind)
	}
	return desc.Class("wit.resource")
}

func words(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
}

func pascal(name string) string {
	var b strings.Builder
	for _, w := range words(name) {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}

func camel(name string) string {
	p := pascal(name)
	if p == "" {
		return p
	}
	return strings.ToLower(p[:1]) + p[1:]
}
