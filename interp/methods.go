package interp

import (
	"fmt"
	"reflect"
	"time"

	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/emit"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
	"github.com/wippyai/parcelgen/parcel"
)

var primitiveSlices = map[string]reflect.Type{
	desc.Bool:    reflect.TypeFor[[]bool](),
	desc.Int8:    reflect.TypeFor[[]int8](),
	desc.Int16:   reflect.TypeFor[[]int16](),
	desc.Uint16:  reflect.TypeFor[[]uint16](),
	desc.Int32:   reflect.TypeFor[[]int32](),
	desc.Int64:   reflect.TypeFor[[]int64](),
	desc.Float32: reflect.TypeFor[[]float32](),
	desc.Float64: reflect.TypeFor[[]float64](),
	desc.String:  reflect.TypeFor[[]string](),
}

var anySlice = reflect.TypeFor[[]any]()

// construct handles OpNew: collections by designated implementation, and
// adapters by class.
func (r *run) construct(in *emit.Instr) error {
	t := in.Type
	if t.Kind() == desc.KindParameterized {
		switch t.Name() {
		case desc.List, desc.Collection:
			r.slots[in.Dst] = &List{Impl: in.Name, Items: []any{}}
		case desc.Set:
			r.slots[in.Dst] = &Set{Impl: in.Name, Items: []any{}}
		case desc.Map:
			r.slots[in.Dst] = NewLinkedMap()
		default:
			return errors.New(r.phase, errors.KindUnsupportedType).
				Owner(r.prog.Name).
				Type(t.String()).
				Detail("no constructor").
				Build()
		}
		return nil
	}

	factory, ok := r.m.adapters[t.Name()]
	if !ok {
		return errors.NotFound(r.phase, "adapter factory", t.Name())
	}
	r.slots[in.Dst] = factory()
	return nil
}

func (r *run) makeArray(in *emit.Instr) error {
	n, err := arg[int32](r, in.Args[0])
	if err != nil {
		return err
	}
	// Every encoded element takes at least one word.
	if n < 0 || (r.p != nil && int(n) > r.p.Remaining()/4) {
		return errors.New(r.phase, errors.KindInvalidData).
			Owner(r.prog.Name).
			Path(r.path(in.Dst)...).
			Detail("array length %d exceeds remaining data", n).
			Build()
	}
	typ := anySlice
	if elem := in.Type.Elem(); elem != nil && elem.IsPrimitive() {
		typ = primitiveSlices[elem.Name()]
	}
	r.slots[in.Dst] = reflect.MakeSlice(typ, int(n), int(n)).Interface()
	return nil
}

func (r *run) invoke(in *emit.Instr) error {
	a := in.Args
	switch in.Method {
	case emit.MethodLen:
		n, err := r.length(a[0])
		if err != nil {
			return err
		}
		r.slots[in.Dst] = int32(n)

	case emit.MethodIndex:
		rv, i, err := r.indexed(a[0], a[1])
		if err != nil {
			return err
		}
		r.slots[in.Dst] = rv.Index(i).Interface()

	case emit.MethodSetIndex:
		rv, i, err := r.indexed(a[0], a[1])
		if err != nil {
			return err
		}
		elem := rv.Type().Elem()
		var ev reflect.Value
		if v := r.slots[a[2]]; v == nil {
			ev = reflect.Zero(elem)
		} else {
			ev = reflect.ValueOf(v)
		}
		if !ev.Type().AssignableTo(elem) {
			return r.mismatch(a[2], elem.String())
		}
		rv.Index(i).Set(ev)

	case emit.MethodAdd:
		switch c := r.slots[a[0]].(type) {
		case *List:
			c.Add(r.slots[a[1]])
		case *Set:
			c.Add(r.slots[a[1]])
		default:
			return r.mismatch(a[0], "collection")
		}

	case emit.MethodPut:
		m, err := arg[*LinkedMap](r, a[0])
		if err != nil {
			return err
		}
		m.Put(r.slots[a[1]], r.slots[a[2]])

	case emit.MethodGetField:
		obj, err := arg[*Object](r, a[0])
		if err != nil {
			return err
		}
		r.slots[in.Dst] = obj.Fields[in.Name]

	case emit.MethodBox:
		r.slots[in.Dst] = r.slots[a[0]]

	case emit.MethodUnbox:
		if r.slots[a[0]] == nil {
			return r.nilPointer(a[0])
		}
		r.slots[in.Dst] = r.slots[a[0]]

	case emit.MethodWiden:
		switch v := r.slots[a[0]].(type) {
		case int8:
			r.slots[in.Dst] = int32(v)
		case int16:
			r.slots[in.Dst] = int32(v)
		case uint16:
			r.slots[in.Dst] = int32(v)
		default:
			return r.mismatch(a[0], "int8, int16 or uint16")
		}

	case emit.MethodNarrow:
		w, err := arg[int32](r, a[0])
		if err != nil {
			return err
		}
		switch name := r.prog.Local(in.Dst).Type.Name(); name {
		case desc.Int8:
			r.slots[in.Dst] = int8(w)
		case desc.Int16:
			r.slots[in.Dst] = int16(w)
		case desc.Uint16:
			r.slots[in.Dst] = uint16(w)
		default:
			return errors.InvalidProgram(r.prog.Name, "narrow to "+name)
		}

	case emit.MethodOrdinal:
		e, err := arg[Enum](r, a[0])
		if err != nil {
			return err
		}
		r.slots[in.Dst] = e.Ordinal

	case emit.MethodEnumValue:
		return r.enumValue(in)

	case emit.MethodMillis:
		t, err := arg[time.Time](r, a[0])
		if err != nil {
			return err
		}
		r.slots[in.Dst] = t.UnixMilli()

	case emit.MethodFromMillis:
		ms, err := arg[int64](r, a[0])
		if err != nil {
			return err
		}
		r.slots[in.Dst] = time.UnixMilli(ms).UTC()

	case emit.MethodShared:
		adapter, ok := r.m.shared[in.Type.Name()]
		if !ok {
			return errors.NotFound(r.phase, "shared adapter", in.Type.Name())
		}
		r.slots[in.Dst] = adapter

	case emit.MethodFromParcel:
		adapter, err := arg[Adapter](r, a[0])
		if err != nil {
			return err
		}
		p, err := arg[*parcel.Parcel](r, a[1])
		if err != nil {
			return err
		}
		v := adapter.FromParcel(p)
		if err := p.Err(); err != nil {
			return err
		}
		r.slots[in.Dst] = norm(v)

	case emit.MethodToParcel:
		adapter, err := arg[Adapter](r, a[0])
		if err != nil {
			return err
		}
		p, err := arg[*parcel.Parcel](r, a[2])
		if err != nil {
			return err
		}
		flags, err := arg[int32](r, a[3])
		if err != nil {
			return err
		}
		adapter.ToParcel(r.slots[a[1]], p, flags)
		return p.Err()

	default:
		return errors.InvalidProgram(r.prog.Name, "unknown method "+in.Method.String())
	}
	return nil
}

func (r *run) length(s emit.Slot) (int, error) {
	switch c := r.slots[s].(type) {
	case nil:
		return 0, r.nilPointer(s)
	case *List:
		return c.Len(), nil
	case *Set:
		return c.Len(), nil
	case *LinkedMap:
		return c.Len(), nil
	}
	rv := reflect.ValueOf(r.slots[s])
	if rv.Kind() != reflect.Slice {
		return 0, r.mismatch(s, "array or collection")
	}
	return rv.Len(), nil
}

func (r *run) indexed(arr, idx emit.Slot) (reflect.Value, int, error) {
	i, err := arg[int32](r, idx)
	if err != nil {
		return reflect.Value{}, 0, err
	}
	if r.slots[arr] == nil {
		return reflect.Value{}, 0, r.nilPointer(arr)
	}
	rv := reflect.ValueOf(r.slots[arr])
	if rv.Kind() != reflect.Slice {
		return reflect.Value{}, 0, r.mismatch(arr, "array")
	}
	if i < 0 || int(i) >= rv.Len() {
		return reflect.Value{}, 0, errors.OutOfBounds(r.phase, r.path(arr), int(i), rv.Len())
	}
	return rv, int(i), nil
}

func (r *run) enumValue(in *emit.Instr) error {
	o, err := arg[int32](r, in.Args[0])
	if err != nil {
		return err
	}
	class := in.Type.Name()
	constants, ok := hierarchy.EnumConstants(r.m.oracle, class)
	if !ok {
		return errors.NotFound(r.phase, "enum", class)
	}
	if o < 0 || int(o) >= len(constants) {
		return errors.InvalidEnum(r.phase, r.path(in.Dst), o, class)
	}
	r.slots[in.Dst] = Enum{Class: class, Name: constants[o], Ordinal: o}
	return nil
}

// EnumOf returns the constant of class with the given name.
func (m *Machine) EnumOf(class, name string) (Enum, error) {
	constants, ok := hierarchy.EnumConstants(m.oracle, class)
	if !ok {
		return Enum{}, errors.NotFound(errors.PhaseEncode, "enum", class)
	}
	for i, c := range constants {
		if c == name {
			return Enum{Class: class, Name: name, Ordinal: int32(i)}, nil
		}
	}
	return Enum{}, errors.NotFound(errors.PhaseEncode, fmt.Sprintf("constant of %s", class), name)
}
