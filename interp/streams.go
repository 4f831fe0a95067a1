package interp

import (
	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/emit"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/parcel"
)

func (r *run) read(in *emit.Instr) error {
	p, err := arg[*parcel.Parcel](r, in.Args[0])
	if err != nil {
		return err
	}

	var v any
	switch in.Stream {
	case emit.StreamInt32:
		v = p.ReadInt32()
	case emit.StreamInt64:
		v = p.ReadInt64()
	case emit.StreamFloat32:
		v = p.ReadFloat32()
	case emit.StreamFloat64:
		v = p.ReadFloat64()
	case emit.StreamString:
		v = p.ReadString()
	case emit.StreamBoolArray:
		v = p.ReadBoolArray()
	case emit.StreamInt8Array:
		v = p.ReadInt8Array()
	case emit.StreamUint16Array:
		v = p.ReadUint16Array()
	case emit.StreamInt32Array:
		v = p.ReadInt32Array()
	case emit.StreamInt64Array:
		v = p.ReadInt64Array()
	case emit.StreamFloat32Array:
		v = p.ReadFloat32Array()
	case emit.StreamFloat64Array:
		v = p.ReadFloat64Array()
	case emit.StreamStringArray:
		v = p.ReadStringArray()
	case emit.StreamBundle:
		v = p.ReadBundle()
	case emit.StreamSparseBoolArray:
		v = p.ReadSparseBoolArray()
	case emit.StreamSparseArray:
		v, err = readSparse(p, in.Type)
	case emit.StreamAggregate:
		v, err = r.readAggregate(p, in.Type)
	case emit.StreamAggregateArray:
		v, err = r.readAggregateArray(p, in.Type)
	case emit.StreamSerializable:
		v, err = r.readSerializable(p, in.Type)
	default:
		err = errors.InvalidProgram(r.prog.Name, "unknown stream "+in.Stream.String())
	}
	if err != nil {
		return err
	}
	if err := p.Err(); err != nil {
		return err
	}
	r.slots[in.Dst] = norm(v)
	return nil
}

func (r *run) write(in *emit.Instr) error {
	p, err := arg[*parcel.Parcel](r, in.Args[0])
	if err != nil {
		return err
	}
	val := in.Args[1]

	switch in.Stream {
	case emit.StreamInt32:
		err = writeAs(r, val, p.WriteInt32)
	case emit.StreamInt64:
		err = writeAs(r, val, p.WriteInt64)
	case emit.StreamFloat32:
		err = writeAs(r, val, p.WriteFloat32)
	case emit.StreamFloat64:
		err = writeAs(r, val, p.WriteFloat64)
	case emit.StreamString:
		err = writeAs(r, val, p.WriteString)
	case emit.StreamBoolArray:
		err = writeOptional(r, val, p.WriteBoolArray)
	case emit.StreamInt8Array:
		err = writeOptional(r, val, p.WriteInt8Array)
	case emit.StreamUint16Array:
		err = writeOptional(r, val, p.WriteUint16Array)
	case emit.StreamInt32Array:
		err = writeOptional(r, val, p.WriteInt32Array)
	case emit.StreamInt64Array:
		err = writeOptional(r, val, p.WriteInt64Array)
	case emit.StreamFloat32Array:
		err = writeOptional(r, val, p.WriteFloat32Array)
	case emit.StreamFloat64Array:
		err = writeOptional(r, val, p.WriteFloat64Array)
	case emit.StreamStringArray:
		err = writeOptional(r, val, p.WriteStringArray)
	case emit.StreamBundle:
		err = writeOptional(r, val, p.WriteBundle)
	case emit.StreamSparseBoolArray:
		err = writeOptional(r, val, p.WriteSparseBoolArray)
	case emit.StreamSparseArray:
		err = r.writeSparse(p, val)
	case emit.StreamAggregate:
		err = r.writeAggregate(p, in.Args)
	case emit.StreamAggregateArray:
		err = r.writeAggregateArray(p, in.Args)
	case emit.StreamSerializable:
		p.WriteSerializable(r.slots[val])
	default:
		err = errors.InvalidProgram(r.prog.Name, "unknown stream "+in.Stream.String())
	}
	if err != nil {
		return err
	}
	return p.Err()
}

func writeAs[T any](r *run, s emit.Slot, write func(T)) error {
	v, err := arg[T](r, s)
	if err != nil {
		return err
	}
	write(v)
	return nil
}

func writeOptional[T any](r *run, s emit.Slot, write func(T)) error {
	v, err := optional[T](r, s)
	if err != nil {
		return err
	}
	write(v)
	return nil
}

func (r *run) flags(args []emit.Slot) (int32, error) {
	if len(args) < 3 || args[2] == emit.NoSlot {
		return 0, nil
	}
	return arg[int32](r, args[2])
}

func (r *run) checkClass(obj *Object, token *desc.Type) error {
	if token == nil || obj.Class == token.Name() || r.m.oracle.IsSubtype(obj.Class, token.Name()) {
		return nil
	}
	return errors.TypeMismatch(errors.PhaseDecode, nil, obj.Class, token.Name())
}

func (r *run) readAggregate(p *parcel.Parcel, token *desc.Type) (any, error) {
	v := p.ReadAggregate()
	if v == nil {
		return nil, nil
	}
	b, ok := v.(bound)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDecode, nil, v.ParcelTag(), "dynamic aggregate")
	}
	if err := r.checkClass(b.obj, token); err != nil {
		return nil, err
	}
	return b.obj, nil
}

func (r *run) readAggregateArray(p *parcel.Parcel, token *desc.Type) (any, error) {
	vs := parcel.ReadAggregateArrayAs[parcel.Aggregate](p)
	if vs == nil {
		return nil, nil
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		if v == nil {
			continue
		}
		b, ok := v.(bound)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseDecode, nil, v.ParcelTag(), "dynamic aggregate")
		}
		if err := r.checkClass(b.obj, token); err != nil {
			return nil, err
		}
		out[i] = b.obj
	}
	return out, nil
}

func (r *run) writeAggregate(p *parcel.Parcel, args []emit.Slot) error {
	obj, err := optional[*Object](r, args[1])
	if err != nil {
		return err
	}
	flags, err := r.flags(args)
	if err != nil {
		return err
	}
	if obj == nil {
		p.WriteAggregate(nil, flags)
		return nil
	}
	p.WriteAggregate(bound{m: r.m, obj: obj}, flags)
	return nil
}

func (r *run) writeAggregateArray(p *parcel.Parcel, args []emit.Slot) error {
	vs, err := optional[[]any](r, args[1])
	if err != nil {
		return err
	}
	flags, err := r.flags(args)
	if err != nil {
		return err
	}
	if vs == nil {
		parcel.WriteAggregateArray[parcel.Aggregate](p, nil, flags)
		return nil
	}
	aggs := make([]parcel.Aggregate, len(vs))
	for i, v := range vs {
		switch obj := v.(type) {
		case nil:
		case *Object:
			if obj != nil {
				aggs[i] = bound{m: r.m, obj: obj}
			}
		default:
			return r.mismatch(args[1], "[]*interp.Object")
		}
	}
	parcel.WriteAggregateArray(p, aggs, flags)
	return nil
}

func (r *run) readSerializable(p *parcel.Parcel, token *desc.Type) (any, error) {
	if token == nil {
		return nil, errors.InvalidProgram(r.prog.Name, "serializable read without a type")
	}
	create, ok := r.m.blobs[token.Name()]
	if !ok {
		return nil, errors.NotFound(r.phase, "serializable factory", token.Name())
	}
	v := create()
	if !p.ReadSerializable(v) {
		return nil, nil
	}
	return v, nil
}

func readSparse(p *parcel.Parcel, token *desc.Type) (any, error) {
	var elem string
	if token != nil && token.Arg(0) != nil {
		elem = token.Arg(0).Name()
	}
	switch elem {
	case desc.Bool:
		return parcel.ReadSparseArray[bool](p), nil
	case desc.Int8:
		return parcel.ReadSparseArray[int8](p), nil
	case desc.Int16:
		return parcel.ReadSparseArray[int16](p), nil
	case desc.Uint16:
		return parcel.ReadSparseArray[uint16](p), nil
	case desc.Int32:
		return parcel.ReadSparseArray[int32](p), nil
	case desc.Int64:
		return parcel.ReadSparseArray[int64](p), nil
	case desc.Float32:
		return parcel.ReadSparseArray[float32](p), nil
	case desc.Float64:
		return parcel.ReadSparseArray[float64](p), nil
	case desc.String:
		return parcel.ReadSparseArray[string](p), nil
	}
	return nil, errors.New(errors.PhaseDecode, errors.KindUnsupportedType).
		Type(token.String()).
		Detail("sparse array values must be primitive").
		Build()
}

func (r *run) writeSparse(p *parcel.Parcel, s emit.Slot) error {
	switch v := r.slots[s].(type) {
	case nil:
		parcel.WriteSparseArray[int32](p, nil)
	case *parcel.SparseArray[bool]:
		parcel.WriteSparseArray(p, v)
	case *parcel.SparseArray[int8]:
		parcel.WriteSparseArray(p, v)
	case *parcel.SparseArray[int16]:
		parcel.WriteSparseArray(p, v)
	case *parcel.SparseArray[uint16]:
		parcel.WriteSparseArray(p, v)
	case *parcel.SparseArray[int32]:
		parcel.WriteSparseArray(p, v)
	case *parcel.SparseArray[int64]:
		parcel.WriteSparseArray(p, v)
	case *parcel.SparseArray[float32]:
		parcel.WriteSparseArray(p, v)
	case *parcel.SparseArray[float64]:
		parcel.WriteSparseArray(p, v)
	case *parcel.SparseArray[string]:
		parcel.WriteSparseArray(p, v)
	default:
		return r.mismatch(s, "*parcel.SparseArray")
	}
	return nil
}
