package interp

import (
	"fmt"
	"reflect"

	"github.com/wippyai/parcelgen/emit"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/parcel"
)

// run is the activation of one program.
type run struct {
	m     *Machine
	prog  *emit.Program
	p     *parcel.Parcel
	frame *[]any
	slots []any
	phase errors.Phase
}

func (m *Machine) start(prog *emit.Program, p *parcel.Parcel) *run {
	frame := getFrame(len(prog.Locals))
	phase := errors.PhaseDecode
	if prog.Kind == emit.Encode {
		phase = errors.PhaseEncode
	}
	return &run{m: m, prog: prog, p: p, frame: frame, slots: *frame, phase: phase}
}

func (r *run) release() {
	putFrame(r.frame)
	r.frame, r.slots = nil, nil
}

func (r *run) path(s emit.Slot) []string {
	return []string{r.prog.Local(s).Name}
}

func (r *run) mismatch(s emit.Slot, want string) error {
	return errors.New(r.phase, errors.KindTypeMismatch).
		Owner(r.prog.Name).
		Path(r.path(s)...).
		Type(fmt.Sprintf("%T", r.slots[s])).
		Detail("expected %s", want).
		Build()
}

func (r *run) nilPointer(s emit.Slot) error {
	err := errors.NilPointer(r.phase, r.path(s), r.prog.Local(s).Type.String())
	err.Owner = r.prog.Name
	return err
}

// arg returns slot s as a T.
func arg[T any](r *run, s emit.Slot) (T, error) {
	v, ok := r.slots[s].(T)
	if !ok {
		if r.slots[s] == nil {
			return v, r.nilPointer(s)
		}
		return v, r.mismatch(s, fmt.Sprintf("%T", v))
	}
	return v, nil
}

// optional returns slot s as a T, with nil mapped to the zero T.
func optional[T any](r *run, s emit.Slot) (T, error) {
	if r.slots[s] == nil {
		var zero T
		return zero, nil
	}
	return arg[T](r, s)
}

// block executes body. Labels are block-local and forward-only, so a taken
// branch resumes after the matching mark later in the same body.
func (r *run) block(body []emit.Instr) error {
	for i := 0; i < len(body); i++ {
		in := &body[i]
		var err error
		switch in.Op {
		case emit.OpMark:
		case emit.OpJump:
			i, err = r.seek(body, i, in.Label)
		case emit.OpBranch:
			if r.cond(in.Cond, r.slots[in.Args[0]]) {
				i, err = r.seek(body, i, in.Label)
			}
		case emit.OpLoop:
			err = r.loop(in)
		case emit.OpRange:
			err = r.rangeOver(in)
		case emit.OpRangeMap:
			err = r.rangeMap(in)
		default:
			err = r.step(in)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) seek(body []emit.Instr, from int, l emit.Label) (int, error) {
	for j := from + 1; j < len(body); j++ {
		if body[j].Op == emit.OpMark && body[j].Label == l {
			return j, nil
		}
	}
	return 0, errors.InvalidProgram(r.prog.Name, fmt.Sprintf("label L%d not found in block", l))
}

func (r *run) cond(c emit.Cond, v any) bool {
	switch c {
	case emit.CondZero:
		return isZero(v)
	case emit.CondNonZero:
		return !isZero(v)
	case emit.CondNil:
		return isNil(v)
	case emit.CondNotNil:
		return !isNil(v)
	}
	return false
}

func isZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case int8:
		return x == 0
	case int16:
		return x == 0
	case uint16:
		return x == 0
	case int32:
		return x == 0
	case int64:
		return x == 0
	case float32:
		return x == 0
	case float64:
		return x == 0
	}
	return false
}

func (r *run) loop(in *emit.Instr) error {
	counter, bound := in.Args[0], in.Args[1]
	n, err := arg[int32](r, bound)
	if err != nil {
		return err
	}
	for i := int32(0); i < n; i++ {
		r.slots[counter] = i
		if err := r.block(in.Body); err != nil {
			return err
		}
		if err := r.p.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) rangeOver(in *emit.Instr) error {
	coll := in.Args[0]
	var items []any
	switch c := r.slots[coll].(type) {
	case nil:
		return r.nilPointer(coll)
	case *List:
		items = c.Items
	case *Set:
		items = c.Items
	default:
		rv := reflect.ValueOf(c)
		if rv.Kind() != reflect.Slice {
			return r.mismatch(coll, "collection")
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}
	for _, it := range items {
		r.slots[in.Dst] = it
		if err := r.block(in.Body); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) rangeMap(in *emit.Instr) error {
	m, err := arg[*LinkedMap](r, in.Args[0])
	if err != nil {
		return err
	}
	for i := range m.Keys {
		r.slots[in.Dst] = m.Keys[i]
		r.slots[in.Dst2] = m.Values[i]
		if err := r.block(in.Body); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) step(in *emit.Instr) error {
	switch in.Op {
	case emit.OpConst:
		r.slots[in.Dst] = in.Value
	case emit.OpMove:
		r.slots[in.Dst] = r.slots[in.Args[0]]
	case emit.OpRead:
		return r.read(in)
	case emit.OpWrite:
		return r.write(in)
	case emit.OpNew:
		return r.construct(in)
	case emit.OpConstruct:
		fields := make(map[string]any, len(in.Fields))
		for i, name := range in.Fields {
			fields[name] = r.slots[in.Args[i]]
		}
		r.slots[in.Dst] = &Object{Class: in.Type.Name(), Fields: fields}
	case emit.OpMakeArray:
		return r.makeArray(in)
	case emit.OpInvoke:
		return r.invoke(in)
	default:
		return errors.InvalidProgram(r.prog.Name, "unknown opcode "+in.Op.String())
	}
	return nil
}
