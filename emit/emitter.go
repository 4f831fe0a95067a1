package emit

import (
	"fmt"
	"strconv"

	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/errors"
)

// Kind distinguishes the two procedures generated per aggregate.
type Kind uint8

const (
	Decode Kind = iota
	Encode
)

func (k Kind) String() string {
	if k == Encode {
		return "encode"
	}
	return "decode"
}

type block struct {
	instrs []Instr
	id     int
}

type labelState struct {
	block      int
	referenced bool
	marked     bool
}

// Emitter records one procedure. It is not safe for concurrent use.
type Emitter struct {
	err    error
	names  map[string]int
	name   string
	labels []labelState
	stack  []*block
	locals []Local
	params []Slot
	blocks int
	result Slot
	kind   Kind
}

// New returns an emitter for the procedure of the given kind.
func New(name string, kind Kind) *Emitter {
	return &Emitter{
		name:   name,
		kind:   kind,
		names:  make(map[string]int),
		stack:  []*block{{id: 0}},
		blocks: 1,
		result: NoSlot,
	}
}

func (e *Emitter) Kind() Kind   { return e.kind }
func (e *Emitter) Name() string { return e.name }

// Err returns the first recorded misuse.
func (e *Emitter) Err() error { return e.err }

func (e *Emitter) fail(format string, args ...any) {
	if e.err == nil {
		e.err = errors.InvalidProgram(e.name, fmt.Sprintf(format, args...))
	}
}

func (e *Emitter) top() *block { return e.stack[len(e.stack)-1] }

func (e *Emitter) push(in Instr) {
	b := e.top()
	b.instrs = append(b.instrs, in)
}

func (e *Emitter) uniqueName(name string) string {
	if name == "" {
		name = "v"
	}
	n, taken := e.names[name]
	e.names[name] = n + 1
	if !taken {
		return name
	}
	for {
		candidate := name + strconv.Itoa(n)
		if _, clash := e.names[candidate]; !clash {
			e.names[candidate] = 1
			return candidate
		}
		n++
	}
}

// Param declares a procedure parameter.
func (e *Emitter) Param(name string, t *desc.Type) Slot {
	s := e.declare(name, t, true)
	e.params = append(e.params, s)
	return s
}

// Local allocates a temporary. Names are made unique within the procedure.
func (e *Emitter) Local(name string, t *desc.Type) Slot {
	return e.declare(name, t, false)
}

func (e *Emitter) declare(name string, t *desc.Type, param bool) Slot {
	if t == nil {
		e.fail("local %q has no type", name)
	}
	e.locals = append(e.locals, Local{Name: e.uniqueName(name), Type: t, Param: param})
	return Slot(len(e.locals) - 1)
}

// TypeOf returns the declared type of s.
func (e *Emitter) TypeOf(s Slot) *desc.Type {
	if !e.valid(s) {
		return nil
	}
	return e.locals[s].Type
}

func (e *Emitter) valid(s Slot) bool {
	return s >= 0 && int(s) < len(e.locals)
}

func (e *Emitter) check(op Op, slots ...Slot) bool {
	for _, s := range slots {
		if !e.valid(s) {
			e.fail("%s: invalid slot %d", op, s)
			return false
		}
	}
	return true
}

// NewLabel creates a label owned by the current block.
func (e *Emitter) NewLabel() Label {
	e.labels = append(e.labels, labelState{block: e.top().id})
	return Label(len(e.labels) - 1)
}

func (e *Emitter) label(op Op, l Label) *labelState {
	if l < 0 || int(l) >= len(e.labels) {
		e.fail("%s: unknown label L%d", op, l)
		return nil
	}
	st := &e.labels[l]
	if st.block != e.top().id {
		e.fail("%s: label L%d belongs to another block", op, l)
		return nil
	}
	return st
}

func (e *Emitter) reference(op Op, l Label) {
	st := e.label(op, l)
	if st == nil {
		return
	}
	if st.marked {
		e.fail("%s: backward reference to L%d", op, l)
		return
	}
	st.referenced = true
}

// Branch jumps forward to l when cond holds for s.
func (e *Emitter) Branch(cond Cond, s Slot, l Label) {
	if !e.check(OpBranch, s) {
		return
	}
	e.reference(OpBranch, l)
	e.push(Instr{Op: OpBranch, Cond: cond, Args: []Slot{s}, Label: l, Dst: NoSlot, Dst2: NoSlot})
}

// Jump jumps forward to l unconditionally.
func (e *Emitter) Jump(l Label) {
	e.reference(OpJump, l)
	e.push(Instr{Op: OpJump, Label: l, Dst: NoSlot, Dst2: NoSlot})
}

// Mark defines the position of l.
func (e *Emitter) Mark(l Label) {
	st := e.label(OpMark, l)
	if st == nil {
		return
	}
	if st.marked {
		e.fail("mark: label L%d marked twice", l)
		return
	}
	st.marked = true
	e.push(Instr{Op: OpMark, Label: l, Dst: NoSlot, Dst2: NoSlot})
}

// Const stores a literal. Supported values are nil, bool, int32, int64 and string.
func (e *Emitter) Const(dst Slot, v any) {
	switch v.(type) {
	case nil, bool, int32, int64, string:
	default:
		e.fail("const: unsupported literal %T", v)
		return
	}
	if e.check(OpConst, dst) {
		e.push(Instr{Op: OpConst, Dst: dst, Dst2: NoSlot, Value: v})
	}
}

// Move copies src into dst.
func (e *Emitter) Move(dst, src Slot) {
	if e.check(OpMove, dst, src) {
		e.push(Instr{Op: OpMove, Dst: dst, Dst2: NoSlot, Args: []Slot{src}})
	}
}

// Read performs a stream read into dst. token carries the expected type for
// aggregate and sparse reads.
func (e *Emitter) Read(dst, stream Slot, op Stream, token *desc.Type) {
	if e.check(OpRead, dst, stream) {
		e.push(Instr{Op: OpRead, Stream: op, Dst: dst, Dst2: NoSlot, Args: []Slot{stream}, Type: token})
	}
}

// Write performs a stream write of args.
func (e *Emitter) Write(stream Slot, op Stream, args ...Slot) {
	if len(args) == 0 {
		e.fail("write.%s: no operand", op)
		return
	}
	all := append([]Slot{stream}, args...)
	if e.check(OpWrite, all...) {
		e.push(Instr{Op: OpWrite, Stream: op, Dst: NoSlot, Dst2: NoSlot, Args: all})
	}
}

func (e *Emitter) nested(body func()) []Instr {
	b := &block{id: e.blocks}
	e.blocks++
	e.stack = append(e.stack, b)
	body()
	e.closeBlock(b)
	e.stack = e.stack[:len(e.stack)-1]
	return b.instrs
}

func (e *Emitter) closeBlock(b *block) {
	for i, st := range e.labels {
		if st.block == b.id && st.referenced && !st.marked {
			e.fail("label L%d referenced but never marked", i)
		}
	}
}

// Loop runs body with counter stepping from 0 to bound-1.
func (e *Emitter) Loop(counter, bound Slot, body func()) {
	if !e.check(OpLoop, counter, bound) {
		return
	}
	instrs := e.nested(body)
	e.push(Instr{Op: OpLoop, Dst: NoSlot, Dst2: NoSlot, Args: []Slot{counter, bound}, Body: instrs})
}

// Range runs body once per element of a collection, bound to elem.
func (e *Emitter) Range(coll, elem Slot, body func()) {
	if !e.check(OpRange, coll, elem) {
		return
	}
	instrs := e.nested(body)
	e.push(Instr{Op: OpRange, Dst: elem, Dst2: NoSlot, Args: []Slot{coll}, Body: instrs})
}

// RangeMap runs body once per map entry, bound to key and val.
func (e *Emitter) RangeMap(m, key, val Slot, body func()) {
	if !e.check(OpRangeMap, m, key, val) {
		return
	}
	instrs := e.nested(body)
	e.push(Instr{Op: OpRangeMap, Dst: key, Dst2: val, Args: []Slot{m}, Body: instrs})
}

// New constructs an empty instance of t using the named implementation.
func (e *Emitter) New(dst Slot, t *desc.Type, impl string) {
	if e.check(OpNew, dst) {
		e.push(Instr{Op: OpNew, Dst: dst, Dst2: NoSlot, Type: t, Name: impl})
	}
}

// Construct builds an aggregate from field values in declaration order.
func (e *Emitter) Construct(dst Slot, t *desc.Type, fields []string, args []Slot) {
	if len(fields) != len(args) {
		e.fail("construct: %d fields, %d values", len(fields), len(args))
		return
	}
	if e.check(OpConstruct, append([]Slot{dst}, args...)...) {
		e.push(Instr{
			Op:     OpConstruct,
			Dst:    dst,
			Dst2:   NoSlot,
			Type:   t,
			Fields: append([]string(nil), fields...),
			Args:   append([]Slot(nil), args...),
		})
	}
}

// MakeArray allocates an array of t with length n.
func (e *Emitter) MakeArray(dst Slot, t *desc.Type, n Slot) {
	if e.check(OpMakeArray, dst, n) {
		e.push(Instr{Op: OpMakeArray, Dst: dst, Dst2: NoSlot, Type: t, Args: []Slot{n}})
	}
}

// Invoke calls a capability method. dst may be NoSlot.
func (e *Emitter) Invoke(dst Slot, m Method, args ...Slot) {
	e.invoke(Instr{Dst: dst, Method: m, Args: args})
}

// GetField loads a named field of obj.
func (e *Emitter) GetField(dst, obj Slot, field string) {
	e.invoke(Instr{Dst: dst, Method: MethodGetField, Args: []Slot{obj}, Name: field})
}

// EnumValue resolves an ordinal against the count constants of enum. The count
// is kept in Value.
func (e *Emitter) EnumValue(dst Slot, enum *desc.Type, ordinal Slot, count int32) {
	e.invoke(Instr{Dst: dst, Method: MethodEnumValue, Args: []Slot{ordinal}, Type: enum, Value: count})
}

// Shared fetches the shared instance of an adapter.
func (e *Emitter) Shared(dst Slot, adapter *desc.Type) {
	e.invoke(Instr{Dst: dst, Method: MethodShared, Type: adapter})
}

func (e *Emitter) invoke(in Instr) {
	in.Op = OpInvoke
	in.Dst2 = NoSlot
	in.Args = append([]Slot(nil), in.Args...)
	slots := in.Args
	if in.Dst != NoSlot {
		slots = append([]Slot{in.Dst}, slots...)
	}
	if e.check(OpInvoke, slots...) {
		e.push(in)
	}
}

// Return sets the result of a decode procedure.
func (e *Emitter) Return(s Slot) {
	switch {
	case e.kind != Decode:
		e.fail("return: %s procedure has no result", e.kind)
	case len(e.stack) != 1:
		e.fail("return: inside nested block")
	case e.result != NoSlot:
		e.fail("return: result already set")
	case e.check(OpMove, s):
		e.result = s
	}
}

// Program finalizes the procedure.
func (e *Emitter) Program() (*Program, error) {
	e.closeBlock(e.stack[0])
	if e.kind == Decode && e.result == NoSlot {
		e.fail("decode procedure has no result")
	}
	if e.err != nil {
		return nil, e.err
	}
	return &Program{
		Name:   e.name,
		Kind:   e.kind,
		Params: append([]Slot(nil), e.params...),
		Locals: append([]Local(nil), e.locals...),
		Body:   e.stack[0].instrs,
		Result: e.result,
	}, nil
}
