package gogen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/emit"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
)

var readMethods = map[emit.Stream]string{
	emit.StreamInt32:           "Int32",
	emit.StreamInt64:           "Int64",
	emit.StreamFloat32:         "Float32",
	emit.StreamFloat64:         "Float64",
	emit.StreamString:          "String",
	emit.StreamBoolArray:       "BoolArray",
	emit.StreamInt8Array:       "Int8Array",
	emit.StreamUint16Array:     "Uint16Array",
	emit.StreamInt32Array:      "Int32Array",
	emit.StreamInt64Array:      "Int64Array",
	emit.StreamFloat32Array:    "Float32Array",
	emit.StreamFloat64Array:    "Float64Array",
	emit.StreamStringArray:     "StringArray",
	emit.StreamBundle:          "Bundle",
	emit.StreamSparseBoolArray: "SparseBoolArray",
}

// function renders one program body.
type function struct {
	n      *namer
	oracle hierarchy.Oracle
	prog   *emit.Program
	refs   map[emit.Label]bool
	b      *strings.Builder
	idents []string
	types  []string
	taken  map[string]bool
	depth  int
}

func newFunction(n *namer, oracle hierarchy.Oracle, prog *emit.Program) *function {
	f := &function{
		n:      n,
		oracle: oracle,
		prog:   prog,
		refs:   prog.Referenced(),
		b:      &strings.Builder{},
		idents: make([]string, len(prog.Locals)),
		types:  make([]string, len(prog.Locals)),
		taken:  make(map[string]bool),
		depth:  1,
	}
	for i, l := range prog.Locals {
		f.idents[i] = n.ident(l.Name, f.taken)
		f.types[i] = n.typeOf(l.Type)
	}
	return f
}

func (f *function) fail(format string, args ...any) {
	f.n.fail(errors.New(errors.PhaseRender, errors.KindInvalidProgram).
		Owner(f.prog.Name).
		Detail(format, args...).
		Build())
}

func (f *function) id(s emit.Slot) string {
	if s < 0 || int(s) >= len(f.idents) {
		f.fail("invalid slot %d", s)
		return "_"
	}
	return f.idents[s]
}

func (f *function) typ(s emit.Slot) *desc.Type {
	if s < 0 || int(s) >= len(f.prog.Locals) {
		return desc.Primitive(desc.Int32)
	}
	return f.prog.Locals[s].Type
}

func (f *function) line(format string, args ...any) {
	f.b.WriteString(strings.Repeat("\t", f.depth))
	fmt.Fprintf(f.b, format, args...)
	f.b.WriteByte('\n')
}

// render returns the function body without braces.
func (f *function) render() string {
	f.declare()
	f.block(f.prog.Body)
	if f.prog.Result != emit.NoSlot {
		f.line("return %s", f.id(f.prog.Result))
	}
	return f.b.String()
}

// declare hoists every non-parameter local. Locals that are only assigned
// are blanked so the function compiles.
func (f *function) declare() {
	read := make(map[emit.Slot]bool)
	f.prog.Walk(func(in *emit.Instr) {
		for _, s := range in.Args {
			read[s] = true
		}
	})
	read[f.prog.Result] = true

	var unread []string
	f.line("var (")
	f.depth++
	for i, l := range f.prog.Locals {
		if l.Param {
			continue
		}
		f.line("%s %s", f.idents[i], f.types[i])
		if !read[emit.Slot(i)] {
			unread = append(unread, f.idents[i])
		}
	}
	f.depth--
	f.line(")")
	for _, id := range unread {
		f.line("_ = %s", id)
	}
}

func (f *function) block(body []emit.Instr) {
	for i := range body {
		f.instr(&body[i])
	}
}

// nested renders head and body as a block, with prelude lines first.
func (f *function) nested(head string, body []emit.Instr, prelude ...string) {
	f.line("%s {", head)
	f.depth++
	for _, l := range prelude {
		f.line("%s", l)
	}
	f.block(body)
	f.depth--
	f.line("}")
}

func (f *function) instr(in *emit.Instr) {
	switch in.Op {
	case emit.OpConst:
		f.line("%s = %s", f.id(in.Dst), f.literal(in.Dst, in.Value))
	case emit.OpMove:
		f.line("%s = %s", f.id(in.Dst), f.id(in.Args[0]))
	case emit.OpRead:
		f.line("%s = %s", f.id(in.Dst), f.read(in))
	case emit.OpWrite:
		f.write(in)
	case emit.OpBranch:
		f.line("if %s {", f.cond(in.Cond, in.Args[0]))
		f.line("\tgoto L%d", in.Label)
		f.line("}")
	case emit.OpJump:
		f.line("goto L%d", in.Label)
	case emit.OpMark:
		if f.refs[in.Label] {
			f.b.WriteString(strings.Repeat("\t", f.depth-1))
			fmt.Fprintf(f.b, "L%d:\n", in.Label)
		}
	case emit.OpLoop:
		i, n := f.id(in.Args[0]), f.id(in.Args[1])
		f.nested(fmt.Sprintf("for %s = 0; %s < %s; %s++", i, i, n, i), in.Body)
	case emit.OpRange:
		coll := in.Args[0]
		switch {
		case f.isSet(coll) && f.byValue(coll):
			k := f.n.ident("key", f.taken)
			f.nested(fmt.Sprintf("for %s := range %s", k, f.id(coll)), in.Body,
				fmt.Sprintf("%s = %s.Ptr(%s)", f.id(in.Dst), f.n.parcel(), k))
		case f.isSet(coll):
			f.nested(fmt.Sprintf("for %s = range %s", f.id(in.Dst), f.id(coll)), in.Body)
		default:
			f.nested(fmt.Sprintf("for _, %s = range %s", f.id(in.Dst), f.id(coll)), in.Body)
		}
	case emit.OpRangeMap:
		m := in.Args[0]
		if f.byValue(m) {
			k, v := f.n.ident("key", f.taken), f.n.ident("val", f.taken)
			f.nested(fmt.Sprintf("for %s, %s := range %s", k, v, f.id(m)), in.Body,
				fmt.Sprintf("%s = %s.Ptr(%s)", f.id(in.Dst), f.n.parcel(), k),
				fmt.Sprintf("%s = %s", f.id(in.Dst2), v))
		} else {
			f.nested(fmt.Sprintf("for %s, %s = range %s", f.id(in.Dst), f.id(in.Dst2), f.id(m)), in.Body)
		}
	case emit.OpNew:
		f.line("%s = %s", f.id(in.Dst), f.make(in))
	case emit.OpConstruct:
		parts := make([]string, len(in.Fields))
		for i, name := range in.Fields {
			parts[i] = export(name) + ": " + f.id(in.Args[i])
		}
		f.line("%s = &%s{%s}", f.id(in.Dst), f.n.qualify(in.Type.Name()), strings.Join(parts, ", "))
	case emit.OpMakeArray:
		f.line("%s = make(%s, %s)", f.id(in.Dst), f.n.typeOf(in.Type), f.id(in.Args[0]))
	case emit.OpInvoke:
		f.invoke(in)
	default:
		f.fail("unknown op %s", in.Op)
	}
}

// literal renders a constant assigned to dst. nil on a type without nil is
// its zero value.
func (f *function) literal(dst emit.Slot, v any) string {
	switch x := v.(type) {
	case nil:
		return zero(f.types[dst])
	case bool:
		return strconv.FormatBool(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return strconv.Quote(x)
	}
	f.fail("unsupported literal %T", v)
	return "nil"
}

func (f *function) cond(c emit.Cond, s emit.Slot) string {
	id, goType := f.id(s), f.types[s]
	switch c {
	case emit.CondZero:
		if goType == "bool" {
			return "!" + id
		}
		return id + " == " + zero(goType)
	case emit.CondNonZero:
		if goType == "bool" {
			return id
		}
		return id + " != " + zero(goType)
	case emit.CondNil:
		if !nilable(goType) {
			return "false"
		}
		return id + " == nil"
	case emit.CondNotNil:
		if !nilable(goType) {
			return "true"
		}
		return id + " != nil"
	}
	f.fail("unknown condition %s", c)
	return "false"
}

func (f *function) read(in *emit.Instr) string {
	p := f.id(in.Args[0])
	pkg := f.n.parcel()
	switch in.Stream {
	case emit.StreamSparseArray:
		return fmt.Sprintf("%s.ReadSparseArray[%s](%s)", pkg, f.n.typeOf(f.typ(in.Dst).Arg(0)), p)
	case emit.StreamAggregate:
		return fmt.Sprintf("%s.ReadAggregateAs[%s](%s)", pkg, f.n.typeOf(in.Type), p)
	case emit.StreamAggregateArray:
		return fmt.Sprintf("%s.ReadAggregateArrayAs[%s](%s)", pkg, f.n.typeOf(in.Type), p)
	case emit.StreamSerializable:
		return fmt.Sprintf("%s.ReadSerializableAs[%s](%s)", pkg, strings.TrimPrefix(f.n.typeOf(in.Type), "*"), p)
	}
	m, ok := readMethods[in.Stream]
	if !ok {
		f.fail("unknown stream %s", in.Stream)
	}
	return p + ".Read" + m + "()"
}

func (f *function) write(in *emit.Instr) {
	p := f.id(in.Args[0])
	args := make([]string, len(in.Args)-1)
	for i, s := range in.Args[1:] {
		args[i] = f.id(s)
	}
	pkg := f.n.parcel()
	switch in.Stream {
	case emit.StreamSparseArray:
		f.line("%s.WriteSparseArray(%s, %s)", pkg, p, args[0])
	case emit.StreamAggregate:
		f.line("%s.WriteAggregate(%s)", p, strings.Join(args, ", "))
	case emit.StreamAggregateArray:
		f.line("%s.WriteAggregateArray(%s, %s)", pkg, p, strings.Join(args, ", "))
	case emit.StreamSerializable:
		f.line("%s.WriteSerializable(%s)", p, args[0])
	default:
		m, ok := readMethods[in.Stream]
		if !ok {
			f.fail("unknown stream %s", in.Stream)
		}
		f.line("%s.Write%s(%s)", p, m, strings.Join(args, ", "))
	}
}

func (f *function) isSet(s emit.Slot) bool {
	t := f.typ(s)
	return t.Kind() == desc.KindParameterized && t.Name() == desc.Set
}

// byValue reports whether the set or map in s is keyed by value. Nil
// elements and keys have no value key and are dropped on insert.
func (f *function) byValue(s emit.Slot) bool {
	t := f.typ(s)
	if t.Kind() != desc.KindParameterized || (t.Name() != desc.Set && t.Name() != desc.Map) {
		return false
	}
	return f.n.byValue(t.Arg(0))
}

func (f *function) make(in *emit.Instr) string {
	t := in.Type
	if t.Kind() != desc.KindParameterized {
		return "&" + f.n.qualify(t.Name()) + "{}"
	}
	goType := f.n.typeOf(t)
	if strings.HasPrefix(goType, "[]") {
		return "make(" + goType + ", 0)"
	}
	return "make(" + goType + ")"
}

func (f *function) invoke(in *emit.Instr) {
	arg := func(i int) string { return f.id(in.Args[i]) }
	assign := func(expr string) { f.line("%s = %s", f.id(in.Dst), expr) }
	pkg := f.n.parcel()

	switch in.Method {
	case emit.MethodLen:
		assign("int32(len(" + arg(0) + "))")
	case emit.MethodIndex:
		assign(arg(0) + "[" + arg(1) + "]")
	case emit.MethodSetIndex:
		f.line("%s[%s] = %s", arg(0), arg(1), arg(2))
	case emit.MethodAdd:
		switch {
		case f.isSet(in.Args[0]) && f.byValue(in.Args[0]):
			f.line("if %s != nil {", arg(1))
			f.line("\t%s[*%s] = struct{}{}", arg(0), arg(1))
			f.line("}")
		case f.isSet(in.Args[0]):
			f.line("%s[%s] = struct{}{}", arg(0), arg(1))
		default:
			f.line("%s = append(%s, %s)", arg(0), arg(0), arg(1))
		}
	case emit.MethodPut:
		if f.byValue(in.Args[0]) {
			f.line("if %s != nil {", arg(1))
			f.line("\t%s[*%s] = %s", arg(0), arg(1), arg(2))
			f.line("}")
		} else {
			f.line("%s[%s] = %s", arg(0), arg(1), arg(2))
		}
	case emit.MethodGetField:
		assign(arg(0) + "." + export(in.Name))
	case emit.MethodBox:
		assign(pkg + ".Ptr(" + arg(0) + ")")
	case emit.MethodUnbox:
		assign("*" + arg(0))
	case emit.MethodWiden:
		assign("int32(" + arg(0) + ")")
	case emit.MethodNarrow:
		assign(f.types[in.Dst] + "(" + arg(0) + ")")
	case emit.MethodOrdinal:
		assign(arg(0) + ".Ordinal()")
	case emit.MethodEnumValue:
		count, _ := in.Value.(int32)
		enum := strings.TrimPrefix(f.n.typeOf(in.Type), "*")
		assign(fmt.Sprintf("%s.EnumAt[%s](%s, %d)", pkg, enum, arg(0), count))
	case emit.MethodMillis:
		assign(arg(0) + ".UnixMilli()")
	case emit.MethodFromMillis:
		assign(pkg + ".Ptr(" + f.n.use("time") + ".UnixMilli(" + arg(0) + ").UTC())")
	case emit.MethodShared:
		assign(f.n.qualify(in.Type.Name()) + "Instance")
	case emit.MethodFromParcel:
		assign(arg(0) + ".FromParcel(" + arg(1) + ")")
	case emit.MethodToParcel:
		f.line("%s.ToParcel(%s, %s, %s)", arg(0), arg(1), arg(2), arg(3))
	default:
		f.fail("unknown method %s", in.Method)
	}
}
