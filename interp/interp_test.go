package interp_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/parcelgen"
	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
	"github.com/wippyai/parcelgen/interp"
	"github.com/wippyai/parcelgen/parcel"
)

func field(name, expr string) desc.Field {
	t, err := desc.ParseWith(expr, desc.ResolveParcel)
	if err != nil {
		panic(err)
	}
	return desc.Field{Name: name, Type: t}
}

func nullable(f desc.Field) desc.Field {
	f.Nullable = true
	return f
}

func adapted(f desc.Field, adapter string) desc.Field {
	f.Adapter = adapter
	return f
}

var classes = hierarchy.MustBuild(
	hierarchy.Class{Name: "example.Node", Kind: hierarchy.KindAggregate},
	hierarchy.Class{Name: "example.Leaf", Kind: hierarchy.KindAggregate},
	hierarchy.Class{Name: "example.Special", Kind: hierarchy.KindAggregate, Supers: []string{"example.Leaf"}},
	hierarchy.Class{Name: "example.Everything", Kind: hierarchy.KindAggregate},
	hierarchy.Class{Name: "example.Holder", Kind: hierarchy.KindAggregate},
	hierarchy.Class{Name: "example.Color", Kind: hierarchy.KindEnum, Constants: []string{"RED", "GREEN", "BLUE"}},
	hierarchy.Class{Name: "example.MoneyAdapter", Kind: hierarchy.KindAdapter},
	hierarchy.Class{Name: "example.CodeAdapter", Kind: hierarchy.KindAdapter, Shared: true},
	hierarchy.Class{Name: "example.Chat", Kind: hierarchy.KindAggregate},
	hierarchy.Class{Name: "example.Person", Kind: hierarchy.KindSerializable},
	hierarchy.Class{Name: "example.Message", Kind: hierarchy.KindSerializable},
)

var (
	node = desc.Aggregate{Name: "example.Node", Fields: []desc.Field{
		field("id", "int64"),
		field("name", "string"),
		field("tags", "list<string>"),
		field("parent", "example.Node"),
	}}
	leaf = desc.Aggregate{Name: "example.Leaf", Fields: []desc.Field{
		field("value", "int32"),
	}}
	special = desc.Aggregate{Name: "example.Special", Fields: []desc.Field{
		field("value", "int32"),
		field("extra", "string"),
	}}
	holder = desc.Aggregate{Name: "example.Holder", Fields: []desc.Field{
		field("count", "*int32"),
		field("color", "example.Color"),
		field("cube", "[][][]int32"),
	}}
	everything = desc.Aggregate{Name: "example.Everything", Fields: []desc.Field{
		field("b", "bool"),
		field("i8", "int8"),
		field("i16", "int16"),
		field("ch", "uint16"),
		field("i32", "int32"),
		field("i64", "int64"),
		field("f32", "float32"),
		field("f64", "float64"),
		field("s", "string"),
		field("boxedInt", "*int32"),
		field("boxedBool", "*bool"),
		field("boxedChar", "*uint16"),
		field("bools", "[]bool"),
		field("bytes", "[]int8"),
		field("chars", "[]uint16"),
		field("ints", "[]int32"),
		field("longs", "[]int64"),
		field("floats", "[]float32"),
		field("doubles", "[]float64"),
		field("strings", "[]string"),
		field("shorts", "[]int16"),
		field("grid", "[][]string"),
		field("optionals", "[]*int64"),
		field("when", "time.Time"),
		field("color", "example.Color"),
		field("bundle", "parcel.Bundle"),
		field("flags", "parcel.SparseBoolArray"),
		field("sparse", "parcel.SparseArray<string>"),
		field("seq", "list<int16>"),
		field("coll", "collection<example.Color>"),
		field("set", "set<string>"),
		field("dict", "map<string, list<int64>>"),
		field("leaf", "example.Leaf"),
		field("leaves", "[]example.Leaf"),
		adapted(field("money", "example.Money"), "example.MoneyAdapter"),
		adapted(field("code", "example.Code"), "example.CodeAdapter"),
		nullable(field("maybeTags", "list<string>")),
		nullable(field("maybeName", "string")),
		nullable(field("maybeInts", "[]int32")),
		nullable(field("maybeGrid", "[][]int32")),
	}}
)

// stringAdapter encodes its value as a prefixed string and counts uses.
type stringAdapter struct {
	prefix string
	uses   *int
}

func (a stringAdapter) FromParcel(p *parcel.Parcel) any {
	*a.uses++
	s := p.ReadString()
	if len(s) < len(a.prefix) || s[:len(a.prefix)] != a.prefix {
		p.Fail(stderrors.New("bad prefix"))
		return nil
	}
	return s[len(a.prefix):]
}

func (a stringAdapter) ToParcel(v any, p *parcel.Parcel, _ int32) {
	*a.uses++
	p.WriteString(a.prefix + v.(string))
}

type counters struct {
	fresh, shared, created int
}

func newMachine(t *testing.T, aggs ...desc.Aggregate) (*interp.Machine, *counters) {
	t.Helper()
	gen := parcelgen.New(classes)
	m := interp.New(classes)
	for _, a := range aggs {
		procs, err := gen.Generate(context.Background(), a)
		if err != nil {
			t.Fatalf("Generate(%s) failed: %v", a.Name, err)
		}
		if err := m.Load(procs.Decode, procs.Encode); err != nil {
			t.Fatalf("Load(%s) failed: %v", a.Name, err)
		}
	}

	c := &counters{}
	m.RegisterAdapter("example.MoneyAdapter", func() interp.Adapter {
		c.created++
		return stringAdapter{prefix: "$", uses: &c.fresh}
	})
	m.RegisterSharedAdapter("example.CodeAdapter", stringAdapter{prefix: "#", uses: &c.shared})
	return m, c
}

func roundTrip(t *testing.T, m *interp.Machine, obj *interp.Object) *interp.Object {
	t.Helper()
	data, err := m.Encode(obj)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := m.Decode(obj.Class, data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff(obj, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	return got
}

func TestNodeLayout(t *testing.T) {
	m, _ := newMachine(t, node)

	obj := interp.NewObject("example.Node", map[string]any{
		"id":     int64(7),
		"name":   "root",
		"tags":   &interp.List{Impl: "array-list", Items: []any{"a", "b"}},
		"parent": nil,
	})
	data, err := m.Encode(obj)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := parcel.New()
	want.WriteInt64(7)
	want.WriteString("root")
	want.WriteInt32(2)
	want.WriteString("a")
	want.WriteString("b")
	want.WriteInt32(0)
	if diff := cmp.Diff(want.Bytes(), data); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}

	roundTrip(t, m, obj)
}

func TestNestedAggregate(t *testing.T) {
	m, _ := newMachine(t, node)

	child := interp.NewObject("example.Node", map[string]any{
		"id":   int64(2),
		"name": "child",
		"tags": &interp.List{Impl: "array-list", Items: []any{}},
		"parent": interp.NewObject("example.Node", map[string]any{
			"id":     int64(1),
			"name":   "root",
			"tags":   &interp.List{Impl: "array-list", Items: []any{"x"}},
			"parent": nil,
		}),
	})
	roundTrip(t, m, child)
}

func TestOptionalInt(t *testing.T) {
	agg := desc.Aggregate{Name: "example.Leaf", Fields: []desc.Field{field("value", "*int32")}}
	m, _ := newMachine(t, agg)

	tests := []struct {
		value any
		words []int32
	}{
		{int32(42), []int32{1, 42}},
		{nil, []int32{0}},
	}

	for _, tt := range tests {
		obj := interp.NewObject("example.Leaf", map[string]any{"value": tt.value})
		data, err := m.Encode(obj)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		want := parcel.New()
		for _, w := range tt.words {
			want.WriteInt32(w)
		}
		if diff := cmp.Diff(want.Bytes(), data); diff != "" {
			t.Errorf("%v: layout mismatch (-want +got):\n%s", tt.value, diff)
		}
		roundTrip(t, m, obj)
	}
}

func TestThreeLevelArray(t *testing.T) {
	m, _ := newMachine(t, holder)

	obj := interp.NewObject("example.Holder", map[string]any{
		"count": int32(3),
		"color": interp.Enum{Class: "example.Color", Name: "BLUE", Ordinal: 2},
		"cube": []any{
			[]any{[]int32{1, 2}, []int32{}},
			[]any{},
			[]any{[]int32{3}},
		},
	})
	roundTrip(t, m, obj)
}

func everythingValue() *interp.Object {
	sparse := parcel.NewSparseArray[string]()
	sparse.Put(10, "ten")
	sparse.Put(-3, "minus three")

	flags := parcel.NewSparseBoolArray()
	flags.Put(1, true)
	flags.Put(5, false)

	dict := interp.NewLinkedMap()
	dict.Put("odd", &interp.List{Impl: "array-list", Items: []any{int64(1), int64(3)}})
	dict.Put("none", &interp.List{Impl: "array-list", Items: []any{}})

	return interp.NewObject("example.Everything", map[string]any{
		"b":         true,
		"i8":        int8(-8),
		"i16":       int16(-1600),
		"ch":        uint16('é'),
		"i32":       int32(-32),
		"i64":       int64(1) << 50,
		"f32":       float32(3.5),
		"f64":       -0.125,
		"s":         "héllo",
		"boxedInt":  int32(9),
		"boxedBool": nil,
		"boxedChar": uint16('z'),
		"bools":     []bool{true, false, true},
		"bytes":     []int8{-128, 0, 127},
		"chars":     []uint16{'a', 0xffff},
		"ints":      []int32{1, 2, 3},
		"longs":     []int64{},
		"floats":    []float32{1.25},
		"doubles":   []float64{2.5, -1},
		"strings":   []string{"", "x"},
		"shorts":    []int16{-1, 1},
		"grid":      []any{[]string{"a"}, []string{}},
		"optionals": []any{int64(1), nil, int64(3)},
		"when":      time.UnixMilli(1700000000123).UTC(),
		"color":     interp.Enum{Class: "example.Color", Name: "GREEN", Ordinal: 1},
		"bundle":    parcel.NewBundle().PutString("k", "v").PutInt32("n", 3),
		"flags":     flags,
		"sparse":    sparse,
		"seq":       &interp.List{Impl: "array-list", Items: []any{int16(5), int16(-5)}},
		"coll": &interp.List{Impl: "array-list", Items: []any{
			interp.Enum{Class: "example.Color", Name: "RED", Ordinal: 0},
			nil,
		}},
		"set":  &interp.Set{Impl: "linked-set", Items: []any{"x", "y"}},
		"dict": dict,
		"leaf": interp.NewObject("example.Leaf", map[string]any{"value": int32(1)}),
		"leaves": []any{
			interp.NewObject("example.Leaf", map[string]any{"value": int32(2)}),
			nil,
			interp.NewObject("example.Special", map[string]any{"value": int32(3), "extra": "s"}),
		},
		"money":     "12.50",
		"code":      "X1",
		"maybeTags": nil,
		"maybeName": nil,
		"maybeInts": nil,
		"maybeGrid": []any{[]int32{7}},
	})
}

func TestEveryCategory(t *testing.T) {
	m, c := newMachine(t, everything, leaf, special)

	roundTrip(t, m, everythingValue())

	if c.created != 2 || c.fresh != 2 {
		t.Errorf("fresh adapter: created %d, used %d; want 2, 2", c.created, c.fresh)
	}
	if c.shared != 2 {
		t.Errorf("shared adapter used %d times, want 2", c.shared)
	}
}

func TestNullableAbsent(t *testing.T) {
	m, _ := newMachine(t, everything, leaf, special)

	obj := everythingValue()
	for _, name := range []string{
		"boxedInt", "boxedChar", "when", "color", "leaf", "money", "code",
		"maybeTags", "maybeName", "maybeInts", "maybeGrid", "bundle", "flags",
		"sparse", "leaves", "bools", "strings",
	} {
		obj.Fields[name] = nil
	}
	roundTrip(t, m, obj)
}

func TestNullablePresent(t *testing.T) {
	m, _ := newMachine(t, everything, leaf, special)

	obj := everythingValue()
	obj.Fields["maybeTags"] = &interp.List{Impl: "array-list", Items: []any{"t"}}
	obj.Fields["maybeName"] = "name"
	obj.Fields["maybeInts"] = []int32{4, 5}
	obj.Fields["maybeGrid"] = []any{}
	roundTrip(t, m, obj)
}

type person struct {
	FirstName string
	LastName  string
}

type payload struct {
	Message   string
	Timestamp int64
}

type message struct {
	Sender  person
	Payload payload
}

var chat = desc.Aggregate{Name: "example.Chat", Fields: []desc.Field{
	field("title", "string"),
	field("participants", "[]example.Person"),
	field("messages", "list<example.Message>"),
	field("pinned", "example.Message"),
}}

func TestSerializableFields(t *testing.T) {
	m, _ := newMachine(t, chat)
	m.RegisterSerializable("example.Person", func() any { return new(person) })
	m.RegisterSerializable("example.Message", func() any { return new(message) })

	ada := &person{FirstName: "Ada", LastName: "Lovelace"}
	hello := &message{Sender: *ada, Payload: payload{Message: "hello", Timestamp: 1700000000000}}

	roundTrip(t, m, interp.NewObject("example.Chat", map[string]any{
		"title":        "engines",
		"participants": []any{ada, nil, &person{FirstName: "Charles"}},
		"messages":     &interp.List{Impl: "array-list", Items: []any{hello, nil}},
		"pinned":       hello,
	}))
	roundTrip(t, m, interp.NewObject("example.Chat", map[string]any{
		"title":        "",
		"participants": []any{},
		"messages":     &interp.List{Impl: "array-list", Items: []any{}},
		"pinned":       nil,
	}))
}

func TestSerializableNeedsFactory(t *testing.T) {
	m, _ := newMachine(t, chat)
	data, err := m.Encode(interp.NewObject("example.Chat", map[string]any{
		"title":        "t",
		"participants": []any{&person{FirstName: "Ada"}},
		"messages":     &interp.List{Impl: "array-list", Items: []any{}},
		"pinned":       nil,
	}))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	_, err = m.Decode("example.Chat", data)
	if !stderrors.Is(err, errors.New(errors.PhaseDecode, errors.KindNotFound).Build()) {
		t.Errorf("got %v, want decode/not_found", err)
	}
}

func TestMapOrderAndSetDedup(t *testing.T) {
	m, _ := newMachine(t, everything, leaf, special)

	obj := everythingValue()
	dict := interp.NewLinkedMap()
	for _, k := range []string{"c", "a", "b"} {
		dict.Put(k, &interp.List{Impl: "array-list", Items: []any{}})
	}
	obj.Fields["dict"] = dict
	got := roundTrip(t, m, obj)

	keys := got.Fields["dict"].(*interp.LinkedMap).Keys
	if diff := cmp.Diff([]any{"c", "a", "b"}, keys); diff != "" {
		t.Errorf("map order (-want +got):\n%s", diff)
	}

	set := &interp.Set{Impl: "linked-set"}
	set.Add("x")
	set.Add("x")
	set.Add("y")
	if set.Len() != 2 {
		t.Errorf("set holds %d elements, want 2", set.Len())
	}
}

func decodeErr(t *testing.T, m *interp.Machine, class string, p *parcel.Parcel) error {
	t.Helper()
	_, err := m.Decode(class, p.Bytes())
	if err == nil {
		t.Fatal("expected decode error")
	}
	return err
}

func TestDecodeFaults(t *testing.T) {
	m, _ := newMachine(t, holder, node, leaf)

	t.Run("enum out of range", func(t *testing.T) {
		p := parcel.New()
		p.WriteInt32(0) // count absent
		p.WriteInt32(1) // color present
		p.WriteInt32(3) // ordinal
		p.WriteInt32(0)
		err := decodeErr(t, m, "example.Holder", p)
		if !stderrors.Is(err, errors.New(errors.PhaseDecode, errors.KindInvalidEnum).Build()) {
			t.Errorf("err = %v, want invalid_enum", err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		p := parcel.New()
		p.WriteInt64(1)
		p.WriteInt32(4)
		err := decodeErr(t, m, "example.Node", p)
		if !stderrors.Is(err, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).Build()) {
			t.Errorf("err = %v, want out_of_bounds", err)
		}
	})

	t.Run("array length exceeds data", func(t *testing.T) {
		p := parcel.New()
		p.WriteInt32(0)
		p.WriteInt32(0)
		p.WriteInt32(1 << 30)
		err := decodeErr(t, m, "example.Holder", p)
		if !stderrors.Is(err, errors.New(errors.PhaseDecode, errors.KindInvalidData).Build()) {
			t.Errorf("err = %v, want invalid_data", err)
		}
	})

	t.Run("nested type mismatch", func(t *testing.T) {
		p := parcel.New()
		p.WriteInt64(1)
		p.WriteString("n")
		p.WriteInt32(0)
		p.WriteInt32(1)
		p.WriteString("example.Leaf")
		p.WriteInt32(5)
		err := decodeErr(t, m, "example.Node", p)
		if !stderrors.Is(err, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).Build()) {
			t.Errorf("err = %v, want type_mismatch", err)
		}
	})

	t.Run("unknown class", func(t *testing.T) {
		err := decodeErr(t, m, "example.Missing", parcel.New())
		if !stderrors.Is(err, errors.New(errors.PhaseDecode, errors.KindNotFound).Build()) {
			t.Errorf("err = %v, want not_found", err)
		}
	})
}

func TestEncodeFaults(t *testing.T) {
	m, _ := newMachine(t, node)

	tests := []struct {
		name   string
		fields map[string]any
		kind   errors.Kind
	}{
		{
			name:   "nil list",
			fields: map[string]any{"id": int64(1), "name": "n", "tags": nil},
			kind:   errors.KindNilPointer,
		},
		{
			name:   "wrong primitive",
			fields: map[string]any{"id": int32(1), "name": "n"},
			kind:   errors.KindTypeMismatch,
		},
		{
			name:   "missing string",
			fields: map[string]any{"id": int64(1)},
			kind:   errors.KindNilPointer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Encode(interp.NewObject("example.Node", tt.fields))
			if !stderrors.Is(err, errors.New(errors.PhaseEncode, tt.kind).Build()) {
				t.Errorf("err = %v, want %s", err, tt.kind)
			}
		})
	}

	if _, err := m.Encode(interp.NewObject("example.Other", nil)); err == nil {
		t.Error("expected error for class without program")
	}
}

func TestEnumOf(t *testing.T) {
	m := interp.New(classes)
	e, err := m.EnumOf("example.Color", "BLUE")
	if err != nil {
		t.Fatalf("EnumOf failed: %v", err)
	}
	if diff := cmp.Diff(interp.Enum{Class: "example.Color", Name: "BLUE", Ordinal: 2}, e); diff != "" {
		t.Errorf("EnumOf mismatch (-want +got):\n%s", diff)
	}
	if _, err := m.EnumOf("example.Color", "PINK"); err == nil {
		t.Error("expected error for unknown constant")
	}
}
