package schema

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
)

const model = `
package: github.com/acme/model
classes:
  - name: User
    kind: aggregate
    supers: [Entity]
    fields:
      - {name: id, type: int64}
      - {name: tags, type: list<string>}
      - {name: parent, type: User, nullable: true}
      - {name: balance, type: Money, adapter: MoneyAdapter}
      - {name: extras, type: parcel.Bundle}
      - {name: born, type: time.Time}
      - {name: note, type: Note}
  - name: Entity
    kind: interface
  - name: Money
  - name: Color
    kind: enum
    constants: [RED, GREEN]
  - name: MoneyAdapter
    kind: adapter
    shared: true
  - name: Note
    kind: serializable
`

// typeEq compares descriptors structurally.
var typeEq = cmp.Comparer(func(a, b *desc.Type) bool { return a.Equal(b) })

func TestParse(t *testing.T) {
	s, err := Parse([]byte(model))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []desc.Aggregate{{Name: "github.com/acme/model.User", Fields: []desc.Field{
		{Name: "id", Type: desc.Primitive(desc.Int64)},
		{Name: "tags", Type: desc.Parameterized(desc.List, desc.Primitive(desc.String))},
		{Name: "parent", Type: desc.Class("github.com/acme/model.User"), Nullable: true},
		{Name: "balance", Type: desc.Class("github.com/acme/model.Money"), Adapter: "github.com/acme/model.MoneyAdapter"},
		{Name: "extras", Type: desc.Class(desc.BundleClass)},
		{Name: "born", Type: desc.Class(desc.DateClass)},
		{Name: "note", Type: desc.Class("github.com/acme/model.Note")},
	}}}
	if diff := cmp.Diff(want, s.Aggregates, typeEq); diff != "" {
		t.Errorf("aggregates (-want +got):\n%s", diff)
	}

	idx, err := s.Index()
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if !idx.IsSubtype("github.com/acme/model.User", "github.com/acme/model.Entity") {
		t.Error("User should extend Entity")
	}
	if !idx.IsSubtype("github.com/acme/model.User", desc.AggregateMarker) {
		t.Error("aggregates should extend the aggregate marker")
	}
	if !idx.IsSubtype("github.com/acme/model.Note", desc.SerializableMarker) {
		t.Error("serializable classes should extend the serializable marker")
	}
	if !hierarchy.SharedAdapter(idx, "github.com/acme/model.MoneyAdapter") {
		t.Error("MoneyAdapter should be shared")
	}
	constants, ok := hierarchy.EnumConstants(idx, "github.com/acme/model.Color")
	if !ok || !cmp.Equal(constants, []string{"RED", "GREEN"}) {
		t.Errorf("enum constants = %v, %v", constants, ok)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown key", "classes:\n  - name: A\n    colour: red\n"},
		{"no name", "classes:\n  - kind: aggregate\n"},
		{"unknown kind", "classes:\n  - name: A\n    kind: struct\n"},
		{"fields on enum", "classes:\n  - name: A\n    kind: enum\n    fields: [{name: x, type: int32}]\n"},
		{"constants on class", "classes:\n  - name: A\n    constants: [X]\n"},
		{"shared aggregate", "classes:\n  - name: A\n    kind: aggregate\n    shared: true\n"},
		{"bad type", "classes:\n  - name: A\n    kind: aggregate\n    fields: [{name: x, type: 'list<int32'}]\n"},
		{"boxed string", "classes:\n  - name: A\n    kind: aggregate\n    fields: [{name: x, type: '*string'}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if !stderrors.Is(err, errors.New(errors.PhaseLoad, errors.KindInvalidInput).Build()) {
				t.Errorf("got %v, want load/invalid_input", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(model), 0o600); err != nil {
		t.Fatal(err)
	}
	idx, aggs, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(aggs) != 1 || len(idx.Classes()) != 5 {
		t.Errorf("got %d aggregates and %d classes", len(aggs), len(idx.Classes()))
	}

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !stderrors.Is(err, errors.New(errors.PhaseLoad, errors.KindNotFound).Build()) {
		t.Errorf("missing file: got %v", err)
	}
}

func TestLoadDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.yaml")
	src := "classes:\n  - name: A\n  - name: A\n"
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	_, _, err := Load(path)
	if !stderrors.Is(err, errors.New(errors.PhaseLoad, errors.KindDuplicate).Build()) {
		t.Errorf("got %v, want load/duplicate", err)
	}
}

func named(name string, kind wit.TypeDefKind) *wit.TypeDef {
	return &wit.TypeDef{Name: &name, Kind: kind}
}

func TestFromWIT(t *testing.T) {
	color := named("color", &wit.Enum{Cases: []wit.EnumCase{{Name: "red"}, {Name: "dark-blue"}}})
	point := named("point", &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.S32{}},
		{Name: "y", Type: wit.S32{}},
	}})
	shape := named("shape-info", &wit.Record{Fields: []wit.Field{
		{Name: "visible", Type: wit.Bool{}},
		{Name: "byte-count", Type: wit.U8{}},
		{Name: "size", Type: wit.U32{}},
		{Name: "label", Type: wit.String{}},
		{Name: "points", Type: &wit.TypeDef{Kind: &wit.List{Type: point}}},
		{Name: "weight", Type: &wit.TypeDef{Kind: &wit.Option{Type: wit.F64{}}}},
		{Name: "origin", Type: &wit.TypeDef{Kind: &wit.Option{Type: point}}},
		{Name: "color", Type: color},
		{Name: "pair", Type: &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U32{}, wit.U32{}}}}},
	}})

	s, err := FromWIT(&wit.Resolve{TypeDefs: []*wit.TypeDef{color, point, shape}}, "shapes")
	if err != nil {
		t.Fatalf("FromWIT failed: %v", err)
	}

	wantClasses := []hierarchy.Class{
		{Name: "shapes.Color", Kind: hierarchy.KindEnum, Constants: []string{"RED", "DARK_BLUE"}},
		{Name: "shapes.Point", Kind: hierarchy.KindAggregate},
		{Name: "shapes.ShapeInfo", Kind: hierarchy.KindAggregate},
	}
	if diff := cmp.Diff(wantClasses, s.Classes, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("classes (-want +got):\n%s", diff)
	}

	wantFields := []desc.Field{
		{Name: "visible", Type: desc.Primitive(desc.Bool)},
		{Name: "byteCount", Type: desc.Primitive(desc.Int16)},
		{Name: "size", Type: desc.Primitive(desc.Int64)},
		{Name: "label", Type: desc.Primitive(desc.String)},
		{Name: "points", Type: desc.Parameterized(desc.List, desc.Class("shapes.Point"))},
		{Name: "weight", Type: desc.Boxed(desc.Float64)},
		{Name: "origin", Type: desc.Class("shapes.Point"), Nullable: true},
		{Name: "color", Type: desc.Class("shapes.Color")},
		{Name: "pair", Type: desc.Class("wit.tuple")},
	}
	if len(s.Aggregates) != 2 {
		t.Fatalf("got %d aggregates, want 2", len(s.Aggregates))
	}
	if diff := cmp.Diff(wantFields, s.Aggregates[1].Fields, typeEq); diff != "" {
		t.Errorf("shape fields (-want +got):\n%s", diff)
	}
}

func TestMerge(t *testing.T) {
	a := &Schema{Classes: []hierarchy.Class{{Name: "a.A"}}}
	b := &Schema{Classes: []hierarchy.Class{{Name: "a.A"}}}
	if _, err := a.Merge(b).Index(); !stderrors.Is(err, errors.New(errors.PhaseLoad, errors.KindDuplicate).Build()) {
		t.Errorf("got %v, want load/duplicate", err)
	}
	if len(a.Classes) != 1 {
		t.Error("Merge modified its receiver")
	}
}

func TestLazy(t *testing.T) {
	s, err := Parse([]byte(model))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	asked := make(map[string]int)
	oracle := s.Lazy(func(name string) (hierarchy.Class, bool) {
		asked[name]++
		if name == "vendor.Remote" {
			return hierarchy.Class{Name: name, Kind: hierarchy.KindAggregate, Supers: []string{"github.com/acme/model.Entity"}}, true
		}
		return hierarchy.Class{}, false
	})

	tests := []struct {
		sub, super string
		want       bool
	}{
		{"github.com/acme/model.User", "github.com/acme/model.Entity", true},
		{"github.com/acme/model.User", desc.AggregateMarker, true},
		{"github.com/acme/model.Note", desc.SerializableMarker, true},
		{"vendor.Remote", desc.AggregateMarker, true},
		{"vendor.Remote", "github.com/acme/model.Entity", true},
		{"vendor.Missing", desc.AggregateMarker, false},
		{"github.com/acme/model.Money", desc.AggregateMarker, false},
	}
	for _, tt := range tests {
		if got := oracle.IsSubtype(tt.sub, tt.super); got != tt.want {
			t.Errorf("IsSubtype(%s, %s) = %v, want %v", tt.sub, tt.super, got, tt.want)
		}
	}
	if asked["github.com/acme/model.User"] != 0 {
		t.Error("declared classes should not reach the fallback")
	}
	if asked["vendor.Remote"] != 1 {
		t.Errorf("vendor.Remote resolved %d times, want 1", asked["vendor.Remote"])
	}

	if _, ok := (&Schema{}).Lazy(nil).Lookup("a.A"); ok {
		t.Error("nil fallback should resolve nothing")
	}
}
