package parcelgen

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/parcelgen/codec"
	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/emit"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
)

var testClasses = hierarchy.MustBuild(
	hierarchy.Class{Name: "example.User", Kind: hierarchy.KindAggregate},
	hierarchy.Class{Name: "example.Color", Kind: hierarchy.KindEnum, Constants: []string{"RED"}},
)

func userAggregate() desc.Aggregate {
	return desc.Aggregate{Name: "example.User", Fields: []desc.Field{
		{Name: "id", Type: desc.MustParse("int64")},
		{Name: "name", Type: desc.MustParse("string")},
		{Name: "tags", Type: desc.MustParse("list<string>")},
		{Name: "parent", Type: desc.MustParse("example.User")},
	}}
}

func TestGenerateShape(t *testing.T) {
	procs, err := New(testClasses).Generate(context.Background(), userAggregate())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	dec := procs.Decode
	if dec.Kind != emit.Decode || dec.Name != "example.User" || len(dec.Params) != 1 {
		t.Fatalf("unexpected decode header: %s", dec)
	}
	last := dec.Body[len(dec.Body)-1]
	if last.Op != emit.OpConstruct {
		t.Fatalf("decode ends with %s, want construct", last.Op)
	}
	if diff := cmp.Diff([]string{"id", "name", "tags", "parent"}, last.Fields); diff != "" {
		t.Errorf("construct fields (-want +got):\n%s", diff)
	}
	if dec.Result != last.Dst {
		t.Error("decode does not return the constructed value")
	}

	enc := procs.Encode
	if enc.Kind != emit.Encode || len(enc.Params) != 3 || enc.Result != emit.NoSlot {
		t.Fatalf("unexpected encode header: %s", enc)
	}
	var fields []string
	enc.Walk(func(in *emit.Instr) {
		if in.Op == emit.OpInvoke && in.Method == emit.MethodGetField {
			fields = append(fields, in.Name)
		}
	})
	if diff := cmp.Diff([]string{"id", "name", "tags", "parent"}, fields); diff != "" {
		t.Errorf("encoded fields (-want +got):\n%s", diff)
	}

	listing := procs.String()
	for _, want := range []string{
		"decode example.User(p github.com/wippyai/parcelgen/parcel.Parcel) -> user",
		"encode example.User(p github.com/wippyai/parcelgen/parcel.Parcel, v example.User, flags int32)",
		"write.aggregate p parent flags",
	} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing lacks %q:\n%s", want, listing)
		}
	}
}

func TestGenerateRejectsWholeAggregate(t *testing.T) {
	agg := userAggregate()
	agg.Fields = append(agg.Fields, desc.Field{Name: "blob", Type: desc.MustParse("example.Unknown")})

	procs, err := New(testClasses).Generate(context.Background(), agg)
	if procs != nil {
		t.Error("partial procedures returned")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindUnsupportedType {
		t.Fatalf("err = %v, want unsupported_type", err)
	}
	want := `property "blob" of example.User has unsupported type example.Unknown`
	if e.Detail != want {
		t.Errorf("detail = %q, want %q", e.Detail, want)
	}
}

func TestGenerateInvalidAggregates(t *testing.T) {
	tests := []struct {
		name string
		agg  desc.Aggregate
		kind errors.Kind
	}{
		{"no name", desc.Aggregate{}, errors.KindInvalidInput},
		{"duplicate field", desc.Aggregate{Name: "example.User", Fields: []desc.Field{
			{Name: "a", Type: desc.MustParse("int32")},
			{Name: "a", Type: desc.MustParse("int64")},
		}}, errors.KindDuplicate},
		{"empty field name", desc.Aggregate{Name: "example.User", Fields: []desc.Field{
			{Type: desc.MustParse("int32")},
		}}, errors.KindDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(testClasses).Generate(context.Background(), tt.agg)
			if !stderrors.Is(err, errors.New(errors.PhaseGenerate, tt.kind).Build()) {
				t.Errorf("err = %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestGenerateEmptyAggregate(t *testing.T) {
	procs, err := New(testClasses).Generate(context.Background(), desc.Aggregate{Name: "example.User"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(procs.Encode.Body) != 0 {
		t.Errorf("encode of empty aggregate has %d instructions", len(procs.Encode.Body))
	}
}

func TestGenerateAll(t *testing.T) {
	bad := desc.Aggregate{Name: "example.Bad", Fields: []desc.Field{
		{Name: "x", Type: desc.MustParse("map<string>")},
	}}
	aggs := []desc.Aggregate{userAggregate(), bad, {Name: "example.Empty"}}

	out, err := New(testClasses).WithLimit(2).GenerateAll(context.Background(), aggs)
	if err == nil {
		t.Fatal("expected error for example.Bad")
	}
	if !strings.Contains(err.Error(), "example.Bad") {
		t.Errorf("error does not name the failing aggregate: %v", err)
	}
	if len(out) != 3 || out[0] == nil || out[1] != nil || out[2] == nil {
		t.Fatalf("unexpected results: %v", out)
	}
	if out[2].Aggregate.Name != "example.Empty" {
		t.Errorf("results out of order: %s", out[2].Aggregate.Name)
	}
}

func TestGenerateAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := New(testClasses).GenerateAll(ctx, []desc.Aggregate{userAggregate()})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if out[0] != nil {
		t.Error("aggregate generated after cancellation")
	}
}

func TestWithDefaults(t *testing.T) {
	agg := desc.Aggregate{Name: "example.User", Fields: []desc.Field{
		{Name: "tags", Type: desc.MustParse("set<string>")},
	}}
	gen := New(testClasses).WithDefaults(codec.Defaults{Set: codec.ImplHashSet})
	procs, err := gen.Generate(context.Background(), agg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var impl string
	procs.Decode.Walk(func(in *emit.Instr) {
		if in.Op == emit.OpNew {
			impl = in.Name
		}
	})
	if impl != codec.ImplHashSet {
		t.Errorf("set implementation = %q, want %q", impl, codec.ImplHashSet)
	}
	if gen.Classifier().Defaults().Sequence != codec.ImplArrayList {
		t.Error("unset defaults did not fall back")
	}
}

func TestGeneratorLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gen := New(testClasses).WithLogger(zap.New(core))

	if _, err := gen.Generate(context.Background(), userAggregate()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if n := logs.FilterMessage("field classified").Len(); n != 4 {
		t.Errorf("logged %d field classifications, want 4", n)
	}
	entry := logs.FilterMessage("field classified").All()[3]
	if got := entry.ContextMap()["category"]; got != "nullable" {
		t.Errorf("parent category = %v, want nullable", got)
	}
	if logs.FilterMessage("aggregate generated").Len() != 1 {
		t.Error("missing info entry")
	}

	_, _ = gen.Generate(context.Background(), desc.Aggregate{Name: "example.User", Fields: []desc.Field{
		{Name: "x", Type: desc.MustParse("example.Unknown")},
	}})
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Error("rejection not logged at error level")
	}
}
