package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseClassify,
				Kind:   KindUnsupportedType,
				Owner:  "example.User",
				Path:   []string{"tags", "[elem]"},
				Type:   "chan<int32>",
				Detail: "no codec",
			},
			contains: []string{"[classify]", "unsupported_type", "example.User", "tags.[elem]", "chan<int32>", "no codec"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidInput,
				Detail: "bad schema",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_input", "bad schema", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := UnsupportedType("example.User", "tags", "chan<int32>")

	if !err.Is(&Error{Phase: PhaseClassify, Kind: KindUnsupportedType}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindUnsupportedType}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseClassify, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	var target *Error
	wrapped := errors.Join(errors.New("other"), err)
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find *Error")
	}
	if target.Owner != "example.User" {
		t.Errorf("Owner = %q, want example.User", target.Owner)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEmit, KindInvalidProgram).
		Owner("decode example.User").
		Path("parent").
		Type("example.User").
		Value(42).
		Cause(cause).
		Detail("label %s marked %d times", "L1", 2).
		Build()

	if err.Phase != PhaseEmit {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEmit)
	}
	if err.Kind != KindInvalidProgram {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidProgram)
	}
	if len(err.Path) != 1 || err.Path[0] != "parent" {
		t.Errorf("Path = %v, want [parent]", err.Path)
	}
	if err.Owner != "decode example.User" {
		t.Errorf("Owner = %v", err.Owner)
	}
	if err.Type != "example.User" {
		t.Errorf("Type = %v, want example.User", err.Type)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "label L1 marked 2 times" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("UnsupportedType", func(t *testing.T) {
		err := UnsupportedType("example.User", "callback", "example.Func")
		if err.Kind != KindUnsupportedType {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupportedType)
		}
		for _, s := range []string{"example.User", "callback", "example.Func"} {
			if !strings.Contains(err.Error(), s) {
				t.Errorf("message %q missing %q", err.Error(), s)
			}
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseDecode, []string{"field"}, "int64", "string")
		if err.Kind != KindTypeMismatch || err.Type != "int64" {
			t.Errorf("Kind=%v Type=%v", err.Kind, err.Type)
		}
	})

	t.Run("InvalidProgram", func(t *testing.T) {
		err := InvalidProgram("encode example.User", "backward branch")
		if err.Phase != PhaseEmit || err.Kind != KindInvalidProgram {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseDecode, []string{"list"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseEncode, []string{"ptr"}, "int32")
		if err.Kind != KindNilPointer || err.Type != "int32" {
			t.Errorf("Kind=%v Type=%v", err.Kind, err.Type)
		}
	})

	t.Run("InvalidEnum", func(t *testing.T) {
		err := InvalidEnum(PhaseDecode, []string{"status"}, 7, "example.Status")
		if err.Kind != KindInvalidEnum {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidEnum)
		}
		if err.Value != int32(7) {
			t.Errorf("Value = %v, want 7", err.Value)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseDecode, "creator", "example.User")
		if err.Kind != KindNotFound || !strings.Contains(err.Error(), "creator not found") {
			t.Errorf("unexpected %v", err)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		err := InvalidInput(PhaseConfig, "unknown implementation %q", "tree-map")
		if !strings.Contains(err.Detail, "tree-map") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})
}
