package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/parcelgen/codec"
	"github.com/wippyai/parcelgen/errors"
)

func write(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	want := Generate{Parallelism: runtime.GOMAXPROCS(0)}
	if diff := cmp.Diff(want, c.Generate); diff != "" {
		t.Errorf("generate (-want +got):\n%s", diff)
	}
	if c.Implementations != codec.DefaultImplementations() {
		t.Errorf("implementations = %+v", c.Implementations)
	}
	if c.Log.Level != "info" {
		t.Errorf("log level = %q", c.Log.Level)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, `
[generate]
package = "github.com/acme/model"
output = "model_parcel.go"
parallelism = 2
models = true

[implementations]
sequence = "linked-list"

[log]
level = "debug"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Generate{Package: "github.com/acme/model", Output: "model_parcel.go", Parallelism: 2, Models: true}
	if diff := cmp.Diff(want, c.Generate); diff != "" {
		t.Errorf("generate (-want +got):\n%s", diff)
	}
	wantImpl := codec.Defaults{Sequence: codec.ImplLinkedList, Set: codec.ImplLinkedSet, Map: codec.ImplLinkedMap}
	if c.Implementations != wantImpl {
		t.Errorf("implementations = %+v, want %+v", c.Implementations, wantImpl)
	}
	if c.OutputPath() != filepath.Join(c.Dir, "model_parcel.go") {
		t.Errorf("output path = %s", c.OutputPath())
	}
	if _, err := c.Logger(); err != nil {
		t.Errorf("Logger failed: %v", err)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    errors.Kind
	}{
		{"syntax", "[generate\n", errors.KindInvalidInput},
		{"unknown set", "[implementations]\nset = \"tree-set\"\n", errors.KindInvalidInput},
		{"negative parallelism", "[generate]\nparallelism = -1\n", errors.KindInvalidInput},
		{"bad level", "[log]\nlevel = \"loud\"\n", errors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			write(t, dir, tt.content)
			_, err := Load(dir)
			if !stderrors.Is(err, errors.New(errors.PhaseConfig, tt.kind).Build()) {
				t.Errorf("got %v, want config/%s", err, tt.kind)
			}
		})
	}

	_, err := Load(t.TempDir())
	if !stderrors.Is(err, errors.New(errors.PhaseConfig, errors.KindNotFound).Build()) {
		t.Errorf("missing file: got %v", err)
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	write(t, root, "[generate]\nname = \"model\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil || c.Generate.Name != "model" {
		t.Fatalf("got %+v", c)
	}
	abs, _ := filepath.Abs(root)
	if c.Dir != abs {
		t.Errorf("Dir = %s, want %s", c.Dir, abs)
	}
}
