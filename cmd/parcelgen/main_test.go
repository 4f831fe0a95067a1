package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/parcelgen"
	"github.com/wippyai/parcelgen/gogen"
)

const model = `
package: example
classes:
  - name: User
    kind: aggregate
    fields:
      - {name: id, type: int64}
      - {name: tags, type: list<string>}
  - name: Broken
    kind: aggregate
    fields:
      - {name: handle, type: Socket}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunWritesSource(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "model.yaml", `
package: example
classes:
  - name: User
    kind: aggregate
    fields:
      - {name: id, type: int64}
`)
	cfgFile := writeFile(t, dir, "parcelgen.toml", "[generate]\noutput = \"user_parcel.go\"\nmodels = true\n")

	err := run(context.Background(), options{schemaFile: schemaFile, configFile: cfgFile})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	src, err := os.ReadFile(filepath.Join(dir, "user_parcel.go"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"package example", "type User struct", "func CreateUserFromParcel("} {
		if !strings.Contains(string(src), want) {
			t.Errorf("output lacks %q:\n%s", want, src)
		}
	}
}

func TestRunReportsRejected(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "model.yaml", model)
	cfgFile := writeFile(t, dir, "parcelgen.toml", "")

	err := run(context.Background(), options{schemaFile: schemaFile, configFile: cfgFile, output: filepath.Join(dir, "out.go")})
	if err == nil || !strings.Contains(err.Error(), "example.Broken") {
		t.Fatalf("got %v, want rejection of example.Broken", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.go")); !os.IsNotExist(statErr) {
		t.Error("output written despite a rejected aggregate")
	}
}

func TestInteractiveModel(t *testing.T) {
	dir := t.TempDir()
	s, idx, err := loadSchema(options{schemaFile: writeFile(t, dir, "model.yaml", model)})
	if err != nil {
		t.Fatal(err)
	}
	procs, genErr := parcelgen.New(idx).GenerateAll(context.Background(), s.Aggregates)
	if genErr == nil {
		t.Fatal("expected Broken to be rejected")
	}

	m := newInteractiveModel(s.Aggregates, procs, genErr, idx, gogen.Options{})
	if len(m.visible) != 2 {
		t.Fatalf("visible = %v", m.visible)
	}
	if m.entries[1].err == nil || !strings.Contains(m.entries[1].err.Error(), "Socket") {
		t.Errorf("Broken entry error = %v", m.entries[1].err)
	}

	key := func(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateShow || !strings.Contains(m.viewport.View(), "decode example.User") {
		t.Fatalf("enter did not show the listing:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.view != viewSource {
		t.Error("tab did not switch to source")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateSelect {
		t.Error("esc did not go back")
	}

	m.Update(key("/"))
	for _, r := range "brok" {
		m.Update(key(string(r)))
	}
	if len(m.visible) != 1 || m.entries[m.visible[0]].agg.Name != "example.Broken" {
		t.Errorf("filter kept %v", m.visible)
	}
	if !strings.Contains(m.View(), "rejected") {
		t.Errorf("rejected aggregate not marked:\n%s", m.View())
	}
}
