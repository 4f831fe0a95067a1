package gogen

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/wippyai/parcelgen"
	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/emit"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
)

// Options controls the output file.
type Options struct {
	// Package is the import path the file belongs to. Defaults to the package
	// of the first aggregate. Every aggregate must be declared in it.
	Package string
	// Name is the package clause. Defaults to the last element of Package.
	Name string
	// Models also declares the aggregate structs and referenced enums.
	Models bool
}

type importSpec struct {
	Alias string
	Path  string
	Named bool
}

type registration struct {
	Tag    string
	Create string
}

type file struct {
	Name          string
	Parcel        string
	Imports       []importSpec
	Models        []string
	Functions     []string
	Registrations []registration
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by parcelgen. DO NOT EDIT.

package {{.Name}}

import (
{{range .Imports}}	{{if .Named}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{range .Models}}
{{.}}
{{end}}
{{range .Functions}}
{{.}}
{{end}}
func init() {
{{range .Registrations}}	{{$.Parcel}}.Register({{printf "%q" .Tag}}, func(p *{{$.Parcel}}.Parcel) {{$.Parcel}}.Aggregate { return {{.Create}}(p) })
{{end}}}
`))

// Render generates one Go source file for procs. Nil entries are skipped.
func Render(procs []*parcelgen.Procedures, oracle hierarchy.Oracle, opts Options) ([]byte, error) {
	var live []*parcelgen.Procedures
	for _, p := range procs {
		if p != nil {
			live = append(live, p)
		}
	}
	if len(live) == 0 {
		return nil, errors.InvalidInput(errors.PhaseRender, "no procedures to render")
	}

	pkg := opts.Package
	if pkg == "" {
		pkg, _ = desc.SplitName(live[0].Aggregate.Name)
	}
	name := opts.Name
	if name == "" {
		name = "model"
		if pkg != "" {
			name = sanitize(pkg[strings.LastIndexByte(pkg, '/')+1:])
		}
	}

	n := newNamer(pkg, oracle)
	for _, p := range live {
		if owner, _ := desc.SplitName(p.Aggregate.Name); owner != pkg {
			return nil, errors.New(errors.PhaseRender, errors.KindInvalidInput).
				Owner(p.Aggregate.Name).
				Detail("aggregate is not declared in package %q", pkg).
				Build()
		}
		scan(n, p.Decode)
		scan(n, p.Encode)
	}
	enums := collectEnums(live, oracle, pkg)
	if opts.Models && len(enums) > 0 {
		n.use("strconv")
	}
	if n.err != nil {
		return nil, n.err
	}

	f := file{Name: name, Parcel: n.parcel()}
	if opts.Models {
		for _, p := range live {
			f.Models = append(f.Models, model(n, p.Aggregate))
		}
		for _, e := range enums {
			f.Models = append(f.Models, enum(n, oracle, e))
		}
	}
	for _, p := range live {
		fns, reg, err := functions(n, oracle, p)
		if err != nil {
			return nil, err
		}
		f.Functions = append(f.Functions, fns)
		f.Registrations = append(f.Registrations, reg)
	}
	if n.err != nil {
		return nil, n.err
	}
	f.Imports = n.specs()

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, f); err != nil {
		return nil, errors.New(errors.PhaseRender, errors.KindInvalidInput).Cause(err).Build()
	}
	src, err := imports.Process("", buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8, FormatOnly: true})
	if err != nil {
		return buf.Bytes(), errors.New(errors.PhaseRender, errors.KindInvalidProgram).
			Detail("generated source does not parse").
			Cause(err).
			Build()
	}
	return src, nil
}

// scan registers every type a program mentions so imports and reserved
// names are known before locals are named.
func scan(n *namer, prog *emit.Program) {
	if prog == nil {
		return
	}
	for _, l := range prog.Locals {
		n.typeOf(l.Type)
	}
	prog.Walk(func(in *emit.Instr) {
		if in.Type != nil {
			n.typeOf(in.Type)
		}
		if in.Op == emit.OpInvoke && in.Method == emit.MethodFromMillis {
			n.use("time")
		}
	})
}

func (n *namer) specs() []importSpec {
	specs := make([]importSpec, 0, len(n.imports))
	for path, alias := range n.imports {
		if path == n.pkg {
			continue
		}
		base := path[strings.LastIndexByte(path, '/')+1:]
		specs = append(specs, importSpec{Alias: alias, Path: path, Named: alias != base})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Path < specs[j].Path })
	return specs
}

func functions(n *namer, oracle hierarchy.Oracle, p *parcelgen.Procedures) (string, registration, error) {
	if p.Decode == nil || p.Encode == nil {
		return "", registration{}, errors.New(errors.PhaseRender, errors.KindInvalidInput).
			Owner(p.Aggregate.Name).
			Detail("missing decode or encode procedure").
			Build()
	}
	for _, fd := range p.Aggregate.Fields {
		switch export(fd.Name) {
		case "WriteToParcel", "ParcelTag":
			return "", registration{}, errors.New(errors.PhaseRender, errors.KindDuplicate).
				Owner(p.Aggregate.Name).
				Path(fd.Name).
				Detail("field collides with a generated method").
				Build()
		}
	}

	typ := n.qualify(p.Aggregate.Name)
	create := "Create" + typ + "FromParcel"
	parcelType := "*" + n.parcel() + ".Parcel"
	var b strings.Builder

	dec := newFunction(n, oracle, p.Decode)
	fmt.Fprintf(&b, "// %s decodes a %s written by WriteToParcel.\n", create, typ)
	fmt.Fprintf(&b, "func %s(%s %s) *%s {\n%s}\n\n", create, dec.id(p.Decode.Params[0]), parcelType, typ, dec.render())

	enc := newFunction(n, oracle, p.Encode)
	params := p.Encode.Params
	fmt.Fprintf(&b, "// WriteToParcel encodes v field by field.\n")
	fmt.Fprintf(&b, "func (%s *%s) WriteToParcel(%s %s, %s int32) {\n%s}\n\n",
		enc.id(params[1]), typ, enc.id(params[0]), parcelType, enc.id(params[2]), enc.render())

	fmt.Fprintf(&b, "// ParcelTag returns the wire tag of %s.\n", typ)
	fmt.Fprintf(&b, "func (*%s) ParcelTag() string { return %q }\n", typ, p.Aggregate.Name)

	return b.String(), registration{Tag: p.Aggregate.Name, Create: create}, nil
}
