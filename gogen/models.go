package gogen

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/wippyai/parcelgen"
	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/hierarchy"
)

// collectEnums returns the enums declared in pkg that the aggregates of procs
// reference, sorted by name.
func collectEnums(procs []*parcelgen.Procedures, oracle hierarchy.Oracle, pkg string) []string {
	seen := make(map[string]bool)
	var visit func(t *desc.Type)
	visit = func(t *desc.Type) {
		if t == nil {
			return
		}
		switch t.Kind() {
		case desc.KindArray:
			visit(t.Base())
		case desc.KindParameterized:
			for _, a := range t.Args() {
				visit(a)
			}
		case desc.KindClass:
			if owner, _ := desc.SplitName(t.Name()); owner != pkg {
				return
			}
			if _, ok := hierarchy.EnumConstants(oracle, t.Name()); ok {
				seen[t.Name()] = true
			}
		}
	}
	for _, p := range procs {
		for _, f := range p.Aggregate.Fields {
			visit(f.Type)
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func model(n *namer, agg desc.Aggregate) string {
	var b strings.Builder
	typ := n.qualify(agg.Name)
	fmt.Fprintf(&b, "type %s struct {\n", typ)
	for _, f := range agg.Fields {
		fmt.Fprintf(&b, "\t%s %s\n", export(f.Name), n.typeOf(f.Type))
	}
	b.WriteString("}\n")
	return b.String()
}

// enum declares an int32 enum whose values are the constant ordinals.
func enum(n *namer, oracle hierarchy.Oracle, class string) string {
	constants, _ := hierarchy.EnumConstants(oracle, class)
	typ := n.qualify(class)
	names := lower(typ) + "Names"
	recv := lower(typ[:1])

	var b strings.Builder
	fmt.Fprintf(&b, "type %s int32\n\n", typ)
	if len(constants) > 0 {
		b.WriteString("const (\n")
		for i, c := range constants {
			if i == 0 {
				fmt.Fprintf(&b, "\t%s %s = iota\n", constName(typ, c), typ)
			} else {
				fmt.Fprintf(&b, "\t%s\n", constName(typ, c))
			}
		}
		b.WriteString(")\n\n")
	}
	fmt.Fprintf(&b, "var %s = [...]string{", names)
	for i, c := range constants {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", c)
	}
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "// Ordinal returns the declaration index of %s.\n", recv)
	fmt.Fprintf(&b, "func (%s %s) Ordinal() int32 { return int32(%s) }\n\n", recv, typ, recv)
	fmt.Fprintf(&b, "func (%s %s) String() string {\n", recv, typ)
	fmt.Fprintf(&b, "\tif %s >= 0 && int(%s) < len(%s) {\n\t\treturn %s[%s]\n\t}\n", recv, recv, names, names, recv)
	fmt.Fprintf(&b, "\treturn %q + %s.Itoa(int(%s)) + \")\"\n}\n", typ+"(", n.use("strconv"), recv)
	return b.String()
}

func lower(s string) string {
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
