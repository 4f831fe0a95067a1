package gogen

import (
	"go/token"
	"go/types"
	"strconv"
	"strings"
	"unicode"

	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
)

// namer tracks imports and the package-level names of one output file.
type namer struct {
	err      error
	pkg      string
	oracle   hierarchy.Oracle
	imports  map[string]string
	aliases  map[string]string
	reserved map[string]bool
}

func newNamer(pkg string, oracle hierarchy.Oracle) *namer {
	n := &namer{
		pkg:      pkg,
		oracle:   oracle,
		imports:  make(map[string]string),
		aliases:  make(map[string]string),
		reserved: make(map[string]bool),
	}
	n.use(desc.ParcelPackage)
	return n
}

func (n *namer) fail(err error) {
	if n.err == nil {
		n.err = err
	}
}

// use imports path and returns its alias.
func (n *namer) use(path string) string {
	if a, ok := n.imports[path]; ok {
		return a
	}
	base := sanitize(path[strings.LastIndexByte(path, '/')+1:])
	alias := base
	for i := 2; n.aliases[alias] != ""; i++ {
		alias = base + strconv.Itoa(i)
	}
	n.imports[path] = alias
	n.aliases[alias] = path
	return alias
}

func (n *namer) parcel() string { return n.use(desc.ParcelPackage) }

// qualify returns the Go expression naming class.
func (n *namer) qualify(class string) string {
	pkg, local := desc.SplitName(class)
	if pkg == "" || pkg == n.pkg {
		n.reserved[local] = true
		return local
	}
	return n.use(pkg) + "." + local
}

// typeOf returns the Go type of a descriptor.
func (n *namer) typeOf(t *desc.Type) string {
	if t == nil {
		n.fail(errors.New(errors.PhaseRender, errors.KindInvalidInput).Detail("missing type").Build())
		return "any"
	}
	switch t.Kind() {
	case desc.KindPrimitive:
		return t.Name()
	case desc.KindBoxed:
		return "*" + t.Name()
	case desc.KindArray:
		return "[]" + n.typeOf(t.Elem())
	case desc.KindParameterized:
		switch t.Name() {
		case desc.List, desc.Collection:
			return "[]" + n.typeOf(t.Arg(0))
		case desc.Set:
			return "map[" + n.key(t, t.Arg(0)) + "]struct{}"
		case desc.Map:
			return "map[" + n.key(t, t.Arg(0)) + "]" + n.typeOf(t.Arg(1))
		case desc.SparseArrayClass:
			return "*" + n.qualify(t.Name()) + "[" + n.typeOf(t.Arg(0)) + "]"
		}
	}
	return "*" + n.qualify(t.Name())
}

// byValue reports whether t is keyed by its pointee in Go sets and maps.
// Aggregates stay keyed by pointer.
func (n *namer) byValue(t *desc.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case desc.KindBoxed:
		return true
	case desc.KindClass:
		if t.Name() == desc.DateClass {
			return true
		}
		_, ok := hierarchy.EnumConstants(n.oracle, t.Name())
		return ok
	}
	return false
}

func (n *namer) key(owner, t *desc.Type) string {
	k := n.typeOf(t)
	if n.byValue(t) {
		return strings.TrimPrefix(k, "*")
	}
	if strings.HasPrefix(k, "[]") || strings.HasPrefix(k, "map[") {
		n.fail(errors.New(errors.PhaseRender, errors.KindUnsupportedType).
			Type(owner.String()).
			Detail("Go map keys must be comparable, got %s", k).
			Build())
	}
	return k
}

// nilable reports whether a Go type has nil as a value.
func nilable(goType string) bool {
	return strings.HasPrefix(goType, "*") || strings.HasPrefix(goType, "[]") || strings.HasPrefix(goType, "map[")
}

// zero returns the zero value literal of a Go type.
func zero(goType string) string {
	switch {
	case nilable(goType):
		return "nil"
	case goType == "bool":
		return "false"
	case goType == "string":
		return `""`
	}
	return "0"
}

// ident returns a unique Go identifier for a local.
func (n *namer) ident(name string, taken map[string]bool) string {
	id := sanitize(name)
	if token.IsKeyword(id) || types.Universe.Lookup(id) != nil || n.aliases[id] != "" || n.reserved[id] {
		id += "_"
	}
	base := id
	for i := 1; taken[id]; i++ {
		id = base + "_" + strconv.Itoa(i)
	}
	taken[id] = true
	return id
}

// sanitize maps name to a valid identifier.
func sanitize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}

// export returns the exported Go name of a field.
func export(name string) string {
	id := []rune(sanitize(name))
	if !unicode.IsLetter(id[0]) {
		return "X" + string(id)
	}
	id[0] = unicode.ToUpper(id[0])
	return string(id)
}

// constName returns the Go constant name of an enum constant, e.g.
// Color and DARK_BLUE give ColorDarkBlue.
func constName(enum, constant string) string {
	var b strings.Builder
	b.WriteString(enum)
	for _, part := range strings.FieldsFunc(constant, func(r rune) bool { return r == '_' || r == '-' || r == ' ' }) {
		rs := []rune(strings.ToLower(part))
		rs[0] = unicode.ToUpper(rs[0])
		b.WriteString(string(rs))
	}
	return b.String()
}
