package desc

import (
	"strings"

	"github.com/wippyai/parcelgen/errors"
)

// Resolver maps a name written in a type expression to a qualified class name.
type Resolver func(name string) string

// Parse parses a canonical type expression.
func Parse(expr string) (*Type, error) {
	return ParseWith(expr, nil)
}

// MustParse is like Parse but panics on error. Intended for tests and tables.
func MustParse(expr string) *Type {
	t, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseWith parses expr, passing every class name through resolve.
//
//	type  = "*" primitive | "[]" type | name [ "<" type { "," type } ">" ]
func ParseWith(expr string, resolve Resolver) (*Type, error) {
	p := &parser{src: expr, resolve: resolve}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.fail("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

type parser struct {
	resolve Resolver
	src     string
	pos     int
}

func (p *parser) fail(format string, args ...any) error {
	return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
		Type(p.src).
		Detail("type expression at %d: "+format, append([]any{p.pos}, args...)...).
		Build()
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) parseType() (*Type, error) {
	p.skipSpace()
	switch {
	case strings.HasPrefix(p.src[p.pos:], "[]"):
		p.pos += 2
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case strings.HasPrefix(p.src[p.pos:], "*"):
		p.pos++
		name := p.ident()
		if !IsPrimitiveName(name) || name == String {
			return nil, p.fail("only non-string primitives can be boxed, got %q", name)
		}
		return Boxed(name), nil
	}

	name := p.ident()
	if name == "" {
		return nil, p.fail("expected type name")
	}
	if IsPrimitiveName(name) {
		return Primitive(name), nil
	}
	if p.resolve != nil {
		name = p.resolve(name)
	}

	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return Class(name), nil
	}
	p.pos++

	var args []*Type
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.fail("unterminated type arguments")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == '>' {
			p.pos++
			break
		}
		return nil, p.fail("expected ',' or '>'")
	}
	return Parameterized(name, args...), nil
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c == '.' || c == '/' || c == '-' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// ResolveParcel expands the short "parcel." prefix to the container package.
func ResolveParcel(name string) string {
	if rest, ok := strings.CutPrefix(name, "parcel."); ok {
		return ParcelPackage + "." + rest
	}
	return name
}
