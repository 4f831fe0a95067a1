package emit

import (
	"fmt"
	"strconv"
	"strings"
)

// Program is a finalized procedure.
type Program struct {
	Name   string
	Params []Slot
	Locals []Local
	Body   []Instr
	Result Slot
	Kind   Kind
}

// Local returns the declaration of s.
func (p *Program) Local(s Slot) Local {
	return p.Locals[s]
}

// Walk visits every instruction depth-first, bodies after their owner.
func (p *Program) Walk(fn func(in *Instr)) {
	walk(p.Body, fn)
}

func walk(body []Instr, fn func(in *Instr)) {
	for i := range body {
		fn(&body[i])
		if len(body[i].Body) > 0 {
			walk(body[i].Body, fn)
		}
	}
}

// Referenced returns the labels targeted by a branch or jump.
func (p *Program) Referenced() map[Label]bool {
	refs := make(map[Label]bool)
	p.Walk(func(in *Instr) {
		if in.Op == OpBranch || in.Op == OpJump {
			refs[in.Label] = true
		}
	})
	return refs
}

// String renders a textual listing.
func (p *Program) String() string {
	var b strings.Builder

	b.WriteString(p.Kind.String())
	b.WriteByte(' ')
	b.WriteString(p.Name)
	b.WriteByte('(')
	for i, s := range p.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		l := p.Locals[s]
		b.WriteString(l.Name)
		b.WriteByte(' ')
		b.WriteString(l.Type.String())
	}
	b.WriteByte(')')
	if p.Result != NoSlot {
		b.WriteString(" -> ")
		b.WriteString(p.name(p.Result))
	}
	b.WriteByte('\n')

	for _, l := range p.Locals {
		if l.Param {
			continue
		}
		fmt.Fprintf(&b, "  var %s %s\n", l.Name, l.Type)
	}

	p.list(&b, p.Body, 1)
	return b.String()
}

func (p *Program) name(s Slot) string {
	if s < 0 || int(s) >= len(p.Locals) {
		return "_"
	}
	return p.Locals[s].Name
}

func (p *Program) names(slots []Slot) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = p.name(s)
	}
	return strings.Join(parts, " ")
}

func (p *Program) list(b *strings.Builder, body []Instr, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, in := range body {
		switch in.Op {
		case OpConst:
			fmt.Fprintf(b, "%s%s = const %s\n", indent, p.name(in.Dst), literal(in.Value))
		case OpMove:
			fmt.Fprintf(b, "%s%s = %s\n", indent, p.name(in.Dst), p.name(in.Args[0]))
		case OpRead:
			fmt.Fprintf(b, "%s%s = read.%s %s", indent, p.name(in.Dst), in.Stream, p.name(in.Args[0]))
			if in.Type != nil {
				fmt.Fprintf(b, " %s", in.Type)
			}
			b.WriteByte('\n')
		case OpWrite:
			fmt.Fprintf(b, "%swrite.%s %s\n", indent, in.Stream, p.names(in.Args))
		case OpBranch:
			fmt.Fprintf(b, "%sif %s %s goto L%d\n", indent, in.Cond, p.name(in.Args[0]), in.Label)
		case OpJump:
			fmt.Fprintf(b, "%sgoto L%d\n", indent, in.Label)
		case OpMark:
			fmt.Fprintf(b, "%sL%d:\n", strings.Repeat("  ", depth-1)+" ", in.Label)
		case OpLoop:
			fmt.Fprintf(b, "%sloop %s < %s {\n", indent, p.name(in.Args[0]), p.name(in.Args[1]))
			p.list(b, in.Body, depth+1)
			fmt.Fprintf(b, "%s}\n", indent)
		case OpRange:
			fmt.Fprintf(b, "%srange %s in %s {\n", indent, p.name(in.Dst), p.name(in.Args[0]))
			p.list(b, in.Body, depth+1)
			fmt.Fprintf(b, "%s}\n", indent)
		case OpRangeMap:
			fmt.Fprintf(b, "%srange %s, %s in %s {\n", indent, p.name(in.Dst), p.name(in.Dst2), p.name(in.Args[0]))
			p.list(b, in.Body, depth+1)
			fmt.Fprintf(b, "%s}\n", indent)
		case OpNew:
			fmt.Fprintf(b, "%s%s = new %s", indent, p.name(in.Dst), in.Type)
			if in.Name != "" {
				fmt.Fprintf(b, " (%s)", in.Name)
			}
			b.WriteByte('\n')
		case OpConstruct:
			parts := make([]string, len(in.Fields))
			for i, f := range in.Fields {
				parts[i] = f + ": " + p.name(in.Args[i])
			}
			fmt.Fprintf(b, "%s%s = construct %s {%s}\n", indent, p.name(in.Dst), in.Type, strings.Join(parts, ", "))
		case OpMakeArray:
			fmt.Fprintf(b, "%s%s = make.array %s %s\n", indent, p.name(in.Dst), in.Type, p.name(in.Args[0]))
		case OpInvoke:
			b.WriteString(indent)
			if in.Dst != NoSlot {
				b.WriteString(p.name(in.Dst))
				b.WriteString(" = ")
			}
			b.WriteString(in.Method.String())
			if in.Name != "" {
				b.WriteByte(' ')
				b.WriteString(in.Name)
			}
			if in.Type != nil {
				b.WriteByte(' ')
				b.WriteString(in.Type.String())
			}
			if len(in.Args) > 0 {
				b.WriteByte(' ')
				b.WriteString(p.names(in.Args))
			}
			b.WriteByte('\n')
		}
	}
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	default:
		return fmt.Sprint(x)
	}
}
