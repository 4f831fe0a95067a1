package hierarchy

import (
	"sync"
)

// Source returns the declaration of a class on demand.
type Source func(name string) (Class, bool)

// Lazy resolves supertype closures on first query. Racing goroutines agree on
// the first stored closure. Cycles terminate the walk instead of failing.
type Lazy struct {
	source  Source
	closure sync.Map // string -> map[string]struct{}
}

// NewLazy returns an oracle backed by source.
func NewLazy(source Source) *Lazy {
	return &Lazy{source: source}
}

// FromMap returns a source over a fixed set of declarations.
func FromMap(classes map[string]Class) Source {
	return func(name string) (Class, bool) {
		c, ok := classes[name]
		return c, ok
	}
}

func (l *Lazy) IsSubtype(sub, super string) bool {
	if sub == super {
		return true
	}
	_, ok := l.supertypes(sub)[super]
	return ok
}

func (l *Lazy) Lookup(name string) (Class, bool) {
	return l.source(name)
}

func (l *Lazy) supertypes(name string) map[string]struct{} {
	if cached, ok := l.closure.Load(name); ok {
		return cached.(map[string]struct{})
	}

	set := map[string]struct{}{name: {}}
	queue := []string{name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		c, ok := l.source(cur)
		if !ok {
			continue
		}
		for _, s := range c.supers() {
			if _, seen := set[s]; seen {
				continue
			}
			set[s] = struct{}{}
			queue = append(queue, s)
		}
	}

	actual, _ := l.closure.LoadOrStore(name, set)
	return actual.(map[string]struct{})
}
