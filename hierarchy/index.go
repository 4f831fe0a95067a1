package hierarchy

import (
	"sort"

	"github.com/wippyai/parcelgen/errors"
)

// Index is a precomputed supertype-closure table.
type Index struct {
	classes map[string]Class
	closure map[string]map[string]struct{}
}

// Build computes the closure of every declared class. Undeclared supertypes are
// treated as roots. Duplicate declarations and inheritance cycles are rejected.
func Build(classes []Class) (*Index, error) {
	idx := &Index{
		classes: make(map[string]Class, len(classes)),
		closure: make(map[string]map[string]struct{}, len(classes)),
	}

	for _, c := range classes {
		if _, dup := idx.classes[c.Name]; dup {
			return nil, errors.New(errors.PhaseLoad, errors.KindDuplicate).
				Type(c.Name).
				Detail("class declared twice").
				Build()
		}
		idx.classes[c.Name] = c
	}

	const (
		white = iota
		grey
		black
	)
	state := make(map[string]int, len(classes))

	var visit func(name string, chain []string) error
	visit = func(name string, chain []string) error {
		switch state[name] {
		case black:
			return nil
		case grey:
			return errors.New(errors.PhaseLoad, errors.KindCycle).
				Type(name).
				Path(append(chain, name)...).
				Detail("inheritance cycle").
				Build()
		}
		state[name] = grey

		set := map[string]struct{}{name: {}}
		if c, ok := idx.classes[name]; ok {
			for _, s := range c.supers() {
				if err := visit(s, append(chain, name)); err != nil {
					return err
				}
				for anc := range idx.closure[s] {
					set[anc] = struct{}{}
				}
			}
		}
		idx.closure[name] = set
		state[name] = black
		return nil
	}

	names := make([]string, 0, len(idx.classes))
	for name := range idx.classes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(classes ...Class) *Index {
	idx, err := Build(classes)
	if err != nil {
		panic(err)
	}
	return idx
}

func (idx *Index) IsSubtype(sub, super string) bool {
	if sub == super {
		return true
	}
	_, ok := idx.closure[sub][super]
	return ok
}

func (idx *Index) Lookup(name string) (Class, bool) {
	c, ok := idx.classes[name]
	return c, ok
}

// Classes returns all declarations sorted by name.
func (idx *Index) Classes() []Class {
	out := make([]Class, 0, len(idx.classes))
	for _, c := range idx.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Supertypes returns the sorted closure of name, excluding name itself.
func (idx *Index) Supertypes(name string) []string {
	var out []string
	for s := range idx.closure[name] {
		if s != name {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
