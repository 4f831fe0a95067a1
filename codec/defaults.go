package codec

import (
	"slices"

	"github.com/wippyai/parcelgen/errors"
)

// Designated implementation names.
const (
	ImplArrayList  = "array-list"
	ImplLinkedList = "linked-list"
	ImplLinkedSet  = "linked-set"
	ImplHashSet    = "hash-set"
	ImplLinkedMap  = "linked-map"
)

var (
	SequenceImplementations = []string{ImplArrayList, ImplLinkedList}
	SetImplementations      = []string{ImplLinkedSet, ImplHashSet}
	MapImplementations      = []string{ImplLinkedMap}
)

// Defaults names the concrete implementations constructed on decode.
type Defaults struct {
	Sequence string `toml:"sequence"`
	Set      string `toml:"set"`
	Map      string `toml:"map"`
}

// DefaultImplementations returns array-list, linked-set and linked-map.
func DefaultImplementations() Defaults {
	return Defaults{Sequence: ImplArrayList, Set: ImplLinkedSet, Map: ImplLinkedMap}
}

// WithFallback fills empty names from DefaultImplementations.
func (d Defaults) WithFallback() Defaults {
	def := DefaultImplementations()
	if d.Sequence == "" {
		d.Sequence = def.Sequence
	}
	if d.Set == "" {
		d.Set = def.Set
	}
	if d.Map == "" {
		d.Map = def.Map
	}
	return d
}

// Validate rejects unknown implementation names.
func (d Defaults) Validate() error {
	checks := []struct {
		role    string
		name    string
		allowed []string
	}{
		{"sequence", d.Sequence, SequenceImplementations},
		{"set", d.Set, SetImplementations},
		{"map", d.Map, MapImplementations},
	}
	for _, c := range checks {
		if !slices.Contains(c.allowed, c.name) {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path(c.role).
				Value(c.name).
				Detail("unknown %s implementation %q, want one of %v", c.role, c.name, c.allowed).
				Build()
		}
	}
	return nil
}
