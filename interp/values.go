package interp

import (
	"reflect"
)

// Object is a dynamic aggregate instance.
type Object struct {
	Fields map[string]any
	Class  string
}

// NewObject returns an object of class with the given fields.
func NewObject(class string, fields map[string]any) *Object {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Object{Class: class, Fields: fields}
}

// Enum is one constant of an enum class.
type Enum struct {
	Class   string
	Name    string
	Ordinal int32
}

// List is a sequence collection.
type List struct {
	Impl  string
	Items []any
}

func (l *List) Len() int { return len(l.Items) }

func (l *List) Add(v any) { l.Items = append(l.Items, v) }

// Set is a collection without duplicates. Iteration follows insertion order
// for every implementation.
type Set struct {
	Impl  string
	Items []any
}

func (s *Set) Len() int { return len(s.Items) }

// Add inserts v unless an equal element is present.
func (s *Set) Add(v any) {
	if s.Contains(v) {
		return
	}
	s.Items = append(s.Items, v)
}

// Contains reports whether an element equal to v is present.
func (s *Set) Contains(v any) bool {
	for _, it := range s.Items {
		if reflect.DeepEqual(it, v) {
			return true
		}
	}
	return false
}

// Equal compares sets by membership.
func (s *Set) Equal(o *Set) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.Items) != len(o.Items) {
		return false
	}
	for _, it := range s.Items {
		if !o.Contains(it) {
			return false
		}
	}
	return true
}

// LinkedMap is an insertion-ordered map. Keys are compared structurally.
type LinkedMap struct {
	Keys   []any
	Values []any
}

// NewLinkedMap returns an empty map.
func NewLinkedMap() *LinkedMap { return &LinkedMap{} }

func (m *LinkedMap) Len() int { return len(m.Keys) }

func (m *LinkedMap) index(k any) int {
	for i, key := range m.Keys {
		if reflect.DeepEqual(key, k) {
			return i
		}
	}
	return -1
}

// Put sets the value of k, keeping the position of an existing key.
func (m *LinkedMap) Put(k, v any) {
	if i := m.index(k); i >= 0 {
		m.Values[i] = v
		return
	}
	m.Keys = append(m.Keys, k)
	m.Values = append(m.Values, v)
}

// Get returns the value of k.
func (m *LinkedMap) Get(k any) (any, bool) {
	if i := m.index(k); i >= 0 {
		return m.Values[i], true
	}
	return nil, false
}

// Equal compares maps by entry set, ignoring order.
func (m *LinkedMap) Equal(o *LinkedMap) bool {
	if m == nil || o == nil {
		return m == o
	}
	if len(m.Keys) != len(o.Keys) {
		return false
	}
	for i, k := range m.Keys {
		v, ok := o.Get(k)
		if !ok || !reflect.DeepEqual(v, m.Values[i]) {
			return false
		}
	}
	return true
}

// isNil reports whether v is absent, including typed nil pointers, slices
// and maps.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// norm collapses typed nils into an untyped nil.
func norm(v any) any {
	if isNil(v) {
		return nil
	}
	return v
}
