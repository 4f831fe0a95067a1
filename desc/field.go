package desc

// Field describes one declared property of an aggregate.
type Field struct {
	Type *Type
	Name string
	// Adapter names a custom adapter class; empty when the field is not annotated.
	Adapter string
	// Nullable is derived from the source type system.
	Nullable bool
}

// Aggregate is a class selected for codec generation.
type Aggregate struct {
	Name   string
	Fields []Field
}

// Field returns the field with the given name.
func (a *Aggregate) Field(name string) (Field, bool) {
	for _, f := range a.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
