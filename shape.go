package reqshape

// Target is what a payload is validated against: a registered *Shape, a Ref
// to one by name, or a Bare scalar marker that bypasses the pipeline.
type Target interface {
	targetName() string
}

// Shape is a named, closed set of declared fields.
type Shape struct {
	Name        string
	Description string
	Fields      []Field

	index    map[string]int
	compiled bool
}

// Field declares one property of a Shape.
type Field struct {
	Name        string
	Description string
	Kind        Kind
	Required    bool
	Nullable    bool
	HasDefault  bool
	Default     any
	Rules       []Rule
	// Ref names the shape of an object field, or of every element of an array
	// field.
	Ref string
	// Elem declares the elements of an array of scalars.
	Elem *Field
}

// Ref points at a registered shape by name.
type Ref string

// Bare marks a target that is just a scalar; payloads pass through untouched.
type Bare Kind

func (s *Shape) targetName() string { return s.Name }
func (r Ref) targetName() string    { return string(r) }
func (b Bare) targetName() string   { return Kind(b).String() }

// Lookup returns the declared field with the given name.
func (s *Shape) Lookup(name string) (*Field, bool) {
	if s.index != nil {
		i, ok := s.index[name]
		if !ok {
			return nil, false
		}
		return &s.Fields[i], true
	}
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Declares reports whether name is one of the shape's fields.
func (s *Shape) Declares(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// FieldNames lists the declared field names in declaration order.
func (s *Shape) FieldNames() []string {
	out := make([]string, len(s.Fields))
	for i := range s.Fields {
		out[i] = s.Fields[i].Name
	}
	return out
}
