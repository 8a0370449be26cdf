package dsl

import (
	"github.com/reoring/reqshape"
)

// ShapeBuilder collects fields for a named shape.
type ShapeBuilder struct {
	name        string
	description string
	fields      []reqshape.Field
	required    map[string]struct{}
}

// FieldStep is returned by Field so presence modifiers apply to the field just
// added.
type FieldStep struct {
	b   *ShapeBuilder
	idx int
}

// Shape starts a builder for a shape with the given registry name.
func Shape(name string) *ShapeBuilder {
	return &ShapeBuilder{name: name, required: map[string]struct{}{}}
}

// Describe attaches documentation to the shape.
func (b *ShapeBuilder) Describe(text string) *ShapeBuilder {
	b.description = text
	return b
}

// Field appends a field declaration. Fields keep declaration order, which is
// also the order violations are reported in.
func (b *ShapeBuilder) Field(name string, fb FieldBuilder) *FieldStep {
	f := fb.f
	f.Name = name
	b.fields = append(b.fields, f)
	return &FieldStep{b: b, idx: len(b.fields) - 1}
}

// Require marks one or more fields as required.
func (b *ShapeBuilder) Require(names ...string) *ShapeBuilder {
	for _, n := range names {
		b.required[n] = struct{}{}
	}
	return b
}

// Build returns the shape. Declaration problems (duplicate fields, rules that
// do not fit the field kind, bad patterns) surface when the shape is
// registered.
func (b *ShapeBuilder) Build() (*reqshape.Shape, error) {
	fields := make([]reqshape.Field, len(b.fields))
	copy(fields, b.fields)
	for i := range fields {
		if _, ok := b.required[fields[i].Name]; ok {
			fields[i].Required = true
		}
	}
	for n := range b.required {
		found := false
		for i := range fields {
			if fields[i].Name == n {
				found = true
				break
			}
		}
		if !found {
			return nil, &reqshape.SchemaError{Shape: b.name, Field: n, Reason: "required field is not declared"}
		}
	}
	return &reqshape.Shape{Name: b.name, Description: b.description, Fields: fields}, nil
}

// MustBuild is like Build but panics on error.
func (b *ShapeBuilder) MustBuild() *reqshape.Shape {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (s *FieldStep) field() *reqshape.Field { return &s.b.fields[s.idx] }

// Required marks the field as required and returns the builder.
func (s *FieldStep) Required() *ShapeBuilder {
	s.field().Required = true
	return s.b
}

// Optional marks the field as optional (default) and returns the builder.
func (s *FieldStep) Optional() *ShapeBuilder {
	s.field().Required = false
	delete(s.b.required, s.field().Name)
	return s.b
}

// Default fills the field with v when it is absent from the input.
func (s *FieldStep) Default(v any) *ShapeBuilder {
	f := s.field()
	f.HasDefault = true
	f.Default = v
	return s.b
}

func (s *FieldStep) Field(name string, fb FieldBuilder) *FieldStep { return s.b.Field(name, fb) }
func (s *FieldStep) Require(names ...string) *ShapeBuilder         { return s.b.Require(names...) }
func (s *FieldStep) Build() (*reqshape.Shape, error)               { return s.b.Build() }
func (s *FieldStep) MustBuild() *reqshape.Shape                    { return s.b.MustBuild() }
