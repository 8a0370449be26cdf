// Package shapefile reads and writes shape declarations as YAML bundles:
//
//	shapes:
//	  - name: Address
//	    fields:
//	      - name: city
//	        type: string
//	        required: true
//	        minLength: 2
//	  - name: Vendor
//	    fields:
//	      - name: address
//	        type: object
//	        ref: Address
//	      - name: tags
//	        type: array
//	        maxItems: 10
//	        items:
//	          type: string
//	          notEmpty: true
package shapefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reoring/reqshape"
)

// Bundle is the document root.
type Bundle struct {
	Shapes []ShapeDoc `yaml:"shapes"`
}

// ShapeDoc declares one shape.
type ShapeDoc struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Fields      []FieldDoc `yaml:"fields"`
}

// FieldDoc declares one field, or the elements of an array when used as
// Items.
type FieldDoc struct {
	Name        string    `yaml:"name,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Type        string    `yaml:"type"`
	Required    bool      `yaml:"required,omitempty"`
	Nullable    bool      `yaml:"nullable,omitempty"`
	Default     any       `yaml:"default,omitempty"`
	Ref         string    `yaml:"ref,omitempty"`
	Items       *FieldDoc `yaml:"items,omitempty"`

	MinLength *int     `yaml:"minLength,omitempty"`
	MaxLength *int     `yaml:"maxLength,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"`
	Format    string   `yaml:"format,omitempty"`
	NotEmpty  bool     `yaml:"notEmpty,omitempty"`
	Minimum   *float64 `yaml:"minimum,omitempty"`
	Maximum   *float64 `yaml:"maximum,omitempty"`
	Enum      []any    `yaml:"enum,omitempty"`
	MinItems  *int     `yaml:"minItems,omitempty"`
	MaxItems  *int     `yaml:"maxItems,omitempty"`
}

// Load parses a bundle. Unknown keys are rejected so typos in rule names do
// not silently drop constraints.
func Load(r io.Reader) ([]*reqshape.Shape, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var b Bundle
	if err := dec.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("shapefile: %w", err)
	}
	out := make([]*reqshape.Shape, 0, len(b.Shapes))
	for _, sd := range b.Shapes {
		s, err := sd.Shape()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadFile is Load over a file path.
func LoadFile(path string) ([]*reqshape.Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shapefile: read %s: %w", path, err)
	}
	return Load(bytes.NewReader(data))
}

// Register loads a bundle into reg and checks that every ref resolves.
func Register(reg *reqshape.Registry, r io.Reader) error {
	shapes, err := Load(r)
	if err != nil {
		return err
	}
	if err := reg.Register(shapes...); err != nil {
		return err
	}
	return reg.Check()
}

// Shape converts the document into a shape declaration.
func (sd ShapeDoc) Shape() (*reqshape.Shape, error) {
	s := &reqshape.Shape{Name: sd.Name, Description: sd.Description}
	for _, fd := range sd.Fields {
		f, err := fd.field()
		if err != nil {
			return nil, &reqshape.SchemaError{Shape: sd.Name, Field: fd.Name, Reason: err.Error()}
		}
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}

func (fd FieldDoc) field() (reqshape.Field, error) {
	k, ok := reqshape.ParseKind(fd.Type)
	if !ok {
		return reqshape.Field{}, fmt.Errorf("unknown type %q", fd.Type)
	}
	f := reqshape.Field{
		Name:        fd.Name,
		Description: fd.Description,
		Kind:        k,
		Required:    fd.Required,
		Nullable:    fd.Nullable,
		Ref:         fd.Ref,
	}
	if fd.Default != nil {
		f.HasDefault = true
		f.Default = normalize(fd.Default)
	}
	if fd.Items != nil {
		if fd.Items.Ref != "" && fd.Items.Type == "object" && !fd.Items.hasRules() && !fd.Items.Nullable {
			f.Ref = fd.Items.Ref
		} else {
			elem, err := fd.Items.field()
			if err != nil {
				return reqshape.Field{}, fmt.Errorf("items: %w", err)
			}
			f.Elem = &elem
		}
	}
	if fd.MinLength != nil {
		f.Rules = append(f.Rules, reqshape.MinLength(*fd.MinLength))
	}
	if fd.MaxLength != nil {
		f.Rules = append(f.Rules, reqshape.MaxLength(*fd.MaxLength))
	}
	if fd.Pattern != "" {
		f.Rules = append(f.Rules, reqshape.Pattern(fd.Pattern))
	}
	if fd.Format != "" {
		f.Rules = append(f.Rules, reqshape.Format(fd.Format))
	}
	if fd.NotEmpty {
		f.Rules = append(f.Rules, reqshape.NotEmpty())
	}
	if fd.Minimum != nil {
		f.Rules = append(f.Rules, reqshape.Min(*fd.Minimum))
	}
	if fd.Maximum != nil {
		f.Rules = append(f.Rules, reqshape.Max(*fd.Maximum))
	}
	if fd.Enum != nil {
		f.Rules = append(f.Rules, reqshape.OneOf(normalizeAll(fd.Enum)...))
	}
	if fd.MinItems != nil {
		f.Rules = append(f.Rules, reqshape.MinItems(*fd.MinItems))
	}
	if fd.MaxItems != nil {
		f.Rules = append(f.Rules, reqshape.MaxItems(*fd.MaxItems))
	}
	return f, nil
}

func (fd FieldDoc) hasRules() bool {
	return fd.MinLength != nil || fd.MaxLength != nil || fd.Pattern != "" || fd.Format != "" ||
		fd.NotEmpty || fd.Minimum != nil || fd.Maximum != nil || fd.Enum != nil ||
		fd.MinItems != nil || fd.MaxItems != nil
}

// normalize turns YAML-decoded containers into the map[string]any / []any
// representation the validator works on.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		return normalizeAll(t)
	}
	return v
}

func normalizeAll(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = normalize(v)
	}
	return out
}
