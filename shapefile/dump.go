package shapefile

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/reqshape"
)

// Dump writes shapes as a bundle that Load reads back.
func Dump(w io.Writer, shapes ...*reqshape.Shape) error {
	b := Bundle{Shapes: make([]ShapeDoc, 0, len(shapes))}
	for _, s := range shapes {
		b.Shapes = append(b.Shapes, Document(s))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("shapefile: %w", err)
	}
	return enc.Close()
}

// DumpRegistry writes every registered shape in name order.
func DumpRegistry(w io.Writer, reg *reqshape.Registry) error {
	names := reg.Names()
	shapes := make([]*reqshape.Shape, 0, len(names))
	for _, n := range names {
		s, err := reg.Lookup(n)
		if err != nil {
			return err
		}
		shapes = append(shapes, s)
	}
	return Dump(w, shapes...)
}

// Document converts a shape declaration into its YAML form.
func Document(s *reqshape.Shape) ShapeDoc {
	sd := ShapeDoc{Name: s.Name, Description: s.Description, Fields: make([]FieldDoc, 0, len(s.Fields))}
	for i := range s.Fields {
		sd.Fields = append(sd.Fields, fieldDoc(&s.Fields[i]))
	}
	return sd
}

func fieldDoc(f *reqshape.Field) FieldDoc {
	fd := FieldDoc{
		Name:        f.Name,
		Description: f.Description,
		Type:        f.Kind.String(),
		Required:    f.Required,
		Nullable:    f.Nullable,
	}
	if f.HasDefault {
		fd.Default = f.Default
	}
	switch {
	case f.Kind == reqshape.KindArray && f.Ref != "":
		fd.Items = &FieldDoc{Type: reqshape.KindObject.String(), Ref: f.Ref}
	case f.Elem != nil:
		elem := fieldDoc(f.Elem)
		fd.Items = &elem
	default:
		fd.Ref = f.Ref
	}
	for _, r := range f.Rules {
		switch r.Kind {
		case reqshape.RuleMinLength:
			fd.MinLength = intPtr(r.N)
		case reqshape.RuleMaxLength:
			fd.MaxLength = intPtr(r.N)
		case reqshape.RulePattern:
			fd.Pattern = r.S
		case reqshape.RuleFormat:
			fd.Format = r.S
		case reqshape.RuleNotEmpty:
			fd.NotEmpty = true
		case reqshape.RuleMin:
			fd.Minimum = &r.N
		case reqshape.RuleMax:
			fd.Maximum = &r.N
		case reqshape.RuleOneOf:
			fd.Enum = r.Values
		case reqshape.RuleMinItems:
			fd.MinItems = intPtr(r.N)
		case reqshape.RuleMaxItems:
			fd.MaxItems = intPtr(r.N)
		}
	}
	return fd
}

func intPtr(f float64) *int {
	n := int(f)
	return &n
}
