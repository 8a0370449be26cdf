package openapi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/reoring/reqshape"
)

// Options controls Import.
type Options struct {
	// Validate runs the kin-openapi document validation before import.
	Validate bool
	// Only limits the import to the named component schemas and the shapes
	// they reference. Empty imports every object schema.
	Only []string
}

// Diag collects non-fatal findings, such as keywords that have no shape
// equivalent and were dropped.
type Diag struct {
	Warnings []string
}

func (d *Diag) warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// Import parses an OpenAPI 3 document (JSON or YAML) and converts the object
// schemas under components.schemas into shapes, in name order. Inline object
// properties become shapes named after their parent and property.
func Import(ctx context.Context, data []byte, opt Options) ([]*reqshape.Shape, *Diag, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, nil, fmt.Errorf("openapi: load: %w", err)
	}
	if opt.Validate {
		if err := doc.Validate(ctx); err != nil {
			return nil, nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return FromDocument(doc, opt)
}

// FromDocument converts an already loaded document.
func FromDocument(doc *openapi3.T, opt Options) ([]*reqshape.Shape, *Diag, error) {
	diag := &Diag{}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, diag, nil
	}
	im := newImporter(diag)
	names := opt.Only
	if len(names) == 0 {
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	for _, name := range names {
		sr, ok := doc.Components.Schemas[name]
		if !ok || sr.Value == nil {
			return nil, diag, &reqshape.SchemaError{Shape: name, Reason: "no such component schema"}
		}
		if !isObject(sr.Value) {
			if len(opt.Only) > 0 {
				return nil, diag, &reqshape.SchemaError{Shape: name, Reason: "component is not an object schema"}
			}
			continue
		}
		if err := im.shape(name, sr.Value); err != nil {
			return nil, diag, err
		}
	}
	return im.result(), diag, nil
}

type importer struct {
	shapes map[string]*reqshape.Shape
	diag   *Diag
}

func newImporter(diag *Diag) *importer {
	return &importer{shapes: map[string]*reqshape.Shape{}, diag: diag}
}

// result returns the converted shapes in name order.
func (im *importer) result() []*reqshape.Shape {
	out := make([]*reqshape.Shape, 0, len(im.shapes))
	for _, s := range im.shapes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (im *importer) shape(name string, s *openapi3.Schema) error {
	if _, done := im.shapes[name]; done {
		return nil
	}
	out := &reqshape.Shape{Name: name, Description: s.Description}
	im.shapes[name] = out

	props := make([]string, 0, len(s.Properties))
	for p := range s.Properties {
		props = append(props, p)
	}
	sort.Strings(props)
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	for _, p := range props {
		f, err := im.field(name, p, s.Properties[p])
		if err != nil {
			return err
		}
		f.Name = p
		f.Required = required[p]
		out.Fields = append(out.Fields, f)
	}
	if ap := s.AdditionalProperties; ap.Schema != nil || (ap.Has != nil && *ap.Has) {
		im.diag.warnf("%s: additionalProperties is not enforced", name)
	}
	return nil
}

// field converts a property schema. owner and prop name synthesized shapes.
func (im *importer) field(owner, prop string, sr *openapi3.SchemaRef) (reqshape.Field, error) {
	if sr == nil || sr.Value == nil {
		return reqshape.Field{}, &reqshape.SchemaError{Shape: owner, Field: prop, Reason: "unresolved schema"}
	}
	if ref := componentName(sr.Ref); ref != "" && isObject(sr.Value) {
		if err := im.shape(ref, sr.Value); err != nil {
			return reqshape.Field{}, err
		}
		return reqshape.Field{Kind: reqshape.KindObject, Ref: ref, Nullable: sr.Value.Nullable}, nil
	}
	s := sr.Value
	if len(s.AllOf) == 1 {
		if ref := componentName(s.AllOf[0].Ref); ref != "" && s.AllOf[0].Value != nil && isObject(s.AllOf[0].Value) {
			if err := im.shape(ref, s.AllOf[0].Value); err != nil {
				return reqshape.Field{}, err
			}
			return reqshape.Field{Kind: reqshape.KindObject, Ref: ref, Nullable: s.Nullable, Description: s.Description}, nil
		}
	}
	if intOrString, _ := s.Extensions[extIntOrString].(bool); intOrString {
		return reqshape.Field{Kind: reqshape.KindAny, Nullable: s.Nullable, Description: s.Description}, nil
	}
	if len(s.AllOf)+len(s.AnyOf)+len(s.OneOf) > 0 || s.Not != nil {
		im.diag.warnf("%s.%s: composition keywords are not supported, accepting any value", owner, prop)
		return reqshape.Field{Kind: reqshape.KindAny, Nullable: s.Nullable, Description: s.Description}, nil
	}

	f := reqshape.Field{Description: s.Description, Nullable: s.Nullable}
	if s.Default != nil {
		f.HasDefault = true
		f.Default = s.Default
	}
	switch kind := schemaType(s); kind {
	case "object":
		f.Kind = reqshape.KindObject
		if len(s.Properties) > 0 {
			name := owner + exportName(prop)
			if err := im.shape(name, s); err != nil {
				return reqshape.Field{}, err
			}
			f.Ref = name
		}
		if s.MinProps > 0 {
			f.Rules = append(f.Rules, reqshape.NotEmpty())
		}
	case "array":
		f.Kind = reqshape.KindArray
		if s.Items != nil {
			elem, err := im.field(owner, prop+"Item", s.Items)
			if err != nil {
				return reqshape.Field{}, err
			}
			if elem.Kind == reqshape.KindObject && elem.Ref != "" && !elem.Nullable && len(elem.Rules) == 0 {
				f.Ref = elem.Ref
			} else {
				elem.HasDefault, elem.Default = false, nil
				f.Elem = &elem
			}
		}
		if s.MinItems > 0 {
			f.Rules = append(f.Rules, reqshape.MinItems(int(s.MinItems)))
		}
		if s.MaxItems != nil {
			f.Rules = append(f.Rules, reqshape.MaxItems(int(*s.MaxItems)))
		}
	case "string":
		f.Kind = reqshape.KindString
		if s.MinLength > 0 {
			f.Rules = append(f.Rules, reqshape.MinLength(int(s.MinLength)))
		}
		if s.MaxLength != nil {
			f.Rules = append(f.Rules, reqshape.MaxLength(int(*s.MaxLength)))
		}
		if s.Pattern == `\S` {
			f.Rules = append(f.Rules, reqshape.NotEmpty())
		} else if s.Pattern != "" {
			f.Rules = append(f.Rules, reqshape.Pattern(s.Pattern))
		}
		if s.Format != "" {
			if reqshape.KnownFormat(s.Format) {
				f.Rules = append(f.Rules, reqshape.Format(s.Format))
			} else {
				im.diag.warnf("%s.%s: format %q is not checked", owner, prop, s.Format)
			}
		}
	case "number", "integer":
		f.Kind = reqshape.KindNumber
		if kind == "integer" {
			f.Kind = reqshape.KindInteger
		}
		if s.Min != nil {
			f.Rules = append(f.Rules, reqshape.Min(*s.Min))
		}
		if s.Max != nil {
			f.Rules = append(f.Rules, reqshape.Max(*s.Max))
		}
	case "boolean":
		f.Kind = reqshape.KindBool
	case "":
		f.Kind = reqshape.KindAny
	default:
		return reqshape.Field{}, &reqshape.SchemaError{Shape: owner, Field: prop, Reason: "unsupported type " + kind}
	}
	if len(s.Enum) > 0 {
		vals := make([]any, 0, len(s.Enum))
		for _, v := range s.Enum {
			if v != nil {
				vals = append(vals, v)
			}
		}
		if len(vals) > 0 {
			f.Rules = append(f.Rules, reqshape.OneOf(vals...))
		}
	}
	return f, nil
}

func schemaType(s *openapi3.Schema) string {
	if s.Type == nil {
		if len(s.Properties) > 0 {
			return "object"
		}
		return ""
	}
	for _, t := range *s.Type {
		if t != "null" {
			return t
		}
	}
	return ""
}

func isObject(s *openapi3.Schema) bool {
	return s != nil && schemaType(s) == "object" && len(s.Properties) > 0
}

func componentName(ref string) string {
	if !strings.HasPrefix(ref, componentPrefix) {
		return ""
	}
	return strings.TrimPrefix(ref, componentPrefix)
}

func exportName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
