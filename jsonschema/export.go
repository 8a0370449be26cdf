package jsonschema

import (
	"sort"

	"github.com/reoring/reqshape"
)

// Options tune the exported document.
type Options struct {
	// Strict closes every object with additionalProperties: false, matching
	// a validator running with ForbidNonWhitelisted.
	Strict bool
}

// FromShape exports the named shape and every shape it references. The root
// document points at its definition under $defs.
func FromShape(reg *reqshape.Registry, name string, opt Options) (*Schema, error) {
	root, err := reg.Resolve(reqshape.Ref(name))
	if err != nil {
		return nil, err
	}
	defs := map[string]*Schema{}
	pending := []*reqshape.Shape{root}
	for len(pending) > 0 {
		s := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if _, done := defs[s.Name]; done {
			continue
		}
		def, refs := shapeSchema(s, opt)
		defs[s.Name] = def
		for _, ref := range refs {
			if _, done := defs[ref]; done {
				continue
			}
			sub, err := reg.Lookup(ref)
			if err != nil {
				return nil, err
			}
			pending = append(pending, sub)
		}
	}
	return &Schema{
		Dialect: DialectURI,
		Ref:     defRef(root.Name),
		Defs:    defs,
	}, nil
}

func defRef(name string) string { return "#/$defs/" + name }

func shapeSchema(s *reqshape.Shape, opt Options) (*Schema, []string) {
	out := &Schema{
		Type:        "object",
		Title:       s.Name,
		Description: s.Description,
		Properties:  make(map[string]*Schema, len(s.Fields)),
	}
	if opt.Strict {
		out.AdditionalProperties = false
	}
	var refs []string
	for i := range s.Fields {
		f := &s.Fields[i]
		ps, fr := fieldSchema(f)
		out.Properties[f.Name] = ps
		refs = append(refs, fr...)
		if f.Required && !f.HasDefault {
			out.Required = append(out.Required, f.Name)
		}
	}
	sort.Strings(refs)
	return out, refs
}

func fieldSchema(f *reqshape.Field) (*Schema, []string) {
	var (
		out  *Schema
		refs []string
	)
	switch {
	case f.Kind == reqshape.KindObject && f.Ref != "":
		out = &Schema{Ref: defRef(f.Ref)}
		refs = append(refs, f.Ref)
	case f.Kind == reqshape.KindArray:
		out = &Schema{Type: "array"}
		switch {
		case f.Ref != "":
			out.Items = &Schema{Ref: defRef(f.Ref)}
			refs = append(refs, f.Ref)
		case f.Elem != nil:
			var er []string
			out.Items, er = fieldSchema(f.Elem)
			refs = append(refs, er...)
		}
	case f.Kind == reqshape.KindAny:
		out = &Schema{}
	default:
		out = &Schema{Type: f.Kind.String()}
	}
	out.Description = f.Description
	if f.HasDefault {
		out.Default = f.Default
	}
	for _, r := range f.Rules {
		applyRule(out, f.Kind, r)
	}
	if f.Nullable {
		out = nullable(out)
	}
	return out, refs
}

func applyRule(s *Schema, k reqshape.Kind, r reqshape.Rule) {
	switch r.Kind {
	case reqshape.RuleMinLength:
		s.MinLength = intPtr(int(r.N))
	case reqshape.RuleMaxLength:
		s.MaxLength = intPtr(int(r.N))
	case reqshape.RulePattern:
		s.Pattern = r.S
	case reqshape.RuleFormat:
		s.Format = r.S
	case reqshape.RuleMin:
		s.Minimum = floatPtr(r.N)
	case reqshape.RuleMax:
		s.Maximum = floatPtr(r.N)
	case reqshape.RuleOneOf:
		s.Enum = append([]any{}, r.Values...)
	case reqshape.RuleMinItems:
		s.MinItems = intPtr(int(r.N))
	case reqshape.RuleMaxItems:
		s.MaxItems = intPtr(int(r.N))
	case reqshape.RuleNotEmpty:
		switch k {
		case reqshape.KindString:
			if s.Pattern == "" {
				s.Pattern = `\S`
			}
		case reqshape.KindArray:
			if s.MinItems == nil || *s.MinItems < 1 {
				s.MinItems = intPtr(1)
			}
		case reqshape.KindObject:
			s.MinProperties = intPtr(1)
		}
	}
}

// nullable widens s to also accept null.
func nullable(s *Schema) *Schema {
	if t, ok := s.Type.(string); ok && s.Ref == "" {
		s.Type = []string{t, "null"}
		if s.Enum != nil {
			s.Enum = append(s.Enum, nil)
		}
		return s
	}
	desc := s.Description
	s.Description = ""
	return &Schema{Description: desc, AnyOf: []*Schema{s, {Type: "null"}}}
}

