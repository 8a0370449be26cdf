// Package openapi converts between registered shapes and OpenAPI 3 component
// schemas: Generate publishes a registry, Import reads components.schemas of an
// existing document back into shapes.
package openapi

import (
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/reoring/reqshape"
)

const componentPrefix = "#/components/schemas/"

// Generator produces an OpenAPI 3.0 document whose components describe every
// shape of a registry.
type Generator struct {
	title       string
	version     string
	description string
	servers     []string

	mu     sync.Mutex
	cached *openapi3.T
}

// Option configures the generator.
type Option func(*Generator)

// WithTitle sets the API title.
func WithTitle(title string) Option {
	return func(g *Generator) { g.title = title }
}

// WithVersion sets the API version.
func WithVersion(version string) Option {
	return func(g *Generator) { g.version = version }
}

// WithDescription sets the API description.
func WithDescription(description string) Option {
	return func(g *Generator) { g.description = description }
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(g *Generator) { g.servers = append(g.servers, url) }
}

// NewGenerator creates a generator with reqshape defaults.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{title: "reqshape API", version: "1.0.0"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the document once and returns the cached copy afterwards.
// Shapes are immutable once registered, but registering more shapes after the
// first call requires Reset.
func (g *Generator) Generate(reg *reqshape.Registry) (*openapi3.T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cached != nil {
		return g.cached, nil
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       g.title,
			Version:     g.version,
			Description: g.description,
		},
		Paths: &openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}
	for _, url := range g.servers {
		spec.Servers = append(spec.Servers, &openapi3.Server{URL: url})
	}
	for _, name := range reg.Names() {
		s, err := reg.Resolve(reqshape.Ref(name))
		if err != nil {
			return nil, err
		}
		spec.Components.Schemas[name] = &openapi3.SchemaRef{Value: shapeSchema(s)}
	}
	g.cached = spec
	return spec, nil
}

// Reset drops the cached document.
func (g *Generator) Reset() {
	g.mu.Lock()
	g.cached = nil
	g.mu.Unlock()
}

func shapeSchema(s *reqshape.Shape) *openapi3.Schema {
	out := &openapi3.Schema{
		Type:        &openapi3.Types{"object"},
		Description: s.Description,
		Properties:  make(openapi3.Schemas, len(s.Fields)),
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		out.Properties[f.Name] = fieldSchema(f)
		if f.Required && !f.HasDefault {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out
}

func fieldSchema(f *reqshape.Field) *openapi3.SchemaRef {
	if f.Kind == reqshape.KindObject && f.Ref != "" && !f.Nullable && f.Description == "" {
		return openapi3.NewSchemaRef(componentPrefix+f.Ref, nil)
	}
	s := &openapi3.Schema{Description: f.Description, Nullable: f.Nullable}
	switch f.Kind {
	case reqshape.KindAny:
	case reqshape.KindObject:
		if f.Ref != "" {
			s.AllOf = openapi3.SchemaRefs{openapi3.NewSchemaRef(componentPrefix+f.Ref, nil)}
		} else {
			s.Type = &openapi3.Types{"object"}
		}
	case reqshape.KindArray:
		s.Type = &openapi3.Types{"array"}
		switch {
		case f.Ref != "":
			s.Items = openapi3.NewSchemaRef(componentPrefix+f.Ref, nil)
		case f.Elem != nil:
			s.Items = fieldSchema(f.Elem)
		default:
			s.Items = openapi3.NewSchemaRef("", &openapi3.Schema{})
		}
	default:
		s.Type = &openapi3.Types{f.Kind.String()}
	}
	if f.HasDefault {
		s.Default = f.Default
	}
	for _, r := range f.Rules {
		switch r.Kind {
		case reqshape.RuleMinLength:
			s.MinLength = uint64(r.N)
		case reqshape.RuleMaxLength:
			n := uint64(r.N)
			s.MaxLength = &n
		case reqshape.RulePattern:
			s.Pattern = r.S
		case reqshape.RuleFormat:
			s.Format = r.S
		case reqshape.RuleNotEmpty:
			switch f.Kind {
			case reqshape.KindString:
				if s.Pattern == "" {
					s.Pattern = `\S`
				}
			case reqshape.KindArray:
				if s.MinItems < 1 {
					s.MinItems = 1
				}
			case reqshape.KindObject:
				s.MinProps = 1
			}
		case reqshape.RuleMin:
			n := r.N
			s.Min = &n
		case reqshape.RuleMax:
			n := r.N
			s.Max = &n
		case reqshape.RuleOneOf:
			s.Enum = append([]any{}, r.Values...)
		case reqshape.RuleMinItems:
			s.MinItems = uint64(r.N)
		case reqshape.RuleMaxItems:
			n := uint64(r.N)
			s.MaxItems = &n
		}
	}
	return openapi3.NewSchemaRef("", s)
}
