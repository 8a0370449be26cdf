package reqshape

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var errEmptyEnum = errors.New("enum declares no values")

func errUnknownFormat(name string) error { return fmt.Errorf("unknown format %q", name) }
func errNegativeBound(k RuleKind) error  { return fmt.Errorf("%s bound must not be negative", k) }
func errUnknownRule(k RuleKind) error    { return fmt.Errorf("unknown rule kind %d", int(k)) }

// Registry holds statically registered shapes by name. It is safe for
// concurrent use; shapes are immutable once registered.
type Registry struct {
	mu       sync.RWMutex
	shapes   map[string]*Shape
	verified map[string]bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{shapes: map[string]*Shape{}, verified: map[string]bool{}}
}

// Register compiles and adds shapes. Refs between shapes are resolved lazily so
// mutually referencing shapes may be registered in any order; call Check once
// everything is registered.
func (r *Registry) Register(shapes ...*Shape) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// nothing is inserted unless every shape compiles
	batch := make(map[string]*Shape, len(shapes))
	for _, s := range shapes {
		if s == nil {
			return schemaErrorf("", "", "nil shape")
		}
		if s.Name == "" {
			return schemaErrorf("", "", "shape has no name")
		}
		if prev, ok := r.shapes[s.Name]; ok && prev != s {
			return schemaErrorf(s.Name, "", "already registered")
		}
		if prev, ok := batch[s.Name]; ok && prev != s {
			return schemaErrorf(s.Name, "", "already registered")
		}
		if err := compileShape(s); err != nil {
			return err
		}
		batch[s.Name] = s
	}
	for name, s := range batch {
		r.shapes[name] = s
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(shapes ...*Shape) *Registry {
	if err := r.Register(shapes...); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the registered shape with the given name.
func (r *Registry) Lookup(name string) (*Shape, error) {
	r.mu.RLock()
	s, ok := r.shapes[name]
	r.mu.RUnlock()
	if !ok {
		return nil, schemaErrorf(name, "", "shape is not registered")
	}
	return s, nil
}

// Names lists registered shape names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.shapes))
	for n := range r.shapes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Check verifies that every Ref names a registered shape.
func (r *Registry) Check() error {
	var errs []error
	for _, name := range r.Names() {
		s, _ := r.Lookup(name)
		for i := range s.Fields {
			f := &s.Fields[i]
			for _, ref := range fieldRefs(f) {
				if _, err := r.Lookup(ref); err != nil {
					errs = append(errs, schemaErrorf(s.Name, f.Name, "references unregistered shape %q", ref))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Resolve maps a Target onto a registered shape whose whole ref graph is
// registered. Bare targets resolve to nil.
func (r *Registry) Resolve(t Target) (*Shape, error) {
	s, err := r.resolve(t)
	if err != nil || s == nil {
		return s, err
	}
	if err := r.verify(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Registry) resolve(t Target) (*Shape, error) {
	switch tt := t.(type) {
	case nil:
		return nil, schemaErrorf("", "", "nil target")
	case Bare:
		return nil, nil
	case Ref:
		return r.Lookup(string(tt))
	case *Shape:
		if tt == nil {
			return nil, schemaErrorf("", "", "nil target")
		}
		s, err := r.Lookup(tt.Name)
		if err != nil {
			return nil, err
		}
		if s != tt {
			return nil, schemaErrorf(tt.Name, "", "a different shape is registered under this name")
		}
		return s, nil
	}
	return nil, schemaErrorf(t.targetName(), "", "unsupported target type %T", t)
}

// verify checks once per shape that every shape reachable from s is
// registered.
func (r *Registry) verify(s *Shape) error {
	r.mu.RLock()
	done := r.verified[s.Name]
	r.mu.RUnlock()
	if done {
		return nil
	}
	seen := map[string]bool{s.Name: true}
	stack := []*Shape{s}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i := range cur.Fields {
			f := &cur.Fields[i]
			for _, ref := range fieldRefs(f) {
				if seen[ref] {
					continue
				}
				sub, err := r.Lookup(ref)
				if err != nil {
					return schemaErrorf(cur.Name, f.Name, "references unregistered shape %q", ref)
				}
				seen[ref] = true
				stack = append(stack, sub)
			}
		}
	}
	r.mu.Lock()
	for n := range seen {
		r.verified[n] = true
	}
	r.mu.Unlock()
	return nil
}

func fieldRefs(f *Field) []string {
	var out []string
	if f.Ref != "" {
		out = append(out, f.Ref)
	}
	if f.Elem != nil {
		out = append(out, fieldRefs(f.Elem)...)
	}
	return out
}

func compileShape(s *Shape) error {
	if s.compiled {
		return nil
	}
	idx := make(map[string]int, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return schemaErrorf(s.Name, "", "field #%d has no name", i)
		}
		if _, dup := idx[f.Name]; dup {
			return schemaErrorf(s.Name, f.Name, "declared twice")
		}
		idx[f.Name] = i
		if err := compileField(f); err != nil {
			return &SchemaError{Shape: s.Name, Field: f.Name, Reason: err.Error()}
		}
	}
	s.index = idx
	s.compiled = true
	return nil
}

func compileField(f *Field) error {
	switch f.Kind {
	case KindObject:
		if f.Elem != nil {
			return errors.New("object field cannot declare elements")
		}
	case KindArray:
		if f.Ref != "" && f.Elem != nil {
			return errors.New("array field declares both a shape ref and an element type")
		}
		if f.Elem != nil {
			if err := compileField(f.Elem); err != nil {
				return fmt.Errorf("elements: %w", err)
			}
		}
	default:
		if f.Ref != "" {
			return fmt.Errorf("%s field cannot reference shape %q", f.Kind, f.Ref)
		}
		if f.Elem != nil {
			return fmt.Errorf("%s field cannot declare elements", f.Kind)
		}
	}
	bounds := map[RuleKind]float64{}
	for i := range f.Rules {
		rl := &f.Rules[i]
		if err := rl.compile(); err != nil {
			return err
		}
		if !rl.appliesTo(f.Kind) {
			return fmt.Errorf("rule %s does not apply to %s fields", rl.Kind, f.Kind)
		}
		bounds[rl.Kind] = rl.N
	}
	for _, pair := range [][2]RuleKind{{RuleMinLength, RuleMaxLength}, {RuleMin, RuleMax}, {RuleMinItems, RuleMaxItems}} {
		lo, okLo := bounds[pair[0]]
		hi, okHi := bounds[pair[1]]
		if okLo && okHi && lo > hi {
			return fmt.Errorf("%s %v exceeds %s %v", pair[0], lo, pair[1], hi)
		}
	}
	if f.HasDefault && f.Default != nil && !matchesKind(f.Kind, f.Default) {
		return fmt.Errorf("default %v is not of type %s", f.Default, f.Kind)
	}
	return nil
}
