package reqshape

// Coerce maps raw onto the declared fields of the target shape without judging
// validity. Undeclared fields are dropped, nested shapes are coerced
// recursively and declared defaults fill absent fields. Non-object input and
// Bare targets are returned unchanged.
func Coerce(reg *Registry, raw any, t Target) (any, error) {
	s, err := reg.Resolve(t)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return raw, nil
	}
	c := coercer{reg: reg, maxDepth: DefaultMaxDepth}
	return c.shape(raw, s, 0)
}

type coercer struct {
	reg      *Registry
	maxDepth int
}

func (c coercer) shape(raw any, s *Shape, depth int) (any, error) {
	src, ok := raw.(map[string]any)
	if !ok {
		return raw, nil
	}
	out := make(map[string]any, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		v, present := src[f.Name]
		if !present {
			if f.HasDefault {
				out[f.Name] = cloneValue(f.Default)
			}
			continue
		}
		cv, err := c.value(f, v, depth)
		if err != nil {
			return nil, err
		}
		out[f.Name] = cv
	}
	return out, nil
}

func (c coercer) value(decl *Field, v any, depth int) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		if decl.Ref == "" || decl.Kind == KindArray {
			return v, nil
		}
		if depth+1 > c.maxDepth {
			return v, nil
		}
		sub, err := c.reg.Lookup(decl.Ref)
		if err != nil {
			return nil, err
		}
		return c.shape(t, sub, depth+1)
	case []any:
		if decl.Kind != KindArray {
			return v, nil
		}
		elem := elementDecl(decl)
		if elem == nil {
			return v, nil
		}
		out := make([]any, len(t))
		for i, e := range t {
			ce, err := c.value(elem, e, depth)
			if err != nil {
				return nil, err
			}
			out[i] = ce
		}
		return out, nil
	}
	return v, nil
}

// elementDecl returns the declaration every element of an array field must
// satisfy, or nil when elements are unconstrained.
func elementDecl(f *Field) *Field {
	if f.Ref != "" {
		return &Field{Name: f.Name, Kind: KindObject, Ref: f.Ref}
	}
	return f.Elem
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}
