package reqshape

import (
	"context"
	"sort"
)

// Validator runs the coerce-then-validate pipeline against shapes from one
// Registry. It holds no per-call state and may be shared across goroutines.
type Validator struct {
	reg *Registry
	cfg Config
}

// NewValidator binds a registry and a configuration.
func NewValidator(reg *Registry, cfg Config) *Validator {
	return &Validator{reg: reg, cfg: cfg}
}

// Registry returns the registry shapes are resolved from.
func (v *Validator) Registry() *Registry { return v.reg }

// Config returns the validation switches.
func (v *Validator) Config() Config { return v.cfg }

// WithConfig returns a Validator sharing the registry with different switches.
func (v *Validator) WithConfig(cfg Config) *Validator { return &Validator{reg: v.reg, cfg: cfg} }

// Validate is shorthand for NewValidator(reg, cfg).Validate(ctx, raw, t).
func Validate(ctx context.Context, reg *Registry, raw any, t Target, cfg Config) (Result, error) {
	return NewValidator(reg, cfg).Validate(ctx, raw, t)
}

// Validate coerces raw onto the target shape and checks every declared
// constraint at every depth. Violations are returned inside the Result; the
// error is reserved for schema-definition problems (*SchemaError).
func (v *Validator) Validate(ctx context.Context, raw any, t Target) (Result, error) {
	s, err := v.reg.Resolve(t)
	if err != nil {
		return Result{}, err
	}
	if s == nil {
		return Result{Value: raw}, nil
	}

	if !isAggregate(raw) {
		var root Path
		if v.cfg.ForbidUnknownValues {
			return v.reject(ctx, s, Issues{root.Issue(CodeUnknownValue)}), nil
		}
		return v.reject(ctx, s, Issues{root.Issue(CodeInvalidType, "expected", KindObject.String())}), nil
	}

	w := walker{reg: v.reg, maxDepth: v.cfg.maxDepth()}
	cand, err := coercer{reg: v.reg, maxDepth: w.maxDepth}.shape(raw, s, 0)
	if err != nil {
		return Result{}, err
	}

	var iss Issues
	if v.cfg.ForbidNonWhitelisted {
		if iss, err = w.forbidden(raw.(map[string]any), s, Path{}, 0, iss); err != nil {
			return Result{}, err
		}
	}
	if iss, err = w.fields(cand.(map[string]any), s, Path{}, 0, iss); err != nil {
		return Result{}, err
	}
	if len(iss) > 0 {
		return v.reject(ctx, s, iss), nil
	}

	out, err := w.finishShape(raw.(map[string]any), cand.(map[string]any), s, 0, !v.cfg.Whitelist)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: out}, nil
}

func (v *Validator) reject(ctx context.Context, s *Shape, iss Issues) Result {
	if v.cfg.Logger != nil {
		v.cfg.Logger.DebugContext(ctx, "validation rejected",
			"shape", s.Name,
			"violations", len(iss),
			"first", iss[0].Code+" at "+displayPath(iss[0].Path),
		)
	}
	return Result{Issues: iss}
}

type walker struct {
	reg      *Registry
	maxDepth int
}

// fields evaluates every declared field of s against the candidate object.
func (w walker) fields(cand map[string]any, s *Shape, p Path, depth int, iss Issues) (Issues, error) {
	var err error
	for i := range s.Fields {
		f := &s.Fields[i]
		fp := p.Field(f.Name)
		val, present := cand[f.Name]
		if !present || val == nil {
			if f.Required && !(present && f.Nullable) {
				iss = AppendIssues(iss, fp.Issue(CodeRequired))
			}
			continue
		}
		if iss, err = w.value(f, val, fp, depth, iss); err != nil {
			return nil, err
		}
	}
	return iss, nil
}

// value runs the type check and all rules for a present value, then descends
// into nested shapes and array elements. Own-constraint and nested violations
// are both kept.
func (w walker) value(decl *Field, val any, p Path, depth int, iss Issues) (Issues, error) {
	if !matchesKind(decl.Kind, val) {
		iss = AppendIssues(iss, p.Issue(CodeInvalidType, "expected", decl.Kind.String()))
	}
	for _, r := range decl.Rules {
		if it, failed := r.check(p, val); failed {
			iss = AppendIssues(iss, it)
		}
	}

	var err error
	switch t := val.(type) {
	case map[string]any:
		if decl.Ref == "" || decl.Kind == KindArray {
			return iss, nil
		}
		if depth+1 > w.maxDepth {
			return AppendIssues(iss, p.Issue(CodeMaxDepth, "max", w.maxDepth)), nil
		}
		sub, err := w.reg.Lookup(decl.Ref)
		if err != nil {
			return nil, err
		}
		return w.fields(t, sub, p, depth+1, iss)
	case []any:
		if decl.Kind != KindArray {
			return iss, nil
		}
		elem := elementDecl(decl)
		if elem == nil {
			return iss, nil
		}
		for i, e := range t {
			ep := p.Index(i)
			if e == nil {
				if !elem.Nullable {
					iss = AppendIssues(iss, ep.Issue(CodeInvalidType, "expected", elem.Kind.String()))
				}
				continue
			}
			if iss, err = w.value(elem, e, ep, depth, iss); err != nil {
				return nil, err
			}
		}
	}
	return iss, nil
}

// forbidden reports undeclared keys of the raw input, recursing through
// nested shapes as declared.
func (w walker) forbidden(raw map[string]any, s *Shape, p Path, depth int, iss Issues) (Issues, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var err error
	for _, k := range keys {
		f, declared := s.Lookup(k)
		if !declared {
			iss = AppendIssues(iss, p.Field(k).Issue(CodeUnknownKey))
			continue
		}
		if iss, err = w.forbiddenValue(f, raw[k], p.Field(k), depth, iss); err != nil {
			return nil, err
		}
	}
	return iss, nil
}

func (w walker) forbiddenValue(decl *Field, val any, p Path, depth int, iss Issues) (Issues, error) {
	var err error
	switch t := val.(type) {
	case map[string]any:
		if decl.Ref == "" || decl.Kind == KindArray || depth+1 > w.maxDepth {
			return iss, nil
		}
		sub, err := w.reg.Lookup(decl.Ref)
		if err != nil {
			return nil, err
		}
		return w.forbidden(t, sub, p, depth+1, iss)
	case []any:
		if decl.Kind != KindArray {
			return iss, nil
		}
		elem := elementDecl(decl)
		if elem == nil {
			return iss, nil
		}
		for i, e := range t {
			if iss, err = w.forbiddenValue(elem, e, p.Index(i), depth, iss); err != nil {
				return nil, err
			}
		}
	}
	return iss, nil
}

// finishShape re-asserts the whitelist on an accepted candidate: undeclared
// keys are removed, or copied back from raw when keepUnknown is set.
func (w walker) finishShape(raw, cand map[string]any, s *Shape, depth int, keepUnknown bool) (map[string]any, error) {
	for k := range cand {
		if !s.Declares(k) {
			delete(cand, k)
		}
	}
	if keepUnknown {
		for k, v := range raw {
			if !s.Declares(k) {
				cand[k] = v
			}
		}
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		cv, ok := cand[f.Name]
		if !ok {
			continue
		}
		fv, err := w.finishValue(f, raw[f.Name], cv, depth, keepUnknown)
		if err != nil {
			return nil, err
		}
		cand[f.Name] = fv
	}
	return cand, nil
}

func (w walker) finishValue(decl *Field, raw, cand any, depth int, keepUnknown bool) (any, error) {
	switch ct := cand.(type) {
	case map[string]any:
		rt, _ := raw.(map[string]any)
		if decl.Ref == "" || decl.Kind == KindArray || depth+1 > w.maxDepth {
			return cand, nil
		}
		sub, err := w.reg.Lookup(decl.Ref)
		if err != nil {
			return nil, err
		}
		return w.finishShape(rt, ct, sub, depth+1, keepUnknown)
	case []any:
		elem := elementDecl(decl)
		if decl.Kind != KindArray || elem == nil {
			return cand, nil
		}
		rt, _ := raw.([]any)
		for i := range ct {
			var re any
			if i < len(rt) {
				re = rt[i]
			}
			fe, err := w.finishValue(elem, re, ct[i], depth, keepUnknown)
			if err != nil {
				return nil, err
			}
			ct[i] = fe
		}
	}
	return cand, nil
}
