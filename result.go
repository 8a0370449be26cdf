package reqshape

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// Result carries either the accepted instance or the violations that rejected
// it. There is no partial acceptance: Value is nil whenever Issues is not
// empty.
type Result struct {
	Value  any
	Issues Issues
}

// Accepted reports whether validation produced no violations.
func (r Result) Accepted() bool { return len(r.Issues) == 0 }

// Report groups the violations by field path.
func (r Result) Report() Report { return r.Issues.Report() }

// Err returns nil for an accepted result and a *Rejection otherwise.
func (r Result) Err() error {
	if r.Accepted() {
		return nil
	}
	return NewRejection(r.Issues)
}

// Object returns the accepted instance as an object.
func (r Result) Object() (map[string]any, bool) {
	m, ok := r.Value.(map[string]any)
	return m, ok && r.Accepted()
}

// ErrNotAccepted is returned by Into for rejected results.
var ErrNotAccepted = errors.New("reqshape: result was rejected")

// Into converts an accepted instance into T by round-tripping it through JSON.
func Into[T any](r Result) (T, error) {
	var out T
	if !r.Accepted() {
		return out, fmt.Errorf("%w: %w", ErrNotAccepted, r.Err())
	}
	b, err := json.Marshal(r.Value)
	if err != nil {
		return out, fmt.Errorf("reqshape: encode accepted instance: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("reqshape: decode into %T: %w", out, err)
	}
	return out, nil
}

// Is reports whether raw conforms to the target. Schema-definition errors
// count as non-conformance.
func Is(ctx context.Context, v *Validator, raw any, t Target) bool {
	res, err := v.Validate(ctx, raw, t)
	return err == nil && res.Accepted()
}
