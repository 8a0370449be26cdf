package reqshape

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeUnknownValue  = "unknown_value"
	CodeDuplicateKey  = "duplicate_key"
	CodeNotEmpty      = "not_empty"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeTooFewItems   = "too_few_items"
	CodeTooManyItems  = "too_many_items"
	CodePattern       = "pattern"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidFormat = "invalid_format"
	CodeMaxDepth      = "max_depth"
	CodeParseError    = "parse_error"
	CodeTruncated     = "truncated"
)

// RejectionMessage is the top-level message carried by every Rejection.
const RejectionMessage = "Validation failed"

// Issue represents a single violation tied to one field path.
type Issue struct {
	Path    string // dot-joined field path ("address.city", "items.0.sku"); "" is the root.
	Code    string
	Message string
	// Params carries structured parameters (e.g. {"min":1,"got":0}) for
	// message rendering and observability.
	Params map[string]any
}

// Issues is a collection of violations that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. too_short at address.city
		fmt.Fprintf(b, "%s at %s", it.Code, displayPath(it.Path))
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Report groups messages by field path, keeping the order in which the
// validator produced them.
func (iss Issues) Report() Report {
	if len(iss) == 0 {
		return nil
	}
	r := make(Report, len(iss))
	for _, it := range iss {
		r[it.Path] = append(r[it.Path], it.Message)
	}
	return r
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Report maps a field path to the ordered messages reported for it.
type Report map[string][]string

// Rejection is the single aggregated failure handed to the transport layer.
type Rejection struct {
	Message string `json:"message"`
	Errors  Report `json:"errors"`
	issues  Issues
}

// NewRejection wraps issues into a Rejection.
func NewRejection(iss Issues) *Rejection {
	return &Rejection{Message: RejectionMessage, Errors: iss.Report(), issues: iss}
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %d field(s): %s", r.Message, len(r.Errors), r.issues.Error())
}

// Issues returns the underlying violations in production order.
func (r *Rejection) Issues() Issues { return r.issues }

// Unwrap exposes the Issues so errors.As(err, &Issues{}) keeps working.
func (r *Rejection) Unwrap() error {
	if len(r.issues) == 0 {
		return nil
	}
	return r.issues
}

// AsRejection extracts a *Rejection from an error chain.
func AsRejection(err error) (*Rejection, bool) {
	var rj *Rejection
	if errors.As(err, &rj) {
		return rj, true
	}
	return nil, false
}

// ErrSchemaDefinition marks a broken shape declaration. It is a programming
// error and is never reported inside a Report.
var ErrSchemaDefinition = errors.New("reqshape: schema definition error")

// SchemaError describes which shape (and field) is malformed.
type SchemaError struct {
	Shape  string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("reqshape: shape %q field %q: %s", e.Shape, e.Field, e.Reason)
	}
	return fmt.Sprintf("reqshape: shape %q: %s", e.Shape, e.Reason)
}

// Is makes errors.Is(err, ErrSchemaDefinition) hold for every *SchemaError.
func (e *SchemaError) Is(target error) bool { return target == ErrSchemaDefinition }

func schemaErrorf(shape, field, format string, args ...any) *SchemaError {
	return &SchemaError{Shape: shape, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}
