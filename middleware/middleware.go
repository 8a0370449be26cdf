// Package middleware connects the validator to HTTP transports. The core
// helpers (Check, Respond and the context accessors) are shared by the
// net/http middleware in this package and by the echo and gin adapters in the
// sub-packages.
package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/reoring/reqshape"
)

// ctxKeyInstance is the context key for the accepted instance.
type ctxKeyInstance struct{}

// ContextWithInstance attaches an accepted instance to the context.
func ContextWithInstance(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyInstance{}, v)
}

// InstanceFromContext retrieves the accepted instance.
func InstanceFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(ctxKeyInstance{})
	return v, v != nil
}

// ObjectFromContext retrieves an accepted object instance.
func ObjectFromContext(ctx context.Context) (map[string]any, bool) {
	m, ok := ctx.Value(ctxKeyInstance{}).(map[string]any)
	return m, ok
}

// Options configure the HTTP boundary.
type Options struct {
	Decode reqshape.DecodeOpt
	// Logger receives schema-definition failures. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns a recommended default for HTTP JSON boundaries:
// duplicate keys are errors and bodies are capped at 1 MiB.
func DefaultOptions() Options {
	return Options{Decode: reqshape.DefaultDecodeOpt()}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Check decodes body and validates it against t. It returns the accepted
// instance, a *reqshape.Rejection for malformed or invalid input, or a
// schema-definition error.
func Check(ctx context.Context, v *reqshape.Validator, t reqshape.Target, body io.Reader, opt Options) (any, error) {
	raw, err := reqshape.DecodeJSON(body, opt.Decode)
	if err != nil {
		iss, ok := reqshape.AsIssues(err)
		if !ok {
			return nil, err
		}
		return nil, reqshape.NewRejection(iss)
	}
	res, err := v.Validate(ctx, raw, t)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Value, nil
}

// ErrorPayload is the body written for failures that are not rejections.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Respond maps an error returned by Check to a status code and JSON payload.
// Rejections are client errors; anything else is logged and hidden behind a
// generic 500.
func Respond(ctx context.Context, err error, opt Options) (int, any) {
	if rj, ok := reqshape.AsRejection(err); ok {
		return http.StatusBadRequest, rj
	}
	attrs := []any{"error", err}
	var se *reqshape.SchemaError
	if errors.As(err, &se) {
		attrs = append(attrs, "shape", se.Shape, "field", se.Field)
	}
	opt.logger().ErrorContext(ctx, "request validation failed", attrs...)
	return http.StatusInternalServerError, ErrorPayload{Message: http.StatusText(http.StatusInternalServerError)}
}

// Validate returns net/http middleware that validates the request body against
// t. Accepted instances are stored in the request context; failures are
// answered directly and the next handler is not called.
func Validate(v *reqshape.Validator, t reqshape.Target, opt Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inst, err := Check(r.Context(), v, t, r.Body, opt)
			if err != nil {
				status, payload := Respond(r.Context(), err, opt)
				WriteJSON(w, status, payload)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithInstance(r.Context(), inst)))
		})
	}
}

// WriteJSON encodes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
