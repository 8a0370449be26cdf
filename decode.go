package reqshape

import (
	"bytes"
	"context"
	"errors"
	"io"

	json "github.com/goccy/go-json"

	eng "github.com/reoring/reqshape/internal/engine"
)

// DecodeOpt bounds the structural decoding of untrusted JSON.
type DecodeOpt struct {
	MaxDepth            int   // nesting limit of the document (0 disables)
	MaxBytes            int64 // body size limit (0 disables)
	RejectDuplicateKeys bool
}

// DefaultDecodeOpt returns limits suited to HTTP request bodies.
func DefaultDecodeOpt() DecodeOpt {
	return DecodeOpt{MaxDepth: 2 * DefaultMaxDepth, MaxBytes: 1 << 20, RejectDuplicateKeys: true}
}

// DecodeJSON decodes one JSON document into map[string]any / []any / scalars,
// keeping numbers as json.Number. Failures are returned as Issues.
func DecodeJSON(r io.Reader, opt DecodeOpt) (any, error) {
	var (
		data []byte
		err  error
	)
	if opt.MaxBytes > 0 {
		data, err = io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
	} else {
		data, err = io.ReadAll(r)
	}
	if err != nil {
		return nil, Issues{Path{}.Issue(CodeParseError, "cause", err.Error())}
	}
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, Issues{Path{}.Issue(CodeTruncated, "max", opt.MaxBytes)}
	}
	// the token stream does not check separators between tokens
	if !json.Valid(data) {
		return nil, Issues{Path{}.Issue(CodeParseError, "cause", "invalid JSON syntax")}
	}
	dup := eng.DupIgnore
	if opt.RejectDuplicateKeys {
		dup = eng.DupError
	}
	src := eng.WrapWithEnforcement(eng.NewBytes(data), eng.EnforceOptions{OnDuplicate: dup, MaxDepth: opt.MaxDepth})
	v, err := eng.DecodeAnyFromSource(src)
	if err != nil {
		return nil, toIssues(err)
	}
	return v, nil
}

// DecodeJSONBytes is DecodeJSON over a byte slice.
func DecodeJSONBytes(b []byte, opt DecodeOpt) (any, error) {
	return DecodeJSON(bytes.NewReader(b), opt)
}

// ValidateJSON decodes data and validates it against t. Malformed documents
// are reported as a rejected Result, like any other structural violation.
func ValidateJSON(ctx context.Context, v *Validator, data []byte, t Target, opt DecodeOpt) (Result, error) {
	raw, err := DecodeJSONBytes(data, opt)
	if err != nil {
		iss, _ := AsIssues(err)
		return Result{Issues: iss}, nil
	}
	return v.Validate(ctx, raw, t)
}

func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return Issues{ParsePath(ie.Path).Issue(ie.Code, "cause", ie.Message)}
	}
	return Issues{Path{}.Issue(CodeParseError, "cause", err.Error())}
}
