package engine

import (
	"strconv"
	"strings"
)

// Enforcement wrapper for TokenSource applying duplicate key handling and
// max depth checks in a streaming fashion.

// DuplicateStrictness selects what happens when an object repeats a key.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupError
)

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
}

// SimpleIssue is a lightweight issue produced by the engine.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// WrapWithEnforcement returns a TokenSource that enforces the duplicate key
// policy and the maximum nesting depth.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	if opt.OnDuplicate == DupIgnore && opt.MaxDepth <= 0 {
		return inner
	}
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforceFrame struct {
	kind       containerKind
	keys       map[string]struct{}
	path       []string
	nextIndex  int
	pendingKey string
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []enforceFrame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		path := e.childPath()
		kind := kindObject
		if tok.Kind == KindBeginArray {
			kind = kindArray
		}
		e.stack = append(e.stack, enforceFrame{kind: kind, keys: map[string]struct{}{}, path: path})
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, IssueError{SimpleIssue{
				Code:    "parse_error",
				Path:    strings.Join(path, "."),
				Message: "max depth " + strconv.Itoa(e.opt.MaxDepth) + " exceeded",
			}}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if e.opt.OnDuplicate == DupError {
				if _, ok := top.keys[tok.String]; ok {
					return Token{}, IssueError{SimpleIssue{
						Code:    "duplicate_key",
						Path:    strings.Join(append(append([]string{}, top.path...), tok.String), "."),
						Message: "key '" + tok.String + "' duplicated",
					}}
				}
				top.keys[tok.String] = struct{}{}
			}
			top.pendingKey = tok.String
		}
	default:
		e.childPath()
	}
	return tok, nil
}

// childPath computes the path of the value about to be read and advances the
// array index of the enclosing container.
func (e *enforcingTokenSource) childPath() []string {
	n := len(e.stack)
	if n == 0 {
		return nil
	}
	top := &e.stack[n-1]
	seg := top.pendingKey
	if top.kind == kindArray {
		seg = strconv.Itoa(top.nextIndex)
		top.nextIndex++
	}
	return append(append([]string{}, top.path...), seg)
}
