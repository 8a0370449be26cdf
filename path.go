package reqshape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/reqshape/i18n"
)

// Path builds dot-joined field paths in a chain-safe way and creates Issues.
// The zero value is the root path.
type Path struct {
	parts []string
}

// ParsePath splits a dot-joined path ("items.0.sku") into a Path.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	return Path{parts: strings.Split(s, ".")}
}

// Field descends into a named field.
func (p Path) Field(name string) Path {
	if name == "" {
		return p
	}
	return Path{parts: append(append([]string{}, p.parts...), name)}
}

// Index descends into an array element.
func (p Path) Index(i int) Path {
	return Path{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

// String renders the dot-joined path; the root renders as "".
func (p Path) String() string { return strings.Join(p.parts, ".") }

// Last names the innermost field for messages: "city", "items[0]", or
// "value" for the root.
func (p Path) Last() string {
	n := len(p.parts)
	if n == 0 {
		return "value"
	}
	last := p.parts[n-1]
	if _, err := strconv.Atoi(last); err == nil && n > 1 {
		return p.parts[n-2] + "[" + last + "]"
	}
	return last
}

// Depth is the number of segments.
func (p Path) Depth() int { return len(p.parts) }

// Issue creates an Issue at p. kv are alternating param keys and values, which
// are also exposed to the message template.
func (p Path) Issue(code string, kv ...any) Issue {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return IssueAt(p, code, m)
}

// IssueAt creates an Issue at the given path with a message rendered by the
// current i18n Translator.
func IssueAt(p Path, code string, params map[string]any) Issue {
	data := make(map[string]string, len(params)+1)
	for k, v := range params {
		data[k] = formatParam(v)
	}
	data["field"] = p.Last()
	return Issue{Path: p.String(), Code: code, Message: i18n.T(code, data), Params: params}
}

func formatParam(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []any:
		ss := make([]string, len(t))
		for i, e := range t {
			ss[i] = formatParam(e)
		}
		return strings.Join(ss, ", ")
	default:
		return fmt.Sprint(v)
	}
}
