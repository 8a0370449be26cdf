package reqshape

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// RuleKind enumerates the declarative constraints a field may carry.
type RuleKind int

const (
	RuleMinLength RuleKind = iota + 1
	RuleMaxLength
	RulePattern
	RuleFormat
	RuleNotEmpty
	RuleMin
	RuleMax
	RuleOneOf
	RuleMinItems
	RuleMaxItems
)

var ruleNames = map[RuleKind]string{
	RuleMinLength: "minLength",
	RuleMaxLength: "maxLength",
	RulePattern:   "pattern",
	RuleFormat:    "format",
	RuleNotEmpty:  "notEmpty",
	RuleMin:       "minimum",
	RuleMax:       "maximum",
	RuleOneOf:     "enum",
	RuleMinItems:  "minItems",
	RuleMaxItems:  "maxItems",
}

func (k RuleKind) String() string {
	if n, ok := ruleNames[k]; ok {
		return n
	}
	return "unknown"
}

// Rule is a single declarative constraint. Build them with the constructors
// below; Registry.Register compiles patterns.
type Rule struct {
	Kind   RuleKind
	N      float64 // bound for length, range and item rules
	S      string  // pattern source or format name
	Values []any   // allowed values for RuleOneOf

	re *regexp.Regexp
}

func MinLength(n int) Rule     { return Rule{Kind: RuleMinLength, N: float64(n)} }
func MaxLength(n int) Rule     { return Rule{Kind: RuleMaxLength, N: float64(n)} }
func Pattern(expr string) Rule { return Rule{Kind: RulePattern, S: expr} }
func Format(name string) Rule  { return Rule{Kind: RuleFormat, S: name} }
func NotEmpty() Rule           { return Rule{Kind: RuleNotEmpty} }
func Min(n float64) Rule       { return Rule{Kind: RuleMin, N: n} }
func Max(n float64) Rule       { return Rule{Kind: RuleMax, N: n} }
func OneOf(vals ...any) Rule   { return Rule{Kind: RuleOneOf, Values: vals} }
func MinItems(n int) Rule      { return Rule{Kind: RuleMinItems, N: float64(n)} }
func MaxItems(n int) Rule      { return Rule{Kind: RuleMaxItems, N: float64(n)} }

// Formats understood by RuleFormat.
const (
	FormatEmail    = "email"
	FormatUUID     = "uuid"
	FormatDateTime = "date-time"
	FormatDate     = "date"
	FormatURI      = "uri"
)

var formatCheckers = map[string]func(string) bool{
	FormatEmail: func(s string) bool {
		a, err := mail.ParseAddress(s)
		return err == nil && a.Address == s
	},
	FormatUUID: func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	FormatDateTime: func(s string) bool {
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	},
	FormatDate: func(s string) bool {
		_, err := time.Parse(time.DateOnly, s)
		return err == nil
	},
	FormatURI: func(s string) bool {
		u, err := url.Parse(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	},
}

// KnownFormat reports whether name is a supported format.
func KnownFormat(name string) bool {
	_, ok := formatCheckers[name]
	return ok
}

// appliesTo reports whether the rule can be declared on a field of kind k.
func (r Rule) appliesTo(k Kind) bool {
	switch r.Kind {
	case RuleMinLength, RuleMaxLength, RulePattern, RuleFormat:
		return k == KindString || k == KindAny
	case RuleNotEmpty:
		return k == KindString || k == KindArray || k == KindObject || k == KindAny
	case RuleMin, RuleMax:
		return k == KindNumber || k == KindInteger || k == KindAny
	case RuleMinItems, RuleMaxItems:
		return k == KindArray || k == KindAny
	case RuleOneOf:
		return true
	}
	return false
}

// compile checks the rule's own parameters and prepares patterns.
func (r *Rule) compile() error {
	switch r.Kind {
	case RulePattern:
		re, err := regexp.Compile(r.S)
		if err != nil {
			return err
		}
		r.re = re
	case RuleFormat:
		if !KnownFormat(r.S) {
			return errUnknownFormat(r.S)
		}
	case RuleMinLength, RuleMaxLength, RuleMinItems, RuleMaxItems:
		if r.N < 0 {
			return errNegativeBound(r.Kind)
		}
	case RuleOneOf:
		if len(r.Values) == 0 {
			return errEmptyEnum
		}
	case RuleNotEmpty, RuleMin, RuleMax:
	default:
		return errUnknownRule(r.Kind)
	}
	return nil
}

// check evaluates the rule against a present value and returns the issue it
// raises, if any. A value of the wrong type fails the rule.
func (r Rule) check(p Path, v any) (Issue, bool) {
	switch r.Kind {
	case RuleMinLength:
		s, ok := v.(string)
		if ok && float64(charCount(s)) >= r.N {
			return Issue{}, false
		}
		return p.Issue(CodeTooShort, "min", r.N), true
	case RuleMaxLength:
		s, ok := v.(string)
		if ok && float64(charCount(s)) <= r.N {
			return Issue{}, false
		}
		return p.Issue(CodeTooLong, "max", r.N), true
	case RulePattern:
		s, ok := v.(string)
		if ok && r.re != nil && r.re.MatchString(s) {
			return Issue{}, false
		}
		return p.Issue(CodePattern, "pattern", r.S), true
	case RuleFormat:
		s, ok := v.(string)
		if ok && formatCheckers[r.S](s) {
			return Issue{}, false
		}
		return p.Issue(CodeInvalidFormat, "format", r.S), true
	case RuleNotEmpty:
		if !isEmptyValue(v) {
			return Issue{}, false
		}
		return p.Issue(CodeNotEmpty), true
	case RuleMin:
		f, ok := toFloat(v)
		if ok && f >= r.N {
			return Issue{}, false
		}
		return p.Issue(CodeTooSmall, "min", r.N), true
	case RuleMax:
		f, ok := toFloat(v)
		if ok && f <= r.N {
			return Issue{}, false
		}
		return p.Issue(CodeTooBig, "max", r.N), true
	case RuleOneOf:
		for _, allowed := range r.Values {
			if sameValue(allowed, v) {
				return Issue{}, false
			}
		}
		return p.Issue(CodeInvalidEnum, "values", r.Values), true
	case RuleMinItems:
		arr, ok := v.([]any)
		if ok && float64(len(arr)) >= r.N {
			return Issue{}, false
		}
		return p.Issue(CodeTooFewItems, "min", r.N), true
	case RuleMaxItems:
		arr, ok := v.([]any)
		if ok && float64(len(arr)) <= r.N {
			return Issue{}, false
		}
		return p.Issue(CodeTooManyItems, "max", r.N), true
	}
	return Issue{}, false
}

// charCount counts the runes of the NFC form, so a precomposed and a
// decomposed accent have the same length.
func charCount(s string) int {
	if norm.NFC.IsNormalString(s) {
		return utf8.RuneCountInString(s)
	}
	return utf8.RuneCountInString(norm.NFC.String(s))
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// sameValue compares enum members, treating every numeric representation as
// its float64 value.
func sameValue(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch ta := a.(type) {
	case string:
		tb, ok := b.(string)
		return ok && ta == tb
	case bool:
		tb, ok := b.(bool)
		return ok && ta == tb
	case nil:
		return b == nil
	}
	return false
}
