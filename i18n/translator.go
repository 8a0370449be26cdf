package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves messages for Issue codes.
// data provides values for the {placeholders} in the message (for example,
// "field" or "min").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ templates map[string]string }

var english = map[string]string{
	"invalid_type":   "{field} must be of type {expected}",
	"required":       "{field} is required",
	"unknown_key":    "property {field} should not exist",
	"unknown_value":  "an unknown value was passed to the validate function",
	"duplicate_key":  "duplicate key {field}",
	"not_empty":      "{field} should not be empty",
	"too_small":      "{field} must not be less than {min}",
	"too_big":        "{field} must not be greater than {max}",
	"too_short":      "{field} must be longer than or equal to {min} characters",
	"too_long":       "{field} must be shorter than or equal to {max} characters",
	"too_few_items":  "{field} must contain at least {min} elements",
	"too_many_items": "{field} must contain no more than {max} elements",
	"pattern":        "{field} must match {pattern} regular expression",
	"invalid_enum":   "{field} must be one of the following values: {values}",
	"invalid_format": "{field} must be a valid {format}",
	"max_depth":      "{field} exceeds the maximum nesting depth of {max}",
	"parse_error":    "malformed request body",
	"truncated":      "request body exceeds {max} bytes",
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tpl, ok := t.templates[code]
	if !ok {
		return code
	}
	return render(tpl, data)
}

// render substitutes {key} placeholders; unknown placeholders are left intact.
func render(tpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tpl, "{") {
		return tpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{templates: english}
)

// SetTranslator replaces the Translator implementation. nil restores the
// built-in dictionary.
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{templates: english}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
