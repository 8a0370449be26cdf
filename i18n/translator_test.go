package i18n

import "testing"

func TestTranslator_DefaultTemplates(t *testing.T) {
	msg := T("too_short", map[string]string{"field": "name", "min": "3"})
	if msg != "name must be longer than or equal to 3 characters" {
		t.Fatalf("unexpected message: %q", msg)
	}
	if got := T("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("unknown code should echo itself, got %q", got)
	}
}

type upper struct{}

func (upper) Message(code string, data map[string]string) string { return "X:" + code }

func TestTranslator_Swap(t *testing.T) {
	SetTranslator(upper{})
	if got := T("required", nil); got != "X:required" {
		t.Fatalf("custom translator not used: %q", got)
	}
	SetTranslator(nil)
	if got := T("required", map[string]string{"field": "city"}); got != "city is required" {
		t.Fatalf("reset failed: %q", got)
	}
}
