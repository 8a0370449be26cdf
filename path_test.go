package reqshape_test

import (
	"testing"

	"github.com/reoring/reqshape"
)

func TestPath(t *testing.T) {
	var root reqshape.Path
	if root.String() != "" || root.Last() != "value" {
		t.Fatalf("root path renders as %q / %q", root.String(), root.Last())
	}
	p := root.Field("items").Index(2).Field("sku")
	if p.String() != "items.2.sku" || p.Last() != "sku" || p.Depth() != 3 {
		t.Fatalf("path = %q last=%q depth=%d", p.String(), p.Last(), p.Depth())
	}
	if got := root.Field("tags").Index(0).Last(); got != "tags[0]" {
		t.Fatalf("index segment last = %q", got)
	}
	if got := reqshape.ParsePath("a.b").Field("c").String(); got != "a.b.c" {
		t.Fatalf("parse = %q", got)
	}

	it := root.Field("name").Issue(reqshape.CodeTooShort, "min", 3)
	if it.Path != "name" || it.Message != "name must be longer than or equal to 3 characters" {
		t.Fatalf("issue = %+v", it)
	}
	if it.Params["min"] != 3 {
		t.Fatalf("params = %#v", it.Params)
	}
}

func TestIssues_Error(t *testing.T) {
	iss := reqshape.Issues{
		{Path: "", Code: reqshape.CodeUnknownValue},
		{Path: "a", Code: reqshape.CodeRequired},
		{Path: "b", Code: reqshape.CodeRequired},
		{Path: "c", Code: reqshape.CodeRequired},
	}
	want := "unknown_value at (root); required at a; required at b; ... (total 4)"
	if iss.Error() != want {
		t.Fatalf("Error() = %q", iss.Error())
	}
}
