package reqshape_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/dsl"
)

func person() *reqshape.Registry {
	addr := dsl.Shape("Address").
		Field("city", dsl.String().MinLength(2)).Required().
		Field("zip", dsl.String().Pattern(`^[0-9]{5}$`)).
		MustBuild()
	p := dsl.Shape("Person").
		Field("name", dsl.String()).Required().
		Field("age", dsl.Int().Min(0)).
		Field("address", dsl.Object("Address")).
		MustBuild()
	return reqshape.NewRegistry().MustRegister(addr, p)
}

func hasIssue(iss reqshape.Issues, path, code string) bool {
	for _, it := range iss {
		if it.Path == path && it.Code == code {
			return true
		}
	}
	return false
}

func TestValidate_StrictModeRejectsExtra(t *testing.T) {
	ctx := context.Background()
	reg := person()
	in := map[string]any{"name": "A", "age": 1, "extra": "x"}

	res, err := reqshape.Validate(ctx, reg, in, reqshape.Ref("Person"), reqshape.StrictConfig())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Accepted() {
		t.Fatalf("strict mode must reject undeclared field")
	}
	if !hasIssue(res.Issues, "extra", reqshape.CodeUnknownKey) {
		t.Fatalf("want unknown_key at extra, got %v", res.Issues)
	}
	if res.Value != nil {
		t.Fatalf("rejected result must not carry a value: %#v", res.Value)
	}

	res, err = reqshape.Validate(ctx, reg, in, reqshape.Ref("Person"), reqshape.DefaultConfig())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	obj, ok := res.Object()
	if !ok {
		t.Fatalf("non-strict mode must accept, got %v", res.Issues)
	}
	if _, found := obj["extra"]; found {
		t.Fatalf("extra must be stripped: %#v", obj)
	}
	if obj["name"] != "A" || obj["age"] != 1 {
		t.Fatalf("declared fields lost: %#v", obj)
	}
	if _, found := in["extra"]; !found {
		t.Fatalf("raw input must not be mutated")
	}
}

func TestValidate_NestedPathComposition(t *testing.T) {
	reg := person()
	res, err := reqshape.Validate(context.Background(), reg,
		map[string]any{"name": "A", "address": map[string]any{}},
		reqshape.Ref("Person"), reqshape.DefaultConfig())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	rep := res.Report()
	if len(rep) != 1 {
		t.Fatalf("want exactly one report key, got %v", rep)
	}
	msgs, ok := rep["address.city"]
	if !ok || len(msgs) != 1 {
		t.Fatalf("want address.city key, got %v", rep)
	}
	if msgs[0] != "city is required" {
		t.Fatalf("unexpected message %q", msgs[0])
	}
}

func TestValidate_NullRootIsUnknownValue(t *testing.T) {
	reg := person()
	for _, raw := range []any{nil, "text", 42, []any{map[string]any{"name": "A"}}} {
		res, err := reqshape.Validate(context.Background(), reg, raw, reqshape.Ref("Person"), reqshape.DefaultConfig())
		if err != nil {
			t.Fatalf("validate(%#v): %v", raw, err)
		}
		if len(res.Issues) != 1 {
			t.Fatalf("validate(%#v): want exactly one issue, got %v", raw, res.Issues)
		}
		if it := res.Issues[0]; it.Code != reqshape.CodeUnknownValue || it.Path != "" {
			t.Fatalf("validate(%#v): want unknown_value at root, got %+v", raw, it)
		}
	}

	cfg := reqshape.DefaultConfig()
	cfg.ForbidUnknownValues = false
	res, err := reqshape.Validate(context.Background(), reg, nil, reqshape.Ref("Person"), cfg)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(res.Issues) != 1 || res.Issues[0].Code != reqshape.CodeInvalidType {
		t.Fatalf("want a single root invalid_type, got %v", res.Issues)
	}
}

func TestValidate_BareTargetPassesThrough(t *testing.T) {
	reg := reqshape.NewRegistry()
	for _, raw := range []any{"hello", 42, nil, map[string]any{"x": 1}} {
		res, err := reqshape.Validate(context.Background(), reg, raw, reqshape.Bare(reqshape.KindString), reqshape.StrictConfig())
		if err != nil {
			t.Fatalf("bare: %v", err)
		}
		if !res.Accepted() || !reflect.DeepEqual(res.Value, raw) {
			t.Fatalf("bare target must return input unchanged, got %#v (%v)", res.Value, res.Issues)
		}
	}
}

func TestValidate_Completeness(t *testing.T) {
	reg := person()
	in := map[string]any{
		"age":     -3,
		"address": map[string]any{"city": "B", "zip": "abc"},
	}
	res, err := reqshape.Validate(context.Background(), reg, in, reqshape.Ref("Person"), reqshape.DefaultConfig())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	rep := res.Report()
	for _, k := range []string{"name", "age", "address.city", "address.zip"} {
		if _, ok := rep[k]; !ok {
			t.Errorf("missing report key %q in %v", k, rep)
		}
	}
	if len(rep) != 4 {
		t.Fatalf("want 4 keys, got %v", rep)
	}
}

func TestValidate_MultiConstraintAggregation(t *testing.T) {
	s := dsl.Shape("Login").
		Field("user", dsl.String().MinLength(5).Pattern(`^[a-z]+$`)).Required().
		MustBuild()
	reg := reqshape.NewRegistry().MustRegister(s)

	res, err := reqshape.Validate(context.Background(), reg, map[string]any{"user": "AB"}, s, reqshape.DefaultConfig())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	rep := res.Report()
	if len(rep) != 1 {
		t.Fatalf("want one key, got %v", rep)
	}
	if msgs := rep["user"]; len(msgs) != 2 {
		t.Fatalf("want two messages for user, got %v", msgs)
	}
	if res.Issues[0].Code != reqshape.CodeTooShort || res.Issues[1].Code != reqshape.CodePattern {
		t.Fatalf("messages must follow rule order, got %v", res.Issues)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	ctx := context.Background()
	reg := person()
	v := reqshape.NewValidator(reg, reqshape.DefaultConfig())
	in := map[string]any{"name": "A", "junk": true, "address": map[string]any{"city": "Oslo", "floor": 3}}

	first, err := v.Validate(ctx, in, reqshape.Ref("Person"))
	if err != nil || !first.Accepted() {
		t.Fatalf("first pass: %v %v", err, first.Issues)
	}
	second, err := v.Validate(ctx, first.Value, reqshape.Ref("Person"))
	if err != nil || !second.Accepted() {
		t.Fatalf("second pass: %v %v", err, second.Issues)
	}
	if !reflect.DeepEqual(first.Value, second.Value) {
		t.Fatalf("not idempotent:\n%#v\n%#v", first.Value, second.Value)
	}
	want := map[string]any{"name": "A", "address": map[string]any{"city": "Oslo"}}
	if !reflect.DeepEqual(first.Value, want) {
		t.Fatalf("got %#v", first.Value)
	}
}

func TestValidate_WhitelistDisabledKeepsExtras(t *testing.T) {
	reg := person()
	cfg := reqshape.DefaultConfig()
	cfg.Whitelist = false
	in := map[string]any{"name": "A", "note": "keep", "address": map[string]any{"city": "Oslo", "floor": 3}}
	res, err := reqshape.Validate(context.Background(), reg, in, reqshape.Ref("Person"), cfg)
	if err != nil || !res.Accepted() {
		t.Fatalf("validate: %v %v", err, res.Issues)
	}
	if !reflect.DeepEqual(res.Value, in) {
		t.Fatalf("extras must pass through, got %#v", res.Value)
	}
}

func TestValidate_ArrayElementPaths(t *testing.T) {
	line := dsl.Shape("Line").
		Field("sku", dsl.String().Pattern(`^[A-Z]+-[0-9]+$`)).Required().
		Field("quantity", dsl.Int().Min(1)).Required().
		MustBuild()
	order := dsl.Shape("Order").
		Field("items", dsl.ArrayOf(dsl.Object("Line")).MinItems(1)).Required().
		Field("tags", dsl.ArrayOf(dsl.String().NotEmpty())).
		MustBuild()
	reg := reqshape.NewRegistry().MustRegister(line, order)
	v := reqshape.NewValidator(reg, reqshape.StrictConfig())
	ctx := context.Background()

	res, err := v.Validate(ctx, map[string]any{
		"items": []any{
			map[string]any{"sku": "AB-1", "quantity": 2},
			map[string]any{"quantity": 0, "color": "red"},
			"not-an-object",
		},
		"tags": []any{"ok", " ", nil},
	}, order)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	for _, want := range []struct{ path, code string }{
		{"items.1.sku", reqshape.CodeRequired},
		{"items.1.quantity", reqshape.CodeTooSmall},
		{"items.1.color", reqshape.CodeUnknownKey},
		{"items.2", reqshape.CodeInvalidType},
		{"tags.1", reqshape.CodeNotEmpty},
		{"tags.2", reqshape.CodeInvalidType},
	} {
		if !hasIssue(res.Issues, want.path, want.code) {
			t.Errorf("want %s at %s, got %v", want.code, want.path, res.Issues)
		}
	}
	if hasIssue(res.Issues, "items.0.sku", reqshape.CodePattern) {
		t.Errorf("valid element reported: %v", res.Issues)
	}

	res, err = v.Validate(ctx, map[string]any{"items": []any{}}, order)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(res.Issues) != 1 || !hasIssue(res.Issues, "items", reqshape.CodeTooFewItems) {
		t.Fatalf("want too_few_items on items, got %v", res.Issues)
	}
}

func TestValidate_RecursiveShapeDepthLimit(t *testing.T) {
	dept := dsl.Shape("Dept").
		Field("name", dsl.String()).Required().
		Field("parent", dsl.Object("Dept")).
		MustBuild()
	reg := reqshape.NewRegistry().MustRegister(dept)

	chain := func(n int) map[string]any {
		cur := map[string]any{"name": "root"}
		for i := 0; i < n; i++ {
			cur = map[string]any{"name": "d", "parent": cur}
		}
		return cur
	}

	cfg := reqshape.DefaultConfig()
	cfg.MaxDepth = 4
	res, err := reqshape.Validate(context.Background(), reg, chain(10), dept, cfg)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := strings.TrimSuffix(strings.Repeat("parent.", 5), ".")
	if len(res.Issues) != 1 || !hasIssue(res.Issues, want, reqshape.CodeMaxDepth) {
		t.Fatalf("want max_depth at %s, got %v", want, res.Issues)
	}

	res, err = reqshape.Validate(context.Background(), reg, chain(3), dept, cfg)
	if err != nil || !res.Accepted() {
		t.Fatalf("shallow chain: %v %v", err, res.Issues)
	}

	res, err = reqshape.Validate(context.Background(), reg, chain(10000), dept, reqshape.DefaultConfig())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Accepted() {
		t.Fatalf("deep payload must be rejected")
	}
}

func TestValidate_NullHandling(t *testing.T) {
	s := dsl.Shape("Note").
		Field("title", dsl.String()).Required().
		Field("body", dsl.String().MinLength(3)).
		Field("due", dsl.String().Date().Nullable()).Required().
		MustBuild()
	reg := reqshape.NewRegistry().MustRegister(s)

	res, err := reqshape.Validate(context.Background(), reg,
		map[string]any{"title": nil, "body": nil, "due": nil}, s, reqshape.DefaultConfig())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(res.Issues) != 1 || !hasIssue(res.Issues, "title", reqshape.CodeRequired) {
		t.Fatalf("only the non-nullable required field may fail, got %v", res.Issues)
	}
}

func TestValidate_DefaultsFillAbsentFields(t *testing.T) {
	s := dsl.Shape("Money").
		Field("amount", dsl.Number().Min(0)).Required().
		Field("currency", dsl.String().OneOf("EUR", "USD")).Default("EUR").
		Field("tags", dsl.ArrayOf(dsl.String())).Default([]any{"std"}).
		MustBuild()
	reg := reqshape.NewRegistry().MustRegister(s)
	v := reqshape.NewValidator(reg, reqshape.DefaultConfig())

	res, err := v.Validate(context.Background(), map[string]any{"amount": 9.5}, s)
	if err != nil || !res.Accepted() {
		t.Fatalf("validate: %v %v", err, res.Issues)
	}
	obj, _ := res.Object()
	if obj["currency"] != "EUR" {
		t.Fatalf("default not applied: %#v", obj)
	}
	obj["tags"].([]any)[0] = "changed"

	res, _ = v.Validate(context.Background(), map[string]any{"amount": 1}, s)
	obj, _ = res.Object()
	if obj["tags"].([]any)[0] != "std" {
		t.Fatalf("defaults must not be shared between results: %#v", obj)
	}

	res, _ = v.Validate(context.Background(), map[string]any{"amount": 1, "currency": "GBP"}, s)
	if !hasIssue(res.Issues, "currency", reqshape.CodeInvalidEnum) {
		t.Fatalf("present value must be checked, got %v", res.Issues)
	}
}

func TestValidate_RejectionWireShape(t *testing.T) {
	reg := person()
	res, err := reqshape.Validate(context.Background(), reg, map[string]any{"age": "x"}, reqshape.Ref("Person"), reqshape.DefaultConfig())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	rj, ok := reqshape.AsRejection(res.Err())
	if !ok {
		t.Fatalf("want *Rejection, got %T", res.Err())
	}
	if rj.Message != "Validation failed" {
		t.Fatalf("message = %q", rj.Message)
	}
	want := reqshape.Report{
		"name": {"name is required"},
		"age":  {"age must be of type integer", "age must not be less than 0"},
	}
	if !reflect.DeepEqual(rj.Errors, want) {
		t.Fatalf("errors = %v", rj.Errors)
	}
	iss, ok := reqshape.AsIssues(res.Err())
	if !ok || len(iss) != 3 {
		t.Fatalf("AsIssues through Rejection: %v", iss)
	}
}

func TestValidate_SchemaErrorsPropagate(t *testing.T) {
	broken := dsl.Shape("Broken").
		Field("child", dsl.Object("Nowhere")).
		MustBuild()
	reg := reqshape.NewRegistry().MustRegister(broken)

	res, err := reqshape.Validate(context.Background(), reg, map[string]any{}, broken, reqshape.DefaultConfig())
	if !errors.Is(err, reqshape.ErrSchemaDefinition) {
		t.Fatalf("want schema error, got %v", err)
	}
	if len(res.Issues) != 0 {
		t.Fatalf("schema errors must not appear as issues: %v", res.Issues)
	}
	if err := reg.Check(); !errors.Is(err, reqshape.ErrSchemaDefinition) {
		t.Fatalf("Check must report dangling ref, got %v", err)
	}

	_, err = reqshape.Validate(context.Background(), reg, map[string]any{}, reqshape.Ref("Unknown"), reqshape.DefaultConfig())
	var se *reqshape.SchemaError
	if !errors.As(err, &se) || se.Shape != "Unknown" {
		t.Fatalf("want SchemaError for unregistered target, got %v", err)
	}

	other := dsl.Shape("Broken").MustBuild()
	if _, err := reqshape.Validate(context.Background(), reg, map[string]any{}, other, reqshape.DefaultConfig()); !errors.Is(err, reqshape.ErrSchemaDefinition) {
		t.Fatalf("unregistered shape pointer must fail, got %v", err)
	}
}

func TestIs(t *testing.T) {
	v := reqshape.NewValidator(person(), reqshape.DefaultConfig())
	ctx := context.Background()
	if !reqshape.Is(ctx, v, map[string]any{"name": "A"}, reqshape.Ref("Person")) {
		t.Fatalf("valid input reported as invalid")
	}
	if reqshape.Is(ctx, v, map[string]any{}, reqshape.Ref("Person")) {
		t.Fatalf("invalid input reported as valid")
	}
	if reqshape.Is(ctx, v, map[string]any{}, reqshape.Ref("Nope")) {
		t.Fatalf("schema error must count as non-conformance")
	}
}

func TestCoerce(t *testing.T) {
	reg := person()
	out, err := reqshape.Coerce(reg, map[string]any{"name": 5, "x": 1, "address": map[string]any{"y": 2}}, reqshape.Ref("Person"))
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	want := map[string]any{"name": 5, "address": map[string]any{}}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("coerce = %#v", out)
	}
	if out, _ := reqshape.Coerce(reg, "raw", reqshape.Ref("Person")); out != "raw" {
		t.Fatalf("non-object input must be returned unchanged, got %#v", out)
	}
}

func TestValidate_LengthCountsNormalizedCharacters(t *testing.T) {
	reg := reqshape.NewRegistry().MustRegister(
		dsl.Shape("Tag").Field("label", dsl.String().MinLength(4).MaxLength(4)).Required().MustBuild(),
	)
	v := reqshape.NewValidator(reg, reqshape.DefaultConfig())
	for _, label := range []string{"caf\u00e9", "cafe\u0301"} {
		res, err := v.Validate(context.Background(), map[string]any{"label": label}, reqshape.Ref("Tag"))
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if !res.Accepted() {
			t.Errorf("%q: want 4 characters, got %v", label, res.Report())
		}
	}
	res, _ := v.Validate(context.Background(), map[string]any{"label": "cafés"}, reqshape.Ref("Tag"))
	if !hasIssue(res.Issues, "label", reqshape.CodeTooLong) {
		t.Fatalf("want too_long, got %v", res.Issues)
	}
}
