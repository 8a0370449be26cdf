package jsonschema_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/dsl"
	"github.com/reoring/reqshape/jsonschema"
)

func registry(t *testing.T) *reqshape.Registry {
	t.Helper()
	item := dsl.Shape("Item").
		Field("sku", dsl.String().Pattern(`^[A-Z]+-[0-9]+$`)).Required().
		Field("qty", dsl.Int().Min(1).Max(999)).Required().
		Field("note", dsl.String().MaxLength(20).Nullable()).
		MustBuild()
	order := dsl.Shape("Order").
		Describe("purchase order").
		Field("id", dsl.String().UUID()).Required().
		Field("status", dsl.String().OneOf("draft", "sent")).Default("draft").
		Field("items", dsl.ArrayOf(dsl.Object("Item")).MinItems(1)).Required().
		Field("tags", dsl.ArrayOf(dsl.String().NotEmpty())).
		Field("parent", dsl.Object("Order").Nullable()).
		MustBuild()
	reg := reqshape.NewRegistry()
	if err := reg.Register(item, order); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestFromShape_Structure(t *testing.T) {
	doc, err := jsonschema.FromShape(registry(t), "Order", jsonschema.Options{Strict: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Ref != "#/$defs/Order" || doc.Dialect != jsonschema.DialectURI {
		t.Fatalf("root = %+v", doc)
	}
	if len(doc.Defs) != 2 {
		t.Fatalf("want Order and Item definitions, got %d", len(doc.Defs))
	}
	order := doc.Defs["Order"]
	if order.AdditionalProperties != false {
		t.Fatalf("strict export must close objects")
	}
	if strings.Join(order.Required, ",") != "id,items" {
		t.Fatalf("required = %v", order.Required)
	}
	if order.Properties["status"].Default != "draft" || len(order.Properties["status"].Enum) != 2 {
		t.Fatalf("status = %+v", order.Properties["status"])
	}
	if items := order.Properties["items"]; items.Items.Ref != "#/$defs/Item" || *items.MinItems != 1 {
		t.Fatalf("items = %+v", items)
	}
	if parent := order.Properties["parent"]; len(parent.AnyOf) != 2 {
		t.Fatalf("nullable ref must become anyOf: %+v", parent)
	}
	note := doc.Defs["Item"].Properties["note"]
	if types, ok := note.Type.([]string); !ok || len(types) != 2 || types[1] != "null" {
		t.Fatalf("nullable scalar type = %#v", note.Type)
	}

	loose, err := jsonschema.FromShape(registry(t), "Order", jsonschema.Options{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if loose.Defs["Order"].AdditionalProperties != nil {
		t.Fatalf("non-strict export must leave objects open")
	}
}

func TestCompile_AgreesWithValidator(t *testing.T) {
	reg := registry(t)
	doc, err := jsonschema.FromShape(reg, "Order", jsonschema.Options{Strict: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	sch, err := jsonschema.Compile(doc)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	good := `{"id":"7b0d7c6e-8a1f-4a4e-9d55-3f3e0a4b1c2d","items":[{"sku":"AB-1","qty":2,"note":null}],"tags":["x"],"parent":null}`
	bad := `{"id":"nope","items":[{"sku":"ab","qty":0}],"tags":[" "],"extra":1}`
	for _, tc := range []struct {
		body string
		ok   bool
	}{{good, true}, {bad, false}} {
		raw, err := reqshape.DecodeJSONBytes([]byte(tc.body), reqshape.DefaultDecodeOpt())
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		msgs := jsonschema.Violations(sch, raw)
		if (len(msgs) == 0) != tc.ok {
			t.Fatalf("json schema verdict for %s: %v", tc.body, msgs)
		}
		ok := reqshape.Is(context.Background(), reqshape.NewValidator(reg, reqshape.StrictConfig()), raw, reqshape.Ref("Order"))
		if ok != tc.ok {
			t.Fatalf("validator verdict for %s = %v", tc.body, ok)
		}
	}

	b, err := jsonschema.Marshal(doc)
	if err != nil || !strings.Contains(string(b), `"$defs"`) {
		t.Fatalf("marshal: %v %s", err, b)
	}
}

func TestFromShape_Unregistered(t *testing.T) {
	_, err := jsonschema.FromShape(reqshape.NewRegistry(), "Missing", jsonschema.Options{})
	if !errors.Is(err, reqshape.ErrSchemaDefinition) {
		t.Fatalf("want schema error, got %v", err)
	}
}
