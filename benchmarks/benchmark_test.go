package benchmarks_test

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/internal/procurement"
	"github.com/reoring/reqshape/jsonschema"
)

// shared fixtures

func validator(tb testing.TB, cfg reqshape.Config) *reqshape.Validator {
	tb.Helper()
	reg, err := procurement.NewRegistry()
	if err != nil {
		tb.Fatalf("registry: %v", err)
	}
	return reqshape.NewValidator(reg, cfg)
}

func orderJSON(tb testing.TB) []byte {
	tb.Helper()
	data, err := os.ReadFile("../internal/procurement/testdata/purchase_order.json")
	if err != nil {
		tb.Fatalf("fixture: %v", err)
	}
	return data
}

// largeOrderJSON builds an order with n line items.
func largeOrderJSON(n int) []byte {
	var sb strings.Builder
	sb.WriteString(`{"vendorId":"3f6c1d7e-2b1a-4c8e-9a57-0d9a0f4e21b3",`)
	sb.WriteString(`"requestedBy":{"name":"Ingrid Berg","email":"ingrid@example.com"},`)
	sb.WriteString(`"deliverTo":{"street":"Storgata 1","city":"Oslo","postalCode":"0155","country":"NO"},"items":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(`{"sku":"LAP-`)
		sb.WriteString(strconv.Itoa(1000 + i))
		sb.WriteString(`","quantity":2,"unitPrice":19.5,"currency":"NOK"}`)
	}
	sb.WriteString(`]}`)
	return []byte(sb.String())
}

func benchValidateJSON(b *testing.B, v *reqshape.Validator, data []byte, opt reqshape.DecodeOpt) {
	ctx := context.Background()
	target := reqshape.Ref(procurement.PurchaseOrderShape)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := reqshape.ValidateJSON(ctx, v, data, target, opt)
		if err != nil || !res.Accepted() {
			b.Fatalf("rejected: %v %v", err, res.Report())
		}
	}
}

func Benchmark_ValidateJSON_PurchaseOrder_Small(b *testing.B) {
	benchValidateJSON(b, validator(b, reqshape.DefaultConfig()), orderJSON(b), reqshape.DefaultDecodeOpt())
}

func Benchmark_ValidateJSON_PurchaseOrder_Strict(b *testing.B) {
	benchValidateJSON(b, validator(b, reqshape.StrictConfig()), largeOrderJSON(10), reqshape.DefaultDecodeOpt())
}

func Benchmark_ValidateJSON_PurchaseOrder_200Items(b *testing.B) {
	benchValidateJSON(b, validator(b, reqshape.DefaultConfig()), largeOrderJSON(200), reqshape.DefaultDecodeOpt())
}

// Duplicate-key tracking costs one map per object.
func Benchmark_ValidateJSON_PurchaseOrder_200Items_NoDupCheck(b *testing.B) {
	opt := reqshape.DefaultDecodeOpt()
	opt.RejectDuplicateKeys = false
	benchValidateJSON(b, validator(b, reqshape.DefaultConfig()), largeOrderJSON(200), opt)
}

// Validate alone, on an already decoded body.
func Benchmark_Validate_Decoded_200Items(b *testing.B) {
	ctx := context.Background()
	v := validator(b, reqshape.DefaultConfig())
	raw, err := reqshape.DecodeJSONBytes(largeOrderJSON(200), reqshape.DefaultDecodeOpt())
	if err != nil {
		b.Fatal(err)
	}
	target := reqshape.Ref(procurement.PurchaseOrderShape)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := v.Validate(ctx, raw, target); err != nil {
			b.Fatal(err)
		}
	}
}

// Same document checked by jsonschema/v5 against the exported schema.
func Benchmark_JSONSchema_PurchaseOrder_200Items(b *testing.B) {
	v := validator(b, reqshape.DefaultConfig())
	doc, err := jsonschema.FromShape(v.Registry(), procurement.PurchaseOrderShape, jsonschema.Options{})
	if err != nil {
		b.Fatal(err)
	}
	sch, err := jsonschema.Compile(doc)
	if err != nil {
		b.Fatal(err)
	}
	data := largeOrderJSON(200)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		raw, err := reqshape.DecodeJSONBytes(data, reqshape.DecodeOpt{})
		if err != nil {
			b.Fatal(err)
		}
		if msgs := jsonschema.Violations(sch, raw); len(msgs) > 0 {
			b.Fatal(msgs)
		}
	}
}
