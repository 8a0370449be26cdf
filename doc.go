// Package reqshape provides:
//
// - Statically registered shape descriptors (fields, kinds, rules) held in a Registry
// - A Coercion step that maps an untyped payload onto a shape's declared fields (whitelisting)
// - A Validator that walks the candidate against the shape and aggregates every violation
// - A stable error model: Issues (field path, code, message) grouped into a Report
//
// Design policy:
// - Keep only public APIs in the root package; put decoding internals under internal/.
// - Place the builder DSL under dsl/, transport adapters under middleware/, and the CLI under cmd/reqshape.
// - Schema-definition mistakes are returned as *SchemaError, never folded into a Report.
//
// Typical usage:
//
//	reg := reqshape.NewRegistry()
//	reg.MustRegister(dsl.Shape("Address").
//		Field("city", dsl.String().MinLength(2)).Required().
//		MustBuild())
//
//	v := reqshape.NewValidator(reg, reqshape.DefaultConfig())
//	res, err := v.Validate(ctx, raw, reqshape.Ref("Address"))
//	if err != nil {
//		// broken shape declaration
//	}
//	if !res.Accepted() {
//		return res.Err() // *reqshape.Rejection
//	}
package reqshape
