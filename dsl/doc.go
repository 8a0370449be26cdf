// Package dsl offers a fluent builder for reqshape shapes.
//
//	vendor := dsl.Shape("Vendor").
//		Field("name", dsl.String().MinLength(2).MaxLength(120)).Required().
//		Field("taxId", dsl.String().Pattern(`^[A-Z]{2}[0-9A-Z]{8,12}$`)).
//		Field("address", dsl.Object("Address")).Required().
//		Field("tags", dsl.ArrayOf(dsl.String().NotEmpty()).MaxItems(10)).
//		MustBuild()
//
// Object and ArrayOf(Object(...)) refer to other shapes by name; the
// referenced shapes are resolved through the Registry at validation time, so
// shapes may reference each other (or themselves) freely.
package dsl
