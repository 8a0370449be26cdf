// Package procurement declares the request shapes of the purchasing API and
// the typed views business logic works with once a payload is accepted.
package procurement

import (
	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/dsl"
)

// Shape names.
const (
	AddressShape          = "Address"
	ContactShape          = "Contact"
	VendorShape           = "Vendor"
	LineItemShape         = "LineItem"
	PurchaseOrderShape    = "PurchaseOrder"
	ApprovalDecisionShape = "ApprovalDecision"
	DepartmentShape       = "Department"
)

// Currencies accepted on line items.
var Currencies = []any{"EUR", "USD", "GBP", "NOK"}

func address() *reqshape.Shape {
	return dsl.Shape(AddressShape).
		Describe("postal address").
		Field("street", dsl.String().MinLength(3).MaxLength(120)).Required().
		Field("city", dsl.String().MinLength(2).MaxLength(80)).Required().
		Field("postalCode", dsl.String().Pattern(`^[0-9A-Z -]{3,10}$`)).Required().
		Field("country", dsl.String().Pattern(`^[A-Z]{2}$`).Describe("ISO 3166-1 alpha-2")).Required().
		MustBuild()
}

func contact() *reqshape.Shape {
	return dsl.Shape(ContactShape).
		Field("name", dsl.String().NotEmpty().MaxLength(80)).Required().
		Field("email", dsl.String().Email()).Required().
		Field("phone", dsl.String().Pattern(`^\+[0-9]{7,15}$`)).
		MustBuild()
}

func vendor() *reqshape.Shape {
	return dsl.Shape(VendorShape).
		Describe("supplier onboarding request").
		Field("name", dsl.String().MinLength(2).MaxLength(120)).Required().
		Field("taxId", dsl.String().Pattern(`^[A-Z]{2}[0-9A-Z]{8,12}$`)).Required().
		Field("address", dsl.Object(AddressShape)).Required().
		Field("contacts", dsl.ArrayOf(dsl.Object(ContactShape)).MinItems(1).MaxItems(5)).Required().
		Field("website", dsl.String().Format(reqshape.FormatURI)).
		Field("tags", dsl.ArrayOf(dsl.String().NotEmpty().MaxLength(24)).MaxItems(10)).
		Field("paymentTermsDays", dsl.Int().OneOf(0, 15, 30, 45, 60, 90)).Default(30).
		MustBuild()
}

func lineItem() *reqshape.Shape {
	return dsl.Shape(LineItemShape).
		Field("sku", dsl.String().Pattern(`^[A-Z]{2,4}-[0-9]{3,8}$`)).Required().
		Field("description", dsl.String().MaxLength(200)).
		Field("quantity", dsl.Int().Min(1).Max(10000)).Required().
		Field("unitPrice", dsl.Number().Min(0)).Required().
		Field("currency", dsl.String().OneOf(Currencies...)).Default("EUR").
		MustBuild()
}

func purchaseOrder() *reqshape.Shape {
	return dsl.Shape(PurchaseOrderShape).
		Describe("purchase order submitted for approval").
		Field("vendorId", dsl.String().UUID()).Required().
		Field("requestedBy", dsl.Object(ContactShape)).Required().
		Field("department", dsl.Object(DepartmentShape)).
		Field("deliverTo", dsl.Object(AddressShape)).Required().
		Field("neededBy", dsl.String().Date()).
		Field("items", dsl.ArrayOf(dsl.Object(LineItemShape)).MinItems(1).MaxItems(200)).Required().
		Field("notes", dsl.String().MaxLength(2000).Nullable()).
		Field("priority", dsl.String().OneOf("low", "normal", "urgent")).Default("normal").
		MustBuild()
}

func approvalDecision() *reqshape.Shape {
	return dsl.Shape(ApprovalDecisionShape).
		Field("decision", dsl.String().OneOf("approve", "reject", "escalate")).Required().
		Field("approver", dsl.Object(ContactShape)).Required().
		Field("comment", dsl.String().MaxLength(500)).
		Field("decidedAt", dsl.String().DateTime()).Required().
		MustBuild()
}

func department() *reqshape.Shape {
	return dsl.Shape(DepartmentShape).
		Describe("organisational unit; parents nest up to the company root").
		Field("code", dsl.String().Pattern(`^[A-Z]{3,6}$`)).Required().
		Field("name", dsl.String().NotEmpty()).Required().
		Field("budget", dsl.Number().Min(0)).
		Field("parent", dsl.Object(DepartmentShape).Nullable()).
		MustBuild()
}

// Shapes returns fresh declarations of every procurement shape.
func Shapes() []*reqshape.Shape {
	return []*reqshape.Shape{
		address(), contact(), vendor(), lineItem(), purchaseOrder(), approvalDecision(), department(),
	}
}

// Register adds every procurement shape to reg and verifies the ref graph.
func Register(reg *reqshape.Registry) error {
	if err := reg.Register(Shapes()...); err != nil {
		return err
	}
	return reg.Check()
}

// NewRegistry returns a registry holding only the procurement shapes.
func NewRegistry() (*reqshape.Registry, error) {
	reg := reqshape.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
