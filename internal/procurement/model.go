package procurement

import "time"

// Typed views of accepted instances, filled with reqshape.Into.

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Vendor struct {
	Name             string    `json:"name"`
	TaxID            string    `json:"taxId"`
	Address          Address   `json:"address"`
	Contacts         []Contact `json:"contacts"`
	Website          string    `json:"website,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	PaymentTermsDays int       `json:"paymentTermsDays"`
}

type LineItem struct {
	SKU         string  `json:"sku"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Currency    string  `json:"currency"`
}

// Amount is quantity times unit price.
func (li LineItem) Amount() float64 { return float64(li.Quantity) * li.UnitPrice }

type Department struct {
	Code   string      `json:"code"`
	Name   string      `json:"name"`
	Budget *float64    `json:"budget,omitempty"`
	Parent *Department `json:"parent,omitempty"`
}

type PurchaseOrder struct {
	VendorID    string      `json:"vendorId"`
	RequestedBy Contact     `json:"requestedBy"`
	Department  *Department `json:"department,omitempty"`
	DeliverTo   Address     `json:"deliverTo"`
	NeededBy    string      `json:"neededBy,omitempty"`
	Items       []LineItem  `json:"items"`
	Notes       *string     `json:"notes,omitempty"`
	Priority    string      `json:"priority"`
}

// Totals sums line amounts per currency.
func (po PurchaseOrder) Totals() map[string]float64 {
	out := make(map[string]float64, 1)
	for _, li := range po.Items {
		out[li.Currency] += li.Amount()
	}
	return out
}

type ApprovalDecision struct {
	Decision  string    `json:"decision"`
	Approver  Contact   `json:"approver"`
	Comment   string    `json:"comment,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}
