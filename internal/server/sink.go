package server

import (
	"context"
	"log/slog"

	"github.com/reoring/reqshape/internal/procurement"
)

// Sink receives accepted requests. It is the hand-off point to business
// logic; everything reaching it has passed validation.
type Sink interface {
	SubmitVendor(ctx context.Context, v procurement.Vendor) error
	SubmitPurchaseOrder(ctx context.Context, po procurement.PurchaseOrder) error
	RecordApproval(ctx context.Context, orderID string, d procurement.ApprovalDecision) error
}

// LogSink records accepted requests in the log and otherwise discards them.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) SubmitVendor(ctx context.Context, v procurement.Vendor) error {
	s.Logger.InfoContext(ctx, "vendor accepted",
		"name", v.Name,
		"tax_id", v.TaxID,
		"contacts", len(v.Contacts),
	)
	return nil
}

func (s LogSink) SubmitPurchaseOrder(ctx context.Context, po procurement.PurchaseOrder) error {
	s.Logger.InfoContext(ctx, "purchase order accepted",
		"vendor_id", po.VendorID,
		"items", len(po.Items),
		"priority", po.Priority,
		"totals", po.Totals(),
	)
	return nil
}

func (s LogSink) RecordApproval(ctx context.Context, orderID string, d procurement.ApprovalDecision) error {
	s.Logger.InfoContext(ctx, "approval recorded",
		"order_id", orderID,
		"decision", d.Decision,
		"approver", d.Approver.Email,
	)
	return nil
}
