package orders

import (
	"time"

	"github.com/dealerdesk/dealerdesk/internal/ledger"
)

// Status is the order lifecycle state. Paid is terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Order is a sales order. TotalAmount is always recomputed from the live
// catalog and vehicle price; the caller's figure is never trusted. Once paid,
// ServiceIDs, TotalAmount and the payment fields carry the final commercial
// terms and never change again.
type Order struct {
	ID            string               `json:"id"`
	CustomerID    string               `json:"customer_id"`
	VehicleID     string               `json:"vehicle_id"`
	ServiceIDs    []string             `json:"service_ids"`
	TotalAmount   int64                `json:"total_amount"`
	Status        Status               `json:"status"`
	PaymentMethod ledger.PaymentMethod `json:"payment_method,omitempty"`
	PromotionID   string               `json:"promotion_id,omitempty"`
	Serial        string               `json:"serial,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
}

// Pending reports whether the order can still be edited or deleted.
func (o Order) Pending() bool {
	return o.Status == StatusPending
}

// CreateInput describes a new order.
type CreateInput struct {
	CustomerID    string
	VehicleID     string
	ServiceIDs    []string
	PaymentMethod ledger.PaymentMethod
}

// UpdateInput describes edits to a pending order. Nil slices and empty fields
// leave the current value in place.
type UpdateInput struct {
	ServiceIDs    []string
	PaymentMethod ledger.PaymentMethod
}

// SettleInput describes the settlement request. All fields are optional
// overrides of what the pending order already carries.
type SettleInput struct {
	ServiceIDs    []string
	PromotionID   string
	PaymentMethod ledger.PaymentMethod
	Serial        string
}
