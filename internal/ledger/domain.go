package ledger

import "time"

// PaymentMethod is how the customer settled the order.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
	PaymentOther        PaymentMethod = "other"
)

// Valid reports whether the method is one of the accepted values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentCard, PaymentOther:
		return true
	}
	return false
}

// ServiceLine is a frozen copy of a sold add-on service. The ledger keeps its
// own copy so later catalog edits or deletions never change booked history.
type ServiceLine struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// PaymentEntry is one settled order in the books. Entries are append-only;
// there is no update or delete path.
type PaymentEntry struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"order_id"`
	CustomerID    string        `json:"customer_id"`
	VehicleID     string        `json:"vehicle_id"`
	Brand         string        `json:"brand"`
	Model         string        `json:"model"`
	Services      []ServiceLine `json:"services"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PromotionID   string        `json:"promotion_id,omitempty"`
	Serial        string        `json:"serial,omitempty"`
	TotalAmount   int64         `json:"total_amount"`
	PaidAt        time.Time     `json:"paid_at"`
}

// QueryFilter narrows ledger reads. Zero-value fields are ignored.
type QueryFilter struct {
	From      time.Time
	To        time.Time
	VehicleID string
}
