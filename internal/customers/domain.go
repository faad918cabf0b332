package customers

import (
	"strings"
	"time"
)

// Address keeps the structured Vietnamese address used for filtering by area.
// Raw holds the free-text form of records created before the structure was
// introduced.
type Address struct {
	House  string `json:"house,omitempty"`
	Hamlet string `json:"hamlet,omitempty"`
	Ward   string `json:"ward,omitempty"`
	City   string `json:"city,omitempty"`
	Raw    string `json:"raw,omitempty"`
}

// Format renders the single-line display form of the address.
func (a Address) Format() string {
	var parts []string
	if a.House != "" {
		parts = append(parts, a.House)
	}
	if a.Hamlet != "" {
		parts = append(parts, a.Hamlet)
	}
	var wardCity []string
	if a.Ward != "" {
		wardCity = append(wardCity, a.Ward)
	}
	if a.City != "" {
		wardCity = append(wardCity, a.City)
	}
	if len(wardCity) > 0 {
		parts = append(parts, strings.Join(wardCity, ", "))
	}
	if len(parts) == 0 {
		return a.Raw
	}
	return strings.Join(parts, ". ")
}

// Customer is created at the first sale interaction and immutable afterwards.
// Phone is the natural lookup key for returning customers; it is not unique.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   Address   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput describes a customer to create.
type CreateInput struct {
	Name    string
	Phone   string
	Email   string
	Address Address
}
