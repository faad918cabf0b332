package catalog

import (
	"time"
)

// Service is a sellable add-on (insurance, accessories, maintenance plans).
// Prices are VND minor units.
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Promotion grants a percentage discount, optionally scoped to specific
// vehicles and a validity window. Settlement reads promotions, never writes.
type Promotion struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	VehicleIDs      []string   `json:"vehicle_ids,omitempty"`
	DiscountPercent float64    `json:"discount_percent"`
	StartAt         *time.Time `json:"start_at,omitempty"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// AppliesTo reports whether the promotion covers the vehicle at the given
// time. An empty VehicleIDs list means the promotion is universal.
func (p Promotion) AppliesTo(vehicleID string, at time.Time) bool {
	if p.StartAt != nil && at.Before(*p.StartAt) {
		return false
	}
	if p.EndAt != nil && at.After(*p.EndAt) {
		return false
	}
	if len(p.VehicleIDs) == 0 {
		return true
	}
	for _, id := range p.VehicleIDs {
		if id == vehicleID {
			return true
		}
	}
	return false
}

// ServiceInput describes a service to create.
type ServiceInput struct {
	Name        string
	Price       int64
	Description string
}

// PromotionInput describes a promotion to create.
type PromotionInput struct {
	Name            string
	Description     string
	VehicleIDs      []string
	DiscountPercent float64
	StartAt         *time.Time
	EndAt           *time.Time
}
