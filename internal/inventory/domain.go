package inventory

import (
	"time"
)

// StockMode selects the stock-keeping discipline for a vehicle. The two
// disciplines never mix on one record: tracked vehicles mutate stock only
// through unit operations, simple vehicles only through quantity adjustments.
type StockMode string

const (
	// StockModeSimple keeps a bare quantity counter.
	StockModeSimple StockMode = "simple"
	// StockModeTracked keeps one identifier (VIN) per physical unit.
	StockModeTracked StockMode = "tracked"
)

// Vehicle is a stock line in the warehouse. Price is VND minor units. For
// tracked vehicles len(UnitIDs) == Quantity holds after every operation.
type Vehicle struct {
	ID           string    `json:"id"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        int64     `json:"price"`
	Quantity     int       `json:"quantity"`
	StockMode    StockMode `json:"stock_mode"`
	UnitIDs      []string  `json:"unit_ids,omitempty"`
	Color        string    `json:"color,omitempty"`
	Description  string    `json:"description,omitempty"`
	ImageRef     string    `json:"image_ref,omitempty"`
	ColorOptions []string  `json:"color_options,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Tracked reports whether the vehicle keeps per-unit identifiers.
func (v Vehicle) Tracked() bool {
	return v.StockMode == StockModeTracked
}

// IntakeInput describes a warehouse intake.
type IntakeInput struct {
	Brand        string
	Model        string
	Year         int
	Price        int64
	Quantity     int
	Simple       bool // opt out of per-unit tracking
	Color        string
	Description  string
	ImageRef     string
	ColorOptions []string
}

// StocktakeItem is one counted line of a stocktake report.
type StocktakeItem struct {
	VehicleID       string `json:"vehicle_id"`
	CountedQuantity int    `json:"counted_quantity"`
	Note            string `json:"note,omitempty"`
}

// StocktakeReport records a physical stock count (phiếu kiểm kê). Reports are
// append-only; discrepancies are resolved by follow-up adjustments.
type StocktakeReport struct {
	ID        string          `json:"id"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []StocktakeItem `json:"items"`
	Note      string          `json:"note,omitempty"`
}

// StocktakeInput describes a stocktake report to record.
type StocktakeInput struct {
	CreatedBy string
	Items     []StocktakeItem
	Note      string
}
