package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockReconcile scans for drift between quantities, unit
	// identifier lists and the payment ledger.
	TaskStockReconcile = "stock:reconcile"
)

// StockReconcilePayload tunes the reconciliation scan.
type StockReconcilePayload struct {
	// LookbackHours bounds how far back paid orders are checked against
	// the ledger. Zero means 24 hours.
	LookbackHours int `json:"lookback_hours"`
}

// NewStockReconcileTask constructs an Asynq task.
func NewStockReconcileTask(payload StockReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockReconcile, data), nil
}
