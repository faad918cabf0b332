package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StockReconcileJob looks for the two drifts the settlement flow can leave
// behind: tracked vehicles whose quantity disagrees with their identifier
// list, and paid orders missing their ledger entry. The job only reports;
// corrections stay a human decision.
type StockReconcileJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	clock  func() time.Time
}

// NewStockReconcileJob initialises the reconciliation handler.
func NewStockReconcileJob(pool *pgxpool.Pool, logger *slog.Logger) *StockReconcileJob {
	return &StockReconcileJob{
		Pool:   pool,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the reconciliation scan.
func (j *StockReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("stock reconcile: handler not configured")
	}
	var payload StockReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.LookbackHours <= 0 {
		payload.LookbackHours = 24
	}

	drifted, err := j.scanUnitDrift(ctx)
	if err != nil {
		return err
	}
	unbooked, err := j.scanUnbookedOrders(ctx, time.Duration(payload.LookbackHours)*time.Hour)
	if err != nil {
		return err
	}

	j.Logger.Info("stock reconciliation finished",
		slog.Int("unit_drift", drifted),
		slog.Int("unbooked_orders", unbooked))
	return nil
}

func (j *StockReconcileJob) scanUnitDrift(ctx context.Context) (int, error) {
	rows, err := j.Pool.Query(ctx, `
		SELECT id, quantity, COALESCE(array_length(unit_ids, 1), 0)
		FROM vehicles
		WHERE stock_mode = 'tracked'
		  AND quantity <> COALESCE(array_length(unit_ids, 1), 0)`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id string
		var quantity, units int
		if err := rows.Scan(&id, &quantity, &units); err != nil {
			return count, err
		}
		count++
		j.Logger.Warn("vehicle quantity disagrees with unit identifiers",
			slog.String("vehicle_id", id),
			slog.Int("quantity", quantity),
			slog.Int("unit_count", units))
	}
	return count, rows.Err()
}

func (j *StockReconcileJob) scanUnbookedOrders(ctx context.Context, lookback time.Duration) (int, error) {
	since := j.clock().Add(-lookback)
	rows, err := j.Pool.Query(ctx, `
		SELECT o.id, o.total_amount, o.paid_at
		FROM orders o
		LEFT JOIN payment_entries p ON p.order_id = o.id
		WHERE o.status = 'paid' AND o.paid_at >= $1 AND p.id IS NULL`, since)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id string
		var total int64
		var paidAt time.Time
		if err := rows.Scan(&id, &total, &paidAt); err != nil {
			return count, err
		}
		count++
		j.Logger.Warn("paid order has no ledger entry",
			slog.String("order_id", id),
			slog.Int64("total_amount", total),
			slog.Time("paid_at", paidAt))
	}
	return count, rows.Err()
}
