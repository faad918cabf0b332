package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerdesk/dealerdesk/internal/ledger"
	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// Repository persists orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, customer_id, vehicle_id, service_ids, total_amount, status,
	COALESCE(payment_method, ''), COALESCE(promotion_id, ''), COALESCE(serial, ''),
	created_at, paid_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var method string
	err := row.Scan(&o.ID, &o.CustomerID, &o.VehicleID, &o.ServiceIDs,
		&o.TotalAmount, &o.Status, &method, &o.PromotionID, &o.Serial,
		&o.CreatedAt, &o.PaidAt)
	o.PaymentMethod = ledger.PaymentMethod(method)
	return o, err
}

func (r *Repository) InsertOrder(ctx context.Context, order Order) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders
			(id, customer_id, vehicle_id, service_ids, total_amount, status,
			 payment_method, promotion_id, serial, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		order.ID, order.CustomerID, order.VehicleID, order.ServiceIDs,
		order.TotalAmount, order.Status, nullable(string(order.PaymentMethod)),
		nullable(order.PromotionID), nullable(order.Serial),
		order.CreatedAt, order.PaidAt)
	return err
}

func (r *Repository) GetOrder(ctx context.Context, id string) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, fmt.Errorf("%w: order %s", shared.ErrNotFound, id)
		}
		return Order{}, err
	}
	return order, nil
}

func (r *Repository) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *Repository) UpdateOrder(ctx context.Context, order Order) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET service_ids = $2, total_amount = $3, payment_method = $4
		WHERE id = $1 AND status = 'pending'`,
		order.ID, order.ServiceIDs, order.TotalAmount,
		nullable(string(order.PaymentMethod)))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pending order %s", shared.ErrNotFound, order.ID)
	}
	return nil
}

func (r *Repository) MarkPaid(ctx context.Context, order Order) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = 'paid', service_ids = $2, total_amount = $3,
		    payment_method = $4, promotion_id = $5, serial = $6, paid_at = $7
		WHERE id = $1 AND status = 'pending'`,
		order.ID, order.ServiceIDs, order.TotalAmount,
		string(order.PaymentMethod), nullable(order.PromotionID),
		nullable(order.Serial), order.PaidAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) DeleteOrder(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pending order %s", shared.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) CountOrders(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count)
	return count, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
