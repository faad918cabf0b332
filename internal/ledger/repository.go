package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// Repository persists payment entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) InsertEntry(ctx context.Context, entry PaymentEntry) error {
	services, err := json.Marshal(entry.Services)
	if err != nil {
		return fmt.Errorf("marshal service lines: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO payment_entries
			(id, order_id, customer_id, vehicle_id, brand, model, services,
			 payment_method, promotion_id, serial, total_amount, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.ID, entry.OrderID, entry.CustomerID, entry.VehicleID,
		entry.Brand, entry.Model, services, entry.PaymentMethod,
		nullable(entry.PromotionID), nullable(entry.Serial),
		entry.TotalAmount, entry.PaidAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: payment entry %s already booked", shared.ErrConflict, entry.ID)
		}
		return err
	}
	return nil
}

func (r *Repository) ListEntries(ctx context.Context, filter QueryFilter) ([]PaymentEntry, error) {
	query := `
		SELECT id, order_id, customer_id, vehicle_id, brand, model, services,
		       payment_method, COALESCE(promotion_id, ''), COALESCE(serial, ''),
		       total_amount, paid_at
		FROM payment_entries WHERE 1=1`
	var args []any
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND paid_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND paid_at <= $%d", len(args))
	}
	if filter.VehicleID != "" {
		args = append(args, filter.VehicleID)
		query += fmt.Sprintf(" AND vehicle_id = $%d", len(args))
	}
	query += " ORDER BY paid_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PaymentEntry
	for rows.Next() {
		var entry PaymentEntry
		var services []byte
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.CustomerID,
			&entry.VehicleID, &entry.Brand, &entry.Model, &services,
			&entry.PaymentMethod, &entry.PromotionID, &entry.Serial,
			&entry.TotalAmount, &entry.PaidAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(services, &entry.Services); err != nil {
			return nil, fmt.Errorf("unmarshal service lines: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *Repository) TotalRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM payment_entries`).Scan(&total)
	return total, err
}

func (r *Repository) CountEntries(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payment_entries`).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
