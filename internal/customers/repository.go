package customers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// Repository persists customers in PostgreSQL. The address is stored as a
// jsonb document; legacy imports may hold a bare json string there until the
// normalization pass rewrites it.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) InsertCustomer(ctx context.Context, customer Customer) error {
	addr, err := json.Marshal(customer.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO customers (id, name, phone, email, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		customer.ID, customer.Name, customer.Phone, customer.Email, addr, customer.CreatedAt)
	return err
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var customer Customer
	var addr []byte
	if err := row.Scan(&customer.ID, &customer.Name, &customer.Phone, &customer.Email, &addr, &customer.CreatedAt); err != nil {
		return Customer{}, err
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &customer.Address); err != nil {
			return Customer{}, fmt.Errorf("unmarshal address: %w", err)
		}
	}
	return customer, nil
}

func (r *Repository) GetCustomer(ctx context.Context, id string) (Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, phone, email, address, created_at
		FROM customers WHERE id = $1`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, fmt.Errorf("%w: customer %s", shared.ErrNotFound, id)
		}
		return Customer{}, err
	}
	return customer, nil
}

func (r *Repository) queryCustomers(ctx context.Context, query string, args ...any) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, customer)
	}
	return out, rows.Err()
}

func (r *Repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	return r.queryCustomers(ctx, `
		SELECT id, name, phone, email, address, created_at
		FROM customers ORDER BY created_at DESC`)
}

func (r *Repository) FindByPhone(ctx context.Context, phone string) ([]Customer, error) {
	return r.queryCustomers(ctx, `
		SELECT id, name, phone, email, address, created_at
		FROM customers WHERE phone = $1 ORDER BY created_at DESC`, phone)
}

func (r *Repository) CountCustomers(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count)
	return count, err
}

// NormalizeLegacyAddresses rewrites bare-string address documents into
// {"raw": <string>} in a single pass at store initialization.
func (r *Repository) NormalizeLegacyAddresses(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers
		SET address = jsonb_build_object('raw', address #>> '{}')
		WHERE jsonb_typeof(address) = 'string'`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
