package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// Repository persists catalog data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repository) InsertService(ctx context.Context, svc Service) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, name, price, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		svc.ID, svc.Name, svc.Price, svc.Description, svc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: service id %s already exists", shared.ErrConflict, svc.ID)
		}
		return err
	}
	return nil
}

func (r *Repository) GetService(ctx context.Context, id string) (Service, error) {
	var svc Service
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, price, description, created_at
		FROM services WHERE id = $1`, id).
		Scan(&svc.ID, &svc.Name, &svc.Price, &svc.Description, &svc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Service{}, fmt.Errorf("%w: service %s", shared.ErrNotFound, id)
		}
		return Service{}, err
	}
	return svc, nil
}

func (r *Repository) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, price, description, created_at
		FROM services ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Price, &svc.Description, &svc.CreatedAt); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func (r *Repository) DeleteService(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: service %s", shared.ErrNotFound, id)
	}
	return nil
}

// RepairDuplicateServiceIDs scans for rows sharing a service id (possible in
// data imported from the legacy store, which had no uniqueness constraint)
// and rewrites every duplicate beyond the first with a fresh id.
func (r *Repository) RepairDuplicateServiceIDs(ctx context.Context, newID func() string) (int, error) {
	rows, err := r.pool.Query(ctx, `SELECT ctid::text, id FROM services ORDER BY created_at, ctid`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type dupRow struct{ ctid, id string }
	seen := make(map[string]bool)
	var dupes []dupRow
	for rows.Next() {
		var row dupRow
		if err := rows.Scan(&row.ctid, &row.id); err != nil {
			return 0, err
		}
		if seen[row.id] {
			dupes = append(dupes, row)
		}
		seen[row.id] = true
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, dup := range dupes {
		if _, err := r.pool.Exec(ctx, `UPDATE services SET id = $1 WHERE ctid = $2::tid`, newID(), dup.ctid); err != nil {
			return 0, err
		}
	}
	return len(dupes), nil
}

func (r *Repository) InsertPromotion(ctx context.Context, promo Promotion) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO promotions (id, name, description, vehicle_ids, discount_percent, start_at, end_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		promo.ID, promo.Name, promo.Description, promo.VehicleIDs,
		promo.DiscountPercent, promo.StartAt, promo.EndAt, promo.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: promotion id %s already exists", shared.ErrConflict, promo.ID)
		}
		return err
	}
	return nil
}

func (r *Repository) GetPromotion(ctx context.Context, id string) (Promotion, error) {
	var promo Promotion
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, vehicle_ids, discount_percent, start_at, end_at, created_at
		FROM promotions WHERE id = $1`, id).
		Scan(&promo.ID, &promo.Name, &promo.Description, &promo.VehicleIDs,
			&promo.DiscountPercent, &promo.StartAt, &promo.EndAt, &promo.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Promotion{}, fmt.Errorf("%w: promotion %s", shared.ErrNotFound, id)
		}
		return Promotion{}, err
	}
	return promo, nil
}

func (r *Repository) ListPromotions(ctx context.Context) ([]Promotion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, vehicle_ids, discount_percent, start_at, end_at, created_at
		FROM promotions ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []Promotion
	for rows.Next() {
		var promo Promotion
		if err := rows.Scan(&promo.ID, &promo.Name, &promo.Description, &promo.VehicleIDs,
			&promo.DiscountPercent, &promo.StartAt, &promo.EndAt, &promo.CreatedAt); err != nil {
			return nil, err
		}
		promos = append(promos, promo)
	}
	return promos, rows.Err()
}

func (r *Repository) DeletePromotion(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: promotion %s", shared.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) InsertBrand(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO brands (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	return err
}

func (r *Repository) ListBrands(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM brands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		brands = append(brands, name)
	}
	return brands, rows.Err()
}

func (r *Repository) DeleteBrand(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM brands WHERE name = $1`, name)
	return err
}
