package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerdesk/dealerdesk/internal/platform/db"
	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const vehicleColumns = `id, brand, model, year, price, quantity, stock_mode, unit_ids, color, description, image_ref, color_options, created_at`

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.Brand, &v.Model, &v.Year, &v.Price, &v.Quantity,
		&v.StockMode, &v.UnitIDs, &v.Color, &v.Description, &v.ImageRef,
		&v.ColorOptions, &v.CreatedAt)
	return v, err
}

func (r *Repository) GetVehicle(ctx context.Context, id string) (Vehicle, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	vehicle, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, fmt.Errorf("%w: vehicle %s", shared.ErrNotFound, id)
		}
		return Vehicle{}, err
	}
	return vehicle, nil
}

func (r *Repository) ListVehicles(ctx context.Context, onlyInStock bool) ([]Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	if onlyInStock {
		query += ` WHERE quantity > 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

func (r *Repository) TotalUnits(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM vehicles`).Scan(&total)
	return total, err
}

func (r *Repository) InsertStocktake(ctx context.Context, report StocktakeReport) error {
	items, err := json.Marshal(report.Items)
	if err != nil {
		return fmt.Errorf("marshal stocktake items: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO stocktake_reports (id, created_by, created_at, items, note)
		VALUES ($1, $2, $3, $4, $5)`,
		report.ID, report.CreatedBy, report.CreatedAt, items, report.Note)
	return err
}

func (r *Repository) ListStocktakes(ctx context.Context) ([]StocktakeReport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, created_by, created_at, items, note
		FROM stocktake_reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []StocktakeReport
	for rows.Next() {
		var report StocktakeReport
		var items []byte
		if err := rows.Scan(&report.ID, &report.CreatedBy, &report.CreatedAt, &items, &report.Note); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &report.Items); err != nil {
			return nil, fmt.Errorf("unmarshal stocktake items: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (r *txRepo) InsertVehicle(ctx context.Context, vehicle Vehicle) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO vehicles (`+vehicleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		vehicle.ID, vehicle.Brand, vehicle.Model, vehicle.Year, vehicle.Price,
		vehicle.Quantity, vehicle.StockMode, vehicle.UnitIDs, vehicle.Color,
		vehicle.Description, vehicle.ImageRef, vehicle.ColorOptions, vehicle.CreatedAt)
	return err
}

func (r *txRepo) GetVehicleForUpdate(ctx context.Context, id string) (Vehicle, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1 FOR UPDATE`, id)
	vehicle, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, fmt.Errorf("%w: vehicle %s", shared.ErrNotFound, id)
		}
		return Vehicle{}, err
	}
	return vehicle, nil
}

func (r *txRepo) UpdateStock(ctx context.Context, id string, quantity int, unitIDs []string) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE vehicles SET quantity = $2, unit_ids = $3 WHERE id = $1`,
		id, quantity, unitIDs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: vehicle %s", shared.ErrNotFound, id)
	}
	return nil
}

func (r *txRepo) DeleteVehicle(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: vehicle %s", shared.ErrNotFound, id)
	}
	return nil
}
