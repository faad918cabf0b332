package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetVehicle(ctx context.Context, id string) (Vehicle, error)
	ListVehicles(ctx context.Context, onlyInStock bool) ([]Vehicle, error)
	TotalUnits(ctx context.Context) (int, error)
	InsertStocktake(ctx context.Context, report StocktakeReport) error
	ListStocktakes(ctx context.Context) ([]StocktakeReport, error)
}

// TxRepository exposes the transactional operations the service composes.
// GetVehicleForUpdate must hold the row lock until the transaction ends so
// that the whole read-modify-write is serialized per vehicle.
type TxRepository interface {
	InsertVehicle(ctx context.Context, vehicle Vehicle) error
	GetVehicleForUpdate(ctx context.Context, id string) (Vehicle, error)
	UpdateStock(ctx context.Context, id string, quantity int, unitIDs []string) error
	DeleteVehicle(ctx context.Context, id string) error
}

// Service maintains non-negative stock counts and per-unit identifiers. It is
// the only writer of vehicle quantity; two settlements racing for the same
// unit are serialized by the per-vehicle mutex on top of the row lock.
type Service struct {
	repo   RepositoryPort
	locks  *shared.KeyedMutex
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds an inventory service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		locks:  shared.NewKeyedMutex(),
		logger: logger,
		now:    time.Now,
	}
}

// Intake creates a vehicle record. Tracked vehicles get one generated unit
// identifier per unit so that quantity mirrors the identifier list from the
// first moment.
func (s *Service) Intake(ctx context.Context, input IntakeInput) (Vehicle, error) {
	if strings.TrimSpace(input.Brand) == "" || strings.TrimSpace(input.Model) == "" {
		return Vehicle{}, fmt.Errorf("%w: brand and model are required", shared.ErrValidation)
	}
	if input.Price < 0 {
		return Vehicle{}, fmt.Errorf("%w: price must be >= 0", shared.ErrValidation)
	}
	if input.Quantity < 0 {
		return Vehicle{}, fmt.Errorf("%w: quantity must be >= 0", shared.ErrValidation)
	}

	now := s.now()
	vehicle := Vehicle{
		ID:           shared.NewID(shared.PrefixVehicle),
		Brand:        input.Brand,
		Model:        input.Model,
		Year:         input.Year,
		Price:        input.Price,
		Quantity:     input.Quantity,
		StockMode:    StockModeTracked,
		Color:        input.Color,
		Description:  input.Description,
		ImageRef:     input.ImageRef,
		ColorOptions: input.ColorOptions,
		CreatedAt:    now,
	}
	if input.Simple {
		vehicle.StockMode = StockModeSimple
	} else {
		vehicle.UnitIDs = shared.NewUnitIdentifiers(vehicle.ID, input.Quantity, now)
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.InsertVehicle(ctx, vehicle)
	})
	if err != nil {
		return Vehicle{}, fmt.Errorf("insert vehicle: %w", err)
	}
	return vehicle, nil
}

// Get returns one vehicle by id.
func (s *Service) Get(ctx context.Context, id string) (Vehicle, error) {
	return s.repo.GetVehicle(ctx, id)
}

// List returns vehicles, optionally only those with stock on hand.
func (s *Service) List(ctx context.Context, onlyInStock bool) ([]Vehicle, error) {
	return s.repo.ListVehicles(ctx, onlyInStock)
}

// TotalUnits sums quantity across all vehicles.
func (s *Service) TotalUnits(ctx context.Context) (int, error) {
	return s.repo.TotalUnits(ctx)
}

// ReserveUnit pops the oldest unit identifier (FIFO) and decrements quantity.
// The boolean reports whether a unit was taken: a simple vehicle reserves
// without yielding an identifier, and an exhausted vehicle reserves nothing
// and stays at quantity 0 rather than going negative.
func (s *Service) ReserveUnit(ctx context.Context, vehicleID string) (string, bool, error) {
	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	var serial string
	reserved := false
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		vehicle, err := tx.GetVehicleForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		if vehicle.Tracked() {
			if len(vehicle.UnitIDs) == 0 {
				return nil
			}
			serial = vehicle.UnitIDs[0]
			rest := vehicle.UnitIDs[1:]
			reserved = true
			return tx.UpdateStock(ctx, vehicleID, len(rest), rest)
		}
		if vehicle.Quantity == 0 {
			return nil
		}
		reserved = true
		return tx.UpdateStock(ctx, vehicleID, vehicle.Quantity-1, nil)
	})
	if err != nil {
		return "", false, err
	}
	return serial, reserved, nil
}

// ReleaseUnit compensates a failed settlement: the identifier is pushed back
// and quantity incremented. For simple vehicles serial is empty and only the
// counter moves.
func (s *Service) ReleaseUnit(ctx context.Context, vehicleID, serial string) error {
	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		vehicle, err := tx.GetVehicleForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		if vehicle.Tracked() && serial != "" {
			units := append(vehicle.UnitIDs, serial)
			return tx.UpdateStock(ctx, vehicleID, len(units), units)
		}
		return tx.UpdateStock(ctx, vehicleID, vehicle.Quantity+1, vehicle.UnitIDs)
	})
}

// ConsumeSpecific removes a named identifier from anywhere in the list, for
// cashiers selling a specific chassis. Returns false without mutating when
// the identifier is not present — that is the recoverable "already consumed"
// race, not an error.
func (s *Service) ConsumeSpecific(ctx context.Context, vehicleID, serial string) (bool, error) {
	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	consumed := false
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		vehicle, err := tx.GetVehicleForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		if !vehicle.Tracked() {
			return nil
		}
		for i, unit := range vehicle.UnitIDs {
			if unit == serial {
				units := append(append([]string{}, vehicle.UnitIDs[:i]...), vehicle.UnitIDs[i+1:]...)
				consumed = true
				return tx.UpdateStock(ctx, vehicleID, len(units), units)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return consumed, nil
}

// AdjustQuantity applies a delta to a simple vehicle's counter, floored at 0.
// Tracked vehicles reject it: their stock moves only through unit operations,
// otherwise quantity and identifier list drift apart.
func (s *Service) AdjustQuantity(ctx context.Context, vehicleID string, delta int) (int, error) {
	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	var quantity int
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		vehicle, err := tx.GetVehicleForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		if vehicle.Tracked() {
			return fmt.Errorf("%w: vehicle %s tracks unit identifiers; use unit operations", shared.ErrInvalidState, vehicleID)
		}
		quantity = vehicle.Quantity + delta
		if quantity < 0 {
			quantity = 0
		}
		return tx.UpdateStock(ctx, vehicleID, quantity, nil)
	})
	if err != nil {
		return 0, err
	}
	return quantity, nil
}

// Remove deletes the vehicle record outright. Historical orders and ledger
// entries keep the stale id and resolve it to a placeholder on display.
func (s *Service) Remove(ctx context.Context, vehicleID string) error {
	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteVehicle(ctx, vehicleID)
	})
}

// RecordStocktake stores a physical count report and logs any drift against
// book quantities.
func (s *Service) RecordStocktake(ctx context.Context, input StocktakeInput) (StocktakeReport, error) {
	if strings.TrimSpace(input.CreatedBy) == "" {
		return StocktakeReport{}, fmt.Errorf("%w: stocktake author is required", shared.ErrValidation)
	}
	if len(input.Items) == 0 {
		return StocktakeReport{}, fmt.Errorf("%w: stocktake needs at least one counted line", shared.ErrValidation)
	}

	report := StocktakeReport{
		ID:        shared.NewID(shared.PrefixStocktake),
		CreatedBy: input.CreatedBy,
		CreatedAt: s.now(),
		Items:     input.Items,
		Note:      input.Note,
	}
	for _, item := range input.Items {
		vehicle, err := s.repo.GetVehicle(ctx, item.VehicleID)
		if err != nil {
			s.logger.Warn("stocktake references unknown vehicle", slog.String("vehicle_id", item.VehicleID))
			continue
		}
		if vehicle.Quantity != item.CountedQuantity {
			s.logger.Warn("stocktake drift",
				slog.String("vehicle_id", item.VehicleID),
				slog.Int("book_quantity", vehicle.Quantity),
				slog.Int("counted_quantity", item.CountedQuantity))
		}
	}
	if err := s.repo.InsertStocktake(ctx, report); err != nil {
		return StocktakeReport{}, fmt.Errorf("insert stocktake: %w", err)
	}
	return report, nil
}

// ListStocktakes returns all stocktake reports.
func (s *Service) ListStocktakes(ctx context.Context) ([]StocktakeReport, error) {
	return s.repo.ListStocktakes(ctx)
}
