package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/dealerdesk/dealerdesk/internal/catalog"
	"github.com/dealerdesk/dealerdesk/internal/customers"
	"github.com/dealerdesk/dealerdesk/internal/inventory"
	"github.com/dealerdesk/dealerdesk/internal/ledger"
	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// RepositoryPort abstracts order persistence.
type RepositoryPort interface {
	InsertOrder(ctx context.Context, order Order) error
	GetOrder(ctx context.Context, id string) (Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrder(ctx context.Context, order Order) error
	// MarkPaid flips the order to paid and writes the final terms with a
	// conditional update on status = pending. Returns false when the guard
	// matched no row.
	MarkPaid(ctx context.Context, order Order) (bool, error)
	DeleteOrder(ctx context.Context, id string) error
	CountOrders(ctx context.Context) (int, error)
}

// InventoryPort is the slice of the inventory service settlement needs.
type InventoryPort interface {
	Get(ctx context.Context, id string) (inventory.Vehicle, error)
	ReserveUnit(ctx context.Context, vehicleID string) (string, bool, error)
	ReleaseUnit(ctx context.Context, vehicleID, serial string) error
	ConsumeSpecific(ctx context.Context, vehicleID, serial string) (bool, error)
}

// CatalogPort resolves services and promotions at pricing time.
type CatalogPort interface {
	GetService(ctx context.Context, id string) (catalog.Service, error)
	GetPromotion(ctx context.Context, id string) (catalog.Promotion, error)
}

// CustomerPort checks that the buyer exists.
type CustomerPort interface {
	Get(ctx context.Context, id string) (customers.Customer, error)
}

// LedgerPort books the settled order.
type LedgerPort interface {
	Append(ctx context.Context, input ledger.AppendInput) (ledger.PaymentEntry, error)
}

// DistributedLocker serializes settlement across server instances. Optional;
// single-instance deployments rely on the in-process mutex alone.
type DistributedLocker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Service drives the order lifecycle. Settlement is the money path: it is the
// only place stock is consumed and the ledger written, and it runs at most
// once per order.
type Service struct {
	repo      RepositoryPort
	inventory InventoryPort
	catalog   CatalogPort
	customers CustomerPort
	ledger    LedgerPort
	locker    DistributedLocker
	locks     *shared.KeyedMutex
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds an order service. locker may be nil.
func NewService(
	repo RepositoryPort,
	inv InventoryPort,
	cat CatalogPort,
	cust CustomerPort,
	led LedgerPort,
	locker DistributedLocker,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		inventory: inv,
		catalog:   cat,
		customers: cust,
		ledger:    led,
		locker:    locker,
		locks:     shared.NewKeyedMutex(),
		logger:    logger,
		now:       time.Now,
	}
}

// Create opens a pending order. The total is priced from the live vehicle and
// catalog records; unknown service ids are rejected here because the cashier
// just picked them.
func (s *Service) Create(ctx context.Context, input CreateInput) (Order, error) {
	if strings.TrimSpace(input.CustomerID) == "" || strings.TrimSpace(input.VehicleID) == "" {
		return Order{}, fmt.Errorf("%w: customer and vehicle are required", shared.ErrValidation)
	}
	if input.PaymentMethod != "" && !input.PaymentMethod.Valid() {
		return Order{}, fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, input.PaymentMethod)
	}
	if _, err := s.customers.Get(ctx, input.CustomerID); err != nil {
		return Order{}, err
	}
	vehicle, err := s.inventory.Get(ctx, input.VehicleID)
	if err != nil {
		return Order{}, err
	}

	serviceIDs := dedupe(input.ServiceIDs)
	total, err := s.priceStrict(ctx, vehicle.Price, serviceIDs)
	if err != nil {
		return Order{}, err
	}

	order := Order{
		ID:            shared.NewID(shared.PrefixOrder),
		CustomerID:    input.CustomerID,
		VehicleID:     input.VehicleID,
		ServiceIDs:    serviceIDs,
		TotalAmount:   total,
		Status:        StatusPending,
		PaymentMethod: input.PaymentMethod,
		CreatedAt:     s.now(),
	}
	if err := s.repo.InsertOrder(ctx, order); err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

// Get returns one order by id.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.ListOrders(ctx)
}

// Count returns the number of orders.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.CountOrders(ctx)
}

// UpdatePending edits a pending order. Changing the service set reprices the
// order; a paid order rejects every edit.
func (s *Service) UpdatePending(ctx context.Context, id string, input UpdateInput) (Order, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !order.Pending() {
		return Order{}, fmt.Errorf("%w: order %s is already %s", shared.ErrInvalidState, id, order.Status)
	}

	if input.PaymentMethod != "" {
		if !input.PaymentMethod.Valid() {
			return Order{}, fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, input.PaymentMethod)
		}
		order.PaymentMethod = input.PaymentMethod
	}
	if input.ServiceIDs != nil {
		vehicle, err := s.inventory.Get(ctx, order.VehicleID)
		if err != nil {
			return Order{}, err
		}
		serviceIDs := dedupe(input.ServiceIDs)
		total, err := s.priceStrict(ctx, vehicle.Price, serviceIDs)
		if err != nil {
			return Order{}, err
		}
		order.ServiceIDs = serviceIDs
		order.TotalAmount = total
	}

	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return Order{}, fmt.Errorf("update order: %w", err)
	}
	return order, nil
}

// Delete removes a pending order. Paid orders are part of the books and are
// never deletable.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if !order.Pending() {
		return fmt.Errorf("%w: order %s is already %s", shared.ErrInvalidState, id, order.Status)
	}
	return s.repo.DeleteOrder(ctx, id)
}

// Settle flips a pending order to paid exactly once. Stock is consumed before
// the paid flip because that step is reversible; the flip itself is a
// conditional update guarding against a racing settlement; the ledger entry
// goes in last, after the money has irrevocably moved.
func (s *Service) Settle(ctx context.Context, orderID string, input SettleInput) (Order, error) {
	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, shared.OrderLockKey(orderID))
		if err != nil {
			if errors.Is(err, shared.ErrConflict) {
				return Order{}, fmt.Errorf("%w: order %s is being settled elsewhere", shared.ErrConflict, orderID)
			}
			return Order{}, fmt.Errorf("acquire settlement lock: %w", err)
		}
		defer release()
	}
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !order.Pending() {
		return Order{}, fmt.Errorf("%w: order %s is already %s", shared.ErrInvalidState, orderID, order.Status)
	}

	vehicle, err := s.inventory.Get(ctx, order.VehicleID)
	if err != nil {
		return Order{}, err
	}

	serviceIDs := order.ServiceIDs
	if input.ServiceIDs != nil {
		serviceIDs = dedupe(input.ServiceIDs)
	}
	lines := s.snapshotServices(ctx, serviceIDs)

	baseTotal := vehicle.Price
	for _, line := range lines {
		baseTotal += line.Price
	}

	now := s.now()
	total, promotionID := s.applyPromotion(ctx, baseTotal, vehicle.ID, input.PromotionID, now)

	method := order.PaymentMethod
	if input.PaymentMethod != "" {
		method = input.PaymentMethod
	}
	if method == "" {
		method = ledger.PaymentCash
	}
	if !method.Valid() {
		return Order{}, fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, method)
	}

	serial, err := s.consumeStock(ctx, vehicle, input.Serial)
	if err != nil {
		return Order{}, err
	}

	paid := order
	paid.ServiceIDs = serviceIDs
	paid.TotalAmount = total
	paid.Status = StatusPaid
	paid.PaymentMethod = method
	paid.PromotionID = promotionID
	paid.Serial = serial
	paid.PaidAt = &now

	flipped, err := s.repo.MarkPaid(ctx, paid)
	if err != nil || !flipped {
		if releaseErr := s.inventory.ReleaseUnit(ctx, vehicle.ID, serial); releaseErr != nil {
			s.logger.Error("release unit after failed settlement",
				slog.String("order_id", orderID),
				slog.String("vehicle_id", vehicle.ID),
				slog.String("serial", serial),
				slog.Any("error", releaseErr))
		}
		if err != nil {
			return Order{}, fmt.Errorf("mark order paid: %w", err)
		}
		return Order{}, fmt.Errorf("%w: order %s was settled concurrently", shared.ErrConflict, orderID)
	}

	_, err = s.ledger.Append(ctx, ledger.AppendInput{
		OrderID:       paid.ID,
		CustomerID:    paid.CustomerID,
		VehicleID:     paid.VehicleID,
		Brand:         vehicle.Brand,
		Model:         vehicle.Model,
		Services:      lines,
		PaymentMethod: method,
		PromotionID:   promotionID,
		Serial:        serial,
		TotalAmount:   total,
		PaidAt:        now,
	})
	if err != nil {
		// The order is paid and holds the final terms; only the ledger row is
		// missing. Reconciliation picks this up from the log line.
		s.logger.Error("ledger append failed after paid flip",
			slog.String("order_id", paid.ID),
			slog.Int64("total_amount", total),
			slog.Any("error", err))
		return Order{}, fmt.Errorf("append ledger entry for paid order %s: %w", paid.ID, err)
	}

	s.logger.Info("order settled",
		slog.String("order_id", paid.ID),
		slog.String("vehicle_id", paid.VehicleID),
		slog.Int64("total_amount", total),
		slog.String("payment_method", string(method)))
	return paid, nil
}

// priceStrict sums vehicle price and live service prices, failing on ids the
// catalog does not know.
func (s *Service) priceStrict(ctx context.Context, vehiclePrice int64, serviceIDs []string) (int64, error) {
	total := vehiclePrice
	for _, id := range serviceIDs {
		svc, err := s.catalog.GetService(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return 0, fmt.Errorf("%w: unknown service %s", shared.ErrValidation, id)
			}
			return 0, err
		}
		total += svc.Price
	}
	return total, nil
}

// snapshotServices freezes the service lines for the ledger. A service that
// was deleted since the order was opened degrades to a zero-price placeholder
// rather than blocking the sale.
func (s *Service) snapshotServices(ctx context.Context, serviceIDs []string) []ledger.ServiceLine {
	lines := make([]ledger.ServiceLine, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		svc, err := s.catalog.GetService(ctx, id)
		if err != nil {
			s.logger.Warn("service missing at settlement, booking placeholder",
				slog.String("service_id", id), slog.Any("error", err))
			lines = append(lines, ledger.ServiceLine{ID: id, Name: "unknown service", Price: 0})
			continue
		}
		lines = append(lines, ledger.ServiceLine{ID: svc.ID, Name: svc.Name, Price: svc.Price})
	}
	return lines
}

// applyPromotion discounts baseTotal when the promotion exists and covers the
// vehicle right now. An inapplicable or missing promotion is ignored with a
// warning; it never fails the settlement.
func (s *Service) applyPromotion(ctx context.Context, baseTotal int64, vehicleID, promotionID string, at time.Time) (int64, string) {
	if promotionID == "" {
		return baseTotal, ""
	}
	promo, err := s.catalog.GetPromotion(ctx, promotionID)
	if err != nil {
		s.logger.Warn("promotion not found, settling without discount",
			slog.String("promotion_id", promotionID), slog.Any("error", err))
		return baseTotal, ""
	}
	if !promo.AppliesTo(vehicleID, at) {
		s.logger.Warn("promotion does not apply, settling without discount",
			slog.String("promotion_id", promotionID),
			slog.String("vehicle_id", vehicleID))
		return baseTotal, ""
	}
	total := int64(math.Round(float64(baseTotal) * (1 - promo.DiscountPercent/100)))
	if total < 0 {
		total = 0
	}
	return total, promotionID
}

// consumeStock takes one unit out of inventory. A requested serial must still
// be on the shelf; without one the oldest unit is taken.
func (s *Service) consumeStock(ctx context.Context, vehicle inventory.Vehicle, requested string) (string, error) {
	if requested != "" {
		consumed, err := s.inventory.ConsumeSpecific(ctx, vehicle.ID, requested)
		if err != nil {
			return "", fmt.Errorf("consume unit %s: %w", requested, err)
		}
		if !consumed {
			return "", fmt.Errorf("%w: unit %s is no longer in stock", shared.ErrConflict, requested)
		}
		return requested, nil
	}
	serial, reserved, err := s.inventory.ReserveUnit(ctx, vehicle.ID)
	if err != nil {
		return "", fmt.Errorf("reserve unit: %w", err)
	}
	if !reserved {
		return "", fmt.Errorf("%w: vehicle %s is out of stock", shared.ErrInvalidState, vehicle.ID)
	}
	return serial, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
