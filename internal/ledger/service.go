package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// RepositoryPort abstracts ledger persistence.
type RepositoryPort interface {
	InsertEntry(ctx context.Context, entry PaymentEntry) error
	ListEntries(ctx context.Context, filter QueryFilter) ([]PaymentEntry, error)
	TotalRevenue(ctx context.Context) (int64, error)
	CountEntries(ctx context.Context) (int, error)
}

// AppendInput describes the settled order to book.
type AppendInput struct {
	OrderID       string
	CustomerID    string
	VehicleID     string
	Brand         string
	Model         string
	Services      []ServiceLine
	PaymentMethod PaymentMethod
	PromotionID   string
	Serial        string
	TotalAmount   int64
	PaidAt        time.Time
}

// Service books settled orders. Once written an entry is immutable; bad
// entries are corrected by compensating entries elsewhere, never edited.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds a ledger service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Append writes one payment entry.
func (s *Service) Append(ctx context.Context, input AppendInput) (PaymentEntry, error) {
	if strings.TrimSpace(input.OrderID) == "" {
		return PaymentEntry{}, fmt.Errorf("%w: order id is required", shared.ErrValidation)
	}
	if !input.PaymentMethod.Valid() {
		return PaymentEntry{}, fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, input.PaymentMethod)
	}
	if input.TotalAmount < 0 {
		return PaymentEntry{}, fmt.Errorf("%w: total amount must be >= 0", shared.ErrValidation)
	}

	entry := PaymentEntry{
		ID:            shared.NewID(shared.PrefixPayment),
		OrderID:       input.OrderID,
		CustomerID:    input.CustomerID,
		VehicleID:     input.VehicleID,
		Brand:         input.Brand,
		Model:         input.Model,
		Services:      input.Services,
		PaymentMethod: input.PaymentMethod,
		PromotionID:   input.PromotionID,
		Serial:        input.Serial,
		TotalAmount:   input.TotalAmount,
		PaidAt:        input.PaidAt,
	}
	if err := s.repo.InsertEntry(ctx, entry); err != nil {
		return PaymentEntry{}, fmt.Errorf("insert payment entry: %w", err)
	}
	s.logger.Info("payment booked",
		slog.String("payment_id", entry.ID),
		slog.String("order_id", entry.OrderID),
		slog.Int64("total_amount", entry.TotalAmount))
	return entry, nil
}

// Query returns entries matching the filter, newest first.
func (s *Service) Query(ctx context.Context, filter QueryFilter) ([]PaymentEntry, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, fmt.Errorf("%w: query window ends before it starts", shared.ErrValidation)
	}
	return s.repo.ListEntries(ctx, filter)
}

// TotalRevenue sums all booked amounts.
func (s *Service) TotalRevenue(ctx context.Context) (int64, error) {
	return s.repo.TotalRevenue(ctx)
}

// CountEntries returns the number of booked payments.
func (s *Service) CountEntries(ctx context.Context) (int, error) {
	return s.repo.CountEntries(ctx)
}
