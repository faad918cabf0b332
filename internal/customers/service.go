package customers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// RepositoryPort abstracts customer persistence.
type RepositoryPort interface {
	InsertCustomer(ctx context.Context, customer Customer) error
	GetCustomer(ctx context.Context, id string) (Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	FindByPhone(ctx context.Context, phone string) ([]Customer, error)
	CountCustomers(ctx context.Context) (int, error)

	// NormalizeLegacyAddresses rewrites records whose address is still a bare
	// string into the structured form and returns how many were touched.
	NormalizeLegacyAddresses(ctx context.Context) (int, error)
}

// Service manages the customer directory.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a customer directory service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Initialize runs the one-time address normalization pass so read paths never
// have to reshape legacy records.
func (s *Service) Initialize(ctx context.Context) error {
	normalized, err := s.repo.NormalizeLegacyAddresses(ctx)
	if err != nil {
		return fmt.Errorf("normalize legacy addresses: %w", err)
	}
	if normalized > 0 {
		s.logger.Info("normalized legacy customer addresses", slog.Int("count", normalized))
	}
	return nil
}

// Create registers a new customer.
func (s *Service) Create(ctx context.Context, input CreateInput) (Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Customer{}, fmt.Errorf("%w: customer name is required", shared.ErrValidation)
	}
	if strings.TrimSpace(input.Phone) == "" {
		return Customer{}, fmt.Errorf("%w: customer phone is required", shared.ErrValidation)
	}
	customer := Customer{
		ID:        shared.NewID(shared.PrefixCustomer),
		Name:      input.Name,
		Phone:     input.Phone,
		Email:     input.Email,
		Address:   input.Address,
		CreatedAt: s.now(),
	}
	if err := s.repo.InsertCustomer(ctx, customer); err != nil {
		return Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return customer, nil
}

// Get returns one customer by id.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// List returns all customers.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// FindByPhone returns customers matching the phone number, used for
// returning-customer prefill at the sales desk.
func (s *Service) FindByPhone(ctx context.Context, phone string) ([]Customer, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, fmt.Errorf("%w: phone is required", shared.ErrValidation)
	}
	return s.repo.FindByPhone(ctx, phone)
}

// Count returns the number of registered customers.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.CountCustomers(ctx)
}
