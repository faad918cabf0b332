package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// RepositoryPort abstracts catalog persistence for the store.
type RepositoryPort interface {
	InsertService(ctx context.Context, svc Service) error
	GetService(ctx context.Context, id string) (Service, error)
	ListServices(ctx context.Context) ([]Service, error)
	DeleteService(ctx context.Context, id string) error

	InsertPromotion(ctx context.Context, promo Promotion) error
	GetPromotion(ctx context.Context, id string) (Promotion, error)
	ListPromotions(ctx context.Context) ([]Promotion, error)
	DeletePromotion(ctx context.Context, id string) error

	InsertBrand(ctx context.Context, name string) error
	ListBrands(ctx context.Context) ([]string, error)
	DeleteBrand(ctx context.Context, name string) error

	// RepairDuplicateServiceIDs reassigns fresh ids to legacy rows sharing a
	// service id and returns how many rows were rewritten.
	RepairDuplicateServiceIDs(ctx context.Context, newID func() string) (int, error)
}

// Store owns the Service/Brand/Promotion master data.
type Store struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewStore builds a Store.
func NewStore(repo RepositoryPort, logger *slog.Logger) *Store {
	return &Store{repo: repo, logger: logger, now: time.Now}
}

// Initialize runs the one-time normalization pass at store boundary: legacy
// exports carried duplicate service ids, and a fresh install gets the three
// standard services seeded.
func (s *Store) Initialize(ctx context.Context) error {
	repaired, err := s.repo.RepairDuplicateServiceIDs(ctx, func() string {
		return shared.NewID(shared.PrefixService)
	})
	if err != nil {
		return fmt.Errorf("repair duplicate service ids: %w", err)
	}
	if repaired > 0 {
		s.logger.Warn("reassigned duplicate service ids", slog.Int("count", repaired))
	}

	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("list services: %w", err)
	}
	if len(services) > 0 {
		return nil
	}
	for _, seed := range defaultServices() {
		if _, err := s.CreateService(ctx, seed); err != nil {
			return fmt.Errorf("seed default service: %w", err)
		}
	}
	return nil
}

func defaultServices() []ServiceInput {
	return []ServiceInput{
		{Name: "Bảo hiểm vật chất", Price: 5_000_000, Description: "Bảo hiểm toàn diện cho xe"},
		{Name: "Phụ kiện cao cấp", Price: 3_000_000, Description: "Gói phụ kiện nâng cấp xe"},
		{Name: "Bảo dưỡng miễn phí", Price: 2_000_000, Description: "Bảo dưỡng miễn phí 1 năm"},
	}
}

// CreateService adds a sellable service. Ids are generated here and enforced
// unique by the repository; a collision surfaces as ErrConflict.
func (s *Store) CreateService(ctx context.Context, input ServiceInput) (Service, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Service{}, fmt.Errorf("%w: service name is required", shared.ErrValidation)
	}
	if input.Price < 0 {
		return Service{}, fmt.Errorf("%w: service price must be >= 0", shared.ErrValidation)
	}
	svc := Service{
		ID:          shared.NewID(shared.PrefixService),
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		CreatedAt:   s.now(),
	}
	if err := s.repo.InsertService(ctx, svc); err != nil {
		return Service{}, fmt.Errorf("insert service: %w", err)
	}
	return svc, nil
}

// GetService returns one service by id.
func (s *Store) GetService(ctx context.Context, id string) (Service, error) {
	return s.repo.GetService(ctx, id)
}

// ListServices returns all services.
func (s *Store) ListServices(ctx context.Context) ([]Service, error) {
	return s.repo.ListServices(ctx)
}

// DeleteService removes a service. Existing orders keep the stale id; readers
// resolve it to a placeholder.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	return s.repo.DeleteService(ctx, id)
}

// CreatePromotion adds a promotion.
func (s *Store) CreatePromotion(ctx context.Context, input PromotionInput) (Promotion, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Promotion{}, fmt.Errorf("%w: promotion name is required", shared.ErrValidation)
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return Promotion{}, fmt.Errorf("%w: discount percent must be within 0-100", shared.ErrValidation)
	}
	if input.StartAt != nil && input.EndAt != nil && input.EndAt.Before(*input.StartAt) {
		return Promotion{}, fmt.Errorf("%w: promotion end must not precede start", shared.ErrValidation)
	}
	promo := Promotion{
		ID:              shared.NewID(shared.PrefixPromotion),
		Name:            input.Name,
		Description:     input.Description,
		VehicleIDs:      input.VehicleIDs,
		DiscountPercent: input.DiscountPercent,
		StartAt:         input.StartAt,
		EndAt:           input.EndAt,
		CreatedAt:       s.now(),
	}
	if err := s.repo.InsertPromotion(ctx, promo); err != nil {
		return Promotion{}, fmt.Errorf("insert promotion: %w", err)
	}
	return promo, nil
}

// GetPromotion returns one promotion by id.
func (s *Store) GetPromotion(ctx context.Context, id string) (Promotion, error) {
	return s.repo.GetPromotion(ctx, id)
}

// ListPromotions returns all promotions.
func (s *Store) ListPromotions(ctx context.Context) ([]Promotion, error) {
	return s.repo.ListPromotions(ctx)
}

// DeletePromotion removes a promotion.
func (s *Store) DeletePromotion(ctx context.Context, id string) error {
	return s.repo.DeletePromotion(ctx, id)
}

// AddBrand registers a vehicle brand name. Adding an existing brand is a
// no-op.
func (s *Store) AddBrand(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: brand name is required", shared.ErrValidation)
	}
	return s.repo.InsertBrand(ctx, name)
}

// ListBrands returns all registered brands.
func (s *Store) ListBrands(ctx context.Context) ([]string, error) {
	return s.repo.ListBrands(ctx)
}

// DeleteBrand unregisters a brand. Vehicles keep their brand field as-is.
func (s *Store) DeleteBrand(ctx context.Context, name string) error {
	return s.repo.DeleteBrand(ctx, name)
}
