package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/internal/shared"
)

type memoryCatalogRepo struct {
	services   []Service
	promotions []Promotion
	brands     []string
}

func newMemoryCatalogRepo() *memoryCatalogRepo {
	return &memoryCatalogRepo{}
}

func (r *memoryCatalogRepo) InsertService(ctx context.Context, svc Service) error {
	for _, existing := range r.services {
		if existing.ID == svc.ID {
			return fmt.Errorf("%w: service id %s already exists", shared.ErrConflict, svc.ID)
		}
	}
	r.services = append(r.services, svc)
	return nil
}

func (r *memoryCatalogRepo) GetService(ctx context.Context, id string) (Service, error) {
	for _, svc := range r.services {
		if svc.ID == id {
			return svc, nil
		}
	}
	return Service{}, fmt.Errorf("%w: service %s", shared.ErrNotFound, id)
}

func (r *memoryCatalogRepo) ListServices(ctx context.Context) ([]Service, error) {
	out := make([]Service, len(r.services))
	copy(out, r.services)
	return out, nil
}

func (r *memoryCatalogRepo) DeleteService(ctx context.Context, id string) error {
	for i, svc := range r.services {
		if svc.ID == id {
			r.services = append(r.services[:i], r.services[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: service %s", shared.ErrNotFound, id)
}

func (r *memoryCatalogRepo) RepairDuplicateServiceIDs(ctx context.Context, newID func() string) (int, error) {
	seen := make(map[string]bool)
	repaired := 0
	for i := range r.services {
		if seen[r.services[i].ID] {
			r.services[i].ID = newID()
			repaired++
		}
		seen[r.services[i].ID] = true
	}
	return repaired, nil
}

func (r *memoryCatalogRepo) InsertPromotion(ctx context.Context, promo Promotion) error {
	r.promotions = append(r.promotions, promo)
	return nil
}

func (r *memoryCatalogRepo) GetPromotion(ctx context.Context, id string) (Promotion, error) {
	for _, promo := range r.promotions {
		if promo.ID == id {
			return promo, nil
		}
	}
	return Promotion{}, fmt.Errorf("%w: promotion %s", shared.ErrNotFound, id)
}

func (r *memoryCatalogRepo) ListPromotions(ctx context.Context) ([]Promotion, error) {
	out := make([]Promotion, len(r.promotions))
	copy(out, r.promotions)
	return out, nil
}

func (r *memoryCatalogRepo) DeletePromotion(ctx context.Context, id string) error {
	for i, promo := range r.promotions {
		if promo.ID == id {
			r.promotions = append(r.promotions[:i], r.promotions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: promotion %s", shared.ErrNotFound, id)
}

func (r *memoryCatalogRepo) InsertBrand(ctx context.Context, name string) error {
	for _, b := range r.brands {
		if b == name {
			return nil
		}
	}
	r.brands = append(r.brands, name)
	return nil
}

func (r *memoryCatalogRepo) ListBrands(ctx context.Context) ([]string, error) {
	out := make([]string, len(r.brands))
	copy(out, r.brands)
	return out, nil
}

func (r *memoryCatalogRepo) DeleteBrand(ctx context.Context, name string) error {
	for i, b := range r.brands {
		if b == name {
			r.brands = append(r.brands[:i], r.brands[i+1:]...)
			return nil
		}
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestInitializeSeedsDefaultServices(t *testing.T) {
	repo := newMemoryCatalogRepo()
	store := NewStore(repo, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Initialize(ctx))

	services, err := store.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 3)

	// Second run must not duplicate the seed set.
	require.NoError(t, store.Initialize(ctx))
	services, err = store.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 3)
}

func TestInitializeRepairsDuplicateServiceIDs(t *testing.T) {
	repo := newMemoryCatalogRepo()
	repo.services = []Service{
		{ID: "SRV1", Name: "Bảo hiểm", Price: 5_000_000},
		{ID: "SRV1", Name: "Phụ kiện", Price: 3_000_000},
		{ID: "SRV2", Name: "Bảo dưỡng", Price: 2_000_000},
	}
	store := NewStore(repo, testLogger())

	require.NoError(t, store.Initialize(context.Background()))

	ids := make(map[string]bool)
	for _, svc := range repo.services {
		require.False(t, ids[svc.ID], "id %s still duplicated", svc.ID)
		ids[svc.ID] = true
	}
}

func TestCreateServiceValidation(t *testing.T) {
	store := NewStore(newMemoryCatalogRepo(), testLogger())
	ctx := context.Background()

	_, err := store.CreateService(ctx, ServiceInput{Name: "", Price: 100})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = store.CreateService(ctx, ServiceInput{Name: "Bảo hiểm", Price: -1})
	require.ErrorIs(t, err, shared.ErrValidation)

	svc, err := store.CreateService(ctx, ServiceInput{Name: "Bảo hiểm", Price: 5_000_000})
	require.NoError(t, err)
	require.NotEmpty(t, svc.ID)
}

func TestPromotionAppliesTo(t *testing.T) {
	now := time.Now()

	universal := Promotion{DiscountPercent: 10}
	require.True(t, universal.AppliesTo("VH1", now))
	require.True(t, universal.AppliesTo("VH2", now))

	scoped := Promotion{DiscountPercent: 10, VehicleIDs: []string{"VH1"}}
	require.True(t, scoped.AppliesTo("VH1", now))
	require.False(t, scoped.AppliesTo("VH2", now))

	start := now.Add(time.Hour)
	future := Promotion{DiscountPercent: 10, StartAt: &start}
	require.False(t, future.AppliesTo("VH1", now))

	end := now.Add(-time.Hour)
	expired := Promotion{DiscountPercent: 10, EndAt: &end}
	require.False(t, expired.AppliesTo("VH1", now))
}

func TestCreatePromotionValidation(t *testing.T) {
	store := NewStore(newMemoryCatalogRepo(), testLogger())
	ctx := context.Background()

	_, err := store.CreatePromotion(ctx, PromotionInput{Name: "Tet", DiscountPercent: 101})
	require.ErrorIs(t, err, shared.ErrValidation)

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err = store.CreatePromotion(ctx, PromotionInput{Name: "Tet", DiscountPercent: 10, StartAt: &start, EndAt: &end})
	require.ErrorIs(t, err, shared.ErrValidation)

	promo, err := store.CreatePromotion(ctx, PromotionInput{Name: "Tet", DiscountPercent: 10})
	require.NoError(t, err)
	require.NotEmpty(t, promo.ID)
}

func TestBrands(t *testing.T) {
	store := NewStore(newMemoryCatalogRepo(), testLogger())
	ctx := context.Background()

	require.NoError(t, store.AddBrand(ctx, "Toyota"))
	require.NoError(t, store.AddBrand(ctx, "Toyota"))
	require.NoError(t, store.AddBrand(ctx, "Honda"))

	brands, err := store.ListBrands(ctx)
	require.NoError(t, err)
	require.Len(t, brands, 2)

	require.NoError(t, store.DeleteBrand(ctx, "Toyota"))
	brands, err = store.ListBrands(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Honda"}, brands)
}
