package customers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/internal/shared"
)

type memoryCustomerRepo struct {
	customers []Customer
}

func (r *memoryCustomerRepo) InsertCustomer(ctx context.Context, customer Customer) error {
	r.customers = append(r.customers, customer)
	return nil
}

func (r *memoryCustomerRepo) GetCustomer(ctx context.Context, id string) (Customer, error) {
	for _, c := range r.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return Customer{}, fmt.Errorf("%w: customer %s", shared.ErrNotFound, id)
}

func (r *memoryCustomerRepo) ListCustomers(ctx context.Context) ([]Customer, error) {
	out := make([]Customer, len(r.customers))
	copy(out, r.customers)
	return out, nil
}

func (r *memoryCustomerRepo) FindByPhone(ctx context.Context, phone string) ([]Customer, error) {
	var out []Customer
	for _, c := range r.customers {
		if c.Phone == phone {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryCustomerRepo) CountCustomers(ctx context.Context) (int, error) {
	return len(r.customers), nil
}

func (r *memoryCustomerRepo) NormalizeLegacyAddresses(ctx context.Context) (int, error) {
	return 0, nil
}

func newTestService() (*Service, *memoryCustomerRepo) {
	repo := &memoryCustomerRepo{}
	return NewService(repo, slog.New(slog.DiscardHandler)), repo
}

func TestCreateRequiresNameAndPhone(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Phone: "0901234567"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateInput{Name: "Nguyễn Văn A"})
	require.ErrorIs(t, err, shared.ErrValidation)

	customer, err := svc.Create(ctx, CreateInput{Name: "Nguyễn Văn A", Phone: "0901234567"})
	require.NoError(t, err)
	require.NotEmpty(t, customer.ID)
	require.False(t, customer.CreatedAt.IsZero())
}

func TestFindByPhone(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{Name: "Nguyễn Văn A", Phone: "0901234567"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Trần Thị B", Phone: "0912345678"})
	require.NoError(t, err)

	matches, err := svc.FindByPhone(ctx, "0901234567")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, first.ID, matches[0].ID)

	_, err = svc.FindByPhone(ctx, "")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAddressFormat(t *testing.T) {
	full := Address{House: "12", Hamlet: "Ấp 3", Ward: "Xã Tân Thạnh", City: "Long An"}
	require.Equal(t, "12. Ấp 3. Xã Tân Thạnh, Long An", full.Format())

	rawOnly := Address{Raw: "12 Nguyễn Trãi, Q1"}
	require.Equal(t, "12 Nguyễn Trãi, Q1", rawOnly.Format())

	partial := Address{Ward: "Phường 5", City: "Đà Lạt", Raw: "ignored"}
	require.Equal(t, "Phường 5, Đà Lạt", partial.Format())

	require.Equal(t, "", Address{}.Format())
}
