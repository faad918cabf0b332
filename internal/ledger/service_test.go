package ledger

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/internal/shared"
)

type memoryLedgerRepo struct {
	entries []PaymentEntry
}

func (r *memoryLedgerRepo) InsertEntry(ctx context.Context, entry PaymentEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryLedgerRepo) ListEntries(ctx context.Context, filter QueryFilter) ([]PaymentEntry, error) {
	var out []PaymentEntry
	for _, e := range r.entries {
		if !filter.From.IsZero() && e.PaidAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.PaidAt.After(filter.To) {
			continue
		}
		if filter.VehicleID != "" && e.VehicleID != filter.VehicleID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryLedgerRepo) TotalRevenue(ctx context.Context) (int64, error) {
	var total int64
	for _, e := range r.entries {
		total += e.TotalAmount
	}
	return total, nil
}

func (r *memoryLedgerRepo) CountEntries(ctx context.Context) (int, error) {
	return len(r.entries), nil
}

func newTestLedger() (*Service, *memoryLedgerRepo) {
	repo := &memoryLedgerRepo{}
	return NewService(repo, slog.New(slog.DiscardHandler)), repo
}

func TestAppendValidation(t *testing.T) {
	svc, _ := newTestLedger()
	ctx := context.Background()

	_, err := svc.Append(ctx, AppendInput{PaymentMethod: PaymentCash, TotalAmount: 1})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Append(ctx, AppendInput{OrderID: "ORD1", PaymentMethod: "cheque", TotalAmount: 1})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Append(ctx, AppendInput{OrderID: "ORD1", PaymentMethod: PaymentCash, TotalAmount: -1})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAppendFreezesServiceSnapshot(t *testing.T) {
	svc, repo := newTestLedger()
	ctx := context.Background()

	paidAt := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	entry, err := svc.Append(ctx, AppendInput{
		OrderID:       "ORD1",
		CustomerID:    "CUS1",
		VehicleID:     "VH1",
		Brand:         "Honda",
		Model:         "City",
		Services:      []ServiceLine{{ID: "SRV1", Name: "Bảo hiểm vật chất", Price: 5_000_000}},
		PaymentMethod: PaymentBankTransfer,
		Serial:        "VH1-abc-0",
		TotalAmount:   564_000_000,
		PaidAt:        paidAt,
	})
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)
	require.Len(t, repo.entries, 1)

	booked := repo.entries[0]
	require.Equal(t, "Honda", booked.Brand)
	require.Equal(t, int64(5_000_000), booked.Services[0].Price)
	require.Equal(t, paidAt, booked.PaidAt)
}

func TestQueryFilters(t *testing.T) {
	svc, _ := newTestLedger()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, vehicleID := range []string{"VH1", "VH2", "VH1"} {
		_, err := svc.Append(ctx, AppendInput{
			OrderID:       shared.NewID(shared.PrefixOrder),
			VehicleID:     vehicleID,
			PaymentMethod: PaymentCash,
			TotalAmount:   100,
			PaidAt:        base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	byVehicle, err := svc.Query(ctx, QueryFilter{VehicleID: "VH1"})
	require.NoError(t, err)
	require.Len(t, byVehicle, 2)

	windowed, err := svc.Query(ctx, QueryFilter{From: base.AddDate(0, 0, 1), To: base.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	require.Equal(t, "VH2", windowed[0].VehicleID)

	_, err = svc.Query(ctx, QueryFilter{From: base.AddDate(0, 0, 2), To: base})
	require.ErrorIs(t, err, shared.ErrValidation)

	total, err := svc.TotalRevenue(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(300), total)
}
