package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/internal/ledger"
	"github.com/dealerdesk/dealerdesk/internal/shared"
)

type fakeLedger struct {
	entries []ledger.PaymentEntry
}

func (f *fakeLedger) Query(ctx context.Context, filter ledger.QueryFilter) ([]ledger.PaymentEntry, error) {
	var out []ledger.PaymentEntry
	for _, e := range f.entries {
		if !filter.From.IsZero() && e.PaidAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.PaidAt.After(filter.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeLedger) TotalRevenue(ctx context.Context) (int64, error) {
	var total int64
	for _, e := range f.entries {
		total += e.TotalAmount
	}
	return total, nil
}

func (f *fakeLedger) CountEntries(ctx context.Context) (int, error) {
	return len(f.entries), nil
}

type fakeInventory struct{ units int }

func (f *fakeInventory) TotalUnits(ctx context.Context) (int, error) { return f.units, nil }

type fakeCustomers struct{ count int }

func (f *fakeCustomers) Count(ctx context.Context) (int, error) { return f.count, nil }

func entry(brand, model string, amount int64, paidAt time.Time) ledger.PaymentEntry {
	return ledger.PaymentEntry{Brand: brand, Model: model, TotalAmount: amount, PaidAt: paidAt}
}

func newTestReports(led *fakeLedger, at time.Time) *Service {
	svc := NewService(led, &fakeInventory{units: 7}, &fakeCustomers{count: 4})
	svc.now = func() time.Time { return at }
	return svc
}

func TestRevenueByPeriodMonthBuckets(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	led := &fakeLedger{entries: []ledger.PaymentEntry{
		entry("Honda", "City", 100, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)),
		entry("Honda", "City", 200, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)),
		entry("Toyota", "Vios", 300, time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)),
		entry("Ford", "Ranger", 999, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)),
	}}
	svc := newTestReports(led, now)

	buckets, err := svc.RevenueByPeriod(context.Background(), PeriodMonth)
	require.NoError(t, err)
	require.Len(t, buckets, 12)

	require.Equal(t, "07/2024", buckets[0].Label, "window starts 11 months back")
	require.Equal(t, "06/2025", buckets[11].Label)
	require.Equal(t, int64(300), buckets[10].Revenue)
	require.Equal(t, int64(300), buckets[11].Revenue, "current month sums its entries")
	require.Equal(t, 2, buckets[11].Orders)

	for _, b := range buckets[:10] {
		require.Zero(t, b.Revenue, "months outside the data stay zero")
	}
}

func TestRevenueByPeriodValidation(t *testing.T) {
	svc := newTestReports(&fakeLedger{}, time.Now())
	_, err := svc.RevenueByPeriod(context.Background(), Period("week"))
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRevenueByPeriodDay(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	led := &fakeLedger{entries: []ledger.PaymentEntry{
		entry("Honda", "City", 50, time.Date(2025, 6, 15, 1, 0, 0, 0, time.UTC)),
		entry("Honda", "City", 70, time.Date(2025, 6, 4, 1, 0, 0, 0, time.UTC)),
	}}
	svc := newTestReports(led, now)

	buckets, err := svc.RevenueByPeriod(context.Background(), PeriodDay)
	require.NoError(t, err)
	require.Len(t, buckets, 12)
	require.Equal(t, "04/06", buckets[0].Label)
	require.Equal(t, int64(70), buckets[0].Revenue)
	require.Equal(t, int64(50), buckets[11].Revenue)
}

func TestTopSellingVehicles(t *testing.T) {
	now := time.Now()
	led := &fakeLedger{entries: []ledger.PaymentEntry{
		entry("Honda", "City", 100, now),
		entry("Honda", "City", 100, now),
		entry("Honda", "City", 100, now),
		entry("Toyota", "Vios", 500, now),
		entry("Toyota", "Vios", 500, now),
		entry("Ford", "Ranger", 50, now),
	}}
	svc := newTestReports(led, now)

	ranked, err := svc.TopSellingVehicles(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	require.Equal(t, "City", ranked[0].Model)
	require.Equal(t, 3, ranked[0].UnitsSold)
	require.Equal(t, int64(300), ranked[0].Revenue)
	require.Equal(t, "Vios", ranked[1].Model)
}

func TestDashboard(t *testing.T) {
	now := time.Now()
	led := &fakeLedger{entries: []ledger.PaymentEntry{
		entry("Honda", "City", 808_000_000, now),
		entry("Toyota", "Vios", 478_000_000, now),
	}}
	svc := newTestReports(led, now)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1_286_000_000), stats.TotalRevenue)
	require.Equal(t, 2, stats.OrdersSettled)
	require.Equal(t, 7, stats.UnitsInStock)
	require.Equal(t, 4, stats.Customers)
	require.NotEmpty(t, stats.TotalRevenueDisplay)
}

func TestFormatVND(t *testing.T) {
	svc := newTestReports(&fakeLedger{}, time.Now())
	require.Equal(t, "808.000.000 ₫", svc.FormatVND(808_000_000))
	require.Equal(t, "0 ₫", svc.FormatVND(0))
}
