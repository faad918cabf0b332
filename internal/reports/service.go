package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dealerdesk/dealerdesk/internal/ledger"
	"github.com/dealerdesk/dealerdesk/internal/shared"
)

// Period selects the revenue bucketing granularity.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

const bucketCount = 12

// LedgerPort is the read slice of the payment ledger reports derive from.
type LedgerPort interface {
	Query(ctx context.Context, filter ledger.QueryFilter) ([]ledger.PaymentEntry, error)
	TotalRevenue(ctx context.Context) (int64, error)
	CountEntries(ctx context.Context) (int, error)
}

// InventoryPort supplies the stock-on-hand figure.
type InventoryPort interface {
	TotalUnits(ctx context.Context) (int, error)
}

// CustomerPort supplies the customer count.
type CustomerPort interface {
	Count(ctx context.Context) (int, error)
}

// RevenueBucket is one time slice of booked revenue.
type RevenueBucket struct {
	Label   string    `json:"label"`
	Start   time.Time `json:"start"`
	Revenue int64     `json:"revenue"`
	Display string    `json:"display"`
	Orders  int       `json:"orders"`
}

// TopVehicle is one line of the best-seller report.
type TopVehicle struct {
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	UnitsSold int    `json:"units_sold"`
	Revenue   int64  `json:"revenue"`
}

// DashboardStats is the storefront summary card.
type DashboardStats struct {
	TotalRevenue        int64  `json:"total_revenue"`
	TotalRevenueDisplay string `json:"total_revenue_display"`
	OrdersSettled       int    `json:"orders_settled"`
	UnitsInStock        int    `json:"units_in_stock"`
	Customers           int    `json:"customers"`
}

// Service derives reports from the ledger on every call; nothing is cached or
// stored.
type Service struct {
	ledger    LedgerPort
	inventory InventoryPort
	customers CustomerPort
	printer   *message.Printer
	now       func() time.Time
}

// NewService builds a reporting service.
func NewService(led LedgerPort, inv InventoryPort, cust CustomerPort) *Service {
	return &Service{
		ledger:    led,
		inventory: inv,
		customers: cust,
		printer:   message.NewPrinter(language.Vietnamese),
		now:       time.Now,
	}
}

// FormatVND renders an amount with Vietnamese digit grouping and the đồng
// sign, e.g. "808.000.000 ₫".
func (s *Service) FormatVND(amount int64) string {
	return s.printer.Sprintf("%d ₫", amount)
}

// RevenueByPeriod buckets booked revenue into the most recent 12 slices of
// the given granularity, oldest first. Empty slices are present with zero
// revenue so charts stay contiguous.
func (s *Service) RevenueByPeriod(ctx context.Context, period Period) ([]RevenueBucket, error) {
	now := s.now()
	var starts []time.Time
	switch period {
	case PeriodDay:
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		for i := bucketCount - 1; i >= 0; i-- {
			starts = append(starts, day.AddDate(0, 0, -i))
		}
	case PeriodMonth:
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		for i := bucketCount - 1; i >= 0; i-- {
			starts = append(starts, month.AddDate(0, -i, 0))
		}
	case PeriodYear:
		year := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		for i := bucketCount - 1; i >= 0; i-- {
			starts = append(starts, year.AddDate(-i, 0, 0))
		}
	default:
		return nil, fmt.Errorf("%w: period must be day, month or year", shared.ErrValidation)
	}

	entries, err := s.ledger.Query(ctx, ledger.QueryFilter{From: starts[0]})
	if err != nil {
		return nil, err
	}

	buckets := make([]RevenueBucket, len(starts))
	for i, start := range starts {
		buckets[i] = RevenueBucket{Label: bucketLabel(period, start), Start: start}
	}
	for _, entry := range entries {
		idx := sort.Search(len(starts), func(i int) bool {
			return starts[i].After(entry.PaidAt)
		}) - 1
		if idx < 0 {
			continue
		}
		buckets[idx].Revenue += entry.TotalAmount
		buckets[idx].Orders++
	}
	for i := range buckets {
		buckets[i].Display = s.FormatVND(buckets[i].Revenue)
	}
	return buckets, nil
}

func bucketLabel(period Period, start time.Time) string {
	switch period {
	case PeriodDay:
		return start.Format("02/01")
	case PeriodMonth:
		return start.Format("01/2006")
	default:
		return start.Format("2006")
	}
}

// TopSellingVehicles ranks (brand, model) pairs by units sold, revenue as the
// tie breaker.
func (s *Service) TopSellingVehicles(ctx context.Context, limit int) ([]TopVehicle, error) {
	if limit <= 0 {
		limit = 5
	}
	entries, err := s.ledger.Query(ctx, ledger.QueryFilter{})
	if err != nil {
		return nil, err
	}

	type key struct{ brand, model string }
	tally := map[key]*TopVehicle{}
	for _, entry := range entries {
		k := key{entry.Brand, entry.Model}
		line, ok := tally[k]
		if !ok {
			line = &TopVehicle{Brand: entry.Brand, Model: entry.Model}
			tally[k] = line
		}
		line.UnitsSold++
		line.Revenue += entry.TotalAmount
	}

	ranked := make([]TopVehicle, 0, len(tally))
	for _, line := range tally {
		ranked = append(ranked, *line)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].UnitsSold != ranked[j].UnitsSold {
			return ranked[i].UnitsSold > ranked[j].UnitsSold
		}
		return ranked[i].Revenue > ranked[j].Revenue
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Dashboard assembles the summary card figures. The four reads are
// independent and run concurrently.
func (s *Service) Dashboard(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		revenue, err := s.ledger.TotalRevenue(ctx)
		if err != nil {
			return fmt.Errorf("total revenue: %w", err)
		}
		stats.TotalRevenue = revenue
		return nil
	})
	g.Go(func() error {
		settled, err := s.ledger.CountEntries(ctx)
		if err != nil {
			return fmt.Errorf("count payments: %w", err)
		}
		stats.OrdersSettled = settled
		return nil
	})
	g.Go(func() error {
		units, err := s.inventory.TotalUnits(ctx)
		if err != nil {
			return fmt.Errorf("total units: %w", err)
		}
		stats.UnitsInStock = units
		return nil
	})
	g.Go(func() error {
		custs, err := s.customers.Count(ctx)
		if err != nil {
			return fmt.Errorf("count customers: %w", err)
		}
		stats.Customers = custs
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}
	stats.TotalRevenueDisplay = s.FormatVND(stats.TotalRevenue)
	return stats, nil
}
