package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/core/reconciliation"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
}

// NewReportingService creates a new reporting service
func NewReportingService(base BaseService) portssvc.ReportingService {
	return &reportingService{BaseService: base}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

func newTotals() map[domain.Currency]domain.CurrencyTotals {
	out := make(map[domain.Currency]domain.CurrencyTotals, len(domain.Currencies))
	for _, c := range domain.Currencies {
		out[c] = domain.CurrencyTotals{
			Revenue:                 decimal.Zero,
			Cost:                    decimal.Zero,
			Profit:                  decimal.Zero,
			Refunds:                 decimal.Zero,
			OutstandingCustomerDebt: decimal.Zero,
			OutstandingCompanyDebt:  decimal.Zero,
			OutstandingLoans:        decimal.Zero,
			PurchaseSpend:           decimal.Zero,
			CashBalance:             decimal.Zero,
		}
	}
	return out
}

// accumulate adds per-currency amounts into one field of the totals.
func accumulate(totals map[domain.Currency]domain.CurrencyTotals, usd, iqd decimal.Decimal, field func(*domain.CurrencyTotals) *decimal.Decimal) {
	for c, amount := range map[domain.Currency]decimal.Decimal{domain.USD: usd, domain.IQD: iqd} {
		t := totals[c]
		f := field(&t)
		*f = f.Add(amount)
		totals[c] = t
	}
}

// Aggregate builds the per-currency report from one consistent snapshot. Revenue, cost,
// profit and purchase spend cover records created in [from, to), refunds and the return
// count cover returns processed in it; outstanding debts and the cash balance are as of
// the snapshot.
func (s *reportingService) Aggregate(ctx context.Context, from, to time.Time) (*domain.AggregateReport, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: report window end %s must be after start %s", apperrors.ErrValidation, to.Format(time.RFC3339), from.Format(time.RFC3339))
	}

	report := &domain.AggregateReport{From: from, To: to, Totals: newTotals()}
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		sales, err := store.ListSales(ctx, from, to)
		if err != nil {
			return err
		}
		for _, sale := range sales {
			report.SaleCount++
			if sale.IsDebt {
				report.DebtSaleCount++
			}
			revenue := reconciliation.SaleRevenue(sale)
			accumulate(report.Totals, revenue.USD, revenue.IQD, func(t *domain.CurrencyTotals) *decimal.Decimal { return &t.Revenue })

			profit, err := reconciliation.SaleProfit(sale)
			if err != nil {
				return fmt.Errorf("profit of sale %s: %w", sale.ID, err)
			}
			report.Warnings = append(report.Warnings, profit.Warnings...)
			accumulate(report.Totals, profit.USD, profit.IQD, func(t *domain.CurrencyTotals) *decimal.Decimal { return &t.Profit })

			cost, err := reconciliation.SaleCost(sale)
			if err != nil {
				return fmt.Errorf("cost of sale %s: %w", sale.ID, err)
			}
			accumulate(report.Totals, cost.USD, cost.IQD, func(t *domain.CurrencyTotals) *decimal.Decimal { return &t.Cost })
		}

		returns, err := store.ListReturns(ctx, from, to)
		if err != nil {
			return err
		}
		for _, r := range returns {
			report.ReturnCount++
			var refund domain.BalanceDelta
			refund.Add(r.RefundCurrency, r.Refund)
			accumulate(report.Totals, refund.USD, refund.IQD, func(t *domain.CurrencyTotals) *decimal.Decimal { return &t.Refunds })
		}

		if err := s.addOutstanding(ctx, store, report.Totals); err != nil {
			return err
		}

		purchases, err := store.ListBuyingHistory(ctx, from, to)
		if err != nil {
			return err
		}
		for _, p := range purchases {
			report.PurchaseCount++
			var spend domain.BalanceDelta
			spend.Add(p.Currency, p.Total)
			accumulate(report.Totals, spend.USD, spend.IQD, func(t *domain.CurrencyTotals) *decimal.Decimal { return &t.PurchaseSpend })
		}

		balance, err := store.GetBalance(ctx)
		if err != nil {
			return err
		}
		accumulate(report.Totals, balance.USDBalance, balance.IQDBalance, func(t *domain.CurrencyTotals) *decimal.Decimal { return &t.CashBalance })
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to build aggregate report",
			slog.String("from", from.Format(time.RFC3339)),
			slog.String("to", to.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to build aggregate report: %w", err)
	}

	s.LogInfo(ctx, "Aggregate report generated successfully",
		slog.String("from", from.Format(time.RFC3339)),
		slog.String("to", to.Format(time.RFC3339)),
		slog.Int("sales", report.SaleCount),
		slog.Int("purchases", report.PurchaseCount),
		slog.Int("returns", report.ReturnCount),
		slog.Int("warnings", len(report.Warnings)))
	return report, nil
}

// addOutstanding sums what is still owed on every unsettled debt, customer debts under
// their own rate policy and the rest at the live rate.
func (s *reportingService) addOutstanding(ctx context.Context, store portsrepo.Store, totals map[domain.Currency]domain.CurrencyTotals) error {
	debts, err := store.ListDebts(ctx)
	if err != nil {
		return err
	}
	for _, d := range debts {
		if d.Settled() {
			continue
		}
		r, _, err := remainingOf(ctx, store, domain.KindCustomerDebt, d.ID)
		if err != nil {
			return err
		}
		accumulate(totals, r.USD, r.IQD, func(t *domain.CurrencyTotals) *decimal.Decimal { return &t.OutstandingCustomerDebt })
	}

	rate, err := liveRate(ctx, store)
	if err != nil {
		return err
	}
	companyDebts, err := store.ListCompanyDebts(ctx)
	if err != nil {
		return err
	}
	for _, d := range companyDebts {
		if d.Settled() {
			continue
		}
		r, err := reconciliation.Remaining(d.Position(), rate)
		if err != nil {
			return fmt.Errorf("remaining of company debt %s: %w", d.ID, err)
		}
		accumulate(totals, r.USD, r.IQD, func(t *domain.CurrencyTotals) *decimal.Decimal { return &t.OutstandingCompanyDebt })
	}

	loans, err := store.ListPersonalLoans(ctx)
	if err != nil {
		return err
	}
	for _, l := range loans {
		if l.Settled() {
			continue
		}
		r, err := reconciliation.Remaining(l.Position(), rate)
		if err != nil {
			return fmt.Errorf("remaining of personal loan %s: %w", l.ID, err)
		}
		accumulate(totals, r.USD, r.IQD, func(t *domain.CurrencyTotals) *decimal.Decimal { return &t.OutstandingLoans })
	}
	return nil
}

// GetBalance returns the cash drawer.
func (s *reportingService) GetBalance(ctx context.Context) (domain.Balance, error) {
	var balance domain.Balance
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		var err error
		balance, err = store.GetBalance(ctx)
		return err
	})
	return balance, err
}
