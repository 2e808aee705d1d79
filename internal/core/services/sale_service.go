package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/core/reconciliation"
	"github.com/SscSPs/pos_reconciliation/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// saleService records completed sales and computes their profit.
type saleService struct {
	BaseService
}

// NewSaleService creates a new SaleService.
func NewSaleService(base BaseService) portssvc.SaleSvcFacade {
	return &saleService{BaseService: base}
}

// Ensure saleService implements the portssvc.SaleSvcFacade interface
var _ portssvc.SaleSvcFacade = (*saleService)(nil)

func saleFromRequest(req dto.CreateSaleRequest) (domain.Sale, error) {
	cur, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return domain.Sale{}, err
	}
	items, err := dto.ToDomainLineItems(req.Items)
	if err != nil {
		return domain.Sale{}, err
	}
	sale := domain.Sale{
		ID:       req.ID,
		Currency: cur,
		Total:    req.Total,
		Items:    items,
		IsDebt:   req.IsDebt,
	}
	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}
	if req.Split != nil {
		sale.Split = &domain.PaymentSplit{USDAmount: req.Split.USDAmount, IQDAmount: req.Split.IQDAmount}
	}
	if req.CreatedAt != nil {
		sale.CreatedAt = req.CreatedAt.UTC()
	}
	return sale, nil
}

// RecordSale completes a sale. The live rate is frozen on the sale. A credit sale gets
// exactly one Debt and leaves the drawer alone; a paid sale credits the drawer with what
// was received.
func (s *saleService) RecordSale(ctx context.Context, req dto.CreateSaleRequest) (*domain.Sale, *domain.Debt, error) {
	sale, err := saleFromRequest(req)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}
	sale.LastUpdatedAt = now

	var debt *domain.Debt
	err = s.mutate(ctx, "record_sale", []string{domain.LockKey(domain.KindSale, sale.ID)}, func(ctx context.Context, store portsrepo.Store) error {
		rate, err := store.CurrentRate(ctx)
		if err != nil {
			return err
		}
		sale.Rate = rate
		if err := sale.Validate(); err != nil {
			return err
		}
		if _, err := store.LoadSale(ctx, sale.ID); err == nil {
			return fmt.Errorf("%w: sale %s", apperrors.ErrDuplicate, sale.ID)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if err := store.SaveSale(ctx, sale); err != nil {
			return err
		}

		if sale.IsDebt {
			debt = &domain.Debt{
				ID:     uuid.NewString(),
				SaleID: sale.ID,
				PaymentState: domain.PaymentState{
					PaymentUSDAmount: decimal.Zero,
					PaymentIQDAmount: decimal.Zero,
				},
				AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
			}
			return store.SaveDebt(ctx, *debt)
		}
		return adjustDrawer(ctx, store, reconciliation.SaleRevenue(sale))
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to record sale", slog.String("sale_id", sale.ID))
		return nil, nil, fmt.Errorf("failed to record sale: %w", err)
	}

	s.metrics.RecordSale(string(sale.Currency), sale.IsDebt)
	s.warnOnSuspiciousPrices(ctx, sale)
	s.LogInfo(ctx, "Sale recorded",
		slog.String("sale_id", sale.ID),
		slog.String("currency", string(sale.Currency)),
		slog.String("total", sale.Total.String()),
		slog.Bool("is_debt", sale.IsDebt))
	s.publish(ctx, domain.NewLedgerEvent(domain.EventSaleRecorded, domain.KindSale, sale.ID, dto.ToSaleResponse(&sale, debt)))
	return &sale, debt, nil
}

// GetSale returns a sale and, for credit sales, its debt.
func (s *saleService) GetSale(ctx context.Context, saleID string) (*domain.Sale, *domain.Debt, error) {
	var sale *domain.Sale
	var debt *domain.Debt
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		var err error
		if sale, err = store.LoadSale(ctx, saleID); err != nil {
			return err
		}
		if !sale.IsDebt {
			return nil
		}
		debt, err = store.LoadDebtBySale(ctx, saleID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return sale, debt, nil
}

// ComputeProfit returns the profit of a sale at its frozen rate.
func (s *saleService) ComputeProfit(ctx context.Context, saleID string) (domain.ProfitResult, error) {
	sale, _, err := s.GetSale(ctx, saleID)
	if err != nil {
		return domain.ProfitResult{}, err
	}
	result, err := reconciliation.SaleProfit(*sale)
	if err != nil {
		s.logFailure(ctx, err, "Failed to compute sale profit", slog.String("sale_id", saleID))
		return domain.ProfitResult{}, fmt.Errorf("failed to compute profit of sale %s: %w", saleID, err)
	}
	s.logProfitWarnings(ctx, saleID, result.Warnings)
	return result, nil
}

func (s *saleService) warnOnSuspiciousPrices(ctx context.Context, sale domain.Sale) {
	result, err := reconciliation.SaleProfit(sale)
	if err != nil {
		return
	}
	s.logProfitWarnings(ctx, sale.ID, result.Warnings)
}

func (s *saleService) logProfitWarnings(ctx context.Context, saleID string, warnings []domain.ProfitWarning) {
	for _, w := range warnings {
		s.LogWarn(ctx, "Line contributes no profit because of a zero price",
			slog.String("sale_id", saleID),
			slog.String("code", string(w.Code)),
			slog.String("item_id", w.ItemID),
			slog.String("item_ref", w.ItemRef),
			slog.Int("quantity", w.Quantity))
	}
}

// adjustDrawer applies a per-currency movement to the cash balance. Zero sides are skipped.
func adjustDrawer(ctx context.Context, store portsrepo.Store, delta domain.BalanceDelta) error {
	for _, c := range domain.Currencies {
		amount := delta.Get(c)
		if amount.IsZero() {
			continue
		}
		if _, err := store.AdjustBalance(ctx, c, amount); err != nil {
			return err
		}
	}
	return nil
}
