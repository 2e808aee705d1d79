package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/core/reconciliation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	scopeWhole = "whole"
	scopeItem  = "item"
)

// returnService reverses sales and purchases, in whole or one line at a time.
type returnService struct {
	BaseService
}

// NewReturnService creates a new ReturnService.
func NewReturnService(base BaseService) portssvc.ReturnSvcFacade {
	return &returnService{BaseService: base}
}

// Ensure returnService implements the portssvc.ReturnSvcFacade interface
var _ portssvc.ReturnSvcFacade = (*returnService)(nil)

// creditState is the debt of a credit sale valued under the customer rate policy.
type creditState struct {
	debt        *domain.Debt
	rate        domain.ExchangeRate
	outstanding decimal.Decimal
}

func loadCreditState(ctx context.Context, store portsrepo.Store, sale domain.Sale) (*creditState, error) {
	debt, err := store.LoadDebtBySale(ctx, sale.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rate, err := reconciliation.RateForCustomerDebt(*debt, sale)
	if err != nil {
		return nil, err
	}
	remaining, err := reconciliation.Remaining(domain.CustomerDebtPosition(*debt, sale), rate)
	if err != nil {
		return nil, err
	}
	outstanding, err := reconciliation.RemainingIn(remaining, sale.Currency, rate)
	if err != nil {
		return nil, err
	}
	return &creditState{debt: debt, rate: rate, outstanding: outstanding}, nil
}

// ReturnSale takes a whole sale back: stock is restored, the refund leaves the drawer
// and the sale (with its debt) is deleted.
func (s *returnService) ReturnSale(ctx context.Context, saleID string) (domain.ReturnResult, error) {
	result := domain.ReturnResult{RecordKind: domain.KindSale, RecordID: saleID}
	err := s.mutate(ctx, "return_sale", []string{domain.LockKey(domain.KindSale, saleID)}, s.logged(&result, func(ctx context.Context, store portsrepo.Store) error {
		sale, err := store.LoadSale(ctx, saleID)
		if err != nil {
			return err
		}
		refund, err := reconciliation.WholeSaleRefund(*sale)
		if err != nil {
			return err
		}

		var alloc reconciliation.RefundAllocation
		var credit *creditState
		if sale.IsDebt {
			if credit, err = loadCreditState(ctx, store, *sale); err != nil {
				return err
			}
		}
		if credit != nil {
			alloc, err = reconciliation.AllocateCreditSaleRefund(refund, credit.outstanding, sale.Currency, credit.debt.PaymentState, credit.rate, true)
		} else {
			alloc, err = reconciliation.AllocateCashSaleRefund(*sale, refund)
		}
		if err != nil {
			return err
		}

		// The drawer is checked first so an insufficient balance rejects the return
		// before any record changes.
		if err := adjustDrawer(ctx, store, alloc.Cash.Neg()); err != nil {
			return err
		}

		returned := 0
		for _, item := range sale.Items {
			restored, err := store.RestoreStock(ctx, item.ItemRef, item.Quantity)
			if err != nil {
				return err
			}
			if restored < item.Quantity {
				result.Shortfalls = append(result.Shortfalls, domain.StockShortfall{ItemRef: item.ItemRef, Requested: item.Quantity, Actual: restored})
			}
			returned += item.Quantity
		}

		if credit != nil {
			if err := store.DeleteDebt(ctx, credit.debt.ID); err != nil {
				return err
			}
		}
		if err := store.DeleteSale(ctx, saleID); err != nil {
			return err
		}

		result.ReturnedQuantity = returned
		result.Refund = refund
		result.RefundCurrency = sale.Currency
		result.DebtOffset = alloc.DebtOffset
		result.CashRefund = alloc.Cash
		result.RecordDeleted = true
		return nil
	}))
	return s.finishReturn(ctx, result, scopeWhole, err)
}

// ReturnSaleItem takes quantity units of one line back. The returned quantity is
// clamped to what inventory accepted and the refund is computed from that quantity
// alone. For credit sales the refund first reduces the outstanding debt.
func (s *returnService) ReturnSaleItem(ctx context.Context, saleID, itemID string, quantity int) (domain.ReturnResult, error) {
	result := domain.ReturnResult{RecordKind: domain.KindSale, RecordID: saleID, ItemID: itemID}
	if quantity <= 0 {
		return result, fmt.Errorf("%w: return quantity must be positive, got %d", apperrors.ErrInvalidQuantity, quantity)
	}

	err := s.mutate(ctx, "return_sale_item", []string{domain.LockKey(domain.KindSale, saleID)}, s.logged(&result, func(ctx context.Context, store portsrepo.Store) error {
		sale, err := store.LoadSale(ctx, saleID)
		if err != nil {
			return err
		}
		idx := sale.ItemIndex(itemID)
		if idx < 0 {
			return fmt.Errorf("%w: line %s is not on sale %s or was already returned", apperrors.ErrQuantityExceedsAvailable, itemID, saleID)
		}
		item := sale.Items[idx]
		if quantity > item.Quantity {
			return fmt.Errorf("%w: line %s has %d units, %d requested", apperrors.ErrQuantityExceedsAvailable, itemID, item.Quantity, quantity)
		}

		result.RefundCurrency = sale.Currency
		result.Refund = decimal.Zero
		result.DebtOffset = decimal.Zero

		var credit *creditState
		if sale.IsDebt {
			if credit, err = loadCreditState(ctx, store, *sale); err != nil {
				return err
			}
		}

		restored, err := store.RestoreStock(ctx, item.ItemRef, quantity)
		if err != nil {
			return err
		}
		if restored < quantity {
			result.Shortfalls = append(result.Shortfalls, domain.StockShortfall{ItemRef: item.ItemRef, Requested: quantity, Actual: restored})
		}
		result.ReturnedQuantity = restored
		if restored == 0 {
			return nil
		}

		refund, err := reconciliation.SaleItemRefund(item, restored, *sale)
		if err != nil {
			return err
		}

		var alloc reconciliation.RefundAllocation
		if credit != nil {
			alloc, err = reconciliation.AllocateCreditSaleRefund(refund, credit.outstanding, sale.Currency, credit.debt.PaymentState, credit.rate, false)
		} else {
			alloc, err = reconciliation.AllocateCashSaleRefund(*sale, refund)
		}
		if err != nil {
			return err
		}
		if err := adjustDrawer(ctx, store, alloc.Cash.Neg()); err != nil {
			return err
		}

		now := s.now()
		if sale.Split != nil && credit == nil {
			sale.Split.USDAmount = clampNonNegative(sale.Split.USDAmount.Sub(alloc.Cash.USD))
			sale.Split.IQDAmount = clampNonNegative(sale.Split.IQDAmount.Sub(alloc.Cash.IQD))
		}
		sale.Total = clampNonNegative(sale.Total.Sub(refund))
		sale.Items[idx].Quantity -= restored
		if sale.Items[idx].Quantity == 0 {
			sale.Items = append(sale.Items[:idx], sale.Items[idx+1:]...)
		}
		sale.LastUpdatedAt = now

		result.Refund = refund
		result.DebtOffset = alloc.DebtOffset
		result.CashRefund = alloc.Cash

		if len(sale.Items) == 0 {
			result.RecordDeleted = true
			if credit != nil {
				if err := store.DeleteDebt(ctx, credit.debt.ID); err != nil {
					return err
				}
			}
			return store.DeleteSale(ctx, saleID)
		}

		if err := store.SaveSale(ctx, *sale); err != nil {
			return err
		}
		if credit == nil {
			return nil
		}
		return s.rebalanceDebt(ctx, store, *sale, credit, alloc, now)
	}))
	return s.finishReturn(ctx, result, scopeItem, err)
}

// rebalanceDebt takes the cash refund out of the debt's collected payments. The sale
// total already dropped by the whole refund, so the remaining balance stays non-negative;
// a debt left with nothing owed is settled.
func (s *returnService) rebalanceDebt(ctx context.Context, store portsrepo.Store, sale domain.Sale, credit *creditState, alloc reconciliation.RefundAllocation, now time.Time) error {
	debt := credit.debt
	debt.PaymentUSDAmount = clampNonNegative(debt.PaymentUSDAmount.Sub(alloc.Cash.USD))
	debt.PaymentIQDAmount = clampNonNegative(debt.PaymentIQDAmount.Sub(alloc.Cash.IQD))
	debt.LastUpdatedAt = now
	if !debt.Settled() {
		remaining, err := reconciliation.Remaining(domain.CustomerDebtPosition(*debt, sale), credit.rate)
		if err != nil {
			return err
		}
		if remaining.IsZero() && debt.HasPayments() {
			paidAt := now
			debt.PaidAt = &paidAt
		}
	}
	return store.SaveDebt(ctx, *debt)
}

// ReturnPurchase sends a whole purchase back to its supplier: stock is removed and the
// supplier refund enters the drawer.
func (s *returnService) ReturnPurchase(ctx context.Context, purchaseID string) (domain.ReturnResult, error) {
	result := domain.ReturnResult{RecordKind: domain.KindPurchase, RecordID: purchaseID}
	err := s.mutate(ctx, "return_purchase", []string{domain.LockKey(domain.KindPurchase, purchaseID)}, s.logged(&result, func(ctx context.Context, store portsrepo.Store) error {
		entry, err := store.LoadBuyingHistoryEntry(ctx, purchaseID)
		if err != nil {
			return err
		}
		refund, err := reconciliation.WholePurchaseRefund(*entry)
		if err != nil {
			return err
		}

		for _, item := range entry.Items {
			removed, err := store.RemoveStock(ctx, item.ItemRef, item.Quantity)
			if err != nil {
				return err
			}
			if removed < item.Quantity {
				result.Shortfalls = append(result.Shortfalls, domain.StockShortfall{ItemRef: item.ItemRef, Requested: item.Quantity, Actual: removed})
			}
			result.ReturnedQuantity += removed
		}

		var cash domain.BalanceDelta
		cash.Add(entry.Currency, refund)
		if err := adjustDrawer(ctx, store, cash); err != nil {
			return err
		}
		if err := store.DeleteBuyingHistoryEntry(ctx, purchaseID); err != nil {
			return err
		}

		result.Refund = refund
		result.RefundCurrency = entry.Currency
		result.DebtOffset = decimal.Zero
		result.CashRefund = cash
		result.RecordDeleted = true
		return nil
	}))
	return s.finishReturn(ctx, result, scopeWhole, err)
}

// ReturnPurchaseItem sends quantity units of one purchased line back, clamped to what
// is still on hand.
func (s *returnService) ReturnPurchaseItem(ctx context.Context, purchaseID, itemID string, quantity int) (domain.ReturnResult, error) {
	result := domain.ReturnResult{RecordKind: domain.KindPurchase, RecordID: purchaseID, ItemID: itemID}
	if quantity <= 0 {
		return result, fmt.Errorf("%w: return quantity must be positive, got %d", apperrors.ErrInvalidQuantity, quantity)
	}

	err := s.mutate(ctx, "return_purchase_item", []string{domain.LockKey(domain.KindPurchase, purchaseID)}, s.logged(&result, func(ctx context.Context, store portsrepo.Store) error {
		entry, err := store.LoadBuyingHistoryEntry(ctx, purchaseID)
		if err != nil {
			return err
		}
		idx := entry.ItemIndex(itemID)
		if idx < 0 {
			return fmt.Errorf("%w: line %s is not on purchase %s or was already returned", apperrors.ErrQuantityExceedsAvailable, itemID, purchaseID)
		}
		item := entry.Items[idx]
		if quantity > item.Quantity {
			return fmt.Errorf("%w: line %s has %d units, %d requested", apperrors.ErrQuantityExceedsAvailable, itemID, item.Quantity, quantity)
		}

		result.RefundCurrency = entry.Currency
		result.Refund = decimal.Zero
		result.DebtOffset = decimal.Zero

		removed, err := store.RemoveStock(ctx, item.ItemRef, quantity)
		if err != nil {
			return err
		}
		if removed < quantity {
			result.Shortfalls = append(result.Shortfalls, domain.StockShortfall{ItemRef: item.ItemRef, Requested: quantity, Actual: removed})
		}
		result.ReturnedQuantity = removed
		if removed == 0 {
			return nil
		}

		refund, err := reconciliation.PurchaseLineRefund(item, removed, *entry)
		if err != nil {
			return err
		}
		refund = decimal.Min(refund, entry.Total)
		var cash domain.BalanceDelta
		cash.Add(entry.Currency, refund)
		if err := adjustDrawer(ctx, store, cash); err != nil {
			return err
		}

		entry.Total = clampNonNegative(entry.Total.Sub(refund))
		entry.Items[idx].Quantity -= removed
		if entry.Items[idx].Quantity == 0 {
			entry.Items = append(entry.Items[:idx], entry.Items[idx+1:]...)
		}
		entry.LastUpdatedAt = s.now()

		result.Refund = refund
		result.CashRefund = cash

		if len(entry.Items) == 0 || entry.Total.IsZero() {
			result.RecordDeleted = true
			return store.DeleteBuyingHistoryEntry(ctx, purchaseID)
		}
		return store.SaveBuyingHistoryEntry(ctx, *entry)
	}))
	return s.finishReturn(ctx, result, scopeItem, err)
}

// logged appends a ReturnRecord in the same unit of work once fn has moved anything.
func (s *returnService) logged(result *domain.ReturnResult, fn func(ctx context.Context, store portsrepo.Store) error) func(ctx context.Context, store portsrepo.Store) error {
	return func(ctx context.Context, store portsrepo.Store) error {
		if err := fn(ctx, store); err != nil {
			return err
		}
		if result.ReturnedQuantity == 0 && result.Refund.IsZero() {
			return nil
		}
		return store.AppendReturn(ctx, domain.ReturnRecord{
			ID:             uuid.NewString(),
			RecordKind:     result.RecordKind,
			RecordID:       result.RecordID,
			ItemID:         result.ItemID,
			Quantity:       result.ReturnedQuantity,
			Refund:         result.Refund,
			RefundCurrency: result.RefundCurrency,
			CreatedAt:      s.now(),
		})
	}
}

func (s *returnService) finishReturn(ctx context.Context, result domain.ReturnResult, scope string, err error) (domain.ReturnResult, error) {
	attrs := []any{
		slog.String("kind", string(result.RecordKind)),
		slog.String("record_id", result.RecordID),
		slog.String("scope", scope),
	}
	if err != nil {
		s.logFailure(ctx, err, "Failed to process return", attrs...)
		return domain.ReturnResult{}, fmt.Errorf("failed to return %s %s: %w", result.RecordKind, result.RecordID, err)
	}

	missing := 0
	for _, sf := range result.Shortfalls {
		missing += sf.Missing()
		s.LogWarn(ctx, "Inventory could not take the full return quantity",
			append(attrs, slog.String("item_ref", sf.ItemRef), slog.Int("requested", sf.Requested), slog.Int("actual", sf.Actual))...)
	}
	s.metrics.RecordReturn(string(result.RecordKind), scope, missing)
	s.LogInfo(ctx, "Return processed",
		append(attrs,
			slog.Int("returned_quantity", result.ReturnedQuantity),
			slog.String("refund", result.Refund.String()),
			slog.String("debt_offset", result.DebtOffset.String()),
			slog.Bool("record_deleted", result.RecordDeleted))...)
	s.publish(ctx, domain.NewLedgerEvent(domain.EventReturnProcessed, result.RecordKind, result.RecordID, result))
	return result, nil
}

func clampNonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
