package reconciliation

import (
	"fmt"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SaleLineRefund is qty units of a line at its net unit selling price, valued in the
// sale currency at the sale's frozen rate.
func SaleLineRefund(item domain.LineItem, qty int, sale domain.Sale) (decimal.Decimal, error) {
	unit, err := Convert(item.NetSellingPrice(), item.ProductCurrency, sale.Currency, sale.Rate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("convert selling price of %s: %w", item.ItemRef, err)
	}
	return unit.Mul(decimal.NewFromInt(int64(qty))), nil
}

// SaleItemRefund is the refund for returning qty units of one line, capped at what is
// still charged on the sale so a discounted sale never pays out more than it took in.
func SaleItemRefund(item domain.LineItem, qty int, sale domain.Sale) (decimal.Decimal, error) {
	refund, err := SaleLineRefund(item, qty, sale)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Min(refund, decimal.Max(sale.Total, decimal.Zero)), nil
}

// WholeSaleRefund sums every line's refund, capped at the amount actually charged.
func WholeSaleRefund(sale domain.Sale) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range sale.Items {
		r, err := SaleLineRefund(item, item.Quantity, sale)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(r)
	}
	return decimal.Min(total, sale.Total), nil
}

// PurchaseLineRefund is qty units of a line at its buying price, in the purchase currency.
func PurchaseLineRefund(item domain.LineItem, qty int, entry domain.BuyingHistoryEntry) (decimal.Decimal, error) {
	unit, err := Convert(item.BuyingPrice, item.ProductCurrency, entry.Currency, entry.Rate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("convert buying price of %s: %w", item.ItemRef, err)
	}
	return unit.Mul(decimal.NewFromInt(int64(qty))), nil
}

// WholePurchaseRefund sums every line's refund, capped at the purchase total. A purchase
// recorded without items refunds its total.
func WholePurchaseRefund(entry domain.BuyingHistoryEntry) (decimal.Decimal, error) {
	if len(entry.Items) == 0 {
		return entry.Total, nil
	}
	total := decimal.Zero
	for _, item := range entry.Items {
		r, err := PurchaseLineRefund(item, item.Quantity, entry)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(r)
	}
	return decimal.Min(total, entry.Total), nil
}

// RefundAllocation says where a sale refund goes.
type RefundAllocation struct {
	// DebtOffset is the part of the refund that cancels outstanding debt, in the sale currency.
	DebtOffset decimal.Decimal
	// Cash is paid out of the drawer, per currency.
	Cash domain.BalanceDelta
}

// AllocateCashSaleRefund splits a refund of a paid sale across the drawer. A blended
// tender is refunded in the ratio it was received.
func AllocateCashSaleRefund(sale domain.Sale, refund decimal.Decimal) (RefundAllocation, error) {
	alloc := RefundAllocation{DebtOffset: decimal.Zero}
	if sale.Split == nil {
		alloc.Cash.Add(sale.Currency, refund)
		return alloc, nil
	}
	received, err := valueIn(sale.Split.USDAmount, sale.Split.IQDAmount, sale.Currency, sale.Rate)
	if err != nil {
		return alloc, err
	}
	if !received.IsPositive() {
		alloc.Cash.Add(sale.Currency, refund)
		return alloc, nil
	}
	fraction := decimal.Min(refund.Div(received), decimal.NewFromInt(1))
	alloc.Cash.USD = sale.Split.USDAmount.Mul(fraction)
	alloc.Cash.IQD = sale.Split.IQDAmount.Mul(fraction)
	return alloc, nil
}

// AllocateCreditSaleRefund splits a refund of a credit sale. The refund first cancels
// the outstanding debt; only the excess is paid back, and never more than was collected.
// The cash part is taken from each collected currency in proportion, so the debt's
// cumulative payments can be reduced by exactly the same amounts.
//
// outstanding is the debt's remaining balance in the sale currency and rate is the rate
// used to value collected payments. When whole is set everything collected is refunded.
func AllocateCreditSaleRefund(refund, outstanding decimal.Decimal, saleCurrency domain.Currency, payments domain.PaymentState, rate domain.ExchangeRate, whole bool) (RefundAllocation, error) {
	if refund.IsNegative() || outstanding.IsNegative() {
		return RefundAllocation{}, fmt.Errorf("%w: refund and outstanding must not be negative", apperrors.ErrInvalidAmount)
	}
	alloc := RefundAllocation{DebtOffset: decimal.Min(refund, outstanding)}
	if whole {
		alloc.Cash.USD = payments.PaymentUSDAmount
		alloc.Cash.IQD = payments.PaymentIQDAmount
		return alloc, nil
	}

	excess := refund.Sub(alloc.DebtOffset)
	if !excess.IsPositive() || !payments.HasPayments() {
		return alloc, nil
	}
	collected, err := valueIn(payments.PaymentUSDAmount, payments.PaymentIQDAmount, saleCurrency, rate)
	if err != nil {
		return alloc, err
	}
	if !collected.IsPositive() {
		return alloc, nil
	}
	fraction := decimal.Min(excess.Div(collected), decimal.NewFromInt(1))
	alloc.Cash.USD = payments.PaymentUSDAmount.Mul(fraction)
	alloc.Cash.IQD = payments.PaymentIQDAmount.Mul(fraction)
	return alloc, nil
}
