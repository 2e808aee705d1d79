package dto

import (
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePurchaseRequest defines the structure for recording a completed purchase.
type CreatePurchaseRequest struct {
	ID           string            `json:"id,omitempty"`
	SupplierName string            `json:"supplierName" binding:"required"`
	Currency     string            `json:"currency" binding:"required,currency"`
	Total        decimal.Decimal   `json:"total" binding:"gt=0"`
	Items        []LineItemRequest `json:"items,omitempty" binding:"omitempty,dive"`
	CreatedAt    *time.Time        `json:"createdAt,omitempty"`
}

// ReturnItemRequest names how many units of a line come back.
type ReturnItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// SetStockRequest replaces an item's stock level.
type SetStockRequest struct {
	OnHand   int `json:"onHand" binding:"gte=0"`
	MaxStock int `json:"maxStock" binding:"gte=0"`
}

// ReturnResponse is the outcome of a return.
type ReturnResponse struct {
	RecordKind       domain.RecordKind       `json:"recordKind"`
	RecordID         string                  `json:"recordId"`
	ItemID           string                  `json:"itemId,omitempty"`
	ReturnedQuantity int                     `json:"returnedQuantity"`
	Refund           decimal.Decimal         `json:"refund"`
	RefundCurrency   domain.Currency         `json:"refundCurrency"`
	DebtOffset       decimal.Decimal         `json:"debtOffset"`
	CashRefundUSD    decimal.Decimal         `json:"cashRefundUsd"`
	CashRefundIQD    decimal.Decimal         `json:"cashRefundIqd"`
	Shortfalls       []domain.StockShortfall `json:"shortfalls,omitempty"`
	RecordDeleted    bool                    `json:"recordDeleted"`
}

// ToReturnResponse converts a domain.ReturnResult.
func ToReturnResponse(r domain.ReturnResult) ReturnResponse {
	return ReturnResponse{
		RecordKind:       r.RecordKind,
		RecordID:         r.RecordID,
		ItemID:           r.ItemID,
		ReturnedQuantity: r.ReturnedQuantity,
		Refund:           r.Refund,
		RefundCurrency:   r.RefundCurrency,
		DebtOffset:       r.DebtOffset,
		CashRefundUSD:    r.CashRefund.USD,
		CashRefundIQD:    r.CashRefund.IQD,
		Shortfalls:       r.Shortfalls,
		RecordDeleted:    r.RecordDeleted,
	}
}

// BalanceResponse is the cash drawer.
type BalanceResponse struct {
	USDBalance decimal.Decimal `json:"usdBalance"`
	IQDBalance decimal.Decimal `json:"iqdBalance"`
}

// ToBalanceResponse converts a domain.Balance.
func ToBalanceResponse(b domain.Balance) BalanceResponse {
	return BalanceResponse{USDBalance: b.USDBalance, IQDBalance: b.IQDBalance}
}

// PurchaseResponse defines the structure for API responses containing a purchase.
type PurchaseResponse struct {
	ID           string               `json:"id"`
	SupplierName string               `json:"supplierName"`
	Currency     domain.Currency      `json:"currency"`
	Total        decimal.Decimal      `json:"total"`
	Rate         ExchangeRateResponse `json:"rate"`
	Items        []domain.LineItem    `json:"items,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
}

// ToPurchaseResponse converts a domain.BuyingHistoryEntry.
func ToPurchaseResponse(p *domain.BuyingHistoryEntry) PurchaseResponse {
	return PurchaseResponse{
		ID:           p.ID,
		SupplierName: p.SupplierName,
		Currency:     p.Currency,
		Total:        p.Total,
		Rate:         ToExchangeRateResponse(p.Rate),
		Items:        p.Items,
		CreatedAt:    p.CreatedAt,
	}
}

// StockResponse is the inventory level of one item.
type StockResponse struct {
	ItemRef  string `json:"itemRef"`
	OnHand   int    `json:"onHand"`
	MaxStock int    `json:"maxStock"`
}

// ToStockResponse converts a domain.StockLevel.
func ToStockResponse(s domain.StockLevel) StockResponse {
	return StockResponse{ItemRef: s.ItemRef, OnHand: s.OnHand, MaxStock: s.MaxStock}
}

// AggregateReportResponse is the per-currency report for a time window.
type AggregateReportResponse struct {
	From          time.Time                                 `json:"from"`
	To            time.Time                                 `json:"to"`
	SaleCount     int                                       `json:"saleCount"`
	DebtSaleCount int                                       `json:"debtSaleCount"`
	PurchaseCount int                                       `json:"purchaseCount"`
	ReturnCount   int                                       `json:"returnCount"`
	Totals        map[domain.Currency]domain.CurrencyTotals `json:"totals"`
	Warnings      []domain.ProfitWarning                    `json:"warnings,omitempty"`
}

// ToAggregateReportResponse converts a domain.AggregateReport.
func ToAggregateReportResponse(r *domain.AggregateReport) AggregateReportResponse {
	return AggregateReportResponse{
		From:          r.From,
		To:            r.To,
		SaleCount:     r.SaleCount,
		DebtSaleCount: r.DebtSaleCount,
		PurchaseCount: r.PurchaseCount,
		ReturnCount:   r.ReturnCount,
		Totals:        r.Totals,
		Warnings:      r.Warnings,
	}
}
