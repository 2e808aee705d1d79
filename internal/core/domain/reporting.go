package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfitWarningCode classifies a likely data-entry problem found while computing profit.
type ProfitWarningCode string

const (
	WarnZeroSellingPrice ProfitWarningCode = "ZERO_SELLING_PRICE"
	WarnZeroBuyingPrice  ProfitWarningCode = "ZERO_BUYING_PRICE"
)

// ProfitWarning flags a line whose prices look wrong. It never fails the computation.
type ProfitWarning struct {
	Code     ProfitWarningCode `json:"code"`
	ItemID   string            `json:"itemId"`
	ItemRef  string            `json:"itemRef"`
	Quantity int               `json:"quantity"`
}

// ProfitResult is the profit of a sale in its own currency, plus the per-currency
// realization used by the aggregates.
type ProfitResult struct {
	SaleID   string          `json:"saleId"`
	Currency Currency        `json:"currency"`
	Total    decimal.Decimal `json:"total"`
	USD      decimal.Decimal `json:"usd"`
	IQD      decimal.Decimal `json:"iqd"`
	Warnings []ProfitWarning `json:"warnings,omitempty"`
}

// StockShortfall reports units that could not be moved in or out of inventory.
type StockShortfall struct {
	ItemRef   string `json:"itemRef"`
	Requested int    `json:"requested"`
	Actual    int    `json:"actual"`
}

// Missing is the number of units not moved.
func (s StockShortfall) Missing() int {
	return s.Requested - s.Actual
}

// ReturnResult is the outcome of a whole or line-item return.
type ReturnResult struct {
	RecordKind       RecordKind       `json:"recordKind"`
	RecordID         string           `json:"recordId"`
	ItemID           string           `json:"itemId,omitempty"`
	ReturnedQuantity int              `json:"returnedQuantity"`
	Refund           decimal.Decimal  `json:"refund"`
	RefundCurrency   Currency         `json:"refundCurrency"`
	DebtOffset       decimal.Decimal  `json:"debtOffset"`
	CashRefund       BalanceDelta     `json:"cashRefund"`
	Shortfalls       []StockShortfall `json:"shortfalls,omitempty"`
	RecordDeleted    bool             `json:"recordDeleted"`
}

// ReturnRecord is the stored trace of one processed return.
type ReturnRecord struct {
	ID             string          `json:"id"`
	RecordKind     RecordKind      `json:"recordKind"`
	RecordID       string          `json:"recordId"`
	ItemID         string          `json:"itemId,omitempty"`
	Quantity       int             `json:"quantity"`
	Refund         decimal.Decimal `json:"refund"`
	RefundCurrency Currency        `json:"refundCurrency"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// CurrencyTotals holds one currency's slice of an aggregate report.
type CurrencyTotals struct {
	Revenue                 decimal.Decimal `json:"revenue"`
	Cost                    decimal.Decimal `json:"cost"`
	Profit                  decimal.Decimal `json:"profit"`
	Refunds                 decimal.Decimal `json:"refunds"`
	OutstandingCustomerDebt decimal.Decimal `json:"outstandingCustomerDebt"`
	OutstandingCompanyDebt  decimal.Decimal `json:"outstandingCompanyDebt"`
	OutstandingLoans        decimal.Decimal `json:"outstandingLoans"`
	PurchaseSpend           decimal.Decimal `json:"purchaseSpend"`
	CashBalance             decimal.Decimal `json:"cashBalance"`
}

// AggregateReport is the time-windowed rollup built from committed records.
type AggregateReport struct {
	From          time.Time                   `json:"from"`
	To            time.Time                   `json:"to"`
	SaleCount     int                         `json:"saleCount"`
	DebtSaleCount int                         `json:"debtSaleCount"`
	PurchaseCount int                         `json:"purchaseCount"`
	ReturnCount   int                         `json:"returnCount"`
	Totals        map[Currency]CurrencyTotals `json:"totals"`
	Warnings      []ProfitWarning             `json:"warnings,omitempty"`
}
