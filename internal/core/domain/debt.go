package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/shopspring/decimal"
)

// PaymentState is the cumulative payment bookkeeping shared by every debt kind.
// The rate fields hold the rate in effect at the time of the last payment.
type PaymentState struct {
	PaymentUSDAmount            decimal.Decimal `json:"paymentUsdAmount"`
	PaymentIQDAmount            decimal.Decimal `json:"paymentIqdAmount"`
	PaymentExchangeRateUSDToIQD decimal.Decimal `json:"paymentExchangeRateUsdToIqd"`
	PaymentExchangeRateIQDToUSD decimal.Decimal `json:"paymentExchangeRateIqdToUsd"`
	PaidAt                      *time.Time      `json:"paidAt,omitempty"`
}

// HasPayments reports whether any payment was ever recorded.
func (p PaymentState) HasPayments() bool {
	return !p.PaymentUSDAmount.IsZero() || !p.PaymentIQDAmount.IsZero()
}

// Settled reports whether the record reached its terminal state.
func (p PaymentState) Settled() bool {
	return p.PaidAt != nil
}

// Paid returns the cumulative payment in c.
func (p PaymentState) Paid(c Currency) decimal.Decimal {
	if c == USD {
		return p.PaymentUSDAmount
	}
	return p.PaymentIQDAmount
}

// LastPaymentRate returns the rate stored with the last payment, if any.
func (p PaymentState) LastPaymentRate() (ExchangeRate, bool) {
	if !p.PaymentExchangeRateUSDToIQD.IsPositive() {
		return ExchangeRate{}, false
	}
	rate := ExchangeRate{USDToIQD: p.PaymentExchangeRateUSDToIQD, IQDToUSD: p.PaymentExchangeRateIQDToUSD}
	if !rate.IQDToUSD.IsPositive() {
		rate.IQDToUSD = decimal.NewFromInt(1).Div(rate.USDToIQD)
	}
	return rate, true
}

// Debt is the customer side of a sale on credit. Exactly one exists per credit sale.
type Debt struct {
	ID     string `json:"id"`
	SaleID string `json:"saleId"`
	PaymentState
	AuditFields
}

// CompanyDebt is money tracked against a supplier, either in one currency or per currency.
type CompanyDebt struct {
	ID          string          `json:"id"`
	CompanyName string          `json:"companyName"`
	Currency    DebtCurrency    `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	USDAmount   decimal.Decimal `json:"usdAmount"`
	IQDAmount   decimal.Decimal `json:"iqdAmount"`
	Items       []LineItem      `json:"items,omitempty"`
	PaymentState
	AuditFields
}

// Validate checks the ingestion rules for a company debt.
func (d CompanyDebt) Validate() error {
	if d.CompanyName == "" {
		return fmt.Errorf("%w: company name is required", apperrors.ErrValidation)
	}
	switch d.Currency {
	case DebtUSD, DebtIQD:
		if !d.Amount.IsPositive() {
			return fmt.Errorf("%w: company debt amount must be positive", apperrors.ErrValidation)
		}
	case DebtMulti:
		if d.USDAmount.IsNegative() || d.IQDAmount.IsNegative() || (d.USDAmount.IsZero() && d.IQDAmount.IsZero()) {
			return fmt.Errorf("%w: dual-currency company debt needs non-negative amounts, at least one positive", apperrors.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: company debt currency is required", apperrors.ErrValidation)
	}
	for _, item := range d.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Position projects the company debt onto the ledger view.
func (d CompanyDebt) Position() DebtPosition {
	pos := DebtPosition{Kind: KindCompanyDebt, ID: d.ID, Denomination: d.Currency, PaymentState: d.PaymentState}
	switch d.Currency {
	case DebtUSD:
		pos.OriginalUSD = d.Amount
	case DebtIQD:
		pos.OriginalIQD = d.Amount
	default:
		pos.OriginalUSD = d.USDAmount
		pos.OriginalIQD = d.IQDAmount
	}
	return pos
}

// Clone returns a deep copy.
func (d CompanyDebt) Clone() CompanyDebt {
	out := d
	out.Items = cloneItems(d.Items)
	out.PaidAt = cloneTime(d.PaidAt)
	return out
}

// PersonalLoan is a dual-currency loan to or from a person.
type PersonalLoan struct {
	ID         string          `json:"id"`
	PersonName string          `json:"personName"`
	USDAmount  decimal.Decimal `json:"usdAmount"`
	IQDAmount  decimal.Decimal `json:"iqdAmount"`
	Notes      string          `json:"notes,omitempty"`
	PaymentState
	AuditFields
}

// Validate checks the ingestion rules for a personal loan.
func (l PersonalLoan) Validate() error {
	if l.PersonName == "" {
		return fmt.Errorf("%w: person name is required", apperrors.ErrValidation)
	}
	if l.USDAmount.IsNegative() || l.IQDAmount.IsNegative() || (l.USDAmount.IsZero() && l.IQDAmount.IsZero()) {
		return fmt.Errorf("%w: loan needs non-negative amounts, at least one positive", apperrors.ErrValidation)
	}
	return nil
}

// Position projects the loan onto the ledger view.
func (l PersonalLoan) Position() DebtPosition {
	return DebtPosition{
		Kind:         KindPersonalLoan,
		ID:           l.ID,
		Denomination: DebtMulti,
		OriginalUSD:  l.USDAmount,
		OriginalIQD:  l.IQDAmount,
		PaymentState: l.PaymentState,
	}
}

// DebtPosition is the normalized view of any debt: what was owed and what was paid.
// Single-currency debts carry their original amount on their own side only.
type DebtPosition struct {
	Kind         RecordKind
	ID           string
	Denomination DebtCurrency
	OriginalUSD  decimal.Decimal
	OriginalIQD  decimal.Decimal
	PaymentState
}

// CustomerDebtPosition projects a customer debt and its sale onto the ledger view.
func CustomerDebtPosition(debt Debt, sale Sale) DebtPosition {
	pos := DebtPosition{
		Kind:         KindCustomerDebt,
		ID:           debt.ID,
		Denomination: DebtCurrencyOf(sale.Currency),
		PaymentState: debt.PaymentState,
	}
	if sale.Currency == USD {
		pos.OriginalUSD = sale.Total
	} else {
		pos.OriginalIQD = sale.Total
	}
	return pos
}

// Original returns the amount originally owed in c.
func (p DebtPosition) Original(c Currency) decimal.Decimal {
	if c == USD {
		return p.OriginalUSD
	}
	return p.OriginalIQD
}

// Remaining is what is still owed on a debt. For single-currency debts only the
// denomination's side is non-zero.
type Remaining struct {
	Denomination DebtCurrency    `json:"denomination"`
	USD          decimal.Decimal `json:"usd"`
	IQD          decimal.Decimal `json:"iqd"`
}

// IsZero reports whether nothing is owed.
func (r Remaining) IsZero() bool {
	return r.USD.IsZero() && r.IQD.IsZero()
}

// Amount returns the remaining amount in c.
func (r Remaining) Amount(c Currency) decimal.Decimal {
	if c == USD {
		return r.USD
	}
	return r.IQD
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// OutstandingDebt is one line of a debt listing.
type OutstandingDebt struct {
	Kind         RecordKind `json:"kind"`
	ID           string     `json:"id"`
	Counterparty string     `json:"counterparty"`
	Remaining    Remaining  `json:"remaining"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
}
