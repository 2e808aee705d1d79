package dto

import (
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyPaymentRequest tenders an amount in either or both currencies against a debt.
// Sign checks are left to the engine so they surface as invalid-amount errors.
type ApplyPaymentRequest struct {
	USDAmount      decimal.Decimal `json:"usdAmount"`
	IQDAmount      decimal.Decimal `json:"iqdAmount"`
	ForcedCurrency *string         `json:"forcedCurrency,omitempty" binding:"omitempty,currency"`
}

// Tender converts the request amounts.
func (r ApplyPaymentRequest) Tender() domain.Tender {
	return domain.Tender{USD: r.USDAmount, IQD: r.IQDAmount}
}

// Forced parses the optional forced currency.
func (r ApplyPaymentRequest) Forced() (*domain.Currency, error) {
	if r.ForcedCurrency == nil || *r.ForcedCurrency == "" {
		return nil, nil
	}
	c, err := domain.ParseCurrency(*r.ForcedCurrency)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PaymentResponse is the outcome of applying a payment.
type PaymentResponse struct {
	PaymentID      string            `json:"paymentId"`
	AbsorbedUSD    decimal.Decimal   `json:"absorbedUsd"`
	AbsorbedIQD    decimal.Decimal   `json:"absorbedIqd"`
	OverpaymentUSD decimal.Decimal   `json:"overpaymentUsd"`
	OverpaymentIQD decimal.Decimal   `json:"overpaymentIqd"`
	NewRemaining   RemainingResponse `json:"newRemaining"`
	Settled        bool              `json:"settled"`
	PaidAt         *time.Time        `json:"paidAt,omitempty"`
}

// ToPaymentResponse converts a payment outcome and its audit record.
func ToPaymentResponse(out domain.PaymentOutcome, record domain.PaymentRecord) PaymentResponse {
	return PaymentResponse{
		PaymentID:      record.ID,
		AbsorbedUSD:    out.AbsorbedUSD,
		AbsorbedIQD:    out.AbsorbedIQD,
		OverpaymentUSD: out.OverpaymentUSD,
		OverpaymentIQD: out.OverpaymentIQD,
		NewRemaining:   ToRemainingResponse(out.Position.Kind, out.Position.ID, out.NewRemaining, out.Position.PaidAt),
		Settled:        out.Settled,
		PaidAt:         out.Position.PaidAt,
	}
}

// RemainingResponse is what is still owed on one debt.
type RemainingResponse struct {
	Kind         domain.RecordKind   `json:"kind"`
	ID           string              `json:"id"`
	Denomination domain.DebtCurrency `json:"denomination"`
	USD          decimal.Decimal     `json:"usd"`
	IQD          decimal.Decimal     `json:"iqd"`
	Settled      bool                `json:"settled"`
	PaidAt       *time.Time          `json:"paidAt,omitempty"`
}

// ToRemainingResponse converts a remaining balance.
func ToRemainingResponse(kind domain.RecordKind, id string, r domain.Remaining, paidAt *time.Time) RemainingResponse {
	return RemainingResponse{
		Kind:         kind,
		ID:           id,
		Denomination: r.Denomination,
		USD:          r.USD,
		IQD:          r.IQD,
		Settled:      paidAt != nil,
		PaidAt:       paidAt,
	}
}

// ToListRemainingResponse converts a list of outstanding debts.
func ToListRemainingResponse(entries []domain.OutstandingDebt) []RemainingResponse {
	out := make([]RemainingResponse, len(entries))
	for i, e := range entries {
		out[i] = ToRemainingResponse(e.Kind, e.ID, e.Remaining, e.PaidAt)
	}
	return out
}

// CreateCompanyDebtRequest defines the structure for recording a purchase on credit.
type CreateCompanyDebtRequest struct {
	CompanyName string            `json:"companyName" binding:"required"`
	Currency    string            `json:"currency" binding:"required,debtcurrency"`
	Amount      decimal.Decimal   `json:"amount" binding:"gte=0"`
	USDAmount   decimal.Decimal   `json:"usdAmount" binding:"gte=0"`
	IQDAmount   decimal.Decimal   `json:"iqdAmount" binding:"gte=0"`
	Items       []LineItemRequest `json:"items,omitempty" binding:"omitempty,dive"`
}

// CreatePersonalLoanRequest defines the structure for recording a personal loan.
type CreatePersonalLoanRequest struct {
	PersonName string          `json:"personName" binding:"required"`
	USDAmount  decimal.Decimal `json:"usdAmount" binding:"gte=0"`
	IQDAmount  decimal.Decimal `json:"iqdAmount" binding:"gte=0"`
	Notes      string          `json:"notes,omitempty"`
}

// PaymentRecordResponse is one entry of a debt's payment history.
type PaymentRecordResponse struct {
	ID             string               `json:"id"`
	AbsorbedUSD    decimal.Decimal      `json:"absorbedUsd"`
	AbsorbedIQD    decimal.Decimal      `json:"absorbedIqd"`
	OverpaymentUSD decimal.Decimal      `json:"overpaymentUsd"`
	OverpaymentIQD decimal.Decimal      `json:"overpaymentIqd"`
	ForcedCurrency *domain.Currency     `json:"forcedCurrency,omitempty"`
	Rate           ExchangeRateResponse `json:"rate"`
	Settled        bool                 `json:"settled"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// ToListPaymentRecordResponse converts payment history records.
func ToListPaymentRecordResponse(records []domain.PaymentRecord) []PaymentRecordResponse {
	out := make([]PaymentRecordResponse, len(records))
	for i, r := range records {
		out[i] = PaymentRecordResponse{
			ID:             r.ID,
			AbsorbedUSD:    r.AbsorbedUSD,
			AbsorbedIQD:    r.AbsorbedIQD,
			OverpaymentUSD: r.OverpaymentUSD,
			OverpaymentIQD: r.OverpaymentIQD,
			ForcedCurrency: r.ForcedCurrency,
			Rate:           ToExchangeRateResponse(r.Rate),
			Settled:        r.Settled,
			CreatedAt:      r.CreatedAt,
		}
	}
	return out
}

// PaymentStateResponse is the cumulative payment bookkeeping of a debt.
type PaymentStateResponse struct {
	PaidUSD         decimal.Decimal       `json:"paidUsd"`
	PaidIQD         decimal.Decimal       `json:"paidIqd"`
	LastPaymentRate *ExchangeRateResponse `json:"lastPaymentRate,omitempty"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
}

func toPaymentStateResponse(p domain.PaymentState) PaymentStateResponse {
	resp := PaymentStateResponse{PaidUSD: p.PaymentUSDAmount, PaidIQD: p.PaymentIQDAmount, PaidAt: p.PaidAt}
	if rate, ok := p.LastPaymentRate(); ok {
		r := ToExchangeRateResponse(rate)
		resp.LastPaymentRate = &r
	}
	return resp
}

// CompanyDebtResponse defines the structure for API responses containing a company debt.
type CompanyDebtResponse struct {
	ID          string               `json:"id"`
	CompanyName string               `json:"companyName"`
	Currency    domain.DebtCurrency  `json:"currency"`
	Amount      decimal.Decimal      `json:"amount"`
	USDAmount   decimal.Decimal      `json:"usdAmount"`
	IQDAmount   decimal.Decimal      `json:"iqdAmount"`
	Items       []domain.LineItem    `json:"items,omitempty"`
	Payments    PaymentStateResponse `json:"payments"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// ToCompanyDebtResponse converts a domain.CompanyDebt.
func ToCompanyDebtResponse(d *domain.CompanyDebt) CompanyDebtResponse {
	return CompanyDebtResponse{
		ID:          d.ID,
		CompanyName: d.CompanyName,
		Currency:    d.Currency,
		Amount:      d.Amount,
		USDAmount:   d.USDAmount,
		IQDAmount:   d.IQDAmount,
		Items:       d.Items,
		Payments:    toPaymentStateResponse(d.PaymentState),
		CreatedAt:   d.CreatedAt,
	}
}

// PersonalLoanResponse defines the structure for API responses containing a personal loan.
type PersonalLoanResponse struct {
	ID         string               `json:"id"`
	PersonName string               `json:"personName"`
	USDAmount  decimal.Decimal      `json:"usdAmount"`
	IQDAmount  decimal.Decimal      `json:"iqdAmount"`
	Notes      string               `json:"notes,omitempty"`
	Payments   PaymentStateResponse `json:"payments"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// ToPersonalLoanResponse converts a domain.PersonalLoan.
func ToPersonalLoanResponse(l *domain.PersonalLoan) PersonalLoanResponse {
	return PersonalLoanResponse{
		ID:         l.ID,
		PersonName: l.PersonName,
		USDAmount:  l.USDAmount,
		IQDAmount:  l.IQDAmount,
		Notes:      l.Notes,
		Payments:   toPaymentStateResponse(l.PaymentState),
		CreatedAt:  l.CreatedAt,
	}
}
