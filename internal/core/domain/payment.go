package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tender is the amount handed over in each currency.
type Tender struct {
	USD decimal.Decimal `json:"usd"`
	IQD decimal.Decimal `json:"iqd"`
}

// Get returns the tendered amount in c.
func (t Tender) Get(c Currency) decimal.Decimal {
	if c == USD {
		return t.USD
	}
	return t.IQD
}

// PaymentOutcome is the result of applying a tender against a debt position.
type PaymentOutcome struct {
	Position       DebtPosition    `json:"-"`
	AbsorbedUSD    decimal.Decimal `json:"absorbedUsd"`
	AbsorbedIQD    decimal.Decimal `json:"absorbedIqd"`
	OverpaymentUSD decimal.Decimal `json:"overpaymentUsd"`
	OverpaymentIQD decimal.Decimal `json:"overpaymentIqd"`
	NewRemaining   Remaining       `json:"newRemaining"`
	Settled        bool            `json:"settled"`
	RateUsed       ExchangeRate    `json:"rateUsed"`
}

// HasOverpayment reports whether any part of the tender was not absorbed.
func (o PaymentOutcome) HasOverpayment() bool {
	return o.OverpaymentUSD.IsPositive() || o.OverpaymentIQD.IsPositive()
}

// PaymentRecord is the immutable audit row appended for every applied payment.
type PaymentRecord struct {
	ID             string          `json:"id"`
	RecordKind     RecordKind      `json:"recordKind"`
	RecordID       string          `json:"recordId"`
	TenderUSD      decimal.Decimal `json:"tenderUsd"`
	TenderIQD      decimal.Decimal `json:"tenderIqd"`
	AbsorbedUSD    decimal.Decimal `json:"absorbedUsd"`
	AbsorbedIQD    decimal.Decimal `json:"absorbedIqd"`
	OverpaymentUSD decimal.Decimal `json:"overpaymentUsd"`
	OverpaymentIQD decimal.Decimal `json:"overpaymentIqd"`
	ForcedCurrency *Currency       `json:"forcedCurrency,omitempty"`
	Rate           ExchangeRate    `json:"rate"`
	Settled        bool            `json:"settled"`
	CreatedAt      time.Time       `json:"createdAt"`
}
