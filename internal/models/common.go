package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds the timestamp columns shared by every table.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// PaymentColumns are the cumulative payment columns of debts, company debts and loans.
type PaymentColumns struct {
	PaymentUSDAmount    decimal.Decimal `json:"paymentUSDAmount"`
	PaymentIQDAmount    decimal.Decimal `json:"paymentIQDAmount"`
	PaymentRateUSDToIQD decimal.Decimal `json:"paymentRateUSDToIQD"` // Zero until the first payment
	PaymentRateIQDToUSD decimal.Decimal `json:"paymentRateIQDToUSD"`
	PaidAt              *time.Time      `json:"paidAt"` // Nullable, set once when settled
}
