package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentHistory is a row of the append-only payment_history table.
type PaymentHistory struct {
	PaymentID      string          `json:"paymentID"` // Primary Key
	RecordKind     string          `json:"recordKind"`
	RecordID       string          `json:"recordID"`
	TenderUSD      decimal.Decimal `json:"tenderUSD"`
	TenderIQD      decimal.Decimal `json:"tenderIQD"`
	AbsorbedUSD    decimal.Decimal `json:"absorbedUSD"`
	AbsorbedIQD    decimal.Decimal `json:"absorbedIQD"`
	OverpaymentUSD decimal.Decimal `json:"overpaymentUSD"`
	OverpaymentIQD decimal.Decimal `json:"overpaymentIQD"`
	ForcedCurrency *string         `json:"forcedCurrency"` // Nullable
	RateUSDToIQD   decimal.Decimal `json:"rateUSDToIQD"`
	RateIQDToUSD   decimal.Decimal `json:"rateIQDToUSD"`
	Settled        bool            `json:"settled"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ReturnLog is a row of the append-only return_log table.
type ReturnLog struct {
	ReturnID       string          `json:"returnID"` // Primary Key
	RecordKind     string          `json:"recordKind"`
	RecordID       string          `json:"recordID"`
	ItemID         *string         `json:"itemID"` // Nullable, set for line-item returns
	Quantity       int             `json:"quantity"`
	Refund         decimal.Decimal `json:"refund"`
	RefundCurrency string          `json:"refundCurrency"`
	CreatedAt      time.Time       `json:"createdAt"`
}
