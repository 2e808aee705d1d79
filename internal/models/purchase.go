package models

import "github.com/shopspring/decimal"

// Purchase is a row of the purchases table.
type Purchase struct {
	PurchaseID   string          `json:"purchaseID"` // Primary Key
	SupplierName string          `json:"supplierName"`
	Currency     string          `json:"currency"`
	Total        decimal.Decimal `json:"total"`
	RateUSDToIQD decimal.Decimal `json:"rateUSDToIQD"`
	RateIQDToUSD decimal.Decimal `json:"rateIQDToUSD"`
	AuditFields
}
