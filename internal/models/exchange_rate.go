package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the single row of the exchange_rates table holding the live rate.
type ExchangeRate struct {
	USDToIQD      decimal.Decimal `json:"usdToIQD"`
	IQDToUSD      decimal.Decimal `json:"iqdToUSD"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// CashBalance is the single row of the cash_balance table.
type CashBalance struct {
	USDBalance decimal.Decimal `json:"usdBalance"`
	IQDBalance decimal.Decimal `json:"iqdBalance"`
}

// StockLevel is a row of the stock_levels table.
type StockLevel struct {
	ItemRef  string `json:"itemRef"` // Primary Key
	OnHand   int    `json:"onHand"`
	MaxStock int    `json:"maxStock"` // Zero means uncapped
}
