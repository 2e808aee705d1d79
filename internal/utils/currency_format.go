package utils

import (
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FormatWithCurrencyPrecision formats an amount with the minor-unit precision of its currency.
// Example: 12.3456 USD returns "12.35", 1250.6 IQD returns "1251".
func FormatWithCurrencyPrecision(amount decimal.Decimal, currency domain.Currency) string {
	return amount.StringFixed(currency.Precision())
}

// FormatTender formats a two-currency amount for log lines, e.g. "10.00 USD + 5000 IQD".
func FormatTender(usd, iqd decimal.Decimal) string {
	return FormatWithCurrencyPrecision(usd, domain.USD) + " USD + " + FormatWithCurrencyPrecision(iqd, domain.IQD) + " IQD"
}
