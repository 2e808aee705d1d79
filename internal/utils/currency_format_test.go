package utils

import (
	"testing"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatWithCurrencyPrecision(t *testing.T) {
	assert.Equal(t, "12.35", FormatWithCurrencyPrecision(decimal.RequireFromString("12.3456"), domain.USD))
	assert.Equal(t, "1251", FormatWithCurrencyPrecision(decimal.RequireFromString("1250.6"), domain.IQD))
	assert.Equal(t, "0.00", FormatWithCurrencyPrecision(decimal.Zero, domain.USD))
}

func TestFormatTender(t *testing.T) {
	assert.Equal(t, "10.00 USD + 5000 IQD", FormatTender(decimal.NewFromInt(10), decimal.NewFromInt(5000)))
}
