package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
)

// Currency is one of the two currencies the register handles.
type Currency string

const (
	USD Currency = "USD"
	IQD Currency = "IQD"
)

// Currencies lists every supported currency in display order.
var Currencies = []Currency{USD, IQD}

// ParseCurrency converts a code into a Currency. Empty or unknown codes are rejected.
func ParseCurrency(code string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(code))) {
	case USD:
		return USD, nil
	case IQD:
		return IQD, nil
	}
	return "", fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, code)
}

// Valid reports whether c is USD or IQD.
func (c Currency) Valid() bool {
	return c == USD || c == IQD
}

// Other returns the opposite currency.
func (c Currency) Other() Currency {
	if c == USD {
		return IQD
	}
	return USD
}

// Precision is the number of decimal places used when presenting amounts.
func (c Currency) Precision() int32 {
	if c == IQD {
		return 0
	}
	return 2
}

// DebtCurrency is the denomination of a debt: a single currency or MULTI for dual-currency debts.
type DebtCurrency string

const (
	DebtUSD   DebtCurrency = "USD"
	DebtIQD   DebtCurrency = "IQD"
	DebtMulti DebtCurrency = "MULTI"
)

// ParseDebtCurrency converts a code into a DebtCurrency.
func ParseDebtCurrency(code string) (DebtCurrency, error) {
	switch DebtCurrency(strings.ToUpper(strings.TrimSpace(code))) {
	case DebtUSD:
		return DebtUSD, nil
	case DebtIQD:
		return DebtIQD, nil
	case DebtMulti:
		return DebtMulti, nil
	}
	return "", fmt.Errorf("%w: unsupported debt currency %q", apperrors.ErrValidation, code)
}

// IsMulti reports whether the debt is tracked per currency.
func (d DebtCurrency) IsMulti() bool {
	return d == DebtMulti
}

// Single returns the currency of a single-currency debt.
func (d DebtCurrency) Single() (Currency, bool) {
	switch d {
	case DebtUSD:
		return USD, true
	case DebtIQD:
		return IQD, true
	}
	return "", false
}

// DebtCurrencyOf lifts a Currency into a single-currency denomination.
func DebtCurrencyOf(c Currency) DebtCurrency {
	return DebtCurrency(c)
}
