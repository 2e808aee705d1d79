// Package reconciliation holds the pure dual-currency arithmetic: conversion, rate
// selection, profit, remaining balances, payment application and refund allocation.
// Nothing here performs I/O; the live rate and balances are passed in explicitly.
package reconciliation

import (
	"fmt"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DustThresholdIQD is the IQD-equivalent below which a remaining balance counts as settled.
var DustThresholdIQD = decimal.NewFromInt(250)

// Convert moves amount from one currency into another. Same-currency conversion is the
// identity and does not consult the rate.
func Convert(amount decimal.Decimal, from, to domain.Currency, rate domain.ExchangeRate) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	if !from.Valid() || !to.Valid() {
		return decimal.Zero, fmt.Errorf("%w: cannot convert %q to %q", apperrors.ErrValidation, from, to)
	}
	if err := rate.Validate(); err != nil {
		return decimal.Zero, err
	}
	if from == domain.USD {
		return amount.Mul(rate.USDToIQD), nil
	}
	return amount.Mul(rate.IQDToUSD), nil
}

// ToIQD values amount in IQD.
func ToIQD(amount decimal.Decimal, from domain.Currency, rate domain.ExchangeRate) (decimal.Decimal, error) {
	return Convert(amount, from, domain.IQD, rate)
}

// IsDust reports whether a two-sided amount is worth less than the dust threshold.
func IsDust(usd, iqd decimal.Decimal, rate domain.ExchangeRate) (bool, error) {
	usdInIQD, err := ToIQD(usd, domain.USD, rate)
	if err != nil {
		return false, err
	}
	return usdInIQD.Add(iqd).LessThan(DustThresholdIQD), nil
}

// valueIn sums a two-sided amount into a single currency.
func valueIn(usd, iqd decimal.Decimal, target domain.Currency, rate domain.ExchangeRate) (decimal.Decimal, error) {
	u, err := Convert(usd, domain.USD, target, rate)
	if err != nil {
		return decimal.Zero, err
	}
	i, err := Convert(iqd, domain.IQD, target, rate)
	if err != nil {
		return decimal.Zero, err
	}
	return u.Add(i), nil
}
