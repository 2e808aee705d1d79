package domain

import (
	"fmt"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ExchangeRate is the ordered pair used for USD/IQD conversion. The two sides are
// approximately reciprocal; each direction multiplies by its own side.
type ExchangeRate struct {
	USDToIQD decimal.Decimal `json:"usdToIqd"`
	IQDToUSD decimal.Decimal `json:"iqdToUsd"`
}

// NewExchangeRate builds a rate pair from the USD->IQD side, deriving the inverse.
func NewExchangeRate(usdToIQD decimal.Decimal) (ExchangeRate, error) {
	if !usdToIQD.IsPositive() {
		return ExchangeRate{}, fmt.Errorf("%w: usd_to_iqd must be positive, got %s", apperrors.ErrMissingExchangeRate, usdToIQD)
	}
	return ExchangeRate{
		USDToIQD: usdToIQD,
		IQDToUSD: decimal.NewFromInt(1).Div(usdToIQD),
	}, nil
}

// Validate rejects a rate pair with a missing or non-positive side.
func (r ExchangeRate) Validate() error {
	if !r.USDToIQD.IsPositive() || !r.IQDToUSD.IsPositive() {
		return fmt.Errorf("%w: rate pair (%s, %s) is not usable", apperrors.ErrMissingExchangeRate, r.USDToIQD, r.IQDToUSD)
	}
	return nil
}

// IsZero reports whether the rate was never set.
func (r ExchangeRate) IsZero() bool {
	return r.USDToIQD.IsZero() && r.IQDToUSD.IsZero()
}
