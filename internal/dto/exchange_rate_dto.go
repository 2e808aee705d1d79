package dto

import (
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SetExchangeRateRequest replaces the live rate. The inverse is derived when omitted.
type SetExchangeRateRequest struct {
	USDToIQD decimal.Decimal  `json:"usdToIqd" binding:"gt=0"`
	IQDToUSD *decimal.Decimal `json:"iqdToUsd,omitempty"`
}

// ToDomain builds the rate pair.
func (r SetExchangeRateRequest) ToDomain() (domain.ExchangeRate, error) {
	if r.IQDToUSD == nil {
		return domain.NewExchangeRate(r.USDToIQD)
	}
	rate := domain.ExchangeRate{USDToIQD: r.USDToIQD, IQDToUSD: *r.IQDToUSD}
	return rate, rate.Validate()
}

// ExchangeRateResponse defines the structure for API responses containing the live rate.
type ExchangeRateResponse struct {
	USDToIQD decimal.Decimal `json:"usdToIqd"`
	IQDToUSD decimal.Decimal `json:"iqdToUsd"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{USDToIQD: rate.USDToIQD, IQDToUSD: rate.IQDToUSD}
}
