package repositories

import (
	"context"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
)

// ExchangeRateReader defines read operations for the live exchange rate
type ExchangeRateReader interface {
	// CurrentRate returns the live rate. It returns apperrors.ErrMissingExchangeRate when none is set.
	CurrentRate(ctx context.Context) (domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for the live exchange rate
type ExchangeRateWriter interface {
	// SetCurrentRate replaces the live rate. Frozen rates on records are unaffected.
	SetCurrentRate(ctx context.Context, rate domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
