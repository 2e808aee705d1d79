package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/dto"
	"github.com/shopspring/decimal"
)

const exchangeRateLockKey = "exchange_rate:live"

// exchangeRateService reads and replaces the live USD/IQD rate.
type exchangeRateService struct {
	BaseService
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(base BaseService) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{BaseService: base}
}

// Ensure exchangeRateService implements the portssvc.ExchangeRateSvcFacade interface
var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// GetCurrentRate returns the live rate or ErrMissingExchangeRate.
func (s *exchangeRateService) GetCurrentRate(ctx context.Context) (domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		var err error
		rate, err = store.CurrentRate(ctx)
		return err
	})
	return rate, err
}

// SetCurrentRate replaces the live rate. Rates frozen on existing records are untouched.
func (s *exchangeRateService) SetCurrentRate(ctx context.Context, req dto.SetExchangeRateRequest) (domain.ExchangeRate, error) {
	rate, err := req.ToDomain()
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	err = s.mutate(ctx, "set_exchange_rate", []string{exchangeRateLockKey}, func(ctx context.Context, store portsrepo.Store) error {
		return store.SetCurrentRate(ctx, rate)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to set exchange rate")
		return domain.ExchangeRate{}, fmt.Errorf("failed to set exchange rate: %w", err)
	}

	s.LogInfo(ctx, "Live exchange rate updated",
		slog.String("usd_to_iqd", rate.USDToIQD.String()),
		slog.String("iqd_to_usd", rate.IQDToUSD.String()))
	return rate, nil
}

// SeedExchangeRate sets the live rate only when none is stored yet. It is used at
// startup from configuration.
func SeedExchangeRate(ctx context.Context, tm portsrepo.TransactionManager, usdToIQD decimal.Decimal) (bool, error) {
	rate, err := domain.NewExchangeRate(usdToIQD)
	if err != nil {
		return false, err
	}
	seeded := false
	err = tm.WithinTx(ctx, func(ctx context.Context, store portsrepo.Store) error {
		_, err := store.CurrentRate(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrMissingExchangeRate) {
			return err
		}
		seeded = true
		return store.SetCurrentRate(ctx, rate)
	})
	return seeded, err
}
