package reconciliation

import (
	"fmt"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
)

// RateForCustomerDebt picks the rate used to reconcile a customer debt: the rate of its
// last payment, falling back to the rate frozen on the sale.
//
// Company debts and personal loans use RateForLiveView instead. The two policies differ
// on purpose and reported totals depend on the difference.
func RateForCustomerDebt(debt domain.Debt, sale domain.Sale) (domain.ExchangeRate, error) {
	if rate, ok := debt.LastPaymentRate(); ok {
		return rate, nil
	}
	if err := sale.Rate.Validate(); err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("sale %s has no frozen rate: %w", sale.ID, err)
	}
	return sale.Rate, nil
}

// RateForLiveView returns the live rate used for company debts and personal loans.
func RateForLiveView(live *domain.ExchangeRate) (domain.ExchangeRate, error) {
	if live == nil {
		return domain.ExchangeRate{}, fmt.Errorf("%w: live rate is not set", apperrors.ErrMissingExchangeRate)
	}
	if err := live.Validate(); err != nil {
		return domain.ExchangeRate{}, err
	}
	return *live, nil
}
