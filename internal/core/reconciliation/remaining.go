package reconciliation

import (
	"fmt"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Remaining returns what is still owed on a debt position.
//
// A settled position owes nothing. A position without payments owes its original amount.
// Otherwise cumulative payments are subtracted: a single-currency debt converts the
// opposite-currency payment into its own currency, a dual-currency debt subtracts per
// currency and lets a surplus on one side offset the other. Negative results clamp to
// zero, and the dust rule is applied last.
func Remaining(pos domain.DebtPosition, rate domain.ExchangeRate) (domain.Remaining, error) {
	out := domain.Remaining{Denomination: pos.Denomination, USD: decimal.Zero, IQD: decimal.Zero}
	if pos.Settled() {
		return out, nil
	}

	single, isSingle := pos.Denomination.Single()
	if !isSingle && !pos.Denomination.IsMulti() {
		return out, fmt.Errorf("%w: %s %s has no denomination", apperrors.ErrValidation, pos.Kind, pos.ID)
	}

	if !pos.HasPayments() {
		out.USD = pos.OriginalUSD
		out.IQD = pos.OriginalIQD
		return out, nil
	}

	if err := rate.Validate(); err != nil {
		return out, err
	}

	var usd, iqd decimal.Decimal
	if isSingle {
		other := single.Other()
		paidOther, err := Convert(pos.Paid(other), other, single, rate)
		if err != nil {
			return out, err
		}
		left := pos.Original(single).Sub(pos.Paid(single)).Sub(paidOther)
		if single == domain.USD {
			usd, iqd = left, decimal.Zero
		} else {
			usd, iqd = decimal.Zero, left
		}
	} else {
		var err error
		usd, iqd, err = offsetSurplus(pos.OriginalUSD.Sub(pos.PaymentUSDAmount), pos.OriginalIQD.Sub(pos.PaymentIQDAmount), rate)
		if err != nil {
			return out, err
		}
	}

	usd = clampZero(usd)
	iqd = clampZero(iqd)

	dust, err := IsDust(usd, iqd, rate)
	if err != nil {
		return out, err
	}
	if dust {
		return out, nil
	}
	out.USD = usd
	out.IQD = iqd
	return out, nil
}

// offsetSurplus moves a negative side (a surplus paid in that currency) onto the other side.
func offsetSurplus(usd, iqd decimal.Decimal, rate domain.ExchangeRate) (decimal.Decimal, decimal.Decimal, error) {
	switch {
	case usd.IsNegative() && iqd.IsPositive():
		surplus, err := Convert(usd.Neg(), domain.USD, domain.IQD, rate)
		if err != nil {
			return usd, iqd, err
		}
		return decimal.Zero, iqd.Sub(surplus), nil
	case iqd.IsNegative() && usd.IsPositive():
		surplus, err := Convert(iqd.Neg(), domain.IQD, domain.USD, rate)
		if err != nil {
			return usd, iqd, err
		}
		return usd.Sub(surplus), decimal.Zero, nil
	}
	return usd, iqd, nil
}

func clampZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// RemainingIn values a remaining balance in a single currency.
func RemainingIn(r domain.Remaining, c domain.Currency, rate domain.ExchangeRate) (decimal.Decimal, error) {
	if r.IsZero() {
		return decimal.Zero, nil
	}
	return valueIn(r.USD, r.IQD, c, rate)
}
