package reconciliation

import (
	"fmt"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyPayment applies a tender to a debt position at the given rate and returns the
// updated position. The input position is not modified.
//
// A dual-currency debt without a forced currency takes each tender component against its
// own side; whatever exceeds that side is overpayment in that currency. With a forced
// currency F, or for any single-currency debt (whose only side is its own currency), the
// whole tender is valued in F against the whole outstanding amount valued in F; an excess
// is split back into overpayment proportionally across the tender components.
//
// When the new remaining balance is zero the position is settled at now.
func ApplyPayment(pos domain.DebtPosition, tender domain.Tender, forced *domain.Currency, rate domain.ExchangeRate, now time.Time) (domain.PaymentOutcome, error) {
	out := domain.PaymentOutcome{
		AbsorbedUSD:    decimal.Zero,
		AbsorbedIQD:    decimal.Zero,
		OverpaymentUSD: decimal.Zero,
		OverpaymentIQD: decimal.Zero,
		RateUsed:       rate,
	}

	if tender.USD.IsNegative() || tender.IQD.IsNegative() {
		return out, fmt.Errorf("%w: tendered amounts must not be negative (usd=%s, iqd=%s)", apperrors.ErrInvalidAmount, tender.USD, tender.IQD)
	}
	if tender.USD.IsZero() && tender.IQD.IsZero() {
		return out, fmt.Errorf("%w: nothing tendered", apperrors.ErrInvalidAmount)
	}
	if pos.Settled() {
		return out, fmt.Errorf("%w: %s %s was settled at %s", apperrors.ErrRecordAlreadySettled, pos.Kind, pos.ID, pos.PaidAt.Format(time.RFC3339))
	}
	if forced != nil && !forced.Valid() {
		return out, fmt.Errorf("%w: unsupported forced currency %q", apperrors.ErrValidation, *forced)
	}
	if err := rate.Validate(); err != nil {
		return out, err
	}

	current, err := Remaining(pos, rate)
	if err != nil {
		return out, err
	}

	target, isSingle := pos.Denomination.Single()
	if forced != nil {
		target, isSingle = *forced, true
	}

	if !isSingle {
		out.AbsorbedUSD = decimal.Min(tender.USD, current.USD)
		out.AbsorbedIQD = decimal.Min(tender.IQD, current.IQD)
	} else {
		out.AbsorbedUSD, out.AbsorbedIQD, err = absorbInto(target, tender, current, rate)
		if err != nil {
			return out, err
		}
	}
	out.OverpaymentUSD = tender.USD.Sub(out.AbsorbedUSD)
	out.OverpaymentIQD = tender.IQD.Sub(out.AbsorbedIQD)

	next := pos
	next.PaymentUSDAmount = pos.PaymentUSDAmount.Add(out.AbsorbedUSD)
	next.PaymentIQDAmount = pos.PaymentIQDAmount.Add(out.AbsorbedIQD)
	next.PaymentExchangeRateUSDToIQD = rate.USDToIQD
	next.PaymentExchangeRateIQDToUSD = rate.IQDToUSD

	remaining, err := Remaining(next, rate)
	if err != nil {
		return out, err
	}
	if remaining.IsZero() {
		paidAt := now
		next.PaidAt = &paidAt
		out.Settled = true
	}
	out.Position = next
	out.NewRemaining = remaining
	return out, nil
}

// absorbInto values the tender and the outstanding amount in target and returns how much
// of each tender component is taken by the debt.
func absorbInto(target domain.Currency, tender domain.Tender, current domain.Remaining, rate domain.ExchangeRate) (decimal.Decimal, decimal.Decimal, error) {
	owed, err := valueIn(current.USD, current.IQD, target, rate)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if !owed.IsPositive() {
		return decimal.Zero, decimal.Zero, nil
	}

	// A one-currency tender is capped directly so the common case stays exact.
	switch {
	case tender.IQD.IsZero():
		limit, err := Convert(owed, target, domain.USD, rate)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		return decimal.Min(tender.USD, limit), decimal.Zero, nil
	case tender.USD.IsZero():
		limit, err := Convert(owed, target, domain.IQD, rate)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		return decimal.Zero, decimal.Min(tender.IQD, limit), nil
	}

	offered, err := valueIn(tender.USD, tender.IQD, target, rate)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if offered.LessThanOrEqual(owed) {
		return tender.USD, tender.IQD, nil
	}
	fraction := owed.Div(offered)
	return tender.USD.Mul(fraction), tender.IQD.Mul(fraction), nil
}
