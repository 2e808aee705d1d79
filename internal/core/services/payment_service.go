package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/core/reconciliation"
	"github.com/SscSPs/pos_reconciliation/internal/dto"
	"github.com/google/uuid"
)

// paymentService applies payments against customer debts, company debts and personal loans.
type paymentService struct {
	BaseService
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(base BaseService) portssvc.PaymentSvcFacade {
	return &paymentService{BaseService: base}
}

// Ensure paymentService implements the portssvc.PaymentSvcFacade interface
var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// debtHandle loads and stores one debt kind through the common position view.
type debtHandle struct {
	position func() domain.DebtPosition
	// rate values the debt when a payment is applied; it is the same rate Remaining reports with.
	rate func(ctx context.Context, store portsrepo.Store) (domain.ExchangeRate, error)
	save     func(ctx context.Context, store portsrepo.Store, state domain.PaymentState, now time.Time) error
}

func loadDebtHandle(ctx context.Context, store portsrepo.Store, kind domain.RecordKind, id string) (*debtHandle, error) {
	switch kind {
	case domain.KindCustomerDebt:
		debt, err := store.LoadDebt(ctx, id)
		if err != nil {
			return nil, err
		}
		sale, err := store.LoadSale(ctx, debt.SaleID)
		if err != nil {
			return nil, fmt.Errorf("sale %s of debt %s: %w", debt.SaleID, id, err)
		}
		return &debtHandle{
			position: func() domain.DebtPosition { return domain.CustomerDebtPosition(*debt, *sale) },
			rate: func(context.Context, portsrepo.Store) (domain.ExchangeRate, error) {
				return reconciliation.RateForCustomerDebt(*debt, *sale)
			},
			save: func(ctx context.Context, store portsrepo.Store, state domain.PaymentState, now time.Time) error {
				debt.PaymentState = state
				debt.LastUpdatedAt = now
				return store.SaveDebt(ctx, *debt)
			},
		}, nil
	case domain.KindCompanyDebt:
		cd, err := store.LoadCompanyDebt(ctx, id)
		if err != nil {
			return nil, err
		}
		return &debtHandle{
			position: cd.Position,
			rate:     currentRate,
			save: func(ctx context.Context, store portsrepo.Store, state domain.PaymentState, now time.Time) error {
				cd.PaymentState = state
				cd.LastUpdatedAt = now
				return store.SaveCompanyDebt(ctx, *cd)
			},
		}, nil
	case domain.KindPersonalLoan:
		loan, err := store.LoadPersonalLoan(ctx, id)
		if err != nil {
			return nil, err
		}
		return &debtHandle{
			position: loan.Position,
			rate:     currentRate,
			save: func(ctx context.Context, store portsrepo.Store, state domain.PaymentState, now time.Time) error {
				loan.PaymentState = state
				loan.LastUpdatedAt = now
				return store.SavePersonalLoan(ctx, *loan)
			},
		}, nil
	}
	return nil, fmt.Errorf("%w: %q records do not carry a debt", apperrors.ErrValidation, kind)
}

func currentRate(ctx context.Context, store portsrepo.Store) (domain.ExchangeRate, error) {
	return store.CurrentRate(ctx)
}

// lockKeyFor returns the key that serializes mutations of a debt. Customer debts share
// the key of their sale so payments and returns of one sale never interleave.
func (s *paymentService) lockKeyFor(ctx context.Context, kind domain.RecordKind, id string) (string, error) {
	if kind != domain.KindCustomerDebt {
		return domain.LockKey(kind, id), nil
	}
	var saleID string
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		debt, err := store.LoadDebt(ctx, id)
		if err != nil {
			return err
		}
		saleID = debt.SaleID
		return nil
	})
	if err != nil {
		return "", err
	}
	return domain.LockKey(domain.KindSale, saleID), nil
}

// ApplyPayment applies a tender as one unit of work: the debt's payment fields, the drawer
// (absorbed amounts only) and the payment history change together. Customer debts are
// valued at their own rate, company debts and personal loans at the live rate.
func (s *paymentService) ApplyPayment(ctx context.Context, kind domain.RecordKind, recordID string, req dto.ApplyPaymentRequest) (domain.PaymentOutcome, domain.PaymentRecord, error) {
	forced, err := req.Forced()
	if err != nil {
		return domain.PaymentOutcome{}, domain.PaymentRecord{}, err
	}
	tender := req.Tender()

	key, err := s.lockKeyFor(ctx, kind, recordID)
	if err != nil {
		return domain.PaymentOutcome{}, domain.PaymentRecord{}, err
	}

	var outcome domain.PaymentOutcome
	var record domain.PaymentRecord
	err = s.mutate(ctx, "apply_payment", []string{key}, func(ctx context.Context, store portsrepo.Store) error {
		handle, err := loadDebtHandle(ctx, store, kind, recordID)
		if err != nil {
			return err
		}
		rate, err := handle.rate(ctx, store)
		if err != nil {
			return err
		}

		now := s.now()
		outcome, err = reconciliation.ApplyPayment(handle.position(), tender, forced, rate, now)
		if err != nil {
			return err
		}

		if err := adjustDrawer(ctx, store, domain.BalanceDelta{USD: outcome.AbsorbedUSD, IQD: outcome.AbsorbedIQD}); err != nil {
			return err
		}
		if err := handle.save(ctx, store, outcome.Position.PaymentState, now); err != nil {
			return err
		}

		record = domain.PaymentRecord{
			ID:             uuid.NewString(),
			RecordKind:     kind,
			RecordID:       recordID,
			TenderUSD:      tender.USD,
			TenderIQD:      tender.IQD,
			AbsorbedUSD:    outcome.AbsorbedUSD,
			AbsorbedIQD:    outcome.AbsorbedIQD,
			OverpaymentUSD: outcome.OverpaymentUSD,
			OverpaymentIQD: outcome.OverpaymentIQD,
			ForcedCurrency: forced,
			Rate:           rate,
			Settled:        outcome.Settled,
			CreatedAt:      now,
		}
		return store.AppendPaymentHistory(ctx, record)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to apply payment",
			slog.String("kind", string(kind)),
			slog.String("record_id", recordID))
		return domain.PaymentOutcome{}, domain.PaymentRecord{}, fmt.Errorf("failed to apply payment to %s %s: %w", kind, recordID, err)
	}

	s.metrics.RecordPayment(string(kind), outcome.OverpaymentUSD.IsPositive(), outcome.OverpaymentIQD.IsPositive(), outcome.Settled)
	if outcome.HasOverpayment() {
		s.LogInfo(ctx, "Payment exceeded the amount owed",
			slog.String("kind", string(kind)),
			slog.String("record_id", recordID),
			slog.String("overpayment_usd", outcome.OverpaymentUSD.String()),
			slog.String("overpayment_iqd", outcome.OverpaymentIQD.String()))
	}
	s.LogInfo(ctx, "Payment applied",
		slog.String("kind", string(kind)),
		slog.String("record_id", recordID),
		slog.String("payment_id", record.ID),
		slog.Bool("settled", outcome.Settled))

	events := []domain.LedgerEvent{domain.NewLedgerEvent(domain.EventPaymentApplied, kind, recordID, dto.ToPaymentResponse(outcome, record))}
	if outcome.Settled {
		events = append(events, domain.NewLedgerEvent(domain.EventDebtSettled, kind, recordID, nil))
	}
	s.publish(ctx, events...)
	return outcome, record, nil
}

// ListPaymentHistory returns the audit trail of one debt in application order.
func (s *paymentService) ListPaymentHistory(ctx context.Context, kind domain.RecordKind, recordID string) ([]domain.PaymentRecord, error) {
	var records []domain.PaymentRecord
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		if _, err := loadDebtHandle(ctx, store, kind, recordID); err != nil {
			return err
		}
		var err error
		records, err = store.ListPaymentHistory(ctx, kind, recordID)
		return err
	})
	return records, err
}
