package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/core/reconciliation"
	"github.com/SscSPs/pos_reconciliation/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledgerService creates company debts and personal loans and answers remaining-balance
// queries for every debt kind.
type ledgerService struct {
	BaseService
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(base BaseService) portssvc.LedgerSvcFacade {
	return &ledgerService{BaseService: base}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func emptyPaymentState() domain.PaymentState {
	return domain.PaymentState{PaymentUSDAmount: decimal.Zero, PaymentIQDAmount: decimal.Zero}
}

// CreateCompanyDebt records money owed to a supplier.
func (s *ledgerService) CreateCompanyDebt(ctx context.Context, req dto.CreateCompanyDebtRequest) (*domain.CompanyDebt, error) {
	cur, err := domain.ParseDebtCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	items, err := dto.ToDomainLineItems(req.Items)
	if err != nil {
		return nil, err
	}
	now := s.now()
	debt := domain.CompanyDebt{
		ID:           uuid.NewString(),
		CompanyName:  req.CompanyName,
		Currency:     cur,
		Amount:       req.Amount,
		USDAmount:    req.USDAmount,
		IQDAmount:    req.IQDAmount,
		Items:        items,
		PaymentState: emptyPaymentState(),
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := debt.Validate(); err != nil {
		return nil, err
	}

	err = s.mutate(ctx, "create_company_debt", []string{domain.LockKey(domain.KindCompanyDebt, debt.ID)}, func(ctx context.Context, store portsrepo.Store) error {
		return store.SaveCompanyDebt(ctx, debt)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create company debt", slog.String("company", req.CompanyName))
		return nil, fmt.Errorf("failed to create company debt: %w", err)
	}

	s.LogInfo(ctx, "Company debt created",
		slog.String("company_debt_id", debt.ID),
		slog.String("currency", string(debt.Currency)))
	return &debt, nil
}

// GetCompanyDebt retrieves a company debt by id.
func (s *ledgerService) GetCompanyDebt(ctx context.Context, id string) (*domain.CompanyDebt, error) {
	var debt *domain.CompanyDebt
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		var err error
		debt, err = store.LoadCompanyDebt(ctx, id)
		return err
	})
	return debt, err
}

// CreatePersonalLoan records a dual-currency personal loan.
func (s *ledgerService) CreatePersonalLoan(ctx context.Context, req dto.CreatePersonalLoanRequest) (*domain.PersonalLoan, error) {
	now := s.now()
	loan := domain.PersonalLoan{
		ID:           uuid.NewString(),
		PersonName:   req.PersonName,
		USDAmount:    req.USDAmount,
		IQDAmount:    req.IQDAmount,
		Notes:        req.Notes,
		PaymentState: emptyPaymentState(),
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := loan.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "create_personal_loan", []string{domain.LockKey(domain.KindPersonalLoan, loan.ID)}, func(ctx context.Context, store portsrepo.Store) error {
		return store.SavePersonalLoan(ctx, loan)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create personal loan", slog.String("person", req.PersonName))
		return nil, fmt.Errorf("failed to create personal loan: %w", err)
	}

	s.LogInfo(ctx, "Personal loan created", slog.String("loan_id", loan.ID))
	return &loan, nil
}

// GetPersonalLoan retrieves a personal loan by id.
func (s *ledgerService) GetPersonalLoan(ctx context.Context, id string) (*domain.PersonalLoan, error) {
	var loan *domain.PersonalLoan
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		var err error
		loan, err = store.LoadPersonalLoan(ctx, id)
		return err
	})
	return loan, err
}

// Remaining returns what is still owed on a debt under the rate policy of its kind.
func (s *ledgerService) Remaining(ctx context.Context, kind domain.RecordKind, id string) (domain.Remaining, *domain.DebtPosition, error) {
	var remaining domain.Remaining
	var position domain.DebtPosition
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		var err error
		remaining, position, err = remainingOf(ctx, store, kind, id)
		return err
	})
	if err != nil {
		return domain.Remaining{}, nil, err
	}
	return remaining, &position, nil
}

// remainingOf loads a debt and applies the rate policy of its kind: customer debts use
// their last payment rate (or the sale's frozen rate), everything else the live rate.
func remainingOf(ctx context.Context, store portsrepo.Store, kind domain.RecordKind, id string) (domain.Remaining, domain.DebtPosition, error) {
	var pos domain.DebtPosition
	var rate domain.ExchangeRate
	switch kind {
	case domain.KindCustomerDebt:
		debt, err := store.LoadDebt(ctx, id)
		if err != nil {
			return domain.Remaining{}, pos, err
		}
		sale, err := store.LoadSale(ctx, debt.SaleID)
		if err != nil {
			return domain.Remaining{}, pos, fmt.Errorf("sale %s of debt %s: %w", debt.SaleID, id, err)
		}
		if rate, err = reconciliation.RateForCustomerDebt(*debt, *sale); err != nil {
			return domain.Remaining{}, pos, err
		}
		pos = domain.CustomerDebtPosition(*debt, *sale)
	case domain.KindCompanyDebt, domain.KindPersonalLoan:
		handle, err := loadDebtHandle(ctx, store, kind, id)
		if err != nil {
			return domain.Remaining{}, pos, err
		}
		if rate, err = liveRate(ctx, store); err != nil {
			return domain.Remaining{}, pos, err
		}
		pos = handle.position()
	default:
		return domain.Remaining{}, pos, fmt.Errorf("%w: %q records do not carry a debt", apperrors.ErrValidation, kind)
	}
	remaining, err := reconciliation.Remaining(pos, rate)
	return remaining, pos, err
}

// ListOutstanding returns every unsettled debt of a kind with its remaining balance.
func (s *ledgerService) ListOutstanding(ctx context.Context, kind domain.RecordKind) ([]domain.OutstandingDebt, error) {
	var out []domain.OutstandingDebt
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		type ref struct{ id, counterparty string }
		var refs []ref
		switch kind {
		case domain.KindCustomerDebt:
			debts, err := store.ListDebts(ctx)
			if err != nil {
				return err
			}
			for _, d := range debts {
				if !d.Settled() {
					refs = append(refs, ref{d.ID, d.SaleID})
				}
			}
		case domain.KindCompanyDebt:
			debts, err := store.ListCompanyDebts(ctx)
			if err != nil {
				return err
			}
			for _, d := range debts {
				if !d.Settled() {
					refs = append(refs, ref{d.ID, d.CompanyName})
				}
			}
		case domain.KindPersonalLoan:
			loans, err := store.ListPersonalLoans(ctx)
			if err != nil {
				return err
			}
			for _, l := range loans {
				if !l.Settled() {
					refs = append(refs, ref{l.ID, l.PersonName})
				}
			}
		default:
			return fmt.Errorf("%w: %q records do not carry a debt", apperrors.ErrValidation, kind)
		}

		out = make([]domain.OutstandingDebt, 0, len(refs))
		for _, r := range refs {
			remaining, pos, err := remainingOf(ctx, store, kind, r.id)
			if err != nil {
				return err
			}
			out = append(out, domain.OutstandingDebt{
				Kind:         kind,
				ID:           r.id,
				Counterparty: r.counterparty,
				Remaining:    remaining,
				PaidAt:       pos.PaidAt,
			})
		}
		return nil
	})
	return out, err
}
