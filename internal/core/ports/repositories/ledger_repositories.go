package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
)

// CompanyDebtRepositoryFacade persists company debts
type CompanyDebtRepositoryFacade interface {
	LoadCompanyDebt(ctx context.Context, id string) (*domain.CompanyDebt, error)
	ListCompanyDebts(ctx context.Context) ([]domain.CompanyDebt, error)
	SaveCompanyDebt(ctx context.Context, debt domain.CompanyDebt) error
}

// PersonalLoanRepositoryFacade persists personal loans
type PersonalLoanRepositoryFacade interface {
	LoadPersonalLoan(ctx context.Context, id string) (*domain.PersonalLoan, error)
	ListPersonalLoans(ctx context.Context) ([]domain.PersonalLoan, error)
	SavePersonalLoan(ctx context.Context, loan domain.PersonalLoan) error
}

// BuyingHistoryRepositoryFacade persists completed purchases
type BuyingHistoryRepositoryFacade interface {
	LoadBuyingHistoryEntry(ctx context.Context, id string) (*domain.BuyingHistoryEntry, error)
	// ListBuyingHistory returns purchases created in [from, to).
	ListBuyingHistory(ctx context.Context, from, to time.Time) ([]domain.BuyingHistoryEntry, error)
	SaveBuyingHistoryEntry(ctx context.Context, entry domain.BuyingHistoryEntry) error
	DeleteBuyingHistoryEntry(ctx context.Context, id string) error
}

// PaymentHistoryRepositoryFacade is the append-only payment audit log
type PaymentHistoryRepositoryFacade interface {
	AppendPaymentHistory(ctx context.Context, record domain.PaymentRecord) error
	// ListPaymentHistory returns the records of one debt, oldest first.
	ListPaymentHistory(ctx context.Context, kind domain.RecordKind, recordID string) ([]domain.PaymentRecord, error)
}

// ReturnLogRepositoryFacade is the append-only log of processed returns
type ReturnLogRepositoryFacade interface {
	AppendReturn(ctx context.Context, record domain.ReturnRecord) error
	// ListReturns returns the returns processed in [from, to), oldest first.
	ListReturns(ctx context.Context, from, to time.Time) ([]domain.ReturnRecord, error)
}
