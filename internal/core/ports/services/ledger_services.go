package services

import (
	"context"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/dto"
)

// ExchangeRateSvcFacade reads and replaces the live rate
type ExchangeRateSvcFacade interface {
	GetCurrentRate(ctx context.Context) (domain.ExchangeRate, error)
	SetCurrentRate(ctx context.Context, req dto.SetExchangeRateRequest) (domain.ExchangeRate, error)
}

// SaleSvcFacade records sales and computes their profit
type SaleSvcFacade interface {
	// RecordSale completes a sale, freezing the live rate on it. Credit sales get a Debt.
	RecordSale(ctx context.Context, req dto.CreateSaleRequest) (*domain.Sale, *domain.Debt, error)
	GetSale(ctx context.Context, saleID string) (*domain.Sale, *domain.Debt, error)
	ComputeProfit(ctx context.Context, saleID string) (domain.ProfitResult, error)
}

// PaymentSvcFacade applies payments against debts
type PaymentSvcFacade interface {
	ApplyPayment(ctx context.Context, kind domain.RecordKind, recordID string, req dto.ApplyPaymentRequest) (domain.PaymentOutcome, domain.PaymentRecord, error)
	ListPaymentHistory(ctx context.Context, kind domain.RecordKind, recordID string) ([]domain.PaymentRecord, error)
}

// LedgerSvcFacade creates debts and answers remaining-balance queries
type LedgerSvcFacade interface {
	CreateCompanyDebt(ctx context.Context, req dto.CreateCompanyDebtRequest) (*domain.CompanyDebt, error)
	GetCompanyDebt(ctx context.Context, id string) (*domain.CompanyDebt, error)
	CreatePersonalLoan(ctx context.Context, req dto.CreatePersonalLoanRequest) (*domain.PersonalLoan, error)
	GetPersonalLoan(ctx context.Context, id string) (*domain.PersonalLoan, error)

	// Remaining applies the rate policy of the record kind and returns what is owed.
	Remaining(ctx context.Context, kind domain.RecordKind, id string) (domain.Remaining, *domain.DebtPosition, error)

	// ListOutstanding returns every unsettled debt of a kind.
	ListOutstanding(ctx context.Context, kind domain.RecordKind) ([]domain.OutstandingDebt, error)
}

// ReturnSvcFacade reverses sales and purchases
type ReturnSvcFacade interface {
	ReturnSale(ctx context.Context, saleID string) (domain.ReturnResult, error)
	ReturnSaleItem(ctx context.Context, saleID, itemID string, quantity int) (domain.ReturnResult, error)
	ReturnPurchase(ctx context.Context, purchaseID string) (domain.ReturnResult, error)
	ReturnPurchaseItem(ctx context.Context, purchaseID, itemID string, quantity int) (domain.ReturnResult, error)
}

// PurchaseSvcFacade records purchases and manages stock levels
type PurchaseSvcFacade interface {
	RecordPurchase(ctx context.Context, req dto.CreatePurchaseRequest) (*domain.BuyingHistoryEntry, error)
	GetPurchase(ctx context.Context, id string) (*domain.BuyingHistoryEntry, error)
	GetStock(ctx context.Context, itemRef string) (domain.StockLevel, error)
	SetStock(ctx context.Context, itemRef string, req dto.SetStockRequest) (domain.StockLevel, error)
}
