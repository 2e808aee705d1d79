package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
)

// SaleReader defines read operations for sales
type SaleReader interface {
	// LoadSale retrieves a sale by ID. In a read-write unit of work the record is locked.
	LoadSale(ctx context.Context, saleID string) (*domain.Sale, error)

	// ListSales returns sales created in [from, to).
	ListSales(ctx context.Context, from, to time.Time) ([]domain.Sale, error)
}

// SaleWriter defines write operations for sales
type SaleWriter interface {
	// SaveSale inserts or replaces a sale and its line items.
	SaveSale(ctx context.Context, sale domain.Sale) error

	// DeleteSale removes a sale and its line items.
	DeleteSale(ctx context.Context, saleID string) error
}

// SaleRepositoryFacade combines all sale-related repository interfaces
type SaleRepositoryFacade interface {
	SaleReader
	SaleWriter
}

// DebtReader defines read operations for customer debts
type DebtReader interface {
	// LoadDebt retrieves a customer debt by ID.
	LoadDebt(ctx context.Context, debtID string) (*domain.Debt, error)

	// LoadDebtBySale retrieves the customer debt of a credit sale.
	LoadDebtBySale(ctx context.Context, saleID string) (*domain.Debt, error)

	// ListDebts returns every customer debt, settled or not.
	ListDebts(ctx context.Context) ([]domain.Debt, error)
}

// DebtWriter defines write operations for customer debts
type DebtWriter interface {
	SaveDebt(ctx context.Context, debt domain.Debt) error
	DeleteDebt(ctx context.Context, debtID string) error
}

// DebtRepositoryFacade combines all customer debt repository interfaces
type DebtRepositoryFacade interface {
	DebtReader
	DebtWriter
}
