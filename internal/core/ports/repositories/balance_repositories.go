package repositories

import (
	"context"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceRepositoryFacade holds the process-wide cash drawer
type BalanceRepositoryFacade interface {
	GetBalance(ctx context.Context) (domain.Balance, error)

	// AdjustBalance adds delta to the currency's balance and returns the new balance.
	// It fails with apperrors.ErrNegativeBalance instead of going below zero.
	AdjustBalance(ctx context.Context, currency domain.Currency, delta decimal.Decimal) (domain.Balance, error)
}

// InventoryRepositoryFacade moves stock in and out
type InventoryRepositoryFacade interface {
	GetStock(ctx context.Context, itemRef string) (domain.StockLevel, error)

	// SetStockLevel replaces the on-hand count and cap of an item.
	SetStockLevel(ctx context.Context, level domain.StockLevel) error

	// AddStock increases stock without a cap check, creating the item if unknown.
	AddStock(ctx context.Context, itemRef string, quantity int) error

	// RestoreStock puts returned units back and returns how many fit under the item's cap.
	// Unknown items are created untracked and take every unit back.
	RestoreStock(ctx context.Context, itemRef string, quantity int) (int, error)

	// RemoveStock takes units out and returns how many were actually on hand.
	RemoveStock(ctx context.Context, itemRef string, quantity int) (int, error)
}
