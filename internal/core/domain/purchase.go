package domain

import (
	"fmt"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/shopspring/decimal"
)

// BuyingHistoryEntry is a completed purchase from a supplier.
type BuyingHistoryEntry struct {
	ID           string          `json:"id"`
	SupplierName string          `json:"supplierName"`
	Currency     Currency        `json:"currency"`
	Total        decimal.Decimal `json:"total"`
	Rate         ExchangeRate    `json:"rate"`
	Items        []LineItem      `json:"items,omitempty"`
	AuditFields
}

// Validate checks the ingestion rules for a purchase.
func (b BuyingHistoryEntry) Validate() error {
	if b.SupplierName == "" {
		return fmt.Errorf("%w: supplier name is required", apperrors.ErrValidation)
	}
	if !b.Currency.Valid() {
		return fmt.Errorf("%w: purchase currency is required", apperrors.ErrValidation)
	}
	if err := b.Rate.Validate(); err != nil {
		return err
	}
	if !b.Total.IsPositive() {
		return fmt.Errorf("%w: purchase total must be positive", apperrors.ErrValidation)
	}
	for _, item := range b.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ItemIndex returns the position of the line with the given id, or -1.
func (b BuyingHistoryEntry) ItemIndex(itemID string) int {
	for i, item := range b.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy.
func (b BuyingHistoryEntry) Clone() BuyingHistoryEntry {
	out := b
	out.Items = cloneItems(b.Items)
	return out
}
