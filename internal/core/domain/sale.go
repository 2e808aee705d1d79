package domain

import (
	"fmt"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineItem is one product line of a sale or purchase. Buying and selling prices are
// both expressed in ProductCurrency.
type LineItem struct {
	ID              string           `json:"id"`
	ItemRef         string           `json:"itemRef"`
	Name            string           `json:"name,omitempty"`
	Quantity        int              `json:"quantity"`
	BuyingPrice     decimal.Decimal  `json:"buyingPrice"`
	SellingPrice    decimal.Decimal  `json:"sellingPrice"`
	ProductCurrency Currency         `json:"productCurrency"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
}

// NetSellingPrice is the unit selling price after the line discount, in ProductCurrency.
func (li LineItem) NetSellingPrice() decimal.Decimal {
	if li.DiscountPercent == nil || li.DiscountPercent.IsZero() {
		return li.SellingPrice
	}
	return li.SellingPrice.Mul(hundred.Sub(*li.DiscountPercent)).Div(hundred)
}

// Validate checks the ingestion rules for a line.
func (li LineItem) Validate() error {
	if li.ItemRef == "" {
		return fmt.Errorf("%w: line item reference is required", apperrors.ErrValidation)
	}
	if li.Quantity <= 0 {
		return fmt.Errorf("%w: line %s quantity must be positive", apperrors.ErrValidation, li.ItemRef)
	}
	if li.BuyingPrice.IsNegative() || li.SellingPrice.IsNegative() {
		return fmt.Errorf("%w: line %s prices must not be negative", apperrors.ErrValidation, li.ItemRef)
	}
	if !li.ProductCurrency.Valid() {
		return fmt.Errorf("%w: line %s has no product currency", apperrors.ErrValidation, li.ItemRef)
	}
	if li.DiscountPercent != nil && (li.DiscountPercent.IsNegative() || li.DiscountPercent.GreaterThan(hundred)) {
		return fmt.Errorf("%w: line %s discount must be between 0 and 100", apperrors.ErrValidation, li.ItemRef)
	}
	return nil
}

// PaymentSplit is the blended tender of a multi-currency sale.
type PaymentSplit struct {
	USDAmount decimal.Decimal `json:"usdAmount"`
	IQDAmount decimal.Decimal `json:"iqdAmount"`
}

// Amount returns the split component in c.
func (p PaymentSplit) Amount(c Currency) decimal.Decimal {
	if c == USD {
		return p.USDAmount
	}
	return p.IQDAmount
}

// Sale is a completed register transaction. Rate is frozen at creation.
type Sale struct {
	ID       string          `json:"id"`
	Currency Currency        `json:"currency"`
	Total    decimal.Decimal `json:"total"`
	Rate     ExchangeRate    `json:"rate"`
	Items    []LineItem      `json:"items"`
	Split    *PaymentSplit   `json:"split,omitempty"`
	IsDebt   bool            `json:"isDebt"`
	AuditFields
}

// Validate checks the ingestion rules for a sale. Currency and rate are never defaulted.
func (s Sale) Validate() error {
	if !s.Currency.Valid() {
		return fmt.Errorf("%w: sale currency is required", apperrors.ErrValidation)
	}
	if err := s.Rate.Validate(); err != nil {
		return err
	}
	if s.Total.IsNegative() {
		return fmt.Errorf("%w: sale total must not be negative", apperrors.ErrValidation)
	}
	if len(s.Items) == 0 {
		return fmt.Errorf("%w: sale must have at least one line item", apperrors.ErrValidation)
	}
	for _, item := range s.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	if s.Split != nil {
		if s.Split.USDAmount.IsNegative() || s.Split.IQDAmount.IsNegative() {
			return fmt.Errorf("%w: payment split amounts must not be negative", apperrors.ErrValidation)
		}
		if s.IsDebt {
			return fmt.Errorf("%w: a credit sale cannot carry a payment split", apperrors.ErrValidation)
		}
	}
	return nil
}

// ItemIndex returns the position of the line with the given id, or -1.
func (s Sale) ItemIndex(itemID string) int {
	for i, item := range s.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate lines without aliasing.
func (s Sale) Clone() Sale {
	out := s
	out.Items = cloneItems(s.Items)
	if s.Split != nil {
		split := *s.Split
		out.Split = &split
	}
	return out
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.DiscountPercent != nil {
			d := *item.DiscountPercent
			out[i].DiscountPercent = &d
		}
	}
	return out
}
