package models

import "github.com/shopspring/decimal"

// Sale is a row of the sales table. The rate columns hold the rate frozen at creation.
type Sale struct {
	SaleID       string              `json:"saleID"` // Primary Key
	Currency     string              `json:"currency"`
	Total        decimal.Decimal     `json:"total"`
	RateUSDToIQD decimal.Decimal     `json:"rateUSDToIQD"`
	RateIQDToUSD decimal.Decimal     `json:"rateIQDToUSD"`
	SplitUSD     decimal.NullDecimal `json:"splitUSD"` // Nullable, both set for a blended tender
	SplitIQD     decimal.NullDecimal `json:"splitIQD"`
	IsDebt       bool                `json:"isDebt"`
	AuditFields
}

// LineItem is a row of the line_items table, shared by sales, purchases and company debts.
type LineItem struct {
	OwnerKind       string              `json:"ownerKind"` // sale, purchase or company_debt
	OwnerID         string              `json:"ownerID"`
	ItemID          string              `json:"itemID"`
	Position        int                 `json:"position"` // Keeps the order the lines were entered in
	ItemRef         string              `json:"itemRef"`
	Name            string              `json:"name"`
	Quantity        int                 `json:"quantity"`
	BuyingPrice     decimal.Decimal     `json:"buyingPrice"`
	SellingPrice    decimal.Decimal     `json:"sellingPrice"`
	ProductCurrency string              `json:"productCurrency"`
	DiscountPercent decimal.NullDecimal `json:"discountPercent"` // Nullable
}
