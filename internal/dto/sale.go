package dto

import (
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one product line in a sale, purchase or company debt.
type LineItemRequest struct {
	ID              string           `json:"id,omitempty"`
	ItemRef         string           `json:"itemRef" binding:"required"`
	Name            string           `json:"name,omitempty"`
	Quantity        int              `json:"quantity" binding:"required,gt=0"`
	BuyingPrice     decimal.Decimal  `json:"buyingPrice" binding:"gte=0"`
	SellingPrice    decimal.Decimal  `json:"sellingPrice" binding:"gte=0"`
	ProductCurrency string           `json:"productCurrency" binding:"required,currency"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
}

// ToDomain converts the request line, assigning an ID when none was given.
func (r LineItemRequest) ToDomain() (domain.LineItem, error) {
	cur, err := domain.ParseCurrency(r.ProductCurrency)
	if err != nil {
		return domain.LineItem{}, err
	}
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	return domain.LineItem{
		ID:              id,
		ItemRef:         r.ItemRef,
		Name:            r.Name,
		Quantity:        r.Quantity,
		BuyingPrice:     r.BuyingPrice,
		SellingPrice:    r.SellingPrice,
		ProductCurrency: cur,
		DiscountPercent: r.DiscountPercent,
	}, nil
}

// ToDomainLineItems converts a list of request lines.
func ToDomainLineItems(reqs []LineItemRequest) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(reqs))
	for _, r := range reqs {
		item, err := r.ToDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// PaymentSplitRequest is the blended tender of a multi-currency sale.
type PaymentSplitRequest struct {
	USDAmount decimal.Decimal `json:"usdAmount" binding:"gte=0"`
	IQDAmount decimal.Decimal `json:"iqdAmount" binding:"gte=0"`
}

// CreateSaleRequest defines the structure for completing a sale.
type CreateSaleRequest struct {
	ID        string               `json:"id,omitempty"`
	Currency  string               `json:"currency" binding:"required,currency"`
	Total     decimal.Decimal      `json:"total" binding:"gte=0"`
	Items     []LineItemRequest    `json:"items" binding:"required,min=1,dive"`
	Split     *PaymentSplitRequest `json:"split,omitempty"`
	IsDebt    bool                 `json:"isDebt"`
	CreatedAt *time.Time           `json:"createdAt,omitempty"`
}

// SaleResponse defines the structure for API responses containing a sale.
type SaleResponse struct {
	ID        string               `json:"id"`
	Currency  domain.Currency      `json:"currency"`
	Total     decimal.Decimal      `json:"total"`
	Rate      ExchangeRateResponse `json:"rate"`
	Items     []domain.LineItem    `json:"items"`
	Split     *domain.PaymentSplit `json:"split,omitempty"`
	IsDebt    bool                 `json:"isDebt"`
	DebtID    string               `json:"debtId,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}

// ToSaleResponse converts a sale and its optional debt into a response.
func ToSaleResponse(sale *domain.Sale, debt *domain.Debt) SaleResponse {
	resp := SaleResponse{
		ID:        sale.ID,
		Currency:  sale.Currency,
		Total:     sale.Total,
		Rate:      ToExchangeRateResponse(sale.Rate),
		Items:     sale.Items,
		Split:     sale.Split,
		IsDebt:    sale.IsDebt,
		CreatedAt: sale.CreatedAt,
	}
	if debt != nil {
		resp.DebtID = debt.ID
	}
	return resp
}

// ProfitResponse defines the structure for the profit of one sale.
type ProfitResponse struct {
	SaleID   string                 `json:"saleId"`
	Currency domain.Currency        `json:"currency"`
	Total    decimal.Decimal        `json:"total"`
	USD      decimal.Decimal        `json:"usd"`
	IQD      decimal.Decimal        `json:"iqd"`
	Warnings []domain.ProfitWarning `json:"warnings,omitempty"`
}

// ToProfitResponse converts a domain.ProfitResult.
func ToProfitResponse(p domain.ProfitResult) ProfitResponse {
	return ProfitResponse{
		SaleID:   p.SaleID,
		Currency: p.Currency,
		Total:    p.Total,
		USD:      p.USD,
		IQD:      p.IQD,
		Warnings: p.Warnings,
	}
}
