package mapping

import (
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelSale converts a domain Sale to a model Sale and its line rows
func ToModelSale(d domain.Sale) (models.Sale, []models.LineItem) {
	m := models.Sale{
		SaleID:       d.ID,
		Currency:     string(d.Currency),
		Total:        d.Total,
		RateUSDToIQD: d.Rate.USDToIQD,
		RateIQDToUSD: d.Rate.IQDToUSD,
		IsDebt:       d.IsDebt,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
	if d.Split != nil {
		m.SplitUSD = decimal.NewNullDecimal(d.Split.USDAmount)
		m.SplitIQD = decimal.NewNullDecimal(d.Split.IQDAmount)
	}
	return m, ToModelLineItems(string(domain.KindSale), d.ID, d.Items)
}

// ToDomainSale converts a model Sale and its line rows to a domain Sale
func ToDomainSale(m models.Sale, items []models.LineItem) domain.Sale {
	d := domain.Sale{
		ID:          m.SaleID,
		Currency:    domain.Currency(m.Currency),
		Total:       m.Total,
		Rate:        domain.ExchangeRate{USDToIQD: m.RateUSDToIQD, IQDToUSD: m.RateIQDToUSD},
		Items:       ToDomainLineItems(items),
		IsDebt:      m.IsDebt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.SplitUSD.Valid || m.SplitIQD.Valid {
		d.Split = &domain.PaymentSplit{USDAmount: m.SplitUSD.Decimal, IQDAmount: m.SplitIQD.Decimal}
	}
	return d
}

// ToModelLineItems converts domain lines to rows owned by one record
func ToModelLineItems(ownerKind, ownerID string, items []domain.LineItem) []models.LineItem {
	out := make([]models.LineItem, len(items))
	for i, item := range items {
		out[i] = models.LineItem{
			OwnerKind:       ownerKind,
			OwnerID:         ownerID,
			ItemID:          item.ID,
			Position:        i,
			ItemRef:         item.ItemRef,
			Name:            item.Name,
			Quantity:        item.Quantity,
			BuyingPrice:     item.BuyingPrice,
			SellingPrice:    item.SellingPrice,
			ProductCurrency: string(item.ProductCurrency),
		}
		if item.DiscountPercent != nil {
			out[i].DiscountPercent = decimal.NewNullDecimal(*item.DiscountPercent)
		}
	}
	return out
}

// ToDomainLineItems converts line rows to domain lines, keeping their order
func ToDomainLineItems(rows []models.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(rows))
	for i, r := range rows {
		out[i] = domain.LineItem{
			ID:              r.ItemID,
			ItemRef:         r.ItemRef,
			Name:            r.Name,
			Quantity:        r.Quantity,
			BuyingPrice:     r.BuyingPrice,
			SellingPrice:    r.SellingPrice,
			ProductCurrency: domain.Currency(r.ProductCurrency),
		}
		if r.DiscountPercent.Valid {
			pct := r.DiscountPercent.Decimal
			out[i].DiscountPercent = &pct
		}
	}
	return out
}
