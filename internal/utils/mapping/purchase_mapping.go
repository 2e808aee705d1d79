package mapping

import (
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
)

// ToModelPurchase converts a domain BuyingHistoryEntry to a model Purchase and its line rows
func ToModelPurchase(d domain.BuyingHistoryEntry) (models.Purchase, []models.LineItem) {
	return models.Purchase{
		PurchaseID:   d.ID,
		SupplierName: d.SupplierName,
		Currency:     string(d.Currency),
		Total:        d.Total,
		RateUSDToIQD: d.Rate.USDToIQD,
		RateIQDToUSD: d.Rate.IQDToUSD,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}, ToModelLineItems(string(domain.KindPurchase), d.ID, d.Items)
}

// ToDomainPurchase converts a model Purchase and its line rows to a domain BuyingHistoryEntry
func ToDomainPurchase(m models.Purchase, items []models.LineItem) domain.BuyingHistoryEntry {
	d := domain.BuyingHistoryEntry{
		ID:           m.PurchaseID,
		SupplierName: m.SupplierName,
		Currency:     domain.Currency(m.Currency),
		Total:        m.Total,
		Rate:         domain.ExchangeRate{USDToIQD: m.RateUSDToIQD, IQDToUSD: m.RateIQDToUSD},
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
	if len(items) > 0 {
		d.Items = ToDomainLineItems(items)
	}
	return d
}
