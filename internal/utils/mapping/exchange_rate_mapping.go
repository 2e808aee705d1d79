package mapping

import (
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
)

// ToDomainExchangeRate converts the stored live rate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{USDToIQD: m.USDToIQD, IQDToUSD: m.IQDToUSD}
}

// ToDomainBalance converts the cash balance row to a domain Balance
func ToDomainBalance(m models.CashBalance) domain.Balance {
	return domain.Balance{USDBalance: m.USDBalance, IQDBalance: m.IQDBalance}
}

// ToDomainStockLevel converts a stock row to a domain StockLevel
func ToDomainStockLevel(m models.StockLevel) domain.StockLevel {
	return domain.StockLevel{ItemRef: m.ItemRef, OnHand: m.OnHand, MaxStock: m.MaxStock}
}
