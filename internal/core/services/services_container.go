package services

import (
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// Every service shares one BaseService, so a payment and a return of the same sale
// contend for the same record lock.
func NewServiceContainer(tm portsrepo.TransactionManager, options ...ServiceOption) *portssvc.ServiceContainer {
	base := NewBaseService(tm, options...)

	return &portssvc.ServiceContainer{
		ExchangeRate: NewExchangeRateService(base),
		Sale:         NewSaleService(base),
		Payment:      NewPaymentService(base),
		Ledger:       NewLedgerService(base),
		Return:       NewReturnService(base),
		Purchase:     NewPurchaseService(base),
		Reporting:    NewReportingService(base),
	}
}
