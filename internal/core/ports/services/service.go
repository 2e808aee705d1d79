package services

import (
	"context"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
)

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	ExchangeRate ExchangeRateSvcFacade
	Sale         SaleSvcFacade
	Payment      PaymentSvcFacade
	Ledger       LedgerSvcFacade
	Return       ReturnSvcFacade
	Purchase     PurchaseSvcFacade
	Reporting    ReportingService
}

// EventPublisher delivers committed ledger events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.LedgerEvent) error
}
