package services

import (
	"context"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
)

// ReportingService defines read-only rollups over committed records
type ReportingService interface {
	// Aggregate builds the per-currency report for sales and purchases created in [from, to).
	// Outstanding balances and the cash balance are as of the snapshot.
	Aggregate(ctx context.Context, from, to time.Time) (*domain.AggregateReport, error)

	// GetBalance returns the cash drawer.
	GetBalance(ctx context.Context) (domain.Balance, error)
}
