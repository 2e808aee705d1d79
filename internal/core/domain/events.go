package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEventType names a committed ledger change.
type LedgerEventType string

const (
	EventSaleRecorded     LedgerEventType = "sale.recorded"
	EventPaymentApplied   LedgerEventType = "payment.applied"
	EventDebtSettled      LedgerEventType = "debt.settled"
	EventReturnProcessed  LedgerEventType = "return.processed"
	EventPurchaseRecorded LedgerEventType = "purchase.recorded"
)

// LedgerEvent is published after a unit of work commits.
type LedgerEvent struct {
	ID         string          `json:"id"`
	Type       LedgerEventType `json:"type"`
	RecordKind RecordKind      `json:"recordKind"`
	RecordID   string          `json:"recordId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    any             `json:"payload,omitempty"`
}

// NewLedgerEvent stamps a new event.
func NewLedgerEvent(eventType LedgerEventType, kind RecordKind, recordID string, payload any) LedgerEvent {
	return LedgerEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		RecordKind: kind,
		RecordID:   recordID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
