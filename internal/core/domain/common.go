package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// RecordKind names the aggregates that can carry a debt.
type RecordKind string

const (
	KindCustomerDebt RecordKind = "customer_debt"
	KindCompanyDebt  RecordKind = "company_debt"
	KindPersonalLoan RecordKind = "personal_loan"
	KindSale         RecordKind = "sale"
	KindPurchase     RecordKind = "purchase"
)

// LockKey is the key used to serialize mutations of a single record.
func LockKey(kind RecordKind, id string) string {
	return string(kind) + ":" + id
}
