package models

import "github.com/shopspring/decimal"

// Debt is a row of the debts table: the customer side of a credit sale.
type Debt struct {
	DebtID string `json:"debtID"` // Primary Key
	SaleID string `json:"saleID"` // Unique, FK -> sales.sale_id
	PaymentColumns
	AuditFields
}

// CompanyDebt is a row of the company_debts table.
type CompanyDebt struct {
	CompanyDebtID string          `json:"companyDebtID"` // Primary Key
	CompanyName   string          `json:"companyName"`
	Currency      string          `json:"currency"` // USD, IQD or MULTI
	Amount        decimal.Decimal `json:"amount"`   // Used by single-currency debts
	USDAmount     decimal.Decimal `json:"usdAmount"`
	IQDAmount     decimal.Decimal `json:"iqdAmount"`
	PaymentColumns
	AuditFields
}

// PersonalLoan is a row of the personal_loans table.
type PersonalLoan struct {
	LoanID     string          `json:"loanID"` // Primary Key
	PersonName string          `json:"personName"`
	USDAmount  decimal.Decimal `json:"usdAmount"`
	IQDAmount  decimal.Decimal `json:"iqdAmount"`
	Notes      string          `json:"notes"`
	PaymentColumns
	AuditFields
}
