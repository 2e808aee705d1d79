package mapping

import (
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
)

// ToModelDebt converts a domain Debt to a model Debt
func ToModelDebt(d domain.Debt) models.Debt {
	return models.Debt{
		DebtID:         d.ID,
		SaleID:         d.SaleID,
		PaymentColumns: ToModelPaymentColumns(d.PaymentState),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDebt converts a model Debt to a domain Debt
func ToDomainDebt(m models.Debt) domain.Debt {
	return domain.Debt{
		ID:           m.DebtID,
		SaleID:       m.SaleID,
		PaymentState: ToDomainPaymentState(m.PaymentColumns),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelCompanyDebt converts a domain CompanyDebt to a model CompanyDebt and its line rows
func ToModelCompanyDebt(d domain.CompanyDebt) (models.CompanyDebt, []models.LineItem) {
	return models.CompanyDebt{
		CompanyDebtID:  d.ID,
		CompanyName:    d.CompanyName,
		Currency:       string(d.Currency),
		Amount:         d.Amount,
		USDAmount:      d.USDAmount,
		IQDAmount:      d.IQDAmount,
		PaymentColumns: ToModelPaymentColumns(d.PaymentState),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}, ToModelLineItems(string(domain.KindCompanyDebt), d.ID, d.Items)
}

// ToDomainCompanyDebt converts a model CompanyDebt and its line rows to a domain CompanyDebt
func ToDomainCompanyDebt(m models.CompanyDebt, items []models.LineItem) domain.CompanyDebt {
	d := domain.CompanyDebt{
		ID:           m.CompanyDebtID,
		CompanyName:  m.CompanyName,
		Currency:     domain.DebtCurrency(m.Currency),
		Amount:       m.Amount,
		USDAmount:    m.USDAmount,
		IQDAmount:    m.IQDAmount,
		PaymentState: ToDomainPaymentState(m.PaymentColumns),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
	if len(items) > 0 {
		d.Items = ToDomainLineItems(items)
	}
	return d
}

// ToModelPersonalLoan converts a domain PersonalLoan to a model PersonalLoan
func ToModelPersonalLoan(d domain.PersonalLoan) models.PersonalLoan {
	return models.PersonalLoan{
		LoanID:         d.ID,
		PersonName:     d.PersonName,
		USDAmount:      d.USDAmount,
		IQDAmount:      d.IQDAmount,
		Notes:          d.Notes,
		PaymentColumns: ToModelPaymentColumns(d.PaymentState),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPersonalLoan converts a model PersonalLoan to a domain PersonalLoan
func ToDomainPersonalLoan(m models.PersonalLoan) domain.PersonalLoan {
	return domain.PersonalLoan{
		ID:           m.LoanID,
		PersonName:   m.PersonName,
		USDAmount:    m.USDAmount,
		IQDAmount:    m.IQDAmount,
		Notes:        m.Notes,
		PaymentState: ToDomainPaymentState(m.PaymentColumns),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
