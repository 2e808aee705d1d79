package mapping

import (
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
)

// ToModelAuditFields converts a domain AuditFields to a model AuditFields
func ToModelAuditFields(d domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     d.CreatedAt,
		LastUpdatedAt: d.LastUpdatedAt,
	}
}

// ToDomainAuditFields converts a model AuditFields to a domain AuditFields
func ToDomainAuditFields(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     m.CreatedAt,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}

// ToModelPaymentColumns converts a domain PaymentState to its columns
func ToModelPaymentColumns(d domain.PaymentState) models.PaymentColumns {
	return models.PaymentColumns{
		PaymentUSDAmount:    d.PaymentUSDAmount,
		PaymentIQDAmount:    d.PaymentIQDAmount,
		PaymentRateUSDToIQD: d.PaymentExchangeRateUSDToIQD,
		PaymentRateIQDToUSD: d.PaymentExchangeRateIQDToUSD,
		PaidAt:              d.PaidAt,
	}
}

// ToDomainPaymentState converts payment columns to a domain PaymentState
func ToDomainPaymentState(m models.PaymentColumns) domain.PaymentState {
	return domain.PaymentState{
		PaymentUSDAmount:            m.PaymentUSDAmount,
		PaymentIQDAmount:            m.PaymentIQDAmount,
		PaymentExchangeRateUSDToIQD: m.PaymentRateUSDToIQD,
		PaymentExchangeRateIQDToUSD: m.PaymentRateIQDToUSD,
		PaidAt:                      m.PaidAt,
	}
}
