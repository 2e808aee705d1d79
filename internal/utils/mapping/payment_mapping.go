package mapping

import (
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
)

// ToModelPaymentHistory converts a domain PaymentRecord to a model PaymentHistory
func ToModelPaymentHistory(d domain.PaymentRecord) models.PaymentHistory {
	m := models.PaymentHistory{
		PaymentID:      d.ID,
		RecordKind:     string(d.RecordKind),
		RecordID:       d.RecordID,
		TenderUSD:      d.TenderUSD,
		TenderIQD:      d.TenderIQD,
		AbsorbedUSD:    d.AbsorbedUSD,
		AbsorbedIQD:    d.AbsorbedIQD,
		OverpaymentUSD: d.OverpaymentUSD,
		OverpaymentIQD: d.OverpaymentIQD,
		RateUSDToIQD:   d.Rate.USDToIQD,
		RateIQDToUSD:   d.Rate.IQDToUSD,
		Settled:        d.Settled,
		CreatedAt:      d.CreatedAt,
	}
	if d.ForcedCurrency != nil {
		forced := string(*d.ForcedCurrency)
		m.ForcedCurrency = &forced
	}
	return m
}

// ToDomainPaymentRecord converts a model PaymentHistory to a domain PaymentRecord
func ToDomainPaymentRecord(m models.PaymentHistory) domain.PaymentRecord {
	d := domain.PaymentRecord{
		ID:             m.PaymentID,
		RecordKind:     domain.RecordKind(m.RecordKind),
		RecordID:       m.RecordID,
		TenderUSD:      m.TenderUSD,
		TenderIQD:      m.TenderIQD,
		AbsorbedUSD:    m.AbsorbedUSD,
		AbsorbedIQD:    m.AbsorbedIQD,
		OverpaymentUSD: m.OverpaymentUSD,
		OverpaymentIQD: m.OverpaymentIQD,
		Rate:           domain.ExchangeRate{USDToIQD: m.RateUSDToIQD, IQDToUSD: m.RateIQDToUSD},
		Settled:        m.Settled,
		CreatedAt:      m.CreatedAt,
	}
	if m.ForcedCurrency != nil {
		forced := domain.Currency(*m.ForcedCurrency)
		d.ForcedCurrency = &forced
	}
	return d
}

// ToModelReturnLog converts a domain ReturnRecord to a model ReturnLog
func ToModelReturnLog(d domain.ReturnRecord) models.ReturnLog {
	m := models.ReturnLog{
		ReturnID:       d.ID,
		RecordKind:     string(d.RecordKind),
		RecordID:       d.RecordID,
		Quantity:       d.Quantity,
		Refund:         d.Refund,
		RefundCurrency: string(d.RefundCurrency),
		CreatedAt:      d.CreatedAt,
	}
	if d.ItemID != "" {
		itemID := d.ItemID
		m.ItemID = &itemID
	}
	return m
}

// ToDomainReturnRecord converts a model ReturnLog to a domain ReturnRecord
func ToDomainReturnRecord(m models.ReturnLog) domain.ReturnRecord {
	d := domain.ReturnRecord{
		ID:             m.ReturnID,
		RecordKind:     domain.RecordKind(m.RecordKind),
		RecordID:       m.RecordID,
		Quantity:       m.Quantity,
		Refund:         m.Refund,
		RefundCurrency: domain.Currency(m.RefundCurrency),
		CreatedAt:      m.CreatedAt,
	}
	if m.ItemID != nil {
		d.ItemID = *m.ItemID
	}
	return d
}
