package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
	"github.com/SscSPs/pos_reconciliation/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const purchaseColumns = `purchase_id, supplier_name, currency, total, rate_usd_to_iqd, rate_iqd_to_usd,
	created_at, last_updated_at`

func scanPurchase(row pgx.Row) (models.Purchase, error) {
	var m models.Purchase
	err := row.Scan(&m.PurchaseID, &m.SupplierName, &m.Currency, &m.Total, &m.RateUSDToIQD, &m.RateIQDToUSD,
		&m.CreatedAt, &m.LastUpdatedAt)
	return m, err
}

func (s *txStore) LoadBuyingHistoryEntry(ctx context.Context, id string) (*domain.BuyingHistoryEntry, error) {
	m, err := scanPurchase(s.tx.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE purchase_id = $1`+s.forUpdate(), id))
	if err != nil {
		return nil, mapError(err, "load purchase "+id)
	}
	lines, err := s.loadLineItems(ctx, string(domain.KindPurchase), id)
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainPurchase(m, lines[id])
	return &entry, nil
}

func (s *txStore) ListBuyingHistory(ctx context.Context, from, to time.Time) ([]domain.BuyingHistoryEntry, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, purchase_id`, from, to)
	if err != nil {
		return nil, mapError(err, "list purchases")
	}
	var heads []models.Purchase
	var ids []string
	for rows.Next() {
		m, err := scanPurchase(rows)
		if err != nil {
			rows.Close()
			return nil, mapError(err, "scan purchase")
		}
		heads = append(heads, m)
		ids = append(ids, m.PurchaseID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterate purchases")
	}

	lines, err := s.loadLineItems(ctx, string(domain.KindPurchase), ids...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BuyingHistoryEntry, 0, len(heads))
	for _, m := range heads {
		out = append(out, mapping.ToDomainPurchase(m, lines[m.PurchaseID]))
	}
	return out, nil
}

func (s *txStore) SaveBuyingHistoryEntry(ctx context.Context, entry domain.BuyingHistoryEntry) error {
	if err := s.writable(); err != nil {
		return err
	}
	m, lines := mapping.ToModelPurchase(entry)
	_, err := s.tx.Exec(ctx, `
		INSERT INTO purchases (`+purchaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (purchase_id) DO UPDATE SET
			total = EXCLUDED.total,
			last_updated_at = EXCLUDED.last_updated_at`,
		m.PurchaseID, m.SupplierName, m.Currency, m.Total, m.RateUSDToIQD, m.RateIQDToUSD,
		m.CreatedAt, m.LastUpdatedAt)
	if err != nil {
		return mapError(err, "save purchase "+entry.ID)
	}
	return s.replaceLineItems(ctx, string(domain.KindPurchase), entry.ID, lines)
}

func (s *txStore) DeleteBuyingHistoryEntry(ctx context.Context, id string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := s.deleteLineItems(ctx, string(domain.KindPurchase), id); err != nil {
		return err
	}
	tag, err := s.tx.Exec(ctx, `DELETE FROM purchases WHERE purchase_id = $1`, id)
	if err != nil {
		return mapError(err, "delete purchase "+id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: purchase %s", apperrors.ErrNotFound, id)
	}
	return nil
}

// --- payment history ---

const paymentHistoryColumns = `payment_id, record_kind, record_id, tender_usd, tender_iqd, absorbed_usd, absorbed_iqd,
	overpayment_usd, overpayment_iqd, forced_currency, rate_usd_to_iqd, rate_iqd_to_usd, settled, created_at`

func (s *txStore) AppendPaymentHistory(ctx context.Context, record domain.PaymentRecord) error {
	if err := s.writable(); err != nil {
		return err
	}
	m := mapping.ToModelPaymentHistory(record)
	_, err := s.tx.Exec(ctx, `
		INSERT INTO payment_history (`+paymentHistoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		m.PaymentID, m.RecordKind, m.RecordID, m.TenderUSD, m.TenderIQD, m.AbsorbedUSD, m.AbsorbedIQD,
		m.OverpaymentUSD, m.OverpaymentIQD, m.ForcedCurrency, m.RateUSDToIQD, m.RateIQDToUSD, m.Settled, m.CreatedAt)
	return mapError(err, "append payment "+record.ID)
}

func (s *txStore) ListPaymentHistory(ctx context.Context, kind domain.RecordKind, recordID string) ([]domain.PaymentRecord, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT `+paymentHistoryColumns+`
		FROM payment_history
		WHERE record_kind = $1 AND record_id = $2
		ORDER BY seq`, string(kind), recordID)
	if err != nil {
		return nil, mapError(err, "list payment history")
	}
	defer rows.Close()
	out := make([]domain.PaymentRecord, 0)
	for rows.Next() {
		var m models.PaymentHistory
		if err := rows.Scan(&m.PaymentID, &m.RecordKind, &m.RecordID, &m.TenderUSD, &m.TenderIQD, &m.AbsorbedUSD, &m.AbsorbedIQD,
			&m.OverpaymentUSD, &m.OverpaymentIQD, &m.ForcedCurrency, &m.RateUSDToIQD, &m.RateIQDToUSD, &m.Settled, &m.CreatedAt); err != nil {
			return nil, mapError(err, "scan payment history")
		}
		out = append(out, mapping.ToDomainPaymentRecord(m))
	}
	return out, mapError(rows.Err(), "iterate payment history")
}
